package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dingdongdog/supabase-activity-tracker/internal/config"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/domain"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/json_types"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/ports/out"
)

type nopLogger struct{}

func (l nopLogger) Debug(event string, fields out.LogFields)       {}
func (l nopLogger) Info(event string, fields out.LogFields)        {}
func (l nopLogger) Warn(event string, fields out.LogFields)        {}
func (l nopLogger) Error(event string, fields out.LogFields)       {}
func (l nopLogger) WithFields(fields out.LogFields) out.LoggerPort { return l }
func (l nopLogger) WithModule(module string) out.LoggerPort        { return l }

type fakeSupabasePort struct {
	profiles   []domain.CaretakerProfile
	schedule   *domain.Schedule
	slots      []domain.ScheduleSlot
	activities []domain.Activity

	fetchErr  error
	insertErr error
	updateErr error

	inserted        []domain.Activity
	updatedSchedule *domain.Schedule
	replacedSlots   []domain.ScheduleSlot
	profilesCalls   int
}

func (f *fakeSupabasePort) GetProfiles(ctx context.Context, sessionCode string) ([]domain.CaretakerProfile, error) {
	f.profilesCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.profiles, nil
}

func (f *fakeSupabasePort) GetSchedule(ctx context.Context, sessionCode string) (*domain.Schedule, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.schedule, nil
}

func (f *fakeSupabasePort) UpdateSchedule(ctx context.Context, schedule domain.Schedule) (*domain.Schedule, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updatedSchedule = &schedule
	return &schedule, nil
}

func (f *fakeSupabasePort) GetScheduleSlots(ctx context.Context, scheduleID uuid.UUID) ([]domain.ScheduleSlot, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.slots, nil
}

func (f *fakeSupabasePort) ReplaceScheduleSlots(ctx context.Context, scheduleID uuid.UUID, slots []domain.ScheduleSlot) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.replacedSlots = slots
	return nil
}

func (f *fakeSupabasePort) GetActivities(ctx context.Context, sessionCode string, date json_types.Date) ([]domain.Activity, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.activities, nil
}

func (f *fakeSupabasePort) GetActivitiesRange(ctx context.Context, sessionCode string, from, to json_types.Date) ([]domain.Activity, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.activities, nil
}

func (f *fakeSupabasePort) InsertActivity(ctx context.Context, activity domain.Activity) (*domain.Activity, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, activity)
	return &activity, nil
}

type fakeCachePort struct {
	snapshots   map[string]domain.SessionSnapshot
	invalidated []string
	purged      bool
}

func newFakeCachePort() *fakeCachePort {
	return &fakeCachePort{snapshots: make(map[string]domain.SessionSnapshot)}
}

func (f *fakeCachePort) GetSessionSnapshot(ctx context.Context, sessionCode string) (*domain.SessionSnapshot, bool) {
	snapshot, exists := f.snapshots[sessionCode]
	if !exists {
		return nil, false
	}
	return &snapshot, true
}

func (f *fakeCachePort) StoreSessionSnapshot(ctx context.Context, sessionCode string, snapshot domain.SessionSnapshot) {
	f.snapshots[sessionCode] = snapshot
}

func (f *fakeCachePort) InvalidateSessionSnapshot(ctx context.Context, sessionCode string) {
	delete(f.snapshots, sessionCode)
	f.invalidated = append(f.invalidated, sessionCode)
}

func (f *fakeCachePort) InvalidateAllSessions(ctx context.Context) {
	f.snapshots = make(map[string]domain.SessionSnapshot)
	f.purged = true
}

type fakeNotifierPort struct {
	broadcasts []domain.Notification
	err        error
}

func (f *fakeNotifierPort) Broadcast(ctx context.Context, notification domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.broadcasts = append(f.broadcasts, notification)
	return nil
}

func testConfig(cacheEnabled bool) *config.Config {
	cfg := &config.Config{}
	cfg.Cache.Enabled = cacheEnabled
	return cfg
}

func testSession(admin bool) (*fakeSupabasePort, domain.CaretakerProfile) {
	profile := domain.CaretakerProfile{
		ID:        uuid.New(),
		Name:      "Alice",
		ShortName: "A",
		IsAdmin:   admin,
	}
	supabasePort := &fakeSupabasePort{
		profiles: []domain.CaretakerProfile{profile},
		schedule: &domain.Schedule{ID: uuid.New(), SessionCode: "ABC123"},
		slots: []domain.ScheduleSlot{
			{ActivityType: domain.ActivityTypeFeed, TimePeriod: domain.TimePeriodMorning},
			{ActivityType: domain.ActivityTypeWalk, TimePeriod: domain.TimePeriodEvening},
		},
	}
	return supabasePort, profile
}

func TestDayOverview(t *testing.T) {
	supabasePort, profile := testSession(false)
	supabasePort.activities = []domain.Activity{
		{
			ID:          uuid.New(),
			Type:        domain.ActivityTypeFeed,
			TimePeriod:  domain.TimePeriodMorning,
			CaretakerID: profile.ID,
		},
	}

	service := NewActivityTrackerService(supabasePort, nil, nil, nopLogger{}, testConfig(false))

	overview, debug, err := service.DayOverview(context.Background(), "ABC123", nil)
	require.NoError(t, err)
	require.NotNil(t, overview)

	assert.Equal(t, "ABC123", overview.SessionCode)
	require.Len(t, overview.Statuses, 2)
	assert.Equal(t, domain.SlotStateCompleted, overview.Statuses[0].State)
	assert.Equal(t, domain.SlotStatePending, overview.Statuses[1].State)

	require.NotNil(t, overview.NextSlot)
	assert.Equal(t, domain.ActivityTypeWalk, overview.NextSlot.Type)

	// Тайминги всех трех фаз
	require.Len(t, debug, 3)
	assert.Equal(t, "overview.snapshot.fetch", debug[0].Event)
}

func TestDayOverviewFetchFailed(t *testing.T) {
	supabasePort, _ := testSession(false)
	supabasePort.fetchErr = errors.New("connection refused")

	service := NewActivityTrackerService(supabasePort, nil, nil, nopLogger{}, testConfig(false))

	_, _, err := service.DayOverview(context.Background(), "ABC123", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
}

func TestDayOverviewScheduleMissing(t *testing.T) {
	supabasePort, _ := testSession(false)
	supabasePort.schedule = nil

	service := NewActivityTrackerService(supabasePort, nil, nil, nopLogger{}, testConfig(false))

	_, _, err := service.DayOverview(context.Background(), "NOPE", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDayOverviewUsesCachedSnapshot(t *testing.T) {
	supabasePort, _ := testSession(false)
	cachePort := newFakeCachePort()

	service := NewActivityTrackerService(supabasePort, cachePort, nil, nopLogger{}, testConfig(true))

	_, _, err := service.DayOverview(context.Background(), "ABC123", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, supabasePort.profilesCalls)

	// Второй запрос берет снапшот из кэша, бэкенд не трогаем
	_, _, err = service.DayOverview(context.Background(), "ABC123", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, supabasePort.profilesCalls)
}

func TestRecordActivity(t *testing.T) {
	supabasePort, profile := testSession(false)
	notifierPort := &fakeNotifierPort{}

	service := NewActivityTrackerService(supabasePort, nil, notifierPort, nopLogger{}, testConfig(false))

	activity, err := service.RecordActivity(context.Background(), "ABC123", domain.NewActivity{
		Type:        domain.ActivityTypeFeed,
		TimePeriod:  domain.TimePeriodMorning,
		CaretakerID: profile.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, activity)

	assert.Equal(t, domain.ActivityStateConfirmed, activity.State)
	assert.NotEqual(t, uuid.Nil, activity.ID)
	require.Len(t, supabasePort.inserted, 1)

	// Уведомление ровно одно, после подтвержденной записи
	require.Len(t, notifierPort.broadcasts, 1)
	notification := notifierPort.broadcasts[0]
	assert.Equal(t, "activity.recorded", notification.Event)
	assert.Equal(t, "Fed ✓", notification.Title)
	assert.Equal(t, "Logged by Alice", notification.Body)
	assert.Equal(t, "ABC123", notification.Data["sessionCode"])
}

func TestRecordActivityDefaultsTimePeriod(t *testing.T) {
	supabasePort, profile := testSession(false)

	service := NewActivityTrackerService(supabasePort, nil, nil, nopLogger{}, testConfig(false))

	// Без периода запись попадает в текущий период по времени сессии
	activity, err := service.RecordActivity(context.Background(), "ABC123", domain.NewActivity{
		Type:        domain.ActivityTypeFeed,
		CaretakerID: profile.ID,
	})
	require.NoError(t, err)
	assert.True(t, activity.TimePeriod.IsValid())

	require.Len(t, supabasePort.inserted, 1)
	assert.Equal(t, activity.TimePeriod, supabasePort.inserted[0].TimePeriod)
}

func TestRecordActivityInvalidType(t *testing.T) {
	supabasePort, profile := testSession(false)

	service := NewActivityTrackerService(supabasePort, nil, nil, nopLogger{}, testConfig(false))

	_, err := service.RecordActivity(context.Background(), "ABC123", domain.NewActivity{
		Type:        domain.ActivityType("play"),
		CaretakerID: profile.ID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, supabasePort.inserted)
}

func TestRecordActivityInsertFailedNoNotification(t *testing.T) {
	supabasePort, profile := testSession(false)
	supabasePort.insertErr = errors.New("insert failed")
	notifierPort := &fakeNotifierPort{}

	service := NewActivityTrackerService(supabasePort, nil, notifierPort, nopLogger{}, testConfig(false))

	_, err := service.RecordActivity(context.Background(), "ABC123", domain.NewActivity{
		Type:        domain.ActivityTypeWalk,
		TimePeriod:  domain.TimePeriodEvening,
		CaretakerID: profile.ID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWriteFailed)

	// Неподтвержденная запись уведомлений не порождает
	assert.Empty(t, notifierPort.broadcasts)
}

func TestRecordActivityNotifierFailureSwallowed(t *testing.T) {
	supabasePort, profile := testSession(false)
	notifierPort := &fakeNotifierPort{err: errors.New("broker down")}

	service := NewActivityTrackerService(supabasePort, nil, notifierPort, nopLogger{}, testConfig(false))

	activity, err := service.RecordActivity(context.Background(), "ABC123", domain.NewActivity{
		Type:        domain.ActivityTypeLetout,
		TimePeriod:  domain.TimePeriodAfternoon,
		CaretakerID: profile.ID,
	})

	// Сбой уведомления не откатывает подтвержденную запись
	require.NoError(t, err)
	require.NotNil(t, activity)
	assert.Equal(t, domain.ActivityStateConfirmed, activity.State)

	// Сам сбой при этом классифицируется как ошибка уведомления
	notifyErr := service.notifyActivityRecorded(context.Background(), "ABC123", supabasePort.profiles, *activity)
	require.Error(t, notifyErr)
	assert.ErrorIs(t, notifyErr, domain.ErrNotificationFailed)
}

func TestActivityLogGroups(t *testing.T) {
	supabasePort, profile := testSession(false)
	supabasePort.activities = []domain.Activity{
		{
			ID:          uuid.New(),
			Type:        domain.ActivityTypeFeed,
			Date:        json_types.Date{},
			CaretakerID: profile.ID,
		},
	}

	service := NewActivityTrackerService(supabasePort, nil, nil, nopLogger{}, testConfig(false))

	groups, err := service.ActivityLog(context.Background(), "ABC123", nil, nil)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Activities, 1)
}

func TestUpdateScheduleRequiresAdmin(t *testing.T) {
	supabasePort, profile := testSession(false)

	service := NewActivityTrackerService(supabasePort, nil, nil, nopLogger{}, testConfig(false))

	instruction := "Two cups in the morning"
	_, err := service.UpdateSchedule(context.Background(), "ABC123", profile.ID, domain.ScheduleUpdate{
		FeedingInstruction: &instruction,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Nil(t, supabasePort.updatedSchedule)
}

func TestUpdateScheduleUnknownActor(t *testing.T) {
	supabasePort, _ := testSession(true)

	service := NewActivityTrackerService(supabasePort, nil, nil, nopLogger{}, testConfig(false))

	_, err := service.UpdateSchedule(context.Background(), "ABC123", uuid.New(), domain.ScheduleUpdate{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateScheduleMergesFields(t *testing.T) {
	supabasePort, admin := testSession(true)
	supabasePort.schedule.FeedingInstruction = "One cup"
	supabasePort.schedule.LetoutCount = 3
	cachePort := newFakeCachePort()

	service := NewActivityTrackerService(supabasePort, cachePort, nil, nopLogger{}, testConfig(true))

	instruction := "Two cups"
	updated, err := service.UpdateSchedule(context.Background(), "ABC123", admin.ID, domain.ScheduleUpdate{
		FeedingInstruction: &instruction,
	})
	require.NoError(t, err)

	assert.Equal(t, "Two cups", updated.FeedingInstruction)
	// Непереданные поля не затираются
	assert.Equal(t, 3, updated.LetoutCount)

	// Изменение расписания сбрасывает снапшот сессии
	assert.Contains(t, cachePort.invalidated, "ABC123")
}

func TestReplaceScheduleSlots(t *testing.T) {
	supabasePort, admin := testSession(true)

	service := NewActivityTrackerService(supabasePort, nil, nil, nopLogger{}, testConfig(false))

	slotConfig, err := service.ReplaceScheduleSlots(context.Background(), "ABC123", admin.ID, []domain.SlotRef{
		{Type: domain.ActivityTypeFeed, TimePeriod: domain.TimePeriodMorning},
		{Type: domain.ActivityTypeLetout, TimePeriod: domain.TimePeriodEvening},
	})
	require.NoError(t, err)
	require.NotNil(t, slotConfig)

	assert.True(t, slotConfig.Enabled(domain.ActivityTypeFeed, domain.TimePeriodMorning))
	assert.True(t, slotConfig.Enabled(domain.ActivityTypeLetout, domain.TimePeriodEvening))
	assert.False(t, slotConfig.Enabled(domain.ActivityTypeWalk, domain.TimePeriodMorning))

	require.Len(t, supabasePort.replacedSlots, 2)
	assert.Equal(t, supabasePort.schedule.ID, supabasePort.replacedSlots[0].ScheduleID)
}

func TestReplaceScheduleSlotsRejectsUnknown(t *testing.T) {
	supabasePort, admin := testSession(true)

	service := NewActivityTrackerService(supabasePort, nil, nil, nopLogger{}, testConfig(false))

	_, err := service.ReplaceScheduleSlots(context.Background(), "ABC123", admin.ID, []domain.SlotRef{
		{Type: domain.ActivityType("play"), TimePeriod: domain.TimePeriodMorning},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, supabasePort.replacedSlots)
}

func TestInvalidateAllSessionsCache(t *testing.T) {
	supabasePort, _ := testSession(false)
	cachePort := newFakeCachePort()

	service := NewActivityTrackerService(supabasePort, cachePort, nil, nopLogger{}, testConfig(true))

	service.InvalidateAllSessionsCache(context.Background())
	assert.True(t, cachePort.purged)
}
