package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dingdongdog/supabase-activity-tracker/internal/config"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/domain"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/json_types"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/ports/out"
	"github.com/dingdongdog/supabase-activity-tracker/internal/utils"
)

// Журнал по умолчанию отдаем за последние 30 дней
const defaultLogWindowDays = 30

type ActivityTrackerService struct {
	supabasePort out.SupabasePort
	cachePort    out.CachePort
	notifierPort out.NotifierPort
	logger       out.LoggerPort
	cfg          *config.Config
}

func NewActivityTrackerService(
	supabasePort out.SupabasePort,
	cachePort out.CachePort,
	notifierPort out.NotifierPort,
	logger out.LoggerPort,
	cfg *config.Config,
) *ActivityTrackerService {
	return &ActivityTrackerService{
		supabasePort: supabasePort,
		cachePort:    cachePort,
		notifierPort: notifierPort,
		logger:       logger.WithModule("ActivityTrackerService"),
		cfg:          cfg,
	}
}

// sessionSnapshot собирает ростер и конфигурацию расписания сессии
// Снапшот кэшируется, записи активностей - никогда
func (s *ActivityTrackerService) sessionSnapshot(ctx context.Context, sessionCode string) (*domain.SessionSnapshot, error) {
	// Проверяем кэш только если он включен
	if s.cachePort != nil && s.cfg.Cache.Enabled {
		if snapshot, exists := s.cachePort.GetSessionSnapshot(ctx, sessionCode); exists {
			s.logger.Debug("session.snapshot.cache.hit", out.LogFields{
				"sessionCode": sessionCode,
			})
			return snapshot, nil
		}
	}

	s.logger.Debug("session.snapshot.cache.miss", out.LogFields{
		"sessionCode": sessionCode,
	})

	profiles, err := s.supabasePort.GetProfiles(ctx, sessionCode)
	if err != nil {
		s.logger.Error("session.snapshot.profiles.fetch_failed", out.LogFields{
			"sessionCode": sessionCode,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("session.snapshot.profiles.fetch_failed: %w", domain.ErrFetchFailed)
	}

	schedule, err := s.supabasePort.GetSchedule(ctx, sessionCode)
	if err != nil {
		s.logger.Error("session.snapshot.schedule.fetch_failed", out.LogFields{
			"sessionCode": sessionCode,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("session.snapshot.schedule.fetch_failed: %w", domain.ErrFetchFailed)
	}
	if schedule == nil {
		return nil, fmt.Errorf("session.snapshot.schedule.missing: %w", domain.ErrNotFound)
	}

	slots, err := s.supabasePort.GetScheduleSlots(ctx, schedule.ID)
	if err != nil {
		s.logger.Error("session.snapshot.slots.fetch_failed", out.LogFields{
			"sessionCode": sessionCode,
			"scheduleId":  schedule.ID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("session.snapshot.slots.fetch_failed: %w", domain.ErrFetchFailed)
	}

	snapshot := &domain.SessionSnapshot{
		Profiles: profiles,
		Schedule: *schedule,
		// Валидация строк schedule_times происходит здесь, на границе стора
		Slots: domain.NewScheduleSlotConfig(slots),
	}

	// Сохраняем в кэш только если он включен
	if s.cachePort != nil && s.cfg.Cache.Enabled {
		s.cachePort.StoreSessionSnapshot(ctx, sessionCode, *snapshot)
	}

	return snapshot, nil
}

func (s *ActivityTrackerService) DayOverview(ctx context.Context, sessionCode string, date *json_types.Date) (*domain.DayOverview, []domain.DebugInfo, error) {
	debugInfo := make([]domain.DebugInfo, 0)

	s.logger.Info("overview.started", out.LogFields{
		"sessionCode": sessionCode,
	})

	day := utils.Today()
	if date != nil {
		day = *date
	}

	snapshotDebug := domain.DebugInfo{Event: "overview.snapshot.fetch"}
	snapshotDebug.Start()

	snapshot, err := s.sessionSnapshot(ctx, sessionCode)
	if err != nil {
		return nil, nil, err
	}
	snapshotDebug.Elapse()
	debugInfo = append(debugInfo, snapshotDebug)

	activitiesDebug := domain.DebugInfo{Event: "overview.activities.fetch"}
	activitiesDebug.AddOption("date", day.String())
	activitiesDebug.Start()

	activities, err := s.supabasePort.GetActivities(ctx, sessionCode, day)
	if err != nil {
		s.logger.Error("overview.activities.fetch_failed", out.LogFields{
			"sessionCode": sessionCode,
			"date":        day.String(),
			"error":       err.Error(),
		})
		return nil, nil, fmt.Errorf("overview.activities.fetch_failed: %w", domain.ErrFetchFailed)
	}
	activitiesDebug.Elapse()
	debugInfo = append(debugInfo, activitiesDebug)

	computeDebug := domain.DebugInfo{Event: "overview.statuses.compute"}
	computeDebug.Start()

	statuses := ComputeSlotStatuses(snapshot.Slots, activities, snapshot.Profiles)
	nowPeriod := domain.TimePeriodAt(utils.Now())

	overview := &domain.DayOverview{
		SessionCode: sessionCode,
		Date:        day,
		NowPeriod:   nowPeriod,
		Statuses:    statuses,
		Schedule:    snapshot.Schedule,
		Slots:       snapshot.Slots,
		Profiles:    snapshot.Profiles,
		Activities:  ActivitySlice(activities).quickSort(),
	}

	if next, ok := PickNextSlot(statuses, nowPeriod); ok {
		overview.NextSlot = &next
	}

	computeDebug.Elapse()
	debugInfo = append(debugInfo, computeDebug)

	return overview, debugInfo, nil
}

func (s *ActivityTrackerService) RecordActivity(ctx context.Context, sessionCode string, newActivity domain.NewActivity) (*domain.Activity, error) {
	if !newActivity.Type.IsValid() {
		return nil, fmt.Errorf("activity.record.unknown_type %q: %w", newActivity.Type, domain.ErrInvalidInput)
	}

	snapshot, err := s.sessionSnapshot(ctx, sessionCode)
	if err != nil {
		return nil, err
	}

	now := utils.Now()

	day := utils.Today()
	if newActivity.Date != nil {
		day = *newActivity.Date
	}

	// Период по умолчанию - текущий, по часам таймзоны сессии
	timePeriod := newActivity.TimePeriod
	if timePeriod == "" {
		timePeriod = domain.TimePeriodAt(now)
	}
	if !timePeriod.IsValid() {
		return nil, fmt.Errorf("activity.record.unknown_time_period %q: %w", timePeriod, domain.ErrInvalidInput)
	}

	// Оптимистичная запись: сначала tentative, подтвержденной становится
	// только строка, которую вернул бэкенд
	tentative := domain.Activity{
		ID:          uuid.New(),
		Type:        newActivity.Type,
		TimePeriod:  timePeriod,
		Date:        day,
		CaretakerID: newActivity.CaretakerID,
		Notes:       newActivity.Notes,
		CreatedAt:   json_types.DateTime{Date: now},
		State:       domain.ActivityStateTentative,
	}

	confirmed, err := s.supabasePort.InsertActivity(ctx, tentative)
	if err != nil {
		s.logger.Error("activity.record.insert_failed", out.LogFields{
			"sessionCode": sessionCode,
			"type":        tentative.Type,
			"timePeriod":  tentative.TimePeriod,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("activity.record.insert_failed: %w", domain.ErrWriteFailed)
	}
	confirmed.State = domain.ActivityStateConfirmed

	s.logger.Info("activity.record.stored", out.LogFields{
		"sessionCode": sessionCode,
		"activityId":  confirmed.ID,
		"type":        confirmed.Type,
		"timePeriod":  confirmed.TimePeriod,
		"date":        confirmed.Date.String(),
	})

	// Уведомление строго после подтвержденной записи, сбой не откатывает запись
	if err := s.notifyActivityRecorded(ctx, sessionCode, snapshot.Profiles, *confirmed); err != nil {
		s.logger.Error("activity.notify.failed", out.LogFields{
			"sessionCode": sessionCode,
			"activityId":  confirmed.ID,
			"error":       err.Error(),
		})
	}

	return confirmed, nil
}

func (s *ActivityTrackerService) notifyActivityRecorded(ctx context.Context, sessionCode string, profiles []domain.CaretakerProfile, activity domain.Activity) error {
	if s.notifierPort == nil {
		return nil
	}

	actor := domain.ResolveCaretaker(profiles, activity.CaretakerID)

	notification := domain.Notification{
		Event: "activity.recorded",
		Title: activity.Type.Label() + " ✓",
		Body:  "Logged by " + actor.Name,
		Data: map[string]string{
			"sessionCode": sessionCode,
			"type":        string(activity.Type),
			"timePeriod":  string(activity.TimePeriod),
			"date":        activity.Date.String(),
			"caretakerId": activity.CaretakerID.String(),
			"caretaker":   actor.ShortName,
		},
	}

	if err := s.notifierPort.Broadcast(ctx, notification); err != nil {
		return fmt.Errorf("activity.notify.broadcast %v: %w", err, domain.ErrNotificationFailed)
	}

	return nil
}

func (s *ActivityTrackerService) ActivityLog(ctx context.Context, sessionCode string, from, to *json_types.Date) ([]domain.ActivityDayGroup, error) {
	end := utils.Today()
	if to != nil {
		end = *to
	}
	start := json_types.NewDate(end.Date.AddDate(0, 0, -defaultLogWindowDays))
	if from != nil {
		start = *from
	}

	activities, err := s.supabasePort.GetActivitiesRange(ctx, sessionCode, start, end)
	if err != nil {
		s.logger.Error("activity_log.fetch_failed", out.LogFields{
			"sessionCode": sessionCode,
			"from":        start.String(),
			"to":          end.String(),
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("activity_log.fetch_failed: %w", domain.ErrFetchFailed)
	}

	return GroupActivitiesByDate(activities), nil
}

func (s *ActivityTrackerService) Profiles(ctx context.Context, sessionCode string) ([]domain.CaretakerProfile, error) {
	snapshot, err := s.sessionSnapshot(ctx, sessionCode)
	if err != nil {
		return nil, err
	}
	return snapshot.Profiles, nil
}

func (s *ActivityTrackerService) GetSchedule(ctx context.Context, sessionCode string) (*domain.ScheduleDetails, error) {
	snapshot, err := s.sessionSnapshot(ctx, sessionCode)
	if err != nil {
		return nil, err
	}
	return &domain.ScheduleDetails{
		Schedule: snapshot.Schedule,
		Slots:    snapshot.Slots,
	}, nil
}

// requireAdmin проверяет, что действующий опекун есть в ростере и является админом
func requireAdmin(profiles []domain.CaretakerProfile, actorID uuid.UUID) error {
	for _, profile := range profiles {
		if profile.ID == actorID {
			if profile.IsAdmin {
				return nil
			}
			return fmt.Errorf("caretaker %s is not an admin: %w", actorID, domain.ErrForbidden)
		}
	}
	return fmt.Errorf("caretaker %s is not in the session roster: %w", actorID, domain.ErrForbidden)
}

func (s *ActivityTrackerService) UpdateSchedule(ctx context.Context, sessionCode string, actorID uuid.UUID, update domain.ScheduleUpdate) (*domain.Schedule, error) {
	snapshot, err := s.sessionSnapshot(ctx, sessionCode)
	if err != nil {
		return nil, err
	}

	if err := requireAdmin(snapshot.Profiles, actorID); err != nil {
		s.logger.Warn("schedule.update.forbidden", out.LogFields{
			"sessionCode": sessionCode,
			"actorId":     actorID,
		})
		return nil, err
	}

	schedule := snapshot.Schedule
	if update.FeedingInstruction != nil {
		schedule.FeedingInstruction = *update.FeedingInstruction
	}
	if update.WalkingInstruction != nil {
		schedule.WalkingInstruction = *update.WalkingInstruction
	}
	if update.LetoutInstruction != nil {
		schedule.LetoutInstruction = *update.LetoutInstruction
	}
	if update.LetoutCount != nil {
		schedule.LetoutCount = *update.LetoutCount
	}

	updated, err := s.supabasePort.UpdateSchedule(ctx, schedule)
	if err != nil {
		s.logger.Error("schedule.update.failed", out.LogFields{
			"sessionCode": sessionCode,
			"scheduleId":  schedule.ID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("schedule.update.failed: %w", domain.ErrWriteFailed)
	}

	s.InvalidateSessionCache(ctx, sessionCode)

	s.logger.Info("schedule.update.stored", out.LogFields{
		"sessionCode": sessionCode,
		"scheduleId":  updated.ID,
	})

	return updated, nil
}

func (s *ActivityTrackerService) ReplaceScheduleSlots(ctx context.Context, sessionCode string, actorID uuid.UUID, slots []domain.SlotRef) (*domain.ScheduleSlotConfig, error) {
	snapshot, err := s.sessionSnapshot(ctx, sessionCode)
	if err != nil {
		return nil, err
	}

	if err := requireAdmin(snapshot.Profiles, actorID); err != nil {
		s.logger.Warn("schedule.slots.replace.forbidden", out.LogFields{
			"sessionCode": sessionCode,
			"actorId":     actorID,
		})
		return nil, err
	}

	rows := make([]domain.ScheduleSlot, 0, len(slots))
	for _, slot := range slots {
		// Домен фиксированный 3x3, неизвестные значения отклоняем на границе
		if !slot.Type.IsValid() || !slot.TimePeriod.IsValid() {
			return nil, fmt.Errorf("schedule.slots.replace.unknown_slot %s/%s: %w", slot.Type, slot.TimePeriod, domain.ErrInvalidInput)
		}
		rows = append(rows, domain.ScheduleSlot{
			ID:           uuid.New(),
			ScheduleID:   snapshot.Schedule.ID,
			ActivityType: slot.Type,
			TimePeriod:   slot.TimePeriod,
		})
	}

	if err := s.supabasePort.ReplaceScheduleSlots(ctx, snapshot.Schedule.ID, rows); err != nil {
		s.logger.Error("schedule.slots.replace.failed", out.LogFields{
			"sessionCode": sessionCode,
			"scheduleId":  snapshot.Schedule.ID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("schedule.slots.replace.failed: %w", domain.ErrWriteFailed)
	}

	s.InvalidateSessionCache(ctx, sessionCode)

	slotConfig := domain.NewScheduleSlotConfig(rows)

	s.logger.Info("schedule.slots.replace.stored", out.LogFields{
		"sessionCode": sessionCode,
		"scheduleId":  snapshot.Schedule.ID,
		"slotsCount":  len(rows),
	})

	return &slotConfig, nil
}

func (s *ActivityTrackerService) InvalidateSessionCache(ctx context.Context, sessionCode string) {
	if s.cachePort == nil {
		return
	}
	s.cachePort.InvalidateSessionSnapshot(ctx, sessionCode)
}

func (s *ActivityTrackerService) InvalidateAllSessionsCache(ctx context.Context) {
	if s.cachePort == nil {
		return
	}
	s.cachePort.InvalidateAllSessions(ctx)
}
