package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dingdongdog/supabase-activity-tracker/internal/core/domain"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/json_types"
)

func fullSlotConfig() domain.ScheduleSlotConfig {
	all := domain.SlotFlags{Morning: true, Afternoon: true, Evening: true}
	return domain.ScheduleSlotConfig{Feed: all, Walk: all, Letout: all}
}

func activityAt(activityType domain.ActivityType, timePeriod domain.TimePeriod, caretakerID uuid.UUID, createdAt time.Time) domain.Activity {
	return domain.Activity{
		ID:          uuid.New(),
		Type:        activityType,
		TimePeriod:  timePeriod,
		CaretakerID: caretakerID,
		CreatedAt:   json_types.DateTime{Date: createdAt},
	}
}

func TestComputeSlotStatusesAllPending(t *testing.T) {
	statuses := ComputeSlotStatuses(fullSlotConfig(), nil, nil)

	require.Len(t, statuses, 9)
	for _, status := range statuses {
		assert.Equal(t, domain.SlotStatePending, status.State)
		assert.Nil(t, status.CompletedBy)
		assert.Nil(t, status.CompletedAt)
	}
}

func TestComputeSlotStatusesFixedOrder(t *testing.T) {
	statuses := ComputeSlotStatuses(fullSlotConfig(), nil, nil)

	expected := []domain.SlotRef{
		{Type: domain.ActivityTypeFeed, TimePeriod: domain.TimePeriodMorning},
		{Type: domain.ActivityTypeFeed, TimePeriod: domain.TimePeriodAfternoon},
		{Type: domain.ActivityTypeFeed, TimePeriod: domain.TimePeriodEvening},
		{Type: domain.ActivityTypeWalk, TimePeriod: domain.TimePeriodMorning},
		{Type: domain.ActivityTypeWalk, TimePeriod: domain.TimePeriodAfternoon},
		{Type: domain.ActivityTypeWalk, TimePeriod: domain.TimePeriodEvening},
		{Type: domain.ActivityTypeLetout, TimePeriod: domain.TimePeriodMorning},
		{Type: domain.ActivityTypeLetout, TimePeriod: domain.TimePeriodAfternoon},
		{Type: domain.ActivityTypeLetout, TimePeriod: domain.TimePeriodEvening},
	}

	require.Len(t, statuses, len(expected))
	for i, status := range statuses {
		assert.Equal(t, expected[i], status.Ref())
	}
}

func TestComputeSlotStatusesDisabledSlotsExcluded(t *testing.T) {
	config := domain.ScheduleSlotConfig{
		Feed: domain.SlotFlags{Morning: true, Evening: true},
		Walk: domain.SlotFlags{Afternoon: true},
	}

	// Запись по выключенному слоту не воскрешает его
	activities := []domain.Activity{
		activityAt(domain.ActivityTypeLetout, domain.TimePeriodMorning, uuid.New(), time.Now()),
	}

	statuses := ComputeSlotStatuses(config, activities, nil)

	require.Len(t, statuses, 3)
	assert.Equal(t, domain.SlotRef{Type: domain.ActivityTypeFeed, TimePeriod: domain.TimePeriodMorning}, statuses[0].Ref())
	assert.Equal(t, domain.SlotRef{Type: domain.ActivityTypeFeed, TimePeriod: domain.TimePeriodEvening}, statuses[1].Ref())
	assert.Equal(t, domain.SlotRef{Type: domain.ActivityTypeWalk, TimePeriod: domain.TimePeriodAfternoon}, statuses[2].Ref())
}

func TestComputeSlotStatusesCompletion(t *testing.T) {
	alice := domain.CaretakerProfile{ID: uuid.New(), Name: "Alice", ShortName: "A"}
	profiles := []domain.CaretakerProfile{alice}

	completedAt := time.Date(2026, 8, 28, 7, 30, 0, 0, time.UTC)
	activities := []domain.Activity{
		activityAt(domain.ActivityTypeFeed, domain.TimePeriodMorning, alice.ID, completedAt),
	}

	statuses := ComputeSlotStatuses(fullSlotConfig(), activities, profiles)

	feedMorning := statuses[0]
	require.Equal(t, domain.SlotStateCompleted, feedMorning.State)
	require.NotNil(t, feedMorning.CompletedBy)
	assert.Equal(t, "Alice", feedMorning.CompletedBy.Name)
	require.NotNil(t, feedMorning.CompletedAt)
	assert.True(t, feedMorning.CompletedAt.Date.Equal(completedAt))

	// Остальные слоты не затронуты
	for _, status := range statuses[1:] {
		assert.Equal(t, domain.SlotStatePending, status.State)
	}
}

func TestComputeSlotStatusesLatestRecordWins(t *testing.T) {
	alice := domain.CaretakerProfile{ID: uuid.New(), Name: "Alice", ShortName: "A"}
	bob := domain.CaretakerProfile{ID: uuid.New(), Name: "Bob", ShortName: "B"}
	profiles := []domain.CaretakerProfile{alice, bob}

	earlier := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)
	later := time.Date(2026, 8, 28, 7, 45, 0, 0, time.UTC)

	// Двойная отметка одного слота: атрибуция достается поздней записи
	activities := []domain.Activity{
		activityAt(domain.ActivityTypeFeed, domain.TimePeriodMorning, alice.ID, earlier),
		activityAt(domain.ActivityTypeFeed, domain.TimePeriodMorning, bob.ID, later),
	}

	statuses := ComputeSlotStatuses(fullSlotConfig(), activities, profiles)

	feedMorning := statuses[0]
	require.Equal(t, domain.SlotStateCompleted, feedMorning.State)
	require.NotNil(t, feedMorning.CompletedBy)
	assert.Equal(t, "Bob", feedMorning.CompletedBy.Name)
	assert.True(t, feedMorning.CompletedAt.Date.Equal(later))
}

func TestComputeSlotStatusesUnknownCaretaker(t *testing.T) {
	activities := []domain.Activity{
		activityAt(domain.ActivityTypeWalk, domain.TimePeriodEvening, uuid.New(), time.Now()),
	}

	statuses := ComputeSlotStatuses(fullSlotConfig(), activities, nil)

	var walkEvening *domain.SlotStatus
	for i := range statuses {
		if statuses[i].Type == domain.ActivityTypeWalk && statuses[i].TimePeriod == domain.TimePeriodEvening {
			walkEvening = &statuses[i]
		}
	}

	require.NotNil(t, walkEvening)
	require.Equal(t, domain.SlotStateCompleted, walkEvening.State)
	assert.Equal(t, domain.UnknownCaretakerName, walkEvening.CompletedBy.Name)
	assert.Equal(t, domain.UnknownCaretakerShortName, walkEvening.CompletedBy.ShortName)
}

func TestComputeSlotStatusesIdempotent(t *testing.T) {
	alice := domain.CaretakerProfile{ID: uuid.New(), Name: "Alice", ShortName: "A"}
	activities := []domain.Activity{
		activityAt(domain.ActivityTypeFeed, domain.TimePeriodMorning, alice.ID, time.Now()),
	}

	first := ComputeSlotStatuses(fullSlotConfig(), activities, []domain.CaretakerProfile{alice})
	second := ComputeSlotStatuses(fullSlotConfig(), activities, []domain.CaretakerProfile{alice})

	assert.Equal(t, first, second)
}

func TestPickNextSlotCurrentPeriodFirst(t *testing.T) {
	statuses := ComputeSlotStatuses(fullSlotConfig(), nil, nil)

	next, ok := PickNextSlot(statuses, domain.TimePeriodAfternoon)

	require.True(t, ok)
	// Утренние слоты пропускаем, первый подходящий - feed/afternoon
	assert.Equal(t, domain.SlotRef{Type: domain.ActivityTypeFeed, TimePeriod: domain.TimePeriodAfternoon}, next)
}

func TestPickNextSlotWrapsToEarlierPending(t *testing.T) {
	config := domain.ScheduleSlotConfig{
		Feed: domain.SlotFlags{Morning: true},
	}

	statuses := ComputeSlotStatuses(config, nil, nil)

	// Вечером остался только незакрытый утренний слот - показываем его
	next, ok := PickNextSlot(statuses, domain.TimePeriodEvening)

	require.True(t, ok)
	assert.Equal(t, domain.SlotRef{Type: domain.ActivityTypeFeed, TimePeriod: domain.TimePeriodMorning}, next)
}

func TestPickNextSlotAllCompleted(t *testing.T) {
	config := domain.ScheduleSlotConfig{
		Feed: domain.SlotFlags{Morning: true},
	}
	activities := []domain.Activity{
		activityAt(domain.ActivityTypeFeed, domain.TimePeriodMorning, uuid.New(), time.Now()),
	}

	statuses := ComputeSlotStatuses(config, activities, nil)

	_, ok := PickNextSlot(statuses, domain.TimePeriodMorning)
	assert.False(t, ok)
}

func TestPickNextSlotEmptyConfig(t *testing.T) {
	_, ok := PickNextSlot(nil, domain.TimePeriodMorning)
	assert.False(t, ok)
}
