package domain

import (
	"github.com/google/uuid"

	"github.com/dingdongdog/supabase-activity-tracker/internal/core/json_types"
)

type Schedule struct {
	ID                 uuid.UUID `json:"id"`
	SessionCode        string    `json:"session_code"`
	FeedingInstruction string    `json:"feeding_instruction"`
	WalkingInstruction string    `json:"walking_instruction"`
	LetoutInstruction  string    `json:"letout_instruction"`
	LetoutCount        int       `json:"letout_count"`
}

// ScheduleSlot - строка таблицы schedule_times, один включенный слот плана
type ScheduleSlot struct {
	ID           uuid.UUID            `json:"id"`
	ScheduleID   uuid.UUID            `json:"schedule_id"`
	ActivityType ActivityType         `json:"activity_type"`
	TimePeriod   TimePeriod           `json:"time_period"`
	TimeOfDay    json_types.TimeOfDay `json:"time_of_day"`
}

// SlotFlags - ровно три периода на тип активности, без открытых map
type SlotFlags struct {
	Morning   bool `json:"morning"`
	Afternoon bool `json:"afternoon"`
	Evening   bool `json:"evening"`
}

func (f SlotFlags) On(p TimePeriod) bool {
	switch p {
	case TimePeriodMorning:
		return f.Morning
	case TimePeriodAfternoon:
		return f.Afternoon
	case TimePeriodEvening:
		return f.Evening
	}
	return false
}

func (f *SlotFlags) set(p TimePeriod) {
	switch p {
	case TimePeriodMorning:
		f.Morning = true
	case TimePeriodAfternoon:
		f.Afternoon = true
	case TimePeriodEvening:
		f.Evening = true
	}
}

type ScheduleSlotConfig struct {
	Feed   SlotFlags `json:"feed"`
	Walk   SlotFlags `json:"walk"`
	Letout SlotFlags `json:"letout"`
}

// NewScheduleSlotConfig валидирует строки schedule_times на границе стора
// Неизвестные типы и периоды игнорируем, чтобы переживать дрейф схемы
func NewScheduleSlotConfig(slots []ScheduleSlot) ScheduleSlotConfig {
	config := ScheduleSlotConfig{}
	for _, slot := range slots {
		if !slot.ActivityType.IsValid() || !slot.TimePeriod.IsValid() {
			continue
		}
		config.flags(slot.ActivityType).set(slot.TimePeriod)
	}
	return config
}

func (c *ScheduleSlotConfig) flags(t ActivityType) *SlotFlags {
	switch t {
	case ActivityTypeFeed:
		return &c.Feed
	case ActivityTypeWalk:
		return &c.Walk
	case ActivityTypeLetout:
		return &c.Letout
	}
	return &SlotFlags{}
}

// Count - число включенных слотов
func (c ScheduleSlotConfig) Count() int {
	count := 0
	for _, activityType := range ActivityTypesOrdered {
		for _, timePeriod := range TimePeriodsOrdered {
			if c.Enabled(activityType, timePeriod) {
				count++
			}
		}
	}
	return count
}

func (c ScheduleSlotConfig) Enabled(t ActivityType, p TimePeriod) bool {
	switch t {
	case ActivityTypeFeed:
		return c.Feed.On(p)
	case ActivityTypeWalk:
		return c.Walk.On(p)
	case ActivityTypeLetout:
		return c.Letout.On(p)
	}
	return false
}

// ScheduleUpdate - изменяемые админом поля расписания
type ScheduleUpdate struct {
	FeedingInstruction *string
	WalkingInstruction *string
	LetoutInstruction  *string
	LetoutCount        *int
}

// ScheduleDetails - расписание вместе с включенными слотами
type ScheduleDetails struct {
	Schedule Schedule           `json:"schedule"`
	Slots    ScheduleSlotConfig `json:"slots"`
}
