package domain

import (
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/json_types"
)

type SlotState string

const (
	SlotStatePending   SlotState = "pending"
	SlotStateCompleted SlotState = "completed"
)

// SlotRef - одна комбинация (тип активности, период суток)
type SlotRef struct {
	Type       ActivityType `json:"type"`
	TimePeriod TimePeriod   `json:"time_period"`
}

// SlotStatus - производное состояние включенного слота на конкретный день
// Слот completed, если есть хотя бы одна запись с совпадающими типом и периодом
type SlotStatus struct {
	Type        ActivityType         `json:"type"`
	TimePeriod  TimePeriod           `json:"time_period"`
	State       SlotState            `json:"state"`
	CompletedBy *CaretakerRef        `json:"completed_by,omitempty"`
	CompletedAt *json_types.DateTime `json:"completed_at,omitempty"`
}

func (s SlotStatus) Ref() SlotRef {
	return SlotRef{Type: s.Type, TimePeriod: s.TimePeriod}
}

// SessionSnapshot - кэшируемая часть сессии: ростер и конфигурация расписания
// Записи активностей сюда не входят, они всегда читаются заново
type SessionSnapshot struct {
	Profiles []CaretakerProfile
	Schedule Schedule
	Slots    ScheduleSlotConfig
}

// DayOverview - все, что нужно экрану "сегодня"
type DayOverview struct {
	SessionCode string             `json:"session_code"`
	Date        json_types.Date    `json:"date"`
	NowPeriod   TimePeriod         `json:"now_period"`
	Statuses    []SlotStatus       `json:"statuses"`
	NextSlot    *SlotRef           `json:"next_slot,omitempty"`
	Schedule    Schedule           `json:"schedule"`
	Slots       ScheduleSlotConfig `json:"slots"`
	Profiles    []CaretakerProfile `json:"profiles"`
	Activities  []Activity         `json:"activities"`
}
