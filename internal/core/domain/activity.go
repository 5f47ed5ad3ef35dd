package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/dingdongdog/supabase-activity-tracker/internal/core/json_types"
)

type ActivityType string

const (
	ActivityTypeFeed   ActivityType = "feed"
	ActivityTypeWalk   ActivityType = "walk"
	ActivityTypeLetout ActivityType = "letout"
)

// Порядок фиксированный, в нем же отдаются статусы слотов
var ActivityTypesOrdered = []ActivityType{
	ActivityTypeFeed,
	ActivityTypeWalk,
	ActivityTypeLetout,
}

func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityTypeFeed, ActivityTypeWalk, ActivityTypeLetout:
		return true
	}
	return false
}

// Label - человекочитаемая метка действия для уведомлений
func (t ActivityType) Label() string {
	switch t {
	case ActivityTypeFeed:
		return "Fed"
	case ActivityTypeWalk:
		return "Walked"
	case ActivityTypeLetout:
		return "Let Out"
	}
	return string(t)
}

type TimePeriod string

const (
	TimePeriodMorning   TimePeriod = "morning"
	TimePeriodAfternoon TimePeriod = "afternoon"
	TimePeriodEvening   TimePeriod = "evening"
)

var TimePeriodsOrdered = []TimePeriod{
	TimePeriodMorning,
	TimePeriodAfternoon,
	TimePeriodEvening,
}

func (p TimePeriod) IsValid() bool {
	switch p {
	case TimePeriodMorning, TimePeriodAfternoon, TimePeriodEvening:
		return true
	}
	return false
}

// TimePeriodOfHour - период суток по часу: до 12 утро, до 17 день, дальше вечер
func TimePeriodOfHour(hour int) TimePeriod {
	if hour < 12 {
		return TimePeriodMorning
	}
	if hour < 17 {
		return TimePeriodAfternoon
	}
	return TimePeriodEvening
}

func TimePeriodAt(t time.Time) TimePeriod {
	return TimePeriodOfHour(t.Hour())
}

type ActivityState string

const (
	// Запись создана локально, но еще не подтверждена бэкендом
	ActivityStateTentative ActivityState = "tentative"
	// Запись подтверждена бэкендом
	ActivityStateConfirmed ActivityState = "confirmed"
)

type Activity struct {
	ID          uuid.UUID           `json:"id"`
	Type        ActivityType        `json:"type"`
	TimePeriod  TimePeriod          `json:"time_period"`
	Date        json_types.Date     `json:"date"`
	CaretakerID uuid.UUID           `json:"caretaker_id"`
	Notes       string              `json:"notes,omitempty"`
	CreatedAt   json_types.DateTime `json:"created_at"`

	State ActivityState `json:"-"`
}

// NewActivity - запрос на создание записи активности
type NewActivity struct {
	Type        ActivityType
	TimePeriod  TimePeriod
	CaretakerID uuid.UUID
	Notes       string
	Date        *json_types.Date
}

// ActivityDayGroup - записи одного календарного дня для журнала
type ActivityDayGroup struct {
	Date       json_types.Date `json:"date"`
	Activities []Activity      `json:"activities"`
}
