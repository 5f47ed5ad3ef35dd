package json_types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dingdongdog/supabase-activity-tracker/internal/config"
)

func parseDate(str string) (time.Time, error) {
	// Supabase отдает timestamptz с микросекундами, RFC3339Nano покрывает оба варианта
	parsedDate, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		// Если не удалось, пробуем дату со временем, но без таймзоны
		// По дефолту ставим таймзону сессии
		parsedDate, err = time.ParseInLocation("2006-01-02T15:04:05", str, config.TimeZone)
		if err != nil {
			// Если не удалось, пробуем как дату без времени
			parsedDate, err = time.ParseInLocation("2006-01-02", str, config.TimeZone)
			if err != nil {
				return time.Time{}, fmt.Errorf("failed to parse time: %v", err)
			}
		}
	}

	return parsedDate, nil
}

type DateTime struct {
	Date time.Time
}

func (t *DateTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	// Убираем кавычки вокруг строки
	str := string(data[1 : len(data)-1])

	parsedDate, err := parseDate(str)
	if err != nil {
		return err
	}

	*t = DateTime{Date: parsedDate}
	return nil
}

func (t DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Date.In(config.TimeZone).Format(time.RFC3339))
}

// Date - календарная дата без времени, ключ для "сегодня"
type Date struct {
	Date time.Time
}

func NewDate(t time.Time) Date {
	t = t.In(config.TimeZone)
	return Date{Date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, config.TimeZone)}
}

func (t *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	// Убираем кавычки вокруг строки
	str := string(data[1 : len(data)-1])

	parsedDate, err := parseDate(str)
	if err != nil {
		return err
	}

	*t = NewDate(parsedDate)
	return nil
}

func (t Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t Date) String() string {
	return t.Date.Format("2006-01-02")
}

func (t Date) Equal(other Date) bool {
	return t.String() == other.String()
}

func (t Date) IsZero() bool {
	return t.Date.IsZero()
}
