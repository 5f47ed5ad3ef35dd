package utils

import (
	"fmt"
	"time"

	"github.com/dingdongdog/supabase-activity-tracker/internal/config"
	"github.com/dingdongdog/supabase-activity-tracker/internal/core/json_types"
)

// Today - текущая календарная дата в таймзоне сессии
// "Сегодня" у всех опекунов одно, независимо от их локальных часов
func Today() json_types.Date {
	return json_types.NewDate(time.Now().In(config.TimeZone))
}

// Now - текущее время в таймзоне сессии
func Now() time.Time {
	return time.Now().In(config.TimeZone)
}

// ParseDate парсит дату из строки в формате RFC3339, если не удается, то пробует парсить дату со временем, но без таймзоны
func ParseDate(str string) (time.Time, error) {
	parsedDate, err := time.Parse(time.RFC3339, str)
	// Если не удалось пробуем дату со временем, но без таймзоны
	// По дефолту ставим таймзону из конфига
	if err != nil {
		location := config.TimeZone
		parsedDate, err = time.ParseInLocation("2006-01-02T15:04:05", str, location)
		if err != nil {
			// Если не удалось, пробуем как дату без времени
			parsedDate, err = time.ParseInLocation("2006-01-02", str, location)
			if err != nil {
				return time.Time{}, fmt.Errorf("failed to parse time: %v", err)
			}
		}
	}

	return parsedDate, nil
}

// ParseDay парсит календарную дату вида 2006-01-02
func ParseDay(str string) (json_types.Date, error) {
	parsed, err := ParseDate(str)
	if err != nil {
		return json_types.Date{}, err
	}
	return json_types.NewDate(parsed), nil
}
