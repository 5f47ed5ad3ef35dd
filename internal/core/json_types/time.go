package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay - время суток слота расписания, в базе хранится как "08:00" или "08:00:00"
type TimeOfDay struct {
	Time time.Time
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	// Убираем кавычки вокруг строки
	str := string(data[1 : len(data)-1])
	parsedTime, err := time.Parse("15:04", str)
	if err != nil {
		parsedTime, err = time.Parse("15:04:05", str)
		if err != nil {
			return fmt.Errorf("failed to parse time: %v", err)
		}
	}
	*t = TimeOfDay{Time: parsedTime}
	return nil
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format("15:04"))
}
