package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// WeekdaySet is a set of weekday indices (0=Sunday..6=Saturday) stored
// as a JSON array in a text column.
type WeekdaySet []int

func (w WeekdaySet) Contains(day int) bool {
	for _, d := range w {
		if d == day {
			return true
		}
	}
	return false
}

func (w WeekdaySet) Value() (driver.Value, error) {
	if len(w) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (w *WeekdaySet) Scan(src interface{}) error {
	if src == nil {
		*w = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported weekday set type %T", src)
	}
	if len(data) == 0 {
		*w = nil
		return nil
	}
	// Malformed stored data degrades to an empty set, same as other
	// persisted snapshots.
	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		*w = nil
		return nil
	}
	*w = days
	return nil
}
