package scheduler

import (
	"time"

	"github.com/mediiq/mediiq-api/internal/model"
)

// dueOn evaluates the reminder's repeat rule for the given day.
//   - daily: every day
//   - alternate: every second day counted from the creation date
//   - custom: days in the weekday set (empty set means every day)
func dueOn(r *model.Reminder, day time.Time) bool {
	switch r.Repeat {
	case model.RepeatAlternate:
		return daysBetween(r.CreatedAt, day)%2 == 0
	case model.RepeatCustom:
		if len(r.Weekdays) == 0 {
			return true
		}
		return r.Weekdays.Contains(int(day.Weekday()))
	default:
		return true
	}
}

// daysBetween counts whole calendar days from a to b in b's location.
func daysBetween(a, b time.Time) int {
	loc := b.Location()
	aDay := time.Date(a.In(loc).Year(), a.In(loc).Month(), a.In(loc).Day(), 0, 0, 0, 0, loc)
	bDay := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, loc)
	d := int(bDay.Sub(aDay).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}
