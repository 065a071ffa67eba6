package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mediiq/mediiq-api/internal/model"
)

func TestDueOnDaily(t *testing.T) {
	r := newReminder("guest", "08:00")
	r.Repeat = model.RepeatDaily

	for days := 0; days < 5; days++ {
		day := r.CreatedAt.AddDate(0, 0, days)
		assert.True(t, dueOn(r, day))
	}
}

func TestDueOnAlternate(t *testing.T) {
	r := newReminder("guest", "08:00")
	r.Repeat = model.RepeatAlternate

	assert.True(t, dueOn(r, r.CreatedAt), "creation day is due")
	assert.False(t, dueOn(r, r.CreatedAt.AddDate(0, 0, 1)))
	assert.True(t, dueOn(r, r.CreatedAt.AddDate(0, 0, 2)))
	assert.False(t, dueOn(r, r.CreatedAt.AddDate(0, 0, 3)))
}

func TestDueOnAlternateCountsCalendarDays(t *testing.T) {
	r := newReminder("guest", "23:50")
	r.Repeat = model.RepeatAlternate
	r.CreatedAt = time.Date(2026, 3, 10, 23, 50, 0, 0, time.Local)

	// Ten minutes later is already the next calendar day.
	assert.False(t, dueOn(r, time.Date(2026, 3, 11, 0, 0, 0, 0, time.Local)))
	assert.True(t, dueOn(r, time.Date(2026, 3, 12, 0, 0, 0, 0, time.Local)))
}

func TestDueOnCustomWeekdays(t *testing.T) {
	r := newReminder("guest", "08:00")
	r.Repeat = model.RepeatCustom
	r.Weekdays = model.WeekdaySet{1, 3, 5} // Mon, Wed, Fri

	monday := time.Date(2026, 3, 9, 8, 0, 0, 0, time.Local)
	assert.True(t, dueOn(r, monday))
	assert.False(t, dueOn(r, monday.AddDate(0, 0, 1)))
	assert.True(t, dueOn(r, monday.AddDate(0, 0, 2)))
	assert.False(t, dueOn(r, monday.AddDate(0, 0, 6)))
}

func TestDueOnCustomEmptySetMeansEveryDay(t *testing.T) {
	r := newReminder("guest", "08:00")
	r.Repeat = model.RepeatCustom
	r.Weekdays = nil

	for days := 0; days < 7; days++ {
		assert.True(t, dueOn(r, r.CreatedAt.AddDate(0, 0, days)))
	}
}
