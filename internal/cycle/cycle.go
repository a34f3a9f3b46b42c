// Package cycle resolves billing-cycle windows: recurring monthly periods
// bounded by a configured start and end day that may wrap across a month
// boundary (for example 26 through 25).
package cycle

import (
	"time"

	"github.com/Tiliavir/work-hours-tracker/internal/model"
	"github.com/Tiliavir/work-hours-tracker/internal/timecalc"
)

// Window is a closed interval [Start, End] aligned to day boundaries.
type Window struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// Resolve returns the cycle for ref given the configured start and end days.
//
// Without wrapping (startDay <= endDay) a reference day before startDay
// belongs to the previous month's cycle and one after endDay to the next
// month's. With wrapping, days on or after startDay open a cycle ending next
// month, days on or before endDay close a cycle that started last month, and
// days in between resolve to the next cycle.
func Resolve(ref time.Time, startDay, endDay int) Window {
	startDay = timecalc.ClampDay(startDay)
	endDay = timecalc.ClampDay(endDay)

	year, month, day := ref.Date()
	loc := ref.Location()

	var startMonth, endMonth time.Month
	if startDay <= endDay {
		offset := time.Month(0)
		switch {
		case day < startDay:
			offset = -1
		case day > endDay:
			offset = 1
		}
		startMonth, endMonth = month+offset, month+offset
	} else {
		switch {
		case day >= startDay:
			startMonth, endMonth = month, month+1
		case day <= endDay:
			startMonth, endMonth = month-1, month
		default:
			startMonth, endMonth = month, month+1
		}
	}

	start := timecalc.SafeDateForDay(year, startMonth, startDay, loc)
	end := timecalc.EndOfDay(timecalc.SafeDateForDay(year, endMonth, endDay, loc))
	return Window{Start: start, End: end}
}

// ForSettings resolves the cycle around ref using the configured bounds.
func ForSettings(ref time.Time, s model.Settings) Window {
	return Resolve(ref, s.MonthStartDay, s.MonthEndDay)
}

// Contains reports whether t lies within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ContainsDay reports whether the calendar day d lies within the window.
func (w Window) ContainsDay(d model.Day) bool {
	return w.Contains(d.In(w.Start.Location()))
}

// FirstDay returns the first calendar day of the window.
func (w Window) FirstDay() model.Day {
	return model.DayOf(w.Start)
}

// LastDay returns the last calendar day of the window.
func (w Window) LastDay() model.Day {
	return model.DayOf(w.End)
}

// Days returns the number of calendar days in the window.
func (w Window) Days() int {
	return timecalc.DaysBetween(w.Start, w.End) + 1
}
