package timecalc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatDuration formats d as "1h 40m" or "45m". Seconds are discarded and
// negative durations render as "0m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int64(d / time.Hour)
	m := int64((d % time.Hour) / time.Minute)
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatTimer formats d as HH:MM:SS, clamping negative values to zero.
func FormatTimer(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ClampDay clamps a day-of-month value into [1, 31].
func ClampDay(n int) int {
	switch {
	case n < 1:
		return 1
	case n > 31:
		return 31
	}
	return n
}

// ClampDayString parses a day-of-month from user input, rounding to the
// nearest integer. Non-numeric input yields 1.
func ClampDayString(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	return ClampDay(int(math.Round(f)))
}

// StartOfDay returns 00:00:00.000 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// DaysIn returns the number of days in the given month. The month may be out
// of range and is normalized the way time.Date normalizes it.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SafeDateForDay builds midnight of the given day, clamping day to the last
// real day of the month (day 31 in February gives Feb 28 or 29). month may
// overflow or underflow into neighbouring years.
func SafeDateForDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := DaysIn(first.Year(), first.Month())
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, loc)
}

// DaysBetween returns the number of calendar days from a to b, ignoring the
// time of day and DST shifts. It is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour))
}

var clockLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04:05 PM", "3:04PM", "3:04:05PM"}

// ParseClock parses a wall-clock time such as "9:00", "17:30:15" or
// "5:30 PM" and returns its offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("invalid time %q", s)
}

// AtClock returns the wall-clock time clock on day's date.
func AtClock(day time.Time, clock time.Duration) time.Time {
	h := int(clock / time.Hour)
	m := int((clock % time.Hour) / time.Minute)
	s := int((clock % time.Minute) / time.Second)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, s, 0, day.Location())
}

// ParseDuration parses the FormatDuration form ("8h 30m", "45m") or any
// non-negative value accepted by time.ParseDuration.
func ParseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}
