package model

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the canonical text form of a Day.
const DayLayout = "2006-01-02"

// legacyDayLayouts are key formats written by older stores
// (JavaScript Date.toDateString and full ISO timestamps).
var legacyDayLayouts = []string{
	"Mon Jan 02 2006",
	"Mon Jan 2 2006",
	time.RFC3339Nano,
	time.RFC3339,
}

// Day is a calendar date without time of day or location. It is used as the
// history key so that lookups never depend on locale formatting.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar day of t in t's location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// NewDay builds a normalized Day (out-of-range values roll over like time.Date).
func NewDay(year int, month time.Month, day int) Day {
	return DayOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDay parses the canonical ISO form, falling back to legacy key formats.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DayLayout, s); err == nil {
		return DayOf(t), nil
	}
	for _, layout := range legacyDayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if layout == time.RFC3339 || layout == time.RFC3339Nano {
				t = t.Local()
			}
			return DayOf(t), nil
		}
	}
	return Day{}, fmt.Errorf("invalid date %q", s)
}

// In returns midnight of d in loc.
func (d Day) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Time returns midnight of d in the local timezone.
func (d Day) Time() time.Time {
	return d.In(time.Local)
}

// AddDays returns the day n days after d.
func (d Day) AddDays(n int) Day {
	return NewDay(d.Year, d.Month, d.Day+n)
}

// Before reports whether d is strictly earlier than o.
func (d Day) Before(o Day) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// After reports whether d is strictly later than o.
func (d Day) After(o Day) bool {
	return o.Before(d)
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool {
	return d == Day{}
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler, so Day works as a JSON map key.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Day) UnmarshalText(b []byte) error {
	if s := string(b); s == "" || s == (Day{}).String() {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
