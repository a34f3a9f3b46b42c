package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Millis is a duration in whole milliseconds as stored on disk.
type Millis int64

// MillisOf converts d to Millis, truncating sub-millisecond precision.
func MillisOf(d time.Duration) Millis {
	return Millis(d / time.Millisecond)
}

// HoursToMillis converts fractional hours to Millis, rounding to the nearest
// millisecond.
func HoursToMillis(h float64) Millis {
	return Millis(math.Round(h * float64(time.Hour/time.Millisecond)))
}

// Duration converts m to a time.Duration.
func (m Millis) Duration() time.Duration {
	return time.Duration(m) * time.Millisecond
}

// Hours returns m as fractional hours.
func (m Millis) Hours() float64 {
	return m.Duration().Hours()
}

// UnmarshalJSON accepts integer and fractional numbers. Older stores wrote
// overtime as a float product, which is rounded here.
func (m *Millis) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*m = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("invalid millisecond value %s: %w", b, err)
	}
	*m = Millis(math.Round(f))
	return nil
}
