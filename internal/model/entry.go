package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/Tiliavir/work-hours-tracker/internal/timecalc"
)

// Settings is the user-editable configuration of the accounting rules.
// JSON keys match the workSettings record of existing stores.
type Settings struct {
	MonthlyTargetHours      float64 `json:"monthlyTarget" yaml:"monthly_target_hours"`
	DailyHours              float64 `json:"dailyHours" yaml:"daily_hours"`
	OvertimeThresholdHours  float64 `json:"overtimeThreshold" yaml:"overtime_threshold_hours"`
	CheckoutReminderEnabled bool    `json:"checkoutReminder" yaml:"checkout_reminder"`
	OvertimeAlertEnabled    bool    `json:"overtimeAlert" yaml:"overtime_alert"`
	// MonthStartDay and MonthEndDay bound the billing cycle. Start > End
	// means the cycle wraps into the following month.
	MonthStartDay  int    `json:"monthStartDay" yaml:"month_start_day"`
	MonthEndDay    int    `json:"monthEndDay" yaml:"month_end_day"`
	CarryForwardMs Millis `json:"carryForward" yaml:"carry_forward_ms"`
}

// DefaultSettings returns the settings used when nothing is stored.
func DefaultSettings() Settings {
	return Settings{
		MonthlyTargetHours:     160,
		DailyHours:             8,
		OvertimeThresholdHours: 8,
		MonthStartDay:          1,
		MonthEndDay:            31,
	}
}

// Normalize clamps the cycle days into [1, 31] and drops a negative
// carry-forward balance.
func (s Settings) Normalize() Settings {
	s.MonthStartDay = timecalc.ClampDay(s.MonthStartDay)
	s.MonthEndDay = timecalc.ClampDay(s.MonthEndDay)
	if s.CarryForwardMs < 0 {
		s.CarryForwardMs = 0
	}
	return s
}

// UnmarshalJSON overlays the encoded fields onto s. The cycle days are
// accepted as numbers or numeric strings and clamped into [1, 31].
func (s *Settings) UnmarshalJSON(b []byte) error {
	type plain Settings
	aux := struct {
		*plain
		MonthStartDay json.RawMessage `json:"monthStartDay"`
		MonthEndDay   json.RawMessage `json:"monthEndDay"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if d, ok := dayField(aux.MonthStartDay); ok {
		s.MonthStartDay = d
	}
	if d, ok := dayField(aux.MonthEndDay); ok {
		s.MonthEndDay = d
	}
	return nil
}

func dayField(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return timecalc.ClampDayString(str), true
	}
	return timecalc.ClampDayString(string(raw)), true
}

// DailyTarget returns the nominal workday length.
func (s Settings) DailyTarget() time.Duration {
	return HoursToMillis(s.DailyHours).Duration()
}

// OvertimeThreshold returns the daily overtime threshold.
func (s Settings) OvertimeThreshold() time.Duration {
	return HoursToMillis(s.OvertimeThresholdHours).Duration()
}

// Break is one completed break within a session.
type Break struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration Millis    `json:"duration"`
}

// HistoryEntry is one finalized day of work, keyed by its check-in day.
type HistoryEntry struct {
	Date        Day       `json:"date"`
	CheckIn     time.Time `json:"checkIn"`
	CheckOut    time.Time `json:"checkOut"`
	Breaks      []Break   `json:"breaks"`
	TotalBreak  Millis    `json:"totalBreak"`
	TotalWorked Millis    `json:"totalWorked"`
	Overtime    Millis    `json:"overtime"`
}

// Leave types offered by the CLI. Other values are stored as given.
const (
	LeaveVacation = "vacation"
	LeaveSick     = "sick"
	LeavePersonal = "personal"
	LeaveHoliday  = "holiday"
	LeaveOther    = "other"
)

// LeaveEntry marks a day as non-working. It is independent of history.
type LeaveEntry struct {
	ID    string `json:"id,omitempty"`
	Date  Day    `json:"date"`
	Type  string `json:"type"`
	Notes string `json:"notes"`
}
