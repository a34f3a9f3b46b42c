package report

import (
	"math"
	"strconv"
	"time"

	"github.com/Tiliavir/work-hours-tracker/internal/cycle"
	"github.com/Tiliavir/work-hours-tracker/internal/history"
	"github.com/Tiliavir/work-hours-tracker/internal/model"
	"github.com/Tiliavir/work-hours-tracker/internal/session"
	"github.com/Tiliavir/work-hours-tracker/internal/timecalc"
)

// TodayStats is the worked/break/overtime picture for the current day.
type TodayStats struct {
	State     string        `json:"state" yaml:"state"`
	Worked    time.Duration `json:"worked" yaml:"worked"`
	Breaks    time.Duration `json:"breaks" yaml:"breaks"`
	Overtime  time.Duration `json:"overtime" yaml:"overtime"`
	Remaining time.Duration `json:"remaining" yaml:"remaining"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Today combines the stored entry for now's day with the live session.
// While a session is open the overtime is recomputed from the combined
// worked time; otherwise the stored overtime is reported.
func Today(now time.Time, s model.Settings, l history.Ledger, sess session.Session) TodayStats {
	var st TodayStats
	if e, ok := l.Get(model.DayOf(now)); ok {
		st.Worked = e.TotalWorked.Duration()
		st.Breaks = e.TotalBreak.Duration()
		st.Overtime = e.Overtime.Duration()
	}

	st.State = sess.State().String()
	if sess.IsCheckedIn && sess.CheckInTime != nil {
		st.Elapsed = sess.Elapsed(now)
		st.Worked += st.Elapsed
		st.Breaks += sess.TotalBreak(now)
		st.Overtime = history.Overtime(st.Worked, s.OvertimeThreshold())
	}

	st.Remaining = max(0, s.DailyTarget()-st.Worked)
	return st
}

// ShouldAlertOvertime reports whether the one-shot overtime alert is due.
// It fires once per open session: the caller sets OvertimeAlerted afterwards.
func ShouldAlertOvertime(s model.Settings, sess session.Session, st TodayStats) bool {
	return s.OvertimeAlertEnabled && sess.IsCheckedIn && st.Overtime > 0 && !sess.OvertimeAlerted
}

// Progress is the state of the current billing cycle.
type Progress struct {
	Window         cycle.Window  `json:"window" yaml:"window"`
	Worked         time.Duration `json:"-" yaml:"-"`
	WorkedHours    float64       `json:"workedHours" yaml:"worked_hours"`
	TargetHours    float64       `json:"targetHours" yaml:"target_hours"`
	Percentage     float64       `json:"percentage" yaml:"percentage"`
	RemainingHours float64       `json:"remainingHours" yaml:"remaining_hours"`
	RemainingDays  int           `json:"remainingDays" yaml:"remaining_days"`
	DailyRequired  float64       `json:"dailyRequired" yaml:"daily_required"`
}

// Cycle computes progress toward the monthly target for the cycle around now.
// Worked time covers ledger entries inside the window, the carry-forward
// balance and the live session when its check-in lies inside the window.
func Cycle(now time.Time, s model.Settings, l history.Ledger, sess session.Session) Progress {
	w := cycle.ForSettings(now, s)

	worked := s.CarryForwardMs.Duration()
	for _, e := range inWindow(w, l) {
		worked += e.TotalWorked.Duration()
	}
	worked += live(w, sess, now)

	p := Progress{
		Window:      w,
		Worked:      worked,
		WorkedHours: worked.Hours(),
		TargetHours: s.MonthlyTargetHours,
	}
	if s.MonthlyTargetHours > 0 {
		p.Percentage = math.Min(100, p.WorkedHours/s.MonthlyTargetHours*100)
	}
	p.RemainingHours = math.Max(0, s.MonthlyTargetHours-p.WorkedHours)

	from := timecalc.StartOfDay(now)
	if w.Start.After(from) {
		from = w.Start
	}
	if !from.After(w.End) {
		p.RemainingDays = timecalc.DaysBetween(from, w.End) + 1
	}
	if p.RemainingDays > 0 {
		p.DailyRequired = p.RemainingHours / float64(p.RemainingDays)
	}
	return p
}

// Stats are the cycle averages shown on the analytics view.
type Stats struct {
	Window             cycle.Window `json:"window" yaml:"window"`
	TotalDays          int          `json:"totalDays" yaml:"total_days"`
	TotalHours         float64      `json:"totalHours" yaml:"total_hours"`
	AvgDailyHours      float64      `json:"avgDailyHours" yaml:"avg_daily_hours"`
	AvgBreakMinutes    float64      `json:"avgBreakMinutes" yaml:"avg_break_minutes"`
	TotalOvertimeHours float64      `json:"totalOvertimeHours" yaml:"total_overtime_hours"`
}

// Analytics aggregates the cycle around now. The carry-forward balance is
// added to TotalHours but never counts as a day, so it inflates AvgDailyHours.
// A live session on a day without a ledger entry counts as one extra day.
func Analytics(now time.Time, s model.Settings, l history.Ledger, sess session.Session) Stats {
	w := cycle.ForSettings(now, s)

	var worked, breaks, overtime time.Duration
	entries := inWindow(w, l)
	days := len(entries)
	for _, e := range entries {
		worked += e.TotalWorked.Duration()
		breaks += e.TotalBreak.Duration()
		overtime += e.Overtime.Duration()
	}

	if sess.IsCheckedIn && sess.CheckInTime != nil && w.Contains(*sess.CheckInTime) {
		worked += sess.Elapsed(now)
		breaks += sess.TotalBreak(now)
		if _, ok := l.Get(model.DayOf(*sess.CheckInTime)); !ok {
			days++
		}
	}
	worked += s.CarryForwardMs.Duration()

	st := Stats{
		Window:             w,
		TotalDays:          days,
		TotalHours:         worked.Hours(),
		TotalOvertimeHours: overtime.Hours(),
	}
	if days > 0 {
		st.AvgDailyHours = st.TotalHours / float64(days)
		st.AvgBreakMinutes = breaks.Minutes() / float64(days)
	}
	return st
}

// Point is one labelled value of a chart series.
type Point struct {
	Label string  `json:"label" yaml:"label"`
	Hours float64 `json:"hours" yaml:"hours"`
}

// LastSevenDays returns worked hours for the trailing week ending today,
// oldest first, labelled with short weekday names.
func LastSevenDays(now time.Time, l history.Ledger) []Point {
	today := model.DayOf(now)
	out := make([]Point, 0, 7)
	for i := 6; i >= 0; i-- {
		d := today.AddDays(-i)
		out = append(out, Point{Label: d.Time().Weekday().String()[:3], Hours: dayHours(l, d)})
	}
	return out
}

// MonthSeries returns worked hours for each day of now's calendar month,
// labelled with the day number.
func MonthSeries(now time.Time, l history.Ledger) []Point {
	year, month, _ := now.Date()
	n := timecalc.DaysIn(year, month)
	out := make([]Point, 0, n)
	for day := 1; day <= n; day++ {
		out = append(out, Point{
			Label: strconv.Itoa(day),
			Hours: dayHours(l, model.NewDay(year, month, day)),
		})
	}
	return out
}

func dayHours(l history.Ledger, d model.Day) float64 {
	e, ok := l.Get(d)
	if !ok {
		return 0
	}
	return roundTenth(e.TotalWorked.Hours())
}

func roundTenth(h float64) float64 {
	return math.Round(h*10) / 10
}

func inWindow(w cycle.Window, l history.Ledger) []model.HistoryEntry {
	return l.Filter(w.ContainsDay)
}

// live returns the open session's elapsed time when it was checked in
// inside w.
func live(w cycle.Window, sess session.Session, now time.Time) time.Duration {
	if !sess.IsCheckedIn || sess.CheckInTime == nil || !w.Contains(*sess.CheckInTime) {
		return 0
	}
	return sess.Elapsed(now)
}
