package session

import (
	"errors"
	"time"

	"github.com/Tiliavir/work-hours-tracker/internal/history"
	"github.com/Tiliavir/work-hours-tracker/internal/model"
)

// State is the position of a session in its lifecycle.
type State int

const (
	Idle State = iota
	Working
	OnBreak
)

func (s State) String() string {
	switch s {
	case Working:
		return "Working"
	case OnBreak:
		return "On Break"
	default:
		return "Not Checked In"
	}
}

var (
	// ErrAlreadyCheckedIn is returned by CheckIn while a session is open.
	ErrAlreadyCheckedIn = errors.New("already checked in")
	// ErrNotCheckedIn is returned by transitions that need an open session.
	ErrNotCheckedIn = errors.New("not checked in")
)

// Session is the persisted workState record. TotalBreakTime only covers
// completed breaks; the open break is derived from BreakStartTime.
type Session struct {
	IsCheckedIn     bool          `json:"isCheckedIn"`
	IsOnBreak       bool          `json:"isOnBreak"`
	CheckInTime     *time.Time    `json:"checkInTime"`
	BreakStartTime  *time.Time    `json:"breakStartTime"`
	TotalBreakTime  model.Millis  `json:"totalBreakTime"`
	Breaks          []model.Break `json:"breaks"`
	OvertimeAlerted bool          `json:"overtimeAlerted"`
	CurrentDate     model.Day     `json:"currentDate"`
}

// New returns an idle session opened on today.
func New(today model.Day) Session {
	return Session{Breaks: []model.Break{}, CurrentDate: today}
}

// Restore returns saved when it belongs to today and a fresh idle session
// otherwise. An open check-in from a previous day is discarded on purpose,
// so a session never spans a midnight rollover.
func Restore(saved Session, today model.Day) (Session, bool) {
	if saved.CurrentDate != today {
		return New(today), true
	}
	if saved.Breaks == nil {
		saved.Breaks = []model.Break{}
	}
	if saved.IsCheckedIn && saved.CheckInTime == nil {
		// unusable record; treat like a rollover
		return New(today), true
	}
	if saved.IsOnBreak && saved.BreakStartTime == nil {
		saved.IsOnBreak = false
	}
	return saved, false
}

// State reports the lifecycle state.
func (s *Session) State() State {
	switch {
	case !s.IsCheckedIn:
		return Idle
	case s.IsOnBreak:
		return OnBreak
	default:
		return Working
	}
}

// CheckIn opens a new session at now. Calling it while checked in is
// rejected so the open session's breaks are not lost.
func (s *Session) CheckIn(now time.Time) error {
	if s.IsCheckedIn {
		return ErrAlreadyCheckedIn
	}
	in := now
	*s = Session{
		IsCheckedIn: true,
		CheckInTime: &in,
		Breaks:      []model.Break{},
		CurrentDate: s.CurrentDate,
	}
	if s.CurrentDate.IsZero() {
		s.CurrentDate = model.DayOf(now)
	}
	return nil
}

// BreakIn starts a break at now. It reports false when a break is already
// running.
func (s *Session) BreakIn(now time.Time) (bool, error) {
	if !s.IsCheckedIn {
		return false, ErrNotCheckedIn
	}
	if s.IsOnBreak {
		return false, nil
	}
	start := now
	s.IsOnBreak = true
	s.BreakStartTime = &start
	return true, nil
}

// BreakOut closes the running break at now and returns it. It reports false
// when no break is running.
func (s *Session) BreakOut(now time.Time) (model.Break, bool) {
	if !s.IsOnBreak || s.BreakStartTime == nil {
		return model.Break{}, false
	}
	b := model.Break{
		Start:    *s.BreakStartTime,
		End:      now,
		Duration: model.MillisOf(max(0, now.Sub(*s.BreakStartTime))),
	}
	s.Breaks = append(s.Breaks, b)
	s.TotalBreakTime += b.Duration
	s.IsOnBreak = false
	s.BreakStartTime = nil
	return b, true
}

// CheckOut closes the session at now, ending a running break first, and
// returns the finalized history entry keyed by the check-in day. The session
// is reset to idle on now's day.
func (s *Session) CheckOut(now time.Time, threshold time.Duration) (model.HistoryEntry, error) {
	if !s.IsCheckedIn || s.CheckInTime == nil {
		return model.HistoryEntry{}, ErrNotCheckedIn
	}
	s.BreakOut(now)

	entry := history.Finalize(*s.CheckInTime, now, s.Breaks, s.TotalBreakTime.Duration(), threshold)
	*s = New(model.DayOf(now))
	return entry, nil
}

// CurrentBreak returns the length of the running break, or zero.
func (s *Session) CurrentBreak(now time.Time) time.Duration {
	if !s.IsOnBreak || s.BreakStartTime == nil {
		return 0
	}
	return max(0, now.Sub(*s.BreakStartTime))
}

// TotalBreak returns completed breaks plus the running one.
func (s *Session) TotalBreak(now time.Time) time.Duration {
	return s.TotalBreakTime.Duration() + s.CurrentBreak(now)
}

// Elapsed returns worked time so far: time since check-in minus all breaks,
// clamped at zero. It stays constant while on break.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if !s.IsCheckedIn || s.CheckInTime == nil {
		return 0
	}
	return max(0, now.Sub(*s.CheckInTime)-s.TotalBreak(now))
}
