package session_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Tiliavir/work-hours-tracker/internal/model"
	"github.com/Tiliavir/work-hours-tracker/internal/session"
)

func clock(hour, minute int) time.Time {
	return time.Date(2024, 3, 1, hour, minute, 0, 0, time.Local)
}

func TestWorkdayScenario(t *testing.T) {
	s := session.New(model.DayOf(clock(0, 0)))

	if err := s.CheckIn(clock(9, 0)); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if started, err := s.BreakIn(clock(12, 0)); err != nil || !started {
		t.Fatalf("BreakIn = %v, %v", started, err)
	}
	if _, ok := s.BreakOut(clock(12, 30)); !ok {
		t.Fatal("BreakOut reported no break")
	}
	entry, err := s.CheckOut(clock(18, 0), 8*time.Hour)
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}

	if entry.TotalWorked.Duration() != 8*time.Hour {
		t.Errorf("TotalWorked = %v, want 8h", entry.TotalWorked.Duration())
	}
	if len(entry.Breaks) != 1 {
		t.Errorf("breaks = %d, want 1", len(entry.Breaks))
	}
	if entry.TotalBreak.Duration() != 30*time.Minute {
		t.Errorf("TotalBreak = %v, want 30m", entry.TotalBreak.Duration())
	}
	if entry.Overtime != 0 {
		t.Errorf("Overtime = %v, want 0", entry.Overtime.Duration())
	}
	if s.State() != session.Idle {
		t.Errorf("state after checkout = %v, want Idle", s.State())
	}
}

func TestCheckOutClosesRunningBreak(t *testing.T) {
	s := session.New(model.DayOf(clock(0, 0)))
	_ = s.CheckIn(clock(9, 0))
	s.BreakIn(clock(10, 0))
	s.BreakOut(clock(10, 15))
	s.BreakIn(clock(17, 0))

	entry, err := s.CheckOut(clock(17, 30), 8*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if len(entry.Breaks) != 2 {
		t.Fatalf("breaks = %d, want 2", len(entry.Breaks))
	}
	if entry.TotalBreak.Duration() != 45*time.Minute {
		t.Errorf("TotalBreak = %v, want 45m", entry.TotalBreak.Duration())
	}
	if entry.TotalWorked.Duration() != 7*time.Hour+45*time.Minute {
		t.Errorf("TotalWorked = %v", entry.TotalWorked.Duration())
	}
}

func TestCheckInWhileWorkingIsRejected(t *testing.T) {
	s := session.New(model.DayOf(clock(0, 0)))
	_ = s.CheckIn(clock(9, 0))
	s.BreakIn(clock(10, 0))
	s.BreakOut(clock(10, 20))

	if err := s.CheckIn(clock(11, 0)); !errors.Is(err, session.ErrAlreadyCheckedIn) {
		t.Fatalf("second CheckIn err = %v, want ErrAlreadyCheckedIn", err)
	}
	if !s.CheckInTime.Equal(clock(9, 0)) || len(s.Breaks) != 1 {
		t.Error("rejected CheckIn mutated the session")
	}
}

func TestTransitionGuards(t *testing.T) {
	s := session.New(model.DayOf(clock(0, 0)))

	if _, err := s.BreakIn(clock(9, 0)); !errors.Is(err, session.ErrNotCheckedIn) {
		t.Errorf("BreakIn while idle err = %v", err)
	}
	if _, ok := s.BreakOut(clock(9, 0)); ok {
		t.Error("BreakOut while idle should be a no-op")
	}
	if _, err := s.CheckOut(clock(9, 0), 8*time.Hour); !errors.Is(err, session.ErrNotCheckedIn) {
		t.Errorf("CheckOut while idle err = %v", err)
	}

	_ = s.CheckIn(clock(9, 0))
	s.BreakIn(clock(10, 0))
	if started, err := s.BreakIn(clock(10, 5)); err != nil || started {
		t.Errorf("second BreakIn = %v, %v, want no-op", started, err)
	}
	if !s.BreakStartTime.Equal(clock(10, 0)) {
		t.Error("second BreakIn moved the break start")
	}
	if s.State() != session.OnBreak {
		t.Errorf("state = %v, want OnBreak", s.State())
	}
}

func TestElapsedMonotonicAndFrozenOnBreak(t *testing.T) {
	s := session.New(model.DayOf(clock(0, 0)))
	_ = s.CheckIn(clock(9, 0))

	prev := time.Duration(-1)
	for m := 0; m <= 120; m += 5 {
		got := s.Elapsed(clock(9, 0).Add(time.Duration(m) * time.Minute))
		if got < prev {
			t.Fatalf("elapsed decreased at +%dm: %v < %v", m, got, prev)
		}
		prev = got
	}

	s.BreakIn(clock(11, 0))
	onBreak := s.Elapsed(clock(11, 0))
	for _, m := range []int{1, 10, 45} {
		if got := s.Elapsed(clock(11, m)); got != onBreak {
			t.Errorf("elapsed during break at 11:%02d = %v, want %v", m, got, onBreak)
		}
	}
	if s.CurrentBreak(clock(11, 45)) != 45*time.Minute {
		t.Errorf("CurrentBreak = %v", s.CurrentBreak(clock(11, 45)))
	}

	s.BreakOut(clock(12, 0))
	if got := s.Elapsed(clock(13, 0)); got != 3*time.Hour {
		t.Errorf("elapsed after break = %v, want 3h", got)
	}
}

func TestElapsedClampsClockSkew(t *testing.T) {
	s := session.New(model.DayOf(clock(0, 0)))
	_ = s.CheckIn(clock(9, 0))
	if got := s.Elapsed(clock(8, 0)); got != 0 {
		t.Errorf("Elapsed before check-in = %v, want 0", got)
	}
}

func TestRestore(t *testing.T) {
	today := model.NewDay(2024, 3, 2)
	yesterday := today.AddDays(-1)

	open := session.New(yesterday)
	_ = open.CheckIn(time.Date(2024, 3, 1, 22, 0, 0, 0, time.Local))

	got, reset := session.Restore(open, today)
	if !reset {
		t.Error("expected rollover reset")
	}
	if got.IsCheckedIn || got.CurrentDate != today {
		t.Errorf("rolled session = %+v", got)
	}

	same := session.New(today)
	_ = same.CheckIn(time.Date(2024, 3, 2, 9, 0, 0, 0, time.Local))
	got, reset = session.Restore(same, today)
	if reset || !got.IsCheckedIn {
		t.Errorf("same-day session should survive, reset=%v", reset)
	}
}
