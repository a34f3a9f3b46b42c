package history_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Tiliavir/work-hours-tracker/internal/history"
	"github.com/Tiliavir/work-hours-tracker/internal/model"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 3, day, hour, minute, 0, 0, time.Local)
}

func TestFinalize(t *testing.T) {
	e := history.Finalize(at(1, 9, 0), at(1, 18, 0), nil, 30*time.Minute, 8*time.Hour)

	if e.Date != model.NewDay(2024, 3, 1) {
		t.Errorf("Date = %v", e.Date)
	}
	if e.TotalWorked.Duration() != 8*time.Hour+30*time.Minute {
		t.Errorf("TotalWorked = %v", e.TotalWorked.Duration())
	}
	if e.Overtime.Duration() != 30*time.Minute {
		t.Errorf("Overtime = %v", e.Overtime.Duration())
	}
	if e.Breaks == nil {
		t.Error("Breaks should be an empty slice, not nil")
	}
}

func TestFinalizeClampsNegativeWork(t *testing.T) {
	e := history.Finalize(at(1, 9, 0), at(1, 9, 10), nil, time.Hour, 8*time.Hour)
	if e.TotalWorked != 0 || e.Overtime != 0 {
		t.Errorf("worked = %d, overtime = %d, want 0/0", e.TotalWorked, e.Overtime)
	}
}

func TestFinalizeKeysByCheckInDay(t *testing.T) {
	e := history.Finalize(at(1, 22, 0), at(2, 6, 0), nil, 0, 8*time.Hour)
	if e.Date != model.NewDay(2024, 3, 1) {
		t.Errorf("Date = %v, want check-in day", e.Date)
	}
	if e.TotalWorked.Duration() != 8*time.Hour {
		t.Errorf("TotalWorked = %v", e.TotalWorked.Duration())
	}
}

func TestLedgerRangeQueries(t *testing.T) {
	l := history.Ledger{}
	for _, d := range []int{5, 1, 20, 10} {
		l.Put(history.Finalize(at(d, 9, 0), at(d, 17, 0), nil, 0, 8*time.Hour))
	}
	l.Put(history.Finalize(time.Date(2024, 4, 1, 9, 0, 0, 0, time.Local), time.Date(2024, 4, 1, 17, 0, 0, 0, time.Local), nil, 0, 8*time.Hour))

	got := l.Between(model.NewDay(2024, 3, 2), model.NewDay(2024, 3, 20))
	if len(got) != 3 {
		t.Fatalf("Between returned %d entries, want 3", len(got))
	}
	if got[0].Date.Day != 5 || got[1].Date.Day != 10 || got[2].Date.Day != 20 {
		t.Errorf("Between order = %v, %v, %v", got[0].Date, got[1].Date, got[2].Date)
	}

	if march := l.Month(2024, time.March); len(march) != 4 {
		t.Errorf("Month(March) = %d entries, want 4", len(march))
	}
	if april := l.Month(2024, time.April); len(april) != 1 {
		t.Errorf("Month(April) = %d entries, want 1", len(april))
	}
}

func TestLedgerMergeOverwritesSameDay(t *testing.T) {
	l := history.Ledger{}
	l.Put(history.Finalize(at(1, 9, 0), at(1, 17, 0), nil, 0, 8*time.Hour))

	replaced := l.Merge([]model.HistoryEntry{
		history.Finalize(at(1, 8, 0), at(1, 18, 0), nil, 0, 8*time.Hour),
		history.Finalize(at(2, 8, 0), at(2, 12, 0), nil, 0, 8*time.Hour),
	})
	if replaced != 1 {
		t.Errorf("replaced = %d, want 1", replaced)
	}
	if len(l) != 2 {
		t.Fatalf("len = %d, want 2", len(l))
	}
	e, _ := l.Get(model.NewDay(2024, 3, 1))
	if e.TotalWorked.Duration() != 10*time.Hour {
		t.Errorf("merged entry worked = %v, want 10h", e.TotalWorked.Duration())
	}
	if !l.Delete(model.NewDay(2024, 3, 2)) || l.Delete(model.NewDay(2024, 3, 2)) {
		t.Error("Delete should report presence exactly once")
	}
}

func TestLedgerJSONKeys(t *testing.T) {
	l := history.Ledger{}
	l.Put(history.Finalize(at(10, 9, 0), at(10, 17, 0), nil, 0, 8*time.Hour))

	data, err := json.Marshal(l)
	if err != nil {
		t.Fatal(err)
	}
	var back history.Ledger
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if _, ok := back.Get(model.NewDay(2024, 3, 10)); !ok {
		t.Errorf("entry lost in JSON: %s", data)
	}
}
