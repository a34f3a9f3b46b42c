package history

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/Tiliavir/work-hours-tracker/internal/model"
)

// Ledger maps a check-in day to its finalized entry. It serializes as a JSON
// object keyed by ISO date.
type Ledger map[model.Day]model.HistoryEntry

// Overtime returns the portion of worked beyond threshold, never negative.
func Overtime(worked, threshold time.Duration) time.Duration {
	return max(0, worked-threshold)
}

// Finalize builds an entry from raw check-in/check-out facts. Worked time is
// check-out minus check-in minus breaks, floored at zero, and the entry is
// keyed by the check-in day.
func Finalize(checkIn, checkOut time.Time, breaks []model.Break, totalBreak, threshold time.Duration) model.HistoryEntry {
	worked := max(0, checkOut.Sub(checkIn)-totalBreak)
	if breaks == nil {
		breaks = []model.Break{}
	}
	return model.HistoryEntry{
		Date:        model.DayOf(checkIn),
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Breaks:      breaks,
		TotalBreak:  model.MillisOf(totalBreak),
		TotalWorked: model.MillisOf(worked),
		Overtime:    model.MillisOf(Overtime(worked, threshold)),
	}
}

// Put stores e under its own date, replacing any previous entry for that day.
func (l Ledger) Put(e model.HistoryEntry) {
	l[e.Date] = e
}

// Get returns the entry for day d.
func (l Ledger) Get(d model.Day) (model.HistoryEntry, bool) {
	e, ok := l[d]
	return e, ok
}

// Delete removes the entry for day d and reports whether one existed.
func (l Ledger) Delete(d model.Day) bool {
	if _, ok := l[d]; !ok {
		return false
	}
	delete(l, d)
	return true
}

// Merge writes every entry into the ledger, overwriting same-day entries,
// and returns how many days were replaced rather than added.
func (l Ledger) Merge(entries []model.HistoryEntry) (replaced int) {
	for _, e := range entries {
		if _, ok := l[e.Date]; ok {
			replaced++
		}
		l.Put(e)
	}
	return replaced
}

// Between returns the entries whose day lies in [from, to], oldest first.
func (l Ledger) Between(from, to model.Day) []model.HistoryEntry {
	return l.Filter(func(d model.Day) bool {
		return !d.Before(from) && !d.After(to)
	})
}

// Month returns the entries of the given calendar month, oldest first.
func (l Ledger) Month(year int, month time.Month) []model.HistoryEntry {
	return l.Filter(func(d model.Day) bool {
		return d.Year == year && d.Month == month
	})
}

// Filter returns the entries whose day satisfies keep, oldest first.
func (l Ledger) Filter(keep func(model.Day) bool) []model.HistoryEntry {
	days := lo.Filter(lo.Keys(l), func(d model.Day, _ int) bool { return keep(d) })
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return lo.Map(days, func(d model.Day, _ int) model.HistoryEntry { return l[d] })
}
