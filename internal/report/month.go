package report

import (
	"sort"
	"time"

	"github.com/Tiliavir/work-hours-tracker/internal/history"
	"github.com/Tiliavir/work-hours-tracker/internal/model"
)

// Row is one line of a month listing: either a worked day or a leave.
type Row struct {
	Day   model.Day
	Entry *model.HistoryEntry
	Leave *model.LeaveEntry
}

// MonthSummary lists a calendar month's entries and leaves with totals.
type MonthSummary struct {
	Year     int
	Month    time.Month
	Rows     []Row
	Days     int
	Leaves   int
	Worked   time.Duration
	Breaks   time.Duration
	Overtime time.Duration
}

// Month builds the listing for the given calendar month, newest day first.
// On a day with both, the worked entry comes before the leave.
func Month(l history.Ledger, leaves []model.LeaveEntry, year int, month time.Month) MonthSummary {
	sum := MonthSummary{Year: year, Month: month}

	for _, e := range l.Month(year, month) {
		e := e
		sum.Rows = append(sum.Rows, Row{Day: e.Date, Entry: &e})
		sum.Days++
		sum.Worked += e.TotalWorked.Duration()
		sum.Breaks += e.TotalBreak.Duration()
		sum.Overtime += e.Overtime.Duration()
	}
	for i := range leaves {
		lv := leaves[i]
		if lv.Date.Year != year || lv.Date.Month != month {
			continue
		}
		sum.Rows = append(sum.Rows, Row{Day: lv.Date, Leave: &lv})
		sum.Leaves++
	}

	sort.SliceStable(sum.Rows, func(i, j int) bool {
		a, b := sum.Rows[i], sum.Rows[j]
		if a.Day != b.Day {
			return a.Day.After(b.Day)
		}
		return a.Entry != nil && b.Entry == nil
	})
	return sum
}
