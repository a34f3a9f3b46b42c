package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Tiliavir/work-hours-tracker/internal/history"
	"github.com/Tiliavir/work-hours-tracker/internal/model"
	"github.com/Tiliavir/work-hours-tracker/internal/report"
	"github.com/Tiliavir/work-hours-tracker/internal/timecalc"
)

// CSVHeader is the column row of a month export.
var CSVHeader = []string{"Date", "Check In", "Check Out", "Break Duration", "Total Worked", "Overtime"}

// MonthFilename returns the conventional file name for a month export.
func MonthFilename(year int, month time.Month, ext string) string {
	return fmt.Sprintf("work-hours-%04d-%02d.%s", year, int(month), ext)
}

// MonthCSV writes the entries of one calendar month, oldest first.
func MonthCSV(w io.Writer, l history.Ledger, year int, month time.Month) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, e := range l.Month(year, month) {
		if err := cw.Write(csvRecord(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(e model.HistoryEntry) []string {
	return []string{
		e.Date.String(),
		csvClock(e.CheckIn),
		csvClock(e.CheckOut),
		csvDuration(e.TotalBreak.Duration()),
		csvDuration(e.TotalWorked.Duration()),
		csvDuration(e.Overtime.Duration()),
	}
}

// csvClock adds seconds only when the time has them, so whole-minute rows
// keep the HH:MM form.
func csvClock(t time.Time) string {
	if t.IsZero() || t.Second() == 0 {
		return clock(t)
	}
	return t.Local().Format("15:04:05")
}

// csvDuration appends the sub-minute remainder to FormatDuration so a
// re-import restores the exact millisecond value.
func csvDuration(d time.Duration) string {
	s := timecalc.FormatDuration(d)
	if rem := d % time.Minute; d > 0 && rem != 0 {
		s += " " + strconv.FormatFloat(rem.Seconds(), 'f', -1, 64) + "s"
	}
	return s
}

func clock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("15:04")
}

// MonthMarkdown writes a month report: one table row per worked day or
// leave, newest first, followed by the month totals.
func MonthMarkdown(w io.Writer, sum report.MonthSummary) error {
	ew := &errWriter{w: w}
	ew.printf("# Work Hours Report - %04d-%02d\n\n", sum.Year, int(sum.Month))

	if len(sum.Rows) == 0 {
		ew.printf("No entries found.\n")
		return ew.err
	}

	ew.printf("| Date | Check In | Check Out | Break | Total Worked | Overtime |\n")
	ew.printf("|------|----------|-----------|-------|--------------|----------|\n")
	for _, r := range sum.Rows {
		if r.Entry != nil {
			e := r.Entry
			ew.printf("| %s | %s | %s | %s | %s | %s |\n",
				r.Day.Time().Format("Mon, Jan 2"),
				clock(e.CheckIn), clock(e.CheckOut),
				timecalc.FormatDuration(e.TotalBreak.Duration()),
				timecalc.FormatDuration(e.TotalWorked.Duration()),
				timecalc.FormatDuration(e.Overtime.Duration()))
			continue
		}
		label := r.Leave.Type
		if r.Leave.Notes != "" {
			label += ": " + r.Leave.Notes
		}
		ew.printf("| %s | %s | | | | |\n", r.Day.Time().Format("Mon, Jan 2"), markdownEscape(label))
	}

	ew.printf("\n## Summary\n\n")
	ew.printf("- Days worked: %d\n", sum.Days)
	ew.printf("- Leaves: %d\n", sum.Leaves)
	ew.printf("- Total Hours Worked: %s\n", timecalc.FormatDuration(sum.Worked))
	ew.printf("- Total Breaks: %s\n", timecalc.FormatDuration(sum.Breaks))
	ew.printf("- Total Overtime: %s\n", timecalc.FormatDuration(sum.Overtime))
	return ew.err
}

func markdownEscape(s string) string {
	out := make([]rune, 0, len(s))
	for _, c := range s {
		switch c {
		case '|':
			out = append(out, '\\', c)
		case '\n', '\r':
			out = append(out, ' ')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// Backup is the full-backup document. Its keys match the import format.
type Backup struct {
	History    history.Ledger     `json:"history"`
	Settings   model.Settings     `json:"settings"`
	Leaves     []model.LeaveEntry `json:"leaves"`
	ExportDate time.Time          `json:"exportDate"`
}

// NewBackup assembles a backup stamped with now.
func NewBackup(now time.Time, l history.Ledger, s model.Settings, leaves []model.LeaveEntry) Backup {
	if l == nil {
		l = history.Ledger{}
	}
	if leaves == nil {
		leaves = []model.LeaveEntry{}
	}
	return Backup{History: l, Settings: s, Leaves: leaves, ExportDate: now.UTC()}
}

// WriteBackup encodes b as indented JSON.
func WriteBackup(w io.Writer, b Backup) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding backup: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
