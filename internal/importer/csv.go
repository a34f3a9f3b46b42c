package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Tiliavir/work-hours-tracker/internal/history"
	"github.com/Tiliavir/work-hours-tracker/internal/logger"
	"github.com/Tiliavir/work-hours-tracker/internal/model"
	"github.com/Tiliavir/work-hours-tracker/internal/timecalc"
)

// dateLayouts are tried in order before the current-year fallback.
var dateLayouts = []string{
	model.DayLayout,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Mon Jan 2 2006",
	"Mon, Jan 2, 2006",
	"Mon, Jan 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	time.RFC3339,
}

// yearlessLayouts parse a date after the current year has been appended,
// e.g. "Sun, Mar 10" from a month export becomes "Sun, Mar 10 2024".
var yearlessLayouts = []string{
	"Mon, Jan 2 2006",
	"Mon Jan 2 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"01/02 2006",
	"1/2 2006",
}

var required = []string{"date", "checkin", "checkout"}

// RowError describes a CSV row that was skipped.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// CSVResult holds the accepted entries, in file order, and the skipped rows.
type CSVResult struct {
	Entries []model.HistoryEntry
	Skipped []RowError
}

// ParseCSV reads a header-driven CSV file. Column names are matched
// case-insensitively with spaces and underscores ignored; date, check-in
// and check-out are required. Rows that cannot be parsed are skipped and
// logged. now supplies the year for dates written without one and
// threshold derives overtime when no overtime column is given.
func ParseCSV(r io.Reader, now time.Time, threshold time.Duration) (CSVResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return CSVResult{}, fmt.Errorf("%w: empty file", ErrNoValidRows)
	}
	if err != nil {
		return CSVResult{}, fmt.Errorf("read header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		key := normalizeHeader(name)
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	var missing []string
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return CSVResult{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var res CSVResult
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return CSVResult{}, fmt.Errorf("read csv: %w", err)
			}
			res.skip(perr.StartLine, perr.Err)
			continue
		}
		if blank(record) {
			continue
		}
		line, _ := cr.FieldPos(0)

		row := csvRow{cols: cols, record: record}
		e, err := row.entry(now, threshold)
		if err != nil {
			res.skip(line, err)
			continue
		}
		res.Entries = append(res.Entries, e)
	}

	if len(res.Entries) == 0 {
		return res, ErrNoValidRows
	}
	return res, nil
}

func (res *CSVResult) skip(line int, err error) {
	re := RowError{Line: line, Err: err}
	res.Skipped = append(res.Skipped, re)
	logger.Warn("skipping csv row", "line", line, "err", err)
}

func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "").Replace(s)
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

type csvRow struct {
	cols   map[string]int
	record []string
}

// field returns the trimmed value of column name, or "" when the column is
// absent or the row is short.
func (r csvRow) field(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r csvRow) entry(now time.Time, threshold time.Duration) (model.HistoryEntry, error) {
	day, err := ParseDate(r.field("date"), now)
	if err != nil {
		return model.HistoryEntry{}, err
	}
	clockIn, err := timecalc.ParseClock(r.field("checkin"))
	if err != nil {
		return model.HistoryEntry{}, fmt.Errorf("check-in: %w", err)
	}
	clockOut, err := timecalc.ParseClock(r.field("checkout"))
	if err != nil {
		return model.HistoryEntry{}, fmt.Errorf("check-out: %w", err)
	}

	in := timecalc.AtClock(day.Time(), clockIn)
	out := timecalc.AtClock(day.Time(), clockOut)
	if out.Before(in) {
		out = timecalc.AtClock(day.AddDays(1).Time(), clockOut)
	}

	brk, err := r.breakDuration()
	if err != nil {
		return model.HistoryEntry{}, err
	}

	e := history.Finalize(in, out, nil, brk, threshold)
	if v := r.field("totalworked"); v != "" {
		worked, err := parseAmount(v, time.Hour)
		if err != nil {
			return model.HistoryEntry{}, fmt.Errorf("total worked: %w", err)
		}
		e.TotalWorked = model.MillisOf(worked)
		e.Overtime = model.MillisOf(history.Overtime(worked, threshold))
	}
	if v := r.field("overtime"); v != "" {
		ot, err := parseAmount(v, time.Hour)
		if err != nil {
			return model.HistoryEntry{}, fmt.Errorf("overtime: %w", err)
		}
		e.Overtime = model.MillisOf(ot)
	}
	return e, nil
}

// breakDuration reads the first non-empty break column. Bare numbers are
// minutes for breakminutes and breakduration and hours for breakhours.
func (r csvRow) breakDuration() (time.Duration, error) {
	for _, c := range []struct {
		name string
		unit time.Duration
	}{
		{"breakminutes", time.Minute},
		{"breakhours", time.Hour},
		{"breakduration", time.Minute},
	} {
		if v := r.field(c.name); v != "" {
			d, err := parseAmount(v, c.unit)
			if err != nil {
				return 0, fmt.Errorf("break: %w", err)
			}
			return d, nil
		}
	}
	return 0, nil
}

// parseAmount reads a bare non-negative number in unit or a formatted
// duration such as "1h 30m".
func parseAmount(s string, unit time.Duration) (time.Duration, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("invalid value %q", s)
		}
		return time.Duration(f * float64(unit)).Round(time.Millisecond), nil
	}
	return timecalc.ParseDuration(s)
}

// ParseDate parses s with the strict layouts first and then once more with
// now's year appended. There is no further guessing.
func ParseDate(s string, now time.Time) (model.Day, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Day{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if layout == time.RFC3339 {
				t = t.In(now.Location())
			}
			return model.DayOf(t), nil
		}
	}
	withYear := s + " " + strconv.Itoa(now.Year())
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, withYear); err == nil {
			return model.DayOf(t), nil
		}
	}
	return model.Day{}, fmt.Errorf("invalid date %q", s)
}
