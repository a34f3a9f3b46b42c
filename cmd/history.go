package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-hours-tracker/internal/report"
	"github.com/Tiliavir/work-hours-tracker/internal/timecalc"
)

var (
	historyMonth string
	editIn       string
	editOut      string
	editBreak    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List and edit recorded days",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a month's entries and leaves",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyEditCmd = &cobra.Command{
	Use:   "edit DATE",
	Short: "Write or replace the entry for a day",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryEdit,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete DATE",
	Short: "Delete the entry for a day",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyListCmd.Flags().StringVar(&historyMonth, "month", "", "Month to list (YYYY-MM, default current)")

	historyEditCmd.Flags().StringVar(&editIn, "in", "", "Check-in time (HH:MM)")
	historyEditCmd.Flags().StringVar(&editOut, "out", "", "Check-out time (HH:MM)")
	historyEditCmd.Flags().StringVar(&editBreak, "break", "0", "Total break in minutes or as a duration (45, 1h15m)")
	_ = historyEditCmd.MarkFlagRequired("in")
	_ = historyEditCmd.MarkFlagRequired("out")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyEditCmd)
	historyCmd.AddCommand(historyDeleteCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	snap, err := tr.Snapshot()
	if err != nil {
		return err
	}
	year, month, err := parseMonth(historyMonth, snap.Now)
	if err != nil {
		return err
	}
	printMonth(cmd.OutOrStdout(), report.Month(snap.History, snap.Leaves, year, month))
	return nil
}

// printMonth lists a month newest day first, then its totals.
func printMonth(w io.Writer, sum report.MonthSummary) {
	if len(sum.Rows) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}
	for _, row := range sum.Rows {
		day := row.Day.Time().Format("Mon 2006-01-02")
		if row.Leave != nil {
			line := fmt.Sprintf("%s  leave: %s", day, row.Leave.Type)
			if row.Leave.Notes != "" {
				line += " (" + row.Leave.Notes + ")"
			}
			fmt.Fprintln(w, line)
			continue
		}
		e := row.Entry
		line := fmt.Sprintf("%s  %s-%s  worked %s  break %s",
			day, e.CheckIn.Format("15:04"), e.CheckOut.Format("15:04"),
			timecalc.FormatDuration(e.TotalWorked.Duration()),
			timecalc.FormatDuration(e.TotalBreak.Duration()))
		if ot := e.Overtime.Duration(); ot > 0 {
			line += "  overtime " + timecalc.FormatDuration(ot)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "%d days, %d leaves, worked %s, overtime %s\n",
		sum.Days, sum.Leaves, timecalc.FormatDuration(sum.Worked), timecalc.FormatDuration(sum.Overtime))
}

func runHistoryEdit(cmd *cobra.Command, args []string) error {
	day, err := parseDay(args[0], tr.Now())
	if err != nil {
		return err
	}
	in, err := timecalc.ParseClock(editIn)
	if err != nil {
		return fmt.Errorf("--in: %w", err)
	}
	out, err := timecalc.ParseClock(editOut)
	if err != nil {
		return fmt.Errorf("--out: %w", err)
	}
	breaks, err := parseBreak(editBreak)
	if err != nil {
		return fmt.Errorf("--break: %w", err)
	}

	entry, err := tr.EditEntry(day, in, out, breaks)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s: worked %s, overtime %s\n",
		entry.Date, timecalc.FormatDuration(entry.TotalWorked.Duration()),
		timecalc.FormatDuration(entry.Overtime.Duration()))
	return nil
}

// parseBreak reads a bare number as minutes, anything else as a duration.
func parseBreak(s string) (time.Duration, error) {
	if minutes, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		if minutes < 0 {
			return 0, fmt.Errorf("negative break %q", s)
		}
		return time.Duration(minutes) * time.Minute, nil
	}
	return timecalc.ParseDuration(s)
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	day, err := parseDay(args[0], tr.Now())
	if err != nil {
		return err
	}
	if err := tr.DeleteEntry(day); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", day)
	return nil
}
