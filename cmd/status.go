package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-hours-tracker/internal/reminder"
	"github.com/Tiliavir/work-hours-tracker/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's timer and totals",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	snap, err := tr.Snapshot()
	if err != nil {
		return err
	}
	st := snap.Today()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(st.State))
	if snap.Session.IsCheckedIn && snap.Session.CheckInTime != nil {
		field(out, "Since", snap.Session.CheckInTime.Format("15:04"))
		field(out, "Timer", timecalc.FormatTimer(st.Elapsed))
	}
	field(out, "Worked", timecalc.FormatDuration(st.Worked))
	field(out, "Breaks", timecalc.FormatDuration(st.Breaks))
	field(out, "Remaining", timecalc.FormatDuration(st.Remaining))
	if st.Overtime > 0 {
		field(out, "Overtime", overtimeStyle.Render(timecalc.FormatDuration(st.Overtime)))
	}
	if at, ok := reminder.CheckoutAt(snap.Settings, snap.Session); ok && at.After(snap.Now) {
		field(out, "Reminder", at.Format("15:04"))
	}
	return nil
}
