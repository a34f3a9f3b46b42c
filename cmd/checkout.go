package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-hours-tracker/internal/timecalc"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Check out and record the day",
	Args:  cobra.NoArgs,
	RunE:  runCheckout,
}

func runCheckout(cmd *cobra.Command, args []string) error {
	entry, err := tr.CheckOut()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Checked out at %s after %s.\n",
		entry.CheckOut.Format("15:04:05"), formatElapsed(entry.CheckOut.Sub(entry.CheckIn)))
	field(out, "Worked", timecalc.FormatDuration(entry.TotalWorked.Duration()))
	field(out, "Breaks", timecalc.FormatDuration(entry.TotalBreak.Duration()))
	if ot := entry.Overtime.Duration(); ot > 0 {
		field(out, "Overtime", overtimeStyle.Render(timecalc.FormatDuration(ot)))
	}
	return nil
}
