package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var analyticsFormat string

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show averages for the current billing cycle",
	Args:  cobra.NoArgs,
	RunE:  runAnalytics,
}

func init() {
	analyticsCmd.Flags().StringVar(&analyticsFormat, "format", "md", "Output format: md, json, yaml")
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	snap, err := tr.Snapshot()
	if err != nil {
		return err
	}
	st := snap.Analytics()
	out := cmd.OutOrStdout()
	return render(out, analyticsFormat, st, func() error {
		fmt.Fprintf(out, "# Analytics %s - %s\n\n", st.Window.FirstDay(), st.Window.LastDay())
		fmt.Fprintf(out, "- Days worked: %d\n", st.TotalDays)
		fmt.Fprintf(out, "- Total hours: %.1fh\n", st.TotalHours)
		fmt.Fprintf(out, "- Average day: %.1fh\n", st.AvgDailyHours)
		fmt.Fprintf(out, "- Average break: %.0fm\n", st.AvgBreakMinutes)
		fmt.Fprintf(out, "- Total overtime: %.1fh\n", st.TotalOvertimeHours)
		return nil
	})
}
