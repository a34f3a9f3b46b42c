package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-hours-tracker/internal/report"
)

var progressFormat string

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show progress toward the monthly target",
	Args:  cobra.NoArgs,
	RunE:  runProgress,
}

func init() {
	progressCmd.Flags().StringVar(&progressFormat, "format", "text", "Output format: text, json, yaml")
}

func runProgress(cmd *cobra.Command, args []string) error {
	snap, err := tr.Snapshot()
	if err != nil {
		return err
	}
	p := snap.Progress()
	out := cmd.OutOrStdout()
	return render(out, progressFormat, p, func() error {
		printProgress(out, p)
		return nil
	})
}

func printProgress(out io.Writer, p report.Progress) {
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Cycle %s - %s",
		p.Window.Start.Format("Jan 2"), p.Window.End.Format("Jan 2, 2006"))))
	fmt.Fprintf(out, "%s %.1f%%\n", barStyle.Render(bar(p.Percentage/100, 30)), p.Percentage)
	field(out, "Worked", fmt.Sprintf("%.1fh of %.1fh", p.WorkedHours, p.TargetHours))
	field(out, "Remaining", fmt.Sprintf("%.1fh in %d days", p.RemainingHours, p.RemainingDays))
	field(out, "Per day", fmt.Sprintf("%.1fh", p.DailyRequired))
}
