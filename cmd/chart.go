package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-hours-tracker/internal/report"
)

var chartFormat string

var chartCmd = &cobra.Command{
	Use:       "chart week|month",
	Short:     "Chart worked hours for the last week or this month",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"week", "month"},
	RunE:      runChart,
}

func init() {
	chartCmd.Flags().StringVar(&chartFormat, "format", "text", "Output format: text, json, yaml")
}

func runChart(cmd *cobra.Command, args []string) error {
	snap, err := tr.Snapshot()
	if err != nil {
		return err
	}
	points := report.LastSevenDays(snap.Now, snap.History)
	if args[0] == "month" {
		points = report.MonthSeries(snap.Now, snap.History)
	}
	out := cmd.OutOrStdout()
	return render(out, chartFormat, points, func() error {
		printChart(out, points, snap.Settings.DailyHours)
		return nil
	})
}

// printChart draws one bar per point, scaled so the longest bar or the daily
// target fills the width.
func printChart(w io.Writer, points []report.Point, target float64) {
	scale := target
	for _, p := range points {
		scale = max(scale, p.Hours)
	}
	for _, p := range points {
		frac := 0.0
		if scale > 0 {
			frac = p.Hours / scale
		}
		fmt.Fprintf(w, "%4s %s %.1fh\n", p.Label, barStyle.Render(bar(frac, 24)), p.Hours)
	}
}
