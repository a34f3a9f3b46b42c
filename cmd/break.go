package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-hours-tracker/internal/timecalc"
)

var breakCmd = &cobra.Command{
	Use:   "break",
	Short: "Start or end a break",
}

var breakStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Pause the work timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		started, err := tr.BreakIn()
		if err != nil {
			return err
		}
		if !started {
			fmt.Fprintln(cmd.OutOrStdout(), "Already on a break.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Break started.")
		return nil
	},
}

var breakEndCmd = &cobra.Command{
	Use:   "end",
	Short: "Resume the work timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, ok, err := tr.BreakOut()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "No break in progress.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Break ended after %s.\n", timecalc.FormatDuration(b.Duration.Duration()))
		return nil
	},
}

func init() {
	breakCmd.AddCommand(breakStartCmd)
	breakCmd.AddCommand(breakEndCmd)
}
