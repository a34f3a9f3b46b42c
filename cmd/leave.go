package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-hours-tracker/internal/model"
)

var (
	leaveType  string
	leaveNotes string
)

var leaveCmd = &cobra.Command{
	Use:   "leave",
	Short: "Record vacation, sick days and other leave",
}

var leaveAddCmd = &cobra.Command{
	Use:   "add DATE",
	Short: "Add a leave day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDay(args[0], tr.Now())
		if err != nil {
			return err
		}
		lv, err := tr.AddLeave(day, leaveType, leaveNotes)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s leave on %s (%s)\n", lv.Type, lv.Date, lv.ID)
		return nil
	},
}

var leaveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leave days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		leaves, err := tr.Leaves()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(leaves) == 0 {
			fmt.Fprintln(out, "No leaves recorded.")
			return nil
		}
		for _, lv := range leaves {
			fmt.Fprintf(out, "%s  %-9s %s  %s\n", lv.Date, lv.Type, lv.ID, lv.Notes)
		}
		return nil
	},
}

var leaveDeleteCmd = &cobra.Command{
	Use:   "delete ID|DATE",
	Short: "Delete a leave by ID, or every leave on a date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := tr.DeleteLeave(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d leave(s)\n", n)
		return nil
	},
}

func init() {
	leaveAddCmd.Flags().StringVar(&leaveType, "type", model.LeaveVacation,
		"Leave type: vacation, sick, personal, holiday, other")
	leaveAddCmd.Flags().StringVar(&leaveNotes, "notes", "", "Optional notes")

	leaveCmd.AddCommand(leaveAddCmd)
	leaveCmd.AddCommand(leaveListCmd)
	leaveCmd.AddCommand(leaveDeleteCmd)
}
