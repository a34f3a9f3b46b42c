package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Check in and start the work timer",
	Args:  cobra.NoArgs,
	RunE:  runCheckin,
}

func runCheckin(cmd *cobra.Command, args []string) error {
	sess, err := tr.CheckIn()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Checked in at %s\n", sess.CheckInTime.Format("15:04:05"))
	return nil
}
