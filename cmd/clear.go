package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var clearForce bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history, settings, leaves and the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearForce {
			return errors.New("refusing to delete all data without --force (export a backup first)")
		}
		if err := tr.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All data cleared.")
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVar(&clearForce, "force", false, "Confirm deleting all data")
}
