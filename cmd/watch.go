package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-hours-tracker/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a live timer and deliver reminders until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watch.Run(ctx, tr, watch.Options{
			DataDir: cfg.Storage.DataDir,
			Out:     cmd.OutOrStdout(),
		})
	},
}
