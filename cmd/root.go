package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-hours-tracker/internal/config"
	"github.com/Tiliavir/work-hours-tracker/internal/logger"
	"github.com/Tiliavir/work-hours-tracker/internal/notify"
	"github.com/Tiliavir/work-hours-tracker/internal/reminder"
	"github.com/Tiliavir/work-hours-tracker/internal/storage"
	"github.com/Tiliavir/work-hours-tracker/internal/tracker"
)

var (
	configPath string
	debugFlag  bool
)

// Wired by setup before any subcommand runs.
var (
	cfg   config.Config
	repo  *storage.Repository
	sched *reminder.TimerScheduler
	tr    *tracker.Tracker
)

var rootCmd = &cobra.Command{
	Use:   "wht",
	Short: "Work Hours Tracker - check in, take breaks, check out",
	Long: `wht tracks working hours, breaks and overtime against a monthly target.
All data is stored locally in ~/.wht/, as JSON files or a SQLite database.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.wht/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Log debug output to stderr")

	rootCmd.AddCommand(checkinCmd)
	rootCmd.AddCommand(breakCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(leaveCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(clearCmd)
}

// setup loads the config, starts logging and opens the store.
func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	if debugFlag {
		c.Log.Debug = true
	}
	cfg = c

	if err := logger.Init(logger.Config{Debug: cfg.Log.Debug, DataDir: cfg.Storage.DataDir}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	kv, err := storage.Open(cfg.Storage.Backend, cfg.Storage.DataDir)
	if err != nil {
		return err
	}
	repo = storage.NewRepository(kv)

	n := newNotifier(cfg.Notifications)
	sched = reminder.NewTimerScheduler()
	tr = tracker.New(repo,
		tracker.WithNotifier(n),
		tracker.WithReminders(reminder.New(sched, n)),
	)
	logger.Debug("ready", "command", cmd.CommandPath(), "backend", cfg.Storage.Backend, "dir", cfg.Storage.DataDir)
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if sched != nil {
		sched.Stop()
	}
	if repo != nil {
		return repo.Close()
	}
	return nil
}

func newNotifier(c config.NotificationConfig) notify.Notifier {
	if !c.Enabled {
		return notify.Log{}
	}
	return notify.Fallback{Primary: notify.Desktop{Urgent: c.Sound}, Secondary: notify.Log{}}
}
