package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/work-hours-tracker/internal/model"
	"github.com/Tiliavir/work-hours-tracker/internal/timecalc"
)

var (
	settingsFormat string

	setMonthlyTarget float64
	setDailyHours    float64
	setThreshold     float64
	setReminder      bool
	setAlert         bool
	setStartDay      string
	setEndDay        string
	setCarryForward  string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change targets, reminders and the billing cycle",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := tr.Settings()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return render(out, settingsFormat, s, func() error {
			printSettings(out, s)
			return nil
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings; unset flags keep their value",
	Args:  cobra.NoArgs,
	RunE:  runSettingsSet,
}

func init() {
	settingsShowCmd.Flags().StringVar(&settingsFormat, "format", "text", "Output format: text, json, yaml")

	f := settingsSetCmd.Flags()
	f.Float64Var(&setMonthlyTarget, "monthly-target", 0, "Monthly target hours")
	f.Float64Var(&setDailyHours, "daily-hours", 0, "Nominal workday length in hours")
	f.Float64Var(&setThreshold, "overtime-threshold", 0, "Daily hours after which overtime starts")
	f.BoolVar(&setReminder, "checkout-reminder", false, "Remind to check out one hour after the workday")
	f.BoolVar(&setAlert, "overtime-alert", false, "Alert once when overtime starts")
	f.StringVar(&setStartDay, "month-start", "", "First day of the billing cycle (1-31)")
	f.StringVar(&setEndDay, "month-end", "", "Last day of the billing cycle (1-31)")
	f.StringVar(&setCarryForward, "carry-forward", "", "Hours carried into the cycle, e.g. 2h30m")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	var carry model.Millis
	if f.Changed("carry-forward") {
		d, err := timecalc.ParseDuration(setCarryForward)
		if err != nil {
			return fmt.Errorf("--carry-forward: %w", err)
		}
		carry = model.MillisOf(d)
	}
	for _, name := range []string{"monthly-target", "daily-hours", "overtime-threshold"} {
		if v, _ := f.GetFloat64(name); f.Changed(name) && v < 0 {
			return fmt.Errorf("--%s must not be negative", name)
		}
	}

	s, err := tr.UpdateSettings(func(s *model.Settings) {
		if f.Changed("monthly-target") {
			s.MonthlyTargetHours = setMonthlyTarget
		}
		if f.Changed("daily-hours") {
			s.DailyHours = setDailyHours
		}
		if f.Changed("overtime-threshold") {
			s.OvertimeThresholdHours = setThreshold
		}
		if f.Changed("checkout-reminder") {
			s.CheckoutReminderEnabled = setReminder
		}
		if f.Changed("overtime-alert") {
			s.OvertimeAlertEnabled = setAlert
		}
		if f.Changed("month-start") {
			s.MonthStartDay = timecalc.ClampDayString(setStartDay)
		}
		if f.Changed("month-end") {
			s.MonthEndDay = timecalc.ClampDayString(setEndDay)
		}
		if f.Changed("carry-forward") {
			s.CarryForwardMs = carry
		}
	})
	if err != nil {
		return err
	}
	printSettings(cmd.OutOrStdout(), s)
	return nil
}

func printSettings(w io.Writer, s model.Settings) {
	field(w, "Target", fmt.Sprintf("%gh per month", s.MonthlyTargetHours))
	field(w, "Workday", fmt.Sprintf("%gh", s.DailyHours))
	field(w, "Overtime", fmt.Sprintf("after %gh", s.OvertimeThresholdHours))
	field(w, "Cycle", fmt.Sprintf("day %d to day %d", s.MonthStartDay, s.MonthEndDay))
	field(w, "Carry", timecalc.FormatDuration(s.CarryForwardMs.Duration()))
	field(w, "Reminder", onOff(s.CheckoutReminderEnabled))
	field(w, "Alert", onOff(s.OvertimeAlertEnabled))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
