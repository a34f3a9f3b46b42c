package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/work-hours-tracker/internal/importer"
	"github.com/Tiliavir/work-hours-tracker/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(12)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	overtimeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

func field(w io.Writer, label, value string) {
	fmt.Fprintln(w, labelStyle.Render(label+":")+valueStyle.Render(value))
}

// render writes v as JSON or YAML, or calls text for the human format.
func render(w io.Writer, format string, v any, text func() error) error {
	switch strings.ToLower(format) {
	case "", "text", "md":
		return text()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (use text, json or yaml)", format)
	}
}

// bar draws a horizontal bar of width cells filled to frac.
func bar(frac float64, width int) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// parseDay accepts "today", "yesterday" or any date the CSV importer reads.
func parseDay(s string, now time.Time) (model.Day, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return model.DayOf(now), nil
	case "yesterday":
		return model.DayOf(now).AddDays(-1), nil
	}
	return importer.ParseDate(s, now)
}

// parseMonth parses YYYY-MM, defaulting to now's month when s is empty.
func parseMonth(s string, now time.Time) (int, time.Month, error) {
	if s == "" {
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (use YYYY-MM)", s)
	}
	return t.Year(), t.Month(), nil
}

// formatElapsed renders a session length down to the second.
func formatElapsed(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
