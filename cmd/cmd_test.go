package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/work-hours-tracker/internal/model"
	"github.com/Tiliavir/work-hours-tracker/internal/report"
)

func TestParseMonth(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)
	tests := []struct {
		in        string
		wantYear  int
		wantMonth time.Month
		wantErr   bool
	}{
		{"", 2024, time.March, false},
		{"2023-12", 2023, time.December, false},
		{"2023-13", 0, 0, true},
		{"March", 0, 0, true},
	}
	for _, tt := range tests {
		y, m, err := parseMonth(tt.in, now)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMonth(%q) err = %v", tt.in, err)
			continue
		}
		if y != tt.wantYear || m != tt.wantMonth {
			t.Errorf("parseMonth(%q) = %d-%v", tt.in, y, m)
		}
	}
}

func TestParseDay(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	tests := []struct {
		in   string
		want model.Day
	}{
		{"today", model.NewDay(2024, 3, 1)},
		{"Yesterday", model.NewDay(2024, 2, 29)},
		{"2024-02-12", model.NewDay(2024, 2, 12)},
	}
	for _, tt := range tests {
		got, err := parseDay(tt.in, now)
		if err != nil || got != tt.want {
			t.Errorf("parseDay(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := parseDay("soon", now); err == nil {
		t.Error("parseDay accepted garbage")
	}
}

func TestParseBreak(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"0", 0, false},
		{"45", 45 * time.Minute, false},
		{"1h15m", 75 * time.Minute, false},
		{"1h 15m", 75 * time.Minute, false},
		{"-5", 0, true},
		{"lunch", 0, true},
	}
	for _, tt := range tests {
		got, err := parseBreak(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseBreak(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		frac float64
		want string
	}{
		{0, "░░░░"},
		{0.5, "██░░"},
		{1, "████"},
		{1.7, "████"},
		{-1, "░░░░"},
	}
	for _, tt := range tests {
		if got := bar(tt.frac, 4); got != tt.want {
			t.Errorf("bar(%v) = %q, want %q", tt.frac, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	v := []report.Point{{Label: "Mon", Hours: 8.5}}

	var buf bytes.Buffer
	if err := render(&buf, "json", v, nil); err != nil {
		t.Fatal(err)
	}
	var fromJSON []report.Point
	if err := json.Unmarshal(buf.Bytes(), &fromJSON); err != nil || fromJSON[0] != v[0] {
		t.Errorf("json = %q, %v", buf.String(), err)
	}

	buf.Reset()
	if err := render(&buf, "yaml", v, nil); err != nil {
		t.Fatal(err)
	}
	var fromYAML []report.Point
	if err := yaml.Unmarshal(buf.Bytes(), &fromYAML); err != nil || fromYAML[0] != v[0] {
		t.Errorf("yaml = %q, %v", buf.String(), err)
	}

	called := false
	if err := render(&buf, "text", v, func() error { called = true; return nil }); err != nil || !called {
		t.Errorf("text renderer not used: %v", err)
	}
	if err := render(&buf, "xml", v, nil); err == nil {
		t.Error("unknown format accepted")
	}
}

// execute runs the root command against an isolated config and data dir.
func execute(t *testing.T, configFile string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", configFile))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dataDir := filepath.Join(home, "data")
	configFile := filepath.Join(home, "config.toml")
	conf := "[storage]\nbackend = \"sqlite\"\ndata_dir = \"" + filepath.ToSlash(dataDir) + "\"\n\n[notifications]\nenabled = false\n"
	if err := os.WriteFile(configFile, []byte(conf), 0o600); err != nil {
		t.Fatal(err)
	}

	mustRun := func(args ...string) string {
		t.Helper()
		out, err := execute(t, configFile, args...)
		if err != nil {
			t.Fatalf("wht %s: %v\n%s", strings.Join(args, " "), err, out)
		}
		return out
	}

	if out := mustRun("settings", "set", "--daily-hours", "6", "--month-start", "26", "--month-end", "25"); !strings.Contains(out, "day 26 to day 25") {
		t.Errorf("settings set output:\n%s", out)
	}
	if out := mustRun("checkin"); !strings.HasPrefix(out, "Checked in at") {
		t.Errorf("checkin output: %q", out)
	}
	if _, err := execute(t, configFile, "checkin"); err == nil {
		t.Error("second checkin succeeded")
	}
	if out := mustRun("status"); !strings.Contains(out, "Working") {
		t.Errorf("status output:\n%s", out)
	}

	if out := mustRun("history", "edit", "2024-03-01", "--in", "09:00", "--out", "17:30", "--break", "30"); !strings.Contains(out, "worked 8h 0m") {
		t.Errorf("edit output: %q", out)
	}
	if out := mustRun("history", "list", "--month", "2024-03"); !strings.Contains(out, "2024-03-01  09:00-17:30") {
		t.Errorf("list output:\n%s", out)
	}
	mustRun("history", "edit", "yesterday", "--in", "08:00", "--out", "09:00")
	if out := mustRun("history", "delete", "yesterday"); !strings.HasPrefix(out, "Deleted ") {
		t.Errorf("delete output: %q", out)
	}
	if _, err := execute(t, configFile, "history", "delete", "yesterday"); err == nil {
		t.Error("deleting a missing day succeeded")
	}

	out := mustRun("export", "csv", "--month", "2024-03")
	if !strings.Contains(out, "Date,Check In,Check Out,Break Duration,Total Worked,Overtime\n2024-03-01,09:00,17:30,30m,8h 0m,0m") {
		t.Errorf("csv export:\n%s", out)
	}

	mustRun("leave", "add", "2024-03-04", "--type", "sick")
	if out := mustRun("leave", "list"); !strings.Contains(out, "2024-03-04  sick") {
		t.Errorf("leave list:\n%s", out)
	}

	csvFile := filepath.Join(home, "hours.csv")
	if err := os.WriteFile(csvFile, []byte("date,checkin,checkout\n2024-03-05,08:00,12:00\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if out := mustRun("import", csvFile); !strings.Contains(out, "Imported 1 new and 0 replaced days.") {
		t.Errorf("import output: %q", out)
	}

	var st report.Stats
	if err := json.Unmarshal([]byte(mustRun("analytics", "--format", "json")), &st); err != nil {
		t.Errorf("analytics json: %v", err)
	}

	if _, err := execute(t, configFile, "clear"); err == nil {
		t.Error("clear without --force succeeded")
	}
	mustRun("clear", "--force")
	if out := mustRun("status"); !strings.Contains(out, "Not Checked In") {
		t.Errorf("status after clear:\n%s", out)
	}
}
