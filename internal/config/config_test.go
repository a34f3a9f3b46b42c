package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Tiliavir/work-hours-tracker/internal/config"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadFirstRunWritesTemplate(t *testing.T) {
	home := setHome(t)
	path := filepath.Join(home, ".wht", "config.toml")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := config.Default(filepath.Join(home, ".wht"))
	if cfg != want {
		t.Errorf("first-run config = %+v, want %+v", cfg, want)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("template not written: %v", err)
	}

	// The written template must decode to the same defaults.
	again, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load template: %v", err)
	}
	if again != want {
		t.Errorf("template config = %+v, want %+v", again, want)
	}
}

func TestLoadPartialOverrides(t *testing.T) {
	home := setHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[storage]\nbackend = \"sqlite\"\ndata_dir = \"~/work\"\n\n[log]\ndebug = true\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Backend = %q", cfg.Storage.Backend)
	}
	if cfg.Storage.DataDir != filepath.Join(home, "work") {
		t.Errorf("DataDir = %q, want expanded home path", cfg.Storage.DataDir)
	}
	if !cfg.Log.Debug {
		t.Error("Debug not applied")
	}
	if !cfg.Notifications.Enabled {
		t.Error("missing notifications section should keep the default")
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	setHome(t)
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[storage\nbackend = "},
		{"backend", "[storage]\nbackend = \"postgres\"\n"},
		{"type", "[log]\ndebug = \"yes\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.data), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := config.Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	home := setHome(t)
	path, err := config.DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(home, ".wht", "config.toml") {
		t.Errorf("DefaultPath = %q", path)
	}
}
