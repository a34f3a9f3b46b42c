package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration for wht, stored in ~/.wht/config.toml.
// It covers how the tool runs; the accounting rules live in the settings
// record of the data store.
type Config struct {
	Storage       StorageConfig      `toml:"storage"`
	Log           LogConfig          `toml:"log"`
	Notifications NotificationConfig `toml:"notifications"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is "file" (one JSON file per record) or "sqlite".
	Backend string `toml:"backend"`
	// DataDir holds the records and the log directory. "~/" is expanded.
	DataDir string `toml:"data_dir"`
}

// LogConfig controls the log file.
type LogConfig struct {
	// Debug lowers the level to debug and mirrors the log to stderr.
	Debug bool `toml:"debug"`
}

// NotificationConfig controls reminder and alert delivery.
type NotificationConfig struct {
	// Enabled sends desktop notifications; otherwise they are only logged.
	Enabled bool `toml:"enabled"`
	// Sound plays the alert sound with each notification.
	Sound bool `toml:"sound"`
}

const (
	// DefaultBackend stores one JSON file per record.
	DefaultBackend = "file"
	// DirName is the data directory below the home directory.
	DirName = ".wht"
)

// Default returns a Config pre-filled with the built-in defaults. dataDir
// is used as the storage directory.
func Default(dataDir string) Config {
	return Config{
		Storage: StorageConfig{
			Backend: DefaultBackend,
			DataDir: dataDir,
		},
		Notifications: NotificationConfig{Enabled: true},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# wht configuration - ~/.wht/config.toml
#
# All settings are optional; the defaults below work out of the box.
# Accounting rules (targets, cycle days, reminders) are changed with
# "wht settings set" and stored with your data, not here.

[storage]
# Persistence backend:
#   "file"   - one human-readable JSON file per record (default)
#   "sqlite" - a single wht.db database file
backend = "file"

# Directory for records and logs. Leave empty for ~/.wht.
data_dir = ""

[log]
# Write debug output to stderr as well as to <data_dir>/logs/wht.log.
debug = false

[notifications]
# Send desktop notifications for checkout reminders and overtime alerts.
# When disabled they are written to the log instead.
enabled = true

# Play the alert sound with each notification.
sound = false
`

// DefaultDir returns ~/.wht.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// DefaultPath returns the path to ~/.wht/config.toml.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config at path, creating it with annotated defaults on
// first run. Keys missing from the file keep their defaults.
func Load(path string) (Config, error) {
	defDir, err := DefaultDir()
	if err != nil {
		defDir = filepath.Dir(path)
	}
	cfg := Default(defDir)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return cfg, nil
	} else if err != nil {
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Default(defDir), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: unknown keys in %s: %v\n", path, undecoded)
	}

	// Fill zero-value fields with built-in defaults.
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultBackend
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = defDir
	}
	cfg.Storage.DataDir = expandHome(cfg.Storage.DataDir)

	switch cfg.Storage.Backend {
	case "file", "sqlite":
	default:
		return cfg, fmt.Errorf("config file %s: unknown storage backend %q (want \"file\" or \"sqlite\")", path, cfg.Storage.Backend)
	}
	return cfg, nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
