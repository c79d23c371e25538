package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the root configuration for kintai, stored in ~/.kintai/config.json.
// The file supports single-line // comments for documentation purposes.
//
// DefaultBreakMinutes is deducted from records without an explicit break;
// ExportDir is where export files go (empty = current directory); Home is the
// data directory the config was loaded from.
type Config struct {
	DefaultBreakMinutes *int          `json:"default_break_minutes"`
	Storage             StorageConfig `json:"storage"`
	ExportDir           string        `json:"export_dir"`
	Server              ServerConfig  `json:"server"`
	Home                string        `json:"-"`
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	// Driver is "file" (JSON file) or "sqlite".
	Driver string `json:"driver"`
	// Path is the store location. Empty = store.json / kintai.db under Home.
	Path string `json:"path"`
}

// ServerConfig holds settings for `kintai serve`.
type ServerConfig struct {
	Addr string `json:"addr"`
}

const (
	DefaultBreakMinutes = 60
	DriverFile          = "file"
	DriverSQLite        = "sqlite"
	DefaultServerAddr   = "127.0.0.1:8737"
)

// Environment overrides, also read from a .env file in the working directory.
const (
	EnvHome         = "KINTAI_HOME"
	EnvDefaultBreak = "KINTAI_DEFAULT_BREAK"
	EnvStorage      = "KINTAI_STORAGE"
)

// BreakMinutes returns the configured default break.
func (c Config) BreakMinutes() int {
	if c.DefaultBreakMinutes == nil {
		return DefaultBreakMinutes
	}
	return *c.DefaultBreakMinutes
}

// StorePath returns the backend location, resolved against Home.
func (c Config) StorePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	if c.Storage.Driver == DriverSQLite {
		return filepath.Join(c.Home, "kintai.db")
	}
	return filepath.Join(c.Home, "store.json")
}

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig(home string) Config {
	brk := DefaultBreakMinutes
	return Config{
		DefaultBreakMinutes: &brk,
		Storage:             StorageConfig{Driver: DriverFile},
		Server:              ServerConfig{Addr: DefaultServerAddr},
		Home:                home,
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// kintai configuration – ~/.kintai/config.json
//
// All settings are optional; the built-in defaults shown below work out of
// the box. Environment variables KINTAI_HOME, KINTAI_DEFAULT_BREAK and
// KINTAI_STORAGE (or a .env file) override these values.
{
  // Break in minutes deducted from each record that has none of its own.
  "default_break_minutes": 60,

  // ── Storage ──────────────────────────────────────────────────────────────
  "storage": {
    // "file"   – a single JSON file (default)
    // "sqlite" – a SQLite database
    "driver": "file",

    // Location of the store. Leave empty for ~/.kintai/store.json or
    // ~/.kintai/kintai.db depending on the driver.
    "path": ""
  },

  // Directory for export files. Leave empty for the current directory.
  "export_dir": "",

  // ── Local HTTP API (kintai serve) ────────────────────────────────────────
  "server": {
    "addr": "127.0.0.1:8737"
  }
}
`

// HomeDir returns the data directory: $KINTAI_HOME or ~/.kintai.
func HomeDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".kintai"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load loads .env, then reads <home>/config.json, creating it with annotated
// defaults on first run, and finally applies environment overrides.
func Load() (Config, error) {
	_ = godotenv.Load()

	home, err := HomeDir()
	if err != nil {
		return defaultConfig(""), err
	}
	cfg, err := LoadFile(home)
	if err != nil {
		return cfg, err
	}
	return cfg, applyEnv(&cfg)
}

// LoadFile reads <home>/config.json without consulting the environment.
func LoadFile(home string) (Config, error) {
	path := filepath.Join(home, "config.json")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(home), nil
	}
	if err != nil {
		return defaultConfig(home), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return defaultConfig(home), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	cfg.Home = home

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	def := defaultConfig(home)
	if cfg.DefaultBreakMinutes == nil {
		cfg.DefaultBreakMinutes = def.DefaultBreakMinutes
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = def.Storage.Driver
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}

	return cfg, cfg.validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvDefaultBreak); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: not a number", EnvDefaultBreak, v)
		}
		cfg.DefaultBreakMinutes = &n
	}
	if v := os.Getenv(EnvStorage); v != "" {
		cfg.Storage.Driver = v
	}
	return cfg.validate()
}

func (c Config) validate() error {
	if c.BreakMinutes() < 0 {
		return fmt.Errorf("default_break_minutes must not be negative (got %d)", c.BreakMinutes())
	}
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q (want %q or %q)", c.Storage.Driver, DriverFile, DriverSQLite)
	}
	return nil
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
