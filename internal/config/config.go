// Package config loads tool configuration from JSONC files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	DataDir        string `json:"data_dir"`
	Token          string `json:"token,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	Quiet          bool   `json:"quiet,omitempty"`

	// Sources tracks which config file was loaded (for diagnostics)
	Source string `json:"-"`
}

// Config errors.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrDataDirEmpty       = errors.New("data_dir cannot be empty")
)

// DefaultTimeout is the solver wall-clock timeout when nothing overrides it.
const DefaultTimeout = 60 * time.Second

// Default returns the default configuration for the given environment.
func Default(env map[string]string) Config {
	return Config{DataDir: defaultDataDir(env)}
}

// defaultDataDir follows XDG: $XDG_DATA_HOME/aoc or ~/.local/share/aoc.
func defaultDataDir(env map[string]string) string {
	if xdg := env["XDG_DATA_HOME"]; xdg != "" {
		return filepath.Join(xdg, "aoc")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".local", "share", "aoc")
	}

	return ".aoc"
}

// globalPath returns the global config file location.
// Uses $XDG_CONFIG_HOME/aoc/config.json if set, otherwise ~/.config/aoc/config.json.
func globalPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "aoc", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "aoc", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	ConfigPath  string            // --config flag value; if set, the file must exist
	DataDirFlag string            // --data-dir flag value; empty means no override
	Env         map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (or the explicit --config file)
// 3. CLI overrides.
func Load(input LoadInput) (Config, error) {
	cfg := Default(input.Env)

	path := input.ConfigPath
	mustExist := path != ""

	if path == "" {
		path = globalPath(input.Env)
	}

	if path != "" {
		fileCfg, loaded, err := loadFile(path, mustExist)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = merge(cfg, fileCfg)
			cfg.Source = path
		}
	}

	if input.DataDirFlag != "" {
		cfg.DataDir = input.DataDirFlag
	}

	if cfg.DataDir == "" {
		return Config{}, ErrDataDirEmpty
	}

	return cfg, nil
}

// Timeout returns the configured solver timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeout
	}

	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LedgerDir is where guess ledgers live.
func (c Config) LedgerDir() string {
	return filepath.Join(c.DataDir, "ledger")
}

// CacheDir is where fetched datasets live.
func (c Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}

// loadFile loads one config file. If mustExist is false, a missing file
// returns zero config.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		if mustExist {
			return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}

		return Config{}, false, nil
	}

	cfg, parseErr := parse(data)
	if parseErr != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, true, nil
}

func parse(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.DataDir != "" {
		base.DataDir = overlay.DataDir
	}

	if overlay.Token != "" {
		base.Token = overlay.Token
	}

	if overlay.TimeoutSeconds > 0 {
		base.TimeoutSeconds = overlay.TimeoutSeconds
	}

	if overlay.Quiet {
		base.Quiet = true
	}

	return base
}

// Format renders the resolved config as indented JSON for print-config.
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("formatting config: %w", err)
	}

	return string(data), nil
}
