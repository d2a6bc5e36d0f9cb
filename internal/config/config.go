// Package config handles the optional recsel configuration file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds defaults for CLI flags. Flags given on the command line
// always win over file values.
type Config struct {
	// DB is the database path: a SQLite file or a pebble directory.
	DB string `toml:"db"`

	// Schemas is the directory of CUE record declarations.
	Schemas string `toml:"schemas"`

	// Backend selects the store: "sqlite" (default) or "pebble".
	Backend string `toml:"backend"`

	// Strict rejects WHERE and ORDER fields the schema does not declare.
	Strict bool `toml:"strict"`

	// Format is the output format: "text" (default) or "json".
	Format string `toml:"format"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Backend:  "sqlite",
		Format:   "text",
		LogLevel: "info",
	}
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
// Keys missing from the file keep their defaults.
func LoadFrom(path string) (*Config, error) {
	config := Default()
	md, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch c.Backend {
	case "sqlite", "pebble":
	default:
		return fmt.Errorf("backend must be sqlite or pebble, got %q", c.Backend)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json, got %q", c.Format)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel. Empty means info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/recsel/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "recsel", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "recsel", "config.toml")
	}

	return filepath.Join(".", "recsel.toml")
}
