// Package config loads plan2bead settings from defaults, an optional YAML
// file, PLAN2BEAD_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/steveyegge/plan2bead/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. PLAN2BEAD_TRACKER_COMMAND
// for tracker.command.
const EnvPrefix = "PLAN2BEAD"

// Config is the complete plan2bead configuration.
type Config struct {
	Tracker TrackerConfig `mapstructure:"tracker"`
	Plan    PlanConfig    `mapstructure:"plan"`
	Journal JournalConfig `mapstructure:"journal"`
	Log     LogConfig     `mapstructure:"log"`
}

// TrackerConfig controls how the tracker CLI is driven.
type TrackerConfig struct {
	// Command is the tracker binary (default: "br")
	Command string `mapstructure:"command"`
	// Flush runs "sync --flush-only" after all issues are created (default: true)
	Flush bool `mapstructure:"flush"`
	// Throttle is the minimum spacing between tracker calls (0 = none)
	Throttle time.Duration `mapstructure:"throttle"`
	// Timeout bounds each tracker call (0 = wait forever)
	Timeout time.Duration `mapstructure:"timeout"`
}

// PlanConfig controls how plans are interpreted.
type PlanConfig struct {
	// LinkNumbered turns "N. depends on: M" references into dependency edges
	LinkNumbered bool `mapstructure:"link_numbered"`
}

// JournalConfig controls the call journal.
type JournalConfig struct {
	// Path of the SQLite journal ("" = no journal)
	Path string `mapstructure:"path"`
}

// LogConfig controls the debug log.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Tracker: TrackerConfig{
			Command: "br",
			Flush:   true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers every key with its default value on v.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("tracker.command", d.Tracker.Command)
	v.SetDefault("tracker.flush", d.Tracker.Flush)
	v.SetDefault("tracker.throttle", d.Tracker.Throttle)
	v.SetDefault("tracker.timeout", d.Tracker.Timeout)

	v.SetDefault("plan.link_numbered", d.Plan.LinkNumbered)

	v.SetDefault("journal.path", d.Journal.Path)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// Init prepares v: defaults, environment overrides and the config file.
// An explicit cfgFile must exist; the default locations are optional.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("plan2bead")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(ConfigDir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load reads the configuration from v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks if the configuration has valid values
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Tracker.Command) == "" {
		return fmt.Errorf("tracker.command must not be empty")
	}
	if c.Tracker.Throttle < 0 {
		return fmt.Errorf("tracker.throttle must not be negative (got %s)", c.Tracker.Throttle)
	}
	if c.Tracker.Timeout < 0 {
		return fmt.Errorf("tracker.timeout must not be negative (got %s)", c.Tracker.Timeout)
	}
	if !logging.IsValidLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be one of %s (got %q)",
			strings.ToLower(strings.Join(logging.ValidLevels(), ", ")), c.Log.Level)
	}
	return nil
}

// String returns a human-readable representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Tracker: {Command: %s, Flush: %t, Throttle: %s, Timeout: %s}, LinkNumbered: %t, Journal: %q, Log: {Level: %s, File: %q}}",
		c.Tracker.Command, c.Tracker.Flush, c.Tracker.Throttle, c.Tracker.Timeout,
		c.Plan.LinkNumbered, c.Journal.Path, c.Log.Level, c.Log.File,
	)
}

// ConfigDir returns the per-user config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "plan2bead")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".plan2bead"
	}
	return filepath.Join(home, ".config", "plan2bead")
}
