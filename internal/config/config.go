// Package config loads lorasched configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (LORASCHED_DEFAULTS_STEPS, ...).
const EnvPrefix = "LORASCHED"

// Config is the top-level configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	History  HistoryConfig  `mapstructure:"history"`
	Stacks   StacksConfig   `mapstructure:"stacks"`
	UI       UIConfig       `mapstructure:"ui"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultsConfig holds values used when a command flag is omitted.
type DefaultsConfig struct {
	// Steps is the sampler step count used when a stack does not declare one.
	Steps int `mapstructure:"steps"`

	// Channels are the conditioning channels hooks are emitted for.
	Channels []string `mapstructure:"channels"`
}

// HistoryConfig controls the run journal.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// StacksConfig lists extra stack directories searched before the defaults.
type StacksConfig struct {
	Dirs []string `mapstructure:"dirs"`
}

// UIConfig controls human-readable output.
type UIConfig struct {
	Theme string `mapstructure:"theme"`
}

// DefaultConfigDir returns ~/.config/lorasched.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".lorasched"
	}
	return filepath.Join(home, ".config", "lorasched")
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Defaults: DefaultsConfig{
			Steps:    20,
			Channels: []string{"positive", "negative"},
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    filepath.Join(DefaultConfigDir(), "history.db"),
		},
		UI: UIConfig{
			Theme: "default",
		},
	}
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("defaults.steps", def.Defaults.Steps)
	v.SetDefault("defaults.channels", def.Defaults.Channels)
	v.SetDefault("history.enabled", def.History.Enabled)
	v.SetDefault("history.path", def.History.Path)
	v.SetDefault("stacks.dirs", []string{})
	v.SetDefault("ui.theme", def.UI.Theme)
}

// Load reads configuration. An explicit path must exist; without one the
// default location is used if present. Environment variables override
// file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.History.Path = expandHome(cfg.History.Path)
	for i, dir := range cfg.Stacks.Dirs {
		cfg.Stacks.Dirs[i] = expandHome(dir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration values.
func (c *Config) Validate() error {
	var problems []string

	switch strings.ToLower(c.Logging.Format) {
	case "", "auto", "console", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format: unknown format %q", c.Logging.Format))
	}
	if c.Defaults.Steps <= 0 {
		problems = append(problems, "defaults.steps: must be greater than 0")
	}
	for _, ch := range c.Defaults.Channels {
		switch strings.ToLower(strings.TrimSpace(ch)) {
		case "positive", "negative", "both":
		default:
			problems = append(problems, fmt.Sprintf("defaults.channels: unknown channel %q", ch))
		}
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		problems = append(problems, "history.path: required when history is enabled")
	}
	switch c.UI.Theme {
	case "", "default", "high-contrast":
	default:
		problems = append(problems, fmt.Sprintf("ui.theme: unknown theme %q", c.UI.Theme))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
