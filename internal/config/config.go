package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const DefaultShortcut = "CommandOrControl+Shift+V"

type Config struct {
	Shortcut       string   `mapstructure:"shortcut" json:"shortcut"`
	MaxHistorySize int      `mapstructure:"max_history_size" json:"max_history_size"`
	Language       string   `mapstructure:"language" json:"language"`
	Theme          string   `mapstructure:"theme" json:"theme"`
	SensitiveApps  []string `mapstructure:"sensitive_apps" json:"sensitive_apps"`
	CompactMode    bool     `mapstructure:"compact_mode" json:"compact_mode"`

	// Manual clear behavior: items matching an enabled flag survive ClearHistory.
	KeepPinnedOnClear    bool `mapstructure:"keep_pinned_on_clear" json:"keep_pinned_on_clear"`
	KeepCollectedOnClear bool `mapstructure:"keep_collected_on_clear" json:"keep_collected_on_clear"`

	MonitorIntervalMS int `mapstructure:"monitor_interval_ms" json:"monitor_interval_ms"`
}

func Default() *Config {
	return &Config{
		Shortcut:             DefaultShortcut,
		MaxHistorySize:       100,
		Language:             "en",
		Theme:                "system",
		SensitiveApps:        []string{},
		CompactMode:          false,
		KeepPinnedOnClear:    true,
		KeepCollectedOnClear: true,
		MonitorIntervalMS:    1000,
	}
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist. A malformed file is an error; a missing one is not.
func Load(path string) (*Config, error) {
	config := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.validate()

	return config, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.Set("shortcut", c.Shortcut)
	v.Set("max_history_size", c.MaxHistorySize)
	v.Set("language", c.Language)
	v.Set("theme", c.Theme)
	v.Set("sensitive_apps", c.SensitiveApps)
	v.Set("compact_mode", c.CompactMode)
	v.Set("keep_pinned_on_clear", c.KeepPinnedOnClear)
	v.Set("keep_collected_on_clear", c.KeepCollectedOnClear)
	v.Set("monitor_interval_ms", c.MonitorIntervalMS)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) validate() {
	if c.Shortcut == "" {
		c.Shortcut = DefaultShortcut
	}
	if c.MaxHistorySize <= 0 {
		c.MaxHistorySize = 100
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Theme == "" {
		c.Theme = "system"
	}
	if c.MonitorIntervalMS <= 0 {
		c.MonitorIntervalMS = 1000
	}
}

// Clone returns a copy safe to hand across the command boundary while the
// original stays behind the app's config lock.
func (c *Config) Clone() *Config {
	dup := *c
	dup.SensitiveApps = append([]string(nil), c.SensitiveApps...)
	return &dup
}
