// Package config loads questd settings from a YAML file and QUESTD_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

type Config struct {
	XPPerMinute         float64       `mapstructure:"xp_per_minute" yaml:"xp_per_minute" env:"QUESTD_XP_PER_MINUTE"`
	FlatXP              int           `mapstructure:"flat_xp" yaml:"flat_xp" env:"QUESTD_FLAT_XP"`
	LevelingBase        float64       `mapstructure:"leveling_base" yaml:"leveling_base" env:"QUESTD_LEVELING_BASE"`
	LevelingExponent    float64       `mapstructure:"leveling_exponent" yaml:"leveling_exponent" env:"QUESTD_LEVELING_EXPONENT"`
	DailyResetHour      int           `mapstructure:"daily_reset_hour" yaml:"daily_reset_hour" env:"QUESTD_DAILY_RESET_HOUR"`
	QuestLogPath        string        `mapstructure:"quest_log_path" yaml:"quest_log_path" env:"QUESTD_QUEST_LOG_PATH"`
	MaxRecoveredMinutes float64       `mapstructure:"max_recovered_minutes" yaml:"max_recovered_minutes" env:"QUESTD_MAX_RECOVERED_MINUTES"`
	RefreshInterval     time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval" env:"QUESTD_REFRESH_INTERVAL"`
	RolloverInterval    time.Duration `mapstructure:"rollover_interval" yaml:"rollover_interval" env:"QUESTD_ROLLOVER_INTERVAL"`
	SchedulerBuffer     int           `mapstructure:"scheduler_buffer" yaml:"scheduler_buffer" env:"QUESTD_SCHEDULER_BUFFER"`
	DesktopNotify       bool          `mapstructure:"desktop_notifications" yaml:"desktop_notifications" env:"QUESTD_DESKTOP_NOTIFICATIONS"`
}

// Dir returns ~/.config/questd, or the working directory when the home
// directory cannot be resolved.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "questd")
}

func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

func Default() Config {
	return Config{
		XPPerMinute:         1,
		FlatXP:              10,
		LevelingBase:        100,
		LevelingExponent:    1.5,
		DailyResetHour:      0,
		QuestLogPath:        filepath.Join(Dir(), "quest-log.json"),
		MaxRecoveredMinutes: 0,
		RefreshInterval:     time.Second,
		RolloverInterval:    time.Minute,
		SchedulerBuffer:     16,
		DesktopNotify:       false,
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.XPPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("xp_per_minute must be > 0, got %v", c.XPPerMinute))
	}
	if c.FlatXP <= 0 {
		errs = append(errs, fmt.Errorf("flat_xp must be > 0, got %d", c.FlatXP))
	}
	if c.LevelingBase <= 0 {
		errs = append(errs, fmt.Errorf("leveling_base must be > 0, got %v", c.LevelingBase))
	}
	if c.LevelingExponent <= 0 {
		errs = append(errs, fmt.Errorf("leveling_exponent must be > 0, got %v", c.LevelingExponent))
	}
	if c.DailyResetHour < 0 || c.DailyResetHour > 23 {
		errs = append(errs, fmt.Errorf("daily_reset_hour must be within 0-23, got %d", c.DailyResetHour))
	}
	if c.QuestLogPath == "" {
		errs = append(errs, errors.New("quest_log_path is required"))
	}
	if c.MaxRecoveredMinutes < 0 {
		errs = append(errs, fmt.Errorf("max_recovered_minutes must be >= 0, got %v", c.MaxRecoveredMinutes))
	}
	if c.RefreshInterval <= 0 || c.RolloverInterval <= 0 {
		errs = append(errs, errors.New("refresh_interval and rollover_interval must be positive"))
	}
	if c.SchedulerBuffer <= 0 {
		errs = append(errs, fmt.Errorf("scheduler_buffer must be > 0, got %d", c.SchedulerBuffer))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Load reads the YAML file at path (a missing file yields defaults), applies
// QUESTD_* environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.QuestLogPath = expandHome(cfg.QuestLogPath)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields whose QUESTD_* variable is set.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Save writes cfg as YAML, creating parent directories if needed.
func Save(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.Set("xp_per_minute", cfg.XPPerMinute)
	v.Set("flat_xp", cfg.FlatXP)
	v.Set("leveling_base", cfg.LevelingBase)
	v.Set("leveling_exponent", cfg.LevelingExponent)
	v.Set("daily_reset_hour", cfg.DailyResetHour)
	v.Set("quest_log_path", cfg.QuestLogPath)
	v.Set("max_recovered_minutes", cfg.MaxRecoveredMinutes)
	v.Set("refresh_interval", cfg.RefreshInterval.String())
	v.Set("rollover_interval", cfg.RolloverInterval.String())
	v.Set("scheduler_buffer", cfg.SchedulerBuffer)
	v.Set("desktop_notifications", cfg.DesktopNotify)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("xp_per_minute", cfg.XPPerMinute)
	v.SetDefault("flat_xp", cfg.FlatXP)
	v.SetDefault("leveling_base", cfg.LevelingBase)
	v.SetDefault("leveling_exponent", cfg.LevelingExponent)
	v.SetDefault("daily_reset_hour", cfg.DailyResetHour)
	v.SetDefault("quest_log_path", cfg.QuestLogPath)
	v.SetDefault("max_recovered_minutes", cfg.MaxRecoveredMinutes)
	v.SetDefault("refresh_interval", cfg.RefreshInterval)
	v.SetDefault("rollover_interval", cfg.RolloverInterval)
	v.SetDefault("scheduler_buffer", cfg.SchedulerBuffer)
	v.SetDefault("desktop_notifications", cfg.DesktopNotify)
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
