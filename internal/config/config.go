// Package config loads service configuration for go-speakcoach.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the service-level settings. Per-package tunables (zone bounds,
// expression presets, lexicon) live in their packages' Config structs; this
// only selects among them and wires storage and transport.
type Config struct {
	// Server
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	// Storage
	StorageBackend  string `mapstructure:"storage_backend"` // "json" or "sqlite"
	HistoryPath     string `mapstructure:"history_path"`
	CalibrationPath string `mapstructure:"calibration_path"`

	// Scoring
	ExpressionPreset string `mapstructure:"expression_preset"` // "classic" or "revised"

	// Session bounds
	MinTestDuration time.Duration `mapstructure:"min_test_duration"`
	MaxTestDuration time.Duration `mapstructure:"max_test_duration"`
}

// Load reads configuration from coach.yaml (working directory or /etc/speakcoach)
// with COACH_* environment overrides. A missing file is not an error; defaults
// apply.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("coach")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/speakcoach")

	v.SetDefault("port", "8090")
	v.SetDefault("log_level", "info")
	v.SetDefault("storage_backend", "json")
	v.SetDefault("history_path", "data/sessions.json")
	v.SetDefault("calibration_path", "data/calibration.json")
	v.SetDefault("expression_preset", "classic")
	v.SetDefault("min_test_duration", 30*time.Second)
	v.SetDefault("max_test_duration", 25*time.Minute)

	v.SetEnvPrefix("COACH")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
