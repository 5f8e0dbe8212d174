package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable for splitstat. All analysis parameters are
// threaded explicitly through the pipeline so tests can override them
// per-case; nothing reads globals after Load returns.
type Config struct {
	DBPath    string          `yaml:"db_path"`
	OutputDir string          `yaml:"output_dir"`
	Server    ServerConfig    `yaml:"server"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Generator GeneratorConfig `yaml:"generator"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// AnalysisConfig carries the statistical thresholds used by every test,
// interval and power computation in a single run.
type AnalysisConfig struct {
	Alpha           float64 `yaml:"alpha"`
	Power           float64 `yaml:"power"`
	ConfidenceLevel float64 `yaml:"confidence_level"`
}

// GeneratorConfig describes the synthetic experiment. The variant parameters
// are deliberately set above the control ones so every generated dataset
// carries a known, reproducible uplift.
type GeneratorConfig struct {
	Users int    `yaml:"users"`
	Seed  uint64 `yaml:"seed"`

	ControlConversionRate float64 `yaml:"control_conversion_rate"`
	VariantConversionRate float64 `yaml:"variant_conversion_rate"`

	ControlTimeShape float64 `yaml:"control_time_shape"`
	ControlTimeScale float64 `yaml:"control_time_scale"`
	VariantTimeShape float64 `yaml:"variant_time_shape"`
	VariantTimeScale float64 `yaml:"variant_time_scale"`

	ControlClicksRate float64 `yaml:"control_clicks_rate"`
	VariantClicksRate float64 `yaml:"variant_clicks_rate"`

	ControlSessionsRate float64 `yaml:"control_sessions_rate"`
	VariantSessionsRate float64 `yaml:"variant_sessions_rate"`
}

// Default returns the stock configuration: alpha 0.05, target power 0.80,
// 95% intervals, 20k users with the planted 12% -> 14.8% conversion uplift.
func Default() *Config {
	return &Config{
		DBPath:    "./splitstat.db",
		OutputDir: "./outputs",
		Server: ServerConfig{
			Port: 8090,
		},
		Analysis: AnalysisConfig{
			Alpha:           0.05,
			Power:           0.80,
			ConfidenceLevel: 0.95,
		},
		Generator: GeneratorConfig{
			Users:                 20000,
			Seed:                  42,
			ControlConversionRate: 0.12,
			VariantConversionRate: 0.148,
			ControlTimeShape:      2.5,
			ControlTimeScale:      3.0,
			VariantTimeShape:      2.7,
			VariantTimeScale:      3.3,
			ControlClicksRate:     3.2,
			VariantClicksRate:     3.9,
			ControlSessionsRate:   2.1,
			VariantSessionsRate:   2.4,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// SPLITSTAT_* environment overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.DBPath = envString("SPLITSTAT_DB_PATH", cfg.DBPath)
	cfg.OutputDir = envString("SPLITSTAT_OUTPUT_DIR", cfg.OutputDir)
	cfg.Server.Port = envInt("SPLITSTAT_PORT", cfg.Server.Port)
	cfg.Analysis.Alpha = envFloat("SPLITSTAT_ALPHA", cfg.Analysis.Alpha)
	cfg.Analysis.Power = envFloat("SPLITSTAT_POWER", cfg.Analysis.Power)
	cfg.Analysis.ConfidenceLevel = envFloat("SPLITSTAT_CONFIDENCE_LEVEL", cfg.Analysis.ConfidenceLevel)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Analysis.Alpha <= 0 || c.Analysis.Alpha >= 1 {
		return fmt.Errorf("alpha must be in (0, 1), got %v", c.Analysis.Alpha)
	}
	if c.Analysis.Power <= 0 || c.Analysis.Power >= 1 {
		return fmt.Errorf("power must be in (0, 1), got %v", c.Analysis.Power)
	}
	if c.Analysis.ConfidenceLevel <= 0 || c.Analysis.ConfidenceLevel >= 1 {
		return fmt.Errorf("confidence_level must be in (0, 1), got %v", c.Analysis.ConfidenceLevel)
	}
	if c.Generator.Users < 2 {
		return fmt.Errorf("generator users must be at least 2, got %d", c.Generator.Users)
	}
	if c.Generator.ControlConversionRate < 0 || c.Generator.ControlConversionRate > 1 ||
		c.Generator.VariantConversionRate < 0 || c.Generator.VariantConversionRate > 1 {
		return fmt.Errorf("conversion rates must be in [0, 1]")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in [1, 65535], got %d", c.Server.Port)
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
