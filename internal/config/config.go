// Package config loads runtime configuration from environment variables
// with an optional YAML file overlay. The query section exposes the
// business-policy knobs of the engine, most notably the
// minimum-denominator ranking threshold, which is configuration rather
// than a literal because it may need tuning per dataset.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces environment variables, e.g. FINQUERY_QUERY_DEFAULT_TOP_N.
const envPrefix = "FINQUERY"

// Config is the complete application configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Query   QueryConfig   `yaml:"query" envconfig:"QUERY"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
}

// QueryConfig holds planning and execution policy.
type QueryConfig struct {
	// DefaultMetric is the metric used when a question matches nothing
	// in the dictionary.
	DefaultMetric string `yaml:"default_metric" envconfig:"DEFAULT_METRIC" default:"TotalRevenue_$mm" validate:"required"`
	// DefaultTopN caps ranked output when no literal count is present.
	DefaultTopN int `yaml:"default_top_n" envconfig:"DEFAULT_TOP_N" default:"10" validate:"min=1"`
	// MinRatioDenominator suppresses statistically thin ratios from
	// best/worst rankings. Zero disables the threshold.
	MinRatioDenominator float64 `yaml:"min_ratio_denominator" envconfig:"MIN_RATIO_DENOMINATOR" default:"1.0" validate:"gte=0"`
}

var validate = validator.New()

// Load reads configuration from the environment, overlays the YAML file
// named by FINQUERY_CONFIG when set, and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if path := os.Getenv(envPrefix + "_CONFIG"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return nil, err
		}
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Logger builds the process logger from the logging section.
func (c *Config) Logger() *slog.Logger {
	level := slog.LevelInfo
	switch c.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
