package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "TotalRevenue_$mm", cfg.Query.DefaultMetric)
	assert.Equal(t, 10, cfg.Query.DefaultTopN)
	assert.InDelta(t, 1.0, cfg.Query.MinRatioDenominator, 1e-12)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FINQUERY_LOGGING_LEVEL", "debug")
	t.Setenv("FINQUERY_QUERY_DEFAULT_TOP_N", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Query.DefaultTopN)
}

func TestLoadRejectsInvalidLevel(t *testing.T) {
	t.Setenv("FINQUERY_LOGGING_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finquery.yaml")
	content := "query:\n  min_ratio_denominator: 2.5\n  default_top_n: 3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("FINQUERY_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.InDelta(t, 2.5, cfg.Query.MinRatioDenominator, 1e-12)
	assert.Equal(t, 3, cfg.Query.DefaultTopN)
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("FINQUERY_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := &Config{Logging: LoggingConfig{Level: level, Format: "text"}}
		assert.NotNil(t, cfg.Logger())
	}

	cfg := &Config{Logging: LoggingConfig{Level: "info", Format: "json"}}
	assert.NotNil(t, cfg.Logger())
}
