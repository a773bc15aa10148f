package config_test

import (
	"testing"

	"github.com/chris-alexander-pop/persiqueue/pkg/config"
	"github.com/stretchr/testify/require"
)

type appConfig struct {
	LogLevel string `env:"LOG_LEVEL" env-default:"INFO"`
	Port     int    `env:"PORT" env-default:"8080"`
}

func TestLoadAppliesEnvDefault(t *testing.T) {
	var cfg appConfig
	require.NoError(t, config.Load(&cfg))
	require.Equal(t, "INFO", cfg.LogLevel)
	require.Equal(t, 8080, cfg.Port)
}

func TestLoadHonorsEnvOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("PORT", "9090")

	var cfg appConfig
	require.NoError(t, config.Load(&cfg))
	require.Equal(t, "DEBUG", cfg.LogLevel)
	require.Equal(t, 9090, cfg.Port)
}

func TestLoadRejectsValidationFailure(t *testing.T) {
	type strictConfig struct {
		APIKey string `env:"API_KEY" validate:"required"`
	}

	var cfg strictConfig
	require.Error(t, config.Load(&cfg))
}
