// Package config provides environment-based configuration loading and
// validation for the daemon/CLI process itself (log level, store tuning
// overrides, ...). The queue deployment file (its pub/sub/queues sections)
// has a fixed nested JSON shape and is loaded separately by deployment.go
// using encoding/json, which is a better fit for decoding a known tree of
// structs than an env-var reader.
//
// Usage:
//
//	import "github.com/chris-alexander-pop/persiqueue/pkg/config"
//
//	type AppConfig struct {
//		Port     int    `env:"PORT" env-default:"8080"`
//		LogLevel string `env:"LOG_LEVEL" env-default:"INFO" validate:"required"`
//	}
//
//	var cfg AppConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
package config

import (
	"github.com/chris-alexander-pop/persiqueue/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Load reads configuration from .env file or environment variables and validates it.
func Load[T any](cfg *T) error {
	// Fall back to plain env vars when no .env file is present.
	if err := cleanenv.ReadConfig(".env", cfg); err != nil {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return errors.Wrap(err, "failed to read env config")
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return errors.Wrap(err, "config validation failed")
	}

	return nil
}
