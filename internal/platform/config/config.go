// Package config reads process configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/juju/errors"

	"recordhub/internal/infra/seedsource"
)

// Config is the recordhub process configuration.
type Config struct {
	HTTPAddr           string            `env:"RECORDHUB_HTTP_ADDR"           envDefault:":4000"`
	LogLevel           string            `env:"RECORDHUB_LOG_LEVEL"           envDefault:"<root>=INFO"`
	SeedDriver         seedsource.Driver `env:"RECORDHUB_SEED_DRIVER"         envDefault:"none"`
	SeedRoot           string            `env:"RECORDHUB_SEED_ROOT"           envDefault:"./seed"`
	SeedKey            string            `env:"RECORDHUB_SEED_KEY"            envDefault:"data.json"`
	SeedS3Bucket       string            `env:"RECORDHUB_SEED_S3_BUCKET"`
	SeedS3Region       string            `env:"RECORDHUB_SEED_S3_REGION"      envDefault:"us-east-1"`
	SeedS3Endpoint     string            `env:"RECORDHUB_SEED_S3_ENDPOINT"`
	SeedS3PathStyle    bool              `env:"RECORDHUB_SEED_S3_PATH_STYLE"`
	OTelEndpoint       string            `env:"RECORDHUB_OTEL_ENDPOINT"`
	SubscriptionBuffer int               `env:"RECORDHUB_SUBSCRIPTION_BUFFER" envDefault:"16"`
	ShutdownTimeout    time.Duration     `env:"RECORDHUB_SHUTDOWN_TIMEOUT"    envDefault:"10s"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Annotate(err, "parse env")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Trace(err)
	}
	return cfg, nil
}

// Validate checks values env tags cannot express. The memory seed driver
// starts empty in a fresh process, so it is only reachable from tests.
func (c Config) Validate() error {
	switch c.SeedDriver {
	case seedsource.DriverNone, seedsource.DriverFilesystem:
	case seedsource.DriverS3:
		if c.SeedS3Bucket == "" {
			return errors.NotValidf("RECORDHUB_SEED_S3_BUCKET unset for s3 seed driver")
		}
	default:
		return errors.NotValidf("RECORDHUB_SEED_DRIVER %q", c.SeedDriver)
	}
	if c.SubscriptionBuffer < 0 {
		return errors.NotValidf("negative RECORDHUB_SUBSCRIPTION_BUFFER %d", c.SubscriptionBuffer)
	}
	if c.ShutdownTimeout <= 0 {
		return errors.NotValidf("RECORDHUB_SHUTDOWN_TIMEOUT %s", c.ShutdownTimeout)
	}
	return nil
}
