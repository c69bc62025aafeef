package toml

import (
	"fmt"

	"github.com/bnema/bluesky-mcp/internal/application"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version int           `toml:"version"`
	XRPC    xrpcSchema    `toml:"xrpc"`
	Session sessionSchema `toml:"session"`
	Log     logSchema     `toml:"log"`
	Metrics metricsSchema `toml:"metrics"`
}

type xrpcSchema struct {
	ServiceURL        string  `toml:"service_url"`
	RequestTimeout    string  `toml:"request_timeout"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

type sessionSchema struct {
	Freshness       string `toml:"freshness"`
	LoginAttempts   int    `toml:"login_attempts"`
	LoginRetryDelay string `toml:"login_retry_delay"`
}

type logSchema struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type metricsSchema struct {
	Listen string `toml:"listen"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func validateVersion(version int) error {
	if version > currentSchemaVersion {
		return fmt.Errorf("unsupported config schema version %d (current %d)", version, currentSchemaVersion)
	}
	return nil
}

func toSchema(settings application.Settings) fileSchema {
	file := fileSchema{
		XRPC: xrpcSchema{
			ServiceURL:        settings.ServiceURL,
			RequestTimeout:    settings.RequestTimeout.String(),
			RequestsPerSecond: settings.RequestsPerSecond,
		},
		Session: sessionSchema{
			Freshness:       settings.Session.Freshness.String(),
			LoginAttempts:   settings.Session.LoginAttempts,
			LoginRetryDelay: settings.Session.LoginRetryDelay.String(),
		},
		Log: logSchema{
			Level:  settings.LogLevel,
			Format: settings.LogFormat,
		},
		Metrics: metricsSchema{Listen: settings.MetricsAddr},
	}
	file.applyDefaults()
	return file
}
