package application

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceURL        = "https://bsky.social/xrpc/"
	DefaultRequestTimeout    = 30 * time.Second
	DefaultSessionFreshness  = time.Hour
	DefaultLoginAttempts     = 3
	DefaultLoginRetryDelay   = time.Second
	DefaultRequestsPerSecond = 0
	DefaultLogLevel          = "info"
	DefaultLogFormat         = LogFormatText

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Settings is the effective runtime configuration after defaults, file and
// environment overrides have been merged.
type Settings struct {
	ServiceURL        string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	Session           SessionPolicy
	LogLevel          string
	LogFormat         string
	MetricsAddr       string
}

// SessionPolicy bounds how long a session is reused and how logins are retried.
type SessionPolicy struct {
	// Freshness is the maximum session age before a new login; <= 0 disables it.
	Freshness       time.Duration
	LoginAttempts   int
	LoginRetryDelay time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		ServiceURL:        DefaultServiceURL,
		RequestTimeout:    DefaultRequestTimeout,
		RequestsPerSecond: DefaultRequestsPerSecond,
		Session:           DefaultSessionPolicy(),
		LogLevel:          DefaultLogLevel,
		LogFormat:         DefaultLogFormat,
	}
}

func DefaultSessionPolicy() SessionPolicy {
	return SessionPolicy{
		Freshness:       DefaultSessionFreshness,
		LoginAttempts:   DefaultLoginAttempts,
		LoginRetryDelay: DefaultLoginRetryDelay,
	}
}

func (s Settings) Validate() error {
	var errs []error

	parsed, err := url.Parse(s.ServiceURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("parse service url: %w", err))
	case parsed.Scheme != "http" && parsed.Scheme != "https":
		errs = append(errs, errors.New("service url must use http or https"))
	case parsed.Host == "":
		errs = append(errs, errors.New("service url host is required"))
	}

	if s.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if s.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("requests per second must not be negative"))
	}
	if s.Session.LoginAttempts < 1 {
		errs = append(errs, errors.New("login attempts must be at least 1"))
	}
	if s.Session.LoginRetryDelay < 0 {
		errs = append(errs, errors.New("login retry delay must not be negative"))
	}

	if _, err := logrus.ParseLevel(s.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	if s.LogFormat != LogFormatText && s.LogFormat != LogFormatJSON {
		errs = append(errs, fmt.Errorf("log format must be %q or %q", LogFormatText, LogFormatJSON))
	}

	return errors.Join(errs...)
}
