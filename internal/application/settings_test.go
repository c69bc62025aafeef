package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettingsAreValid(t *testing.T) {
	settings := DefaultSettings()

	assert.NoError(t, settings.Validate())
	assert.Equal(t, 30*time.Second, settings.RequestTimeout)
	assert.Equal(t, time.Hour, settings.Session.Freshness)
	assert.Equal(t, 3, settings.Session.LoginAttempts)
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{name: "ftp url", mutate: func(s *Settings) { s.ServiceURL = "ftp://bsky.social/xrpc/" }, wantErr: "http or https"},
		{name: "missing host", mutate: func(s *Settings) { s.ServiceURL = "https:///xrpc/" }, wantErr: "host is required"},
		{name: "zero timeout", mutate: func(s *Settings) { s.RequestTimeout = 0 }, wantErr: "request timeout"},
		{name: "no attempts", mutate: func(s *Settings) { s.Session.LoginAttempts = 0 }, wantErr: "login attempts"},
		{name: "negative rate", mutate: func(s *Settings) { s.RequestsPerSecond = -1 }, wantErr: "requests per second"},
		{name: "unknown log level", mutate: func(s *Settings) { s.LogLevel = "loud" }, wantErr: "log level"},
		{name: "unknown log format", mutate: func(s *Settings) { s.LogFormat = "xml" }, wantErr: "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			tt.mutate(&settings)
			assert.ErrorContains(t, settings.Validate(), tt.wantErr)
		})
	}
}
