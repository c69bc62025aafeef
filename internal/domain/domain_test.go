package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStaleDetection(t *testing.T) {
	issuedAt := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	s := Session{AccessToken: "jwt", AccountID: "did:plc:abc", IssuedAt: issuedAt}

	assert.False(t, s.IsStale(issuedAt.Add(30*time.Minute), time.Hour))
	assert.True(t, s.IsStale(issuedAt.Add(61*time.Minute), time.Hour))
}

func TestSessionStaleDetectionNonPositiveMaxAge(t *testing.T) {
	issuedAt := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	s := Session{IssuedAt: issuedAt}

	assert.False(t, s.IsStale(issuedAt.Add(24*time.Hour), 0))
	assert.False(t, s.IsStale(issuedAt.Add(24*time.Hour), -1*time.Minute))
}

func TestSessionStaleDetectionZeroIssuedAt(t *testing.T) {
	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

	assert.True(t, Session{}.IsStale(now, time.Hour))
}

func TestSessionValidRequiresTokenAndAccount(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		want    bool
	}{
		{name: "empty", session: Session{}, want: false},
		{name: "token only", session: Session{AccessToken: "jwt"}, want: false},
		{name: "account only", session: Session{AccountID: "did:plc:abc"}, want: false},
		{name: "both", session: Session{AccessToken: "jwt", AccountID: "did:plc:abc"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.Valid())
		})
	}
}

func TestCredentialsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		creds   Credentials
		wantErr string
	}{
		{name: "valid", creds: Credentials{Identifier: "alice.bsky.social", Password: "app-pass"}},
		{name: "missing identifier", creds: Credentials{Password: "app-pass"}, wantErr: IdentifierEnv},
		{name: "missing password", creds: Credentials{Identifier: "alice.bsky.social"}, wantErr: AppPasswordEnv},
		{name: "whitespace only", creds: Credentials{Identifier: " ", Password: "\t"}, wantErr: IdentifierEnv + ", " + AppPasswordEnv},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.creds.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestCredentialsStringOmitsPassword(t *testing.T) {
	creds := Credentials{Identifier: "alice.bsky.social", Password: "hunter2"}

	assert.NotContains(t, fmt.Sprintf("%v", creds), "hunter2")
	assert.NotContains(t, fmt.Sprintf("%s", creds), "hunter2")
}

func TestFailureMatchesSentinelByKind(t *testing.T) {
	err := fmt.Errorf("call tool: %w", &Failure{Kind: KindRemote, Status: 502, Detail: "bad gateway"})

	assert.ErrorIs(t, err, ErrRemote)
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, "remote_error (status 502): bad gateway", AsFailure(err).Error())
}

func TestAsFailureWrapsUnknownErrorsAsInternal(t *testing.T) {
	cause := errors.New("boom")

	failure := AsFailure(cause)
	require.NotNil(t, failure)
	assert.Equal(t, KindInternal, failure.Kind)
	assert.ErrorIs(t, failure, cause)
	assert.Nil(t, AsFailure(nil))
}

func TestFailureTransient(t *testing.T) {
	tests := []struct {
		name    string
		failure Failure
		want    bool
	}{
		{name: "unreachable", failure: Failure{Kind: KindUnreachable}, want: true},
		{name: "timeout", failure: Failure{Kind: KindTimeout}, want: true},
		{name: "server error", failure: Failure{Kind: KindRemote, Status: 503}, want: true},
		{name: "client error", failure: Failure{Kind: KindRemote, Status: 404}, want: false},
		{name: "bad credentials", failure: Failure{Kind: KindAuthentication, Status: 401}, want: false},
		{name: "rate limited", failure: Failure{Kind: KindRateLimited, Status: 429}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.failure.Transient())
		})
	}
}

func TestOutcomeConstructors(t *testing.T) {
	ok := Success([]byte(`{"handle":"alice.bsky.social"}`))
	assert.True(t, ok.OK())
	assert.Equal(t, ErrorKind(""), ok.Kind())

	failed := Fail(&Failure{Kind: KindRateLimited})
	assert.False(t, failed.OK())
	assert.Equal(t, KindRateLimited, failed.Kind())

	assert.Equal(t, KindInternal, Fail(nil).Kind())
}
