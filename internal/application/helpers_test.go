package application

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bnema/bluesky-mcp/internal/domain"
	"github.com/bnema/bluesky-mcp/internal/ports"
)

var testCredentials = domain.Credentials{Identifier: "alice.bsky.social", Password: "app-pass"}

type credentialsFunc func(ctx context.Context) (domain.Credentials, error)

func (f credentialsFunc) Resolve(ctx context.Context) (domain.Credentials, error) {
	return f(ctx)
}

// countingCredentials returns creds and counts how often they were resolved.
func countingCredentials(creds domain.Credentials, calls *atomic.Int32) ports.CredentialSource {
	return credentialsFunc(func(context.Context) (domain.Credentials, error) {
		if calls != nil {
			calls.Add(1)
		}
		return creds, nil
	})
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func fastPolicy() SessionPolicy {
	return SessionPolicy{Freshness: time.Hour, LoginAttempts: 3, LoginRetryDelay: time.Millisecond}
}

func mockAnyContext() interface{} {
	return mock.Anything
}

func nsidIs(nsid string) interface{} {
	return mock.MatchedBy(func(req ports.XRPCRequest) bool {
		return req.NSID == nsid
	})
}

func loginRequest() interface{} {
	return nsidIs(createSessionNSID)
}

func sessionResponse(token string) ports.XRPCResponse {
	return ports.XRPCResponse{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"accessJwt":"` + token + `","refreshJwt":"refresh-` + token + `","handle":"alice.bsky.social","did":"did:plc:alice"}`),
	}
}

func jsonResponse(status int, body string) ports.XRPCResponse {
	return ports.XRPCResponse{StatusCode: status, Body: []byte(body)}
}

func requireKind(t *testing.T, want domain.ErrorKind, outcome domain.Outcome) {
	t.Helper()
	if outcome.Kind() != want {
		t.Fatalf("expected outcome kind %q, got %q (%v)", want, outcome.Kind(), outcome.Failure)
	}
}

type recordingMetrics struct {
	mu       sync.Mutex
	logins   []domain.ErrorKind
	requests []string
	tools    []string
}

func (m *recordingMetrics) ObserveLogin(kind domain.ErrorKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins = append(m.logins, kind)
}

func (m *recordingMetrics) ObserveRequest(nsid string, kind domain.ErrorKind, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, nsid+":"+string(kind))
}

func (m *recordingMetrics) ObserveToolCall(tool string, kind domain.ErrorKind, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tools = append(m.tools, tool+":"+string(kind))
}
