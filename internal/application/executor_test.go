package application

import (
	"context"
	"errors"
	"net"
	"net/http"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/bluesky-mcp/internal/domain"
	"github.com/bnema/bluesky-mcp/internal/ports"
	"github.com/bnema/bluesky-mcp/internal/ports/mocks"
)

const profileNSID = "app.bsky.actor.getProfile"

func profileRequest() ports.XRPCRequest {
	return ports.XRPCRequest{Method: http.MethodGet, NSID: profileNSID}
}

func newTestExecutor(t *testing.T, creds domain.Credentials) (*Executor, *SessionManager, *mocks.MockXRPCClient) {
	t.Helper()
	client := mocks.NewMockXRPCClient(t)
	sessions := NewSessionManager(countingCredentials(creds, nil), client, fastPolicy())
	return NewExecutor(sessions, client, nil, nil), sessions, client
}

func TestExecutorAttachesBearerTokenAndReturnsPayload(t *testing.T) {
	executor, _, client := newTestExecutor(t, testCredentials)

	client.EXPECT().Do(mockAnyContext(), loginRequest()).Return(sessionResponse("jwt-1"), nil).Once()
	client.EXPECT().Do(mockAnyContext(), mock.MatchedBy(func(req ports.XRPCRequest) bool {
		return req.NSID == profileNSID && req.Token == "jwt-1"
	})).Return(jsonResponse(http.StatusOK, `{"handle":"alice.bsky.social"}`), nil).Once()

	outcome := executor.Execute(context.Background(), profileRequest())

	require.True(t, outcome.OK(), "unexpected failure: %v", outcome.Failure)
	assert.JSONEq(t, `{"handle":"alice.bsky.social"}`, string(outcome.Payload))
}

func TestExecutorMissingCredentialsSkipsDataCall(t *testing.T) {
	executor, _, client := newTestExecutor(t, domain.Credentials{})

	outcome := executor.Execute(context.Background(), profileRequest())

	requireKind(t, domain.KindConfiguration, outcome)
	client.AssertNotCalled(t, "Do", mockAnyContext(), mock.Anything)
}

func TestExecutorLoginFailureSkipsDataCall(t *testing.T) {
	executor, _, client := newTestExecutor(t, testCredentials)

	client.EXPECT().Do(mockAnyContext(), loginRequest()).
		Return(jsonResponse(http.StatusUnauthorized, `{"error":"AuthenticationRequired"}`), nil).Once()

	outcome := executor.Execute(context.Background(), profileRequest())

	requireKind(t, domain.KindAuthentication, outcome)
	client.AssertNumberOfCalls(t, "Do", 1)
}

func TestExecutorClassifiesResponses(t *testing.T) {
	tests := []struct {
		name       string
		response   ports.XRPCResponse
		want       domain.ErrorKind
		wantStatus int
		wantDetail string
		keepsToken bool
	}{
		{
			name:       "rate limited",
			response:   jsonResponse(http.StatusTooManyRequests, `{"error":"RateLimitExceeded"}`),
			want:       domain.KindRateLimited,
			wantStatus: http.StatusTooManyRequests,
			keepsToken: true,
		},
		{
			name:       "unauthorized",
			response:   jsonResponse(http.StatusUnauthorized, `{"error":"AuthenticationRequired"}`),
			want:       domain.KindTokenRejected,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			response:   jsonResponse(http.StatusBadRequest, `{"error":"ExpiredToken","message":"Token has expired"}`),
			want:       domain.KindTokenRejected,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad request",
			response:   jsonResponse(http.StatusBadRequest, `{"error":"InvalidRequest","message":"Profile not found"}`),
			want:       domain.KindRemote,
			wantStatus: http.StatusBadRequest,
			wantDetail: `{"error":"InvalidRequest","message":"Profile not found"}`,
			keepsToken: true,
		},
		{
			name:       "server error",
			response:   jsonResponse(http.StatusInternalServerError, "internal"),
			want:       domain.KindRemote,
			wantStatus: http.StatusInternalServerError,
			wantDetail: "internal",
			keepsToken: true,
		},
		{
			name:       "malformed success",
			response:   jsonResponse(http.StatusOK, `{"handle":`),
			want:       domain.KindInternal,
			keepsToken: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor, sessions, client := newTestExecutor(t, testCredentials)

			client.EXPECT().Do(mockAnyContext(), loginRequest()).Return(sessionResponse("jwt-1"), nil).Once()
			client.EXPECT().Do(mockAnyContext(), nsidIs(profileNSID)).Return(tt.response, nil).Once()

			outcome := executor.Execute(context.Background(), profileRequest())

			requireKind(t, tt.want, outcome)
			assert.Equal(t, tt.wantStatus, outcome.Failure.Status)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, outcome.Failure.Detail)
			}
			_, held := sessions.Current()
			assert.Equal(t, tt.keepsToken, held)
		})
	}
}

func TestExecutorClassifiesTransportErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.ErrorKind
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: domain.KindTimeout},
		{name: "net timeout", err: &net.OpError{Op: "read", Net: "tcp", Err: timeoutError{}}, want: domain.KindTimeout},
		{name: "refused", err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, want: domain.KindUnreachable},
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "bsky.social", IsNotFound: true}, want: domain.KindUnreachable},
		{name: "canceled", err: context.Canceled, want: domain.KindInternal},
		{name: "other", err: errors.New("tls: handshake failure"), want: domain.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor, sessions, client := newTestExecutor(t, testCredentials)

			client.EXPECT().Do(mockAnyContext(), loginRequest()).Return(sessionResponse("jwt-1"), nil).Once()
			client.EXPECT().Do(mockAnyContext(), nsidIs(profileNSID)).Return(ports.XRPCResponse{}, tt.err).Once()

			outcome := executor.Execute(context.Background(), profileRequest())

			requireKind(t, tt.want, outcome)
			assert.ErrorIs(t, outcome.Failure, tt.err)
			_, held := sessions.Current()
			assert.True(t, held)
		})
	}
}

func TestExecutorRecordsRequestMetrics(t *testing.T) {
	client := mocks.NewMockXRPCClient(t)
	recorder := &recordingMetrics{}
	sessions := NewSessionManager(countingCredentials(testCredentials, nil), client, fastPolicy(), WithSessionMetrics(recorder))
	executor := NewExecutor(sessions, client, recorder, nil)

	client.EXPECT().Do(mockAnyContext(), loginRequest()).Return(sessionResponse("jwt-1"), nil).Once()
	client.EXPECT().Do(mockAnyContext(), nsidIs(profileNSID)).
		Return(jsonResponse(http.StatusTooManyRequests, ""), nil).Once()

	executor.Execute(context.Background(), profileRequest())

	assert.Equal(t, []domain.ErrorKind{""}, recorder.logins)
	assert.Equal(t, []string{profileNSID + ":" + string(domain.KindRateLimited)}, recorder.requests)
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }
