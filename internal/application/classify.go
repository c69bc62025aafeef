package application

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/bnema/bluesky-mcp/internal/domain"
	"github.com/bnema/bluesky-mcp/internal/ports"
)

const maxErrorBodyBytes = 1024

// XRPC error names the PDS uses for an access token it no longer accepts.
var rejectedTokenErrors = map[string]struct{}{
	"ExpiredToken": {},
	"InvalidToken": {},
}

type xrpcError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// classifyResponse maps a non-2xx data response onto the failure taxonomy. It
// returns nil for a 2xx status.
func classifyResponse(resp ports.XRPCResponse) *domain.Failure {
	if isSuccess(resp.StatusCode) {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return &domain.Failure{Kind: domain.KindRateLimited, Status: resp.StatusCode}
	case http.StatusUnauthorized:
		return &domain.Failure{Kind: domain.KindTokenRejected, Status: resp.StatusCode, Detail: errorSummary(resp.Body)}
	case http.StatusBadRequest:
		if name := decodeXRPCError(resp.Body).Error; name != "" {
			if _, ok := rejectedTokenErrors[name]; ok {
				return &domain.Failure{Kind: domain.KindTokenRejected, Status: resp.StatusCode, Detail: errorSummary(resp.Body)}
			}
		}
	}

	return &domain.Failure{Kind: domain.KindRemote, Status: resp.StatusCode, Detail: errorBody(resp.Body)}
}

// classifyLoginResponse differs from classifyResponse in that a rejected
// createSession call means bad credentials, not a stale token.
func classifyLoginResponse(resp ports.XRPCResponse) *domain.Failure {
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return &domain.Failure{Kind: domain.KindAuthentication, Status: resp.StatusCode, Detail: errorSummary(resp.Body)}
	}
	return classifyResponse(resp)
}

// classifyTransportError maps an error raised before any response was received.
func classifyTransportError(err error) *domain.Failure {
	if err == nil {
		return nil
	}

	var failure *domain.Failure
	if errors.As(err, &failure) {
		return failure
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.Failure{Kind: domain.KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &domain.Failure{Kind: domain.KindTimeout, Err: err}
	}

	if errors.Is(err, context.Canceled) {
		return &domain.Failure{Kind: domain.KindInternal, Detail: "request canceled", Err: err}
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	switch {
	case errors.As(err, &dnsErr),
		errors.As(err, &opErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET):
		return &domain.Failure{Kind: domain.KindUnreachable, Err: err}
	}

	return &domain.Failure{Kind: domain.KindInternal, Detail: err.Error(), Err: err}
}

func decodeXRPCError(body []byte) xrpcError {
	var payload xrpcError
	if err := json.Unmarshal(body, &payload); err != nil {
		return xrpcError{}
	}
	return payload
}

func errorSummary(body []byte) string {
	payload := decodeXRPCError(body)
	switch {
	case payload.Error != "" && payload.Message != "":
		return payload.Error + ": " + payload.Message
	case payload.Error != "":
		return payload.Error
	default:
		return errorBody(body)
	}
}

func errorBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBodyBytes {
		text = strings.ToValidUTF8(text[:maxErrorBodyBytes], "") + "..."
	}
	return text
}
