package xrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/bnema/bluesky-mcp/internal/ports"
)

const (
	maxResponseBytes      = 8 << 20
	defaultRequestTimeout = 30 * time.Second
)

var ErrResponseTooLarge = errors.New("xrpc response exceeds size limit")

// Client is the HTTP transport for XRPC calls. It does not interpret status codes.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	// Limiter, when set, paces outbound requests.
	Limiter   *rate.Limiter
	UserAgent string
}

var _ ports.XRPCClient = Client{}

// NewLimiter returns a limiter allowing rps requests per second, or nil when
// rps is not positive.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func (c Client) Do(ctx context.Context, req ports.XRPCRequest) (ports.XRPCResponse, error) {
	if req.NSID == "" {
		return ports.XRPCResponse{}, errors.New("xrpc method nsid is required")
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	endpoint, err := buildMethodURL(c.BaseURL, req.NSID, req.Query)
	if err != nil {
		return ports.XRPCResponse{}, err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()

	if err := c.wait(requestCtx); err != nil {
		return ports.XRPCResponse{}, err
	}

	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return ports.XRPCResponse{}, fmt.Errorf("encode %s request body: %w", req.NSID, err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(requestCtx, method, endpoint, body)
	if err != nil {
		return ports.XRPCResponse{}, fmt.Errorf("create %s request: %w", req.NSID, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
	}
	if req.Token != "" {
		(&oauth2.Token{AccessToken: req.Token, TokenType: "Bearer"}).SetAuthHeader(httpReq)
	}

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return ports.XRPCResponse{}, fmt.Errorf("request %s: %w", req.NSID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return ports.XRPCResponse{}, fmt.Errorf("read %s response: %w", req.NSID, err)
	}
	if len(payload) > maxResponseBytes {
		return ports.XRPCResponse{}, fmt.Errorf("read %s response: %w", req.NSID, ErrResponseTooLarge)
	}

	return ports.XRPCResponse{StatusCode: resp.StatusCode, Body: payload}, nil
}

func (c Client) wait(ctx context.Context) error {
	if c.Limiter == nil {
		return nil
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("wait for rate limit: %w", ctxErr)
		}
		// The limiter refuses up front when the wait would outlast the deadline.
		return fmt.Errorf("wait for rate limit: %w", context.DeadlineExceeded)
	}
	return nil
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// requestContext bounds every call, keeping an earlier caller deadline if any.
func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	return context.WithTimeout(ctx, requestTimeout)
}

func buildMethodURL(baseURL string, nsid string, query url.Values) (string, error) {
	if baseURL == "" {
		return "", errors.New("xrpc base url is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse xrpc base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("xrpc base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("xrpc base url host is required")
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	endpoint := parsed.ResolveReference(&url.URL{Path: nsid})
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}
	return endpoint.String(), nil
}
