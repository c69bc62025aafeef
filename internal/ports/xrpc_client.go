package ports

import (
	"context"
	"net/url"
)

// XRPCRequest describes one call to an XRPC method. Body is JSON-encoded when set;
// Token, when set, is sent as a bearer credential.
type XRPCRequest struct {
	Method string
	NSID   string
	Query  url.Values
	Body   any
	Token  string
}

type XRPCResponse struct {
	StatusCode int
	Body       []byte
}

// XRPCClient performs exactly one HTTP round trip per Do call. A non-2xx status is
// not an error; err is only set when no response was received.
type XRPCClient interface {
	Do(ctx context.Context, req XRPCRequest) (XRPCResponse, error)
}
