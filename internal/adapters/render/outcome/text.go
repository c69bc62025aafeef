package outcome

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/bluesky-mcp/internal/domain"
)

// Renderer turns an Outcome into the single text block returned to the host.
type Renderer struct {
	// RequestTimeout is quoted in timeout messages.
	RequestTimeout time.Duration
}

func (r Renderer) Text(o domain.Outcome) string {
	if o.OK() {
		return indentJSON(o.Payload)
	}
	return r.failureLine(o.Failure)
}

func (r Renderer) failureLine(f *domain.Failure) string {
	switch f.Kind {
	case domain.KindConfiguration:
		return "Configuration error: " + message(f)
	case domain.KindAuthentication:
		return "Authentication failed. Please check your credentials."
	case domain.KindTokenRejected:
		return "Session token was rejected by Bluesky. Please try again."
	case domain.KindRateLimited:
		return "Rate limit exceeded. Please try again later."
	case domain.KindTimeout:
		if r.RequestTimeout > 0 {
			return fmt.Sprintf("Request timed out after %s.", r.RequestTimeout)
		}
		return "Request timed out."
	case domain.KindUnreachable:
		return "Failed to connect to Bluesky API. Please check your internet connection."
	case domain.KindRemote:
		return fmt.Sprintf("Bluesky API error (HTTP %d): %s", f.Status, strings.Join(strings.Fields(f.Detail), " "))
	case domain.KindUnknownTool:
		return "Unknown tool: " + f.Detail
	case domain.KindMissingArgument:
		return "Missing required argument: " + f.Detail
	default:
		return "Unexpected error: " + message(f)
	}
}

func message(f *domain.Failure) string {
	switch {
	case f.Detail != "":
		return f.Detail
	case f.Err != nil:
		return f.Err.Error()
	default:
		return string(f.Kind)
	}
}

func indentJSON(payload json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		return string(payload)
	}
	return buf.String()
}
