package ports

import (
	"time"

	"github.com/bnema/bluesky-mcp/internal/domain"
)

type Metrics interface {
	ObserveLogin(kind domain.ErrorKind)
	ObserveRequest(nsid string, kind domain.ErrorKind, elapsed time.Duration)
	ObserveToolCall(tool string, kind domain.ErrorKind, elapsed time.Duration)
}

type NoopMetrics struct{}

func (NoopMetrics) ObserveLogin(domain.ErrorKind) {}

func (NoopMetrics) ObserveRequest(string, domain.ErrorKind, time.Duration) {}

func (NoopMetrics) ObserveToolCall(string, domain.ErrorKind, time.Duration) {}
