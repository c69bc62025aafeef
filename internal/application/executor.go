package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bnema/bluesky-mcp/internal/domain"
	"github.com/bnema/bluesky-mcp/internal/ports"
)

// Sessions is the part of SessionManager the Executor depends on.
type Sessions interface {
	EnsureValid(ctx context.Context) (domain.Session, error)
	Invalidate(token string)
}

// Executor performs one authenticated XRPC call and classifies the result.
type Executor struct {
	sessions Sessions
	client   ports.XRPCClient
	metrics  ports.Metrics
	log      logrus.FieldLogger
}

func NewExecutor(sessions Sessions, client ports.XRPCClient, metrics ports.Metrics, log logrus.FieldLogger) *Executor {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if log == nil {
		log = discardLogger()
	}

	return &Executor{sessions: sessions, client: client, metrics: metrics, log: log}
}

func (e *Executor) Execute(ctx context.Context, req ports.XRPCRequest) domain.Outcome {
	session, err := e.sessions.EnsureValid(ctx)
	if err != nil {
		return domain.Fail(domain.AsFailure(err))
	}

	req.Token = session.AccessToken
	started := time.Now()
	outcome := e.call(ctx, req)
	e.metrics.ObserveRequest(req.NSID, outcome.Kind(), time.Since(started))

	if outcome.Kind() == domain.KindTokenRejected {
		e.sessions.Invalidate(session.AccessToken)
	}
	if !outcome.OK() {
		e.log.WithFields(logrus.Fields{
			"nsid":   req.NSID,
			"kind":   outcome.Failure.Kind,
			"status": outcome.Failure.Status,
		}).Debug("xrpc request failed")
	}

	return outcome
}

func (e *Executor) call(ctx context.Context, req ports.XRPCRequest) domain.Outcome {
	resp, err := e.client.Do(ctx, req)
	if err != nil {
		return domain.Fail(classifyTransportError(err))
	}
	if failure := classifyResponse(resp); failure != nil {
		return domain.Fail(failure)
	}
	if !json.Valid(resp.Body) {
		return domain.Fail(domain.NewFailure(domain.KindInternal, "invalid JSON in %s response", req.NSID))
	}

	return domain.Success(json.RawMessage(resp.Body))
}
