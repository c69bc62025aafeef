package application

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bnema/bluesky-mcp/internal/domain"
	"github.com/bnema/bluesky-mcp/internal/ports"
)

type RequestExecutor interface {
	Execute(ctx context.Context, req ports.XRPCRequest) domain.Outcome
}

// SessionSource supplies the authenticated account used as the default actor.
type SessionSource interface {
	EnsureValid(ctx context.Context) (domain.Session, error)
}

// Dispatcher maps tool invocations onto XRPC calls. Every Dispatch call yields
// exactly one Outcome.
type Dispatcher struct {
	executor RequestExecutor
	sessions SessionSource
	metrics  ports.Metrics
	log      logrus.FieldLogger
	routes   []route
	byName   map[string]route
}

func NewDispatcher(executor RequestExecutor, sessions SessionSource, metrics ports.Metrics, log logrus.FieldLogger) *Dispatcher {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if log == nil {
		log = discardLogger()
	}

	all := routes()
	byName := make(map[string]route, len(all))
	for _, r := range all {
		byName[r.spec.Name] = r
	}

	return &Dispatcher{
		executor: executor,
		sessions: sessions,
		metrics:  metrics,
		log:      log,
		routes:   all,
		byName:   byName,
	}
}

// Catalog lists the tools in a stable order.
func (d *Dispatcher) Catalog() []domain.ToolSpec {
	specs := make([]domain.ToolSpec, 0, len(d.routes))
	for _, r := range d.routes {
		specs = append(specs, r.spec)
	}
	return specs
}

func (d *Dispatcher) Dispatch(ctx context.Context, req domain.ToolRequest) domain.Outcome {
	log := d.log.WithFields(logrus.Fields{"tool": req.Name, "call_id": uuid.NewString()})
	started := time.Now()

	outcome := d.dispatch(ctx, req, log)

	elapsed := time.Since(started)
	d.metrics.ObserveToolCall(req.Name, outcome.Kind(), elapsed)
	if outcome.OK() {
		log.WithField("elapsed", elapsed).Debug("tool call succeeded")
	} else {
		log.WithFields(logrus.Fields{
			"kind":    outcome.Failure.Kind,
			"status":  outcome.Failure.Status,
			"elapsed": elapsed,
		}).Info("tool call failed")
	}

	return outcome
}

func (d *Dispatcher) dispatch(ctx context.Context, req domain.ToolRequest, log logrus.FieldLogger) domain.Outcome {
	r, ok := d.byName[req.Name]
	if !ok {
		return domain.Fail(&domain.Failure{Kind: domain.KindUnknownTool, Detail: req.Name})
	}
	if failure := r.validate(req.Arguments); failure != nil {
		return domain.Fail(failure)
	}

	outcome := d.call(ctx, r, req.Arguments)
	if outcome.Kind() == domain.KindTokenRejected {
		log.Info("token rejected, retrying with a new session")
		outcome = d.call(ctx, r, req.Arguments)
	}

	return outcome
}

func (d *Dispatcher) call(ctx context.Context, r route, args map[string]any) domain.Outcome {
	var session domain.Session
	if r.actor && optionalString(args, "actor") == "" {
		current, err := d.sessions.EnsureValid(ctx)
		if err != nil {
			return domain.Fail(domain.AsFailure(err))
		}
		session = current
	}

	query, failure := r.params(args, session)
	if failure != nil {
		return domain.Fail(failure)
	}

	return d.executor.Execute(ctx, ports.XRPCRequest{
		Method: http.MethodGet,
		NSID:   r.nsid,
		Query:  query,
	})
}
