package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bnema/bluesky-mcp/internal/domain"
	"github.com/bnema/bluesky-mcp/internal/ports"
)

const (
	namespace = "bsky_mcp"
	okLabel   = "ok"
)

var durationBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// Metrics records login, XRPC request and tool call outcomes on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	LoginAttempts   *prometheus.CounterVec
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ToolCallsTotal  *prometheus.CounterVec
	ToolDuration    *prometheus.HistogramVec
}

var _ ports.Metrics = (*Metrics)(nil)

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "login_attempts_total",
				Help:      "createSession attempts by result",
			},
			[]string{"result"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "xrpc_requests_total",
				Help:      "Authenticated XRPC requests by method and result",
			},
			[]string{"nsid", "result"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "xrpc_request_duration_seconds",
				Help:      "Duration of authenticated XRPC requests",
				Buckets:   durationBuckets,
			},
			[]string{"nsid"},
		),
		ToolCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Tool invocations by tool and result",
			},
			[]string{"tool", "result"},
		),
		ToolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_call_duration_seconds",
				Help:      "Duration of tool invocations including retries",
				Buckets:   durationBuckets,
			},
			[]string{"tool"},
		),
	}
}

func (m *Metrics) ObserveLogin(kind domain.ErrorKind) {
	m.LoginAttempts.WithLabelValues(result(kind)).Inc()
}

func (m *Metrics) ObserveRequest(nsid string, kind domain.ErrorKind, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(nsid, result(kind)).Inc()
	m.RequestDuration.WithLabelValues(nsid).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveToolCall(tool string, kind domain.ErrorKind, elapsed time.Duration) {
	// Unknown names come from the caller; keep them out of the label space.
	if kind == domain.KindUnknownTool {
		tool = "unknown"
	}
	m.ToolCallsTotal.WithLabelValues(tool, result(kind)).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is canceled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen for metrics: %w", err)
	}
	return m.serve(ctx, listener)
}

func (m *Metrics) serve(ctx context.Context, listener net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan error, 1)
	go func() {
		done <- server.Serve(listener)
	}()

	select {
	case err := <-done:
		return fmt.Errorf("serve metrics: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	if err := <-done; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}
	return nil
}

func result(kind domain.ErrorKind) string {
	if kind == "" {
		return okLabel
	}
	return string(kind)
}
