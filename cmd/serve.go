package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	mcpadapter "github.com/bnema/bluesky-mcp/internal/adapters/mcp"
	"github.com/bnema/bluesky-mcp/internal/version"
)

func newServeCmd(app *app) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Bluesky tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("metrics-addr") {
				app.settings.MetricsAddr = metricsAddr
			}
			return runServe(cmd.Context(), app)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address (overrides metrics.listen)")

	return cmd
}

func runServe(ctx context.Context, app *app) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Missing credentials abort before the host sees a server that cannot answer.
	if _, err := app.credentials.Resolve(ctx); err != nil {
		app.log.WithError(err).Error("cannot start without Bluesky credentials")
		return fmt.Errorf("serve: %w", err)
	}

	server := mcpadapter.NewServer(app.dispatcher, app.renderer, version.Version, app.log.WithField("component", "mcp"))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		app.log.WithField("tools", len(app.dispatcher.Catalog())).Info("serving MCP over stdio")
		return mcpadapter.Serve(gctx, server)
	})

	if addr := app.settings.MetricsAddr; addr != "" {
		g.Go(func() error {
			app.log.WithField("addr", addr).Info("serving metrics")
			return app.metrics.Serve(gctx, addr)
		})
	}

	return g.Wait()
}
