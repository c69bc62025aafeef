package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	configtoml "github.com/bnema/bluesky-mcp/internal/adapters/config/toml"
	credentialsadapter "github.com/bnema/bluesky-mcp/internal/adapters/credentials"
	metricsadapter "github.com/bnema/bluesky-mcp/internal/adapters/metrics"
	catalogrender "github.com/bnema/bluesky-mcp/internal/adapters/render/catalog"
	outcomerender "github.com/bnema/bluesky-mcp/internal/adapters/render/outcome"
	chainstore "github.com/bnema/bluesky-mcp/internal/adapters/secrets/chain"
	"github.com/bnema/bluesky-mcp/internal/adapters/xrpc"
	"github.com/bnema/bluesky-mcp/internal/application"
	"github.com/bnema/bluesky-mcp/internal/domain"
	"github.com/bnema/bluesky-mcp/internal/ports"
	"github.com/bnema/bluesky-mcp/internal/version"
)

type app struct {
	configPath string

	settings        application.Settings
	log             *logrus.Logger
	secretStore     ports.SecretStore
	credentials     ports.CredentialSource
	sessions        *application.SessionManager
	dispatcher      *application.Dispatcher
	metrics         *metricsadapter.Metrics
	renderer        outcomerender.Renderer
	catalogRenderer func([]domain.ToolSpec) (string, error)
}

// wire loads settings and builds the object graph. Logs go to logOutput so
// stdout stays reserved for MCP frames and command output.
func (a *app) wire(logOutput io.Writer) error {
	settings, err := configtoml.Load(viper.New(), a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(settings, logOutput)
	if err != nil {
		return err
	}

	configDir, err := configtoml.ConfigDir()
	if err != nil {
		return err
	}

	secretStore, err := chainstore.NewPassFirstWithFileFallback(filepath.Join(configDir, "secrets"), log)
	if err != nil {
		return fmt.Errorf("wire secret store chain: %w", err)
	}

	metrics := metricsadapter.New()
	client := xrpc.Client{
		BaseURL:        settings.ServiceURL,
		HTTPClient:     http.DefaultClient,
		RequestTimeout: settings.RequestTimeout,
		Limiter:        xrpc.NewLimiter(settings.RequestsPerSecond),
		UserAgent:      "bsky-mcp/" + version.Version,
	}
	credentials := credentialsadapter.NewSource(secretStore)

	sessions := application.NewSessionManager(credentials, client, settings.Session,
		application.WithSessionMetrics(metrics),
		application.WithSessionLogger(log.WithField("component", "session")),
	)
	executor := application.NewExecutor(sessions, client, metrics, log.WithField("component", "executor"))

	a.settings = settings
	a.log = log
	a.secretStore = secretStore
	a.credentials = credentials
	a.sessions = sessions
	a.dispatcher = application.NewDispatcher(executor, sessions, metrics, log.WithField("component", "dispatcher"))
	a.metrics = metrics
	a.renderer = outcomerender.Renderer{RequestTimeout: settings.RequestTimeout}
	a.catalogRenderer = catalogrender.Render

	return nil
}

func newLogger(settings application.Settings, output io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(settings.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	log := logrus.New()
	log.SetOutput(output)
	log.SetLevel(level)
	if settings.LogFormat == application.LogFormatJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	return log, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
