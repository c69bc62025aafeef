package toml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/bnema/bluesky-mcp/internal/application"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".config/bsky-mcp"
	envPrefix  = "BSKY_MCP"

	fileMode        = 0o600
	dirMode         = 0o700
	tempFilePattern = ".config-*.toml.tmp"
)

const (
	KeyVersion           = "version"
	KeyServiceURL        = "xrpc.service_url"
	KeyRequestTimeout    = "xrpc.request_timeout"
	KeyRequestsPerSecond = "xrpc.requests_per_second"
	KeySessionFreshness  = "session.freshness"
	KeyLoginAttempts     = "session.login_attempts"
	KeyLoginRetryDelay   = "session.login_retry_delay"
	KeyLogLevel          = "log.level"
	KeyLogFormat         = "log.format"
	KeyMetricsListen     = "metrics.listen"
)

var ErrConfigExists = errors.New("config file already exists")

// ConfigDir is the directory holding config.toml and the file secret store.
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, configDir), nil
}

func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configName+"."+configType), nil
}

// Load merges defaults, the config file and BSKY_MCP_* environment variables.
// An explicit path must exist; the default location may be absent.
func Load(cfg *viper.Viper, path string) (application.Settings, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	if path != "" {
		cfg.SetConfigFile(path)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return application.Settings{}, err
		}
		cfg.SetConfigName(configName)
		cfg.SetConfigType(configType)
		cfg.AddConfigPath(dir)
	}

	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()
	setDefaults(cfg, application.DefaultSettings())

	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return application.Settings{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := validateVersion(cfg.GetInt(KeyVersion)); err != nil {
		return application.Settings{}, err
	}

	settings := application.Settings{
		ServiceURL:        strings.TrimSpace(cfg.GetString(KeyServiceURL)),
		RequestTimeout:    cfg.GetDuration(KeyRequestTimeout),
		RequestsPerSecond: cfg.GetFloat64(KeyRequestsPerSecond),
		Session: application.SessionPolicy{
			Freshness:       cfg.GetDuration(KeySessionFreshness),
			LoginAttempts:   cfg.GetInt(KeyLoginAttempts),
			LoginRetryDelay: cfg.GetDuration(KeyLoginRetryDelay),
		},
		LogLevel:    cfg.GetString(KeyLogLevel),
		LogFormat:   cfg.GetString(KeyLogFormat),
		MetricsAddr: cfg.GetString(KeyMetricsListen),
	}
	if err := settings.Validate(); err != nil {
		return application.Settings{}, fmt.Errorf("invalid config: %w", err)
	}

	return settings, nil
}

func setDefaults(cfg *viper.Viper, defaults application.Settings) {
	cfg.SetDefault(KeyVersion, currentSchemaVersion)
	cfg.SetDefault(KeyServiceURL, defaults.ServiceURL)
	cfg.SetDefault(KeyRequestTimeout, defaults.RequestTimeout)
	cfg.SetDefault(KeyRequestsPerSecond, defaults.RequestsPerSecond)
	cfg.SetDefault(KeySessionFreshness, defaults.Session.Freshness)
	cfg.SetDefault(KeyLoginAttempts, defaults.Session.LoginAttempts)
	cfg.SetDefault(KeyLoginRetryDelay, defaults.Session.LoginRetryDelay)
	cfg.SetDefault(KeyLogLevel, defaults.LogLevel)
	cfg.SetDefault(KeyLogFormat, defaults.LogFormat)
	cfg.SetDefault(KeyMetricsListen, defaults.MetricsAddr)
}

// Encode renders settings in the config file format.
func Encode(settings application.Settings) ([]byte, error) {
	data, err := toml.Marshal(toSchema(settings))
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

// WriteFile atomically writes settings to path. An existing file is only
// replaced when overwrite is set.
func WriteFile(path string, settings application.Settings, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	data, err := Encode(settings)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tempFile.Chmod(fileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	cleanup = false

	return nil
}
