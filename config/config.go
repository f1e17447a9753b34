// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
	Hub        HubConfig        `yaml:"hub"`
	Session    SessionConfig    `yaml:"session"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Docs       DocsConfig       `yaml:"docs"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// PrometheusConfig configures the metrics backend that holds usage data.
// An empty namespace switches the service to mock mode: no backend is
// contacted and fabricated snapshots are served instead.
type PrometheusConfig struct {
	URL         string        `yaml:"url"`
	Namespace   string        `yaml:"namespace"`
	Timeout     time.Duration `yaml:"timeout"`
	QuotaMetric string        `yaml:"quota_metric,omitempty"`
	UsageMetric string        `yaml:"usage_metric,omitempty"`
}

// HubConfig configures the JupyterHub this service authenticates against.
type HubConfig struct {
	// APIURL is the hub's internal API base, e.g. http://hub:8081/hub/api.
	APIURL string `yaml:"api_url"`
	// APIToken is the service token issued by the hub.
	APIToken string `yaml:"api_token"`
	// ServiceName is the name this service is registered under; the OAuth
	// client id is derived from it as "service-<name>".
	ServiceName string `yaml:"service_name"`
	// ServicePrefix is the URL prefix the hub proxies to this service.
	ServicePrefix string `yaml:"service_prefix"`
	// PublicURL is the externally visible hub base used for browser redirects.
	PublicURL string `yaml:"public_url"`
}

// SessionConfig configures browser sessions.
type SessionConfig struct {
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
	// PruneInterval is how often expired sessions are removed.
	PruneInterval time.Duration `yaml:"prune_interval"`
}

// DatabaseConfig configures the session database.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures the service's own Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DocsConfig configures Swagger documentation.
type DocsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// This is useful for container deployments where no config file is needed.
//
// Environment variables:
//
//	QUOTAVIEW_HUB_API_URL        - Hub API base URL (required)
//	QUOTAVIEW_HUB_API_TOKEN      - Hub service API token (required)
//	QUOTAVIEW_HUB_SERVICE_NAME   - Registered service name (default: quotaview)
//	QUOTAVIEW_HUB_SERVICE_PREFIX - Proxied URL prefix (default: /services/quotaview/)
//	QUOTAVIEW_PROMETHEUS_URL     - Usage metrics backend URL
//	QUOTAVIEW_PROMETHEUS_NAMESPACE - Reporting namespace (empty = mock mode)
//	QUOTAVIEW_DATABASE_DSN       - Session database path (default: quotaview.db)
//	QUOTAVIEW_SERVER_HOST        - Server host (default: 0.0.0.0)
//	QUOTAVIEW_SERVER_PORT        - Server port (default: 8080)
//	QUOTAVIEW_LOG_LEVEL          - Log level (default: info)
//	QUOTAVIEW_LOG_FORMAT         - Log format: json or console (default: json)
//	QUOTAVIEW_METRICS_ENABLED    - Enable /metrics endpoint (default: true)
//	QUOTAVIEW_DOCS_ENABLED       - Enable Swagger UI (default: true)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment variables.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	if HasEnvConfig() {
		return LoadFromEnv()
	}

	return nil, fmt.Errorf("no configuration found: provide config file or set QUOTAVIEW_HUB_API_TOKEN")
}

// HasEnvConfig returns true if essential environment variables are set.
func HasEnvConfig() bool {
	return os.Getenv("QUOTAVIEW_HUB_API_TOKEN") != ""
}

// applyEnvOverrides applies QUOTAVIEW_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Server configuration
	if v := os.Getenv("QUOTAVIEW_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("QUOTAVIEW_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("QUOTAVIEW_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("QUOTAVIEW_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// Prometheus backend configuration
	if v := os.Getenv("QUOTAVIEW_PROMETHEUS_URL"); v != "" {
		cfg.Prometheus.URL = v
	}
	if v, ok := os.LookupEnv("QUOTAVIEW_PROMETHEUS_NAMESPACE"); ok {
		// Explicitly settable to "" to force mock mode.
		cfg.Prometheus.Namespace = v
	}
	if v := os.Getenv("QUOTAVIEW_PROMETHEUS_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Prometheus.Timeout = d
		}
	}
	if v := os.Getenv("QUOTAVIEW_PROMETHEUS_QUOTA_METRIC"); v != "" {
		cfg.Prometheus.QuotaMetric = v
	}
	if v := os.Getenv("QUOTAVIEW_PROMETHEUS_USAGE_METRIC"); v != "" {
		cfg.Prometheus.UsageMetric = v
	}

	// Hub configuration
	if v := os.Getenv("QUOTAVIEW_HUB_API_URL"); v != "" {
		cfg.Hub.APIURL = v
	}
	if v := os.Getenv("QUOTAVIEW_HUB_API_TOKEN"); v != "" {
		cfg.Hub.APIToken = v
	}
	if v := os.Getenv("QUOTAVIEW_HUB_SERVICE_NAME"); v != "" {
		cfg.Hub.ServiceName = v
	}
	if v := os.Getenv("QUOTAVIEW_HUB_SERVICE_PREFIX"); v != "" {
		cfg.Hub.ServicePrefix = v
	}
	if v := os.Getenv("QUOTAVIEW_HUB_PUBLIC_URL"); v != "" {
		cfg.Hub.PublicURL = v
	}

	// Session configuration
	if v := os.Getenv("QUOTAVIEW_SESSION_COOKIE_NAME"); v != "" {
		cfg.Session.CookieName = v
	}
	if v := os.Getenv("QUOTAVIEW_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.TTL = d
		}
	}

	// Database configuration
	if v := os.Getenv("QUOTAVIEW_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// Logging configuration
	if v := os.Getenv("QUOTAVIEW_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("QUOTAVIEW_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("QUOTAVIEW_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("QUOTAVIEW_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}

	// Docs configuration
	if v := os.Getenv("QUOTAVIEW_DOCS_ENABLED"); v != "" {
		cfg.Docs.Enabled = parseBool(v)
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Prometheus.Timeout == 0 {
		cfg.Prometheus.Timeout = 10 * time.Second
	}

	if cfg.Hub.ServiceName == "" {
		cfg.Hub.ServiceName = "quotaview"
	}
	if cfg.Hub.ServicePrefix == "" {
		cfg.Hub.ServicePrefix = "/services/" + cfg.Hub.ServiceName + "/"
	}
	if !strings.HasSuffix(cfg.Hub.ServicePrefix, "/") {
		cfg.Hub.ServicePrefix += "/"
	}

	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "quotaview_session"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 8 * time.Hour
	}
	if cfg.Session.PruneInterval == 0 {
		cfg.Session.PruneInterval = 10 * time.Minute
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "quotaview.db"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	if cfg.Hub.APIURL == "" {
		return fmt.Errorf("hub.api_url is required")
	}
	if cfg.Hub.APIToken == "" {
		return fmt.Errorf("hub.api_token is required")
	}
	if !strings.HasPrefix(cfg.Hub.ServicePrefix, "/") {
		return fmt.Errorf("hub.service_prefix must start with '/', got %q", cfg.Hub.ServicePrefix)
	}

	// Mock mode (empty namespace) needs no backend; a configured namespace does.
	if cfg.Prometheus.Namespace != "" && cfg.Prometheus.URL == "" {
		return fmt.Errorf("prometheus.url is required when prometheus.namespace is set")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	return nil
}

// MockMode reports whether the service serves fabricated usage data.
func (c *Config) MockMode() bool {
	return c.Prometheus.Namespace == ""
}

// ListenAddr returns the host:port the server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
