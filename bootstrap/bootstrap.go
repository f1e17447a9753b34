// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hubward/quotaview/adapters/clock"
	"github.com/hubward/quotaview/adapters/hub"
	"github.com/hubward/quotaview/adapters/metrics"
	"github.com/hubward/quotaview/adapters/prometheus"
	"github.com/hubward/quotaview/adapters/random"
	"github.com/hubward/quotaview/adapters/sqlite"
	"github.com/hubward/quotaview/app"
	"github.com/hubward/quotaview/config"
	"github.com/hubward/quotaview/domain/usage"
	"github.com/hubward/quotaview/ports"
	"github.com/hubward/quotaview/web"
	promexport "github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	_ "github.com/hubward/quotaview/docs"
)

// Options configures application startup.
type Options struct {
	// ConfigPath is the YAML config file; when it does not exist the
	// configuration falls back to QUOTAVIEW_* environment variables.
	ConfigPath string

	// HotReload watches the config file and SIGHUP for live reloads.
	// Only meaningful when ConfigPath points at an existing file.
	HotReload bool
}

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Holder     *config.Holder
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector

	usageSwitch   *usageSwitch
	querier       ports.MetricsQuerier
	pruneInterval time.Duration
	janitorStop   chan struct{}
	janitorDone   chan struct{}
}

// New creates and initializes the application.
func New(opts Options) (*App, error) {
	var (
		cfg    *config.Config
		holder *config.Holder
		err    error
	)

	if opts.ConfigPath != "" {
		if _, statErr := os.Stat(opts.ConfigPath); statErr == nil {
			holder, err = config.NewHolder(opts.ConfigPath, zerolog.New(os.Stderr).With().Timestamp().Logger())
			if err != nil {
				return nil, err
			}
			cfg = holder.Get()
		}
	}
	if cfg == nil {
		cfg, err = config.LoadWithFallback(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
	}

	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("initializing quotaview")

	a := &App{
		Logger:        logger,
		Holder:        holder,
		pruneInterval: cfg.Session.PruneInterval,
		janitorStop:   make(chan struct{}),
		janitorDone:   make(chan struct{}),
	}

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	a.DB = db
	logger.Info().Str("dsn", cfg.Database.DSN).Msg("database initialized")

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		logger.Info().Str("path", cfg.Metrics.Path).Msg("prometheus metrics enabled")
	}

	if err := a.initServer(cfg); err != nil {
		db.Close()
		return nil, err
	}
	go a.sessionJanitor(a.pruneInterval)

	if holder != nil {
		a.wireReload(holder)
		if opts.HotReload {
			if err := holder.WatchFile(); err != nil {
				logger.Warn().Err(err).Msg("config file watch unavailable")
			}
		}
	}

	return a, nil
}

func (a *App) initServer(cfg *config.Config) error {
	realClock := clock.Real{}

	if cfg.Prometheus.URL != "" {
		a.querier = prometheus.NewClient(prometheus.ClientConfig{
			BaseURL: cfg.Prometheus.URL,
			Timeout: cfg.Prometheus.Timeout,
		})
	}
	if cfg.MockMode() {
		a.Logger.Warn().Msg("no prometheus namespace configured, serving mock usage data")
	}

	a.usageSwitch = &usageSwitch{}
	a.usageSwitch.set(a.buildUsageService(cfg))

	hubClient := hub.NewClient(hub.ClientConfig{
		APIURL:   cfg.Hub.APIURL,
		ClientID: "service-" + cfg.Hub.ServiceName,
		APIToken: cfg.Hub.APIToken,
	})

	sessions := sqlite.NewSessionStore(a.DB)

	webHandler, err := web.NewHandler(web.Deps{
		Usage:      a.usageSwitch,
		HubAuth:    hubClient,
		Sessions:   sessions,
		Clock:      realClock,
		Random:     random.Real{},
		Logger:     a.Logger,
		Metrics:    a.Metrics,
		Prefix:     cfg.Hub.ServicePrefix,
		PublicURL:  cfg.Hub.PublicURL,
		ClientID:   "service-" + cfg.Hub.ServiceName,
		CookieName: cfg.Session.CookieName,
		SessionTTL: cfg.Session.TTL,
		MockMode:   cfg.MockMode(),
		Docs:       cfg.Docs.Enabled,
	})
	if err != nil {
		return fmt.Errorf("create web handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	prefix := cfg.Hub.ServicePrefix
	mount := strings.TrimSuffix(prefix, "/")
	if mount == "" {
		mount = "/"
	}
	r.Mount(mount, webHandler.Router())
	if mount != "/" {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, prefix, http.StatusFound)
		})
	}

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promexport.Handler())
	}
	if cfg.Docs.Enabled {
		a.Logger.Info().Str("path", prefix+"swagger/").Msg("swagger ui enabled")
	}

	a.HTTPServer = &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	a.Logger.Info().Str("addr", cfg.ListenAddr()).Str("prefix", prefix).Msg("http server configured")
	return nil
}

// buildUsageService assembles the usage engine for the current config.
func (a *App) buildUsageService(cfg *config.Config) *app.UsageService {
	mock := app.NewMockGenerator(clock.Real{}, nil)
	return app.NewUsageService(a.querier, mock, app.UsageConfig{
		Namespace:   cfg.Prometheus.Namespace,
		QuotaMetric: cfg.Prometheus.QuotaMetric,
		UsageMetric: cfg.Prometheus.UsageMetric,
	}, a.Logger, a.Metrics)
}

// wireReload applies reloadable config fields on change.
func (a *App) wireReload(holder *config.Holder) {
	holder.OnChange(func(cfg *config.Config) {
		if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			zerolog.SetGlobalLevel(level)
		}

		// Namespace and metric names are reloadable; the backend URL is not.
		a.usageSwitch.set(a.buildUsageService(cfg))

		if a.Metrics != nil {
			a.Metrics.ConfigReloads.Inc()
		}
		a.Logger.Info().Msg("runtime configuration applied")
	})
}

// Run starts the HTTP server and blocks until shutdown. SIGHUP triggers a
// configuration reload; SIGINT and SIGTERM trigger a graceful stop.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case sig := <-quit:
			if sig == syscall.SIGHUP {
				a.reloadConfig()
				continue
			}
			a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
			return a.Shutdown()
		}
	}
}

func (a *App) reloadConfig() {
	if a.Holder == nil {
		a.Logger.Warn().Msg("SIGHUP received but no config file is loaded")
		return
	}
	if err := a.Holder.Reload(); err != nil {
		a.Logger.Error().Err(err).Msg("config reload failed, keeping previous config")
		if a.Metrics != nil {
			a.Metrics.ConfigReloadErrors.Inc()
		}
	}
}

// sessionJanitor periodically removes expired sessions.
func (a *App) sessionJanitor(interval time.Duration) {
	defer close(a.janitorDone)

	if interval <= 0 {
		interval = 10 * time.Minute
	}
	sessions := sqlite.NewSessionStore(a.DB)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := sessions.DeleteExpired(ctx, time.Now().UTC())
			cancel()
			if err != nil {
				a.Logger.Error().Err(err).Msg("session prune failed")
				continue
			}
			if n > 0 {
				a.Logger.Debug().Int64("count", n).Msg("expired sessions pruned")
				if a.Metrics != nil {
					a.Metrics.SessionsPruned.Add(float64(n))
				}
			}
		case <-a.janitorStop:
			return
		}
	}
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	close(a.janitorStop)
	<-a.janitorDone

	if a.Holder != nil {
		a.Holder.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.querier != nil {
		if err := a.querier.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("querier close error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// usageSwitch lets the usage engine be rebuilt on config reload while the
// web handler holds a stable reference.
type usageSwitch struct {
	mu sync.RWMutex
	p  ports.UsageProvider
}

func (s *usageSwitch) set(p ports.UsageProvider) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

func (s *usageSwitch) GetUsage(ctx context.Context, username string) (usage.Record, error) {
	s.mu.RLock()
	p := s.p
	s.mu.RUnlock()
	return p.GetUsage(ctx, username)
}

var _ ports.UsageProvider = (*usageSwitch)(nil)

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
