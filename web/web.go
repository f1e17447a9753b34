// Package web provides the user-facing quota dashboard.
// All templates are embedded in the binary. Sessions are server-side;
// the browser only carries an opaque session id.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hubward/quotaview/adapters/metrics"
	"github.com/hubward/quotaview/domain/auth"
	"github.com/hubward/quotaview/ports"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed templates/*
var assets embed.FS

const stateCookieSuffix = "_oauth_state"

// Handler provides the dashboard endpoints.
type Handler struct {
	templates  map[string]*template.Template // One template per page
	usage      ports.UsageProvider
	hubAuth    ports.HubAuthenticator
	sessions   ports.SessionStore
	clock      ports.Clock
	random     ports.Random
	logger     zerolog.Logger
	metrics    *metrics.Collector // optional
	prefix     string             // hub service prefix, always "/..."-rooted with trailing slash
	publicURL  string             // externally visible hub base for browser redirects
	clientID   string             // OAuth client id, "service-<name>"
	cookieName string
	sessionTTL time.Duration
	mockMode   bool
	docs       bool
}

// Deps contains dependencies for the web handler.
type Deps struct {
	Usage      ports.UsageProvider
	HubAuth    ports.HubAuthenticator
	Sessions   ports.SessionStore
	Clock      ports.Clock
	Random     ports.Random
	Logger     zerolog.Logger
	Metrics    *metrics.Collector
	Prefix     string
	PublicURL  string
	ClientID   string
	CookieName string
	SessionTTL time.Duration
	MockMode   bool
	Docs       bool
}

// NewHandler creates a new dashboard handler.
func NewHandler(deps Deps) (*Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	prefix := deps.Prefix
	if prefix == "" {
		prefix = "/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &Handler{
		templates:  tmpl,
		usage:      deps.Usage,
		hubAuth:    deps.HubAuth,
		sessions:   deps.Sessions,
		clock:      deps.Clock,
		random:     deps.Random,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		prefix:     prefix,
		publicURL:  strings.TrimSuffix(deps.PublicURL, "/"),
		clientID:   deps.ClientID,
		cookieName: deps.CookieName,
		sessionTTL: deps.SessionTTL,
		mockMode:   deps.MockMode,
		docs:       deps.Docs,
	}, nil
}

// Router returns the dashboard router, to be mounted at the service prefix.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(h.instrument)

	// Reachable without a session
	r.Get("/healthz", h.Healthz)
	r.Get("/oauth_callback", h.OAuthCallback)
	r.Get("/logout", h.Logout)

	if h.docs {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL(h.prefix+"swagger/doc.json"),
		))
	}

	// Everything else requires a hub identity
	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Get("/", h.UsagePage)
		r.Get("/api/usage", h.UsageJSON)
	})

	return r
}

// AuthMiddleware resolves the session cookie to a hub user. Requests without
// a valid session are sent through the hub OAuth flow.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(h.cookieName)
		if err != nil {
			h.startOAuth(w, r)
			return
		}

		session, err := h.sessions.Get(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, ports.ErrNotFound) {
				h.logger.Error().Err(err).Msg("session lookup failed")
			}
			h.startOAuth(w, r)
			return
		}

		if session.IsExpired(h.clock.Now()) {
			_ = h.sessions.Delete(r.Context(), session.ID)
			h.startOAuth(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

// newSessionID returns a fresh opaque session identifier.
func (h *Handler) newSessionID() string {
	return uuid.New().String()
}

// createSession persists a session for username and sets the cookie.
func (h *Handler) createSession(w http.ResponseWriter, r *http.Request, username string) error {
	session := auth.NewSession(h.newSessionID(), username, h.clock.Now(), h.sessionTTL)
	if err := h.sessions.Create(r.Context(), session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    session.ID,
		Path:     h.prefix,
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// instrument records request counts and latency per route.
func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := r.URL.Path
		h.metrics.RequestsTotal.WithLabelValues(path, fmt.Sprintf("%d", sw.status)).Inc()
		h.metrics.RequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Helper to parse all templates with the shared layout
func parseTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"printfGB": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
		"formatTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 15:04 MST")
		},
	}

	templates := make(map[string]*template.Template)

	layoutContent, err := fs.ReadFile(assets, "templates/layouts/base.html")
	if err != nil {
		return nil, err
	}

	pages, err := fs.Glob(assets, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		name := strings.TrimPrefix(page, "templates/pages/")
		name = strings.TrimSuffix(name, ".html")

		pageContent, err := fs.ReadFile(assets, page)
		if err != nil {
			return nil, err
		}

		tmpl := template.New(name).Funcs(funcs)
		if _, err := tmpl.Parse(string(layoutContent)); err != nil {
			return nil, fmt.Errorf("parse layout for %s: %w", name, err)
		}
		if _, err := tmpl.Parse(string(pageContent)); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}

		templates[name] = tmpl
	}

	return templates, nil
}

func (h *Handler) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	tmpl, ok := h.templates[name]
	if !ok {
		h.logger.Error().Str("template", name).Msg("template not found")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("template render error")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
