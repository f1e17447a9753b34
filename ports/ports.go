// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/hubward/quotaview/adapters/prometheus"
	"github.com/hubward/quotaview/domain/auth"
	"github.com/hubward/quotaview/domain/usage"
)

// ErrNotFound is returned by stores when an entity does not exist.
var ErrNotFound = errors.New("not found")

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// Random abstracts randomness for testability.
type Random interface {
	// Bytes generates n random bytes.
	Bytes(n int) ([]byte, error)
	// String generates a random string of n characters.
	String(n int) (string, error)
}

// -----------------------------------------------------------------------------
// Metrics Backend Ports
// -----------------------------------------------------------------------------

// MetricsQuerier executes instant queries against a Prometheus-compatible API.
// Implementations must be safe for concurrent use: the usage engine fans out
// three queries per snapshot over a single querier.
type MetricsQuerier interface {
	// Query executes one instant query and returns the decoded response body.
	Query(ctx context.Context, query string) (prometheus.Response, error)

	// Close releases the underlying connection pool.
	Close() error
}

// -----------------------------------------------------------------------------
// Identity Ports
// -----------------------------------------------------------------------------

// HubAuthenticator resolves a hub user from an OAuth authorization code.
type HubAuthenticator interface {
	// ExchangeCode trades an authorization code for an access token.
	ExchangeCode(ctx context.Context, code, redirectURI string) (string, error)

	// CurrentUser returns the user owning the access token.
	CurrentUser(ctx context.Context, accessToken string) (auth.HubUser, error)
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// SessionStore persists browser sessions.
type SessionStore interface {
	// Create stores a new session.
	Create(ctx context.Context, s auth.Session) error

	// Get retrieves a session by ID. Returns ErrNotFound when absent.
	Get(ctx context.Context, id string) (auth.Session, error)

	// Delete removes a session. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes sessions past their expiry, returning the count.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// -----------------------------------------------------------------------------
// Usage Ports
// -----------------------------------------------------------------------------

// UsageProvider produces one usage snapshot per call for a username.
// The returned error, when non-nil, is one of the usage sentinel errors;
// transport internals never escape through this interface.
type UsageProvider interface {
	GetUsage(ctx context.Context, username string) (usage.Record, error)
}
