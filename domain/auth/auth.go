// Package auth provides authentication value types and pure validation
// functions. This package has NO dependencies on I/O or external packages.
package auth

import "time"

// Session represents a logged-in browser session (immutable value type).
type Session struct {
	ID        string
	Username  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewSession creates a session for a username. This is a PURE function;
// the caller supplies the ID and the current time.
func NewSession(id, username string, now time.Time, ttl time.Duration) Session {
	now = now.UTC()
	return Session{
		ID:        id,
		Username:  username,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// IsExpired returns true if the session has expired at the given instant.
func (s Session) IsExpired(now time.Time) bool {
	return now.UTC().After(s.ExpiresAt)
}

// HubUser is the identity the hub reports for an access token.
type HubUser struct {
	Name  string
	Admin bool
}
