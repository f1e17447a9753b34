package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hubward/quotaview/domain/auth"
	"github.com/hubward/quotaview/ports"
)

// SessionStore implements ports.SessionStore using SQLite.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a new SQLite session store.
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// Create stores a new session.
func (s *SessionStore) Create(ctx context.Context, session auth.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, username, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`, session.ID, session.Username, session.ExpiresAt, session.CreatedAt)

	return err
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(ctx context.Context, id string) (auth.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, expires_at, created_at
		FROM sessions
		WHERE id = ?
	`, id)

	var sess auth.Session
	err := row.Scan(&sess.ID, &sess.Username, &sess.ExpiresAt, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Session{}, ports.ErrNotFound
	}
	if err != nil {
		return auth.Session{}, err
	}

	return sess, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE id = ?
	`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// DeleteExpired removes all sessions past their expiry.
func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE expires_at < ?
	`, now.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Ensure interface compliance.
var _ ports.SessionStore = (*SessionStore)(nil)
