package repository

import (
	"context"
	"database/sql"
	"time"
)

// SessionRepository persists the per-user list of active session tokens.
// A token row existing is what makes a session live: removing the row is
// revocation, regardless of the token's own expiry.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Add appends a token to a user's session list. Multiple rows per user are
// expected; each represents one logged-in device.
func (r *SessionRepository) Add(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	query := `INSERT INTO sessions (user_id, token, expires_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, userID, token, expiresAt)
	return err
}

// Exists reports whether the exact token is still in the user's session list.
func (r *SessionRepository) Exists(ctx context.Context, userID int64, token string) (bool, error) {
	var one int
	query := `SELECT 1 FROM sessions WHERE user_id = ? AND token = ? LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, userID, token).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the matching token from a user's session list. Removing a
// token that is already gone is a no-op.
func (r *SessionRepository) Remove(ctx context.Context, userID int64, token string) error {
	query := `DELETE FROM sessions WHERE user_id = ? AND token = ?`
	_, err := r.db.ExecContext(ctx, query, userID, token)
	return err
}

// RemoveAllForUser clears a user's entire session list.
func (r *SessionRepository) RemoveAllForUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// RemoveExpired drops session rows whose tokens can no longer validate
// anyway. Called opportunistically; correctness never depends on it.
func (r *SessionRepository) RemoveExpired(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, time.Now())
	return err
}
