package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ferntree/marquee/internal/shared"
)

// TokenRepository persists the single credential token that survives a full
// restart of the client. At most one logical row ever exists; everything
// else about the identity is re-derived from the service on startup.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new TokenRepository with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save stores the token, replacing any previously stored one.
func (r *TokenRepository) Save(token string) error {
	if token == "" {
		return fmt.Errorf("%w: refusing to persist an empty token", shared.ErrInvalidArgument)
	}

	query := `
		INSERT INTO tokens (id, access_token, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET access_token = excluded.access_token, saved_at = excluded.saved_at
	`

	if _, err := r.db.Exec(query, token, time.Now()); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// Load returns the stored token, or [shared.ErrNoToken] when none exists.
func (r *TokenRepository) Load() (string, error) {
	var token string
	err := r.db.QueryRow("SELECT access_token FROM tokens WHERE id = 1").Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", shared.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}

	return token, nil
}

// Clear removes the stored token. Idempotent.
func (r *TokenRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM tokens WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
