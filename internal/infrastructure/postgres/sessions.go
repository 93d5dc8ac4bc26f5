package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/client-auth-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `session_id, user_id, enable, refresh_token, refresh_expires_at,
	created_at, updated_at`

// SessionRepo provides typed Postgres operations for the sessions table.
type SessionRepo struct {
	db *pgxpool.Pool
}

func NewSessionRepo(db *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	const q = `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, q,
		s.SessionID, s.UserID, s.Enable, s.RefreshToken, s.RefreshExpiresAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	return r.getBy(ctx, "session_id", sessionID)
}

func (r *SessionRepo) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	return r.getBy(ctx, "refresh_token", token)
}

func (r *SessionRepo) getBy(ctx context.Context, column, value string) (*domain.Session, error) {
	q := `SELECT ` + sessionColumns + ` FROM sessions WHERE ` + column + ` = $1 LIMIT 1`
	var s domain.Session
	err := r.db.QueryRow(ctx, q, value).Scan(
		&s.SessionID, &s.UserID, &s.Enable, &s.RefreshToken, &s.RefreshExpiresAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("query session by %s: %w", column, err)
	}
	return &s, nil
}

// RotateRefreshToken swaps in a new refresh token and expiry for the session.
func (r *SessionRepo) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	const q = `
		UPDATE sessions SET refresh_token = $1, refresh_expires_at = $2, updated_at = $3
		WHERE session_id = $4 AND enable
	`
	tag, err := r.db.Exec(ctx, q, newToken, newExpiry, time.Now().UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	return nil
}

// Disable marks a single session as logged out.
func (r *SessionRepo) Disable(ctx context.Context, sessionID string) error {
	const q = `UPDATE sessions SET enable = FALSE, updated_at = $1 WHERE session_id = $2`
	if _, err := r.db.Exec(ctx, q, time.Now().UTC(), sessionID); err != nil {
		return fmt.Errorf("disable session: %w", err)
	}
	return nil
}

// DisableByUser revokes every session of a user, e.g. after a password change.
func (r *SessionRepo) DisableByUser(ctx context.Context, userID string) error {
	const q = `UPDATE sessions SET enable = FALSE, updated_at = $1 WHERE user_id = $2`
	if _, err := r.db.Exec(ctx, q, time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("disable sessions for user: %w", err)
	}
	return nil
}
