package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/client-auth-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VerificationRepo provides typed Postgres operations for the
// user_verifications table.
type VerificationRepo struct {
	db *pgxpool.Pool
}

func NewVerificationRepo(db *pgxpool.Pool) *VerificationRepo {
	return &VerificationRepo{db: db}
}

// Put stores a verification code, replacing any previous code of the same
// type for the user. Re-requesting a code must invalidate the old one.
func (r *VerificationRepo) Put(ctx context.Context, v *domain.UserVerification) error {
	const q = `
		INSERT INTO user_verifications (user_id, type, code, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, type)
		DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at
	`
	if _, err := r.db.Exec(ctx, q, v.UserID, v.Type, v.Code, v.ExpiresAt); err != nil {
		return fmt.Errorf("store verification: %w", err)
	}
	return nil
}

func (r *VerificationRepo) Get(ctx context.Context, userID, verType string) (*domain.UserVerification, error) {
	const q = `
		SELECT user_id, type, code, expires_at FROM user_verifications
		WHERE user_id = $1 AND type = $2
	`
	var v domain.UserVerification
	err := r.db.QueryRow(ctx, q, userID, verType).Scan(&v.UserID, &v.Type, &v.Code, &v.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("query verification: %w", err)
	}
	return &v, nil
}

// Delete removes a consumed or superseded verification code.
func (r *VerificationRepo) Delete(ctx context.Context, userID, verType string) error {
	const q = `DELETE FROM user_verifications WHERE user_id = $1 AND type = $2`
	if _, err := r.db.Exec(ctx, q, userID, verType); err != nil {
		return fmt.Errorf("delete verification: %w", err)
	}
	return nil
}
