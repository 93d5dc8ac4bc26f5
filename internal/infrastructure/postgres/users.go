package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/client-auth-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code for a unique-constraint breach.
const uniqueViolation = "23505"

const userColumns = `user_id, username, first_name, last_name, email, contact_number,
	password_hash, email_confirmed, phone_confirmed, enable, created_at, updated_at`

// UserRepo provides typed Postgres operations for the users table.
type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user row. A unique-constraint violation on username or
// email is reported as domain.ErrConflict so two racing signups resolve to the
// same "already exists" outcome as the fast-path check.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	const q = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, q,
		u.UserID, u.Username, u.FirstName, u.LastName, u.Email, u.ContactNumber,
		u.PasswordHash, u.EmailConfirmed, u.PhoneConfirmed, u.Enable, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("username or email taken: %w", domain.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	return r.getBy(ctx, "user_id", userID)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepo) getBy(ctx context.Context, column, value string) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1 LIMIT 1`
	var u domain.User
	err := r.db.QueryRow(ctx, q, value).Scan(
		&u.UserID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.ContactNumber,
		&u.PasswordHash, &u.EmailConfirmed, &u.PhoneConfirmed, &u.Enable, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("query user by %s: %w", column, err)
	}
	return &u, nil
}

// ExistsByUsernameOrEmail reports whether any row shares the username OR the
// email. Used as the user-friendly pre-check before insert.
func (r *UserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, q, username, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check username/email: %w", err)
	}
	return exists, nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	const q = `UPDATE users SET password_hash = $1, updated_at = $2 WHERE user_id = $3`
	tag, err := r.db.Exec(ctx, q, hash, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *UserRepo) SetEmailConfirmed(ctx context.Context, userID string) error {
	return r.setFlag(ctx, "email_confirmed", userID)
}

func (r *UserRepo) SetPhoneConfirmed(ctx context.Context, userID string) error {
	return r.setFlag(ctx, "phone_confirmed", userID)
}

func (r *UserRepo) setFlag(ctx context.Context, column, userID string) error {
	q := `UPDATE users SET ` + column + ` = TRUE, updated_at = $1 WHERE user_id = $2`
	tag, err := r.db.Exec(ctx, q, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return nil
}
