package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/client-auth-api/internal/domain"
	"github.com/client-auth-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel results of the signup flow. Handlers translate these into the
// user-facing response messages; anything else is an internal error.
var (
	ErrCaptchaRejected  = fmt.Errorf("recaptcha token missing or rejected: %w", domain.ErrCaptcha)
	ErrMissingFields    = fmt.Errorf("one or more required fields empty: %w", domain.ErrBadRequest)
	ErrPasswordMismatch = fmt.Errorf("password confirmation mismatch: %w", domain.ErrBadRequest)
	ErrAlreadyExists    = fmt.Errorf("username or email taken: %w", domain.ErrConflict)
	// ErrCreateFailed marks an insertion that failed after every check
	// passed. The underlying database error is logged, never surfaced.
	ErrCreateFailed = errors.New("could not create account")
)

type Service interface {
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

type sessionStore interface {
	DisableByUser(ctx context.Context, userID string) error
}

type captchaVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

type service struct {
	repo        userStore
	sessionRepo sessionStore
	verifier    captchaVerifier
}

type ServiceDeps struct {
	UserRepo    userStore
	SessionRepo sessionStore
	Verifier    captchaVerifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:        deps.UserRepo,
		sessionRepo: deps.SessionRepo,
		verifier:    deps.Verifier,
	}
}

// Signup runs the account-creation flow. Each check short-circuits with a
// sentinel error and no side effects:
//
//	captcha gate -> field presence -> confirmation match -> uniqueness
//	pre-check -> bcrypt hash -> insert.
//
// The uniqueness pre-check and the insert are not one atomic step; the unique
// constraints on the users table are the authoritative guard, and a
// constraint violation at insert time reports the same ErrAlreadyExists as
// the pre-check.
func (s *service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	if err := s.checkCaptcha(ctx, req.RecaptchaToken); err != nil {
		return nil, err
	}

	// Text fields are trimmed before the presence check; the password and
	// its confirmation are taken as typed.
	username := strings.TrimSpace(req.Username)
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	email := strings.TrimSpace(req.Email)
	contactNumber := strings.TrimSpace(req.ContactNumber)

	if username == "" || firstName == "" || lastName == "" || email == "" ||
		contactNumber == "" || req.Password == "" || req.ConfirmPassword == "" {
		return nil, ErrMissingFields
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &domain.User{
		UserID:        id.New(),
		Username:      username,
		FirstName:     firstName,
		LastName:      lastName,
		Email:         email,
		ContactNumber: contactNumber,
		PasswordHash:  string(hash),
		Enable:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// Two concurrent signups can both pass the pre-check; the loser
		// of the insert race gets the same answer as the pre-check.
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrAlreadyExists
		}
		slog.Error("user insert failed", "err", err)
		return nil, ErrCreateFailed
	}
	return u, nil
}

func (s *service) checkCaptcha(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		slog.Warn("signup rejected: recaptcha token missing")
		return ErrCaptchaRejected
	}
	ok, err := s.verifier.Verify(ctx, token)
	if err != nil {
		slog.Warn("signup rejected: recaptcha verification error", "err", err)
		return ErrCaptchaRejected
	}
	if !ok {
		slog.Warn("signup rejected: recaptcha token not accepted")
		return ErrCaptchaRejected
	}
	return nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

// ChangePassword re-hashes and stores a new password after checking the
// current one, then revokes all existing sessions of the user.
func (s *service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return err
	}
	return s.sessionRepo.DisableByUser(ctx, userID)
}
