package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/client-auth-api/internal/domain"
	"github.com/client-auth-api/internal/pkg/id"
	pkgtoken "github.com/client-auth-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel results of the login flow. An unknown identifier and a wrong
// password both surface as ErrInvalidCredentials so the response never
// reveals whether an account exists.
var (
	ErrCaptchaRejected    = fmt.Errorf("recaptcha token missing or rejected: %w", domain.ErrCaptcha)
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	ErrAccountDisabled    = fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
)

// LoginRequest is the JSON body of POST /v1/sessions/login. The login_id may
// be a username or an email address.
type LoginRequest struct {
	LoginID        string `json:"login_id" validate:"required"`
	Password       string `json:"login_password" validate:"required"`
	RecaptchaToken string `json:"recaptcha_token"`
}

type LoginResult struct {
	Bearer       string
	RefreshToken string
	Session      *domain.Session
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
	Refresh(ctx context.Context, refreshToken string) (bearer, newRefreshToken string, err error)
	Issue(ctx context.Context, u *domain.User) (*LoginResult, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type sessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
	Disable(ctx context.Context, sessionID string) error
}

type captchaVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

type jwtSigner interface {
	Sign(userID, sessionID string) (string, error)
}

type service struct {
	sessionRepo     sessionStore
	userRepo        userStore
	verifier        captchaVerifier
	jwtProvider     jwtSigner
	refreshTokenDur time.Duration
}

type ServiceDeps struct {
	SessionRepo     sessionStore
	UserRepo        userStore
	Verifier        captchaVerifier
	JWTProvider     jwtSigner
	RefreshTokenDur time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		sessionRepo:     deps.SessionRepo,
		userRepo:        deps.UserRepo,
		verifier:        deps.Verifier,
		jwtProvider:     deps.JWTProvider,
		refreshTokenDur: deps.RefreshTokenDur,
	}
}

// Login gates on the CAPTCHA first, then authenticates. The disabled-account
// check runs only after the password matched, so a probe with a wrong
// password cannot distinguish missing, disabled, and active accounts.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if strings.TrimSpace(req.RecaptchaToken) == "" {
		slog.Warn("login rejected: recaptcha token missing")
		return nil, ErrCaptchaRejected
	}
	ok, err := s.verifier.Verify(ctx, req.RecaptchaToken)
	if err != nil || !ok {
		slog.Warn("login rejected: recaptcha verification failed", "err", err)
		return nil, ErrCaptchaRejected
	}

	loginID := strings.TrimSpace(req.LoginID)
	u, err := s.userRepo.GetByUsername(ctx, loginID)
	if err != nil {
		u, err = s.userRepo.GetByEmail(ctx, loginID)
		if err != nil {
			return nil, ErrInvalidCredentials
		}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Enable {
		return nil, ErrAccountDisabled
	}
	return s.Issue(ctx, u)
}

// Issue creates a session row and signs a bearer token for an already
// authenticated user (login, or OTP-validated password recovery).
func (s *service) Issue(ctx context.Context, u *domain.User) (*LoginResult, error) {
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		UserID:           u.UserID,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(u.UserID, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return &LoginResult{Bearer: bearer, RefreshToken: refreshToken, Session: sess}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Disable(ctx, sessionID)
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return sess, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	sess, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", "", fmt.Errorf("invalid or expired refresh token: %w", domain.ErrUnauthorized)
		}
		return "", "", err
	}
	if !sess.Enable || sess.RefreshExpiresAt < time.Now().Unix() {
		return "", "", fmt.Errorf("invalid or expired refresh token: %w", domain.ErrUnauthorized)
	}
	newToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	newExpiry := time.Now().Add(s.refreshTokenDur).Unix()
	if err := s.sessionRepo.RotateRefreshToken(ctx, sess.SessionID, newToken, newExpiry); err != nil {
		return "", "", err
	}
	bearer, err := s.jwtProvider.Sign(sess.UserID, sess.SessionID)
	if err != nil {
		return "", "", err
	}
	return bearer, newToken, nil
}
