package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/client-auth-api/internal/application/session"
	"github.com/client-auth-api/internal/domain"
	pkgtoken "github.com/client-auth-api/internal/pkg/token"
)

const (
	otpTTL        = 15 * time.Minute
	emailTokenTTL = 24 * time.Hour
)

type PasswordRecoveryRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ValidateOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type Service interface {
	RequestPasswordRecovery(ctx context.Context, req PasswordRecoveryRequest) error
	ValidateOTP(ctx context.Context, req ValidateOTPRequest) (*session.LoginResult, error)
	RequestEmailConfirmation(ctx context.Context, userID string) error
	ValidateEmailToken(ctx context.Context, userID, token string) error
	RequestPhoneConfirmation(ctx context.Context, userID string) error
	ValidatePhoneOTP(ctx context.Context, userID, otp string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetEmailConfirmed(ctx context.Context, userID string) error
	SetPhoneConfirmed(ctx context.Context, userID string) error
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.UserVerification) error
	Get(ctx context.Context, userID, verType string) (*domain.UserVerification, error)
	Delete(ctx context.Context, userID, verType string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type sessionIssuer interface {
	Issue(ctx context.Context, u *domain.User) (*session.LoginResult, error)
}

type service struct {
	verificationRepo verificationStore
	userRepo         userStore
	mailer           mailer
	smsSender        smsSender
	sessions         sessionIssuer
}

type ServiceDeps struct {
	VerificationRepo verificationStore
	UserRepo         userStore
	Mailer           mailer
	SMSSender        smsSender
	Sessions         sessionIssuer
}

func NewService(deps ServiceDeps) Service {
	return &service{
		verificationRepo: deps.VerificationRepo,
		userRepo:         deps.UserRepo,
		mailer:           deps.Mailer,
		smsSender:        deps.SMSSender,
		sessions:         deps.Sessions,
	}
}

func (s *service) RequestPasswordRecovery(ctx context.Context, req PasswordRecoveryRequest) error {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}

	otp, err := pkgtoken.NewOTP()
	if err != nil {
		return err
	}
	v := &domain.UserVerification{
		UserID:    u.UserID,
		Type:      domain.VerificationOTP,
		Code:      otp,
		ExpiresAt: time.Now().Add(otpTTL).Unix(),
	}
	if err := s.verificationRepo.Put(ctx, v); err != nil {
		return err
	}
	return s.mailer.SendEmail(u.Email, "Password Recovery OTP", "Your OTP: "+otp)
}

// ValidateOTP consumes a valid recovery code and issues a fresh session so
// the user can set a new password while authenticated.
func (s *service) ValidateOTP(ctx context.Context, req ValidateOTPRequest) (*session.LoginResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err := s.consumeCode(ctx, u.UserID, domain.VerificationOTP, req.OTP); err != nil {
		return nil, err
	}
	return s.sessions.Issue(ctx, u)
}

func (s *service) RequestEmailConfirmation(ctx context.Context, userID string) error {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	token, err := pkgtoken.NewAlphanumeric(32)
	if err != nil {
		return err
	}
	v := &domain.UserVerification{
		UserID:    userID,
		Type:      domain.VerificationEmail,
		Code:      token,
		ExpiresAt: time.Now().Add(emailTokenTTL).Unix(),
	}
	if err := s.verificationRepo.Put(ctx, v); err != nil {
		return err
	}
	return s.mailer.SendEmail(u.Email, "Confirm your email", "Token: "+token)
}

func (s *service) ValidateEmailToken(ctx context.Context, userID, token string) error {
	if err := s.consumeCode(ctx, userID, domain.VerificationEmail, token); err != nil {
		return err
	}
	return s.userRepo.SetEmailConfirmed(ctx, userID)
}

func (s *service) RequestPhoneConfirmation(ctx context.Context, userID string) error {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	otp, err := pkgtoken.NewOTP()
	if err != nil {
		return err
	}
	v := &domain.UserVerification{
		UserID:    userID,
		Type:      domain.VerificationPhone,
		Code:      otp,
		ExpiresAt: time.Now().Add(otpTTL).Unix(),
	}
	if err := s.verificationRepo.Put(ctx, v); err != nil {
		return err
	}
	return s.smsSender.SendSMS(ctx, u.ContactNumber, "Your verification code: "+otp)
}

func (s *service) ValidatePhoneOTP(ctx context.Context, userID, otp string) error {
	if err := s.consumeCode(ctx, userID, domain.VerificationPhone, otp); err != nil {
		return err
	}
	return s.userRepo.SetPhoneConfirmed(ctx, userID)
}

// consumeCode checks a stored verification code and deletes it on success.
// Codes are single-use.
func (s *service) consumeCode(ctx context.Context, userID, verType, code string) error {
	v, err := s.verificationRepo.Get(ctx, userID, verType)
	if err != nil {
		return fmt.Errorf("code not found: %w", domain.ErrNotFound)
	}
	if v.Code != code {
		return fmt.Errorf("invalid code: %w", domain.ErrUnauthorized)
	}
	if v.ExpiresAt < time.Now().Unix() {
		return fmt.Errorf("code expired: %w", domain.ErrUnauthorized)
	}
	if err := s.verificationRepo.Delete(ctx, userID, verType); err != nil {
		slog.Warn("failed to delete verification record", "user_id", userID, "type", verType, "err", err)
	}
	return nil
}
