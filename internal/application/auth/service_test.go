package auth

import (
	"context"
	"testing"
	"time"

	"github.com/client-auth-api/internal/application/session"
	"github.com/client-auth-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) SetEmailConfirmed(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *mockUserStore) SetPhoneConfirmed(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockVerificationStore struct{ mock.Mock }

func (m *mockVerificationStore) Put(ctx context.Context, v *domain.UserVerification) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockVerificationStore) Get(ctx context.Context, userID, verType string) (*domain.UserVerification, error) {
	args := m.Called(ctx, userID, verType)
	if v, _ := args.Get(0).(*domain.UserVerification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockVerificationStore) Delete(ctx context.Context, userID, verType string) error {
	return m.Called(ctx, userID, verType).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

type mockSessionIssuer struct{ mock.Mock }

func (m *mockSessionIssuer) Issue(ctx context.Context, u *domain.User) (*session.LoginResult, error) {
	args := m.Called(ctx, u)
	if r, _ := args.Get(0).(*session.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func newTestService(us *mockUserStore, vs *mockVerificationStore, ml *mockMailer, sms *mockSMSSender, issuer *mockSessionIssuer) Service {
	return NewService(ServiceDeps{
		VerificationRepo: vs,
		UserRepo:         us,
		Mailer:           ml,
		SMSSender:        sms,
		Sessions:         issuer,
	})
}

// --- Password recovery tests ---

func TestRequestPasswordRecovery_UnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "nobody@x.com").Return(nil, domain.ErrNotFound)
	vs := &mockVerificationStore{}

	err := newTestService(us, vs, &mockMailer{}, nil, nil).
		RequestPasswordRecovery(context.Background(), PasswordRecoveryRequest{Email: "nobody@x.com"})

	require.ErrorIs(t, err, domain.ErrNotFound)
	vs.AssertNotCalled(t, "Put")
}

func TestRequestPasswordRecovery_StoresCodeAndMails(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{UserID: "u1", Email: "a@x.com"}, nil)
	vs := &mockVerificationStore{}
	vs.On("Put", mock.Anything, mock.MatchedBy(func(v *domain.UserVerification) bool {
		return v.UserID == "u1" && v.Type == domain.VerificationOTP &&
			len(v.Code) == 6 && v.ExpiresAt > time.Now().Unix()
	})).Return(nil)
	ml := &mockMailer{}
	ml.On("SendEmail", "a@x.com", mock.Anything, mock.Anything).Return(nil)

	err := newTestService(us, vs, ml, nil, nil).
		RequestPasswordRecovery(context.Background(), PasswordRecoveryRequest{Email: "a@x.com"})

	require.NoError(t, err)
	vs.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestValidateOTP_WrongCode(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{UserID: "u1", Email: "a@x.com"}, nil)
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "u1", domain.VerificationOTP).Return(&domain.UserVerification{
		UserID: "u1", Type: domain.VerificationOTP, Code: "123456",
		ExpiresAt: time.Now().Add(time.Minute).Unix(),
	}, nil)

	_, err := newTestService(us, vs, nil, nil, &mockSessionIssuer{}).
		ValidateOTP(context.Background(), ValidateOTPRequest{Email: "a@x.com", OTP: "654321"})

	require.ErrorIs(t, err, domain.ErrUnauthorized)
	vs.AssertNotCalled(t, "Delete")
}

func TestValidateOTP_ExpiredCode(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{UserID: "u1"}, nil)
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "u1", domain.VerificationOTP).Return(&domain.UserVerification{
		UserID: "u1", Type: domain.VerificationOTP, Code: "123456",
		ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	}, nil)

	_, err := newTestService(us, vs, nil, nil, &mockSessionIssuer{}).
		ValidateOTP(context.Background(), ValidateOTPRequest{Email: "a@x.com", OTP: "123456"})

	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidateOTP_ConsumesCodeAndIssuesSession(t *testing.T) {
	u := &domain.User{UserID: "u1", Email: "a@x.com"}
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(u, nil)
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "u1", domain.VerificationOTP).Return(&domain.UserVerification{
		UserID: "u1", Type: domain.VerificationOTP, Code: "123456",
		ExpiresAt: time.Now().Add(time.Minute).Unix(),
	}, nil)
	vs.On("Delete", mock.Anything, "u1", domain.VerificationOTP).Return(nil)
	issuer := &mockSessionIssuer{}
	issuer.On("Issue", mock.Anything, u).Return(&session.LoginResult{Bearer: "b", RefreshToken: "r"}, nil)

	result, err := newTestService(us, vs, nil, nil, issuer).
		ValidateOTP(context.Background(), ValidateOTPRequest{Email: "a@x.com", OTP: "123456"})

	require.NoError(t, err)
	assert.Equal(t, "b", result.Bearer)
	vs.AssertExpectations(t)
	issuer.AssertExpectations(t)
}

// --- Email confirmation tests ---

func TestValidateEmailToken_SetsConfirmed(t *testing.T) {
	us := &mockUserStore{}
	us.On("SetEmailConfirmed", mock.Anything, "u1").Return(nil)
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "u1", domain.VerificationEmail).Return(&domain.UserVerification{
		UserID: "u1", Type: domain.VerificationEmail, Code: "tok",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil)
	vs.On("Delete", mock.Anything, "u1", domain.VerificationEmail).Return(nil)

	err := newTestService(us, vs, nil, nil, nil).ValidateEmailToken(context.Background(), "u1", "tok")

	require.NoError(t, err)
	us.AssertExpectations(t)
}

// --- Phone confirmation tests ---

func TestRequestPhoneConfirmation_SendsSMS(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", ContactNumber: "555"}, nil)
	vs := &mockVerificationStore{}
	vs.On("Put", mock.Anything, mock.AnythingOfType("*domain.UserVerification")).Return(nil)
	sms := &mockSMSSender{}
	sms.On("SendSMS", mock.Anything, "555", mock.Anything).Return(nil)

	err := newTestService(us, vs, nil, sms, nil).RequestPhoneConfirmation(context.Background(), "u1")

	require.NoError(t, err)
	sms.AssertExpectations(t)
}

func TestValidatePhoneOTP_SetsConfirmed(t *testing.T) {
	us := &mockUserStore{}
	us.On("SetPhoneConfirmed", mock.Anything, "u1").Return(nil)
	vs := &mockVerificationStore{}
	vs.On("Get", mock.Anything, "u1", domain.VerificationPhone).Return(&domain.UserVerification{
		UserID: "u1", Type: domain.VerificationPhone, Code: "123456",
		ExpiresAt: time.Now().Add(time.Minute).Unix(),
	}, nil)
	vs.On("Delete", mock.Anything, "u1", domain.VerificationPhone).Return(nil)

	err := newTestService(us, vs, nil, nil, nil).ValidatePhoneOTP(context.Background(), "u1", "123456")

	require.NoError(t, err)
	us.AssertExpectations(t)
}
