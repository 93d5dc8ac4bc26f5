package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/client-auth-api/internal/application/session"
	"github.com/client-auth-api/internal/domain"
	jwtinfra "github.com/client-auth-api/internal/infrastructure/jwt"
	"github.com/client-auth-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSessionService struct{ mock.Mock }

func (m *mockSessionService) Login(ctx context.Context, req session.LoginRequest) (*session.LoginResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*session.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionService) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}
func (m *mockSessionService) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}
func (m *mockSessionService) Issue(ctx context.Context, u *domain.User) (*session.LoginResult, error) {
	args := m.Called(ctx, u)
	if r, _ := args.Get(0).(*session.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

const loginBody = `{"login_id": "alice", "login_password": "Secret123", "recaptcha_token": "valid"}`

func doLogin(t *testing.T, svc session.Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h := NewSessionHandler(svc, CookieOptions{TTL: time.Hour})
	h.Login(rec, req)
	return rec
}

func TestLogin_Success(t *testing.T) {
	svc := &mockSessionService{}
	svc.On("Login", mock.Anything, mock.MatchedBy(func(r session.LoginRequest) bool {
		return r.LoginID == "alice" && r.Password == "Secret123"
	})).Return(&session.LoginResult{
		Bearer:       "signed.jwt.token",
		RefreshToken: "refresh-1",
		Session:      &domain.Session{SessionID: "s1", UserID: "u1"},
	}, nil)

	rec := doLogin(t, svc, loginBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "Login successful.", env.Message)
	assert.Equal(t, "signed.jwt.token", env.Bearer)
	assert.Equal(t, "refresh-1", env.RefreshToken)
}

func TestLogin_SetsHTTPOnlyCookie(t *testing.T) {
	svc := &mockSessionService{}
	svc.On("Login", mock.Anything, mock.Anything).Return(&session.LoginResult{
		Bearer:  "signed.jwt.token",
		Session: &domain.Session{SessionID: "s1"},
	}, nil)

	rec := doLogin(t, svc, loginBody)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, middleware.SessionCookie, c.Name)
	assert.Equal(t, "signed.jwt.token", c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, int(time.Hour.Seconds()), c.MaxAge)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := &mockSessionService{}
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, session.ErrInvalidCredentials)

	rec := doLogin(t, svc, loginBody)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid username or password.", env.Message)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogin_CaptchaFailed(t *testing.T) {
	svc := &mockSessionService{}
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, session.ErrCaptchaRejected)

	rec := doLogin(t, svc, loginBody)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "reCaptcha verification failed. Please complete the reCAPTCHA and try again.", env.Message)
}

func TestLogin_DisabledAccount(t *testing.T) {
	svc := &mockSessionService{}
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, session.ErrAccountDisabled)

	rec := doLogin(t, svc, loginBody)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "Account disabled.", env.Message)
}

func TestLogin_MalformedBody(t *testing.T) {
	rec := doLogin(t, &mockSessionService{}, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefresh_RotatesCookie(t *testing.T) {
	svc := &mockSessionService{}
	svc.On("Refresh", mock.Anything, "refresh-1").Return("new.jwt", "refresh-2", nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/refresh",
		strings.NewReader(`{"refresh_token": "refresh-1"}`))
	rec := httptest.NewRecorder()
	NewSessionHandler(svc, CookieOptions{TTL: time.Hour}).Refresh(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "new.jwt", env.Bearer)
	assert.Equal(t, "refresh-2", env.RefreshToken)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "new.jwt", cookies[0].Value)
}

func TestRefresh_MissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/refresh", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	NewSessionHandler(&mockSessionService{}, CookieOptions{}).Refresh(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	svc := &mockSessionService{}
	svc.On("Logout", mock.Anything, "s1").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/logout", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ClaimsKey,
		&jwtinfra.Claims{UserID: "u1", SessionID: "s1"}))
	rec := httptest.NewRecorder()
	NewSessionHandler(svc, CookieOptions{}).Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
	svc.AssertCalled(t, "Logout", mock.Anything, "s1")
}

func TestLogout_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/logout", nil)
	rec := httptest.NewRecorder()
	NewSessionHandler(&mockSessionService{}, CookieOptions{}).Logout(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
