package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/client-auth-api/internal/application/session"
	"github.com/client-auth-api/internal/domain"
	"github.com/client-auth-api/internal/transport/http/middleware"
)

// CookieOptions configures the httpOnly session cookie set on login.
type CookieOptions struct {
	Secure bool
	TTL    time.Duration
}

// SessionHandler handles login, logout, refresh, and current-session
// endpoints.
type SessionHandler struct {
	svc    session.Service
	cookie CookieOptions
}

func NewSessionHandler(svc session.Service, cookie CookieOptions) *SessionHandler {
	return &SessionHandler{svc: svc, cookie: cookie}
}

// Login handles POST /v1/sessions/login. On success the signed session token
// is set as an httpOnly cookie; the client never stores its own logged-in
// flag as an authorization signal.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req session.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	result, err := h.svc.Login(r.Context(), req)
	switch {
	case err == nil:
		h.setSessionCookie(w, result.Bearer)
		writeJSON(w, http.StatusOK, AuthEnvelope{
			Success:      true,
			Message:      msgLoginOK,
			Bearer:       result.Bearer,
			RefreshToken: result.RefreshToken,
			Session:      result.Session,
		})
	case errors.Is(err, domain.ErrCaptcha):
		writeFailure(w, http.StatusBadRequest, msgCaptchaFailed)
	case errors.Is(err, session.ErrAccountDisabled):
		writeFailure(w, http.StatusForbidden, msgAccountDisabled)
	case errors.Is(err, domain.ErrUnauthorized):
		writeFailure(w, http.StatusUnauthorized, msgInvalidLogin)
	default:
		slog.Error("login failed", "err", err)
		writeFailure(w, http.StatusInternalServerError, msgInternal)
	}
}

func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeFailure(w, http.StatusBadRequest, "refresh_token required")
		return
	}
	bearer, newToken, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeFailure(w, http.StatusUnauthorized, "Invalid or expired refresh token.")
			return
		}
		slog.Error("session refresh failed", "err", err)
		writeFailure(w, http.StatusInternalServerError, msgInternal)
		return
	}
	h.setSessionCookie(w, bearer)
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Success:      true,
		Message:      "Session refreshed.",
		Bearer:       bearer,
		RefreshToken: newToken,
	})
}

func (h *SessionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sess, err := h.svc.GetCurrent(r.Context(), claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrNotFound) {
			writeFailure(w, http.StatusUnauthorized, "Session expired.")
			return
		}
		slog.Error("get current session failed", "err", err)
		writeFailure(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Logout(r.Context(), claims.SessionID); err != nil {
		slog.Error("logout failed", "session_id", claims.SessionID, "err", err)
		writeFailure(w, http.StatusInternalServerError, msgInternal)
		return
	}
	h.clearSessionCookie(w)
	writeSuccess(w, http.StatusOK, "Logged out.")
}

func (h *SessionHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *SessionHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
