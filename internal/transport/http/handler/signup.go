package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/client-auth-api/internal/application/user"
	"github.com/client-auth-api/internal/domain"
	"github.com/client-auth-api/internal/transport/http/middleware"
)

// UserHandler handles account creation and account-level endpoints.
type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler { return &UserHandler{svc: svc} }

// Signup handles POST /v1/users/signup. Every outcome is reported through the
// {success, message} envelope; failures carry the specific, user-correctable
// message and internal detail stays in the server log.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	_, err := h.svc.Signup(r.Context(), req)
	switch {
	case err == nil:
		writeSuccess(w, http.StatusCreated, msgSignupOK)
	case errors.Is(err, domain.ErrCaptcha):
		writeFailure(w, http.StatusBadRequest, msgCaptchaFailed)
	case errors.Is(err, user.ErrMissingFields):
		writeFailure(w, http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, user.ErrPasswordMismatch):
		writeFailure(w, http.StatusBadRequest, msgPasswordMismatch)
	case errors.Is(err, domain.ErrConflict):
		writeFailure(w, http.StatusConflict, msgAlreadyExists)
	case errors.Is(err, user.ErrCreateFailed):
		writeFailure(w, http.StatusInternalServerError, msgSignupFailed)
	default:
		slog.Error("signup failed", "err", err)
		writeFailure(w, http.StatusInternalServerError, msgInternal)
	}
}

// Get handles GET /v1/users/{id}; a user may only read their own record.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.svc.Get(r.Context(), claims.UserID)
	if err != nil {
		writeFailure(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ChangePassword handles POST /v1/users/change-password for an authenticated
// user.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeFailure(w, http.StatusBadRequest, msgMissingFields)
		return
	}
	if err := h.svc.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeFailure(w, http.StatusUnauthorized, "Current password is incorrect.")
			return
		}
		slog.Error("change password failed", "user_id", claims.UserID, "err", err)
		writeFailure(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeSuccess(w, http.StatusOK, "Password changed.")
}
