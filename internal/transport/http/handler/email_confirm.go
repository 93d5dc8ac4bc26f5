package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/client-auth-api/internal/application/auth"
	"github.com/client-auth-api/internal/domain"
	"github.com/client-auth-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// EmailConfirmHandler handles email confirmation flow endpoints.
type EmailConfirmHandler struct {
	svc auth.Service
}

func NewEmailConfirmHandler(svc auth.Service) *EmailConfirmHandler {
	return &EmailConfirmHandler{svc: svc}
}

func (h *EmailConfirmHandler) Action(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	switch chi.URLParam(r, "action") {
	case "request":
		if err := h.svc.RequestEmailConfirmation(r.Context(), claims.UserID); err != nil {
			slog.Error("email confirmation request failed", "user_id", claims.UserID, "err", err)
			writeFailure(w, http.StatusInternalServerError, msgInternal)
			return
		}
		writeSuccess(w, http.StatusOK, "Confirmation email sent.")
	case "validate-code":
		var body struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeFailure(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
		if err := h.svc.ValidateEmailToken(r.Context(), claims.UserID, body.Token); err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUnauthorized) {
				writeFailure(w, http.StatusUnauthorized, "Invalid or expired token.")
				return
			}
			slog.Error("email token validation failed", "user_id", claims.UserID, "err", err)
			writeFailure(w, http.StatusInternalServerError, msgInternal)
			return
		}
		writeSuccess(w, http.StatusOK, "Email confirmed.")
	default:
		writeFailure(w, http.StatusBadRequest, "unknown action")
	}
}
