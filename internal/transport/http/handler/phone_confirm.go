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

// PhoneConfirmHandler handles phone confirmation flow endpoints.
type PhoneConfirmHandler struct {
	svc auth.Service
}

func NewPhoneConfirmHandler(svc auth.Service) *PhoneConfirmHandler {
	return &PhoneConfirmHandler{svc: svc}
}

func (h *PhoneConfirmHandler) Action(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	switch chi.URLParam(r, "action") {
	case "request":
		if err := h.svc.RequestPhoneConfirmation(r.Context(), claims.UserID); err != nil {
			slog.Error("phone confirmation request failed", "user_id", claims.UserID, "err", err)
			writeFailure(w, http.StatusInternalServerError, msgInternal)
			return
		}
		writeSuccess(w, http.StatusOK, "Confirmation SMS sent.")
	case "validate-code":
		var body struct {
			OTP string `json:"otp"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeFailure(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
		if err := h.svc.ValidatePhoneOTP(r.Context(), claims.UserID, body.OTP); err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUnauthorized) {
				writeFailure(w, http.StatusUnauthorized, "Invalid or expired code.")
				return
			}
			slog.Error("phone otp validation failed", "user_id", claims.UserID, "err", err)
			writeFailure(w, http.StatusInternalServerError, msgInternal)
			return
		}
		writeSuccess(w, http.StatusOK, "Phone confirmed.")
	default:
		writeFailure(w, http.StatusBadRequest, "unknown action")
	}
}
