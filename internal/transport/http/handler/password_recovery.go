package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/client-auth-api/internal/application/auth"
	"github.com/client-auth-api/internal/domain"
	"github.com/client-auth-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// PasswordRecoveryHandler handles the password-recovery OTP flow.
type PasswordRecoveryHandler struct {
	svc auth.Service
}

func NewPasswordRecoveryHandler(svc auth.Service) *PasswordRecoveryHandler {
	return &PasswordRecoveryHandler{svc: svc}
}

func (h *PasswordRecoveryHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "request":
		var req auth.PasswordRecoveryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeFailure(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
		if err := validate.Struct(&req); err != nil {
			writeFailure(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := h.svc.RequestPasswordRecovery(r.Context(), req); err != nil {
			// A miss gets the same answer as a hit so the endpoint
			// cannot be used to probe for registered addresses.
			if !errors.Is(err, domain.ErrNotFound) {
				slog.Error("password recovery request failed", "err", err)
				writeFailure(w, http.StatusInternalServerError, msgInternal)
				return
			}
		}
		writeSuccess(w, http.StatusOK, "If the address is registered, an OTP has been sent.")
	case "validate-code":
		var req auth.ValidateOTPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeFailure(w, http.StatusBadRequest, msgInvalidBody)
			return
		}
		if err := validate.Struct(&req); err != nil {
			writeFailure(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		result, err := h.svc.ValidateOTP(r.Context(), req)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUnauthorized) {
				writeFailure(w, http.StatusUnauthorized, "Invalid or expired code.")
				return
			}
			slog.Error("otp validation failed", "err", err)
			writeFailure(w, http.StatusInternalServerError, msgInternal)
			return
		}
		writeJSON(w, http.StatusOK, AuthEnvelope{
			Success:      true,
			Message:      "Code accepted.",
			Bearer:       result.Bearer,
			RefreshToken: result.RefreshToken,
			Session:      result.Session,
		})
	default:
		writeFailure(w, http.StatusBadRequest, "unknown action")
	}
}
