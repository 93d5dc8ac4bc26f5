package handler

import (
	"encoding/json"
	"net/http"

	"github.com/client-auth-api/internal/domain"
)

// Client-facing response messages. The signup strings are part of the
// contract with the web client and must match it verbatim.
const (
	msgInvalidMethod    = "Invalid request method"
	msgInvalidBody      = "Invalid request body."
	msgCaptchaFailed    = "reCaptcha verification failed. Please complete the reCAPTCHA and try again."
	msgMissingFields    = "All fields are required."
	msgPasswordMismatch = "Passwords do not match."
	msgAlreadyExists    = "Username or email already exists."
	msgSignupOK         = "Account created successfully! You can now log in."
	msgSignupFailed     = "Failed to create account. Please try again."
	msgInternal         = "An error occurred. Please try again later."
	msgInvalidLogin     = "Invalid username or password."
	msgAccountDisabled  = "Account disabled."
	msgLoginOK          = "Login successful."
)

// Envelope is the generic {success, message} response wrapper every endpoint
// speaks.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AuthEnvelope extends Envelope with session credentials for login-style
// responses.
type AuthEnvelope struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	Bearer       string          `json:"bearer,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	Session      *domain.Session `json:"session,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Envelope{Success: true, Message: msg})
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Envelope{Success: false, Message: msg})
}

// MethodNotAllowed is the router-wide handler for requests using anything but
// an endpoint's designated method. No state changes; the body still speaks
// the endpoint envelope.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeFailure(w, http.StatusMethodNotAllowed, msgInvalidMethod)
}
