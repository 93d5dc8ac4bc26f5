package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes and user-facing
// messages without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
	// ErrCaptcha marks a failed or missing human-verification token.
	// Verifier timeouts wrap it too: verification fails closed.
	ErrCaptcha = errors.New("captcha verification failed")
)
