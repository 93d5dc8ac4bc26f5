package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/client-auth-api/internal/config"
)

// Verifier checks client-supplied reCAPTCHA tokens against the external
// siteverify endpoint. The call is bounded by the client timeout; callers
// treat any error as a rejected token.
type Verifier struct {
	secret    string
	verifyURL string
	client    *http.Client
}

func NewVerifier(cfg *config.Config) *Verifier {
	return &Verifier{
		secret:    cfg.RecaptchaSecret,
		verifyURL: cfg.RecaptchaVerifyURL,
		client:    &http.Client{Timeout: cfg.RecaptchaTimeout},
	}
}

// Verify submits the token to the verification service and returns whether it
// was accepted. A network failure, timeout, or non-200 status returns an
// error; the caller fails closed.
func (v *Verifier) Verify(ctx context.Context, token string) (bool, error) {
	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("siteverify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("siteverify returned status %d", resp.StatusCode)
	}

	var out struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode siteverify response: %w", err)
	}
	return out.Success, nil
}
