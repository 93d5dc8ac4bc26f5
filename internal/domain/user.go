package domain

import "time"

type User struct {
	UserID         string    `json:"id"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	ContactNumber  string    `json:"contact_number"`
	PasswordHash   string    `json:"-"`
	EmailConfirmed bool      `json:"email_confirmed"`
	PhoneConfirmed bool      `json:"phone_confirmed"`
	Enable         bool      `json:"enable"`
	CreatedAt      time.Time `json:"created"`
	UpdatedAt      time.Time `json:"updated"`
}

// SignupRequest is the JSON body of POST /v1/users/signup. The field names are
// part of the contract with the web client and must not change.
type SignupRequest struct {
	Username        string `json:"username"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	ContactNumber   string `json:"contact_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	RecaptchaToken  string `json:"recaptcha_token"`
}
