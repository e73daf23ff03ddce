// Package validation holds the input checks for auth requests and the
// optional per-table document schema.
package validation

import (
	"regexp"

	"baseserver/internal/models"
)

const minPasswordLen = 6

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func IsValidPassword(password string) bool {
	return len(password) >= minPasswordLen
}

// RegisterInput checks a registration request.
func RegisterInput(email, password string) error {
	if email == "" || password == "" {
		return models.NewValidationError("credentials", "email and password required")
	}
	if !IsValidEmail(email) {
		return models.NewValidationError("email", "must be a valid email address")
	}
	if !IsValidPassword(password) {
		return models.NewValidationError("password", "must be at least 6 characters")
	}
	return nil
}

// LoginInput checks a login request. Format is not enforced here; a
// malformed email simply fails to match any user.
func LoginInput(email, password string) error {
	if email == "" || password == "" {
		return models.NewValidationError("credentials", "email and password required")
	}
	return nil
}

// UpdateUserInput checks a profile update, where both fields are
// optional but must be well-formed when present.
func UpdateUserInput(email, password string) error {
	if email != "" && !IsValidEmail(email) {
		return models.NewValidationError("email", "must be a valid email address")
	}
	if password != "" && !IsValidPassword(password) {
		return models.NewValidationError("password", "must be at least 6 characters")
	}
	return nil
}
