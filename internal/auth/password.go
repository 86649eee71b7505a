package auth

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PasswordOK is the validator's answer when a password meets the policy
const PasswordOK = "ok"

// ErrInvalidCredentials is returned for both an unknown user and a wrong
// password, so callers cannot tell the two apart
var ErrInvalidCredentials = errors.New("invalid username and/or password")

const minPasswordLength = 8

// HashPassword produces the bcrypt credential hash stored on the user row
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a password against the stored hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword applies the strength policy. It returns PasswordOK or
// the reason the password was rejected, suitable for showing the user.
func ValidatePassword(password string) string {
	if len(password) < minPasswordLength {
		return "password must be at least 8 characters long"
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		return "password must contain an uppercase letter"
	}
	if !hasLower {
		return "password must contain a lowercase letter"
	}
	if !hasDigit {
		return "password must contain a digit"
	}
	return PasswordOK
}
