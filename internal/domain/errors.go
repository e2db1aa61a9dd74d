package domain

import (
	"errors"
	"regexp"
)

// Account validation errors
var (
	ErrUsernameTooShort = errors.New("username must be at least 3 characters long")
	ErrEmailTooShort    = errors.New("email must be at least 3 characters long")
	ErrEmailInvalid     = errors.New("invalid email format")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
)

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)

// ValidateUsername checks the username length requirement. Usernames are
// compared case-insensitively; callers normalize to lowercase before storage.
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return ErrUsernameTooShort
	}
	return nil
}

// ValidateEmail checks the email length and format requirements.
func ValidateEmail(email string) error {
	if len(email) < 3 {
		return ErrEmailTooShort
	}
	if !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

// ValidatePassword checks the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}
