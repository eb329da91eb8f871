package service

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// ValidatePassword enforces length bounds on a new password.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	switch {
	case strings.TrimSpace(password) == "":
		return fmt.Errorf("%w: password is empty", ErrWeakPassword)
	case n < MinPasswordLength:
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, MinPasswordLength)
	case n > MaxPasswordLength:
		return fmt.Errorf("%w: must be at most %d characters", ErrWeakPassword, MaxPasswordLength)
	}
	return nil
}

// normalizeAddress validates a bare address and returns its stored form.
func normalizeAddress(email string) (string, error) {
	email = domain.NormalizeEmail(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", ErrInvalidRequest)
	}
	return email, nil
}
