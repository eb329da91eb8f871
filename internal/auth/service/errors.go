package service

import "errors"

// Error is a failure with a stable, client-facing code. Sentinels are
// compared by identity, so errors.Is works through wrapping.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func newError(code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Gate and token errors.
var (
	ErrMissingToken        = newError("MISSING_TOKEN", "no access token provided")
	ErrTokenExpired        = newError("TOKEN_EXPIRED", "access token has expired")
	ErrInvalidToken        = newError("INVALID_TOKEN", "access token is invalid")
	ErrTokenRevoked        = newError("TOKEN_REVOKED", "access token has been revoked")
	ErrInvalidRefreshToken = newError("INVALID_REFRESH_TOKEN", "refresh token is invalid or expired")
	ErrUserInactive        = newError("USER_INACTIVE", "account is deactivated")
)

// Login errors.
var (
	ErrAccountLocked      = newError("ACCOUNT_LOCKED", "too many failed attempts, try again later")
	ErrInvalidCredentials = newError("INVALID_CREDENTIALS", "email or password is incorrect")
)

// Two-factor errors.
var (
	ErrTwoFASetupRequired  = newError("TWO_FA_SETUP_REQUIRED", "two-factor authentication must be set up for this role")
	ErrTwoFANotEnabled     = newError("TWO_FA_NOT_ENABLED", "two-factor authentication is not enabled")
	ErrInvalid2FAToken     = newError("INVALID_2FA_TOKEN", "two-factor code is invalid")
	ErrTwoFARequired       = newError("TWO_FA_REQUIRED", "a two-factor code is required")
	ErrTwoFAAlreadyEnabled = newError("TWO_FA_ALREADY_ENABLED", "two-factor authentication is already enabled")
	ErrTwoFANotSetup       = newError("TWO_FA_NOT_SETUP", "two-factor setup has not been started")
)

// Verification errors.
var (
	ErrInvalidVerificationToken = newError("INVALID_VERIFICATION_TOKEN", "verification token is invalid or expired")
	ErrInvalidResetToken        = newError("INVALID_RESET_TOKEN", "reset token is invalid or expired")
	ErrEmailAlreadyVerified     = newError("EMAIL_ALREADY_VERIFIED", "email address is already verified")
)

// Account management errors.
var (
	ErrEmailTaken      = newError("EMAIL_TAKEN", "an account with this email already exists")
	ErrWeakPassword    = newError("WEAK_PASSWORD", "password does not meet requirements")
	ErrInvalidRequest  = newError("INVALID_REQUEST", "request is invalid")
	ErrUserNotFound    = newError("USER_NOT_FOUND", "user not found")
	ErrSessionNotFound = newError("SESSION_NOT_FOUND", "session not found")
)

// Bootstrap errors.
var (
	ErrBootstrapDisabled     = newError("BOOTSTRAP_DISABLED", "bootstrap is not configured")
	ErrBootstrapAlready      = newError("ALREADY_BOOTSTRAPPED", "system already bootstrapped")
	ErrBootstrapUnauthorized = newError("BOOTSTRAP_UNAUTHORIZED", "bootstrap token is invalid")
)

// Code returns the stable code of err, or "" if it carries none.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
