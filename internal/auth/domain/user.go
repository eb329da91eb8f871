package domain

import (
	"strings"
	"time"
)

type User struct {
	ID                string
	Email             string // stored lower-cased
	PasswordHash      string // argon2id PHC string
	Roles             Roles
	Active            bool
	EmailVerified     bool
	TokenVersion      int64 // bumped to invalidate every outstanding access token
	LoginAttempts     int
	LockUntil         *time.Time
	PasswordChangedAt *time.Time
	LastLoginAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLocked reports whether the account is inside a lockout window at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && now.Before(*u.LockUntil)
}

// NormalizeEmail folds an address to the form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LoginAttempt is the outcome of recording a failed login.
type LoginAttempt struct {
	Attempts  int
	LockUntil *time.Time
}

// Identity is the authenticated caller resolved from an access token.
type Identity struct {
	UserID        string
	Email         string
	Roles         Roles
	EmailVerified bool
	TokenVersion  int64
	// TwoFactorPending marks a privileged user who still has to enroll.
	TwoFactorPending bool
}

// Subject returns the user ID.
func (id Identity) Subject() string { return id.UserID }

// HasAnyRole reports whether the caller holds one of the named role kinds.
func (id Identity) HasAnyRole(kinds ...string) bool {
	for _, k := range kinds {
		if id.Roles.Has(RoleKind(k)) {
			return true
		}
	}
	return false
}

// CanAccessVendor reports whether the caller may act on vendorID. Staff
// roles span every vendor; vendor roles are confined to their affiliation.
func (id Identity) CanAccessVendor(vendorID string) bool {
	for _, r := range id.Roles {
		if !r.kind.VendorScoped() || r.vendorID == vendorID {
			return true
		}
	}
	return false
}
