package domain

import "time"

// EmailVerificationToken is a single-use token proving control of an address.
type EmailVerificationToken struct {
	ID        string
	UserID    string
	Email     string // address at issuance time
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
	CreatedAt time.Time
}

// PasswordResetToken is a single-use token authorising one password change.
type PasswordResetToken struct {
	ID        string
	UserID    string
	Email     string
	TokenHash string
	IPAddress string
	UserAgent string
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
	CreatedAt time.Time
}
