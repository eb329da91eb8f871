package domain

import "time"

// TwoFactorState is the enrollment state of a user's TOTP authenticator.
type TwoFactorState string

const (
	TwoFactorNotConfigured TwoFactorState = "not_configured"
	TwoFactorPending       TwoFactorState = "pending"
	TwoFactorEnabled       TwoFactorState = "enabled"
)

// TwoFactorAuth is the per-user enrollment record.
type TwoFactorAuth struct {
	UserID      string
	Secret      string // base32 TOTP secret
	Enabled     bool
	BackupCodes []BackupCode
	EnabledAt   *time.Time
	LastUsedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *TwoFactorAuth) State() TwoFactorState {
	if t == nil {
		return TwoFactorNotConfigured
	}
	if t.Enabled {
		return TwoFactorEnabled
	}
	return TwoFactorPending
}

// RemainingBackupCodes counts codes that have not been consumed.
func (t *TwoFactorAuth) RemainingBackupCodes() int {
	n := 0
	for _, c := range t.BackupCodes {
		if !c.Used {
			n++
		}
	}
	return n
}

type BackupCode struct {
	CodeHash string
	Used     bool
	UsedAt   *time.Time
}

// TwoFactorSetup is returned once, when a secret is generated.
type TwoFactorSetup struct {
	Secret      string   // base32 encoded secret for TOTP
	OTPAuthURL  string   // otpauth:// URL for QR code generation
	BackupCodes []string // plaintext, shown only once
	Required    bool     // the user's roles make enrollment mandatory
}

// TwoFactorStatus summarises enrollment for display.
type TwoFactorStatus struct {
	State                TwoFactorState
	Required             bool
	EnabledAt            *time.Time
	RemainingBackupCodes int
}
