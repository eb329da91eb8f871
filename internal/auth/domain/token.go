package domain

import "time"

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // always "Bearer"
	ExpiresIn    int64  `json:"expires_in"` // seconds until the access token expires
}

// DeviceContext describes the client a refresh token was issued to.
type DeviceContext struct {
	UserAgent string
	IPAddress string
	DeviceID  string
}

// RefreshToken models the stored refresh token record in the DB.
type RefreshToken struct {
	ID            string
	UserID        string
	TokenHash     string // deterministic fingerprint (base64url SHA-256)
	Device        DeviceContext
	ExpiresAt     time.Time
	Revoked       bool
	RevokedReason string
	RevokedAt     *time.Time
	LastUsedAt    *time.Time
	CreatedAt     time.Time
}

// IsLive reports whether the token can still be exchanged at now.
func (t *RefreshToken) IsLive(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

// Revocation reasons recorded on refresh tokens.
const (
	RevokeReasonLogout         = "logout"
	RevokeReasonLogoutAll      = "logout_all"
	RevokeReasonRotated        = "rotated"
	RevokeReasonPasswordReset  = "password_reset"
	RevokeReasonPasswordChange = "password_change"
	RevokeReasonDeactivated    = "deactivated"
	RevokeReasonSessionEnded   = "session_revoked"
)
