package authsdk

import (
	"time"

	"github.com/aussiebroadwan/vendorauth/pkg/jwtx"
)

// ErrorResponse is the wire form of APIError, used when decoding failures.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Session Types
// ============================================================================

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`

	// TwoFactorCode is a TOTP or backup code. Required once the account
	// has two-factor authentication enabled.
	TwoFactorCode string `json:"two_factor_code,omitempty"`

	// DeviceID is an optional client-chosen label stored with the session.
	DeviceID string `json:"device_id,omitempty"`
}

// TokenResponse is returned by login, refresh and password change.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`

	// TwoFactorSetupRequired is set on login when the user's role requires
	// 2FA and they have not enrolled. Until they do, the tokens only reach
	// the /v1/2fa routes, /v1/auth/me and logout.
	TwoFactorSetupRequired bool `json:"two_factor_setup_required,omitempty"`

	// Rotated is set on refresh when a new refresh token was issued.
	Rotated bool `json:"rotated,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	DeviceID     string `json:"device_id,omitempty"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	DeviceID        string `json:"device_id,omitempty"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// MessageResponse acknowledges requests that return no data.
type MessageResponse struct {
	Message string `json:"message"`
}

// SessionInfo describes one live refresh token.
type SessionInfo struct {
	ID         string     `json:"id"`
	UserAgent  string     `json:"user_agent,omitempty"`
	IPAddress  string     `json:"ip_address,omitempty"`
	DeviceID   string     `json:"device_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

type ListSessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

// ============================================================================
// User Types
// ============================================================================

// RoleAssignment is a role as sent over the wire. VendorID is required for
// vendor_admin and vendor_user and must be empty otherwise.
type RoleAssignment struct {
	Role     string `json:"role"`
	VendorID string `json:"vendor_id,omitempty"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID               string           `json:"id"`
	Email            string           `json:"email"`
	Roles            []RoleAssignment `json:"roles"`
	Active           bool             `json:"active"`
	EmailVerified    bool             `json:"email_verified"`
	TwoFactorPending bool             `json:"two_factor_pending,omitempty"`
	LastLoginAt      *time.Time       `json:"last_login_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

type CreateUserRequest struct {
	Email    string           `json:"email"`
	Password string           `json:"password"`
	Roles    []RoleAssignment `json:"roles"`
}

type SetRolesRequest struct {
	Roles []RoleAssignment `json:"roles"`
}

// ============================================================================
// Two-Factor Types
// ============================================================================

// TwoFactorSetupResponse carries the new secret. BackupCodes are shown once.
type TwoFactorSetupResponse struct {
	Secret      string   `json:"secret"`
	OTPAuthURL  string   `json:"otpauth_url"`
	BackupCodes []string `json:"backup_codes"`
	Required    bool     `json:"required"`
}

// TwoFactorCodeRequest carries a TOTP code, or a backup code where accepted.
type TwoFactorCodeRequest struct {
	Code string `json:"code"`
}

type BackupCodesResponse struct {
	BackupCodes []string `json:"backup_codes"`
}

type TwoFactorStatusResponse struct {
	State                string     `json:"state"`
	Required             bool       `json:"required"`
	EnabledAt            *time.Time `json:"enabled_at,omitempty"`
	RemainingBackupCodes int        `json:"remaining_backup_codes"`
}

// ============================================================================
// Bootstrap Types
// ============================================================================

// BootstrapRequest creates the first elika_admin account.
type BootstrapRequest struct {
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

type BootstrapResponse struct {
	AdminUserID string `json:"admin_user_id"`
}

// ValidationErrorResponse is returned when request fields fail validation.
type ValidationErrorResponse struct {
	Code    string            `json:"error"`
	Message string            `json:"error_description"`
	Details map[string]string `json:"details,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	// Status is "ok" when healthy, "degraded" otherwise.
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`

	// Checks is only populated by /readyz.
	Checks *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// ============================================================================
// Key Management Types
// ============================================================================

// JWKSResponse is the public key set served at /.well-known/jwks.json.
type JWKSResponse jwtx.JWKS

type RotateKeyRequest struct {
	// RetireExisting retires every other active key once the new one is live.
	RetireExisting bool `json:"retire_existing"`
}

// SigningKeyInfo describes a signing key without its private material.
type SigningKeyInfo struct {
	Kid       string     `json:"kid"`
	Algorithm string     `json:"algorithm"`
	Active    bool       `json:"active"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	RetiredAt *time.Time `json:"retired_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type RotateKeyResponse struct {
	NewKey      SigningKeyInfo   `json:"new_key"`
	RetiredKeys []SigningKeyInfo `json:"retired_keys,omitempty"`
	ActiveKeys  int              `json:"active_keys"`
}

type ListSigningKeysResponse struct {
	Keys []SigningKeyInfo `json:"keys"`
}
