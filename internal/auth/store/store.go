package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this.
// It exposes sub-repositories to keep concerns tidy and testable, and so a
// Tx-scoped store cannot start a nested transaction by accident.
//
// Time is always passed in by the caller so expiry checks follow the
// service clock rather than the database's.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	EmailVerifications() EmailVerifications
	PasswordResets() PasswordResets
	TwoFactor() TwoFactor
	SigningKeys() SigningKeys

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns nil
	// and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts the user and its role assignments. Returns
	// ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// ReplaceRoles swaps the user's role assignments for roles, keeping order.
	ReplaceRoles(ctx context.Context, userID string, roles domain.Roles, now time.Time) error

	// UpdatePassword stores a new hash and stamps password_changed_at. The
	// token version is left alone; revoking sessions bumps it.
	UpdatePassword(ctx context.Context, userID, newHash string, now time.Time) (domain.User, error)

	// IncrementLoginAttempts atomically records a failed login. A counter left
	// over from an expired lock restarts at 1. When the counter reaches
	// maxAttempts the account is locked until now+lockFor.
	IncrementLoginAttempts(ctx context.Context, userID string, now time.Time, maxAttempts int, lockFor time.Duration) (domain.LoginAttempt, error)

	// RecordLoginSuccess clears the attempt counter and lock and stamps last_login_at.
	RecordLoginSuccess(ctx context.Context, userID string, now time.Time) error

	// IncrementTokenVersion atomically bumps token_version and returns the new value.
	IncrementTokenVersion(ctx context.Context, userID string, now time.Time) (int64, error)

	SetActive(ctx context.Context, userID string, active bool, now time.Time) error
	SetEmailVerified(ctx context.Context, userID string, now time.Time) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by fingerprint regardless of state.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// TouchRefreshToken stamps last_used_at.
	TouchRefreshToken(ctx context.Context, id string, now time.Time) error

	// RevokeRefreshToken revokes a live token by fingerprint. Returns
	// ErrNotFound when no live token matched.
	RevokeRefreshToken(ctx context.Context, hash, reason string, now time.Time) error

	// RevokeRefreshTokenByID revokes one of userID's live tokens.
	RevokeRefreshTokenByID(ctx context.Context, userID, id, reason string, now time.Time) error

	// RevokeAllUserRefreshTokens revokes every live token of the user and
	// returns how many were affected.
	RevokeAllUserRefreshTokens(ctx context.Context, userID, reason string, now time.Time) (int64, error)

	// ListLiveRefreshTokens returns the user's unrevoked, unexpired tokens,
	// newest first.
	ListLiveRefreshTokens(ctx context.Context, userID string, now time.Time) ([]domain.RefreshToken, error)

	// DeleteStaleRefreshTokens removes expired tokens and tokens revoked before revokedBefore.
	DeleteStaleRefreshTokens(ctx context.Context, now, revokedBefore time.Time) (int64, error)
}

type EmailVerifications interface {
	// DeleteUserEmailVerifications removes outstanding tokens before a new one is issued.
	DeleteUserEmailVerifications(ctx context.Context, userID string) error
	CreateEmailVerification(ctx context.Context, t domain.EmailVerificationToken) error

	// ConsumeEmailVerification marks an unused, unexpired token used in a
	// single conditional update. Returns ErrNotFound otherwise.
	ConsumeEmailVerification(ctx context.Context, hash string, now time.Time) (domain.EmailVerificationToken, error)

	DeleteStaleEmailVerifications(ctx context.Context, now time.Time) (int64, error)
}

type PasswordResets interface {
	DeleteUserPasswordResets(ctx context.Context, userID string) error
	CreatePasswordReset(ctx context.Context, t domain.PasswordResetToken) error

	// ConsumePasswordReset behaves like ConsumeEmailVerification.
	ConsumePasswordReset(ctx context.Context, hash string, now time.Time) (domain.PasswordResetToken, error)

	DeleteStalePasswordResets(ctx context.Context, now time.Time) (int64, error)
}

type TwoFactor interface {
	// GetTwoFactor returns the enrollment with its backup codes.
	GetTwoFactor(ctx context.Context, userID string) (domain.TwoFactorAuth, error)

	// UpsertPendingTwoFactor stores a fresh, not yet enabled secret and replaces
	// the backup codes.
	UpsertPendingTwoFactor(ctx context.Context, userID, secret string, codeHashes []string, now time.Time) error

	// EnableTwoFactor flips enabled on a pending enrollment. Returns ErrNotFound
	// if there is no pending enrollment.
	EnableTwoFactor(ctx context.Context, userID string, now time.Time) error

	// TouchTwoFactor stamps last_used_at.
	TouchTwoFactor(ctx context.Context, userID string, now time.Time) error

	// ConsumeBackupCode marks a matching unused code used. Returns ErrNotFound
	// when no unused code matched.
	ConsumeBackupCode(ctx context.Context, userID, codeHash string, now time.Time) error

	// ReplaceBackupCodes discards all existing codes for the user.
	ReplaceBackupCodes(ctx context.Context, userID string, codeHashes []string) error

	DeleteTwoFactor(ctx context.Context, userID string) error
}

type SigningKeys interface {
	// CreateSigningKey stores a new signing key with encrypted private key material.
	CreateSigningKey(ctx context.Context, key domain.SigningKey) error

	// GetSigningKeyByKid fetches a signing key by its key identifier.
	GetSigningKeyByKid(ctx context.Context, kid string) (domain.SigningKey, error)

	// ListActiveSigningKeys returns all non-retired signing keys ordered by
	// creation date (newest first).
	ListActiveSigningKeys(ctx context.Context) ([]domain.SigningKey, error)

	// ListAllSigningKeys returns all signing keys (including retired and expired)
	// ordered by creation date (newest first). Used for verification during grace period.
	ListAllSigningKeys(ctx context.Context) ([]domain.SigningKey, error)

	// RetireSigningKey marks a key as retired at now; it keeps verifying
	// until expiresAt. Returns ErrNotFound if kid is unknown or already retired.
	RetireSigningKey(ctx context.Context, kid string, now, expiresAt time.Time) error

	// DeleteExpiredSigningKeys removes retired keys past their expires_at.
	DeleteExpiredSigningKeys(ctx context.Context, now time.Time) (int64, error)
}
