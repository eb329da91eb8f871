package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/metrics"
	"github.com/aussiebroadwan/vendorauth/internal/auth/notify"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store"
	"github.com/aussiebroadwan/vendorauth/pkg/cryptox"
	"github.com/aussiebroadwan/vendorauth/pkg/slogx"
)

const (
	DefaultMaxLoginAttempts = 5
	DefaultLockDuration     = 2 * time.Hour
)

// SessionService is the entry point for credential-bearing requests. It
// composes the token, verification and two-factor services and owns the
// login state machine and the per-request authentication check.
type SessionService struct {
	Store        store.Store
	Tokens       *TokenService
	Verification *VerificationService
	TwoFactor    *TwoFactorService
	Hasher       *cryptox.Hasher
	Notifier     notify.Notifier
	Clock        Clock
	Metrics      *metrics.Auth

	MaxLoginAttempts int
	LockDuration     time.Duration

	dummyOnce sync.Once
	dummyHash string
}

type LoginRequest struct {
	Email         string
	Password      string
	TwoFactorCode string
	Device        domain.DeviceContext
}

type LoginResult struct {
	domain.TokenPair
	User domain.User
	// TwoFactorSetupRequired marks a privileged user who has not enrolled.
	// The tokens only reach the enrollment routes until they do.
	TwoFactorSetupRequired bool
}

type RefreshResult struct {
	domain.TokenPair
	Rotated bool
}

// AuthenticateOptions relaxes the gate for specific routes.
type AuthenticateOptions struct {
	// AllowTwoFactorSetup admits privileged users who have not enrolled yet.
	AllowTwoFactorSetup bool
}

func (s *SessionService) maxAttempts() int {
	if s.MaxLoginAttempts > 0 {
		return s.MaxLoginAttempts
	}
	return DefaultMaxLoginAttempts
}

func (s *SessionService) lockDuration() time.Duration {
	if s.LockDuration > 0 {
		return s.LockDuration
	}
	return DefaultLockDuration
}

// burnHash spends the same work as a real verification so unknown emails
// answer in the same time as wrong passwords.
func (s *SessionService) burnHash(ctx context.Context, password string) {
	s.dummyOnce.Do(func() {
		h, err := s.Hasher.Hash(context.Background(), "vendorauth-timing-equaliser")
		if err == nil {
			s.dummyHash = h
		}
	})
	if s.dummyHash != "" {
		_ = s.Hasher.Verify(ctx, password, s.dummyHash)
	}
}

func (s *SessionService) issuePair(ctx context.Context, user domain.User, device domain.DeviceContext, now time.Time) (domain.TokenPair, error) {
	access, err := s.Tokens.IssueAccessToken(user, now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.Tokens.issueRefresh(ctx, s.Store, user.ID, device, now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return s.pair(access, refresh), nil
}

func (s *SessionService) pair(access, refresh string) domain.TokenPair {
	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.Tokens.accessTTL().Seconds()),
	}
}

// recordFailure counts a failed attempt and upgrades cause to
// ErrAccountLocked when this attempt tripped the lock.
func (s *SessionService) recordFailure(ctx context.Context, user domain.User, now time.Time, cause error) error {
	attempt, err := s.Store.Users().IncrementLoginAttempts(ctx, user.ID, now, s.maxAttempts(), s.lockDuration())
	if err != nil {
		return fmt.Errorf("record failed login: %w", err)
	}
	if attempt.LockUntil != nil && now.Before(*attempt.LockUntil) {
		slogx.FromContext(ctx).Warn("account locked",
			"user_id", user.ID,
			"attempts", attempt.Attempts,
			"lock_until", attempt.LockUntil,
		)
		s.Metrics.Login("locked")
		return ErrAccountLocked
	}
	s.Metrics.Login(strings.ToLower(Code(cause)))
	return cause
}

// Login checks credentials and the 2FA policy and issues a token pair.
func (s *SessionService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	now := nowFrom(s.Clock)
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.burnHash(ctx, req.Password)
			s.Metrics.Login("invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if user.IsLocked(now) {
		l.Warn("login attempt on locked account", "user_id", user.ID)
		s.Metrics.Login("locked")
		return nil, ErrAccountLocked
	}

	if err := s.Hasher.Verify(ctx, req.Password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			return nil, fmt.Errorf("verify password: %w", err)
		}
		return nil, s.recordFailure(ctx, user, now, ErrInvalidCredentials)
	}

	if !user.Active {
		s.Metrics.Login("inactive")
		return nil, ErrUserInactive
	}

	enrolled, err := s.TwoFactor.Enrolled(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		if strings.TrimSpace(req.TwoFactorCode) == "" {
			s.Metrics.Login("two_fa_required")
			return nil, ErrTwoFARequired
		}
		if err := s.TwoFactor.Verify(ctx, user.ID, req.TwoFactorCode); err != nil {
			if errors.Is(err, ErrInvalid2FAToken) {
				return nil, s.recordFailure(ctx, user, now, ErrInvalid2FAToken)
			}
			return nil, err
		}
	}

	if err := s.Store.Users().RecordLoginSuccess(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}
	user.LoginAttempts = 0
	user.LockUntil = nil
	user.LastLoginAt = &now

	pair, err := s.issuePair(ctx, user, req.Device, now)
	if err != nil {
		return nil, err
	}

	res := &LoginResult{
		TokenPair:              pair,
		User:                   user,
		TwoFactorSetupRequired: !enrolled && s.TwoFactor.RequiresEnrollment(user.Roles),
	}
	s.Metrics.Login("success")
	l.Info("login succeeded", "user_id", user.ID, "two_factor_setup_required", res.TwoFactorSetupRequired)
	return res, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string, device domain.DeviceContext) (*RefreshResult, error) {
	res, err := s.Tokens.RotateRefreshToken(ctx, refreshToken, device)
	if err != nil {
		s.Metrics.Refresh(strings.ToLower(Code(err)))
		return nil, err
	}
	if res.Rotated {
		s.Metrics.Refresh("rotated")
	} else {
		s.Metrics.Refresh("reused")
	}
	return &RefreshResult{
		TokenPair: s.pair(res.AccessToken, res.RefreshToken),
		Rotated:   res.Rotated,
	}, nil
}

// Logout revokes a single refresh token.
func (s *SessionService) Logout(ctx context.Context, refreshToken string) error {
	return s.Tokens.RevokeRefreshToken(ctx, refreshToken, domain.RevokeReasonLogout)
}

// LogoutAll ends every session of userID, access tokens included.
func (s *SessionService) LogoutAll(ctx context.Context, userID string) error {
	return s.Tokens.RevokeAllForUser(ctx, userID, domain.RevokeReasonLogoutAll)
}

// ChangePassword replaces the password of a signed-in user after checking
// the current one. Every session is ended and a fresh pair is issued for
// the calling device.
func (s *SessionService) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword string,
	device domain.DeviceContext,
) (*domain.TokenPair, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := s.Hasher.Verify(ctx, currentPassword, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if err := ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	hash, err := s.Hasher.Hash(ctx, newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := nowFrom(s.Clock)
	var revoked int64
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if user, err = tx.Users().UpdatePassword(ctx, userID, hash, now); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		revoked, user.TokenVersion, err = revokeAll(ctx, tx, userID, domain.RevokeReasonPasswordChange, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Metrics.Revoked(domain.RevokeReasonPasswordChange, revoked)

	if s.Notifier != nil {
		s.Notifier.Notify(ctx, notify.Notification{
			Kind:       notify.KindPasswordChanged,
			UserID:     user.ID,
			Email:      user.Email,
			OccurredAt: now,
		})
	}

	pair, err := s.issuePair(ctx, user, device, now)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// RequestPasswordReset issues a reset link if the account exists. The
// result never reveals whether it did.
func (s *SessionService) RequestPasswordReset(ctx context.Context, email string, device domain.DeviceContext) error {
	_, err := s.Verification.IssuePasswordReset(ctx, email, device)
	return err
}

func (s *SessionService) ResetPassword(ctx context.Context, token, newPassword string) error {
	_, err := s.Verification.ResetPassword(ctx, token, newPassword)
	return err
}

// VerifyEmail spends a verification token and marks the address verified.
func (s *SessionService) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.Verification.ConsumeEmailVerification(ctx, token)
	if err != nil {
		return err
	}
	if err := s.Store.Users().SetEmailVerified(ctx, userID, nowFrom(s.Clock)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		return fmt.Errorf("mark email verified: %w", err)
	}
	return nil
}

// ResendVerification issues a new verification link for an unverified user.
func (s *SessionService) ResendVerification(ctx context.Context, userID string) error {
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return ErrEmailAlreadyVerified
	}
	_, err = s.Verification.IssueEmailVerification(ctx, user.ID, user.Email)
	return err
}

func (s *SessionService) user(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *SessionService) SetupTwoFactor(ctx context.Context, userID string) (domain.TwoFactorSetup, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return domain.TwoFactorSetup{}, err
	}
	return s.TwoFactor.Setup(ctx, user)
}

func (s *SessionService) EnableTwoFactor(ctx context.Context, userID, code string) error {
	user, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	return s.TwoFactor.Enable(ctx, user, code)
}

func (s *SessionService) VerifyTwoFactor(ctx context.Context, userID, code string) error {
	return s.TwoFactor.Verify(ctx, userID, code)
}

func (s *SessionService) DisableTwoFactor(ctx context.Context, userID, code string) error {
	return s.TwoFactor.Disable(ctx, userID, code)
}

func (s *SessionService) RegenerateBackupCodes(ctx context.Context, userID, code string) ([]string, error) {
	return s.TwoFactor.RegenerateBackupCodes(ctx, userID, code)
}

func (s *SessionService) TwoFactorStatus(ctx context.Context, userID string) (domain.TwoFactorStatus, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return domain.TwoFactorStatus{}, err
	}
	return s.TwoFactor.Status(ctx, user)
}

// Authenticate resolves a bearer access token to the caller's identity. The
// token must verify, its owner must be active, and its version must match
// the stored one. Privileged users without 2FA are refused unless opts
// allows the enrollment routes.
func (s *SessionService) Authenticate(ctx context.Context, raw string, opts AuthenticateOptions) (domain.Identity, error) {
	if raw == "" {
		return domain.Identity{}, ErrMissingToken
	}

	claims, err := s.Tokens.VerifyAccessToken(raw)
	if err != nil {
		return domain.Identity{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Identity{}, ErrInvalidToken
		}
		return domain.Identity{}, fmt.Errorf("load user: %w", err)
	}
	if !user.Active {
		return domain.Identity{}, ErrUserInactive
	}
	if claims.TokenVersion != user.TokenVersion {
		return domain.Identity{}, ErrTokenRevoked
	}
	if user.PasswordChangedAt != nil && claims.IssuedAt.Before(user.PasswordChangedAt.Truncate(time.Second)) {
		return domain.Identity{}, ErrTokenRevoked
	}

	id := domain.Identity{
		UserID:        user.ID,
		Email:         user.Email,
		Roles:         user.Roles,
		EmailVerified: user.EmailVerified,
		TokenVersion:  user.TokenVersion,
	}

	if s.TwoFactor.RequiresEnrollment(user.Roles) {
		enrolled, err := s.TwoFactor.Enrolled(ctx, user.ID)
		if err != nil {
			return domain.Identity{}, err
		}
		if !enrolled {
			if !opts.AllowTwoFactorSetup {
				return domain.Identity{}, ErrTwoFASetupRequired
			}
			id.TwoFactorPending = true
		}
	}
	return id, nil
}
