package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/notify"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store"
	"github.com/aussiebroadwan/vendorauth/pkg/cryptox"
	"github.com/aussiebroadwan/vendorauth/pkg/idx"
	"github.com/aussiebroadwan/vendorauth/pkg/slogx"
)

const (
	DefaultVerifyTTL = 24 * time.Hour
	DefaultResetTTL  = time.Hour
)

// VerificationService issues and consumes single-use email verification
// and password reset tokens. Only one token per user per purpose is
// outstanding at a time.
type VerificationService struct {
	Store    store.Store
	Tokens   *TokenService
	Hasher   *cryptox.Hasher
	Notifier notify.Notifier

	// BaseURL is the portal origin used to build links.
	BaseURL string

	VerifyTTL time.Duration
	ResetTTL  time.Duration

	Clock Clock
	Rand  io.Reader
}

// PasswordReset is an issued reset token and the account it belongs to.
type PasswordReset struct {
	Token     string
	User      domain.User
	ExpiresAt time.Time
}

func (s *VerificationService) verifyTTL() time.Duration {
	if s.VerifyTTL > 0 {
		return s.VerifyTTL
	}
	return DefaultVerifyTTL
}

func (s *VerificationService) resetTTL() time.Duration {
	if s.ResetTTL > 0 {
		return s.ResetTTL
	}
	return DefaultResetTTL
}

func (s *VerificationService) link(path, token string) string {
	return strings.TrimRight(s.BaseURL, "/") + path + "?token=" + url.QueryEscape(token)
}

func (s *VerificationService) notify(ctx context.Context, n notify.Notification) {
	if s.Notifier != nil {
		s.Notifier.Notify(ctx, n)
	}
}

// IssueEmailVerification replaces any outstanding verification token for
// userID with a new 24-hour token and dispatches the link.
func (s *VerificationService) IssueEmailVerification(ctx context.Context, userID, email string) (string, error) {
	now := nowFrom(s.Clock)

	token, err := cryptox.GenerateTokenFrom(randFrom(s.Rand), cryptox.TokenSize256)
	if err != nil {
		return "", err
	}
	expires := now.Add(s.verifyTTL())

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.EmailVerifications().DeleteUserEmailVerifications(ctx, userID); err != nil {
			return fmt.Errorf("delete prior verifications: %w", err)
		}
		return tx.EmailVerifications().CreateEmailVerification(ctx, domain.EmailVerificationToken{
			ID:        idx.NewString(),
			UserID:    userID,
			Email:     domain.NormalizeEmail(email),
			TokenHash: cryptox.FingerprintToken(token),
			ExpiresAt: expires,
			CreatedAt: now,
		})
	})
	if err != nil {
		return "", fmt.Errorf("issue email verification: %w", err)
	}

	s.notify(ctx, notify.Notification{
		Kind:       notify.KindEmailVerification,
		UserID:     userID,
		Email:      email,
		Link:       s.link("/verify-email", token),
		ExpiresAt:  &expires,
		OccurredAt: now,
	})
	return token, nil
}

// ConsumeEmailVerification spends token and returns its owner.
func (s *VerificationService) ConsumeEmailVerification(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidVerificationToken
	}
	t, err := s.Store.EmailVerifications().ConsumeEmailVerification(ctx, cryptox.FingerprintToken(token), nowFrom(s.Clock))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidVerificationToken
		}
		return "", fmt.Errorf("consume email verification: %w", err)
	}
	return t.UserID, nil
}

// IssuePasswordReset issues a one-hour reset token for the account behind
// email. It returns nil, nil when there is no such active account so the
// caller cannot tell the difference.
func (s *VerificationService) IssuePasswordReset(ctx context.Context, email string, device domain.DeviceContext) (*PasswordReset, error) {
	now := nowFrom(s.Clock)
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("password reset requested for unknown email")
			return nil, nil
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.Active {
		l.Info("password reset requested for inactive user", "user_id", user.ID)
		return nil, nil
	}

	token, err := cryptox.GenerateTokenFrom(randFrom(s.Rand), cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	expires := now.Add(s.resetTTL())

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.PasswordResets().DeleteUserPasswordResets(ctx, user.ID); err != nil {
			return fmt.Errorf("delete prior resets: %w", err)
		}
		return tx.PasswordResets().CreatePasswordReset(ctx, domain.PasswordResetToken{
			ID:        idx.NewString(),
			UserID:    user.ID,
			Email:     user.Email,
			TokenHash: cryptox.FingerprintToken(token),
			IPAddress: device.IPAddress,
			UserAgent: device.UserAgent,
			ExpiresAt: expires,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("issue password reset: %w", err)
	}

	s.notify(ctx, notify.Notification{
		Kind:       notify.KindPasswordReset,
		UserID:     user.ID,
		Email:      user.Email,
		Link:       s.link("/reset-password", token),
		ExpiresAt:  &expires,
		OccurredAt: now,
	})
	return &PasswordReset{Token: token, User: user, ExpiresAt: expires}, nil
}

// ConsumePasswordReset spends token and returns the reset record.
func (s *VerificationService) ConsumePasswordReset(ctx context.Context, token string) (domain.PasswordResetToken, error) {
	return s.consumeReset(ctx, s.Store, token, nowFrom(s.Clock))
}

func (s *VerificationService) consumeReset(ctx context.Context, st store.Store, token string, now time.Time) (domain.PasswordResetToken, error) {
	if token == "" {
		return domain.PasswordResetToken{}, ErrInvalidResetToken
	}
	t, err := st.PasswordResets().ConsumePasswordReset(ctx, cryptox.FingerprintToken(token), now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PasswordResetToken{}, ErrInvalidResetToken
		}
		return domain.PasswordResetToken{}, fmt.Errorf("consume password reset: %w", err)
	}
	return t, nil
}

// ResetPassword spends token, stores the new password and ends every
// session of the account.
func (s *VerificationService) ResetPassword(ctx context.Context, token, newPassword string) (domain.User, error) {
	if err := ValidatePassword(newPassword); err != nil {
		return domain.User{}, err
	}

	hash, err := s.Hasher.Hash(ctx, newPassword)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := nowFrom(s.Clock)
	var (
		user    domain.User
		revoked int64
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		reset, err := s.consumeReset(ctx, tx, token, now)
		if err != nil {
			return err
		}
		if user, err = tx.Users().UpdatePassword(ctx, reset.UserID, hash, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidResetToken
			}
			return fmt.Errorf("update password: %w", err)
		}
		revoked, user.TokenVersion, err = revokeAll(ctx, tx, user.ID, domain.RevokeReasonPasswordReset, now)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	if s.Tokens != nil {
		s.Tokens.Metrics.Revoked(domain.RevokeReasonPasswordReset, revoked)
	}
	slogx.FromContext(ctx).Warn("password reset completed", "user_id", user.ID, "refresh_tokens_revoked", revoked)

	s.notify(ctx, notify.Notification{
		Kind:       notify.KindPasswordChanged,
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: now,
	})
	return user, nil
}
