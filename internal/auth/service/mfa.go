package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/notify"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store"
	"github.com/aussiebroadwan/vendorauth/pkg/cryptox"
	"github.com/aussiebroadwan/vendorauth/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	backupCodeCount = 10
	totpPeriod      = 30
	totpSkew        = 2
)

// TwoFactorService manages TOTP enrollment and verification. An enrollment
// moves from not configured to pending on Setup and to enabled on Enable;
// it only verifies codes once enabled.
type TwoFactorService struct {
	Store    store.Store
	Issuer   string // shown in authenticator apps
	Notifier notify.Notifier

	Clock Clock
	Rand  io.Reader
}

// RequiresEnrollment reports whether roles make 2FA mandatory.
func (s *TwoFactorService) RequiresEnrollment(roles domain.Roles) bool {
	return roles.Privileged()
}

func (s *TwoFactorService) validateTOTP(code, secret string, now time.Time) bool {
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, now, totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

func (s *TwoFactorService) backupCodes() ([]string, []string, error) {
	r := randFrom(s.Rand)
	codes := make([]string, backupCodeCount)
	hashes := make([]string, backupCodeCount)
	for i := range codes {
		c, err := cryptox.GenerateBackupCode(r)
		if err != nil {
			return nil, nil, err
		}
		codes[i] = c
		hashes[i] = cryptox.FingerprintBackupCode(c)
	}
	return codes, hashes, nil
}

func (s *TwoFactorService) load(ctx context.Context, userID string) (*domain.TwoFactorAuth, error) {
	tf, err := s.Store.TwoFactor().GetTwoFactor(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load two-factor: %w", err)
	}
	return &tf, nil
}

// Setup generates a fresh secret and ten backup codes in the pending state.
// Re-running it before Enable replaces the pending secret; an enabled
// enrollment must be disabled first.
func (s *TwoFactorService) Setup(ctx context.Context, user domain.User) (domain.TwoFactorSetup, error) {
	tf, err := s.load(ctx, user.ID)
	if err != nil {
		return domain.TwoFactorSetup{}, err
	}
	if tf.State() == domain.TwoFactorEnabled {
		return domain.TwoFactorSetup{}, ErrTwoFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Email,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
		Rand:        randFrom(s.Rand),
	})
	if err != nil {
		return domain.TwoFactorSetup{}, fmt.Errorf("generate totp key: %w", err)
	}

	codes, hashes, err := s.backupCodes()
	if err != nil {
		return domain.TwoFactorSetup{}, err
	}

	if err := s.Store.TwoFactor().UpsertPendingTwoFactor(ctx, user.ID, key.Secret(), hashes, nowFrom(s.Clock)); err != nil {
		return domain.TwoFactorSetup{}, fmt.Errorf("store pending two-factor: %w", err)
	}

	return domain.TwoFactorSetup{
		Secret:      key.Secret(),
		OTPAuthURL:  key.URL(),
		BackupCodes: codes,
		Required:    s.RequiresEnrollment(user.Roles),
	}, nil
}

// Enable activates a pending enrollment once code proves the authenticator
// is in sync.
func (s *TwoFactorService) Enable(ctx context.Context, user domain.User, code string) error {
	now := nowFrom(s.Clock)

	tf, err := s.load(ctx, user.ID)
	if err != nil {
		return err
	}
	switch tf.State() {
	case domain.TwoFactorNotConfigured:
		return ErrTwoFANotSetup
	case domain.TwoFactorEnabled:
		return ErrTwoFAAlreadyEnabled
	}

	if !s.validateTOTP(code, tf.Secret, now) {
		slogx.FromContext(ctx).Warn("two-factor enable rejected code", "user_id", user.ID)
		return ErrInvalid2FAToken
	}

	if err := s.Store.TwoFactor().EnableTwoFactor(ctx, user.ID, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTwoFANotSetup
		}
		return fmt.Errorf("enable two-factor: %w", err)
	}

	if s.Notifier != nil {
		s.Notifier.Notify(ctx, notify.Notification{
			Kind:       notify.KindTwoFactorEnabled,
			UserID:     user.ID,
			Email:      user.Email,
			OccurredAt: now,
		})
	}
	return nil
}

// Verify accepts either a current TOTP code or an unused backup code. A
// matched backup code is spent.
func (s *TwoFactorService) Verify(ctx context.Context, userID, code string) error {
	now := nowFrom(s.Clock)
	l := slogx.FromContext(ctx)

	tf, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if tf.State() != domain.TwoFactorEnabled {
		return ErrTwoFANotEnabled
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvalid2FAToken
	}

	if s.validateTOTP(code, tf.Secret, now) {
		return s.touch(ctx, userID, now)
	}

	err = s.Store.TwoFactor().ConsumeBackupCode(ctx, userID, cryptox.FingerprintBackupCode(code), now)
	switch {
	case err == nil:
		l.Info("backup code used", "user_id", userID, "remaining", tf.RemainingBackupCodes()-1)
		return s.touch(ctx, userID, now)
	case errors.Is(err, store.ErrNotFound):
		l.Warn("two-factor verification failed", "user_id", userID)
		return ErrInvalid2FAToken
	default:
		return fmt.Errorf("consume backup code: %w", err)
	}
}

func (s *TwoFactorService) touch(ctx context.Context, userID string, now time.Time) error {
	if err := s.Store.TwoFactor().TouchTwoFactor(ctx, userID, now); err != nil {
		return fmt.Errorf("touch two-factor: %w", err)
	}
	return nil
}

// Disable removes the enrollment after a successful Verify.
func (s *TwoFactorService) Disable(ctx context.Context, userID, code string) error {
	if err := s.Verify(ctx, userID, code); err != nil {
		return err
	}
	if err := s.Store.TwoFactor().DeleteTwoFactor(ctx, userID); err != nil {
		return fmt.Errorf("delete two-factor: %w", err)
	}
	slogx.FromContext(ctx).Warn("two-factor disabled", "user_id", userID)
	return nil
}

// RegenerateBackupCodes replaces every backup code. It requires a TOTP code
// so a stolen backup code cannot mint more.
func (s *TwoFactorService) RegenerateBackupCodes(ctx context.Context, userID, code string) ([]string, error) {
	tf, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tf.State() != domain.TwoFactorEnabled {
		return nil, ErrTwoFANotEnabled
	}
	if !s.validateTOTP(code, tf.Secret, nowFrom(s.Clock)) {
		return nil, ErrInvalid2FAToken
	}

	codes, hashes, err := s.backupCodes()
	if err != nil {
		return nil, err
	}
	if err := s.Store.TwoFactor().ReplaceBackupCodes(ctx, userID, hashes); err != nil {
		return nil, fmt.Errorf("replace backup codes: %w", err)
	}
	return codes, nil
}

// Status summarises the user's enrollment.
func (s *TwoFactorService) Status(ctx context.Context, user domain.User) (domain.TwoFactorStatus, error) {
	tf, err := s.load(ctx, user.ID)
	if err != nil {
		return domain.TwoFactorStatus{}, err
	}
	st := domain.TwoFactorStatus{
		State:    tf.State(),
		Required: s.RequiresEnrollment(user.Roles),
	}
	if tf != nil {
		st.EnabledAt = tf.EnabledAt
		st.RemainingBackupCodes = tf.RemainingBackupCodes()
	}
	return st, nil
}

// Enrolled reports whether userID has an enabled enrollment.
func (s *TwoFactorService) Enrolled(ctx context.Context, userID string) (bool, error) {
	tf, err := s.load(ctx, userID)
	if err != nil {
		return false, err
	}
	return tf.State() == domain.TwoFactorEnabled, nil
}
