package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store"
	"github.com/aussiebroadwan/vendorauth/pkg/cryptox"
	"github.com/aussiebroadwan/vendorauth/pkg/idx"
	"github.com/aussiebroadwan/vendorauth/pkg/slogx"
)

// BootstrapService creates the first administrator on an empty store.
type BootstrapService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
	Token  string // pre-configured bootstrap token; empty disables bootstrap
	Clock  Clock
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates a verified elika_admin and returns its ID.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req domain.BootstrapData) (string, error) {
	l := slogx.FromContext(ctx)

	if s.Token == "" {
		return "", ErrBootstrapDisabled
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return "", ErrBootstrapUnauthorized
	}

	if bootstrapped, err := s.IsBootstrapped(ctx); err != nil {
		return "", fmt.Errorf("check bootstrap state: %w", err)
	} else if bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return "", ErrBootstrapAlready
	}

	email, err := normalizeAddress(req.AdminEmail)
	if err != nil {
		return "", err
	}
	if err := ValidatePassword(req.AdminPassword); err != nil {
		return "", err
	}

	passHash, err := s.Hasher.Hash(ctx, req.AdminPassword)
	if err != nil {
		l.Error("failed to hash admin password", slog.Any("error", err))
		return "", fmt.Errorf("hash admin password: %w", err)
	}

	now := nowFrom(s.Clock)
	adminID := idx.NewString()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// re-checked inside the transaction so two racing calls cannot both win
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrBootstrapAlready
		}
		return tx.Users().CreateUser(ctx, domain.User{
			ID:            adminID,
			Email:         email,
			PasswordHash:  passHash,
			Roles:         domain.Roles{domain.MustRole(domain.RoleElikaAdmin, "")},
			Active:        true,
			EmailVerified: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	})
	if err != nil {
		if errors.Is(err, ErrBootstrapAlready) {
			return "", err
		}
		l.Error("failed to create admin user", slog.Any("error", err))
		return "", fmt.Errorf("create admin user: %w", err)
	}

	l.Info("successfully bootstrapped system", slog.String("admin_user_id", adminID))
	return adminID, nil
}
