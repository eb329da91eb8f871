package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store"
	"github.com/aussiebroadwan/vendorauth/pkg/cryptox"
	"github.com/aussiebroadwan/vendorauth/pkg/idx"
	"github.com/aussiebroadwan/vendorauth/pkg/slogx"
)

// UserService covers account administration. Passwords are hashed here,
// once, before the row is written.
type UserService struct {
	Store        store.Store
	Hasher       *cryptox.Hasher
	Tokens       *TokenService
	Verification *VerificationService
	Clock        Clock
}

type RegisterRequest struct {
	Email    string
	Password string
	Roles    domain.Roles
}

// Register creates an active, unverified account and sends the
// verification link.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (domain.User, error) {
	email, err := normalizeAddress(req.Email)
	if err != nil {
		return domain.User{}, err
	}
	if err := ValidatePassword(req.Password); err != nil {
		return domain.User{}, err
	}
	roles := req.Roles.Dedupe()
	if len(roles) == 0 {
		return domain.User{}, fmt.Errorf("%w: at least one role is required", ErrInvalidRequest)
	}

	hash, err := s.Hasher.Hash(ctx, req.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := nowFrom(s.Clock)
	user := domain.User{
		ID:           idx.NewString(),
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, user)
	}); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", user.ID, "roles", len(roles))

	if s.Verification != nil {
		if _, err := s.Verification.IssueEmailVerification(ctx, user.ID, user.Email); err != nil {
			return domain.User{}, err
		}
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// SetRoles replaces the user's role assignments.
func (s *UserService) SetRoles(ctx context.Context, userID string, roles domain.Roles) (domain.User, error) {
	roles = roles.Dedupe()
	if len(roles) == 0 {
		return domain.User{}, fmt.Errorf("%w: at least one role is required", ErrInvalidRequest)
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().ReplaceRoles(ctx, userID, roles, nowFrom(s.Clock))
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("replace roles: %w", err)
	}

	slogx.FromContext(ctx).Info("user roles replaced", "user_id", userID, "roles", roles)
	return s.Get(ctx, userID)
}

// Deactivate disables the account and ends all of its sessions.
func (s *UserService) Deactivate(ctx context.Context, userID string) error {
	now := nowFrom(s.Clock)
	var revoked int64
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().SetActive(ctx, userID, false, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("deactivate user: %w", err)
		}
		var err error
		revoked, _, err = revokeAll(ctx, tx, userID, domain.RevokeReasonDeactivated, now)
		return err
	})
	if err != nil {
		return err
	}
	if s.Tokens != nil {
		s.Tokens.Metrics.Revoked(domain.RevokeReasonDeactivated, revoked)
	}
	slogx.FromContext(ctx).Warn("user deactivated", "user_id", userID, "refresh_tokens_revoked", revoked)
	return nil
}

func (s *UserService) Activate(ctx context.Context, userID string) error {
	if err := s.Store.Users().SetActive(ctx, userID, true, nowFrom(s.Clock)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("activate user: %w", err)
	}
	slogx.FromContext(ctx).Info("user activated", "user_id", userID)
	return nil
}
