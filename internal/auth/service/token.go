package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/metrics"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store"
	"github.com/aussiebroadwan/vendorauth/pkg/cryptox"
	"github.com/aussiebroadwan/vendorauth/pkg/idx"
	"github.com/aussiebroadwan/vendorauth/pkg/jwtx"
	"github.com/aussiebroadwan/vendorauth/pkg/slogx"
)

// DefaultRotationAge is how old a refresh token must be before an exchange
// replaces it.
const DefaultRotationAge = 24 * time.Hour

// TokenService mints and verifies access tokens and manages the lifecycle
// of opaque refresh tokens.
type TokenService struct {
	KeyManager *jwtx.KeyManager
	Store      store.Store
	Issuer     string

	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	RotationAge time.Duration

	Clock   Clock
	Rand    io.Reader
	Metrics *metrics.Auth
}

// AccessIdentity is what a verified access token asserts.
type AccessIdentity struct {
	UserID       string
	TokenVersion int64
	IssuedAt     time.Time
}

// RotationResult is the outcome of exchanging a refresh token.
type RotationResult struct {
	AccessToken  string
	RefreshToken string
	// Rotated is false when the presented refresh token is handed back.
	Rotated bool
	User    domain.User
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

func (s *TokenService) rotationAge() time.Duration {
	if s.RotationAge > 0 {
		return s.RotationAge
	}
	return DefaultRotationAge
}

// IssueAccessToken signs an access token for user carrying its current
// token version.
func (s *TokenService) IssueAccessToken(user domain.User, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(user.ID, user.Email, user.TokenVersion, s.Issuer, s.accessTTL(), now)
	token, err := s.KeyManager.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

// VerifyAccessToken checks signature, issuer and expiry. It does not
// consult storage.
func (s *TokenService) VerifyAccessToken(raw string) (AccessIdentity, error) {
	claims, err := s.KeyManager.Verify(raw)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return AccessIdentity{}, ErrTokenExpired
		}
		return AccessIdentity{}, ErrInvalidToken
	}

	id := AccessIdentity{
		UserID:       claims.Subject,
		TokenVersion: claims.TokenVersion,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	return id, nil
}

// IssueRefreshToken stores a new 512-bit refresh token for userID and
// returns its plaintext value.
func (s *TokenService) IssueRefreshToken(ctx context.Context, userID string, device domain.DeviceContext) (string, error) {
	return s.issueRefresh(ctx, s.Store, userID, device, nowFrom(s.Clock))
}

func (s *TokenService) issueRefresh(
	ctx context.Context,
	st store.Store,
	userID string,
	device domain.DeviceContext,
	now time.Time,
) (string, error) {
	raw, err := cryptox.GenerateTokenFrom(randFrom(s.Rand), cryptox.TokenSize512)
	if err != nil {
		return "", err
	}

	err = st.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.NewString(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(raw),
		Device:    device,
		ExpiresAt: now.Add(s.refreshTTL()),
		CreatedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}
	return raw, nil
}

// RotateRefreshToken exchanges a live refresh token for a new access token.
// The refresh token itself is replaced only once it is older than
// RotationAge; younger tokens are returned unchanged.
func (s *TokenService) RotateRefreshToken(ctx context.Context, raw string, device domain.DeviceContext) (RotationResult, error) {
	now := nowFrom(s.Clock)
	l := slogx.FromContext(ctx)

	if raw == "" {
		return RotationResult{}, ErrInvalidRefreshToken
	}
	hash := cryptox.FingerprintToken(raw)

	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return RotationResult{}, ErrInvalidRefreshToken
		}
		return RotationResult{}, fmt.Errorf("load refresh token: %w", err)
	}
	if !rt.IsLive(now) {
		if rt.Revoked && rt.RevokedReason == domain.RevokeReasonRotated {
			l.Warn("rotated refresh token presented again", "user_id", rt.UserID, "token_id", rt.ID)
		}
		return RotationResult{}, ErrInvalidRefreshToken
	}

	user, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return RotationResult{}, ErrInvalidRefreshToken
		}
		return RotationResult{}, fmt.Errorf("load user: %w", err)
	}
	if !user.Active {
		return RotationResult{}, ErrUserInactive
	}

	if err := s.Store.RefreshTokens().TouchRefreshToken(ctx, rt.ID, now); err != nil {
		return RotationResult{}, fmt.Errorf("touch refresh token: %w", err)
	}

	access, err := s.IssueAccessToken(user, now)
	if err != nil {
		return RotationResult{}, err
	}

	res := RotationResult{AccessToken: access, RefreshToken: raw, User: user}
	if now.Sub(rt.CreatedAt) <= s.rotationAge() {
		return res, nil
	}

	if err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, hash, domain.RevokeReasonRotated, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// lost a race with a concurrent exchange or logout
			return RotationResult{}, ErrInvalidRefreshToken
		}
		return RotationResult{}, fmt.Errorf("revoke rotated refresh token: %w", err)
	}
	s.Metrics.Revoked(domain.RevokeReasonRotated, 1)

	if device == (domain.DeviceContext{}) {
		device = rt.Device
	}
	next, err := s.issueRefresh(ctx, s.Store, user.ID, device, now)
	if err != nil {
		return RotationResult{}, err
	}

	res.RefreshToken = next
	res.Rotated = true
	return res, nil
}

// RevokeRefreshToken revokes a single live refresh token.
func (s *TokenService) RevokeRefreshToken(ctx context.Context, raw, reason string) error {
	if raw == "" {
		return ErrInvalidRefreshToken
	}
	err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(raw), reason, nowFrom(s.Clock))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidRefreshToken
		}
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	s.Metrics.Revoked(reason, 1)
	return nil
}

// RevokeAllForUser revokes every live refresh token of userID and bumps its
// token version, which invalidates all outstanding access tokens.
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID, reason string) error {
	now := nowFrom(s.Clock)
	var n int64
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		n, _, err = revokeAll(ctx, tx, userID, reason, now)
		return err
	})
	if err != nil {
		return err
	}
	s.Metrics.Revoked(reason, n)
	slogx.FromContext(ctx).Warn("revoked all sessions", "user_id", userID, "reason", reason, "refresh_tokens", n)
	return nil
}

// revokeAll runs inside the caller's transaction. It returns the number of
// refresh tokens revoked and the user's new token version.
func revokeAll(ctx context.Context, st store.Store, userID, reason string, now time.Time) (int64, int64, error) {
	n, err := st.RefreshTokens().RevokeAllUserRefreshTokens(ctx, userID, reason, now)
	if err != nil {
		return 0, 0, fmt.Errorf("revoke refresh tokens: %w", err)
	}
	version, err := st.Users().IncrementTokenVersion(ctx, userID, now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, 0, ErrUserNotFound
		}
		return 0, 0, fmt.Errorf("increment token version: %w", err)
	}
	return n, version, nil
}

// ListSessions returns userID's live refresh tokens, newest first.
func (s *TokenService) ListSessions(ctx context.Context, userID string) ([]domain.RefreshToken, error) {
	return s.Store.RefreshTokens().ListLiveRefreshTokens(ctx, userID, nowFrom(s.Clock))
}

// RevokeSession ends one of userID's sessions by refresh token ID.
func (s *TokenService) RevokeSession(ctx context.Context, userID, sessionID string) error {
	err := s.Store.RefreshTokens().RevokeRefreshTokenByID(ctx, userID, sessionID, domain.RevokeReasonSessionEnded, nowFrom(s.Clock))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("revoke session: %w", err)
	}
	s.Metrics.Revoked(domain.RevokeReasonSessionEnded, 1)
	return nil
}
