package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store/drivers/sqlite/gen"
)

type refreshTokensRepo struct {
	q *gen.Queries
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	err := r.q.CreateRefreshToken(ctx, gen.CreateRefreshTokenParams{
		ID:        t.ID,
		UserID:    t.UserID,
		TokenHash: t.TokenHash,
		UserAgent: t.Device.UserAgent,
		IpAddress: t.Device.IPAddress,
		DeviceID:  t.Device.DeviceID,
		ExpiresAt: t.ExpiresAt.UTC(),
		CreatedAt: t.CreatedAt.UTC(),
	})
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(
	ctx context.Context,
	hash string,
) (domain.RefreshToken, error) {
	row, err := r.q.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return mapRefreshToken(row), nil
}

func (r *refreshTokensRepo) TouchRefreshToken(ctx context.Context, id string, now time.Time) error {
	return r.q.TouchRefreshToken(ctx, gen.TouchRefreshTokenParams{
		LastUsedAt: mapTimeNull(now),
		ID:         id,
	})
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash, reason string, now time.Time) error {
	return requireRows(r.q.RevokeRefreshToken(ctx, gen.RevokeRefreshTokenParams{
		RevokedReason: mapStringNull(reason),
		RevokedAt:     mapTimeNull(now),
		TokenHash:     hash,
	}))
}

func (r *refreshTokensRepo) RevokeRefreshTokenByID(ctx context.Context, userID, id, reason string, now time.Time) error {
	return requireRows(r.q.RevokeRefreshTokenByID(ctx, gen.RevokeRefreshTokenByIDParams{
		RevokedReason: mapStringNull(reason),
		RevokedAt:     mapTimeNull(now),
		ID:            id,
		UserID:        userID,
	}))
}

func (r *refreshTokensRepo) RevokeAllUserRefreshTokens(
	ctx context.Context,
	userID, reason string,
	now time.Time,
) (int64, error) {
	return r.q.RevokeAllUserRefreshTokens(ctx, gen.RevokeAllUserRefreshTokensParams{
		RevokedReason: mapStringNull(reason),
		RevokedAt:     mapTimeNull(now),
		UserID:        userID,
	})
}

func (r *refreshTokensRepo) ListLiveRefreshTokens(
	ctx context.Context,
	userID string,
	now time.Time,
) ([]domain.RefreshToken, error) {
	rows, err := r.q.ListLiveRefreshTokens(ctx, gen.ListLiveRefreshTokensParams{
		UserID: userID,
		Now:    now.UTC(),
	})
	if err != nil {
		return nil, err
	}

	tokens := make([]domain.RefreshToken, len(rows))
	for i, row := range rows {
		tokens[i] = mapRefreshToken(row)
	}
	return tokens, nil
}

func (r *refreshTokensRepo) DeleteStaleRefreshTokens(ctx context.Context, now, revokedBefore time.Time) (int64, error) {
	return r.q.DeleteStaleRefreshTokens(ctx, gen.DeleteStaleRefreshTokensParams{
		Now:           now.UTC(),
		RevokedBefore: revokedBefore.UTC(),
	})
}
