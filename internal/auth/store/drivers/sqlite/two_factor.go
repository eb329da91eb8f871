package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store/drivers/sqlite/gen"
)

type twoFactorRepo struct {
	q *gen.Queries
}

func (r *twoFactorRepo) GetTwoFactor(ctx context.Context, userID string) (domain.TwoFactorAuth, error) {
	row, err := r.q.GetTwoFactor(ctx, userID)
	if err != nil {
		return domain.TwoFactorAuth{}, mapNotFound(err)
	}
	codes, err := r.q.ListBackupCodes(ctx, userID)
	if err != nil {
		return domain.TwoFactorAuth{}, err
	}
	return mapTwoFactor(row, codes), nil
}

func (r *twoFactorRepo) UpsertPendingTwoFactor(
	ctx context.Context,
	userID, secret string,
	codeHashes []string,
	now time.Time,
) error {
	err := r.q.UpsertPendingTwoFactor(ctx, gen.UpsertPendingTwoFactorParams{
		UserID: userID,
		Secret: secret,
		Now:    now.UTC(),
	})
	if err != nil {
		return err
	}
	return r.ReplaceBackupCodes(ctx, userID, codeHashes)
}

func (r *twoFactorRepo) EnableTwoFactor(ctx context.Context, userID string, now time.Time) error {
	return requireRows(r.q.EnableTwoFactor(ctx, gen.EnableTwoFactorParams{
		Now:    now.UTC(),
		UserID: userID,
	}))
}

func (r *twoFactorRepo) TouchTwoFactor(ctx context.Context, userID string, now time.Time) error {
	return r.q.TouchTwoFactor(ctx, gen.TouchTwoFactorParams{
		Now:    now.UTC(),
		UserID: userID,
	})
}

func (r *twoFactorRepo) ConsumeBackupCode(ctx context.Context, userID, codeHash string, now time.Time) error {
	return requireRows(r.q.ConsumeBackupCode(ctx, gen.ConsumeBackupCodeParams{
		UsedAt:   mapTimeNull(now),
		UserID:   userID,
		CodeHash: codeHash,
	}))
}

func (r *twoFactorRepo) ReplaceBackupCodes(ctx context.Context, userID string, codeHashes []string) error {
	if err := r.q.DeleteBackupCodes(ctx, userID); err != nil {
		return err
	}
	for i, h := range codeHashes {
		err := r.q.CreateBackupCode(ctx, gen.CreateBackupCodeParams{
			UserID:   userID,
			Position: int64(i),
			CodeHash: h,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *twoFactorRepo) DeleteTwoFactor(ctx context.Context, userID string) error {
	return requireRows(r.q.DeleteTwoFactor(ctx, userID))
}
