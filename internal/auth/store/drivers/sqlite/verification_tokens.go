package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store/drivers/sqlite/gen"
)

type emailVerificationsRepo struct {
	q *gen.Queries
}

func (r *emailVerificationsRepo) DeleteUserEmailVerifications(ctx context.Context, userID string) error {
	return r.q.DeleteUserEmailVerificationTokens(ctx, userID)
}

func (r *emailVerificationsRepo) CreateEmailVerification(ctx context.Context, t domain.EmailVerificationToken) error {
	err := r.q.CreateEmailVerificationToken(ctx, gen.CreateEmailVerificationTokenParams{
		ID:        t.ID,
		UserID:    t.UserID,
		Email:     t.Email,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt.UTC(),
		CreatedAt: t.CreatedAt.UTC(),
	})
	return mapConstraint(err)
}

func (r *emailVerificationsRepo) ConsumeEmailVerification(
	ctx context.Context,
	hash string,
	now time.Time,
) (domain.EmailVerificationToken, error) {
	row, err := r.q.ConsumeEmailVerificationToken(ctx, gen.ConsumeEmailVerificationTokenParams{
		Now:       now.UTC(),
		TokenHash: hash,
	})
	if err != nil {
		return domain.EmailVerificationToken{}, mapNotFound(err)
	}
	return mapEmailVerification(row), nil
}

func (r *emailVerificationsRepo) DeleteStaleEmailVerifications(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteStaleEmailVerificationTokens(ctx, now.UTC())
}

type passwordResetsRepo struct {
	q *gen.Queries
}

func (r *passwordResetsRepo) DeleteUserPasswordResets(ctx context.Context, userID string) error {
	return r.q.DeleteUserPasswordResetTokens(ctx, userID)
}

func (r *passwordResetsRepo) CreatePasswordReset(ctx context.Context, t domain.PasswordResetToken) error {
	err := r.q.CreatePasswordResetToken(ctx, gen.CreatePasswordResetTokenParams{
		ID:        t.ID,
		UserID:    t.UserID,
		Email:     t.Email,
		TokenHash: t.TokenHash,
		IpAddress: t.IPAddress,
		UserAgent: t.UserAgent,
		ExpiresAt: t.ExpiresAt.UTC(),
		CreatedAt: t.CreatedAt.UTC(),
	})
	return mapConstraint(err)
}

func (r *passwordResetsRepo) ConsumePasswordReset(
	ctx context.Context,
	hash string,
	now time.Time,
) (domain.PasswordResetToken, error) {
	row, err := r.q.ConsumePasswordResetToken(ctx, gen.ConsumePasswordResetTokenParams{
		Now:       now.UTC(),
		TokenHash: hash,
	})
	if err != nil {
		return domain.PasswordResetToken{}, mapNotFound(err)
	}
	return mapPasswordReset(row), nil
}

func (r *passwordResetsRepo) DeleteStalePasswordResets(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteStalePasswordResetTokens(ctx, now.UTC())
}
