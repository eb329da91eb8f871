package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q *gen.Queries
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return r.withRoles(ctx, row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row, err := r.q.GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return r.withRoles(ctx, row)
}

func (r *usersRepo) withRoles(ctx context.Context, row gen.User) (domain.User, error) {
	roles, err := r.q.ListUserRoles(ctx, row.ID)
	if err != nil {
		return domain.User{}, err
	}
	return mapUser(row, roles)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	err := r.q.CreateUser(ctx, gen.CreateUserParams{
		ID:                u.ID,
		Email:             domain.NormalizeEmail(u.Email),
		PasswordHash:      u.PasswordHash,
		Active:            u.Active,
		EmailVerified:     u.EmailVerified,
		PasswordChangedAt: mapOptionalTime(u.PasswordChangedAt),
		CreatedAt:         u.CreatedAt.UTC(),
		UpdatedAt:         u.UpdatedAt.UTC(),
	})
	if err != nil {
		return mapConstraint(err)
	}
	return r.insertRoles(ctx, u.ID, u.Roles)
}

func (r *usersRepo) ReplaceRoles(ctx context.Context, userID string, roles domain.Roles, now time.Time) error {
	if _, err := r.q.GetUserByID(ctx, userID); err != nil {
		return mapNotFound(err)
	}
	if err := r.q.DeleteUserRoles(ctx, userID); err != nil {
		return err
	}
	return r.insertRoles(ctx, userID, roles)
}

func (r *usersRepo) insertRoles(ctx context.Context, userID string, roles domain.Roles) error {
	for i, role := range roles.Dedupe() {
		vendorID, _ := role.VendorID()
		err := r.q.CreateUserRole(ctx, gen.CreateUserRoleParams{
			UserID:   userID,
			Position: int64(i),
			Kind:     string(role.Kind()),
			VendorID: mapStringNull(vendorID),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *usersRepo) UpdatePassword(ctx context.Context, userID, newHash string, now time.Time) (domain.User, error) {
	row, err := r.q.UpdateUserPassword(ctx, gen.UpdateUserPasswordParams{
		PasswordHash: newHash,
		Now:          now.UTC(),
		ID:           userID,
	})
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return r.withRoles(ctx, row)
}

func (r *usersRepo) IncrementLoginAttempts(
	ctx context.Context,
	userID string,
	now time.Time,
	maxAttempts int,
	lockFor time.Duration,
) (domain.LoginAttempt, error) {
	row, err := r.q.IncrementLoginAttempts(ctx, gen.IncrementLoginAttemptsParams{
		Now:         now.UTC(),
		MaxAttempts: int64(maxAttempts),
		LockUntil:   mapTimeNull(now.Add(lockFor)),
		ID:          userID,
	})
	if err != nil {
		return domain.LoginAttempt{}, mapNotFound(err)
	}
	return domain.LoginAttempt{
		Attempts:  int(row.LoginAttempts),
		LockUntil: mapNullTimePtr(row.LockUntil),
	}, nil
}

func (r *usersRepo) RecordLoginSuccess(ctx context.Context, userID string, now time.Time) error {
	return requireRows(r.q.RecordLoginSuccess(ctx, gen.RecordLoginSuccessParams{
		Now: now.UTC(),
		ID:  userID,
	}))
}

func (r *usersRepo) IncrementTokenVersion(ctx context.Context, userID string, now time.Time) (int64, error) {
	v, err := r.q.IncrementTokenVersion(ctx, gen.IncrementTokenVersionParams{
		UpdatedAt: now.UTC(),
		ID:        userID,
	})
	if err != nil {
		return 0, mapNotFound(err)
	}
	return v, nil
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool, now time.Time) error {
	return requireRows(r.q.SetUserActive(ctx, gen.SetUserActiveParams{
		Active:    active,
		UpdatedAt: now.UTC(),
		ID:        userID,
	}))
}

func (r *usersRepo) SetEmailVerified(ctx context.Context, userID string, now time.Time) error {
	return requireRows(r.q.SetUserEmailVerified(ctx, gen.SetUserEmailVerifiedParams{
		UpdatedAt: now.UTC(),
		ID:        userID,
	}))
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	count, err := r.q.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
