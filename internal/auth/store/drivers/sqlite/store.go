package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store/drivers/sqlite/gen"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// SQLite has a single writer. One connection also keeps connection-scoped
	// PRAGMAs applied and makes ":memory:" behave as one database.
	db.SetMaxOpenConns(1)

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users                           { return &usersRepo{q: s.q} }
func (s *Store) RefreshTokens() store.RefreshTokens           { return &refreshTokensRepo{q: s.q} }
func (s *Store) EmailVerifications() store.EmailVerifications { return &emailVerificationsRepo{q: s.q} }
func (s *Store) PasswordResets() store.PasswordResets         { return &passwordResetsRepo{q: s.q} }
func (s *Store) TwoFactor() store.TwoFactor                   { return &twoFactorRepo{q: s.q} }
func (s *Store) SigningKeys() store.SigningKeys               { return &signingKeysRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint turns unique/primary key violations into store.ErrAlreadyExists.
func mapConstraint(err error) error {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return store.ErrAlreadyExists
		}
	}
	return err
}

// requireRows maps a zero-row update to store.ErrNotFound.
func requireRows(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time.UTC()
		return &val
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func mapTimeNull(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func mapUser(row gen.User, roles []gen.UserRole) (domain.User, error) {
	u := domain.User{
		ID:                row.ID,
		Email:             row.Email,
		PasswordHash:      row.PasswordHash,
		Active:            row.Active,
		EmailVerified:     row.EmailVerified,
		TokenVersion:      row.TokenVersion,
		LoginAttempts:     int(row.LoginAttempts),
		LockUntil:         mapNullTimePtr(row.LockUntil),
		PasswordChangedAt: mapNullTimePtr(row.PasswordChangedAt),
		LastLoginAt:       mapNullTimePtr(row.LastLoginAt),
		CreatedAt:         row.CreatedAt.UTC(),
		UpdatedAt:         row.UpdatedAt.UTC(),
	}
	u.Roles = make(domain.Roles, 0, len(roles))
	for _, rr := range roles {
		role, err := domain.ParseRole(rr.Kind, mapNullString(rr.VendorID))
		if err != nil {
			return domain.User{}, err
		}
		u.Roles = append(u.Roles, role)
	}
	return u, nil
}

func mapRefreshToken(row gen.RefreshToken) domain.RefreshToken {
	return domain.RefreshToken{
		ID:        row.ID,
		UserID:    row.UserID,
		TokenHash: row.TokenHash,
		Device: domain.DeviceContext{
			UserAgent: row.UserAgent,
			IPAddress: row.IpAddress,
			DeviceID:  row.DeviceID,
		},
		ExpiresAt:     row.ExpiresAt.UTC(),
		Revoked:       row.Revoked,
		RevokedReason: mapNullString(row.RevokedReason),
		RevokedAt:     mapNullTimePtr(row.RevokedAt),
		LastUsedAt:    mapNullTimePtr(row.LastUsedAt),
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

func mapEmailVerification(row gen.EmailVerificationToken) domain.EmailVerificationToken {
	return domain.EmailVerificationToken{
		ID:        row.ID,
		UserID:    row.UserID,
		Email:     row.Email,
		TokenHash: row.TokenHash,
		ExpiresAt: row.ExpiresAt.UTC(),
		Used:      row.Used,
		UsedAt:    mapNullTimePtr(row.UsedAt),
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func mapPasswordReset(row gen.PasswordResetToken) domain.PasswordResetToken {
	return domain.PasswordResetToken{
		ID:        row.ID,
		UserID:    row.UserID,
		Email:     row.Email,
		TokenHash: row.TokenHash,
		IPAddress: row.IpAddress,
		UserAgent: row.UserAgent,
		ExpiresAt: row.ExpiresAt.UTC(),
		Used:      row.Used,
		UsedAt:    mapNullTimePtr(row.UsedAt),
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func mapTwoFactor(row gen.TwoFactorAuth, codes []gen.BackupCode) domain.TwoFactorAuth {
	tfa := domain.TwoFactorAuth{
		UserID:     row.UserID,
		Secret:     row.Secret,
		Enabled:    row.Enabled,
		EnabledAt:  mapNullTimePtr(row.EnabledAt),
		LastUsedAt: mapNullTimePtr(row.LastUsedAt),
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
	tfa.BackupCodes = make([]domain.BackupCode, len(codes))
	for i, c := range codes {
		tfa.BackupCodes[i] = domain.BackupCode{
			CodeHash: c.CodeHash,
			Used:     c.Used,
			UsedAt:   mapNullTimePtr(c.UsedAt),
		}
	}
	return tfa
}

func mapSigningKey(row gen.SigningKey) domain.SigningKey {
	return domain.SigningKey{
		ID:                  row.ID,
		Kid:                 row.Kid,
		Algorithm:           row.Algorithm,
		PrivateKeyEncrypted: row.PrivateKeyEncrypted,
		CreatedAt:           row.CreatedAt,
		RetiredAt:           mapNullTimePtr(row.RetiredAt),
		ExpiresAt:           row.ExpiresAt,
	}
}
