package jwtx

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SigningKeyRecord is a stored signing key. It mirrors the storage row
// without importing the domain package.
type SigningKeyRecord struct {
	ID                  string
	Kid                 string
	Algorithm           string
	PrivateKeyEncrypted []byte
	CreatedAt           time.Time
	RetiredAt           *time.Time
	ExpiresAt           time.Time
}

// KeyStore is the storage the persistent manager needs.
type KeyStore interface {
	// ListAllSigningKeys returns every stored key, retired ones included.
	ListAllSigningKeys(ctx context.Context) ([]SigningKeyRecord, error)

	// CreateSigningKey stores a new active key.
	CreateSigningKey(ctx context.Context, key SigningKeyRecord) error
}

// KeyEncryptor seals private key PEM at rest.
type KeyEncryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// PersistentKeyManagerOptions configures a KeyManager backed by storage.
type PersistentKeyManagerOptions struct {
	KeyManagerOptions

	Store     KeyStore
	Encryptor KeyEncryptor

	// NewID returns record IDs for generated keys.
	NewID func() string

	// GracePeriod is stamped as the provisional expiry of new keys; the
	// real expiry is set when a key is retired.
	GracePeriod time.Duration
}

// NewPersistentKeyManager loads stored keys and tops up the active set to
// NumKeys. Retired keys still inside their grace period verify but never
// sign; expired ones are skipped.
func NewPersistentKeyManager(ctx context.Context, opts PersistentKeyManagerOptions) (*KeyManager, error) {
	if opts.Store == nil {
		return nil, errors.New("jwtx: Store is required for persistent key manager")
	}
	if opts.Encryptor == nil {
		return nil, errors.New("jwtx: Encryptor is required for persistent key manager")
	}
	if opts.NewID == nil {
		return nil, errors.New("jwtx: NewID is required for persistent key manager")
	}
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = 30 * 24 * time.Hour
	}

	now := time.Now().UTC()
	if opts.Now != nil {
		now = opts.Now().UTC()
	}

	records, err := opts.Store.ListAllSigningKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to load keys from database: %w", err)
	}

	keys := NewKeySet()
	var active []Signer
	for _, rec := range records {
		if rec.RetiredAt != nil && !now.Before(rec.ExpiresAt) {
			continue
		}

		pemData, err := opts.Encryptor.Decrypt(rec.PrivateKeyEncrypted)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to decrypt key %s: %w", rec.Kid, err)
		}
		signer, err := NewSigner(rec.Algorithm, rec.Kid, pemData)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to load key %s: %w", rec.Kid, err)
		}
		if err := keys.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add key %s to keyset: %w", rec.Kid, err)
		}
		if rec.RetiredAt == nil {
			active = append(active, signer)
		}
	}

	for len(active) < opts.NumKeys {
		signer, err := createStoredSigner(ctx, opts, now)
		if err != nil {
			return nil, err
		}
		if err := keys.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add new key to keyset: %w", err)
		}
		active = append(active, signer)
	}

	return newKeyManager(opts.KeyManagerOptions, keys, active), nil
}

func createStoredSigner(ctx context.Context, opts PersistentKeyManagerOptions, now time.Time) (Signer, error) {
	pemData, signer, err := GenerateSigner(opts.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to generate new key: %w", err)
	}

	sealed, err := opts.Encryptor.Encrypt(pemData)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to encrypt new key: %w", err)
	}

	err = opts.Store.CreateSigningKey(ctx, SigningKeyRecord{
		ID:                  opts.NewID(),
		Kid:                 signer.KID(),
		Algorithm:           opts.Algorithm,
		PrivateKeyEncrypted: sealed,
		CreatedAt:           now,
		ExpiresAt:           now.Add(opts.GracePeriod),
	})
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to store new key: %w", err)
	}
	return signer, nil
}
