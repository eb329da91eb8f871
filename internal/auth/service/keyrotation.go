package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store"
	"github.com/aussiebroadwan/vendorauth/pkg/idx"
	"github.com/aussiebroadwan/vendorauth/pkg/jwtx"
	"github.com/aussiebroadwan/vendorauth/pkg/slogx"
)

// DefaultKeyGracePeriod is how long a retired key keeps verifying.
const DefaultKeyGracePeriod = 30 * 24 * time.Hour

// KeyRotationService adds and retires signing keys at runtime.
//
// With a nil Store keys live only in the KeyManager and retired keys verify
// until restart. With a Store, new keys are sealed with Encryptor and
// persisted, and retired keys verify until their grace period ends.
type KeyRotationService struct {
	Store       store.Store
	KeyManager  *jwtx.KeyManager
	Encryptor   jwtx.KeyEncryptor
	GracePeriod time.Duration
	Clock       Clock
}

type RotateKeyRequest struct {
	// RetireExisting retires every other active key once the new one is in place.
	RetireExisting bool
}

type RotateKeyResponse struct {
	NewKey      domain.SigningKey   `json:"new_key"`
	RetiredKeys []domain.SigningKey `json:"retired_keys,omitempty"`
	ActiveKeys  int                 `json:"active_keys"`
}

func (s *KeyRotationService) gracePeriod() time.Duration {
	if s.GracePeriod > 0 {
		return s.GracePeriod
	}
	return DefaultKeyGracePeriod
}

// RotateKey generates a signing key with the manager's algorithm and makes
// it active.
func (s *KeyRotationService) RotateKey(ctx context.Context, req RotateKeyRequest) (*RotateKeyResponse, error) {
	if s.KeyManager == nil {
		return nil, errors.New("key rotation: KeyManager is required")
	}
	alg := s.KeyManager.Algorithm()
	now := nowFrom(s.Clock)
	expires := now.Add(s.gracePeriod())

	pemData, signer, err := jwtx.GenerateSigner(alg)
	if err != nil {
		return nil, fmt.Errorf("key rotation: generate key: %w", err)
	}

	newKey := domain.SigningKey{
		ID:        idx.NewString(),
		Kid:       signer.KID(),
		Algorithm: alg,
		CreatedAt: now,
		ExpiresAt: expires,
	}
	previous := s.KeyManager.Signers()

	var retired []domain.SigningKey
	if s.Store != nil {
		if s.Encryptor == nil {
			return nil, errors.New("key rotation: Encryptor is required in persistent mode")
		}
		if newKey.PrivateKeyEncrypted, err = s.Encryptor.Encrypt(pemData); err != nil {
			return nil, fmt.Errorf("key rotation: seal key: %w", err)
		}

		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.SigningKeys().CreateSigningKey(ctx, newKey); err != nil {
				return fmt.Errorf("create signing key: %w", err)
			}
			if !req.RetireExisting {
				return nil
			}
			active, err := tx.SigningKeys().ListActiveSigningKeys(ctx)
			if err != nil {
				return fmt.Errorf("list active keys: %w", err)
			}
			for _, k := range active {
				if k.Kid == newKey.Kid {
					continue
				}
				if err := tx.SigningKeys().RetireSigningKey(ctx, k.Kid, now, expires); err != nil {
					return fmt.Errorf("retire key %s: %w", k.Kid, err)
				}
				k.RetiredAt = &now
				k.ExpiresAt = expires
				k.PrivateKeyEncrypted = nil
				retired = append(retired, k)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("key rotation: %w", err)
		}
		newKey.PrivateKeyEncrypted = nil
	} else if req.RetireExisting {
		for _, p := range previous {
			retired = append(retired, domain.SigningKey{
				Kid:       p.KID(),
				Algorithm: p.Alg(),
				RetiredAt: &now,
				ExpiresAt: expires,
			})
		}
	}

	if err := s.KeyManager.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("key rotation: %w", err)
	}
	if req.RetireExisting {
		for _, p := range previous {
			if err := s.KeyManager.RetireSigner(p.KID()); err != nil {
				return nil, fmt.Errorf("key rotation: retire %s: %w", p.KID(), err)
			}
		}
	}

	slogx.FromContext(ctx).Info("signing key rotated",
		"kid", newKey.Kid,
		"retired", len(retired),
		"active", s.KeyManager.NumSigners(),
	)

	return &RotateKeyResponse{
		NewKey:      newKey,
		RetiredKeys: retired,
		ActiveKeys:  s.KeyManager.NumSigners(),
	}, nil
}

// ListSigningKeys returns stored keys in persistent mode and the active
// signers otherwise. Private material is never included.
func (s *KeyRotationService) ListSigningKeys(ctx context.Context) ([]domain.SigningKey, error) {
	if s.Store != nil {
		keys, err := s.Store.SigningKeys().ListAllSigningKeys(ctx)
		if err != nil {
			return nil, err
		}
		for i := range keys {
			keys[i].PrivateKeyEncrypted = nil
		}
		return keys, nil
	}

	signers := s.KeyManager.Signers()
	keys := make([]domain.SigningKey, len(signers))
	for i, sg := range signers {
		keys[i] = domain.SigningKey{Kid: sg.KID(), Algorithm: sg.Alg()}
	}
	return keys, nil
}

// RetireKey stops kid from signing without adding a replacement. The last
// active key cannot be retired.
func (s *KeyRotationService) RetireKey(ctx context.Context, kid string) error {
	if err := s.KeyManager.RetireSigner(kid); err != nil {
		return fmt.Errorf("key rotation: %w", err)
	}
	if s.Store == nil {
		return nil
	}

	now := nowFrom(s.Clock)
	if err := s.Store.SigningKeys().RetireSigningKey(ctx, kid, now, now.Add(s.gracePeriod())); err != nil {
		return fmt.Errorf("key rotation: retire %s: %w", kid, err)
	}
	return nil
}
