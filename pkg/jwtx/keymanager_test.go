package jwtx_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/vendorauth/pkg/cryptox"
	"github.com/aussiebroadwan/vendorauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestNewEphemeralKeyManager(t *testing.T) {
	for _, alg := range []string{jwtx.AlgorithmEdDSA, jwtx.AlgorithmES256} {
		t.Run(alg, func(t *testing.T) {
			km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Algorithm: alg, Issuer: testIssuer})
			require.NoError(t, err)
			require.Equal(t, alg, km.Algorithm())
			require.Equal(t, 3, km.NumSigners())
			require.Len(t, km.KeySet().PublicJWKS().Keys, 3)
			require.True(t, km.IsReady())

			raw, err := km.Sign(jwtx.NewAccessClaims("u1", "", 0, testIssuer, time.Minute, time.Now()))
			require.NoError(t, err)
			claims, err := km.Verify(raw)
			require.NoError(t, err)
			require.Equal(t, "u1", claims.Subject)
		})
	}
}

func TestNewEphemeralKeyManager_Options(t *testing.T) {
	_, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Algorithm: jwtx.AlgorithmEdDSA})
	require.Error(t, err)

	_, err = jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Algorithm: "RS256", Issuer: testIssuer})
	require.Error(t, err)

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Algorithm: jwtx.AlgorithmEdDSA, Issuer: testIssuer, NumKeys: 50})
	require.NoError(t, err)
	require.Equal(t, 10, km.NumSigners())
}

func TestKeyManager_RetireKeepsVerifying(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Algorithm: jwtx.AlgorithmEdDSA, Issuer: testIssuer, NumKeys: 2})
	require.NoError(t, err)

	signers := km.Signers()
	old := signers[0]
	raw, err := old.Sign(jwtx.NewAccessClaims("u1", "", 0, testIssuer, time.Minute, time.Now()))
	require.NoError(t, err)

	require.NoError(t, km.RetireSigner(old.KID()))
	require.Equal(t, 1, km.NumSigners())
	require.ErrorIs(t, km.RetireSigner(signers[1].KID()), jwtx.ErrLastSigner)
	require.ErrorIs(t, km.RetireSigner("missing"), jwtx.ErrUnknownKID)

	_, err = km.Verify(raw)
	require.NoError(t, err)

	km.Forget(old.KID())
	_, err = km.Verify(raw)
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)

	// active keys are never forgotten
	km.Forget(signers[1].KID())
	_, err = km.KeySet().Get(signers[1].KID())
	require.NoError(t, err)
}

type memKeyStore struct {
	mu   sync.Mutex
	keys []jwtx.SigningKeyRecord
}

func (m *memKeyStore) ListAllSigningKeys(context.Context) ([]jwtx.SigningKeyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]jwtx.SigningKeyRecord(nil), m.keys...), nil
}

func (m *memKeyStore) CreateSigningKey(_ context.Context, key jwtx.SigningKeyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return nil
}

func TestPersistentKeyManager_SurvivesRestart(t *testing.T) {
	enc, err := cryptox.NewKeyEncryptor([]byte("master-key-material"))
	require.NoError(t, err)

	ks := &memKeyStore{}
	n := 0
	opts := jwtx.PersistentKeyManagerOptions{
		KeyManagerOptions: jwtx.KeyManagerOptions{Algorithm: jwtx.AlgorithmES256, Issuer: testIssuer, NumKeys: 2},
		Store:             ks,
		Encryptor:         enc,
		NewID:             func() string { n++; return fmt.Sprintf("key-%d", n) },
	}

	first, err := jwtx.NewPersistentKeyManager(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, ks.keys, 2)
	for _, rec := range ks.keys {
		require.NotContains(t, string(rec.PrivateKeyEncrypted), "PRIVATE KEY")
	}

	raw, err := first.Sign(jwtx.NewAccessClaims("u1", "", 0, testIssuer, time.Minute, time.Now()))
	require.NoError(t, err)

	second, err := jwtx.NewPersistentKeyManager(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, ks.keys, 2, "no new keys when enough are active")
	_, err = second.Verify(raw)
	require.NoError(t, err)
}

func TestPersistentKeyManager_RetiredAndExpired(t *testing.T) {
	enc, err := cryptox.NewKeyEncryptor([]byte("master-key-material"))
	require.NoError(t, err)

	now := time.Now().UTC()
	ks := &memKeyStore{}
	seal := func(kid string, retired *time.Time, expires time.Time) {
		pemData, _, err := jwtx.GenerateSigner(jwtx.AlgorithmEdDSA)
		require.NoError(t, err)
		sealed, err := enc.Encrypt(pemData)
		require.NoError(t, err)
		ks.keys = append(ks.keys, jwtx.SigningKeyRecord{
			ID: kid, Kid: kid, Algorithm: jwtx.AlgorithmEdDSA,
			PrivateKeyEncrypted: sealed, CreatedAt: now.Add(-time.Hour),
			RetiredAt: retired, ExpiresAt: expires,
		})
	}
	retiredAt := now.Add(-time.Minute)
	seal("graceful", &retiredAt, now.Add(time.Hour))
	seal("expired", &retiredAt, now.Add(-time.Second))

	km, err := jwtx.NewPersistentKeyManager(context.Background(), jwtx.PersistentKeyManagerOptions{
		KeyManagerOptions: jwtx.KeyManagerOptions{Algorithm: jwtx.AlgorithmEdDSA, Issuer: testIssuer, NumKeys: 1},
		Store:             ks,
		Encryptor:         enc,
		NewID:             func() string { return "fresh" },
	})
	require.NoError(t, err)

	require.Equal(t, 1, km.NumSigners())
	require.NotEqual(t, "graceful", km.Signers()[0].KID())
	_, err = km.KeySet().Get("graceful")
	require.NoError(t, err)
	_, err = km.KeySet().Get("expired")
	require.ErrorIs(t, err, jwtx.ErrNoKey)
}
