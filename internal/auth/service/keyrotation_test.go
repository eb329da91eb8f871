package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/store"
	"github.com/aussiebroadwan/vendorauth/pkg/cryptox"
	"github.com/aussiebroadwan/vendorauth/pkg/idx"
	"github.com/aussiebroadwan/vendorauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestKeyRotationEphemeral(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "keys@example.com")
	before := env.login(t, "keys@example.com")
	oldKid := env.keys.Signers()[0].KID()

	svc := &KeyRotationService{KeyManager: env.keys, Clock: env.clock}
	res, err := svc.RotateKey(ctx, RotateKeyRequest{RetireExisting: true})
	require.NoError(t, err)
	require.Equal(t, 1, res.ActiveKeys)
	require.Len(t, res.RetiredKeys, 1)
	require.Equal(t, oldKid, res.RetiredKeys[0].Kid)
	require.NotEqual(t, oldKid, env.keys.Signers()[0].KID())

	// tokens signed by the retired key still verify
	_, err = env.sessions.Authenticate(ctx, before.AccessToken, AuthenticateOptions{})
	require.NoError(t, err)

	require.ErrorIs(t, svc.RetireKey(ctx, res.NewKey.Kid), jwtx.ErrLastSigner)

	keys, err := svc.ListSigningKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.Equal(t, res.NewKey.Kid, keys[0].Kid)
}

func TestKeyRotationPersistent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	enc, err := cryptox.NewKeyEncryptor(make([]byte, 32))
	require.NoError(t, err)

	km, err := jwtx.NewPersistentKeyManager(ctx, jwtx.PersistentKeyManagerOptions{
		KeyManagerOptions: jwtx.KeyManagerOptions{
			Algorithm: jwtx.AlgorithmES256,
			Issuer:    testIssuer,
			NumKeys:   2,
			Now:       env.clock.Now,
		},
		Store:     store.NewKeyStoreAdapter(env.store),
		Encryptor: enc,
		NewID:     idx.NewString,
	})
	require.NoError(t, err)

	svc := &KeyRotationService{Store: env.store, KeyManager: km, Encryptor: enc, Clock: env.clock, GracePeriod: 24 * time.Hour}
	res, err := svc.RotateKey(ctx, RotateKeyRequest{RetireExisting: true})
	require.NoError(t, err)
	require.Len(t, res.RetiredKeys, 2)
	require.Nil(t, res.NewKey.PrivateKeyEncrypted)
	require.Equal(t, 1, km.NumSigners())

	active, err := env.store.SigningKeys().ListActiveSigningKeys(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, res.NewKey.Kid, active[0].Kid)

	// retired keys are swept once their grace period ends
	hk := NewHousekeepingService(env.store, km, nil, time.Hour, env.clock)
	env.clock.Advance(25 * time.Hour)
	r := hk.Sweep(ctx)
	require.Equal(t, int64(2), r.SigningKeys)
	require.Len(t, km.KeySet().PublicJWKS().Keys, 1)
}
