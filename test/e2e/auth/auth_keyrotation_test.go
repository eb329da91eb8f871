package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/vendorauth/pkg/authsdk"
	"github.com/aussiebroadwan/vendorauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// verifyWithJWKS checks token against the currently published JWKS.
func verifyWithJWKS(t *testing.T, client *authsdk.SDKClient, token string) error {
	t.Helper()

	jwks, err := client.GetJWKS(t.Context())
	require.NoError(t, err)

	keySet := jwtx.NewKeySet()
	for _, k := range jwks.Keys {
		require.NoError(t, keySet.AddJWK(k))
	}
	_, err = jwtx.NewVerifier(keySet, jwtx.VerifyOptions{Issuer: "vendorauth-e2e"}).Verify(token)
	return err
}

// TestKeyRotationEphemeral rotates and retires keys in memory:
// 1. Rotate without retiring: two active keys
// 2. Tokens issued before rotation still verify
// 3. Retire the original key, then refuse to retire the last one
func TestKeyRotationEphemeral(t *testing.T) {
	c := setupAuthContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)
	admin, _ := adminSession(t, client)

	before, err := admin.ListKeys(t.Context())
	require.NoError(t, err)
	require.Len(t, before, 1)
	originalKid := before[0].Kid

	rotated, err := admin.RotateKey(t.Context(), authsdk.RotateKeyRequest{})
	require.NoError(t, err)
	require.NotEqual(t, originalKid, rotated.NewKey.Kid)
	require.Equal(t, 2, rotated.ActiveKeys)
	require.Empty(t, rotated.RetiredKeys)

	jwks, err := client.GetJWKS(t.Context())
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 2)

	require.NoError(t, verifyWithJWKS(t, client, admin.AccessToken()))

	require.NoError(t, admin.RetireKey(t.Context(), originalKid))

	after, err := admin.ListKeys(t.Context())
	require.NoError(t, err)
	require.Len(t, after, 1)
	require.Equal(t, rotated.NewKey.Kid, after[0].Kid)

	err = admin.RetireKey(t.Context(), rotated.NewKey.Kid)
	requireAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeInvalidRequest)

	err = admin.RetireKey(t.Context(), "no-such-kid")
	requireAPIError(t, err, http.StatusNotFound, authsdk.ErrorCodeKeyNotFound)

	// Fresh tokens come from the surviving key.
	require.NoError(t, admin.Refresh(t.Context()))
	require.NoError(t, verifyWithJWKS(t, client, admin.AccessToken()))
}

// TestKeyRotationRetireExisting verifies a rotation can replace every key at
// once while the old keys stay published for verification.
func TestKeyRotationRetireExisting(t *testing.T) {
	env := relaxedRateLimits(baseEnv())
	env["AUTH_KEY_STORAGE_MODE"] = "persistent"
	env["AUTH_MASTER_KEY"] = "e2e-master-key-material-0123456789"
	env["AUTH_KEY_GRACE_PERIOD"] = "1h"
	c := startContainer(t, env)
	client := authsdk.NewSDKClient(c.BaseURL)
	admin, _ := adminSession(t, client)

	oldToken := admin.AccessToken()

	rotated, err := admin.RotateKey(t.Context(), authsdk.RotateKeyRequest{RetireExisting: true})
	require.NoError(t, err)
	require.Equal(t, 1, rotated.ActiveKeys)
	require.Len(t, rotated.RetiredKeys, 1)
	require.NotNil(t, rotated.RetiredKeys[0].RetiredAt)

	keys, err := admin.ListKeys(t.Context())
	require.NoError(t, err)
	require.Len(t, keys, 2, "persistent mode lists retired keys too")

	active := 0
	for _, k := range keys {
		if k.Active {
			active++
			require.Equal(t, rotated.NewKey.Kid, k.Kid)
		}
	}
	require.Equal(t, 1, active)

	require.NoError(t, verifyWithJWKS(t, client, oldToken), "retired keys verify during the grace period")

	_, err = admin.Me(t.Context())
	require.NoError(t, err, "tokens signed by a retired key are still accepted")
}

// TestKeyRotationRequiresAdmin verifies vendor users cannot manage keys.
func TestKeyRotationRequiresAdmin(t *testing.T) {
	c := setupAuthContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)
	admin, _ := adminSession(t, client)
	_, vendor := createVendorUser(t, client, admin, "vendor@example.com")

	_, err := vendor.RotateKey(t.Context(), authsdk.RotateKeyRequest{})
	requireAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeForbidden)

	_, err = vendor.ListKeys(t.Context())
	requireAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeForbidden)
}
