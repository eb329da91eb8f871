package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/vendorauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestBootstrap verifies the one-time creation of the first admin.
func TestBootstrap(t *testing.T) {
	c := setupAuthContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)

	adminID := bootstrapService(t, client)

	session, err := client.Login(t.Context(), authsdk.LoginRequest{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)
	require.True(t, session.TwoFactorSetupRequired(), "a fresh admin must enroll in 2FA")

	me, err := session.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, adminID, me.ID)
	require.Equal(t, adminEmail, me.Email)
	require.True(t, me.EmailVerified)
	require.True(t, me.TwoFactorPending)
	require.Equal(t, []authsdk.RoleAssignment{{Role: "elika_admin"}}, me.Roles)
}

// TestBootstrapOnlyOnce verifies a second bootstrap is refused.
func TestBootstrapOnlyOnce(t *testing.T) {
	c := setupAuthContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)

	bootstrapService(t, client)

	_, err := client.Bootstrap(t.Context(), bootstrapToken, authsdk.BootstrapRequest{
		AdminEmail:    "second@elika.example",
		AdminPassword: adminPassword,
	})
	requireAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeAlreadyBootstrapped)
}

// TestBootstrapWrongToken verifies the bootstrap token is checked.
func TestBootstrapWrongToken(t *testing.T) {
	c := setupAuthContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)

	_, err := client.Bootstrap(t.Context(), "not-the-token", authsdk.BootstrapRequest{
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
	})
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeBootstrapUnauthorized)
}

// TestBootstrapValidation verifies field errors are reported before the
// store is touched.
func TestBootstrapValidation(t *testing.T) {
	c := setupAuthContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)

	_, err := client.Bootstrap(t.Context(), bootstrapToken, authsdk.BootstrapRequest{
		AdminEmail:    "not-an-email",
		AdminPassword: "short",
	})
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest)

	// The failed attempt did not consume the bootstrap.
	bootstrapService(t, client)
}

// TestBootstrapDisabled verifies the endpoint is absent without a token.
func TestBootstrapDisabled(t *testing.T) {
	env := relaxedRateLimits(baseEnv())
	delete(env, "BOOTSTRAP_TOKEN")
	c := startContainer(t, env)
	client := authsdk.NewSDKClient(c.BaseURL)

	_, err := client.Bootstrap(t.Context(), bootstrapToken, authsdk.BootstrapRequest{
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
	})
	requireAPIError(t, err, http.StatusNotFound, authsdk.ErrorCodeBootstrapDisabled)
}
