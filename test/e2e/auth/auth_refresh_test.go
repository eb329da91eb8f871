package auth_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/vendorauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRefreshToken verifies a young refresh token is handed back unchanged
// with a new access token.
func TestRefreshToken(t *testing.T) {
	c := setupAuthContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)
	admin, _ := adminSession(t, client)
	_, vendor := createVendorUser(t, client, admin, "vendor@example.com")

	resp, err := client.Refresh(t.Context(), vendor.RefreshToken(), "")
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, "Bearer", resp.TokenType)
	require.Positive(t, resp.ExpiresIn)
	require.False(t, resp.Rotated)
	require.Equal(t, vendor.RefreshToken(), resp.RefreshToken)

	refreshed := client.NewSessionFromTokens(resp.AccessToken, resp.RefreshToken, resp.ExpiresIn)
	me, err := refreshed.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, "vendor@example.com", me.Email)
}

// TestRefreshInvalidToken verifies unknown refresh tokens are rejected.
func TestRefreshInvalidToken(t *testing.T) {
	c := setupAuthContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)

	_, err := client.Refresh(t.Context(), "not-a-refresh-token", "")
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidRefreshToken)

	_, err = client.Refresh(t.Context(), "", "")
	requireAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest)
}

// TestLogout verifies logout ends one session and leaves the others alone.
func TestLogout(t *testing.T) {
	c := setupAuthContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)
	admin, _ := adminSession(t, client)
	_, first := createVendorUser(t, client, admin, "vendor@example.com")

	second, err := client.Login(t.Context(), authsdk.LoginRequest{
		Email:    "vendor@example.com",
		Password: userPassword,
		DeviceID: "laptop",
	})
	require.NoError(t, err)

	sessions, err := first.ListSessions(t.Context())
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	require.NoError(t, first.Logout(t.Context()))

	_, err = client.Refresh(t.Context(), first.RefreshToken(), "")
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidRefreshToken)

	err = first.Logout(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidRefreshToken)

	sessions, err = second.ListSessions(t.Context())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "laptop", sessions[0].DeviceID)

	require.NoError(t, second.Refresh(t.Context()))
}

// TestLogoutAll verifies every session and outstanding access token of the
// user is revoked.
func TestLogoutAll(t *testing.T) {
	c := setupAuthContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)
	admin, _ := adminSession(t, client)
	_, first := createVendorUser(t, client, admin, "vendor@example.com")

	second, err := client.Login(t.Context(), authsdk.LoginRequest{Email: "vendor@example.com", Password: userPassword})
	require.NoError(t, err)

	require.NoError(t, first.LogoutAll(t.Context()))

	_, err = second.Me(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeTokenRevoked)

	_, err = client.Refresh(t.Context(), second.RefreshToken(), "")
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidRefreshToken)

	// Other users are unaffected.
	_, err = admin.Me(t.Context())
	require.NoError(t, err)
}

// TestRevokeSession verifies a user can end one of their sessions by ID but
// not someone else's.
func TestRevokeSession(t *testing.T) {
	c := setupAuthContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)
	admin, _ := adminSession(t, client)
	_, vendor := createVendorUser(t, client, admin, "vendor@example.com")

	other, err := client.Login(t.Context(), authsdk.LoginRequest{
		Email:    "vendor@example.com",
		Password: userPassword,
		DeviceID: "phone",
	})
	require.NoError(t, err)

	sessions, err := vendor.ListSessions(t.Context())
	require.NoError(t, err)

	var phoneID string
	for _, s := range sessions {
		if s.DeviceID == "phone" {
			phoneID = s.ID
		}
	}
	require.NotEmpty(t, phoneID)

	err = admin.RevokeSession(t.Context(), phoneID)
	requireAPIError(t, err, http.StatusNotFound, authsdk.ErrorCodeSessionNotFound)

	require.NoError(t, vendor.RevokeSession(t.Context(), phoneID))

	_, err = client.Refresh(t.Context(), other.RefreshToken(), "")
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidRefreshToken)
}
