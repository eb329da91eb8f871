package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/metrics"
	"github.com/aussiebroadwan/vendorauth/internal/auth/service"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/vendorauth/pkg/authsdk"
	"github.com/aussiebroadwan/vendorauth/pkg/cryptox"
	"github.com/aussiebroadwan/vendorauth/pkg/idx"
	"github.com/aussiebroadwan/vendorauth/pkg/jwtx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const (
	testPassword       = "correct horse battery"
	testBootstrapToken = "bootstrap-secret"
)

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	store  *sqlite.Store
	hasher *cryptox.Hasher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    "test-issuer",
		NumKeys:   1,
	})
	require.NoError(t, err)

	hasher := cryptox.NewHasher(cryptox.HasherConfig{
		Params: cryptox.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1},
	})
	clock := service.SystemClock{}

	tokens := &service.TokenService{KeyManager: km, Store: st, Issuer: "test-issuer", Clock: clock}
	verification := &service.VerificationService{
		Store:   st,
		Tokens:  tokens,
		Hasher:  hasher,
		BaseURL: "https://portal.example",
		Clock:   clock,
	}
	twoFactor := &service.TwoFactorService{Store: st, Issuer: "Vendor Portal", Clock: clock}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRouter(km.KeySet(), "test", st, logger)
	r.Sessions = &service.SessionService{
		Store:        st,
		Tokens:       tokens,
		Verification: verification,
		TwoFactor:    twoFactor,
		Hasher:       hasher,
		Clock:        clock,
	}
	r.Users = &service.UserService{
		Store:        st,
		Hasher:       hasher,
		Tokens:       tokens,
		Verification: verification,
		Clock:        clock,
	}
	r.BootstrapService = &service.BootstrapService{Store: st, Hasher: hasher, Token: testBootstrapToken, Clock: clock}
	r.KeyRotationService = &service.KeyRotationService{KeyManager: km, Clock: clock}
	r.Metrics = metrics.New()
	r.Clock = clock
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{t: t, srv: srv, store: st, hasher: hasher}
}

func (s *testServer) createUser(email string, roles ...domain.Role) domain.User {
	s.t.Helper()
	hash, err := s.hasher.Hash(context.Background(), testPassword)
	require.NoError(s.t, err)

	now := time.Now().UTC()
	u := domain.User{
		ID:            idx.NewString(),
		Email:         email,
		PasswordHash:  hash,
		Roles:         roles,
		Active:        true,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(s.t, s.store.Users().CreateUser(context.Background(), u))
	return u
}

func (s *testServer) do(method, path, token string, body any, headers ...string) *http.Response {
	s.t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.srv.URL+path, rd)
	require.NoError(s.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.srv.Client().Do(req)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *testServer) login(email string) authsdk.TokenResponse {
	s.t.Helper()
	resp := s.do(http.MethodPost, "/v1/auth/login", "", authsdk.LoginRequest{Email: email, Password: testPassword})
	require.Equal(s.t, http.StatusOK, resp.StatusCode)
	var tok authsdk.TokenResponse
	decodeBody(s.t, resp, &tok)
	return tok
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func requireErrorCode(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	require.Equal(t, status, resp.StatusCode)
	var body authsdk.ErrorResponse
	decodeBody(t, resp, &body)
	require.Equal(t, code, body.Error)
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser("vendor@example.com", domain.MustRole(domain.RoleVendorUser, "v-1"))

	tok := s.login("Vendor@Example.com")
	require.NotEmpty(t, tok.AccessToken)
	require.NotEmpty(t, tok.RefreshToken)
	require.Equal(t, "Bearer", tok.TokenType)
	require.False(t, tok.TwoFactorSetupRequired)

	resp := s.do(http.MethodGet, "/v1/auth/me", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	var me authsdk.UserResponse
	decodeBody(t, resp, &me)
	require.Equal(t, user.ID, me.ID)
	require.Equal(t, []authsdk.RoleAssignment{{Role: "vendor_user", VendorID: "v-1"}}, me.Roles)
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.createUser("vendor@example.com", domain.MustRole(domain.RoleVendorUser, "v-1"))

	resp := s.do(http.MethodPost, "/v1/auth/login", "", authsdk.LoginRequest{Email: "vendor@example.com", Password: "nope-nope-nope"})
	requireErrorCode(t, resp, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)
}

func TestLoginMissingFields(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodPost, "/v1/auth/login", "", authsdk.LoginRequest{Email: "vendor@example.com"})
	requireErrorCode(t, resp, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest)
}

func TestGateRejectsMissingToken(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodGet, "/v1/auth/me", "", nil)
	require.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))
	requireErrorCode(t, resp, http.StatusUnauthorized, authsdk.ErrorCodeMissingToken)

	resp = s.do(http.MethodGet, "/v1/auth/me", "not-a-jwt", nil)
	requireErrorCode(t, resp, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)
}

func TestRefreshAndLogout(t *testing.T) {
	s := newTestServer(t)
	s.createUser("vendor@example.com", domain.MustRole(domain.RoleVendorUser, "v-1"))
	tok := s.login("vendor@example.com")

	resp := s.do(http.MethodPost, "/v1/auth/refresh", "", authsdk.RefreshRequest{RefreshToken: tok.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var refreshed authsdk.TokenResponse
	decodeBody(t, resp, &refreshed)
	require.NotEmpty(t, refreshed.AccessToken)
	require.NotEmpty(t, refreshed.RefreshToken)

	resp = s.do(http.MethodPost, "/v1/auth/logout", tok.AccessToken, authsdk.LogoutRequest{RefreshToken: refreshed.RefreshToken})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodPost, "/v1/auth/refresh", "", authsdk.RefreshRequest{RefreshToken: refreshed.RefreshToken})
	requireErrorCode(t, resp, http.StatusUnauthorized, authsdk.ErrorCodeInvalidRefreshToken)
}

func TestSessionsListAndRevoke(t *testing.T) {
	s := newTestServer(t)
	s.createUser("vendor@example.com", domain.MustRole(domain.RoleVendorUser, "v-1"))
	tok := s.login("vendor@example.com")
	s.login("vendor@example.com")

	resp := s.do(http.MethodGet, "/v1/auth/sessions", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list authsdk.ListSessionsResponse
	decodeBody(t, resp, &list)
	require.Len(t, list.Sessions, 2)

	resp = s.do(http.MethodDelete, "/v1/auth/sessions/"+list.Sessions[0].ID, tok.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodDelete, "/v1/auth/sessions/"+list.Sessions[0].ID, tok.AccessToken, nil)
	requireErrorCode(t, resp, http.StatusNotFound, authsdk.ErrorCodeSessionNotFound)
}

func TestForgotPasswordAlwaysAccepted(t *testing.T) {
	s := newTestServer(t)
	s.createUser("vendor@example.com", domain.MustRole(domain.RoleVendorUser, "v-1"))

	for _, email := range []string{"vendor@example.com", "nobody@example.com"} {
		resp := s.do(http.MethodPost, "/v1/auth/password/forgot", "", authsdk.ForgotPasswordRequest{Email: email})
		require.Equal(t, http.StatusAccepted, resp.StatusCode, email)
	}
}

func TestResetPasswordBadToken(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodPost, "/v1/auth/password/reset", "", authsdk.ResetPasswordRequest{Token: "bogus", NewPassword: "another long password"})
	requireErrorCode(t, resp, http.StatusBadRequest, authsdk.ErrorCodeInvalidResetToken)
}

func TestPrivilegedUserMustEnroll(t *testing.T) {
	s := newTestServer(t)
	s.createUser("finance@example.com", domain.MustRole(domain.RoleFinanceTeam, ""))

	tok := s.login("finance@example.com")
	require.True(t, tok.TwoFactorSetupRequired)

	// Enrollment routes and /me stay reachable.
	resp := s.do(http.MethodGet, "/v1/auth/me", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me authsdk.UserResponse
	decodeBody(t, resp, &me)
	require.True(t, me.TwoFactorPending)

	resp = s.do(http.MethodGet, "/v1/auth/sessions", tok.AccessToken, nil)
	requireErrorCode(t, resp, http.StatusForbidden, authsdk.ErrorCodeTwoFASetupRequired)

	resp = s.do(http.MethodPost, "/v1/2fa/setup", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var setup authsdk.TwoFactorSetupResponse
	decodeBody(t, resp, &setup)
	require.True(t, setup.Required)
	require.Len(t, setup.BackupCodes, 10)

	resp = s.do(http.MethodPost, "/v1/2fa/enable", tok.AccessToken, authsdk.TwoFactorCodeRequest{Code: "000000x"})
	requireErrorCode(t, resp, http.StatusBadRequest, authsdk.ErrorCodeInvalid2FAToken)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	resp = s.do(http.MethodPost, "/v1/2fa/enable", tok.AccessToken, authsdk.TwoFactorCodeRequest{Code: code})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodGet, "/v1/auth/sessions", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/v1/2fa/status", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status authsdk.TwoFactorStatusResponse
	decodeBody(t, resp, &status)
	require.Equal(t, "enabled", status.State)
	require.Equal(t, 10, status.RemainingBackupCodes)

	// A second login now needs a code.
	resp = s.do(http.MethodPost, "/v1/auth/login", "", authsdk.LoginRequest{Email: "finance@example.com", Password: testPassword})
	requireErrorCode(t, resp, http.StatusUnauthorized, authsdk.ErrorCodeTwoFARequired)

	resp = s.do(http.MethodPost, "/v1/auth/login", "", authsdk.LoginRequest{
		Email:         "finance@example.com",
		Password:      testPassword,
		TwoFactorCode: setup.BackupCodes[0],
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTwoFactorCodeRequired(t *testing.T) {
	s := newTestServer(t)
	s.createUser("vendor@example.com", domain.MustRole(domain.RoleVendorUser, "v-1"))
	tok := s.login("vendor@example.com")

	resp := s.do(http.MethodPost, "/v1/2fa/verify", tok.AccessToken, authsdk.TwoFactorCodeRequest{})
	requireErrorCode(t, resp, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest)

	resp = s.do(http.MethodPost, "/v1/2fa/verify", tok.AccessToken, authsdk.TwoFactorCodeRequest{Code: "123456"})
	requireErrorCode(t, resp, http.StatusBadRequest, authsdk.ErrorCodeTwoFANotEnabled)
}

func TestUserRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	s.createUser("vendor@example.com", domain.MustRole(domain.RoleVendorAdmin, "v-1"))
	tok := s.login("vendor@example.com")

	resp := s.do(http.MethodPost, "/v1/users", tok.AccessToken, authsdk.CreateUserRequest{
		Email:    "new@example.com",
		Password: testPassword,
		Roles:    []authsdk.RoleAssignment{{Role: "vendor_user", VendorID: "v-1"}},
	})
	requireErrorCode(t, resp, http.StatusForbidden, authsdk.ErrorCodeForbidden)

	resp = s.do(http.MethodGet, "/v1/keys", tok.AccessToken, nil)
	requireErrorCode(t, resp, http.StatusForbidden, authsdk.ErrorCodeForbidden)
}

func TestVendorAccess(t *testing.T) {
	s := newTestServer(t)
	s.createUser("vendor@example.com", domain.MustRole(domain.RoleVendorUser, "v-1"))
	s.createUser("recruiter@example.com", domain.MustRole(domain.RoleRecruiter, ""))
	vendor := s.login("vendor@example.com")
	recruiter := s.login("recruiter@example.com")

	resp := s.do(http.MethodGet, "/v1/vendors/v-1/access", vendor.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodGet, "/v1/vendors/v-2/access", vendor.AccessToken, nil)
	requireErrorCode(t, resp, http.StatusForbidden, authsdk.ErrorCodeForbidden)

	resp = s.do(http.MethodGet, "/v1/vendors/v-2/access", recruiter.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// adminSession bootstraps the service and enrolls the admin in 2FA.
func adminSession(t *testing.T, s *testServer) string {
	t.Helper()

	resp := s.do(http.MethodPost, "/v1/bootstrap", "", authsdk.BootstrapRequest{
		AdminEmail:    "admin@example.com",
		AdminPassword: testPassword,
	}, authsdk.BootstrapTokenHeader, testBootstrapToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	tok := s.login("admin@example.com")
	require.True(t, tok.TwoFactorSetupRequired)

	resp = s.do(http.MethodPost, "/v1/2fa/setup", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var setup authsdk.TwoFactorSetupResponse
	decodeBody(t, resp, &setup)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	resp = s.do(http.MethodPost, "/v1/2fa/enable", tok.AccessToken, authsdk.TwoFactorCodeRequest{Code: code})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	return tok.AccessToken
}

func TestBootstrap(t *testing.T) {
	s := newTestServer(t)
	body := authsdk.BootstrapRequest{AdminEmail: "admin@example.com", AdminPassword: testPassword}

	resp := s.do(http.MethodPost, "/v1/bootstrap", "", body, authsdk.BootstrapTokenHeader, "wrong")
	requireErrorCode(t, resp, http.StatusUnauthorized, authsdk.ErrorCodeBootstrapUnauthorized)

	resp = s.do(http.MethodPost, "/v1/bootstrap", "", authsdk.BootstrapRequest{AdminEmail: "nope"}, authsdk.BootstrapTokenHeader, testBootstrapToken)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var verr authsdk.ValidationErrorResponse
	decodeBody(t, resp, &verr)
	require.Contains(t, verr.Details, "admin_email")
	require.Contains(t, verr.Details, "admin_password")

	resp = s.do(http.MethodPost, "/v1/bootstrap", "", body, authsdk.BootstrapTokenHeader, testBootstrapToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created authsdk.BootstrapResponse
	decodeBody(t, resp, &created)
	require.NotEmpty(t, created.AdminUserID)

	resp = s.do(http.MethodPost, "/v1/bootstrap", "", body, authsdk.BootstrapTokenHeader, testBootstrapToken)
	requireErrorCode(t, resp, http.StatusConflict, authsdk.ErrorCodeAlreadyBootstrapped)
}

func TestAdminManagesUsers(t *testing.T) {
	s := newTestServer(t)
	admin := adminSession(t, s)

	resp := s.do(http.MethodPost, "/v1/users", admin, authsdk.CreateUserRequest{
		Email:    "vendor@example.com",
		Password: testPassword,
		Roles:    []authsdk.RoleAssignment{{Role: "vendor_admin", VendorID: "v-9"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created authsdk.UserResponse
	decodeBody(t, resp, &created)
	require.False(t, created.EmailVerified)

	resp = s.do(http.MethodPost, "/v1/users", admin, authsdk.CreateUserRequest{
		Email:    "vendor@example.com",
		Password: testPassword,
		Roles:    []authsdk.RoleAssignment{{Role: "vendor_user", VendorID: "v-9"}},
	})
	requireErrorCode(t, resp, http.StatusConflict, authsdk.ErrorCodeEmailTaken)

	resp = s.do(http.MethodPut, "/v1/users/"+created.ID+"/roles", admin, authsdk.SetRolesRequest{
		Roles: []authsdk.RoleAssignment{{Role: "recruiter"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated authsdk.UserResponse
	decodeBody(t, resp, &updated)
	require.Equal(t, []authsdk.RoleAssignment{{Role: "recruiter"}}, updated.Roles)

	vendor := s.login("vendor@example.com")

	resp = s.do(http.MethodPost, "/v1/users/"+created.ID+"/deactivate", admin, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodGet, "/v1/auth/me", vendor.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(http.MethodPost, "/v1/users/missing/activate", admin, nil)
	requireErrorCode(t, resp, http.StatusNotFound, authsdk.ErrorCodeUserNotFound)
}

func TestAdminRotatesKeys(t *testing.T) {
	s := newTestServer(t)
	admin := adminSession(t, s)

	resp := s.do(http.MethodPost, "/v1/keys/rotate", admin, authsdk.RotateKeyRequest{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rotated authsdk.RotateKeyResponse
	decodeBody(t, resp, &rotated)
	require.Equal(t, 2, rotated.ActiveKeys)
	require.True(t, rotated.NewKey.Active)

	resp = s.do(http.MethodGet, "/v1/keys", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list authsdk.ListSigningKeysResponse
	decodeBody(t, resp, &list)
	require.Len(t, list.Keys, 2)

	resp = s.do(http.MethodPost, "/v1/keys/unknown-kid/retire", admin, nil)
	requireErrorCode(t, resp, http.StatusNotFound, authsdk.ErrorCodeKeyNotFound)

	resp = s.do(http.MethodGet, "/.well-known/jwks.json", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var jwks authsdk.JWKSResponse
	decodeBody(t, resp, &jwks)
	require.Len(t, jwks.Keys, 2)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var live authsdk.HealthResponse
	decodeBody(t, resp, &live)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)
	require.Nil(t, live.Checks)

	resp = s.do(http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ready authsdk.HealthResponse
	decodeBody(t, resp, &ready)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)

	resp = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimitedLogin(t *testing.T) {
	s := newTestServer(t)
	body := authsdk.LoginRequest{Email: "someone@example.com", Password: "whatever-password"}

	var last *http.Response
	for range 20 {
		last = s.do(http.MethodPost, "/v1/auth/login", "", body)
		if last.StatusCode == http.StatusTooManyRequests {
			break
		}
	}
	requireErrorCode(t, last, http.StatusTooManyRequests, authsdk.ErrorCodeRateLimited)
}

func TestToAPIError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrMissingToken, http.StatusUnauthorized, authsdk.ErrorCodeMissingToken},
		{service.ErrAccountLocked, http.StatusLocked, authsdk.ErrorCodeAccountLocked},
		{service.ErrTwoFASetupRequired, http.StatusForbidden, authsdk.ErrorCodeTwoFASetupRequired},
		{service.ErrEmailTaken, http.StatusConflict, authsdk.ErrorCodeEmailTaken},
		{fmt.Errorf("wrapped: %w", service.ErrUserNotFound), http.StatusNotFound, authsdk.ErrorCodeUserNotFound},
		{jwtx.ErrUnknownKID, http.StatusNotFound, authsdk.ErrorCodeKeyNotFound},
		{jwtx.ErrLastSigner, http.StatusConflict, authsdk.ErrorCodeInvalidRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError, authsdk.ErrorCodeServerError},
	}
	for _, tc := range cases {
		got := toAPIError(tc.err)
		require.Equal(t, tc.status, got.StatusCode, tc.err.Error())
		require.Equal(t, tc.code, got.Code, tc.err.Error())
	}

	require.Equal(t, "too many failed attempts, try again later", toAPIError(service.ErrAccountLocked).Description)
}
