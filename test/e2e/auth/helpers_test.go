package auth_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/vendorauth/pkg/authsdk"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * This includes container setup, service operations, and assertions.
 */

const (
	testImageName = "vendorauth-test:latest"

	bootstrapToken = "test-bootstrap-token-12345"
	adminEmail     = "admin@elika.example"
	adminPassword  = "Admin123!secure"
	userPassword   = "Vendor123!secure"
)

// TestMain builds the Docker image once before all tests and removes it
// after they complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building auth service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up auth service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // the image might not exist
}

// authContainer is a running auth service.
type authContainer struct {
	BaseURL   string
	container testcontainers.Container
}

func baseEnv() map[string]string {
	return map[string]string{
		"BOOTSTRAP_TOKEN":    bootstrapToken,
		"AUTH_DATABASE_FILE": "/data/auth.db",
		"AUTH_PEPPER_FILE":   "/data/pepper",
		"AUTH_ISSUER":        "vendorauth-e2e",
		"AUTH_ALGORITHM":     "EdDSA",
		"AUTH_NUM_KEYS":      "1", // one key keeps rotation assertions simple
		"APP_BASE_URL":       "https://portal.e2e.example",
		// dev makes the log sink include notification links, which the
		// tests read back from the container log
		"ENV":        "dev",
		"LOG_LEVEL":  "info",
		"LOG_FORMAT": "json",
	}
}

// relaxedRateLimits lifts the limits so tests can make many rapid requests.
func relaxedRateLimits(env map[string]string) map[string]string {
	for _, profile := range []string{"STRICT", "MODERATE", "LENIENT"} {
		env["RATELIMIT_"+profile+"_REQUESTS"] = "1000"
		env["RATELIMIT_"+profile+"_WINDOW_SEC"] = "60"
		env["RATELIMIT_"+profile+"_BURST"] = "1000"
	}
	return env
}

func startContainer(t *testing.T, env map[string]string) *authContainer {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		WaitingFor: wait.ForHTTP("/livez").
			WithPort("8080/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return &authContainer{
		BaseURL:   fmt.Sprintf("http://%s:%s", host, mappedPort.Port()),
		container: container,
	}
}

// setupAuthContainer starts the service with relaxed rate limits.
func setupAuthContainer(t *testing.T) *authContainer {
	t.Helper()
	return startContainer(t, relaxedRateLimits(baseEnv()))
}

// setupAuthContainerWithDefaultRateLimits starts the service with the
// production limits, for the rate limiting tests only.
func setupAuthContainerWithDefaultRateLimits(t *testing.T) *authContainer {
	t.Helper()
	return startContainer(t, baseEnv())
}

// notificationToken waits for the log sink to record a notification of kind
// for email and returns the token from its link.
func (c *authContainer) notificationToken(t *testing.T, kind, email string) string {
	t.Helper()

	var token string
	require.Eventually(t, func() bool {
		rc, err := c.container.Logs(context.Background())
		if err != nil {
			return false
		}
		defer rc.Close()

		sc := bufio.NewScanner(rc)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			line := sc.Text()
			if i := strings.IndexByte(line, '{'); i > 0 {
				line = line[i:] // strip the docker stream header
			}
			var entry struct {
				Msg   string `json:"msg"`
				Kind  string `json:"kind"`
				Email string `json:"email"`
				Link  string `json:"link"`
			}
			if json.Unmarshal([]byte(line), &entry) != nil {
				continue
			}
			if entry.Msg != "notification" || entry.Kind != kind || entry.Email != email || entry.Link == "" {
				continue
			}
			u, err := url.Parse(entry.Link)
			if err != nil {
				continue
			}
			token = u.Query().Get("token") // the latest link wins
		}
		return token != ""
	}, 10*time.Second, 200*time.Millisecond, "no %s notification for %s", kind, email)

	return token
}

// bootstrapService creates the first admin and returns its user ID.
func bootstrapService(t *testing.T, client *authsdk.SDKClient) string {
	t.Helper()

	resp, err := client.Bootstrap(t.Context(), bootstrapToken, authsdk.BootstrapRequest{
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
	})
	require.NoError(t, err, "Bootstrap should succeed")
	require.NotEmpty(t, resp.AdminUserID)
	return resp.AdminUserID
}

// enrollTwoFactor runs setup and enable on session and returns the secret
// and backup codes.
func enrollTwoFactor(t *testing.T, session *authsdk.Session) (string, []string) {
	t.Helper()

	setup, err := session.SetupTwoFactor(t.Context())
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)
	require.Len(t, setup.BackupCodes, 10)

	require.NoError(t, session.EnableTwoFactor(t.Context(), totpCode(t, setup.Secret)))
	return setup.Secret, setup.BackupCodes
}

func totpCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	return code
}

// adminSession bootstraps the service, logs the admin in and enrolls them
// in 2FA so the admin routes are reachable. It returns the session and the
// admin's TOTP secret.
func adminSession(t *testing.T, client *authsdk.SDKClient) (*authsdk.Session, string) {
	t.Helper()
	bootstrapService(t, client)

	session, err := client.Login(t.Context(), authsdk.LoginRequest{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)
	require.True(t, session.TwoFactorSetupRequired(), "admin must enroll in 2FA")

	secret, _ := enrollTwoFactor(t, session)
	return session, secret
}

// createVendorUser creates an account through the admin session and logs it in.
func createVendorUser(t *testing.T, client *authsdk.SDKClient, admin *authsdk.Session, email string, roles ...authsdk.RoleAssignment) (*authsdk.UserResponse, *authsdk.Session) {
	t.Helper()
	if len(roles) == 0 {
		roles = []authsdk.RoleAssignment{{Role: "vendor_user", VendorID: "vendor-1"}}
	}

	user, err := admin.CreateUser(t.Context(), authsdk.CreateUserRequest{
		Email:    email,
		Password: userPassword,
		Roles:    roles,
	})
	require.NoError(t, err)

	session, err := client.Login(t.Context(), authsdk.LoginRequest{Email: email, Password: userPassword})
	require.NoError(t, err)
	return user, session
}

// requireAPIError checks that err is an *authsdk.APIError with status and code.
func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr, "expected an APIError, got %v", err)
	require.Equal(t, status, apiErr.StatusCode, "unexpected status for %v", err)
	require.Equal(t, code, apiErr.Code)
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
