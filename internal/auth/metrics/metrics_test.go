package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestAuthMetrics(t *testing.T) {
	m := metrics.New()
	m.Login("success")
	m.Login("success")
	m.Login("locked")
	m.Revoked("logout_all", 3)
	m.Revoked("logout", 0)
	m.ObservePasswordHash(40 * time.Millisecond)

	n, err := testutil.GatherAndCount(m.Registry(), "vendorauth_logins_total")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	require.Contains(t, string(body), `vendorauth_logins_total{outcome="success"} 2`)
	require.Contains(t, string(body), `vendorauth_revocations_total{reason="logout_all"} 3`)
	require.Contains(t, string(body), "vendorauth_password_hash_seconds_count 1")
}

func TestNilAuthIsNoop(t *testing.T) {
	var m *metrics.Auth
	m.Login("success")
	m.Refresh("rotated")
	m.Revoked("logout", 1)
	m.Notification("password_reset", "sent")
	m.ObservePasswordHash(time.Second)
	require.Nil(t, m.Registry())
}
