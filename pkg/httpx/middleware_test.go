package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/aussiebroadwan/vendorauth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

type fakePrincipal struct {
	id      string
	roles   []string
	vendors []string
}

func (p fakePrincipal) Subject() string { return p.id }

func (p fakePrincipal) HasAnyRole(kinds ...string) bool {
	for _, k := range kinds {
		if slices.Contains(p.roles, k) {
			return true
		}
	}
	return false
}

func (p fakePrincipal) CanAccessVendor(id string) bool { return slices.Contains(p.vendors, id) }

var errNoToken = errors.New("no token")

func fakeAuth(_ context.Context, raw string) (httpx.Principal, error) {
	switch raw {
	case "":
		return nil, errNoToken
	case "admin":
		return fakePrincipal{id: "u-admin", roles: []string{"elika_admin"}}, nil
	case "vendor":
		return fakePrincipal{id: "u-vendor", roles: []string{"vendor_user"}, vendors: []string{"v-1"}}, nil
	}
	return nil, errors.New("bad token")
}

func writeErr(w http.ResponseWriter, _ *http.Request, err error) {
	httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }),
		mw("outer"), mw("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Equal(t, "", httpx.BearerToken(req))

	req.Header.Set("Authorization", "bearer  abc ")
	require.Equal(t, "abc", httpx.BearerToken(req))

	req.Header.Set("Authorization", "Basic abc")
	require.Equal(t, "", httpx.BearerToken(req))
}

func TestAuthnAndGuards(t *testing.T) {
	mux := http.NewServeMux()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, found := httpx.PrincipalFrom(r.Context())
		require.True(t, found)
		_, _ = w.Write([]byte(p.Subject()))
	})
	authn := httpx.Authn(fakeAuth, writeErr)

	mux.Handle("GET /me", httpx.Chain(ok, authn))
	mux.Handle("GET /admin", httpx.Chain(ok, authn, httpx.RequireAnyRole("elika_admin", "finance_team")))
	mux.Handle("GET /vendors/{vendorID}", httpx.Chain(ok, authn, httpx.RequireVendorScope("vendorID")))

	do := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	rec := do("/me", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Bearer"))

	rec = do("/me", "vendor")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "u-vendor", rec.Body.String())

	require.Equal(t, http.StatusForbidden, do("/admin", "vendor").Code)
	require.Equal(t, http.StatusOK, do("/admin", "admin").Code)

	require.Equal(t, http.StatusOK, do("/vendors/v-1", "vendor").Code)
	require.Equal(t, http.StatusForbidden, do("/vendors/v-2", "vendor").Code)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.test"}`))
	require.NoError(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &dst))
	require.Equal(t, "a@b.test", dst.Email)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a","extra":1}`))
	require.Error(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &dst))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a"} {}`))
	require.Error(t, httpx.DecodeJSON(httptest.NewRecorder(), req, &dst))
}
