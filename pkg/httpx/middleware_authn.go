package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/vendorauth/pkg/slogx"
)

// AuthenticateFunc resolves a raw bearer token into a Principal. raw is
// empty when the request carried no bearer credential; the function decides
// how to report that.
type AuthenticateFunc func(ctx context.Context, raw string) (Principal, error)

// ErrorWriter renders err onto w.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// Authn is the request authentication gate. Rejections are rendered by
// onError with an RFC 6750 challenge header; accepted requests carry the
// Principal and a logger tagged with its subject.
func Authn(authenticate AuthenticateFunc, onError ErrorWriter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			p, err := authenticate(ctx, BearerToken(r))
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				onError(w, r, err)
				return
			}

			ctx = WithPrincipal(ctx, p)
			ctx = slogx.With(ctx, "user_id", p.Subject())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
