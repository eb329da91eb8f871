package httpx

import (
	"net/http"
	"strings"
)

// RequireAnyRole lets the request through if the caller holds at least one
// of kinds. It must run after Authn.
func RequireAnyRole(kinds ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				writeForbidden(w, "authentication required")
				return
			}
			if !p.HasAnyRole(kinds...) {
				writeForbidden(w, "requires one of: "+strings.Join(kinds, ", "))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireVendorScope checks that the caller may act on the vendor named by
// the path wildcard param (see http.Request.PathValue).
func RequireVendorScope(param string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				writeForbidden(w, "authentication required")
				return
			}
			vendorID := r.PathValue(param)
			if vendorID == "" || !p.CanAccessVendor(vendorID) {
				writeForbidden(w, "vendor out of scope")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeForbidden(w http.ResponseWriter, desc string) {
	WriteJSON(w, http.StatusForbidden, map[string]string{
		"error":             "FORBIDDEN",
		"error_description": desc,
	})
}
