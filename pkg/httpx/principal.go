package httpx

import "context"

// Principal is the authenticated caller attached to a request by the
// authentication gate and consumed by the authorization guards.
type Principal interface {
	Subject() string
	HasAnyRole(kinds ...string) bool
	CanAccessVendor(vendorID string) bool
}

type principalKey struct{}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller attached by the gate, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p != nil
}
