package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/service"
	"github.com/aussiebroadwan/vendorauth/pkg/authsdk"
	"github.com/aussiebroadwan/vendorauth/pkg/httpx"
)

// identityFrom returns the caller placed in the context by the gate.
func identityFrom(r *http.Request) (domain.Identity, bool) {
	p, ok := httpx.PrincipalFrom(r.Context())
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := p.(domain.Identity)
	return id, ok
}

func deviceFrom(r *http.Request, deviceID string) domain.DeviceContext {
	return domain.DeviceContext{
		UserAgent: r.UserAgent(),
		IPAddress: httpx.IPKeyExtractor(r),
		DeviceID:  deviceID,
	}
}

func tokenResponse(p domain.TokenPair) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    p.ExpiresIn,
	}
}

func rolesToSDK(roles domain.Roles) []authsdk.RoleAssignment {
	out := make([]authsdk.RoleAssignment, len(roles))
	for i, r := range roles {
		vendorID, _ := r.VendorID()
		out[i] = authsdk.RoleAssignment{Role: string(r.Kind()), VendorID: vendorID}
	}
	return out
}

// rolesFromSDK parses wire roles. The error is reported as INVALID_REQUEST.
func rolesFromSDK(in []authsdk.RoleAssignment) (domain.Roles, error) {
	out := make(domain.Roles, 0, len(in))
	for _, a := range in {
		r, err := domain.ParseRole(a.Role, a.VendorID)
		if err != nil {
			return nil, &service.Error{Code: service.ErrInvalidRequest.Code, Message: err.Error()}
		}
		out = append(out, r)
	}
	return out, nil
}

func userToSDK(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Roles:         rolesToSDK(u.Roles),
		Active:        u.Active,
		EmailVerified: u.EmailVerified,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
	}
}

func sessionToSDK(t domain.RefreshToken) authsdk.SessionInfo {
	return authsdk.SessionInfo{
		ID:         t.ID,
		UserAgent:  t.Device.UserAgent,
		IPAddress:  t.Device.IPAddress,
		DeviceID:   t.Device.DeviceID,
		CreatedAt:  t.CreatedAt,
		LastUsedAt: t.LastUsedAt,
		ExpiresAt:  t.ExpiresAt,
	}
}

func keyToSDK(k domain.SigningKey, now time.Time) authsdk.SigningKeyInfo {
	info := authsdk.SigningKeyInfo{
		Kid:       k.Kid,
		Algorithm: k.Algorithm,
		RetiredAt: k.RetiredAt,
	}
	// Keys without timestamps come from an ephemeral key manager and are
	// active for as long as they are listed.
	if !k.ExpiresAt.IsZero() {
		info.ExpiresAt = &k.ExpiresAt
	}
	if k.CreatedAt.IsZero() {
		info.Active = k.RetiredAt == nil
		return info
	}
	info.Active = k.IsActive(now)
	info.CreatedAt = &k.CreatedAt
	return info
}

func keysToSDK(keys []domain.SigningKey, now time.Time) []authsdk.SigningKeyInfo {
	out := make([]authsdk.SigningKeyInfo, len(keys))
	for i, k := range keys {
		out[i] = keyToSDK(k, now)
	}
	return out
}
