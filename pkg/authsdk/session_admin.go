package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreateUser creates an account. Requires: elika_admin
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/users", req)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetRoles replaces a user's role assignments. Requires: elika_admin
func (s *Session) SetRoles(ctx context.Context, userID string, roles []RoleAssignment) (*UserResponse, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPut, "/v1/users/"+url.PathEscape(userID)+"/roles", SetRolesRequest{Roles: roles})
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeactivateUser disables an account and ends its sessions. Requires: elika_admin
func (s *Session) DeactivateUser(ctx context.Context, userID string) error {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/users/"+url.PathEscape(userID)+"/deactivate", nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ActivateUser re-enables an account. Requires: elika_admin
func (s *Session) ActivateUser(ctx context.Context, userID string) error {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/users/"+url.PathEscape(userID)+"/activate", nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// RotateKey generates a new signing key. Requires: elika_admin
func (s *Session) RotateKey(ctx context.Context, req RotateKeyRequest) (*RotateKeyResponse, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/keys/rotate", req)
	if err != nil {
		return nil, err
	}

	var rotateResp RotateKeyResponse
	if err := decodeJSON(resp, &rotateResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &rotateResp, nil
}

// ListKeys returns every signing key with its status. Requires: elika_admin
func (s *Session) ListKeys(ctx context.Context) ([]SigningKeyInfo, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodGet, "/v1/keys", nil)
	if err != nil {
		return nil, err
	}

	var list ListSigningKeysResponse
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return list.Keys, nil
}

// RetireKey stops a key from signing. Requires: elika_admin
func (s *Session) RetireKey(ctx context.Context, kid string) error {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/keys/"+url.PathEscape(kid)+"/retire", nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// CheckVendorAccess returns nil if the caller may act for vendorID, or an
// *APIError with code FORBIDDEN if not.
func (s *Session) CheckVendorAccess(ctx context.Context, vendorID string) error {
	resp, err := s.doAuthJSON(ctx, http.MethodGet, "/v1/vendors/"+url.PathEscape(vendorID)+"/access", nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
