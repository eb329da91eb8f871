package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Me returns the account behind the session.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodGet, "/v1/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword sets a new password. Every other session is ended and
// this session continues with the fresh tokens returned by the server.
func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	s.mu.RLock()
	deviceID := s.deviceID
	s.mu.RUnlock()

	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/auth/password/change", ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
		DeviceID:        deviceID,
	})
	if err != nil {
		return err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return err
	}

	s.mu.Lock()
	s.setTokens(&tokenResp)
	s.mu.Unlock()
	return nil
}

// ResendVerification sends a new email verification link.
func (s *Session) ResendVerification(ctx context.Context) error {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/auth/email/resend", nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusAccepted)
}

// ListSessions returns the user's live sessions.
func (s *Session) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodGet, "/v1/auth/sessions", nil)
	if err != nil {
		return nil, err
	}

	var list ListSessionsResponse
	if err := decodeJSON(resp, &list, http.StatusOK); err != nil {
		return nil, err
	}
	return list.Sessions, nil
}

// RevokeSession ends one of the user's sessions by ID.
func (s *Session) RevokeSession(ctx context.Context, sessionID string) error {
	resp, err := s.doAuthJSON(ctx, http.MethodDelete, "/v1/auth/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
