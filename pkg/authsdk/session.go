package authsdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// refreshBuffer refreshes the access token this long before it expires.
const refreshBuffer = 30 * time.Second

// ErrNoRefreshToken is returned when the access token has expired and the
// session has no refresh token to renew it with.
var ErrNoRefreshToken = errors.New("authsdk: access token expired and no refresh token available")

// Session is an authenticated session. All Session methods refresh the
// access token when needed and are safe for concurrent use.
type Session struct {
	client *SDKClient

	mu                     sync.RWMutex
	accessToken            string
	refreshToken           string
	deviceID               string
	expiresAt              time.Time
	twoFactorSetupRequired bool
}

func newSession(client *SDKClient, tokenResp *TokenResponse) *Session {
	s := &Session{client: client}
	s.setTokens(tokenResp)
	return s
}

// setTokens must be called with mu held for writing, or before the session
// is shared.
func (s *Session) setTokens(tokenResp *TokenResponse) {
	s.accessToken = tokenResp.AccessToken
	if tokenResp.RefreshToken != "" {
		s.refreshToken = tokenResp.RefreshToken
	}
	s.expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - refreshBuffer)
	s.twoFactorSetupRequired = tokenResp.TwoFactorSetupRequired
}

// getValidToken returns a valid access token, automatically refreshing if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if err := s.refreshLocked(ctx); err != nil {
		return "", err
	}
	return s.accessToken, nil
}

func (s *Session) refreshLocked(ctx context.Context) error {
	if s.refreshToken == "" {
		return ErrNoRefreshToken
	}

	tokenResp, err := s.client.Refresh(ctx, s.refreshToken, s.deviceID)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}
	s.setTokens(tokenResp)
	return nil
}

// Refresh renews the access token now, regardless of its expiry.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// TwoFactorSetupRequired reports whether the last login asked the user to
// enroll in 2FA before using the rest of the API.
func (s *Session) TwoFactorSetupRequired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.twoFactorSetupRequired
}

// Logout revokes this session's refresh token.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.RLock()
	refreshToken := s.refreshToken
	s.mu.RUnlock()

	if refreshToken == "" {
		return ErrNoRefreshToken
	}

	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/auth/logout", LogoutRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// LogoutAll revokes every session of the user, this one included.
func (s *Session) LogoutAll(ctx context.Context) error {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/auth/logout-all", nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
