package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the vendor portal authentication service. It
// covers the unauthenticated endpoints and creates Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// UserAgent is sent on every request and recorded against sessions.
	UserAgent string
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login exchanges credentials for a session. Accounts with 2FA enabled
// must set TwoFactorCode; without it the error has code TWO_FA_REQUIRED.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	resp, err := c.postJSON(ctx, "/v1/auth/login", req, nil)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}

	s := newSession(c, &tokenResp)
	s.deviceID = req.DeviceID
	return s, nil
}

// Refresh exchanges a refresh token for a new access token. The returned
// refresh token replaces the old one when Rotated is set.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken, deviceID string) (*TokenResponse, error) {
	resp, err := c.postJSON(ctx, "/v1/auth/refresh", RefreshRequest{
		RefreshToken: refreshToken,
		DeviceID:     deviceID,
	}, nil)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

// ForgotPassword requests a reset link. The server answers the same way
// whether or not the address has an account.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) error {
	resp, err := c.postJSON(ctx, "/v1/auth/password/forgot", ForgotPasswordRequest{Email: email}, nil)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusAccepted)
}

// ResetPassword sets a new password using a reset token. Every session of
// the account is ended.
func (c *SDKClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	resp, err := c.postJSON(ctx, "/v1/auth/password/reset", ResetPasswordRequest{
		Token:       token,
		NewPassword: newPassword,
	}, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// VerifyEmail consumes an email verification token.
func (c *SDKClient) VerifyEmail(ctx context.Context, token string) error {
	resp, err := c.postJSON(ctx, "/v1/auth/email/verify", VerifyEmailRequest{Token: token}, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// NewSessionFromTokens wraps tokens obtained elsewhere. The session still
// refreshes automatically.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int64) *Session {
	return newSession(c, &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
	})
}
