package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/vendorauth/internal/auth/service"
	"github.com/aussiebroadwan/vendorauth/pkg/authsdk"
	"github.com/aussiebroadwan/vendorauth/pkg/httpx"
	"github.com/aussiebroadwan/vendorauth/pkg/slogx"
)

// AuthHandler serves the /v1/auth routes.
type AuthHandler struct {
	Sessions *service.SessionService
	Users    *service.UserService
}

// decode reads the JSON body into dst and answers 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		writeBadRequest(w, err.Error())
		return false
	}
	return true
}

// caller returns the gate's identity or answers 401.
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := identityFrom(r)
	if !ok {
		writeError(w, r, service.ErrMissingToken)
		return "", false
	}
	return id.UserID, true
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Log in
//	@Description	Exchanges email and password, plus a TOTP or backup code when 2FA is enabled, for an access and refresh token.
//	@Description	Privileged users who have not enrolled in 2FA get tokens limited to the enrollment routes and two_factor_setup_required=true.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed request or invalid 2FA code"
//	@Failure		401		{object}	authsdk.ErrorResponse	"INVALID_CREDENTIALS or TWO_FA_REQUIRED"
//	@Failure		403		{object}	authsdk.ErrorResponse	"USER_INACTIVE"
//	@Failure		423		{object}	authsdk.ErrorResponse	"ACCOUNT_LOCKED"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limited"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}

	res, err := h.Sessions.Login(r.Context(), service.LoginRequest{
		Email:         req.Email,
		Password:      req.Password,
		TwoFactorCode: strings.TrimSpace(req.TwoFactorCode),
		Device:        deviceFrom(r, req.DeviceID),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := tokenResponse(res.TokenPair)
	resp.TwoFactorSetupRequired = res.TwoFactorSetupRequired
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleRefresh handles POST /v1/auth/refresh
//
//	@Summary		Refresh tokens
//	@Description	Issues a new access token. The refresh token is rotated once it is older than the rotation age; rotated=true signals the client must store the new one.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.ErrorResponse
//	@Failure		401		{object}	authsdk.ErrorResponse	"INVALID_REFRESH_TOKEN"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if !decode(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeBadRequest(w, "refresh_token is required")
		return
	}

	res, err := h.Sessions.Refresh(r.Context(), req.RefreshToken, deviceFrom(r, req.DeviceID))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := tokenResponse(res.TokenPair)
	resp.Rotated = res.Rotated
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleLogout handles POST /v1/auth/logout
//
//	@Summary		Log out
//	@Description	Revokes one refresh token. The access token stays valid until it expires.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Param			body	body	authsdk.LogoutRequest	true	"Refresh token to revoke"
//	@Success		204		"Logged out"
//	@Failure		401		{object}	authsdk.ErrorResponse	"INVALID_REFRESH_TOKEN"
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LogoutRequest
	if !decode(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeBadRequest(w, "refresh_token is required")
		return
	}

	if err := h.Sessions.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLogoutAll handles POST /v1/auth/logout-all
//
//	@Summary		Log out everywhere
//	@Description	Revokes every refresh token of the caller and invalidates all outstanding access tokens.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204	"Logged out"
//	@Failure		401	{object}	authsdk.ErrorResponse
//	@Router			/v1/auth/logout-all [post].
func (h *AuthHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.Sessions.LogoutAll(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleForgotPassword handles POST /v1/auth/password/forgot
//
//	@Summary		Request a password reset
//	@Description	Sends a reset link if the address belongs to an active account. The response is the same either way.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.ForgotPasswordRequest	true	"Account email"
//	@Success		202		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.ErrorResponse
//	@Router			/v1/auth/password/forgot [post].
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ForgotPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeBadRequest(w, "email is required")
		return
	}

	err := h.Sessions.RequestPasswordReset(r.Context(), req.Email, deviceFrom(r, ""))
	if err != nil && service.Code(err) == "" {
		writeError(w, r, err)
		return
	}
	if err != nil {
		slogx.FromContext(r.Context()).Debug("password reset not issued", "code", service.Code(err))
	}
	httpx.WriteJSON(w, http.StatusAccepted, authsdk.MessageResponse{
		Message: "if the address belongs to an account, a reset link has been sent",
	})
}

// HandleResetPassword handles POST /v1/auth/password/reset
//
//	@Summary		Reset password
//	@Description	Sets a new password with a reset token and ends every session of the account.
//	@Tags			Auth
//	@Accept			json
//	@Param			body	body	authsdk.ResetPasswordRequest	true	"Reset token and new password"
//	@Success		204		"Password reset"
//	@Failure		400		{object}	authsdk.ErrorResponse	"INVALID_RESET_TOKEN or WEAK_PASSWORD"
//	@Router			/v1/auth/password/reset [post].
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Token == "" {
		writeError(w, r, service.ErrInvalidResetToken)
		return
	}

	if err := h.Sessions.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleChangePassword handles POST /v1/auth/password/change
//
//	@Summary		Change password
//	@Description	Replaces the caller's password. Every session is ended and a fresh token pair is returned for this device.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"WEAK_PASSWORD"
//	@Failure		401		{object}	authsdk.ErrorResponse	"INVALID_CREDENTIALS"
//	@Router			/v1/auth/password/change [post].
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var req authsdk.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}

	pair, err := h.Sessions.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword, deviceFrom(r, req.DeviceID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResponse(*pair))
}

// HandleVerifyEmail handles POST /v1/auth/email/verify
//
//	@Summary		Verify email address
//	@Tags			Auth
//	@Accept			json
//	@Param			body	body	authsdk.VerifyEmailRequest	true	"Verification token"
//	@Success		204		"Verified"
//	@Failure		400		{object}	authsdk.ErrorResponse	"INVALID_VERIFICATION_TOKEN"
//	@Router			/v1/auth/email/verify [post].
func (h *AuthHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyEmailRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Token == "" {
		writeError(w, r, service.ErrInvalidVerificationToken)
		return
	}

	if err := h.Sessions.VerifyEmail(r.Context(), req.Token); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleResendVerification handles POST /v1/auth/email/resend
//
//	@Summary		Resend verification email
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		202	{object}	authsdk.MessageResponse
//	@Failure		409	{object}	authsdk.ErrorResponse	"EMAIL_ALREADY_VERIFIED"
//	@Router			/v1/auth/email/resend [post].
func (h *AuthHandler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.Sessions.ResendVerification(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusAccepted, authsdk.MessageResponse{Message: "verification email sent"})
}

// HandleMe handles GET /v1/auth/me
//
//	@Summary		Current user
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse
//	@Failure		401	{object}	authsdk.ErrorResponse
//	@Router			/v1/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r)
	if !ok {
		writeError(w, r, service.ErrMissingToken)
		return
	}

	user, err := h.Users.Get(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := userToSDK(user)
	resp.TwoFactorPending = id.TwoFactorPending
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleListSessions handles GET /v1/auth/sessions
//
//	@Summary		List sessions
//	@Description	Lists the caller's live refresh tokens, newest first.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ListSessionsResponse
//	@Failure		401	{object}	authsdk.ErrorResponse
//	@Router			/v1/auth/sessions [get].
func (h *AuthHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	tokens, err := h.Sessions.Tokens.ListSessions(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := authsdk.ListSessionsResponse{Sessions: make([]authsdk.SessionInfo, len(tokens))}
	for i, t := range tokens {
		resp.Sessions[i] = sessionToSDK(t)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleRevokeSession handles DELETE /v1/auth/sessions/{id}
//
//	@Summary		End a session
//	@Tags			Auth
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Session ID"
//	@Success		204	"Session ended"
//	@Failure		404	{object}	authsdk.ErrorResponse	"SESSION_NOT_FOUND"
//	@Router			/v1/auth/sessions/{id} [delete].
func (h *AuthHandler) HandleRevokeSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	if err := h.Sessions.Tokens.RevokeSession(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
