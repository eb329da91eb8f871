package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/vendorauth/internal/auth/service"
	"github.com/aussiebroadwan/vendorauth/pkg/authsdk"
	"github.com/aussiebroadwan/vendorauth/pkg/httpx"
)

// TwoFactorHandler serves the /v1/2fa routes. Every route is reachable by
// privileged users who have not enrolled yet.
type TwoFactorHandler struct {
	Sessions *service.SessionService
}

// code reads a TwoFactorCodeRequest and answers 400 if the code is empty.
func code(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req authsdk.TwoFactorCodeRequest
	if !decode(w, r, &req) {
		return "", false
	}
	c := strings.TrimSpace(req.Code)
	if c == "" {
		writeBadRequest(w, "code is required")
		return "", false
	}
	return c, true
}

// HandleSetup handles POST /v1/2fa/setup
//
//	@Summary		Start 2FA enrollment
//	@Description	Generates a TOTP secret and ten backup codes. Nothing is enforced until /v1/2fa/enable confirms a code.
//	@Description	Calling it again before enabling replaces the pending secret.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TwoFactorSetupResponse	"Secret, otpauth URL and backup codes (shown once)"
//	@Failure		401	{object}	authsdk.ErrorResponse
//	@Failure		409	{object}	authsdk.ErrorResponse	"TWO_FA_ALREADY_ENABLED"
//	@Router			/v1/2fa/setup [post].
func (h *TwoFactorHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	setup, err := h.Sessions.SetupTwoFactor(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TwoFactorSetupResponse{
		Secret:      setup.Secret,
		OTPAuthURL:  setup.OTPAuthURL,
		BackupCodes: setup.BackupCodes,
		Required:    setup.Required,
	})
}

// HandleEnable handles POST /v1/2fa/enable
//
//	@Summary		Enable 2FA
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Accept			json
//	@Param			body	body	authsdk.TwoFactorCodeRequest	true	"TOTP code from the pending secret"
//	@Success		204		"Enabled"
//	@Failure		400		{object}	authsdk.ErrorResponse	"INVALID_2FA_TOKEN or TWO_FA_NOT_SETUP"
//	@Failure		409		{object}	authsdk.ErrorResponse	"TWO_FA_ALREADY_ENABLED"
//	@Router			/v1/2fa/enable [post].
func (h *TwoFactorHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	c, ok := code(w, r)
	if !ok {
		return
	}

	if err := h.Sessions.EnableTwoFactor(r.Context(), userID, c); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleVerify handles POST /v1/2fa/verify
//
//	@Summary		Verify a 2FA code
//	@Description	Checks a TOTP or backup code. A matching backup code is consumed.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Accept			json
//	@Param			body	body	authsdk.TwoFactorCodeRequest	true	"TOTP or backup code"
//	@Success		204		"Code accepted"
//	@Failure		400		{object}	authsdk.ErrorResponse	"INVALID_2FA_TOKEN or TWO_FA_NOT_ENABLED"
//	@Router			/v1/2fa/verify [post].
func (h *TwoFactorHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	c, ok := code(w, r)
	if !ok {
		return
	}

	if err := h.Sessions.VerifyTwoFactor(r.Context(), userID, c); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDisable handles POST /v1/2fa/disable
//
//	@Summary		Disable 2FA
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Accept			json
//	@Param			body	body	authsdk.TwoFactorCodeRequest	true	"Current TOTP or backup code"
//	@Success		204		"Disabled"
//	@Failure		400		{object}	authsdk.ErrorResponse	"INVALID_2FA_TOKEN or TWO_FA_NOT_ENABLED"
//	@Router			/v1/2fa/disable [post].
func (h *TwoFactorHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	c, ok := code(w, r)
	if !ok {
		return
	}

	if err := h.Sessions.DisableTwoFactor(r.Context(), userID, c); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRegenerateBackupCodes handles POST /v1/2fa/backup-codes
//
//	@Summary		Regenerate backup codes
//	@Description	Replaces every backup code. Requires a current TOTP code.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.TwoFactorCodeRequest	true	"Current TOTP code"
//	@Success		200		{object}	authsdk.BackupCodesResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"INVALID_2FA_TOKEN or TWO_FA_NOT_ENABLED"
//	@Router			/v1/2fa/backup-codes [post].
func (h *TwoFactorHandler) HandleRegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	c, ok := code(w, r)
	if !ok {
		return
	}

	codes, err := h.Sessions.RegenerateBackupCodes(r.Context(), userID, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.BackupCodesResponse{BackupCodes: codes})
}

// HandleStatus handles GET /v1/2fa/status
//
//	@Summary		2FA status
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TwoFactorStatusResponse
//	@Router			/v1/2fa/status [get].
func (h *TwoFactorHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	st, err := h.Sessions.TwoFactorStatus(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.TwoFactorStatusResponse{
		State:                string(st.State),
		Required:             st.Required,
		EnabledAt:            st.EnabledAt,
		RemainingBackupCodes: st.RemainingBackupCodes,
	})
}
