package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/service"
	"github.com/aussiebroadwan/vendorauth/pkg/authsdk"
	"github.com/aussiebroadwan/vendorauth/pkg/httpx"
	"github.com/aussiebroadwan/vendorauth/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Bootstrap the service
//	@Description	Creates the first elika_admin account. Only available when BOOTSTRAP_TOKEN is configured and only while no user exists.
//	@Description	The admin must enroll in 2FA on first login.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string							true	"Bootstrap token"
//	@Param			request				body		authsdk.BootstrapRequest		true	"Admin account"
//	@Success		201					{object}	authsdk.BootstrapResponse
//	@Failure		400					{object}	authsdk.ValidationErrorResponse	"Invalid request body or validation failed"
//	@Failure		401					{object}	authsdk.ErrorResponse			"BOOTSTRAP_UNAUTHORIZED"
//	@Failure		404					{object}	authsdk.ErrorResponse			"BOOTSTRAP_DISABLED"
//	@Failure		409					{object}	authsdk.ErrorResponse			"ALREADY_BOOTSTRAPPED"
//	@Router			/v1/bootstrap [post].
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())

	if h.BootstrapService.Token == "" {
		writeError(w, r, service.ErrBootstrapDisabled)
		return
	}

	token := r.Header.Get(authsdk.BootstrapTokenHeader)
	if token == "" {
		writeError(w, r, service.ErrBootstrapUnauthorized)
		return
	}

	var req authsdk.BootstrapRequest
	if !decode(w, r, &req) {
		return
	}
	if errs := req.Validate(); errs != nil {
		writeValidation(w, errs)
		return
	}

	adminID, err := h.BootstrapService.Bootstrap(r.Context(), token, domain.BootstrapData{
		AdminEmail:    strings.TrimSpace(req.AdminEmail),
		AdminPassword: req.AdminPassword,
	})
	if err != nil {
		l.Warn("bootstrap rejected", "code", service.Code(err))
		writeError(w, r, err)
		return
	}

	l.Info("service bootstrapped", "admin_user_id", adminID)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.BootstrapResponse{AdminUserID: adminID})
}
