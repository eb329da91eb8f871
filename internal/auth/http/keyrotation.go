package http

import (
	"net/http"

	"github.com/aussiebroadwan/vendorauth/internal/auth/service"
	"github.com/aussiebroadwan/vendorauth/pkg/authsdk"
	"github.com/aussiebroadwan/vendorauth/pkg/httpx"
)

// KeyRotationHandler manages signing keys in ephemeral and persistent
// modes. Every route requires elika_admin.
type KeyRotationHandler struct {
	KeyRotationService *service.KeyRotationService
	Clock              service.Clock
}

func (h *KeyRotationHandler) clock() service.Clock {
	if h.Clock == nil {
		return service.SystemClock{}
	}
	return h.Clock
}

// HandleRotate handles POST /v1/keys/rotate
//
//	@Summary		Rotate signing keys
//	@Description	Generates a new signing key and optionally retires the others. Retired keys keep verifying for the grace period.
//	@Tags			Keys
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.RotateKeyRequest	false	"Rotation options"
//	@Success		200		{object}	authsdk.RotateKeyResponse
//	@Failure		401		{object}	authsdk.ErrorResponse
//	@Failure		403		{object}	authsdk.ErrorResponse	"Requires elika_admin"
//	@Router			/v1/keys/rotate [post].
func (h *KeyRotationHandler) HandleRotate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RotateKeyRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.KeyRotationService.RotateKey(r.Context(), service.RotateKeyRequest{
		RetireExisting: req.RetireExisting,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := h.clock().Now()
	httpx.WriteJSON(w, http.StatusOK, authsdk.RotateKeyResponse{
		NewKey:      keyToSDK(resp.NewKey, now),
		RetiredKeys: keysToSDK(resp.RetiredKeys, now),
		ActiveKeys:  resp.ActiveKeys,
	})
}

// HandleListKeys handles GET /v1/keys
//
//	@Summary		List signing keys
//	@Tags			Keys
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ListSigningKeysResponse
//	@Failure		403	{object}	authsdk.ErrorResponse	"Requires elika_admin"
//	@Router			/v1/keys [get].
func (h *KeyRotationHandler) HandleListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.KeyRotationService.ListSigningKeys(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.ListSigningKeysResponse{Keys: keysToSDK(keys, h.clock().Now())})
}

// HandleRetireKey handles POST /v1/keys/{kid}/retire
//
//	@Summary		Retire a signing key
//	@Description	Stops a key from signing without adding a replacement. The last active key cannot be retired.
//	@Tags			Keys
//	@Security		BearerAuth
//	@Param			kid	path	string	true	"Key ID"
//	@Success		204	"Retired"
//	@Failure		404	{object}	authsdk.ErrorResponse	"KEY_NOT_FOUND"
//	@Failure		409	{object}	authsdk.ErrorResponse	"Last active key"
//	@Router			/v1/keys/{kid}/retire [post].
func (h *KeyRotationHandler) HandleRetireKey(w http.ResponseWriter, r *http.Request) {
	if err := h.KeyRotationService.RetireKey(r.Context(), r.PathValue("kid")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
