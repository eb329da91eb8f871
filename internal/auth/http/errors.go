package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/vendorauth/internal/auth/service"
	"github.com/aussiebroadwan/vendorauth/pkg/authsdk"
	"github.com/aussiebroadwan/vendorauth/pkg/httpx"
	"github.com/aussiebroadwan/vendorauth/pkg/jwtx"
	"github.com/aussiebroadwan/vendorauth/pkg/slogx"
)

var statusByCode = map[string]int{
	authsdk.ErrorCodeMissingToken:        http.StatusUnauthorized,
	authsdk.ErrorCodeTokenExpired:        http.StatusUnauthorized,
	authsdk.ErrorCodeInvalidToken:        http.StatusUnauthorized,
	authsdk.ErrorCodeTokenRevoked:        http.StatusUnauthorized,
	authsdk.ErrorCodeInvalidRefreshToken: http.StatusUnauthorized,
	authsdk.ErrorCodeInvalidCredentials:  http.StatusUnauthorized,
	authsdk.ErrorCodeTwoFARequired:       http.StatusUnauthorized,

	authsdk.ErrorCodeUserInactive:       http.StatusForbidden,
	authsdk.ErrorCodeTwoFASetupRequired: http.StatusForbidden,

	authsdk.ErrorCodeAccountLocked: http.StatusLocked,

	authsdk.ErrorCodeInvalid2FAToken:          http.StatusBadRequest,
	authsdk.ErrorCodeInvalidVerificationToken: http.StatusBadRequest,
	authsdk.ErrorCodeInvalidResetToken:        http.StatusBadRequest,
	authsdk.ErrorCodeTwoFANotEnabled:          http.StatusBadRequest,
	authsdk.ErrorCodeTwoFANotSetup:            http.StatusBadRequest,
	authsdk.ErrorCodeWeakPassword:             http.StatusBadRequest,
	authsdk.ErrorCodeInvalidRequest:           http.StatusBadRequest,

	authsdk.ErrorCodeEmailTaken:           http.StatusConflict,
	authsdk.ErrorCodeEmailAlreadyVerified: http.StatusConflict,
	authsdk.ErrorCodeTwoFAAlreadyEnabled:  http.StatusConflict,
	authsdk.ErrorCodeAlreadyBootstrapped:  http.StatusConflict,

	authsdk.ErrorCodeUserNotFound:      http.StatusNotFound,
	authsdk.ErrorCodeSessionNotFound:   http.StatusNotFound,
	authsdk.ErrorCodeBootstrapDisabled: http.StatusNotFound,

	authsdk.ErrorCodeBootstrapUnauthorized: http.StatusUnauthorized,
}

// toAPIError maps a service failure onto the response it is reported as.
// Errors without a code become 500 SERVER_ERROR.
func toAPIError(err error) *authsdk.APIError {
	switch {
	case errors.Is(err, jwtx.ErrUnknownKID):
		return authsdk.ErrKeyNotFound
	case errors.Is(err, jwtx.ErrLastSigner):
		return authsdk.NewAPIError(http.StatusConflict, authsdk.ErrorCodeInvalidRequest, "the last active signing key cannot be retired")
	}

	code := service.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		return authsdk.ErrServerError
	}
	return authsdk.NewAPIError(status, code, strings.TrimPrefix(err.Error(), code+": "))
}

// writeError is the httpx.ErrorWriter for every route.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
	}
	apiErr.WriteError(w)
}

func writeBadRequest(w http.ResponseWriter, desc string) {
	authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, desc).WriteError(w)
}

func writeValidation(w http.ResponseWriter, details map[string]string) {
	httpx.WriteJSON(w, http.StatusBadRequest, authsdk.ValidationErrorResponse{
		Code:    authsdk.ErrorCodeInvalidRequest,
		Message: "validation failed for some fields",
		Details: details,
	})
}
