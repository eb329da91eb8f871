package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/vendorauth/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

// Stable error codes returned in the "error" field of every failure body.
const (
	ErrorCodeMissingToken             = "MISSING_TOKEN"
	ErrorCodeTokenExpired             = "TOKEN_EXPIRED"
	ErrorCodeInvalidToken             = "INVALID_TOKEN"
	ErrorCodeTokenRevoked             = "TOKEN_REVOKED"
	ErrorCodeInvalidRefreshToken      = "INVALID_REFRESH_TOKEN"
	ErrorCodeUserInactive             = "USER_INACTIVE"
	ErrorCodeAccountLocked            = "ACCOUNT_LOCKED"
	ErrorCodeInvalidCredentials       = "INVALID_CREDENTIALS"
	ErrorCodeTwoFASetupRequired       = "TWO_FA_SETUP_REQUIRED"
	ErrorCodeTwoFANotEnabled          = "TWO_FA_NOT_ENABLED"
	ErrorCodeInvalid2FAToken          = "INVALID_2FA_TOKEN"
	ErrorCodeTwoFARequired            = "TWO_FA_REQUIRED"
	ErrorCodeTwoFAAlreadyEnabled      = "TWO_FA_ALREADY_ENABLED"
	ErrorCodeTwoFANotSetup            = "TWO_FA_NOT_SETUP"
	ErrorCodeInvalidVerificationToken = "INVALID_VERIFICATION_TOKEN"
	ErrorCodeInvalidResetToken        = "INVALID_RESET_TOKEN"
	ErrorCodeEmailAlreadyVerified     = "EMAIL_ALREADY_VERIFIED"
	ErrorCodeEmailTaken               = "EMAIL_TAKEN"
	ErrorCodeWeakPassword             = "WEAK_PASSWORD"
	ErrorCodeInvalidRequest           = "INVALID_REQUEST"
	ErrorCodeUserNotFound             = "USER_NOT_FOUND"
	ErrorCodeSessionNotFound          = "SESSION_NOT_FOUND"
	ErrorCodeKeyNotFound              = "KEY_NOT_FOUND"
	ErrorCodeForbidden                = "FORBIDDEN"
	ErrorCodeRateLimited              = "RATE_LIMITED"
	ErrorCodeBootstrapDisabled        = "BOOTSTRAP_DISABLED"
	ErrorCodeAlreadyBootstrapped      = "ALREADY_BOOTSTRAPPED"
	ErrorCodeBootstrapUnauthorized    = "BOOTSTRAP_UNAUTHORIZED"
	ErrorCodeServerError              = "SERVER_ERROR"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the error body shared by every endpoint. The server writes it
// with WriteError and the client decodes failures back into it.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes e as a JSON response with caching disabled.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

// Is matches on Code so callers can test against the predefined values.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewAPIError creates an APIError with a custom description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Description: description}
}

// HasCode reports whether err is an APIError carrying code.
func HasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}

	ErrForbidden = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeForbidden,
		Description: "access denied",
	}

	ErrKeyNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeKeyNotFound,
		Description: "signing key not found",
	}
)

// parseErrorResponse turns a non-2xx response body into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
