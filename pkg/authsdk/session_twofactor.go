package authsdk

import (
	"context"
	"net/http"
)

// SetupTwoFactor generates a TOTP secret and backup codes. The secret is
// not active until EnableTwoFactor confirms a code from it.
func (s *Session) SetupTwoFactor(ctx context.Context) (*TwoFactorSetupResponse, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/2fa/setup", nil)
	if err != nil {
		return nil, err
	}

	var setup TwoFactorSetupResponse
	if err := decodeJSON(resp, &setup, http.StatusOK); err != nil {
		return nil, err
	}
	return &setup, nil
}

// EnableTwoFactor activates 2FA with a TOTP code from the pending secret.
func (s *Session) EnableTwoFactor(ctx context.Context, code string) error {
	return s.postCode(ctx, "/v1/2fa/enable", code)
}

// VerifyTwoFactor checks a TOTP or backup code without changing state,
// other than consuming a backup code.
func (s *Session) VerifyTwoFactor(ctx context.Context, code string) error {
	return s.postCode(ctx, "/v1/2fa/verify", code)
}

// DisableTwoFactor removes 2FA after checking a current code. Privileged
// roles will be asked to enroll again on their next request.
func (s *Session) DisableTwoFactor(ctx context.Context, code string) error {
	return s.postCode(ctx, "/v1/2fa/disable", code)
}

// RegenerateBackupCodes replaces every backup code.
func (s *Session) RegenerateBackupCodes(ctx context.Context, code string) ([]string, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, "/v1/2fa/backup-codes", TwoFactorCodeRequest{Code: code})
	if err != nil {
		return nil, err
	}

	var codes BackupCodesResponse
	if err := decodeJSON(resp, &codes, http.StatusOK); err != nil {
		return nil, err
	}
	return codes.BackupCodes, nil
}

func (s *Session) TwoFactorStatus(ctx context.Context) (*TwoFactorStatusResponse, error) {
	resp, err := s.doAuthJSON(ctx, http.MethodGet, "/v1/2fa/status", nil)
	if err != nil {
		return nil, err
	}

	var status TwoFactorStatusResponse
	if err := decodeJSON(resp, &status, http.StatusOK); err != nil {
		return nil, err
	}
	return &status, nil
}

func (s *Session) postCode(ctx context.Context, path, code string) error {
	resp, err := s.doAuthJSON(ctx, http.MethodPost, path, TwoFactorCodeRequest{Code: code})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
