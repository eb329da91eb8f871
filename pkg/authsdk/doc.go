/*
Package authsdk is the client SDK and wire contract for the vendor portal
authentication service.

# SDKClient vs Session

  - SDKClient: unauthenticated endpoints (login, password reset, email
    verification, bootstrap, health, JWKS) and Session creation
  - Session: authenticated endpoints with automatic token refresh

	client := authsdk.NewSDKClient("https://auth.example.com")

	session, err := client.Login(ctx, authsdk.LoginRequest{
		Email:    "ops@elika.example",
		Password: password,
	})
	if authsdk.HasCode(err, authsdk.ErrorCodeTwoFARequired) {
		session, err = client.Login(ctx, authsdk.LoginRequest{
			Email:         "ops@elika.example",
			Password:      password,
			TwoFactorCode: code,
		})
	}

	me, err := session.Me(ctx)

# Two-Factor Enrollment

Users holding elika_admin or finance_team must enroll in 2FA. Until they do,
login succeeds with TwoFactorSetupRequired set and the tokens only reach the
/v1/2fa routes, /v1/auth/me and logout:

	if session.TwoFactorSetupRequired() {
		setup, _ := session.SetupTwoFactor(ctx)
		// show setup.OTPAuthURL as a QR code and setup.BackupCodes once
		err = session.EnableTwoFactor(ctx, codeFromAuthenticator)
	}

# Automatic Token Refresh

Every Session method checks the access token first. If it is within 30
seconds of expiry the refresh token is exchanged and, when the server
rotates it, replaced. Sessions are safe for concurrent use.

# Error Handling

Failures are returned as *APIError carrying the HTTP status and one of the
ErrorCode constants:

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeAccountLocked {
		// try again later
	}

The server side of the package, APIError.WriteError and the request and
response types, is shared with the service's HTTP handlers.
*/
package authsdk
