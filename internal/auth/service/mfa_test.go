package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/notify"
	"github.com/stretchr/testify/require"
)

func adminRole() domain.Role { return domain.MustRole(domain.RoleElikaAdmin, "") }

func TestTwoFactorLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "admin@example.com", adminRole())

	st, err := env.twoFactor.Status(ctx, user)
	require.NoError(t, err)
	require.Equal(t, domain.TwoFactorNotConfigured, st.State)
	require.True(t, st.Required)

	require.ErrorIs(t, env.twoFactor.Enable(ctx, user, "123456"), ErrTwoFANotSetup)
	require.ErrorIs(t, env.twoFactor.Verify(ctx, user.ID, "123456"), ErrTwoFANotEnabled)

	setup, err := env.twoFactor.Setup(ctx, user)
	require.NoError(t, err)
	require.Len(t, setup.BackupCodes, 10)
	require.True(t, setup.Required)
	require.True(t, strings.HasPrefix(setup.OTPAuthURL, "otpauth://totp/"))
	for _, c := range setup.BackupCodes {
		require.Len(t, c, 8)
		require.Equal(t, strings.ToUpper(c), c)
	}

	// pending enrollments do not verify
	require.ErrorIs(t, env.twoFactor.Verify(ctx, user.ID, env.totp(t, setup.Secret)), ErrTwoFANotEnabled)
	require.ErrorIs(t, env.twoFactor.Enable(ctx, user, "000000"), ErrInvalid2FAToken)
	require.NoError(t, env.twoFactor.Enable(ctx, user, env.totp(t, setup.Secret)))
	require.Contains(t, env.notifier.kinds(), notify.KindTwoFactorEnabled)

	_, err = env.twoFactor.Setup(ctx, user)
	require.ErrorIs(t, err, ErrTwoFAAlreadyEnabled)

	st, err = env.twoFactor.Status(ctx, user)
	require.NoError(t, err)
	require.Equal(t, domain.TwoFactorEnabled, st.State)
	require.Equal(t, 10, st.RemainingBackupCodes)
	require.NotNil(t, st.EnabledAt)
}

func TestTwoFactorVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "finance@example.com", domain.MustRole(domain.RoleFinanceTeam, ""))
	secret, codes := env.enrollTwoFactor(t, user)

	t.Run("current totp", func(t *testing.T) {
		require.NoError(t, env.twoFactor.Verify(ctx, user.ID, env.totp(t, secret)))
	})

	t.Run("totp within skew", func(t *testing.T) {
		code := env.totp(t, secret)
		env.clock.Advance(time.Minute)
		require.NoError(t, env.twoFactor.Verify(ctx, user.ID, code))
	})

	t.Run("backup code works once", func(t *testing.T) {
		require.NoError(t, env.twoFactor.Verify(ctx, user.ID, strings.ToLower(codes[0])))
		require.ErrorIs(t, env.twoFactor.Verify(ctx, user.ID, codes[0]), ErrInvalid2FAToken)
		require.NoError(t, env.twoFactor.Verify(ctx, user.ID, " "+codes[1]+" "))

		st, err := env.twoFactor.Status(ctx, user)
		require.NoError(t, err)
		require.Equal(t, 8, st.RemainingBackupCodes)
	})

	t.Run("wrong code", func(t *testing.T) {
		require.ErrorIs(t, env.twoFactor.Verify(ctx, user.ID, "DEADBEEF"), ErrInvalid2FAToken)
		require.ErrorIs(t, env.twoFactor.Verify(ctx, user.ID, ""), ErrInvalid2FAToken)
	})

	t.Run("regenerate requires totp", func(t *testing.T) {
		_, err := env.twoFactor.RegenerateBackupCodes(ctx, user.ID, codes[2])
		require.ErrorIs(t, err, ErrInvalid2FAToken)

		fresh, err := env.twoFactor.RegenerateBackupCodes(ctx, user.ID, env.totp(t, secret))
		require.NoError(t, err)
		require.Len(t, fresh, 10)

		require.ErrorIs(t, env.twoFactor.Verify(ctx, user.ID, codes[2]), ErrInvalid2FAToken)
		require.NoError(t, env.twoFactor.Verify(ctx, user.ID, fresh[0]))
	})
}

func TestTwoFactorDisableRequiresVerification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "rec@example.com", domain.MustRole(domain.RoleRecruiter, ""))
	secret, _ := env.enrollTwoFactor(t, user)

	require.ErrorIs(t, env.twoFactor.Disable(ctx, user.ID, "111111"), ErrInvalid2FAToken)
	require.NoError(t, env.twoFactor.Disable(ctx, user.ID, env.totp(t, secret)))

	enrolled, err := env.twoFactor.Enrolled(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, enrolled)

	// re-enrollment is possible once disabled
	setup, err := env.twoFactor.Setup(ctx, user)
	require.NoError(t, err)
	require.NotEqual(t, secret, setup.Secret)
}

func TestLoginTwoFactorPolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "boss@example.com", adminRole())

	t.Run("privileged user without enrollment is restricted", func(t *testing.T) {
		res := env.login(t, "boss@example.com")
		require.True(t, res.TwoFactorSetupRequired)

		_, err := env.sessions.Authenticate(ctx, res.AccessToken, AuthenticateOptions{})
		require.ErrorIs(t, err, ErrTwoFASetupRequired)

		id, err := env.sessions.Authenticate(ctx, res.AccessToken, AuthenticateOptions{AllowTwoFactorSetup: true})
		require.NoError(t, err)
		require.True(t, id.TwoFactorPending)
	})

	secret, codes := env.enrollTwoFactor(t, user)

	t.Run("code is required once enrolled", func(t *testing.T) {
		_, err := env.sessions.Login(ctx, LoginRequest{Email: "boss@example.com", Password: testPassword})
		require.ErrorIs(t, err, ErrTwoFARequired)
		require.Equal(t, "TWO_FA_REQUIRED", Code(err))

		stored, err := env.store.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, 0, stored.LoginAttempts)
	})

	t.Run("wrong code counts as a failed attempt", func(t *testing.T) {
		_, err := env.sessions.Login(ctx, LoginRequest{Email: "boss@example.com", Password: testPassword, TwoFactorCode: "000000"})
		require.ErrorIs(t, err, ErrInvalid2FAToken)

		stored, err := env.store.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, 1, stored.LoginAttempts)
	})

	t.Run("valid totp or backup code", func(t *testing.T) {
		res, err := env.sessions.Login(ctx, LoginRequest{Email: "boss@example.com", Password: testPassword, TwoFactorCode: env.totp(t, secret)})
		require.NoError(t, err)
		require.False(t, res.TwoFactorSetupRequired)

		id, err := env.sessions.Authenticate(ctx, res.AccessToken, AuthenticateOptions{})
		require.NoError(t, err)
		require.False(t, id.TwoFactorPending)

		_, err = env.sessions.Login(ctx, LoginRequest{Email: "boss@example.com", Password: testPassword, TwoFactorCode: codes[3]})
		require.NoError(t, err)
		_, err = env.sessions.Login(ctx, LoginRequest{Email: "boss@example.com", Password: testPassword, TwoFactorCode: codes[3]})
		require.ErrorIs(t, err, ErrInvalid2FAToken)
	})
}
