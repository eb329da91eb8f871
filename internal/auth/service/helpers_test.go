package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/notify"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/vendorauth/pkg/cryptox"
	"github.com/aussiebroadwan/vendorauth/pkg/idx"
	"github.com/aussiebroadwan/vendorauth/pkg/jwtx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "test-issuer"
	testPassword = "correct horse battery"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, note notify.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, note)
}

func (n *recordingNotifier) kinds() []notify.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notify.Kind
	for _, note := range n.got {
		out = append(out, note.Kind)
	}
	return out
}

type testEnv struct {
	store    *sqlite.Store
	clock    *fakeClock
	notifier *recordingNotifier
	hasher   *cryptox.Hasher
	keys     *jwtx.KeyManager

	tokens       *TokenService
	verification *VerificationService
	twoFactor    *TwoFactorService
	sessions     *SessionService
	users        *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	clock := newFakeClock()
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    testIssuer,
		NumKeys:   1,
		Now:       clock.Now,
	})
	require.NoError(t, err)

	hasher := cryptox.NewHasher(cryptox.HasherConfig{
		Params: cryptox.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1},
	})
	notifier := &recordingNotifier{}

	env := &testEnv{store: st, clock: clock, notifier: notifier, hasher: hasher, keys: km}
	env.tokens = &TokenService{KeyManager: km, Store: st, Issuer: testIssuer, Clock: clock}
	env.verification = &VerificationService{
		Store:    st,
		Tokens:   env.tokens,
		Hasher:   hasher,
		Notifier: notifier,
		BaseURL:  "https://portal.example/",
		Clock:    clock,
	}
	env.twoFactor = &TwoFactorService{Store: st, Issuer: "Vendor Portal", Notifier: notifier, Clock: clock}
	env.sessions = &SessionService{
		Store:        st,
		Tokens:       env.tokens,
		Verification: env.verification,
		TwoFactor:    env.twoFactor,
		Hasher:       hasher,
		Notifier:     notifier,
		Clock:        clock,
	}
	env.users = &UserService{
		Store:        st,
		Hasher:       hasher,
		Tokens:       env.tokens,
		Verification: env.verification,
		Clock:        clock,
	}
	return env
}

// createUser inserts an active user with testPassword directly through the store.
func (e *testEnv) createUser(t *testing.T, email string, roles ...domain.Role) domain.User {
	t.Helper()
	if len(roles) == 0 {
		roles = []domain.Role{domain.MustRole(domain.RoleVendorUser, "vendor-1")}
	}
	hash, err := e.hasher.Hash(context.Background(), testPassword)
	require.NoError(t, err)

	now := e.clock.Now()
	u := domain.User{
		ID:            idx.NewString(),
		Email:         email,
		PasswordHash:  hash,
		Roles:         roles,
		Active:        true,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, e.store.Users().CreateUser(context.Background(), u))

	got, err := e.store.Users().GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	return got
}

// enrollTwoFactor runs setup and enable and returns the secret and backup codes.
func (e *testEnv) enrollTwoFactor(t *testing.T, user domain.User) (string, []string) {
	t.Helper()
	ctx := context.Background()

	setup, err := e.twoFactor.Setup(ctx, user)
	require.NoError(t, err)
	require.NoError(t, e.twoFactor.Enable(ctx, user, e.totp(t, setup.Secret)))
	return setup.Secret, setup.BackupCodes
}

func (e *testEnv) totp(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, e.clock.Now(), totp.ValidateOpts{
		Period:    totpPeriod,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func (e *testEnv) login(t *testing.T, email string) *LoginResult {
	t.Helper()
	res, err := e.sessions.Login(context.Background(), LoginRequest{Email: email, Password: testPassword})
	require.NoError(t, err)
	return res
}
