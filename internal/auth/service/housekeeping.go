package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/store"
	"github.com/aussiebroadwan/vendorauth/pkg/jwtx"
)

// DefaultRevokedRetention is how long revoked refresh tokens are kept for
// audit before they are swept.
const DefaultRevokedRetention = 30 * 24 * time.Hour

// HousekeepingService periodically deletes expired tokens and signing keys
// so the tables do not grow without bound.
type HousekeepingService struct {
	Store            store.Store
	KeyManager       *jwtx.KeyManager // optional; expired keys are also dropped from its KeySet
	Logger           *slog.Logger
	Interval         time.Duration
	RevokedRetention time.Duration
	Clock            Clock

	stopCh chan struct{}
	doneCh chan struct{}
}

// SweepReport counts the rows removed by one sweep.
type SweepReport struct {
	RefreshTokens      int64
	EmailVerifications int64
	PasswordResets     int64
	SigningKeys        int64
	Failures           int
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to one hour.
func NewHousekeepingService(st store.Store, km *jwtx.KeyManager, logger *slog.Logger, interval time.Duration, clock Clock) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HousekeepingService{
		Store:            st,
		KeyManager:       km,
		Logger:           logger,
		Interval:         interval,
		RevokedRetention: DefaultRevokedRetention,
		Clock:            clock,
		stopCh:           make(chan struct{}),
		doneCh:           make(chan struct{}),
	}
}

// Start runs a sweep immediately and then every Interval until Stop.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep performs one cleanup pass. Each step is independent; a failure is
// logged and the remaining steps still run.
func (s *HousekeepingService) Sweep(ctx context.Context) SweepReport {
	now := nowFrom(s.Clock)
	retention := s.RevokedRetention
	if retention <= 0 {
		retention = DefaultRevokedRetention
	}

	var r SweepReport
	step := func(name string, fn func() (int64, error), dst *int64) {
		n, err := fn()
		if err != nil {
			r.Failures++
			s.Logger.Error("housekeeping step failed", "step", name, "error", err)
			return
		}
		*dst = n
	}

	step("refresh_tokens", func() (int64, error) {
		return s.Store.RefreshTokens().DeleteStaleRefreshTokens(ctx, now, now.Add(-retention))
	}, &r.RefreshTokens)

	step("email_verifications", func() (int64, error) {
		return s.Store.EmailVerifications().DeleteStaleEmailVerifications(ctx, now)
	}, &r.EmailVerifications)

	step("password_resets", func() (int64, error) {
		return s.Store.PasswordResets().DeleteStalePasswordResets(ctx, now)
	}, &r.PasswordResets)

	step("signing_keys", func() (int64, error) {
		return s.sweepSigningKeys(ctx, now)
	}, &r.SigningKeys)

	s.Logger.Info("housekeeping sweep completed",
		"refresh_tokens", r.RefreshTokens,
		"email_verifications", r.EmailVerifications,
		"password_resets", r.PasswordResets,
		"signing_keys", r.SigningKeys,
		"failures", r.Failures,
	)
	return r
}

func (s *HousekeepingService) sweepSigningKeys(ctx context.Context, now time.Time) (int64, error) {
	if s.KeyManager != nil {
		keys, err := s.Store.SigningKeys().ListAllSigningKeys(ctx)
		if err != nil {
			return 0, err
		}
		for _, k := range keys {
			if k.RetiredAt != nil && !now.Before(k.ExpiresAt) {
				s.KeyManager.Forget(k.Kid)
			}
		}
	}
	return s.Store.SigningKeys().DeleteExpiredSigningKeys(ctx, now)
}
