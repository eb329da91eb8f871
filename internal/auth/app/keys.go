package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/vendorauth/internal/auth/store"
	"github.com/aussiebroadwan/vendorauth/pkg/cryptox"
	"github.com/aussiebroadwan/vendorauth/pkg/idx"
	"github.com/aussiebroadwan/vendorauth/pkg/jwtx"
)

// InitAuthKeys creates the KeyManager for the configured storage mode.
//
// Storage modes:
//   - "ephemeral": keys are generated on startup and held only in memory.
//     Every outstanding access token fails verification after a restart.
//   - "persistent": keys are sealed with the master key and stored in the
//     database, so tokens survive restarts and retired keys verify until
//     their grace period ends.
//
// The returned encryptor is nil in ephemeral mode.
func InitAuthKeys(ctx context.Context, cfg Config, db store.Store, logger *slog.Logger) (*jwtx.KeyManager, jwtx.KeyEncryptor, error) {
	opts := jwtx.KeyManagerOptions{
		Algorithm: cfg.Algorithm,
		Issuer:    cfg.Issuer,
		NumKeys:   cfg.NumKeys,
	}

	switch cfg.KeyStorageMode {
	case "persistent":
		enc, ephemeralMaster, err := cryptox.LoadKeyEncryptor(cfg.MasterKeyPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load master key: %w", err)
		}
		if ephemeralMaster {
			logger.Warn("no master key configured, stored signing keys will be unreadable after restart",
				"hint", "set AUTH_MASTER_KEY_PATH or AUTH_MASTER_KEY",
			)
		}

		km, err := jwtx.NewPersistentKeyManager(ctx, jwtx.PersistentKeyManagerOptions{
			KeyManagerOptions: opts,
			Store:             store.NewKeyStoreAdapter(db),
			Encryptor:         enc,
			NewID:             idx.NewString,
			GracePeriod:       cfg.KeyGracePeriod,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize persistent key manager: %w", err)
		}

		logger.Info("persistent signing keys loaded",
			"algorithm", km.Algorithm(),
			"num_keys", km.NumSigners(),
			"issuer", cfg.Issuer,
			"grace_period", cfg.KeyGracePeriod,
		)
		return km, enc, nil

	case "ephemeral", "":
		km, err := jwtx.NewEphemeralKeyManager(opts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
		}

		logger.Info("generated ephemeral signing keys",
			"algorithm", km.Algorithm(),
			"num_keys", km.NumSigners(),
			"issuer", cfg.Issuer,
		)
		logger.Warn("ephemeral key mode: tokens issued before this start no longer verify")
		return km, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown AUTH_KEY_STORAGE_MODE %q (want ephemeral or persistent)", cfg.KeyStorageMode)
	}
}
