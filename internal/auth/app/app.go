package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/vendorauth/internal/auth/http"
	"github.com/aussiebroadwan/vendorauth/internal/auth/metrics"
	"github.com/aussiebroadwan/vendorauth/internal/auth/notify"
	"github.com/aussiebroadwan/vendorauth/internal/auth/service"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/vendorauth/pkg/cryptox"
	"github.com/aussiebroadwan/vendorauth/pkg/jwtx"
	"github.com/aussiebroadwan/vendorauth/pkg/slogx"

	"github.com/redis/go-redis/v9"
)

// BuildVersion is overridden at build time with -ldflags "-X ...app.BuildVersion=...".
var BuildVersion = "v0.1.0"

// Application owns the auth service and everything it depends on.
type Application struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Auth

	db         store.Store
	keyManager *jwtx.KeyManager
	encryptor  jwtx.KeyEncryptor
	hasher     *cryptox.Hasher
	redis      *redis.Client // nil when REDIS_URL is unset or unreachable

	notifier     *notify.Dispatcher
	notifySink   notify.Sink
	housekeeping *service.HousekeepingService

	sessionService     *service.SessionService
	userService        *service.UserService
	bootstrapService   *service.BootstrapService
	keyRotationService *service.KeyRotationService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "vendorauth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	if err := app.initHasher(); err != nil {
		return nil, err
	}

	// The database must exist before persistent keys can be loaded.
	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	km, enc, err := InitAuthKeys(ctx, app.cfg, app.db, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keyManager = km
	app.encryptor = enc

	app.initRedis(ctx)
	app.initNotifier()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeeping.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.cleanup(context.Background())
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones, flushes
// queued notifications and closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.cleanup(ctx); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) cleanup(ctx context.Context) error {
	app.housekeeping.Stop()

	if err := app.notifier.Close(ctx); err != nil {
		app.logger.Warn("notifications still queued at shutdown", "error", err)
	}
	if closer, ok := app.notifySink.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			app.logger.Error("error closing notification sink", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

func (app *Application) initHasher() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	app.hasher = cryptox.NewHasher(cryptox.HasherConfig{
		Params: cryptox.HashParams{
			Memory:     uint32(max(app.cfg.HashMemoryKiB, 0)),
			Iterations: uint32(max(app.cfg.HashIterations, 0)),
		},
		Pepper:        pepper,
		MaxConcurrent: app.cfg.HashConcurrency,
		Observe:       app.metrics.ObservePasswordHash,
	})
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied", "file", app.cfg.DatabaseFile)
	return nil
}

// initRedis connects the shared rate limiter store. Without it every replica
// keeps its own buckets.
func (app *Application) initRedis(ctx context.Context) {
	if app.cfg.RedisURL == "" {
		app.logger.Info("rate limiting buckets kept in memory")
		return
	}

	opts, err := redis.ParseURL(app.cfg.RedisURL)
	if err != nil {
		app.logger.Warn("invalid REDIS_URL, rate limiting buckets kept in memory", "error", err)
		return
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		app.logger.Warn("redis unreachable, rate limiting buckets kept in memory", "error", err)
		return
	}

	app.redis = client
	app.logger.Info("rate limiting buckets shared through redis", "addr", opts.Addr)
}

func (app *Application) initNotifier() {
	if app.cfg.AMQPURL != "" {
		app.notifySink = notify.NewAMQPSink(app.cfg.AMQPURL, app.cfg.NotifyQueue)
		app.logger.Info("notifications published to broker", "queue", app.cfg.NotifyQueue)
	} else {
		// links carry live tokens, so only dev logs them
		app.notifySink = notify.LogSink{Logger: app.logger, IncludeLinks: app.cfg.Env == "dev"}
		app.logger.Info("notifications written to the log")
	}

	app.notifier = notify.NewDispatcher(app.notifySink, notify.DispatcherConfig{
		Logger:  app.logger,
		Metrics: app.metrics,
	})
}

func (app *Application) initServices() {
	clock := service.SystemClock{}

	tokens := &service.TokenService{
		KeyManager: app.keyManager,
		Store:      app.db,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
		Clock:      clock,
		Metrics:    app.metrics,
	}
	verification := &service.VerificationService{
		Store:    app.db,
		Tokens:   tokens,
		Hasher:   app.hasher,
		Notifier: app.notifier,
		BaseURL:  app.cfg.BaseURL,
		Clock:    clock,
	}
	twoFactor := &service.TwoFactorService{
		Store:    app.db,
		Issuer:   app.cfg.Issuer,
		Notifier: app.notifier,
		Clock:    clock,
	}

	app.sessionService = &service.SessionService{
		Store:        app.db,
		Tokens:       tokens,
		Verification: verification,
		TwoFactor:    twoFactor,
		Hasher:       app.hasher,
		Notifier:     app.notifier,
		Clock:        clock,
		Metrics:      app.metrics,
	}
	app.userService = &service.UserService{
		Store:        app.db,
		Hasher:       app.hasher,
		Tokens:       tokens,
		Verification: verification,
		Clock:        clock,
	}
	app.bootstrapService = &service.BootstrapService{
		Store:  app.db,
		Hasher: app.hasher,
		Token:  app.cfg.BootstrapToken,
		Clock:  clock,
	}

	// Ephemeral mode still rotates at runtime; nothing is persisted.
	app.keyRotationService = &service.KeyRotationService{
		KeyManager:  app.keyManager,
		GracePeriod: app.cfg.KeyGracePeriod,
		Clock:       clock,
	}
	if app.cfg.KeyStorageMode == "persistent" {
		app.keyRotationService.Store = app.db
		app.keyRotationService.Encryptor = app.encryptor
	}

	app.housekeeping = service.NewHousekeepingService(
		app.db,
		app.keyManager,
		app.logger,
		app.cfg.HousekeepingInterval,
		clock,
	)

	if app.cfg.BootstrapToken == "" {
		app.logger.Info("bootstrap disabled (BOOTSTRAP_TOKEN unset)")
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet(),
		BuildVersion,
		app.db,
		app.logger,
	)

	router.Sessions = app.sessionService
	router.Users = app.userService
	router.BootstrapService = app.bootstrapService
	router.KeyRotationService = app.keyRotationService
	router.Metrics = app.metrics
	router.Clock = service.SystemClock{}
	router.RateLimits = app.cfg.RateLimits
	if app.redis != nil {
		router.NewLimiter = httpapi.RedisLimiters(app.redis, "vendorauth:ratelimit")
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
