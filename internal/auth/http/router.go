package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/vendorauth/internal/auth/domain"
	"github.com/aussiebroadwan/vendorauth/internal/auth/metrics"
	"github.com/aussiebroadwan/vendorauth/internal/auth/service"
	"github.com/aussiebroadwan/vendorauth/internal/auth/store"
	"github.com/aussiebroadwan/vendorauth/pkg/httpx"
	"github.com/aussiebroadwan/vendorauth/pkg/jwtx"
	"github.com/aussiebroadwan/vendorauth/pkg/slogx"

	_ "github.com/aussiebroadwan/vendorauth/api/auth" // Swagger docs
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits holds the profile applied to each class of route.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
	Public   httpx.RateLimitConfig
}

func DefaultRateLimits() RateLimits {
	return RateLimits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Lenient:  httpx.LenientLimit,
		Public:   httpx.PublicLimit,
	}
}

// LimiterFactory builds the limiter backing one named route bucket.
type LimiterFactory func(name string, cfg httpx.RateLimitConfig) httpx.Limiter

// MemoryLimiters keeps buckets in process.
func MemoryLimiters(_ string, cfg httpx.RateLimitConfig) httpx.Limiter {
	return httpx.NewMemoryLimiter(cfg)
}

// RedisLimiters shares buckets between replicas through rdb.
func RedisLimiters(rdb redis.Cmdable, prefix string) LimiterFactory {
	return func(name string, cfg httpx.RateLimitConfig) httpx.Limiter {
		return httpx.NewRedisLimiter(rdb, prefix+":"+name, cfg)
	}
}

var (
	ipKey    = httpx.IPKeyExtractor
	userKey  = httpx.CompositeKeyExtractor(":", httpx.UserIDKeyExtractor, httpx.IPKeyExtractor)
	emailKey = httpx.CompositeKeyExtractor(":", httpx.IPKeyExtractor, httpx.JSONFieldKeyExtractor("email"))
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	Sessions           *service.SessionService
	Users              *service.UserService
	BootstrapService   *service.BootstrapService
	KeyRotationService *service.KeyRotationService
	Metrics            *metrics.Auth
	Clock              service.Clock

	RateLimits RateLimits
	NewLimiter LimiterFactory // nil keeps buckets in memory
}

func NewRouter(
	keys *jwtx.KeySet,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		RateLimits:   DefaultRateLimits(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTwoFactor()
	r.registerUsers()
	r.registerKeyRotation()
	r.registerBootstrap()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Vendor Portal Authentication API
//	@version		0.1.0
//	@description	Sessions, password management and two-factor authentication for the vendor portal.
//	@description
//	@description				Access tokens are JWTs signed with EdDSA or ES256 and can be verified with the JWKS endpoint.
//	@description				Failures carry a stable code in the "error" field.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/vendorauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// gate authenticates the bearer token. allowSetup admits privileged users
// who still have to enroll in 2FA.
func (r *Router) gate(allowSetup bool) httpx.Middleware {
	opts := service.AuthenticateOptions{AllowTwoFactorSetup: allowSetup}
	return httpx.Authn(func(ctx context.Context, raw string) (httpx.Principal, error) {
		id, err := r.Sessions.Authenticate(ctx, raw, opts)
		if err != nil {
			return nil, err
		}
		return id, nil
	}, writeError)
}

// limit gives the route its own bucket called name.
func (r *Router) limit(name string, cfg httpx.RateLimitConfig, key httpx.KeyExtractor) httpx.Middleware {
	factory := r.NewLimiter
	if factory == nil {
		factory = MemoryLimiters
	}
	return httpx.RateLimit(factory(name, cfg), cfg, key)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Sessions: r.Sessions, Users: r.Users}
	rl := r.RateLimits

	// Credential endpoints are limited per IP and per submitted email.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			r.limit("login", rl.Strict, emailKey),
		),
	)
	r.Mux.Handle("POST /v1/auth/password/forgot",
		httpx.Chain(http.HandlerFunc(h.HandleForgotPassword),
			r.limit("password_forgot", rl.Strict, emailKey),
		),
	)
	r.Mux.Handle("POST /v1/auth/password/reset",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword),
			r.limit("password_reset", rl.Strict, ipKey),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			r.limit("refresh", rl.Moderate, ipKey),
		),
	)
	r.Mux.Handle("POST /v1/auth/email/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyEmail),
			r.limit("email_verify", rl.Moderate, ipKey),
		),
	)

	// Reachable before 2FA enrollment.
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			r.gate(true),
			r.limit("logout", rl.Moderate, userKey),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout-all",
		httpx.Chain(http.HandlerFunc(h.HandleLogoutAll),
			r.gate(true),
			r.limit("logout_all", rl.Moderate, userKey),
		),
	)
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			r.gate(true),
			r.limit("me", rl.Lenient, userKey),
		),
	)

	r.Mux.Handle("POST /v1/auth/password/change",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			r.gate(false),
			r.limit("password_change", rl.Strict, userKey),
		),
	)
	r.Mux.Handle("POST /v1/auth/email/resend",
		httpx.Chain(http.HandlerFunc(h.HandleResendVerification),
			r.gate(false),
			r.limit("email_resend", rl.Strict, userKey),
		),
	)
	r.Mux.Handle("GET /v1/auth/sessions",
		httpx.Chain(http.HandlerFunc(h.HandleListSessions),
			r.gate(false),
			r.limit("sessions", rl.Lenient, userKey),
		),
	)
	r.Mux.Handle("DELETE /v1/auth/sessions/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleRevokeSession),
			r.gate(false),
			r.limit("sessions_revoke", rl.Moderate, userKey),
		),
	)
}

func (r *Router) registerTwoFactor() {
	h := &TwoFactorHandler{Sessions: r.Sessions}
	rl := r.RateLimits

	// Code submissions use the strict profile.
	routes := []struct {
		pattern string
		handler http.HandlerFunc
		bucket  string
		cfg     httpx.RateLimitConfig
	}{
		{"POST /v1/2fa/setup", h.HandleSetup, "2fa_setup", rl.Moderate},
		{"POST /v1/2fa/enable", h.HandleEnable, "2fa_enable", rl.Strict},
		{"POST /v1/2fa/verify", h.HandleVerify, "2fa_verify", rl.Strict},
		{"POST /v1/2fa/disable", h.HandleDisable, "2fa_disable", rl.Strict},
		{"POST /v1/2fa/backup-codes", h.HandleRegenerateBackupCodes, "2fa_backup_codes", rl.Strict},
		{"GET /v1/2fa/status", h.HandleStatus, "2fa_status", rl.Lenient},
	}
	for _, rt := range routes {
		r.Mux.Handle(rt.pattern,
			httpx.Chain(rt.handler,
				r.gate(true),
				r.limit(rt.bucket, rt.cfg, userKey),
			),
		)
	}
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Users: r.Users}
	admin := string(domain.RoleElikaAdmin)

	secured := func(name string, handler http.HandlerFunc) http.Handler {
		return httpx.Chain(handler,
			r.gate(false),
			httpx.RequireAnyRole(admin),
			r.limit(name, r.RateLimits.Moderate, userKey),
		)
	}

	r.Mux.Handle("POST /v1/users", secured("users_create", h.HandleCreate))
	r.Mux.Handle("PUT /v1/users/{id}/roles", secured("users_roles", h.HandleSetRoles))
	r.Mux.Handle("POST /v1/users/{id}/deactivate", secured("users_deactivate", h.HandleDeactivate))
	r.Mux.Handle("POST /v1/users/{id}/activate", secured("users_activate", h.HandleActivate))

	r.Mux.Handle("GET /v1/vendors/{vendorID}/access",
		httpx.Chain(http.HandlerFunc(VendorAccessHandler),
			r.gate(false),
			httpx.RequireVendorScope("vendorID"),
			r.limit("vendor_access", r.RateLimits.Lenient, userKey),
		),
	)
}

func (r *Router) registerKeyRotation() {
	// Available in both key storage modes. Ephemeral rotations are lost on
	// restart.
	h := &KeyRotationHandler{KeyRotationService: r.KeyRotationService, Clock: r.Clock}
	admin := string(domain.RoleElikaAdmin)

	secured := func(name string, handler http.HandlerFunc) http.Handler {
		return httpx.Chain(handler,
			r.gate(false),
			httpx.RequireAnyRole(admin),
			r.limit(name, r.RateLimits.Moderate, userKey),
		)
	}

	r.Mux.Handle("POST /v1/keys/rotate", secured("keys_rotate", h.HandleRotate))
	r.Mux.Handle("GET /v1/keys", secured("keys_list", h.HandleListKeys))
	r.Mux.Handle("POST /v1/keys/{kid}/retire", secured("keys_retire", h.HandleRetireKey))
}

func (r *Router) registerBootstrap() {
	bootstrapHandler := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(bootstrapHandler,
			r.limit("bootstrap", r.RateLimits.Strict, ipKey),
		),
	)
}

func (r *Router) registerSystem() {
	public := r.RateLimits.Public

	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			r.limit("jwks", public, ipKey),
		),
	)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			r.limit("livez", public, ipKey),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			r.limit("readyz", public, ipKey),
		),
	)
	r.Mux.Handle("GET /metrics", r.Metrics.Handler())
}
