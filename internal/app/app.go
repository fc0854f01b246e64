// Package app wires stores, services and handlers from configuration. Empty
// DATABASE_URL, REDIS_URL and KAFKA_BROKERS select in-memory or log-only backends.
package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"baiki/internal/audit"
	auditkafka "baiki/internal/audit/kafka"
	authhandler "baiki/internal/auth/handler"
	authmetrics "baiki/internal/auth/metrics"
	authservice "baiki/internal/auth/service"
	rolestore "baiki/internal/auth/store/role"
	sessionstore "baiki/internal/auth/store/session"
	userstore "baiki/internal/auth/store/user"
	"baiki/internal/authz"
	jwttoken "baiki/internal/jwt_token"
	"baiki/internal/platform/config"
	platformmetrics "baiki/internal/platform/metrics"
	"baiki/internal/platform/postgres"
	platformredis "baiki/internal/platform/redis"
	ratelimitmetrics "baiki/internal/ratelimit/metrics"
	ratelimitmw "baiki/internal/ratelimit/middleware"
	ratelimitservice "baiki/internal/ratelimit/service"
	"baiki/internal/ratelimit/store/window"
	reghandler "baiki/internal/registration/handler"
	regmetrics "baiki/internal/registration/metrics"
	regservice "baiki/internal/registration/service"
	"baiki/internal/resolver"
	"baiki/internal/slug"
	tenanthandler "baiki/internal/tenant/handler"
	tenantmetrics "baiki/internal/tenant/metrics"
	tenantservice "baiki/internal/tenant/service"
	tenantstore "baiki/internal/tenant/store/tenant"
	tenantuserstore "baiki/internal/tenant/store/tenantuser"
	httptransport "baiki/internal/transport/http"
	"baiki/internal/user"
	"baiki/pkg/platform/middleware/auth"
)

const auditQueueSize = 4096

// App is the assembled process: its HTTP handler, the services behind it and
// the background loops main runs alongside the server.
type App struct {
	Handler      http.Handler
	Auth         *authservice.Service
	Tenants      *tenantservice.TenantService
	TenantUsers  *tenantservice.TenantUserService
	Registration *regservice.Service

	logger     *slog.Logger
	background []func(context.Context) error
	closers    []func(context.Context) error
}

// New builds the application. reg receives every metric; nil means the
// default registry. Seeding platform roles happens here so the first sign-up
// never races the seed.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, reg *prometheus.Registry) (*App, error) {
	a := &App{logger: logger}
	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	metricsHandler := platformmetrics.Handler()
	if reg != nil {
		registerer = reg
		metricsHandler = platformmetrics.HandlerFor(reg)
	}

	healthChecks := map[string]httptransport.HealthCheck{}

	var db *sql.DB
	if cfg.Database.URL != "" {
		var err error
		if db, err = postgres.Open(ctx, cfg.Database); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		healthChecks["postgres"] = db.PingContext
		logger.InfoContext(ctx, "using postgres stores")
	}

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	if redisClient != nil {
		a.closers = append(a.closers, func(context.Context) error { return redisClient.Close() })
		healthChecks["redis"] = redisClient.Health
		logger.InfoContext(ctx, "using redis sessions and rate limits")
	}

	publisher, err := a.auditPublisher(ctx, cfg.Audit, healthChecks)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	var (
		users       authservice.UserStore         = userstore.New()
		roles       authservice.RoleStore         = rolestore.New()
		sessions    authservice.SessionStore      = sessionstore.New()
		tenants     tenantservice.TenantStore     = tenantstore.NewInMemory()
		memberships tenantservice.TenantUserStore = tenantuserstore.NewInMemory()
	)
	if db != nil {
		users = userstore.NewPostgres(db)
		roles = rolestore.NewPostgres(db)
		tenants = tenantstore.NewPostgres(db)
		memberships = tenantuserstore.NewPostgres(db)
	}
	if redisClient != nil {
		sessions = sessionstore.NewRedis(redisClient.Client)
	}

	credentials, err := authservice.New(users, sessions, roles,
		jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, "baiki", "baiki-web"),
		authservice.Config{SessionTTL: cfg.Auth.SessionTTL, BcryptCost: cfg.Auth.BcryptCost},
		authservice.WithLogger(logger),
		authservice.WithAuditPublisher(publisher),
		authservice.WithMetrics(authmetrics.NewWithRegistry(registerer)),
	)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	if err := credentials.SeedPlatformRoles(ctx); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	tMetrics := tenantmetrics.NewWithRegistry(registerer)
	tenantOpts := []tenantservice.Option{
		tenantservice.WithLogger(logger),
		tenantservice.WithAuditPublisher(publisher),
		tenantservice.WithMetrics(tMetrics),
		tenantservice.WithUserLookup(credentials),
	}
	tenantSvc := tenantservice.NewTenantService(tenants, tenantOpts...)
	tenantUserSvc := tenantservice.NewTenantUserService(memberships, tenantSvc, tenantOpts...)

	registration := regservice.New(credentials, slug.NewGenerator(tenantSvc), tenantSvc, tenantUserSvc,
		regservice.WithLogger(logger),
		regservice.WithAuditPublisher(publisher),
		regservice.WithMetrics(regmetrics.NewWithRegistry(registerer)),
	)

	gate := authz.NewGate(credentials, tenantUserSvc, authz.WithLogger(logger))
	res := resolver.New(cfg.Tenancy.RootDomain, cfg.Tenancy.PassthroughPrefixes)
	cookie := auth.CookieOptions{Domain: cfg.Auth.CookieDomain, Secure: cfg.Auth.CookieSecure}

	var limiter *ratelimitmw.Middleware
	if cfg.RateLimit.Enabled {
		limiter = a.rateLimiter(cfg.RateLimit, redisClient, publisher, logger, registerer)
	}

	a.Handler = httptransport.NewRouter(httptransport.Deps{
		Logger:         logger,
		Metrics:        platformmetrics.NewWithRegistry(registerer),
		MetricsHandler: metricsHandler,
		Resolver:       res,
		TrustedOrigins: cfg.Auth.TrustedOrigins,
		HealthChecks:   healthChecks,
		Gate:           gate,
		Auth:           authhandler.New(credentials, logger, cookie, cfg.Auth.TrustedOrigins),
		Registration:   reghandler.New(registration, logger, cookie, cfg.Auth.TrustedOrigins),
		Tenants:        tenanthandler.New(tenantSvc, tenantUserSvc, logger),
		TenantPages:    tenanthandler.NewPages(tenantSvc, logger, res.HomeURL),
		TenantUsers:    authz.NewHandler(gate, logger),
		User:           user.NewHandler(gate, logger),
		RateLimit:      limiter,
	})
	a.Auth = credentials
	a.Tenants = tenantSvc
	a.TenantUsers = tenantUserSvc
	a.Registration = registration
	return a, nil
}

// auditPublisher returns a log-only publisher, or one that queues events for a
// Kafka worker when brokers are configured.
func (a *App) auditPublisher(ctx context.Context, cfg config.Audit, checks map[string]httptransport.HealthCheck) (*audit.Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return audit.NewPublisher(nil, a.logger), nil
	}

	sink, err := auditkafka.New(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, sink.Close)
	if err := sink.EnsureTopic(ctx, 3, 1); err != nil {
		return nil, err
	}
	checks["kafka"] = sink.Health

	queue := audit.NewQueue(auditQueueSize)
	worker := audit.NewWorker(sink, queue, a.logger)
	a.background = append(a.background, worker.Run)
	a.logger.InfoContext(ctx, "publishing audit events to kafka", "topic", cfg.Topic)
	return audit.NewPublisher(queue, a.logger), nil
}

func (a *App) rateLimiter(cfg config.RateLimit, redisClient *platformredis.Client, publisher *audit.Publisher, logger *slog.Logger, reg prometheus.Registerer) *ratelimitmw.Middleware {
	fallback := window.New()
	var primary ratelimitservice.Store
	if redisClient != nil {
		primary = window.NewRedis(redisClient.Client)
	}
	limiter := ratelimitservice.New(primary, cfg.Requests, cfg.Window,
		ratelimitservice.WithLogger(logger),
		ratelimitservice.WithMetrics(ratelimitmetrics.NewWithRegistry(reg)),
		ratelimitservice.WithFallback(fallback),
	)
	a.background = append(a.background, func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				fallback.Sweep()
			}
		}
	})
	return ratelimitmw.New(limiter, logger, ratelimitmw.WithAuditPublisher(publisher))
}

// Background returns the loops that must run for the lifetime of the server.
// Each returns nil once its context is cancelled.
func (a *App) Background() []func(context.Context) error {
	return a.background
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
