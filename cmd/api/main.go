package main

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

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	_ "github.com/ghuser/inventory/docs/swagger"
	"github.com/ghuser/inventory/pkg/app"
	"github.com/ghuser/inventory/pkg/auth"
	"github.com/ghuser/inventory/pkg/cache"
	"github.com/ghuser/inventory/pkg/config"
	"github.com/ghuser/inventory/pkg/database"
	"github.com/ghuser/inventory/pkg/events"
	"github.com/ghuser/inventory/pkg/httpx"
	"github.com/ghuser/inventory/pkg/logger"
	"github.com/ghuser/inventory/pkg/telemetry"
	identityApi "github.com/ghuser/inventory/services/identity/application/api"
	itemApi "github.com/ghuser/inventory/services/item/application/api"
	"github.com/ghuser/inventory/services/pages"
)

// @title			Inventory API
// @version		1.0
// @description	Multi-tenant inventory tracker: session-authenticated item CRUD scoped to the caller's workspace.
// @license.name	MIT
// @license.url	https://opensource.org/licenses/MIT
// @host			localhost:8080
// @BasePath		/api
// @schemes		http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("api failed", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("server stopped")
}

// run opens every dependency, serves until ctx is cancelled, then drains
// requests for up to 30s. Resources close in reverse order of opening.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	tel, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setup otel: %w", err)
	}
	defer tel.Shutdown(context.Background()) //nolint:errcheck

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("sentry disabled", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	bus, err := events.NewEventBus(pool.DB(), events.Options{
		ConsumerGroup: cfg.EventConsumerGroup,
		Forwarder:     true,
	}, log)
	if err != nil {
		return fmt.Errorf("event bus: %w", err)
	}
	defer bus.Close() //nolint:errcheck
	if err := bus.StartForwarder(ctx); err != nil {
		return fmt.Errorf("start outbox forwarder: %w", err)
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close() //nolint:errcheck

	sessionCfg := auth.SessionConfig{
		AuthKey:       []byte(cfg.SessionAuthKey),
		EncryptionKey: []byte(cfg.SessionEncryptionKey),
		MaxAge:        cfg.SessionMaxAge,
		Secure:        cfg.IsProduction(),
	}
	a := &app.Application{
		Config:   cfg,
		Db:       pool,
		Logger:   log,
		EventBus: bus,
		Redis:    redisClient,
		Sessions: auth.NewSessionManager(auth.NewSessionStore(redisClient.Client(), sessionCfg), sessionCfg, log),
		Metrics:  metrics,
	}

	h, err := newHandler(a, tel, httpx.HealthChecks{"database": pool, "redis": redisClient, "eventbus": bus})
	if err != nil {
		return err
	}
	return serve(ctx, httpx.NewServer(cfg.APIAddr, h), log)
}

func newHandler(a *app.Application, tel *telemetry.Provider, checks httpx.HealthChecks) (http.Handler, error) {
	cfg := a.Config
	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		},
		httpx.Middlewares{
			Logger:   logger.AccessLog(a.Logger),
			Recovery: logger.Recovery(a.Logger),
			Sentry:   telemetry.SentryMiddleware(),
			Otel:     otelhttp.NewMiddleware(cfg.ServiceName),
		},
	)

	r.Get("/health", httpx.HealthHandler(checks))
	r.Method(http.MethodGet, "/metrics", tel.MetricsHandler())
	if !cfg.IsProduction() {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}
	r.Route("/api", func(r chi.Router) {
		registerRoutes(r, a)
	})
	if err := pages.Routes(r, a.Sessions, a.Logger); err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}
	return r, nil
}

// serve runs srv until ctx ends or the listener fails.
func serve(ctx context.Context, srv *http.Server, log logger.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// registerRoutes mounts every bounded context under /api.
func registerRoutes(r chi.Router, a *app.Application) {
	identityApi.IdentityRoutes(r, a)
	itemApi.ItemRoutes(r, a)
}
