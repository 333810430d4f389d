// Command worker consumes domain events from the outbox and keeps the Redis
// item read model current. It runs until SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/inventory/pkg/app"
	"github.com/ghuser/inventory/pkg/cache"
	"github.com/ghuser/inventory/pkg/config"
	"github.com/ghuser/inventory/pkg/database"
	"github.com/ghuser/inventory/pkg/events"
	"github.com/ghuser/inventory/pkg/logger"
	"github.com/ghuser/inventory/pkg/telemetry"
	identityEvents "github.com/ghuser/inventory/services/identity/domain/events"
	itemEvents "github.com/ghuser/inventory/services/item/domain/events"
	"github.com/ghuser/inventory/services/item/infrastructure/persistence/postgres"
)

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
		log.Error("worker failed", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("worker stopped")
}

// run owns every resource it opens; deferred closes run in reverse order, so
// the event bus drains in-flight handlers before Redis and the pool go away.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	tel, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setup otel: %w", err)
	}
	defer tel.Shutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("sentry disabled", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close() //nolint:errcheck

	bus, err := events.NewEventBus(pool.DB(), events.Options{ConsumerGroup: cfg.EventConsumerGroup}, log)
	if err != nil {
		return fmt.Errorf("event bus: %w", err)
	}
	defer bus.Close() //nolint:errcheck

	a := &app.Application{Config: cfg, Db: pool, Logger: log, EventBus: bus, Redis: redisClient}
	if err := registerSubscribers(ctx, a); err != nil {
		return fmt.Errorf("register subscribers: %w", err)
	}

	log.InfoContext(ctx, "worker running", "consumer_group", cfg.EventConsumerGroup)
	<-ctx.Done()
	log.Info("shutting down worker")
	return nil
}

// registerSubscribers subscribes one handler per topic and logs every
// error a subscription reports after retries.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	projector := &itemProjector{
		items: postgres.NewItemRepository(a.Db, nil),
		cache: cache.NewItemCache(a.Redis),
		log:   a.Logger,
	}

	handlers := map[string]func(context.Context, *message.Message) error{
		itemEvents.TopicItemCreated:          projector.HandleCreated,
		itemEvents.TopicItemUpdated:          projector.HandleUpdated,
		itemEvents.TopicItemDeleted:          projector.HandleDeleted,
		identityEvents.TopicTenantRegistered: handleTenantRegistered(a.Logger),
	}

	topics := make([]string, 0, len(handlers))
	for topic, handler := range handlers {
		errCh, err := a.EventBus.Subscribe(ctx, topic, handler)
		if err != nil {
			return err
		}

		go func(topic string) {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(topic)
		topics = append(topics, topic)
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}
