// Command migrate applies the identity then item schemas. With -check it only
// reports pending migrations and exits non-zero when any exist.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghuser/inventory/migrations/identity"
	"github.com/ghuser/inventory/migrations/item"
	"github.com/ghuser/inventory/pkg/config"
	"github.com/ghuser/inventory/pkg/database"
	"github.com/ghuser/inventory/pkg/logger"
	"github.com/ghuser/inventory/pkg/migrator"
)

var sets = []migrator.Set{
	{Context: "identity", FS: identity.FS},
	{Context: "item", FS: item.FS},
}

func main() {
	check := flag.Bool("check", false, "report pending migrations without applying them")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer db.Close()

	if *check {
		pending, err := migrator.Pending(ctx, db.DB(), sets)
		if err != nil {
			log.Error("failed to read migration status", "error", err)
			os.Exit(1)
		}
		if len(pending) > 0 {
			log.Warn("pending migrations", "pending", pending)
			os.Exit(2)
		}
		log.Info("schema up to date")
		return
	}

	if err := migrator.Up(ctx, db.DB(), sets, log); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
}
