package main

import (
	"flag"
	"os"

	"github.com/jcmexdev/storefront/internal/pkg/config"
	"github.com/jcmexdev/storefront/internal/pkg/database"
	"github.com/jcmexdev/storefront/internal/pkg/telemetry"
)

func main() {
	down := flag.Int("down", 0, "number of migrations to roll back instead of migrating up")
	flag.Parse()

	cfg := config.Load()
	logger := telemetry.InitLogger(cfg.LogLevel, "storefront-migrate")

	if cfg.Database.DSN == "" {
		logger.Error("DATABASE_DSN is required")
		os.Exit(1)
	}

	var err error
	if *down > 0 {
		err = database.RollbackMigrations(cfg.Database.DSN, *down, logger)
	} else {
		err = database.RunMigrations(cfg.Database.DSN, logger)
	}
	if err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}
