package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/printprice/printprice/internal/config"
	"github.com/printprice/printprice/internal/logger"
	"github.com/printprice/printprice/internal/migration"
	"github.com/printprice/printprice/internal/postgres"
)

// Applies pending schema migrations by default. -rollback undoes the most
// recent one, -status prints the schema version and exits.
func main() {
	rollback := flag.Bool("rollback", false, "Roll back the most recently applied migration")
	status := flag.Bool("status", false, "Print the current schema version and exit")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err, "host", cfg.Postgres.Host)
	}
	defer db.Close()

	switch {
	case *status:
		version, dirty, err := migration.Version(db.DB.DB)
		if err != nil {
			logger.Fatalw("Failed to read schema version", "error", err)
		}
		fmt.Printf("schema version: %d dirty: %t\n", version, dirty)

	case *rollback:
		logger.Infow("Rolling back most recent migration", "host", cfg.Postgres.Host)
		if err := migration.Rollback(db.DB.DB); err != nil {
			logger.Fatalw("Failed to roll back migration", "error", err)
		}
		logger.Info("Rollback complete")

	default:
		logger.Infow("Applying pending migrations", "host", cfg.Postgres.Host)
		if err := migration.RunMigrations(db.DB.DB); err != nil {
			logger.Fatalw("Failed to apply migrations", "error", err)
		}
		logger.Info("Migrations complete")
	}
}
