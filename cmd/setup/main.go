package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/osse101/PackOpener_Go/internal/config"
	"github.com/osse101/PackOpener_Go/internal/database"
	"github.com/osse101/PackOpener_Go/internal/database/postgres"
	"github.com/osse101/PackOpener_Go/internal/event"
	"github.com/osse101/PackOpener_Go/internal/eventlog"
)

func main() {
	reset := flag.Bool("reset", false, "Drop and recreate the database before migrating")
	skipMigrate := flag.Bool("skip-migrate", false, "Only create the database")
	replay := flag.String("replay-deadletters", "", "Dead letter file to replay into the audit log after migrating")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &config.Config{
		DBUser:     envOr("DB_USER", "postgres"),
		DBPassword: envOr("DB_PASSWORD", "postgres"),
		DBHost:     envOr("DB_HOST", "localhost"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBName:     envOr("DB_NAME", config.DefaultDBName),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	admin := *cfg
	admin.DBName = "postgres"

	created, err := database.EnsureDatabase(ctx, admin.GetDBConnString(), cfg.DBName, *reset)
	if err != nil {
		log.Fatalf("Failed to prepare database %s: %v", cfg.DBName, err)
	}
	if created {
		fmt.Printf("Database %s created.\n", cfg.DBName)
	} else {
		fmt.Printf("Database %s already exists.\n", cfg.DBName)
	}

	if *skipMigrate {
		return
	}

	pool, err := database.NewPool(ctx, cfg.GetDBConnString(), database.PoolOptions{MaxConns: 2})
	if err != nil {
		log.Fatalf("Unable to connect to %s: %v", cfg.DBName, err)
	}
	defer pool.Close()

	fmt.Println("Running migrations...")
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	fmt.Println("Migrations completed successfully.")

	if *replay == "" {
		return
	}

	// Only the audit log subscribes here; metrics and other in-process
	// subscribers of the running service are not replayed.
	bus := event.NewMemoryBus()
	eventlog.NewService(postgres.NewEventLogRepository(pool)).Subscribe(bus)

	n, err := event.ReplayDeadLetters(ctx, bus, *replay)
	fmt.Printf("Replayed %d dead letter entries from %s.\n", n, *replay)
	if err != nil {
		log.Fatalf("Replay incomplete: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
