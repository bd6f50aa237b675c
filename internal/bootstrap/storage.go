package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osse101/PackOpener_Go/internal/catalog"
	"github.com/osse101/PackOpener_Go/internal/config"
	"github.com/osse101/PackOpener_Go/internal/database"
	"github.com/osse101/PackOpener_Go/internal/database/memory"
	"github.com/osse101/PackOpener_Go/internal/database/postgres"
	"github.com/osse101/PackOpener_Go/internal/eventlog"
	"github.com/osse101/PackOpener_Go/internal/handler"
	"github.com/osse101/PackOpener_Go/internal/raritytable"
	"github.com/osse101/PackOpener_Go/internal/repository"
	"github.com/osse101/PackOpener_Go/internal/validation"
)

// Storage holds the repository implementations for the selected backend.
type Storage struct {
	Catalog  repository.Catalog
	Stock    repository.Stock
	Ledger   repository.Ledger
	Pricer   repository.Pricer
	EventLog eventlog.Repository
	Health   handler.Pinger

	// BootSets are activated before the server starts accepting requests.
	BootSets []int64

	close func()
}

// Close releases the backend's connections.
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// InitializeStorage connects to Postgres and runs migrations, or builds the
// in-memory store from CATALOG_FILE (demo catalog when unset).
func InitializeStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendPostgres:
		return initPostgres(ctx, cfg)
	case config.StorageBackendMemory:
		return initMemory(cfg)
	}
	return nil, fmt.Errorf("%s: %q", ErrMsgUnknownStorage, cfg.StorageBackend)
}

func initPostgres(ctx context.Context, cfg *config.Config) (*Storage, error) {
	pool, err := database.NewPool(ctx, cfg.GetDBConnString(), database.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
		LockTimeout:     cfg.LockTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedConnect, err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedMigrate, err)
	}

	catalogRepo := postgres.NewCatalogRepository(pool)
	slog.Info(LogMsgStorageInitialized, "backend", config.StorageBackendPostgres)

	return &Storage{
		Catalog:  catalogRepo,
		Stock:    postgres.NewStockRepository(pool),
		Ledger:   postgres.NewLedgerRepository(pool),
		Pricer:   catalogRepo,
		EventLog: postgres.NewEventLogRepository(pool),
		Health:   pool,
		close:    pool.Close,
	}, nil
}

func initMemory(cfg *config.Config) (*Storage, error) {
	store := memory.NewStore()

	var bootSets []int64
	if cfg.CatalogFile != "" {
		file, err := catalog.Load(cfg.CatalogFile, validation.NewSchemaValidator())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedLoadCatalog, err)
		}
		file.Apply(store)
		bootSets = file.SetIDs()
	} else {
		memory.SeedDemo(store)
		bootSets = []int64{memory.DemoSetID}
		slog.Info(LogMsgDemoCatalogSeeded, "user_id", memory.DemoUserID)
	}

	slog.Info(LogMsgStorageInitialized, "backend", config.StorageBackendMemory, "sets", len(bootSets))

	return &Storage{
		Catalog:  store,
		Stock:    store,
		Ledger:   store,
		Pricer:   store,
		EventLog: store,
		Health:   handler.PingFunc(func(context.Context) error { return nil }),
		BootSets: bootSets,
	}, nil
}

// ActivateBootSets activates every boot set, failing fast on the first misconfigured one.
func ActivateBootSets(ctx context.Context, tables raritytable.Service, setIDs []int64) error {
	for _, id := range setIDs {
		if _, err := tables.ActivateSet(ctx, id); err != nil {
			return fmt.Errorf("%s %d: %w", ErrMsgFailedActivateSet, id, err)
		}
		slog.Info(LogMsgSetActivatedAtBoot, "set_id", id)
	}
	return nil
}
