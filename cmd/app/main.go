package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/osse101/PackOpener_Go/internal/bootstrap"
	"github.com/osse101/PackOpener_Go/internal/composer"
	"github.com/osse101/PackOpener_Go/internal/concurrency"
	"github.com/osse101/PackOpener_Go/internal/config"
	"github.com/osse101/PackOpener_Go/internal/draw"
	"github.com/osse101/PackOpener_Go/internal/ledger"
	"github.com/osse101/PackOpener_Go/internal/opening"
	"github.com/osse101/PackOpener_Go/internal/raritytable"
	"github.com/osse101/PackOpener_Go/internal/server"
)

// @title PackOpener API
// @version 1.0
// @description Pack and box openings, user inventories and the opening ledger.
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	bootstrap.SetupLogger(cfg)

	for _, w := range cfg.Warnings() {
		slog.Warn(bootstrap.LogMsgEnvWarning, "warning", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	storage, err := bootstrap.InitializeStorage(ctx, cfg)
	if err != nil {
		return err
	}

	events, err := bootstrap.InitializeEventSystem(cfg, storage.EventLog)
	if err != nil {
		storage.Close()
		return err
	}

	tables, err := raritytable.NewService(storage.Catalog, cfg.RarityTableCacheSize)
	if err != nil {
		bootstrap.GracefulShutdown(ctx, bootstrap.ShutdownComponents{Events: events, Storage: storage})
		return err
	}
	if err := bootstrap.ActivateBootSets(ctx, tables, storage.BootSets); err != nil {
		bootstrap.GracefulShutdown(ctx, bootstrap.ShutdownComponents{Events: events, Storage: storage})
		return err
	}

	ledgerSvc := ledger.NewService(storage.Ledger, concurrency.NewLockManager(), cfg.LockTimeout)
	comp := composer.New(draw.NewEngine(draw.NewSource), storage.Pricer)
	openings := opening.NewService(storage.Catalog, storage.Stock, tables, comp, ledgerSvc, events.Publisher, cfg.ReleaseTimeout)

	srv := server.NewServer(server.Config{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		ServiceVersion: cfg.ServiceVersion,
	}, server.Services{
		Openings: openings,
		Ledger:   ledgerSvc,
		Tables:   tables,
		Audit:    events.Audit,
		Events:   events.Publisher,
		Storage:  storage.Health,
	})

	workers := bootstrap.StartWorkers(ctx, cfg, events.Audit)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:  srv,
		Workers: workers,
		Events:  events,
		Storage: storage,
	})

	return err
}
