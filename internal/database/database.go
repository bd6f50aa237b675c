package database

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the part of a connection pool that readiness checks need.
type Pool interface {
	Ping(ctx context.Context) error
	Close()
}

// PoolOptions sizes the pool shared by the catalog, stock and ledger repositories.
type PoolOptions struct {
	MaxConns        int
	MaxConnIdleTime time.Duration
	MaxConnLifetime time.Duration
	// LockTimeout is sent as the session lock_timeout so an inventory row lock
	// held by another opening fails with 55P03 instead of waiting forever.
	// Zero keeps the server default.
	LockTimeout time.Duration
}

// NewPool connects to Postgres and pings it once before returning.
func NewPool(ctx context.Context, connString string, opts PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToParseConnString, err)
	}

	maxConns := opts.MaxConns
	if maxConns > math.MaxInt32 {
		maxConns = math.MaxInt32
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns) //nolint:gosec // clamped above
	}
	cfg.MinConns = min(DefaultMinConnections, cfg.MaxConns)
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	params := cfg.ConnConfig.RuntimeParams
	if _, ok := params[RuntimeParamApplicationName]; !ok {
		params[RuntimeParamApplicationName] = ApplicationName
	}
	if opts.LockTimeout > 0 {
		params[RuntimeParamLockTimeout] = strconv.FormatInt(opts.LockTimeout.Milliseconds(), 10)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCreatePool, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToPingDatabase, err)
	}

	slog.Default().Info(LogMsgConnected,
		"max_conns", cfg.MaxConns,
		"lock_timeout", opts.LockTimeout)
	return pool, nil
}
