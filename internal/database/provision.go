package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// EnsureDatabase creates the named database through an admin connection when it
// does not exist. With reset, open sessions are terminated and the database is
// dropped first. It reports whether the database was created.
func EnsureDatabase(ctx context.Context, adminConnString, name string, reset bool) (bool, error) {
	conn, err := pgx.Connect(ctx, adminConnString)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToConnectAdmin, err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	ident := pgx.Identifier{name}.Sanitize()

	if reset {
		if _, err := conn.Exec(ctx, `
			SELECT pg_terminate_backend(pid)
			FROM pg_stat_activity
			WHERE datname = $1 AND pid <> pg_backend_pid()`, name); err != nil {
			slog.Warn(LogMsgTerminateSessionsFailed, "database", name, "error", err)
		}
		if _, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+ident); err != nil {
			return false, fmt.Errorf("%s: %w", ErrMsgFailedToDropDatabase, err)
		}
		slog.Info(LogMsgDatabaseDropped, "database", name)
	}

	var exists bool
	if err := conn.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, name,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToCheckDatabase, err)
	}
	if exists {
		return false, nil
	}

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+ident); err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToCreateDatabase, err)
	}
	slog.Info(LogMsgDatabaseCreated, "database", name)
	return true, nil
}
