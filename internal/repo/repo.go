// Package repo contains all database access logic for the WanderAI API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
// Begin on a pgx.Tx opens a savepoint, so owner-scoped work nests cleanly.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// SQLSTATE codes the repos translate into domain errors.
const (
	codeInsufficientPrivilege = "42501"
	codeUndefinedTable        = "42P01"
	codeUndefinedObject       = "42704"
	codeUniqueViolation       = "23505"
)

// asOwner runs fn in a transaction whose app.current_user_id setting is uid.
// The sessions row level security policies compare against that setting.
func asOwner(ctx context.Context, d db, uid string, fn func(tx pgx.Tx) error) error {
	tx, err := d.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const q = `SELECT set_config('app.current_user_id', @uid, true)`
	if _, err := tx.Exec(ctx, q, pgx.NamedArgs{"uid": uid}); err != nil {
		return fmt.Errorf("set owner: %w", err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// mapError translates driver errors into domain sentinels.
// Unrecognised errors pass through unchanged.
//
// Postgres plans around a missing index rather than failing, so a query only
// reports 42P01/42704 when the sessions schema itself is gone. Those map to
// ErrIndexMissing so history degrades to empty; the index proper is checked
// by SessionRepo.VerifyIndex at startup.
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeInsufficientPrivilege:
		return fmt.Errorf("%w: %s", domain.ErrPermissionDenied, pgErr.Message)
	case codeUndefinedTable, codeUndefinedObject:
		return fmt.Errorf("%w: history schema missing: %s", domain.ErrIndexMissing, pgErr.Message)
	}
	return err
}
