// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

// Package postgres provides PostgreSQL-backed implementations of the auth
// repositories.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// poolIface abstracts the pgxpool.Pool surface the repositories use, so
// tests can substitute a pgxmock pool.
type poolIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// querier abstracts query execution for both a pool and an active pgx.Tx,
// so repository methods can participate in a surrounding transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txKey is the context key under which Transactor stores the active pgx.Tx.
type txKey struct{}

// querierFrom returns the transaction stored in ctx, or the pool when no
// transaction is active.
func querierFrom(ctx context.Context, pool poolIface) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}
