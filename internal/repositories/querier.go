package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx used by the repositories. It is satisfied by
// *pgxpool.Pool, pgx.Tx and the pgxmock pool, which lets a repository run
// inside or outside a transaction without changing its queries.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB adds transaction support on top of Querier. Services begin a
// transaction here and rebind repositories onto it via WithTx.
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}
