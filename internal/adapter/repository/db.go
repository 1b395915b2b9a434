package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/vidlingo/internal/repository"
)

// DB wraps the pgx pool and hands repositories either the pool or the
// transaction bound into the context.
type DB struct {
	pool *pgxpool.Pool
}

// NewDB wraps a pgx connection pool for the repository layer.
func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

func (d *DB) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return d.pool
}

// InTx runs fn inside a database transaction. The transaction travels in the
// callback's context, so repository calls made through it share one unit of
// work. A nested call joins the ambient transaction instead of opening a
// second one.
func (d *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}
	return pgx.BeginFunc(ctx, d.pool, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

var _ repository.TxRunner = (*DB)(nil)

// noRows maps pgx's sentinel onto a domain error chosen by the caller.
func noRows(err, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return err
}
