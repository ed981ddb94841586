// Package dbx holds the database plumbing shared by repositories and
// services: the DBTX handle, transaction helpers and SQLSTATE checks.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is what repositories query through. *sql.DB, *sql.Conn and *sql.Tx
// all satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxStarter opens transactions; *sql.DB and *sql.Conn satisfy it.
type TxStarter interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// InTx runs fn inside a transaction and returns its result. The transaction
// is committed when fn succeeds and rolled back when it fails or panics;
// panics are re-raised after the rollback.
//
//	c, err := dbx.InTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Customer, error) {
//		return customers.NewPostgresRepository(tx).GetByIDForUpdate(ctx, id)
//	})
func InTx[T any](ctx context.Context, db TxStarter, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) (T, error)) (out T, err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return out, fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		_ = tx.Rollback()
		if p := recover(); p != nil {
			panic(p)
		}
	}()

	out, err = fn(ctx, tx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err = tx.Commit(); err != nil {
		var zero T
		return zero, fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return out, nil
}

// WithTx is InTx for functions without a result.
func WithTx(ctx context.Context, db TxStarter, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) error {
	_, err := InTx(ctx, db, opts, func(ctx context.Context, tx DBTX) (struct{}, error) {
		return struct{}{}, fn(ctx, tx)
	})
	return err
}
