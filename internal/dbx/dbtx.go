// Package dbx holds the small database abstractions the stores and command
// services share: a handle interface satisfied by both *sql.DB and *sql.Tx,
// and a runner that executes a function as one unit of work.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by the stores.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with it, and commits on success.
// It rolls back when fn returns an error or panics; panics are rethrown.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// Runner hands out the pool for snapshot reads and runs units of work on it.
type Runner struct {
	db   *sql.DB
	opts *sql.TxOptions
}

// NewRunner returns a Runner whose transactions use READ COMMITTED isolation.
func NewRunner(db *sql.DB) *Runner {
	return &Runner{db: db, opts: &sql.TxOptions{Isolation: sql.LevelReadCommitted}}
}

// Conn returns the non-transactional handle.
func (r *Runner) Conn() DBTX { return r.db }

// WithTx runs fn as one unit of work.
func (r *Runner) WithTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	return WithTx(ctx, r.db, r.opts, fn)
}
