// Package dbtx provides the transactional closure, unit-of-work and
// optimistic-locking primitives shared by every write path.
package dbtx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clierp.org/internal/erperr"
	"clierp.org/internal/obs"
)

// ErrRollback signals an intentional rollback from inside a transactional
// closure. WithTransaction translates it into erperr.ErrTransaction.
var ErrRollback = errors.New("dbtx: rollback requested")

// WithTransaction opens a transaction, invokes fn with exclusive use of it,
// commits on success and rolls back on any error. The closure's error is
// returned unchanged, except ErrRollback which becomes a Transaction error.
// No partial write from fn is observable after a failed call.
func WithTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	return WithTransactionOpts(ctx, db, nil, fn)
}

// WithTransactionOpts is WithTransaction with explicit transaction options,
// for paths that need a stricter isolation level.
func WithTransactionOpts(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", erperr.ErrDatabase, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		obs.CountTransaction("rollback")
		if errors.Is(err, ErrRollback) {
			return fmt.Errorf("%w: transaction was rolled back", erperr.ErrTransaction)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		obs.CountTransaction("rollback")
		return fmt.Errorf("%w: commit: %v", erperr.ErrDatabase, err)
	}
	obs.CountTransaction("commit")
	return nil
}
