package dbtx

import (
	"context"
	"database/sql"
	"fmt"

	"clierp.org/internal/erperr"
)

// ExecVersioned runs an update whose WHERE clause matches both the primary
// identity and an expected version number. Zero affected rows means the
// version was stale and surfaces as a Concurrency error; callers decide
// whether to reload and retry.
func ExecVersioned(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", erperr.ErrDatabase, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", erperr.ErrDatabase, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: record was modified by another user", erperr.ErrConcurrency)
	}
	return nil
}
