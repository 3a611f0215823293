package dbtx

import (
	"context"
	"database/sql"
)

// Operation is one self-contained mutation executed against a transaction.
type Operation interface {
	Apply(ctx context.Context, tx *sql.Tx) error
}

// OperationFunc adapts a function to the Operation interface.
type OperationFunc func(ctx context.Context, tx *sql.Tx) error

func (f OperationFunc) Apply(ctx context.Context, tx *sql.Tx) error { return f(ctx, tx) }

// UnitOfWork is an ordered list of operations. Execute runs them strictly in
// insertion order and stops at the first error. It carries no transaction of
// its own; wrap Execute in WithTransaction when atomicity is required.
type UnitOfWork struct {
	operations []Operation
}

// NewUnitOfWork constructs an empty unit.
func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{}
}

// Add appends an operation.
func (u *UnitOfWork) Add(op Operation) {
	u.operations = append(u.operations, op)
}

// Len reports the number of queued operations.
func (u *UnitOfWork) Len() int { return len(u.operations) }

// Execute runs every operation in order, propagating the first error without
// running the remainder.
func (u *UnitOfWork) Execute(ctx context.Context, tx *sql.Tx) error {
	for _, op := range u.operations {
		if err := op.Apply(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}
