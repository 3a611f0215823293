package auth

import (
	"context"
	"time"
)

// UserStore describes persistence operations required by the credential
// service. The PostgreSQL implementation lives in internal/store/pg; an
// in-memory implementation backs tests.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateRole(ctx context.Context, id int64, role Role) error
	SetActive(ctx context.Context, id int64, active bool) error
	CountByRole(ctx context.Context, role Role) (int64, error)
	List(ctx context.Context) ([]*User, error)
}
