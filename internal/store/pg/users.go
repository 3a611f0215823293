package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clierp.org/internal/auth"
	"clierp.org/internal/erperr"
)

// UserStore persists credential records in the users table.
type UserStore struct {
	db *sql.DB
}

var _ auth.UserStore = (*UserStore)(nil)

func NewUserStore(s *Store) *UserStore { return &UserStore{db: s.db} }

const userColumns = `id, username, email, password_hash, role, employee_id, active, last_login_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*auth.User, error) {
	var u auth.User
	var role string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role,
		&u.EmployeeID, &u.Active, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, u *auth.User) error {
	err := s.db.QueryRowContext(ctx,
		`insert into users (username, email, password_hash, role, employee_id, active)
		 values ($1, $2, $3, $4, $5, $6)
		 returning id, created_at, updated_at`,
		u.Username, u.Email, u.PasswordHash, string(u.Role), u.EmployeeID, u.Active,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: create user: %v", erperr.ErrDatabase, err)
	}
	return nil
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where lower(username) = lower($1)`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %q", erperr.ErrNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find user: %v", erperr.ErrDatabase, err)
	}
	return u, nil
}

func (s *UserStore) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %d", erperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find user: %v", erperr.ErrDatabase, err)
	}
	return u, nil
}

func (s *UserStore) update(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: update user: %v", erperr.ErrDatabase, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: user", erperr.ErrNotFound)
	}
	return nil
}

func (s *UserStore) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return s.update(ctx,
		`update users set last_login_at = $1, updated_at = now() where id = $2`, at, id)
}

func (s *UserStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return s.update(ctx,
		`update users set password_hash = $1, updated_at = now() where id = $2`, passwordHash, id)
}

func (s *UserStore) UpdateRole(ctx context.Context, id int64, role auth.Role) error {
	return s.update(ctx,
		`update users set role = $1, updated_at = now() where id = $2`, string(role), id)
}

func (s *UserStore) SetActive(ctx context.Context, id int64, active bool) error {
	return s.update(ctx,
		`update users set active = $1, updated_at = now() where id = $2`, active, id)
}

func (s *UserStore) CountByRole(ctx context.Context, role auth.Role) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`select count(*) from users where role = $1 and active = true`, string(role)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: count users: %v", erperr.ErrDatabase, err)
	}
	return n, nil
}

func (s *UserStore) List(ctx context.Context) ([]*auth.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+userColumns+` from users order by id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", erperr.ErrDatabase, err)
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan user: %v", erperr.ErrDatabase, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list users: %v", erperr.ErrDatabase, err)
	}
	return users, nil
}
