package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clierp.org/internal/erperr"
	"clierp.org/internal/hr"
)

// HRStore persists employees and departments.
type HRStore struct {
	db *sql.DB
}

var _ hr.Store = (*HRStore)(nil)

func NewHRStore(s *Store) *HRStore { return &HRStore{db: s.db} }

const employeeColumns = `id, name, email, position, salary_cents, department_id, status, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (*hr.Employee, error) {
	var e hr.Employee
	err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Position, &e.SalaryCents,
		&e.DepartmentID, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *HRStore) CreateEmployee(ctx context.Context, e *hr.Employee) error {
	if e.Status == "" {
		e.Status = hr.StatusActive
	}
	err := s.db.QueryRowContext(ctx,
		`insert into employees (name, email, position, salary_cents, department_id, status)
		 values ($1, $2, $3, $4, $5, $6)
		 returning id, created_at, updated_at`,
		e.Name, e.Email, e.Position, e.SalaryCents, e.DepartmentID, e.Status,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: create employee: %v", erperr.ErrDatabase, err)
	}
	return nil
}

func (s *HRStore) GetEmployee(ctx context.Context, id int64) (*hr.Employee, error) {
	e, err := scanEmployee(s.db.QueryRowContext(ctx,
		`select `+employeeColumns+` from employees where id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: employee %d", erperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get employee: %v", erperr.ErrDatabase, err)
	}
	return e, nil
}

func (s *HRStore) AssignDepartment(ctx context.Context, employeeID, departmentID int64) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		`select 1 from departments where id = $1`, departmentID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: department %d", erperr.ErrNotFound, departmentID)
	}
	if err != nil {
		return fmt.Errorf("%w: check department: %v", erperr.ErrDatabase, err)
	}

	res, err := s.db.ExecContext(ctx,
		`update employees set department_id = $1, updated_at = now() where id = $2`,
		departmentID, employeeID)
	if err != nil {
		return fmt.Errorf("%w: assign department: %v", erperr.ErrDatabase, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: employee %d", erperr.ErrNotFound, employeeID)
	}
	return nil
}

func (s *HRStore) ListEmployees(ctx context.Context) ([]*hr.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+employeeColumns+` from employees order by id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list employees: %v", erperr.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*hr.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan employee: %v", erperr.ErrDatabase, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list employees: %v", erperr.ErrDatabase, err)
	}
	return out, nil
}

func (s *HRStore) CreateDepartment(ctx context.Context, d *hr.Department) error {
	err := s.db.QueryRowContext(ctx,
		`insert into departments (name) values ($1) returning id, created_at`,
		d.Name).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: create department: %v", erperr.ErrDatabase, err)
	}
	return nil
}

func (s *HRStore) GetDepartment(ctx context.Context, id int64) (*hr.Department, error) {
	var d hr.Department
	err := s.db.QueryRowContext(ctx,
		`select id, name, created_at from departments where id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: department %d", erperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get department: %v", erperr.ErrDatabase, err)
	}
	return &d, nil
}

func (s *HRStore) ListDepartments(ctx context.Context) ([]*hr.Department, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, name, created_at from departments order by id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list departments: %v", erperr.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*hr.Department
	for rows.Next() {
		var d hr.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan department: %v", erperr.ErrDatabase, err)
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list departments: %v", erperr.ErrDatabase, err)
	}
	return out, nil
}
