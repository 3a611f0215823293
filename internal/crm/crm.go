// Package crm keeps customer records with search and simple stats.
package crm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"clierp.org/internal/erperr"
	"clierp.org/internal/pagination"
)

// Customer statuses.
const (
	StatusLead     = "lead"
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Customer struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Service runs customer operations against the database.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// CreateCustomerInput carries the fields for a new customer. New customers
// start as leads.
type CreateCustomerInput struct {
	Name  string
	Email string
	Phone string
}

func (s *Service) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*Customer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: customer name is required", erperr.ErrValidation)
	}
	c := &Customer{
		Name:   strings.TrimSpace(in.Name),
		Email:  strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:  strings.TrimSpace(in.Phone),
		Status: StatusLead,
	}
	err := s.db.QueryRowContext(ctx,
		`insert into customers (name, email, phone, status)
		 values ($1, $2, $3, $4) returning id`,
		c.Name, c.Email, c.Phone, c.Status).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: create customer: %v", erperr.ErrDatabase, err)
	}
	return c, nil
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	var c Customer
	err := s.db.QueryRowContext(ctx,
		`select id, name, email, phone, status, created_at, updated_at
		 from customers where id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: customer %d", erperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get customer: %v", erperr.ErrDatabase, err)
	}
	return &c, nil
}

func (s *Service) SetStatus(ctx context.Context, id int64, status string) error {
	switch status {
	case StatusLead, StatusActive, StatusInactive:
	default:
		return fmt.Errorf("%w: unknown customer status %q", erperr.ErrValidation, status)
	}
	res, err := s.db.ExecContext(ctx,
		`update customers set status = $1, updated_at = now() where id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("%w: set customer status: %v", erperr.ErrDatabase, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: customer %d", erperr.ErrNotFound, id)
	}
	return nil
}

// ListFilter narrows a customer listing; zero values mean no filter.
type ListFilter struct {
	Status string
	Query  string
}

func (s *Service) ListCustomers(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Result[Customer], error) {
	params = params.Normalize()
	var zero pagination.Result[Customer]

	where := "where 1=1"
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" and status = $%d", len(args))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where += fmt.Sprintf(" and (name ilike $%d or email ilike $%d)", len(args), len(args))
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		`select count(*) from customers `+where, args...).Scan(&total); err != nil {
		return zero, fmt.Errorf("%w: count customers: %v", erperr.ErrDatabase, err)
	}

	args = append(args, params.PerPage, params.Offset())
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`select id, name, email, phone, status, created_at, updated_at
		 from customers %s order by id limit $%d offset $%d`, where, len(args)-1, len(args)),
		args...)
	if err != nil {
		return zero, fmt.Errorf("%w: list customers: %v", erperr.ErrDatabase, err)
	}
	defer rows.Close()

	var items []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return zero, fmt.Errorf("%w: scan customer: %v", erperr.ErrDatabase, err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return zero, fmt.Errorf("%w: list customers: %v", erperr.ErrDatabase, err)
	}
	return pagination.NewResult(items, total, params), nil
}

// Stats is the customer base summary for the CLI dashboard.
type Stats struct {
	Total    int
	Leads    int
	Active   int
	Inactive int
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`select count(*),
		        count(*) filter (where status = 'lead'),
		        count(*) filter (where status = 'active'),
		        count(*) filter (where status = 'inactive')
		 from customers`,
	).Scan(&st.Total, &st.Leads, &st.Active, &st.Inactive)
	if err != nil {
		return Stats{}, fmt.Errorf("%w: customer stats: %v", erperr.ErrDatabase, err)
	}
	return st, nil
}
