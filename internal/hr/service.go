package hr

import (
	"context"
	"fmt"
	"strings"

	"clierp.org/internal/erperr"
	"clierp.org/internal/pagination"
)

// Service wraps the store with input validation and derived queries.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateEmployeeInput carries the fields for a new personnel record.
type CreateEmployeeInput struct {
	Name         string
	Email        string
	Position     string
	SalaryCents  int64
	DepartmentID *int64
}

func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: employee name is required", erperr.ErrValidation)
	}
	if in.SalaryCents < 0 {
		return nil, fmt.Errorf("%w: salary must not be negative", erperr.ErrValidation)
	}
	e := &Employee{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Position:     strings.TrimSpace(in.Position),
		SalaryCents:  in.SalaryCents,
		DepartmentID: in.DepartmentID,
		Status:       StatusActive,
	}
	if err := s.store.CreateEmployee(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) GetEmployee(ctx context.Context, id int64) (*Employee, error) {
	return s.store.GetEmployee(ctx, id)
}

func (s *Service) AssignDepartment(ctx context.Context, employeeID, departmentID int64) error {
	return s.store.AssignDepartment(ctx, employeeID, departmentID)
}

func (s *Service) ListEmployees(ctx context.Context, params pagination.Params) (pagination.Result[Employee], error) {
	all, err := s.store.ListEmployees(ctx)
	if err != nil {
		return pagination.Result[Employee]{}, err
	}
	params = params.Normalize()
	start := params.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + params.PerPage
	if end > len(all) {
		end = len(all)
	}
	items := make([]Employee, 0, end-start)
	for _, e := range all[start:end] {
		items = append(items, *e)
	}
	return pagination.NewResult(items, len(all), params), nil
}

func (s *Service) CreateDepartment(ctx context.Context, name string) (*Department, error) {
	d := &Department{Name: strings.TrimSpace(name)}
	if err := s.store.CreateDepartment(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) ListDepartments(ctx context.Context) ([]*Department, error) {
	return s.store.ListDepartments(ctx)
}

// TotalActiveSalary sums monthly salaries across active employees.
func (s *Service) TotalActiveSalary(ctx context.Context) (int64, int, error) {
	all, err := s.store.ListEmployees(ctx)
	if err != nil {
		return 0, 0, err
	}
	var total int64
	var n int
	for _, e := range all {
		if e.Status != StatusActive {
			continue
		}
		total += e.SalaryCents
		n++
	}
	return total, n, nil
}
