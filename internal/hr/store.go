package hr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"clierp.org/internal/erperr"
)

// Store describes the persistence layer for personnel records. The
// PostgreSQL implementation lives in internal/store/pg.
type Store interface {
	CreateEmployee(ctx context.Context, e *Employee) error
	GetEmployee(ctx context.Context, id int64) (*Employee, error)
	AssignDepartment(ctx context.Context, employeeID, departmentID int64) error
	ListEmployees(ctx context.Context) ([]*Employee, error)
	CreateDepartment(ctx context.Context, d *Department) error
	GetDepartment(ctx context.Context, id int64) (*Department, error)
	ListDepartments(ctx context.Context) ([]*Department, error)
}

// MemoryStore keeps everything in process. Tests and offline runs only.
type MemoryStore struct {
	mu        sync.RWMutex
	nextEmpID int64
	nextDepID int64
	employees map[int64]*Employee
	depts     map[int64]*Department
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		employees: make(map[int64]*Employee),
		depts:     make(map[int64]*Department),
	}
}

func (s *MemoryStore) CreateEmployee(ctx context.Context, e *Employee) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: employee name is required", erperr.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEmpID++
	e.ID = s.nextEmpID
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.Status == "" {
		e.Status = StatusActive
	}
	cp := *e
	s.employees[e.ID] = &cp
	return nil
}

func (s *MemoryStore) GetEmployee(ctx context.Context, id int64) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return nil, fmt.Errorf("%w: employee %d", erperr.ErrNotFound, id)
	}
	cp := *e
	return &cp, nil
}

func (s *MemoryStore) AssignDepartment(ctx context.Context, employeeID, departmentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[employeeID]
	if !ok {
		return fmt.Errorf("%w: employee %d", erperr.ErrNotFound, employeeID)
	}
	if _, ok := s.depts[departmentID]; !ok {
		return fmt.Errorf("%w: department %d", erperr.ErrNotFound, departmentID)
	}
	e.DepartmentID = &departmentID
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) ListEmployees(ctx context.Context) ([]*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Employee, 0, len(s.employees))
	for _, e := range s.employees {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateDepartment(ctx context.Context, d *Department) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: department name is required", erperr.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextDepID++
	d.ID = s.nextDepID
	d.CreatedAt = time.Now().UTC()
	cp := *d
	s.depts[d.ID] = &cp
	return nil
}

func (s *MemoryStore) GetDepartment(ctx context.Context, id int64) (*Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.depts[id]
	if !ok {
		return nil, fmt.Errorf("%w: department %d", erperr.ErrNotFound, id)
	}
	cp := *d
	return &cp, nil
}

func (s *MemoryStore) ListDepartments(ctx context.Context) ([]*Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Department, 0, len(s.depts))
	for _, d := range s.depts {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
