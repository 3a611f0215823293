package auth

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"clierp.org/internal/erperr"
)

// MemoryStore is an in-process UserStore used by tests and demos.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*User
}

var _ UserStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[int64]*User)}
}

func (s *MemoryStore) Create(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return fmt.Errorf("%w: username %q already exists", erperr.ErrValidation, u.Username)
		}
	}
	s.nextID++
	u.ID = s.nextID
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: user %q", erperr.ErrNotFound, username)
}

func (s *MemoryStore) FindByID(ctx context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", erperr.ErrNotFound, id)
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return s.update(id, func(u *User) { u.LastLoginAt = &at })
}

func (s *MemoryStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return s.update(id, func(u *User) { u.PasswordHash = passwordHash })
}

func (s *MemoryStore) UpdateRole(ctx context.Context, id int64, role Role) error {
	return s.update(id, func(u *User) { u.Role = role })
}

func (s *MemoryStore) SetActive(ctx context.Context, id int64, active bool) error {
	return s.update(id, func(u *User) { u.Active = active })
}

func (s *MemoryStore) CountByRole(ctx context.Context, role Role) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, u := range s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) update(id int64, fn func(*User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("%w: user %d", erperr.ErrNotFound, id)
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}
