// Package session persists the CLI session token between invocations.
// Validity is determined purely by the token signature and expiry; the file
// is just a cache and is cleared whenever the token no longer validates.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"clierp.org/internal/auth"
	"clierp.org/internal/erperr"
)

const fileName = "clierp_session.json"

// Session is the on-disk representation of a cached login.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager reads and writes the session file.
type Manager struct {
	path string
	svc  *auth.Service
}

// NewManager stores the session under dir; an empty dir means the OS temp dir.
func NewManager(svc *auth.Service, dir string) *Manager {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Manager{path: filepath.Join(dir, fileName), svc: svc}
}

// Save validates the token and caches it with its decoded claims.
func (m *Manager) Save(token string) error {
	claims, err := m.svc.ValidateToken(token)
	if err != nil {
		return err
	}
	sess := Session{
		Token:     token,
		Username:  claims.Username,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode session: %v", erperr.ErrInternal, err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: write session: %v", erperr.ErrInternal, err)
	}
	return nil
}

// Load returns the cached session, or nil when absent, expired or invalid.
// Stale files are removed as a side effect.
func (m *Manager) Load() (*Session, error) {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read session: %v", erperr.ErrInternal, err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		_ = m.Clear()
		return nil, nil
	}
	if _, err := m.svc.ValidateToken(sess.Token); err != nil {
		_ = m.Clear()
		return nil, nil
	}
	return &sess, nil
}

// Current resolves the cached session to a full authenticated identity.
func (m *Manager) Current(ctx context.Context) (*auth.Identity, error) {
	sess, err := m.Load()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	claims, err := m.svc.ValidateToken(sess.Token)
	if err != nil {
		_ = m.Clear()
		return nil, nil
	}
	identity, err := m.svc.IdentityFromClaims(ctx, claims)
	if err != nil {
		_ = m.Clear()
		return nil, nil
	}
	return &identity, nil
}

// Clear removes the session file.
func (m *Manager) Clear() error {
	err := os.Remove(m.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: clear session: %v", erperr.ErrInternal, err)
	}
	return nil
}
