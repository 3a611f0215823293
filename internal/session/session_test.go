package session

import (
	"context"
	"testing"
	"time"

	"clierp.org/internal/auth"
)

func newFixture(t *testing.T, opts ...auth.Option) (*auth.Service, *Manager) {
	t.Helper()
	store := auth.NewMemoryStore()
	svc, err := auth.NewService(store, "session-secret", append([]auth.Option{auth.WithBcryptCost(4)}, opts...)...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, NewManager(svc, t.TempDir())
}

func TestSaveLoadClear(t *testing.T) {
	svc, mgr := newFixture(t)
	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, "hana", "hana@example.com", "pw123456", auth.RoleManager, nil); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	identity, err := svc.Authenticate(ctx, "hana", "pw123456")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	token, err := svc.GenerateToken(identity)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if err := mgr.Save(token); err != nil {
		t.Fatalf("Save: %v", err)
	}
	sess, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess == nil || sess.Username != "hana" || sess.Role != "manager" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	current, err := mgr.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if current == nil || current.ID != identity.ID {
		t.Fatalf("unexpected identity: %+v", current)
	}

	if err := mgr.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	sess, err = mgr.Load()
	if err != nil {
		t.Fatalf("Load after clear: %v", err)
	}
	if sess != nil {
		t.Fatal("expected no session after clear")
	}
}

func TestExpiredSessionIsDropped(t *testing.T) {
	current := time.Now()
	svc, mgr := newFixture(t,
		auth.WithTokenTTL(time.Minute),
		auth.WithClock(func() time.Time { return current }),
	)
	token, err := svc.GenerateToken(auth.Identity{ID: 1, Username: "ira", Role: auth.RoleEmployee})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if err := mgr.Save(token); err != nil {
		t.Fatalf("Save: %v", err)
	}

	current = current.Add(2 * time.Minute)
	sess, err := mgr.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess != nil {
		t.Fatal("expected expired session to be dropped")
	}
}
