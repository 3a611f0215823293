package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"clierp.org/internal/erperr"
)

func newTestService(t *testing.T, opts ...Option) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	base := []Option{WithBcryptCost(4)} // keep hashing fast in tests
	svc, err := NewService(store, "test-secret", append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store
}

func TestAuthenticateSuccessUpdatesLastLogin(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	u, err := svc.CreateUser(ctx, "alice", "alice@example.com", "s3cret", RoleManager, nil)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	identity, err := svc.Authenticate(ctx, "Alice", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if identity.ID != u.ID || identity.Role != RoleManager {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	stored, err := store.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.LastLoginAt == nil {
		t.Fatal("expected last login timestamp to be set")
	}
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	u, err := svc.CreateUser(ctx, "bob", "bob@example.com", "right-password", RoleEmployee, nil)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, wrongPass := svc.Authenticate(ctx, "bob", "wrong-password")
	_, noUser := svc.Authenticate(ctx, "nobody", "whatever")
	if wrongPass == nil || noUser == nil {
		t.Fatal("expected both authentications to fail")
	}
	if !errors.Is(wrongPass, erperr.ErrAuthentication) || !errors.Is(noUser, erperr.ErrAuthentication) {
		t.Fatalf("expected authentication errors, got %v / %v", wrongPass, noUser)
	}
	if wrongPass.Error() != noUser.Error() {
		t.Fatalf("error content distinguishes failure modes: %q vs %q", wrongPass, noUser)
	}

	if err := svc.Deactivate(ctx, u.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	_, inactive := svc.Authenticate(ctx, "bob", "right-password")
	if inactive == nil || inactive.Error() != noUser.Error() {
		t.Fatalf("inactive failure must match: %v", inactive)
	}
}

// brokenStore fails every username lookup the way a lost database
// connection would.
type brokenStore struct {
	UserStore
}

func (brokenStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	return nil, fmt.Errorf("%w: connection refused", erperr.ErrDatabase)
}

func TestAuthenticateStoreFailureIsNotCredentialError(t *testing.T) {
	svc, err := NewService(brokenStore{NewMemoryStore()}, "test-secret", WithBcryptCost(4))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Authenticate(context.Background(), "alice", "s3cret")
	if err == nil {
		t.Fatal("expected authentication to fail")
	}
	if !errors.Is(err, erperr.ErrDatabase) {
		t.Fatalf("expected database error to surface, got %v", err)
	}
	if errors.Is(err, erperr.ErrAuthentication) {
		t.Fatalf("store failure must not look like bad credentials: %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, "carol", "carol@example.com", "pw123456", RoleSupervisor, nil); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	identity, err := svc.Authenticate(ctx, "carol", "pw123456")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	token, err := svc.GenerateToken(identity)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Username != "carol" || claims.Role != "supervisor" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	resolved, err := svc.IdentityFromClaims(ctx, claims)
	if err != nil {
		t.Fatalf("IdentityFromClaims: %v", err)
	}
	if resolved.ID != identity.ID {
		t.Fatalf("unexpected resolved identity: %+v", resolved)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	current := time.Now()
	svc, _ := newTestService(t,
		WithTokenTTL(time.Minute),
		WithClock(func() time.Time { return current }),
	)
	identity := Identity{ID: 1, Username: "dave", Role: RoleEmployee}
	token, err := svc.GenerateToken(identity)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := svc.ValidateToken(token); !errors.Is(err, erperr.ErrToken) {
		t.Fatalf("expected token error for expired token, got %v", err)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	svc, _ := newTestService(t)
	token, err := svc.GenerateToken(Identity{ID: 1, Username: "eve", Role: RoleAuditor})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	other, _ := NewService(NewMemoryStore(), "another-secret")
	if _, err := other.ValidateToken(token); !errors.Is(err, erperr.ErrToken) {
		t.Fatalf("expected token error for wrong secret, got %v", err)
	}
}

func TestCreateDefaultAdminIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	if err := svc.CreateDefaultAdmin(ctx, ""); err != nil {
		t.Fatalf("first CreateDefaultAdmin: %v", err)
	}
	if err := svc.CreateDefaultAdmin(ctx, ""); err != nil {
		t.Fatalf("second CreateDefaultAdmin: %v", err)
	}
	count, err := store.CountByRole(ctx, RoleAdmin)
	if err != nil {
		t.Fatalf("CountByRole: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one admin, got %d", count)
	}

	if _, err := svc.Authenticate(ctx, "admin", "admin123"); err != nil {
		t.Fatalf("default admin should authenticate with fallback password: %v", err)
	}
}

func TestLoginRateLimit(t *testing.T) {
	svc, _ := newTestService(t, WithLoginRateLimit(rate.Every(time.Hour), 2))
	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, "frank", "frank@example.com", "pw123456", RoleEmployee, nil); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, _ = svc.Authenticate(ctx, "frank", "bad")
	_, _ = svc.Authenticate(ctx, "frank", "bad")
	_, err := svc.Authenticate(ctx, "frank", "pw123456")
	if !errors.Is(err, erperr.ErrAuthentication) {
		t.Fatalf("expected throttled attempt to fail authentication, got %v", err)
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	ok, err := VerifyPassword("pw", "not-a-bcrypt-hash")
	if ok {
		t.Fatal("expected verification failure")
	}
	if !errors.Is(err, erperr.ErrCrypto) {
		t.Fatalf("expected crypto error, got %v", err)
	}
}

func TestVerifyPasswordMismatchIsNotAnError(t *testing.T) {
	hash, err := HashPassword("pw-one", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	ok, err := VerifyPassword("pw-two", hash)
	if err != nil {
		t.Fatalf("mismatch must not error: %v", err)
	}
	if ok {
		t.Fatal("expected mismatch")
	}
}

func TestContextIdentity(t *testing.T) {
	ctx := context.Background()
	if _, ok := IdentityFromContext(ctx); ok {
		t.Fatal("empty context should carry no identity")
	}
	ctx = ContextWithIdentity(ctx, Identity{ID: 9, Username: "gina", Role: RoleManager})
	id, ok := IdentityFromContext(ctx)
	if !ok || id.Username != "gina" {
		t.Fatalf("unexpected identity: %+v ok=%v", id, ok)
	}
}
