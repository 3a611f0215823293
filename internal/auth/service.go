package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"

	"clierp.org/internal/erperr"
	"clierp.org/internal/obs"
)

const (
	defaultIssuer   = "clierp"
	defaultTokenTTL = time.Hour
	defaultCost     = 12

	// invalidCredentials is deliberately shared by the unknown-user,
	// inactive-user and wrong-password paths so the error content cannot be
	// used for username enumeration.
	invalidCredentials = "invalid username or password"
)

// Claims are the signed session token claims.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service implements credential management, authentication and session
// token issuance.
type Service struct {
	store      UserStore
	secret     []byte
	issuer     string
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
	loginRate rate.Limit
	burst     int
}

// Option configures Service behavior.
type Option func(*Service)

// WithTokenTTL configures session token lifetime.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithBcryptCost configures the password hashing cost factor.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost > 0 {
			s.bcryptCost = cost
		}
	}
}

// WithIssuer overrides the token issuer claim.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		if strings.TrimSpace(issuer) != "" {
			s.issuer = issuer
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithLoginRateLimit throttles authentication attempts per username.
func WithLoginRateLimit(r rate.Limit, burst int) Option {
	return func(s *Service) {
		if r > 0 && burst > 0 {
			s.loginRate = r
			s.burst = burst
		}
	}
}

// NewService constructs a Service with the given signing secret.
func NewService(store UserStore, secret string, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: user store is required", erperr.ErrInternal)
	}
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%w: signing secret is required", erperr.ErrInternal)
	}
	svc := &Service{
		store:      store,
		secret:     []byte(secret),
		issuer:     defaultIssuer,
		tokenTTL:   defaultTokenTTL,
		bcryptCost: defaultCost,
		now:        time.Now,
		limiters:   make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateUser hashes the password and stores a new active credential record.
func (s *Service) CreateUser(ctx context.Context, username, email, password string, role Role, employeeID *int64) (*User, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", erperr.ErrValidation)
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", erperr.ErrValidation)
	}
	if _, ok := roleRanks[role]; !ok {
		return nil, fmt.Errorf("%w: unknown role %q", erperr.ErrValidation, role)
	}
	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		EmployeeID:   employeeID,
		Active:       true,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies a username/password pair against the stored record.
// Unknown usernames, deactivated users and password mismatches fail with the
// same message. A successful login updates the last-login timestamp.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" || password == "" {
		return Identity{}, fmt.Errorf("%w: %s", erperr.ErrAuthentication, invalidCredentials)
	}
	if !s.allowAttempt(username) {
		return Identity{}, fmt.Errorf("%w: too many login attempts", erperr.ErrAuthentication)
	}
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		// A store failure is not a credential problem and must keep its
		// kind. Only the missing-record case joins the shared message.
		if errors.Is(err, erperr.ErrNotFound) {
			return Identity{}, fmt.Errorf("%w: %s", erperr.ErrAuthentication, invalidCredentials)
		}
		return Identity{}, err
	}
	if !user.Active {
		return Identity{}, fmt.Errorf("%w: %s", erperr.ErrAuthentication, invalidCredentials)
	}
	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return Identity{}, err
	}
	if !ok {
		return Identity{}, fmt.Errorf("%w: %s", erperr.ErrAuthentication, invalidCredentials)
	}
	if err := s.store.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		return Identity{}, err
	}
	return Identity{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Role:       user.Role,
		EmployeeID: user.EmployeeID,
	}, nil
}

// GenerateToken signs a session token for the identity using HS256.
func (s *Service) GenerateToken(identity Identity) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		Username: identity.Username,
		Role:     identity.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   fmt.Sprintf("%d", identity.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: sign: %v", erperr.ErrToken, err)
	}
	return signed, nil
}

// ValidateToken verifies the token signature and expiry and returns claims.
func (s *Service) ValidateToken(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", erperr.ErrToken)
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", erperr.ErrToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: malformed claims", erperr.ErrToken)
	}
	if claims.Issuer != s.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", erperr.ErrToken, claims.Issuer)
	}
	return claims, nil
}

// IdentityFromClaims resolves the token claims back to a full identity,
// rejecting tokens for records that were deactivated after issuance.
func (s *Service) IdentityFromClaims(ctx context.Context, claims *Claims) (Identity, error) {
	var id int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &id); err != nil {
		return Identity{}, fmt.Errorf("%w: bad subject", erperr.ErrToken)
	}
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: unknown subject", erperr.ErrToken)
	}
	if !user.Active {
		return Identity{}, fmt.Errorf("%w: credential deactivated", erperr.ErrAuthentication)
	}
	return Identity{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Role:       user.Role,
		EmployeeID: user.EmployeeID,
	}, nil
}

// GetUserByID loads a credential record.
func (s *Service) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return s.store.FindByID(ctx, id)
}

// ListUsers returns all credential records.
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.store.List(ctx)
}

// SetPassword rehashes and replaces a user's password.
func (s *Service) SetPassword(ctx context.Context, id int64, password string) error {
	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, id, hash)
}

// SetRole changes a user's role.
func (s *Service) SetRole(ctx context.Context, id int64, role Role) error {
	if _, ok := roleRanks[role]; !ok {
		return fmt.Errorf("%w: unknown role %q", erperr.ErrValidation, role)
	}
	return s.store.UpdateRole(ctx, id, role)
}

// Deactivate marks a credential record inactive. This is terminal; records
// are never deleted.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.store.SetActive(ctx, id, false)
}

// CreateDefaultAdmin creates the bootstrap administrator iff no admin-role
// credential exists. Safe to call on every process start.
func (s *Service) CreateDefaultAdmin(ctx context.Context, password string) error {
	count, err := s.store.CountByRole(ctx, RoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if password == "" {
		password = "admin123"
	}
	if _, err := s.CreateUser(ctx, "admin", "admin@clierp.local", password, RoleAdmin, nil); err != nil {
		return err
	}
	obs.Warn("default admin user created with username 'admin'; change the password", map[string]any{
		"username": "admin",
	})
	return nil
}

func (s *Service) allowAttempt(username string) bool {
	if s.loginRate <= 0 {
		return true
	}
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	lim, ok := s.limiters[username]
	if !ok {
		lim = rate.NewLimiter(s.loginRate, s.burst)
		s.limiters[username] = lim
	}
	return lim.Allow()
}
