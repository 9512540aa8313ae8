// Package auth registers portal users, issues access tokens and resolves the
// caller behind a bearer token.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/InsureDoc-Intelligence/internal/domain/tenant"
	"github.com/turtacn/InsureDoc-Intelligence/internal/domain/user"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/auth/token"
	"github.com/turtacn/InsureDoc-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// Service defines the account operations exposed to the interfaces layer.
type Service interface {
	Register(ctx context.Context, input *RegisterInput) (*UserView, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Me(ctx context.Context, userID uuid.UUID) (*UserView, error)
	VerifyToken(ctx context.Context, raw string) (*token.Claims, error)
	Logout(ctx context.Context, claims *token.Claims) error
}

// TokenManager issues and verifies access tokens.
type TokenManager interface {
	Issue(userID, tenantID uuid.UUID) (string, *token.Claims, error)
	Verify(raw string) (*token.Claims, error)
	TTL() time.Duration
}

// PasswordHasher hashes and compares passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(hash, password string) (bool, error)
}

// RevocationStore remembers logged-out token ids.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Metrics counts authentication attempts.
type Metrics interface {
	RecordAuthAttempt(operation string, ok bool)
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	TenantName string `json:"tenant_name"`
}

// TenantView is the tenant as shown to its users.
type TenantView struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// UserView is the public shape of an account.
type UserView struct {
	ID       uuid.UUID  `json:"id"`
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	IsActive bool       `json:"is_active"`
	Tenant   TenantView `json:"tenant"`
}

// TokenPair is the login response.
type TokenPair struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type serviceImpl struct {
	tenants tenant.Repository
	users   user.Repository
	tokens  TokenManager
	hasher  PasswordHasher
	revoked RevocationStore
	metrics Metrics
	logger  logging.Logger
}

// Option customizes the service.
type Option func(*serviceImpl)

// WithRevocationStore enables logout.  Without it tokens stay valid until
// they expire.
func WithRevocationStore(s RevocationStore) Option {
	return func(svc *serviceImpl) { svc.revoked = s }
}

func WithMetrics(m Metrics) Option {
	return func(svc *serviceImpl) { svc.metrics = m }
}

// NewService creates the auth service.
func NewService(tenants tenant.Repository, users user.Repository, tokens TokenManager, hasher PasswordHasher, logger logging.Logger, opts ...Option) Service {
	s := &serviceImpl{
		tenants: tenants,
		users:   users,
		tokens:  tokens,
		hasher:  hasher,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) record(op string, ok bool) {
	if s.metrics != nil {
		s.metrics.RecordAuthAttempt(op, ok)
	}
}

func (s *serviceImpl) Register(ctx context.Context, input *RegisterInput) (*UserView, error) {
	if input == nil {
		return nil, errors.New(errors.ErrCodeMissingCredentials, "Email and password are required.")
	}
	email := user.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, errors.New(errors.ErrCodeMissingCredentials, "Email and password are required.")
	}
	if !user.ValidEmail(email) {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "Invalid email address.")
	}
	if len(input.Password) < user.MinPasswordLength {
		return nil, errors.Newf(errors.ErrCodeInvalidArgument, "Password must be at least %d characters.", user.MinPasswordLength)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		s.record("register", false)
		return nil, errors.New(errors.ErrCodeEmailTaken, "Email already registered")
	} else if !errors.IsCode(err, errors.ErrCodeUserNotFound) {
		return nil, err
	}

	t, err := s.tenantFor(ctx, input.TenantName)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	u, err := user.NewUser(email, input.FullName, hash, t.ID)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		s.record("register", false)
		return nil, err
	}

	s.record("register", true)
	s.logger.Info("User registered",
		logging.String("user_id", u.ID.String()),
		logging.String("tenant_id", t.ID.String()))
	return toView(u, t), nil
}

// tenantFor returns the named tenant, creating it on first use.  A concurrent
// registration may create it first, in which case the existing row is used.
func (s *serviceImpl) tenantFor(ctx context.Context, name string) (*tenant.Tenant, error) {
	name = tenant.NormalizeName(name)
	t, err := s.tenants.GetByName(ctx, name)
	if err == nil {
		return t, nil
	}
	if !errors.IsCode(err, errors.ErrCodeTenantNotFound) {
		return nil, err
	}

	t, err = tenant.NewTenant(name)
	if err != nil {
		return nil, err
	}
	if err := s.tenants.Create(ctx, t); err != nil {
		if errors.IsCode(err, errors.ErrCodeConflict) {
			return s.tenants.GetByName(ctx, name)
		}
		return nil, err
	}
	s.logger.Info("Tenant created", logging.String("tenant_id", t.ID.String()), logging.String("name", t.Name))
	return t, nil
}

func (s *serviceImpl) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = user.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, errors.New(errors.ErrCodeMissingCredentials, "Email and password are required.")
	}

	invalid := errors.New(errors.ErrCodeInvalidCredentials, "Invalid email or password.")
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeUserNotFound) {
			s.record("login", false)
			return nil, invalid
		}
		return nil, err
	}
	ok, err := s.hasher.Check(u.PasswordHash, password)
	if err != nil {
		s.logger.Warn("Password check failed", logging.String("user_id", u.ID.String()), logging.Err(err))
		s.record("login", false)
		return nil, invalid
	}
	if !ok || !u.IsActive {
		s.record("login", false)
		return nil, invalid
	}

	raw, _, err := s.tokens.Issue(u.ID, u.TenantID)
	if err != nil {
		return nil, err
	}
	s.record("login", true)
	return &TokenPair{
		AccessToken: raw,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

func (s *serviceImpl) Me(ctx context.Context, userID uuid.UUID) (*UserView, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	t, err := s.tenants.GetByID(ctx, u.TenantID)
	if err != nil {
		return nil, err
	}
	return toView(u, t), nil
}

func (s *serviceImpl) VerifyToken(ctx context.Context, raw string) (*token.Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New(errors.ErrCodeTokenInvalid, "Could not validate credentials")
	}
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	if _, err := claims.Tenant(); err != nil {
		return nil, err
	}
	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			// An unreachable store does not reject the token.
			s.logger.Warn("Revocation check failed", logging.Err(err))
		} else if revoked {
			return nil, errors.New(errors.ErrCodeTokenRevoked, "token has been revoked")
		}
	}
	return claims, nil
}

func (s *serviceImpl) Logout(ctx context.Context, claims *token.Claims) error {
	if claims == nil {
		return errors.New(errors.ErrCodeTokenInvalid, "Could not validate credentials")
	}
	if s.revoked == nil {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.Remaining(time.Now()))
}

func toView(u *user.User, t *tenant.Tenant) *UserView {
	return &UserView{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		IsActive: u.IsActive,
		Tenant:   TenantView{ID: t.ID, Name: t.Name},
	}
}
