package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/shipment-service/internal/auth"
	"github.com/spec-kit/shipment-service/internal/config"
	"github.com/spec-kit/shipment-service/internal/domain"
	"github.com/spec-kit/shipment-service/internal/repository"
	apperrors "github.com/spec-kit/shipment-service/pkg/util"
)

// TokenRevocationStore records logged-out tokens until they expire.
type TokenRevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

// AccountService coordinates registration, login and logout flows.
type AccountService struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	revoker    TokenRevocationStore
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AccountDependencies encapsulates collaborators for the account service.
type AccountDependencies struct {
	UserRepo repository.UserRepository
	RoleRepo repository.RoleRepository
	Revoker  TokenRevocationStore
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, deps AccountDependencies) *AccountService {
	return &AccountService{
		users:      deps.UserRepo,
		roles:      deps.RoleRepo,
		revoker:    deps.Revoker,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// LoginResult carries everything the login endpoint reports.
type LoginResult struct {
	User          *domain.User
	Token         string
	ExpiresAt     time.Time
	EffectiveRole string
}

// Register creates a new account with the default "user" role. No token is
// issued; the caller must log in separately.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	missing := map[string]any{}
	if username == "" {
		missing["username"] = "required"
	}
	if email == "" {
		missing["email"] = "required"
	}
	if password == "" {
		missing["password"] = "required"
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("username, email, and password are required", missing)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		SecurityStamp: uuid.NewString(),
		Active:        true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	userRole, err := s.roles.GetByName(ctx, domain.RoleUser)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.users.AssignRole(ctx, user.ID, userRole.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	user.Roles = []domain.Role{*userRole}
	return user, nil
}

// Login authenticates an account and issues an auth token bound to the user's
// security stamp.
func (s *AccountService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password are required", nil)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid username or password")
		}
		return nil, apperrors.MapError(err)
	}
	if !user.Active {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid username or password")
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(user.ID, user.SecurityStamp)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{
		User:          user,
		Token:         token,
		ExpiresAt:     expiresAt,
		EffectiveRole: user.EffectiveRole(),
	}, nil
}

// Logout puts the presented token on the denylist until it would have expired
// anyway. Idempotent, and a no-op when no revocation store is available.
func (s *AccountService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.revoker == nil || claims == nil {
		return nil
	}
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		// Revocation is best-effort; the token still dies at its natural
		// expiry.
		return nil
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AccountService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
