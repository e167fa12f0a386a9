package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/shipment-service/internal/domain"
	"github.com/spec-kit/shipment-service/internal/repository"
	apperrors "github.com/spec-kit/shipment-service/pkg/util"
)

const principalKey = "auth_principal"

// HeaderAuthToken is the primary token transport used by the frontend.
const HeaderAuthToken = "Authentication-Token"

// Principal represents the authenticated caller for the duration of one
// request. Handlers receive it explicitly; there is no cross-request state.
type Principal struct {
	User   *domain.User
	Claims *Claims
}

// HasRole reports whether the principal holds the named role.
func (p *Principal) HasRole(name string) bool {
	return p.User != nil && p.User.HasRole(name)
}

// IsAdmin is a convenience for the admin role check.
func (p *Principal) IsAdmin() bool {
	return p.HasRole(domain.RoleAdmin)
}

// TokenRevoker checks whether an issued token has been revoked (logout).
type TokenRevoker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware validates auth tokens and loads principals.
type AuthMiddleware struct {
	tokens  *TokenManager
	users   repository.UserRepository
	revoker TokenRevoker
}

// NewAuthMiddleware constructs middleware. The revoker may be nil, in which
// case logout falls back to documented no-op behavior.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, revoker TokenRevoker) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, revoker: revoker}
}

// Handle enforces authentication for protected routes. Every failure yields
// 401 before any handler logic executes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	tokenStr := extractToken(c)
	if tokenStr == "" {
		return apperrors.NewUnauthorized("missing authentication token")
	}

	claims, err := m.tokens.ParseToken(tokenStr)
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired token")
	}

	if m.revoker != nil {
		// Revocation is best-effort: a denylist read failure must not take
		// every authenticated endpoint down with it.
		if revoked, err := m.revoker.IsRevoked(c.Context(), claims.ID); err == nil && revoked {
			return apperrors.NewUnauthorized("token revoked")
		}
	}

	userID, err := claims.UserID()
	if err != nil {
		return apperrors.NewUnauthorized("invalid token subject")
	}

	user, err := m.users.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if !user.Active {
		return apperrors.NewUnauthorized("account disabled")
	}
	if user.SecurityStamp != claims.SecurityStamp {
		return apperrors.NewUnauthorized("token no longer valid")
	}

	c.Locals(principalKey, &Principal{User: user, Claims: claims})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

func extractToken(c *fiber.Ctx) string {
	if token := c.Get(HeaderAuthToken); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
