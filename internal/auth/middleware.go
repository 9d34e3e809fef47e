package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"carta-backend/internal/apperr"
	"carta-backend/internal/config"
	"carta-backend/internal/models"
)

const (
	CtxUserIDKey       = "user_id"
	CtxUserRoleKey     = "user_role"
	CtxRestaurantIDKey = "restaurant_id"
)

// Principal is the caller as established by a session token. It is empty in
// descriptor session mode.
type Principal struct {
	UserID       string
	Role         models.UserRole
	RestaurantID *string
}

// CanAccess reports whether the principal may touch restaurantID's data. An
// empty principal is unrestricted.
func (p Principal) CanAccess(restaurantID string) bool {
	if p.Role != models.RoleRestaurantAdmin {
		return true
	}
	return p.RestaurantID != nil && *p.RestaurantID == restaurantID
}

// PrincipalFrom reads what Authenticate stored in the request locals.
func PrincipalFrom(c *fiber.Ctx) Principal {
	var p Principal
	p.UserID, _ = c.Locals(CtxUserIDKey).(string)
	p.Role, _ = c.Locals(CtxUserRoleKey).(models.UserRole)
	p.RestaurantID, _ = c.Locals(CtxRestaurantIDKey).(*string)
	return p
}

// Guard enforces sessions in jwt mode. In descriptor mode every check passes
// and clients are trusted to present the right restaurantId.
type Guard struct {
	cfg config.Config
	now func() time.Time
}

func NewGuard(cfg config.Config, now func() time.Time) *Guard {
	if now == nil {
		now = time.Now
	}
	return &Guard{cfg: cfg, now: now}
}

func (g *Guard) Enforcing() bool {
	return g.cfg.SessionMode == config.SessionJWT
}

// Authenticate requires a valid bearer token.
func (g *Guard) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !g.Enforcing() {
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperr.Unauthorized("missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return apperr.Unauthorized("authorization header must be 'Bearer <token>'")
		}

		claims, err := ParseToken(g.cfg.JWTSecret, strings.TrimSpace(parts[1]), g.now)
		if err != nil {
			return apperr.Unauthorized("invalid or expired token")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxRestaurantIDKey, claims.RestaurantID)

		return c.Next()
	}
}

// RequireRole must run after Authenticate.
func (g *Guard) RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !g.Enforcing() {
			return c.Next()
		}

		role := PrincipalFrom(c).Role
		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return apperr.Forbidden("you are not allowed to do this")
	}
}

// CheckTenant rejects a restaurant admin touching another tenant.
func (g *Guard) CheckTenant(c *fiber.Ctx, restaurantID string) error {
	if !g.Enforcing() {
		return nil
	}
	if !PrincipalFrom(c).CanAccess(restaurantID) {
		return apperr.Forbidden("this restaurant belongs to another tenant")
	}
	return nil
}

// ResolveRestaurantID picks the restaurant a request acts on. Restaurant
// admins default to their own; everyone else must name one.
func (g *Guard) ResolveRestaurantID(c *fiber.Ctx, requested string) (string, error) {
	requested = strings.TrimSpace(requested)

	if g.Enforcing() {
		p := PrincipalFrom(c)
		if p.Role == models.RoleRestaurantAdmin {
			if p.RestaurantID == nil {
				return "", apperr.Forbidden("no restaurant linked to this account")
			}
			if requested == "" {
				return *p.RestaurantID, nil
			}
			if requested != *p.RestaurantID {
				return "", apperr.Forbidden("this restaurant belongs to another tenant")
			}
			return requested, nil
		}
	}

	if requested == "" {
		return "", apperr.Validation("restaurantId is required")
	}
	return requested, nil
}
