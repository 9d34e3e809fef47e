package audit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"carta-backend/internal/apperr"
	"carta-backend/internal/auth"
	"carta-backend/internal/models"
)

// GET /api/audit-logs?restaurantId=...&entityType=dish&entityId=...&userId=...&limit=50
func ListAuditLogsHandler(svc *Service, guard *auth.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := Filter{
			RestaurantID: c.Query("restaurantId"),
			UserID:       c.Query("userId"),
			EntityType:   c.Query("entityType"),
			EntityID:     c.Query("entityId"),
		}

		// Restaurant admins only ever see their own restaurant.
		if guard.Enforcing() && auth.PrincipalFrom(c).Role == models.RoleRestaurantAdmin {
			id, err := guard.ResolveRestaurantID(c, f.RestaurantID)
			if err != nil {
				return err
			}
			f.RestaurantID = id
		}

		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				return apperr.Validation("limit must be a positive integer")
			}
			f.Limit = n
		}

		logs, err := svc.List(c.UserContext(), f)
		if err != nil {
			return err
		}
		return c.JSON(logs)
	}
}
