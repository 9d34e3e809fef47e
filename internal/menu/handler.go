package menu

import "github.com/gofiber/fiber/v2"

// GET /api/public/menu/:slug
func PublicMenuHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := svc.PublicMenu(c.UserContext(), c.Params("slug"))
		if err != nil {
			return err
		}
		return c.JSON(view)
	}
}
