package content

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"carta-backend/internal/apperr"
	"carta-backend/internal/auth"
	"carta-backend/internal/httpx"
	"carta-backend/internal/models"
)

// listByRestaurant serves GET /<entity>/restaurant/:restaurantId.
func listByRestaurant[T any](guard *auth.Guard, fetch func(c *fiber.Ctx, restaurantID string) ([]T, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		restaurantID := c.Params("restaurantId")
		if err := guard.CheckTenant(c, restaurantID); err != nil {
			return err
		}
		items, err := fetch(c, restaurantID)
		if err != nil {
			return err
		}
		return c.JSON(items)
	}
}

// ----------------------------------------
// DISHES
// ----------------------------------------

// POST /api/dishes
func CreateDishHandler(svc *Service, guard *auth.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body DishInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		restaurantID, err := guard.ResolveRestaurantID(c, body.RestaurantID)
		if err != nil {
			return err
		}
		body.RestaurantID = restaurantID

		dish, err := svc.CreateDish(c.UserContext(), auth.PrincipalFrom(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(dish)
	}
}

// GET /api/dishes/restaurant/:restaurantId
func ListDishesHandler(svc *Service, guard *auth.Guard) fiber.Handler {
	return listByRestaurant(guard, func(c *fiber.Ctx, id string) ([]models.Dish, error) {
		return svc.ListDishes(c.UserContext(), id)
	})
}

// GET /api/dishes/:id
func GetDishHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dish, err := svc.GetDish(c.UserContext(), auth.PrincipalFrom(c), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(dish)
	}
}

// PUT /api/dishes/:id
func UpdateDishHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body DishUpdate
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		dish, err := svc.UpdateDish(c.UserContext(), auth.PrincipalFrom(c), c.Params("id"), body)
		if err != nil {
			return err
		}
		return c.JSON(dish)
	}
}

// DELETE /api/dishes/:id
func DeleteDishHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteDish(c.UserContext(), auth.PrincipalFrom(c), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PATCH /api/dishes/:id/toggle
func ToggleDishHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dish, err := svc.ToggleDish(c.UserContext(), auth.PrincipalFrom(c), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(dish)
	}
}

// POST /api/dishes/import (multipart: restaurantId, file)
func ImportDishesHandler(svc *Service, guard *auth.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		restaurantID, err := guard.ResolveRestaurantID(c, c.FormValue("restaurantId"))
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return apperr.Validation("file is required")
		}
		if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".xlsx") {
			return apperr.Validation("only .xlsx files are supported")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return apperr.Validation("file could not be opened")
		}
		defer file.Close()

		result, err := svc.ImportDishes(c.UserContext(), auth.PrincipalFrom(c), restaurantID, file)
		if err != nil {
			return err
		}
		return c.JSON(result)
	}
}

// ----------------------------------------
// SPECIALS
// ----------------------------------------

// POST /api/specials
func CreateSpecialHandler(svc *Service, guard *auth.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SpecialInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		restaurantID, err := guard.ResolveRestaurantID(c, body.RestaurantID)
		if err != nil {
			return err
		}
		body.RestaurantID = restaurantID

		special, err := svc.CreateSpecial(c.UserContext(), auth.PrincipalFrom(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(special)
	}
}

// GET /api/specials/restaurant/:restaurantId
func ListSpecialsHandler(svc *Service, guard *auth.Guard) fiber.Handler {
	return listByRestaurant(guard, func(c *fiber.Ctx, id string) ([]models.Special, error) {
		return svc.ListSpecials(c.UserContext(), id)
	})
}

// GET /api/specials/:id
func GetSpecialHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		special, err := svc.GetSpecial(c.UserContext(), auth.PrincipalFrom(c), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(special)
	}
}

// PUT /api/specials/:id
func UpdateSpecialHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SpecialUpdate
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		special, err := svc.UpdateSpecial(c.UserContext(), auth.PrincipalFrom(c), c.Params("id"), body)
		if err != nil {
			return err
		}
		return c.JSON(special)
	}
}

// DELETE /api/specials/:id
func DeleteSpecialHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteSpecial(c.UserContext(), auth.PrincipalFrom(c), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PATCH /api/specials/:id/toggle
func ToggleSpecialHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		special, err := svc.ToggleSpecial(c.UserContext(), auth.PrincipalFrom(c), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(special)
	}
}

// ----------------------------------------
// MENU CATEGORIES
// ----------------------------------------

// POST /api/menu-categories
func CreateMenuCategoryHandler(svc *Service, guard *auth.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body MenuCategoryInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		restaurantID, err := guard.ResolveRestaurantID(c, body.RestaurantID)
		if err != nil {
			return err
		}
		body.RestaurantID = restaurantID

		category, err := svc.CreateMenuCategory(c.UserContext(), auth.PrincipalFrom(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(category)
	}
}

// GET /api/menu-categories/restaurant/:restaurantId
func ListMenuCategoriesHandler(svc *Service, guard *auth.Guard) fiber.Handler {
	return listByRestaurant(guard, func(c *fiber.Ctx, id string) ([]models.MenuCategory, error) {
		return svc.ListMenuCategories(c.UserContext(), id)
	})
}

// GET /api/menu-categories/:id
func GetMenuCategoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := svc.GetMenuCategory(c.UserContext(), auth.PrincipalFrom(c), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(category)
	}
}

// PUT /api/menu-categories/:id
func UpdateMenuCategoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body MenuCategoryUpdate
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		category, err := svc.UpdateMenuCategory(c.UserContext(), auth.PrincipalFrom(c), c.Params("id"), body)
		if err != nil {
			return err
		}
		return c.JSON(category)
	}
}

// DELETE /api/menu-categories/:id
func DeleteMenuCategoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteMenuCategory(c.UserContext(), auth.PrincipalFrom(c), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// DAY MENUS
// ----------------------------------------

// POST /api/day-menus
func CreateDayMenuHandler(svc *Service, guard *auth.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body DayMenuInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		restaurantID, err := guard.ResolveRestaurantID(c, body.RestaurantID)
		if err != nil {
			return err
		}
		body.RestaurantID = restaurantID

		dayMenu, err := svc.CreateDayMenu(c.UserContext(), auth.PrincipalFrom(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(dayMenu)
	}
}

// GET /api/day-menus/restaurant/:restaurantId
func ListDayMenusHandler(svc *Service, guard *auth.Guard) fiber.Handler {
	return listByRestaurant(guard, func(c *fiber.Ctx, id string) ([]models.DayMenu, error) {
		return svc.ListDayMenus(c.UserContext(), id)
	})
}

// GET /api/day-menus/:id
func GetDayMenuHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dayMenu, err := svc.GetDayMenu(c.UserContext(), auth.PrincipalFrom(c), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(dayMenu)
	}
}

// PUT /api/day-menus/:id
func UpdateDayMenuHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body DayMenuUpdate
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		dayMenu, err := svc.UpdateDayMenu(c.UserContext(), auth.PrincipalFrom(c), c.Params("id"), body)
		if err != nil {
			return err
		}
		return c.JSON(dayMenu)
	}
}

// DELETE /api/day-menus/:id
func DeleteDayMenuHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteDayMenu(c.UserContext(), auth.PrincipalFrom(c), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
