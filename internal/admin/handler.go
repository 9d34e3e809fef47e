package admin

import (
	"github.com/gofiber/fiber/v2"

	"carta-backend/internal/auth"
	"carta-backend/internal/httpx"
	"carta-backend/internal/onboarding"
)

// ----------------------------------------
// RESTAURANTS
// ----------------------------------------

// POST /api/restaurants
func CreateRestaurantHandler(svc *onboarding.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body onboarding.RestaurantInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		restaurant, err := svc.CreateRestaurant(c.UserContext(), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(restaurant)
	}
}

// GET /api/restaurants
func ListRestaurantsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		restaurants, err := svc.ListRestaurants(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(restaurants)
	}
}

// GET /api/restaurants/:id
func GetRestaurantHandler(svc *Service, guard *auth.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := guard.CheckTenant(c, id); err != nil {
			return err
		}

		restaurant, err := svc.GetRestaurant(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(restaurant)
	}
}

// PUT /api/restaurants/:id
// Super admins edit any restaurant, restaurant admins only their own.
func UpdateRestaurantHandler(svc *Service, guard *auth.Guard) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := guard.CheckTenant(c, id); err != nil {
			return err
		}

		var body UpdateRestaurantRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		restaurant, err := svc.UpdateRestaurant(c.UserContext(), id, body)
		if err != nil {
			return err
		}
		return c.JSON(restaurant)
	}
}

// ----------------------------------------
// USERS
// ----------------------------------------

// POST /api/users
func CreateUserHandler(svc *onboarding.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body onboarding.UserInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		user, err := svc.CreateUser(c.UserContext(), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// GET /api/users?restaurantId=...
func ListUsersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := svc.ListUsers(c.UserContext(), c.Query("restaurantId"))
		if err != nil {
			return err
		}
		return c.JSON(users)
	}
}
