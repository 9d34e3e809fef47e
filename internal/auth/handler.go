package auth

import (
	"github.com/gofiber/fiber/v2"

	"carta-backend/internal/apperr"
	"carta-backend/internal/httpx"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /api/login
func LoginHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("invalid request body")
		}
		// Missing fields get the same answer as wrong ones.
		if err := httpx.Validate(&body); err != nil {
			return ErrInvalidCredentials
		}

		desc, err := svc.Login(c.UserContext(), body.Email, body.Password)
		if err != nil {
			return err
		}
		return c.JSON(desc)
	}
}

// GET /api/auth/me
func MeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := PrincipalFrom(c)
		if p.UserID == "" {
			return apperr.Unauthorized("no session")
		}

		profile, err := svc.Me(c.UserContext(), p.UserID)
		if err != nil {
			return err
		}
		return c.JSON(profile)
	}
}
