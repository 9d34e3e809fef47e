package onboarding

import (
	"github.com/gofiber/fiber/v2"

	"carta-backend/internal/httpx"
)

type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type ResendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// POST /api/register
func RegisterHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		ack, err := svc.Register(c.UserContext(), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ack)
	}
}

// POST /api/public-register
func PublicRegisterHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PublicRegisterInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		ack, err := svc.RegisterPublic(c.UserContext(), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ack)
	}
}

// POST /api/verify
func VerifyHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body VerifyRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		if err := svc.Verify(c.UserContext(), body.Email, body.Code); err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"message":  "account verified",
			"verified": true,
		})
	}
}

// POST /api/verify/resend
func ResendHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ResendRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		if err := svc.ResendCode(c.UserContext(), body.Email); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "verification code sent"})
	}
}

// POST /api/auth/register-super-admin
func RegisterSuperAdminHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AccountInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		user, err := svc.RegisterSuperAdmin(c.UserContext(), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}
