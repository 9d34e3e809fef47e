// Package server assembles the HTTP application.
package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"carta-backend/internal/admin"
	"carta-backend/internal/audit"
	"carta-backend/internal/auth"
	"carta-backend/internal/config"
	"carta-backend/internal/content"
	"carta-backend/internal/httpx"
	"carta-backend/internal/mail"
	"carta-backend/internal/menu"
	"carta-backend/internal/models"
	"carta-backend/internal/onboarding"
)

type Deps struct {
	Config config.Config
	DB     *gorm.DB
	Logger *zap.Logger
	Mailer mail.Sender

	// Now defaults to time.Now.
	Now func() time.Time

	// Extra onboarding options, used by tests to lower the bcrypt cost.
	OnboardingOptions []onboarding.Option
}

func New(d Deps) *fiber.App {
	if d.Now == nil {
		d.Now = time.Now
	}
	cfg := d.Config

	app := fiber.New(fiber.Config{
		AppName:      "carta-backend",
		ErrorHandler: httpx.ErrorHandler(d.Logger),
		BodyLimit:    10 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpx.RequestLogger(d.Logger))

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	onboardingOpts := append([]onboarding.Option{onboarding.WithClock(d.Now)}, d.OnboardingOptions...)
	onboardingSvc := onboarding.NewService(d.DB, d.Mailer, cfg, d.Logger, onboardingOpts...)
	authSvc := auth.NewService(d.DB, cfg, d.Logger, d.Now)
	menuSvc := menu.NewService(d.DB, d.Now)
	contentSvc := content.NewService(d.DB, d.Logger)
	adminSvc := admin.NewService(d.DB, d.Logger)
	auditSvc := audit.NewService(d.DB)
	guard := auth.NewGuard(cfg, d.Now)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Public
	api.Post("/public-register", onboarding.PublicRegisterHandler(onboardingSvc))
	api.Post("/register", onboarding.RegisterHandler(onboardingSvc))
	api.Post("/verify", onboarding.VerifyHandler(onboardingSvc))
	api.Post("/verify/resend", onboarding.ResendHandler(onboardingSvc))
	api.Post("/login", auth.LoginHandler(authSvc))
	api.Post("/auth/register-super-admin", onboarding.RegisterSuperAdminHandler(onboardingSvc))
	api.Get("/public/menu/:slug", menu.PublicMenuHandler(menuSvc))

	// Everything below needs a session in jwt mode.
	protected := api.Group("", guard.Authenticate())
	superAdmin := guard.RequireRole(models.RoleSuperAdmin)
	anyAdmin := guard.RequireRole(models.RoleSuperAdmin, models.RoleRestaurantAdmin)

	if guard.Enforcing() {
		protected.Get("/auth/me", auth.MeHandler(authSvc))
	}

	// Tenants and users
	protected.Post("/restaurants", superAdmin, admin.CreateRestaurantHandler(onboardingSvc))
	protected.Get("/restaurants", superAdmin, admin.ListRestaurantsHandler(adminSvc))
	protected.Get("/restaurants/:id", anyAdmin, admin.GetRestaurantHandler(adminSvc, guard))
	protected.Put("/restaurants/:id", anyAdmin, admin.UpdateRestaurantHandler(adminSvc, guard))
	protected.Post("/users", superAdmin, admin.CreateUserHandler(onboardingSvc))
	protected.Get("/users", superAdmin, admin.ListUsersHandler(adminSvc))

	// Dishes
	dishes := protected.Group("/dishes", anyAdmin)
	dishes.Post("/", content.CreateDishHandler(contentSvc, guard))
	dishes.Post("/import", content.ImportDishesHandler(contentSvc, guard))
	dishes.Get("/restaurant/:restaurantId", content.ListDishesHandler(contentSvc, guard))
	dishes.Get("/:id", content.GetDishHandler(contentSvc))
	dishes.Put("/:id", content.UpdateDishHandler(contentSvc))
	dishes.Delete("/:id", content.DeleteDishHandler(contentSvc))
	dishes.Patch("/:id/toggle", content.ToggleDishHandler(contentSvc))

	// Specials
	specials := protected.Group("/specials", anyAdmin)
	specials.Post("/", content.CreateSpecialHandler(contentSvc, guard))
	specials.Get("/restaurant/:restaurantId", content.ListSpecialsHandler(contentSvc, guard))
	specials.Get("/:id", content.GetSpecialHandler(contentSvc))
	specials.Put("/:id", content.UpdateSpecialHandler(contentSvc))
	specials.Delete("/:id", content.DeleteSpecialHandler(contentSvc))
	specials.Patch("/:id/toggle", content.ToggleSpecialHandler(contentSvc))

	// Menu categories
	categories := protected.Group("/menu-categories", anyAdmin)
	categories.Post("/", content.CreateMenuCategoryHandler(contentSvc, guard))
	categories.Get("/restaurant/:restaurantId", content.ListMenuCategoriesHandler(contentSvc, guard))
	categories.Get("/:id", content.GetMenuCategoryHandler(contentSvc))
	categories.Put("/:id", content.UpdateMenuCategoryHandler(contentSvc))
	categories.Delete("/:id", content.DeleteMenuCategoryHandler(contentSvc))

	// Day menus
	dayMenus := protected.Group("/day-menus", anyAdmin)
	dayMenus.Post("/", content.CreateDayMenuHandler(contentSvc, guard))
	dayMenus.Get("/restaurant/:restaurantId", content.ListDayMenusHandler(contentSvc, guard))
	dayMenus.Get("/:id", content.GetDayMenuHandler(contentSvc))
	dayMenus.Put("/:id", content.UpdateDayMenuHandler(contentSvc))
	dayMenus.Delete("/:id", content.DeleteDayMenuHandler(contentSvc))

	// Audit log
	protected.Get("/audit-logs", anyAdmin, audit.ListAuditLogsHandler(auditSvc, guard))

	return app
}
