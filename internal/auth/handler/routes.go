package handler

import (
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/domain"
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *AuthHandler, p *PageHandler, m *Middleware) {
	app.Get("/", p.Home)
	app.Get("/info", p.Info)

	app.Get("/login", m.RedirectIfAuthenticated, h.GetLogin)
	app.Post("/login", h.PostLogin)
	app.Get("/register", m.RedirectIfAuthenticated, h.GetRegister)
	app.Post("/register", h.PostRegister)

	app.Get("/logout", m.RequireAuthenticated, h.Logout)
	app.Post("/logout", m.RequireAuthenticated, h.Logout)

	app.Get("/changepassword", m.RequireAuthenticated, h.GetChangePassword)
	app.Post("/changepassword", m.RequireAuthenticated, h.PostChangePassword)
	app.Post("/changepassword/recovery", m.RequireAuthenticated, h.PostRecoveryChangePassword)
	app.Post("/securityquestion", m.RequireAuthenticated, h.PostSecurityQuestion)

	// Admin-only views
	admin := app.Group("/star_admin", m.RequireRole(domain.RoleAdmin))
	admin.Get("/", p.StarAdmin)
	admin.Get("/*", p.StarAdmin)

	app.Get("/star_sentinel", m.RequireRole(domain.RoleModerator), p.StarSentinel)
	app.Get("/user_dashboard", m.RequireAuthenticated, p.UserDashboard)
	app.Get("/user_profile", m.RequireAuthenticated, p.UserProfile)

	app.Use(p.NotFound)
}
