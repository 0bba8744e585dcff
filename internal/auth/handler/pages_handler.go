package handler

import (
	"github.com/gofiber/fiber/v2"
)

// PageHandler renders the portal's static-ish views. The interesting logic
// lives in the middleware gating them.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

func (p *PageHandler) Home(c *fiber.Ctx) error {
	return c.Render("home", fiber.Map{
		"Message": c.Query("message"),
	})
}

func (p *PageHandler) Info(c *fiber.Ctx) error {
	return c.Render("info", fiber.Map{})
}

func (p *PageHandler) StarAdmin(c *fiber.Ctx) error {
	acc := CurrentAccount(c)
	return c.Render("star_admin", fiber.Map{
		"Username": acc.Username,
	})
}

func (p *PageHandler) StarSentinel(c *fiber.Ctx) error {
	acc := CurrentAccount(c)
	return c.Render("star_sentinel", fiber.Map{
		"Username": acc.Username,
	})
}

func (p *PageHandler) UserDashboard(c *fiber.Ctx) error {
	acc := CurrentAccount(c)
	return c.Render("user_dashboard", fiber.Map{
		"Username": acc.Username,
	})
}

func (p *PageHandler) UserProfile(c *fiber.Ctx) error {
	acc := CurrentAccount(c)
	return c.Render("user_profile", fiber.Map{
		"Username": acc.Username,
		"Email":    acc.Email,
		"Role":     acc.Role.String(),
		"Last":     acc.Attempts.Last,
		"Previous": acc.Attempts.Previous,
	})
}

func (p *PageHandler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).Render("404", fiber.Map{
		"Title": "Page Not Found",
	}, "layouts/error")
}
