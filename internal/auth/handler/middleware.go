package handler

import (
	"net/url"

	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/audit"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	// sessionAccountKey is the only thing the session carries.
	sessionAccountKey = "account_id"
	// accountLocalsKey holds the resolved principal for the request.
	accountLocalsKey = "account"
)

var loginRedirect = "/login?feedback=" + url.QueryEscape("Please log in to access this page")

// Middleware gates routes on session state and role. The principal is
// resolved once and attached to the request locals; handlers never touch the
// session directly for identity.
type Middleware struct {
	store   *session.Store
	repo    domain.AccountRepository
	auditor domain.AuditRecorder
}

func NewMiddleware(store *session.Store, repo domain.AccountRepository, auditor domain.AuditRecorder) *Middleware {
	return &Middleware{store: store, repo: repo, auditor: auditor}
}

// resolve loads the current principal. hadSession reports whether the
// session referenced an account at all; a true hadSession with a nil account
// means the account vanished mid-session.
func (m *Middleware) resolve(c *fiber.Ctx) (acc *domain.Account, hadSession bool, err error) {
	sess, err := m.store.Get(c)
	if err != nil {
		return nil, false, err
	}

	id, ok := sess.Get(sessionAccountKey).(string)
	if !ok || id == "" {
		return nil, false, nil
	}

	acc, err = m.repo.FindByID(c.UserContext(), id)
	if err != nil {
		return nil, true, err
	}
	return acc, true, nil
}

// RequireAuthenticated admits requests with a valid session, redirecting
// everyone else to the login form.
func (m *Middleware) RequireAuthenticated(c *fiber.Ctx) error {
	acc, hadSession, err := m.resolve(c)
	if err != nil {
		return err
	}
	if !hadSession {
		return c.Redirect(loginRedirect)
	}
	if acc == nil {
		return fiber.NewError(fiber.StatusNotFound, "account no longer exists")
	}

	c.Locals(accountLocalsKey, acc)
	return c.Next()
}

// RequireRole admits authenticated principals whose role is at least min.
// Unauthenticated requests go to login; under-privileged ones get the
// access-denied page.
func (m *Middleware) RequireRole(min domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		acc, hadSession, err := m.resolve(c)
		if err != nil {
			return err
		}
		if !hadSession {
			m.auditor.Record(c.UserContext(), audit.EventAccessDenied, "Insufficient permissions", "")
			return c.Redirect(loginRedirect)
		}
		if acc == nil {
			return fiber.NewError(fiber.StatusNotFound, "account no longer exists")
		}
		if !acc.Role.AtLeast(min) {
			m.auditor.Record(c.UserContext(), audit.EventAccessDenied, "Insufficient permissions", acc.ID)
			return c.Status(fiber.StatusForbidden).Render("404", fiber.Map{
				"Title": "Access Denied",
			}, "layouts/error")
		}

		c.Locals(accountLocalsKey, acc)
		return c.Next()
	}
}

// RedirectIfAuthenticated keeps logged-in users off the entry pages.
func (m *Middleware) RedirectIfAuthenticated(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	if id, ok := sess.Get(sessionAccountKey).(string); ok && id != "" {
		return c.Redirect("/")
	}
	return c.Next()
}

// CurrentAccount returns the principal attached by the auth middleware, or
// nil outside a gated route.
func CurrentAccount(c *fiber.Ctx) *domain.Account {
	acc, _ := c.Locals(accountLocalsKey).(*domain.Account)
	return acc
}
