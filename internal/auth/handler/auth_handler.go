package handler

import (
	"errors"
	"net/url"
	"strings"

	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/domain"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/dto"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/service"
	apperrors "github.com/aaronnicolas/CSSECDV-Machine-Project/internal/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

type AuthHandler struct {
	svc   *service.AuthService
	store *session.Store
}

func NewAuthHandler(svc *service.AuthService, store *session.Store) *AuthHandler {
	return &AuthHandler{svc: svc, store: store}
}

func (h *AuthHandler) GetLogin(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{
		"Feedback": c.Query("feedback"),
		"Message":  c.Query("message"),
	}, "layouts/logreg")
}

func (h *AuthHandler) PostLogin(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).Render("login", fiber.Map{
			"Error": "Invalid input",
		}, "layouts/logreg")
	}

	result, err := h.svc.Login(c.UserContext(), input, clientInfo(c))
	if err != nil {
		var locked *apperrors.LockedError
		switch {
		case errors.Is(err, apperrors.ErrMissingFields):
			return c.Status(fiber.StatusBadRequest).Render("login", fiber.Map{
				"Error": "Username and password are required!",
			}, "layouts/logreg")
		case errors.As(err, &locked):
			return c.Status(fiber.StatusForbidden).Render("login", fiber.Map{
				"Error": locked.Error(),
			}, "layouts/logreg")
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			// Never reveal whether the username existed.
			return c.Redirect("/login?feedback=" + url.QueryEscape("Incorrect username and/or password!"))
		default:
			return err
		}
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(sessionAccountKey, result.AccountID)
	if err := sess.Save(); err != nil {
		return err
	}

	return c.Redirect("/?message=" + url.QueryEscape(result.LastLoginSummary))
}

func (h *AuthHandler) GetRegister(c *fiber.Ctx) error {
	return c.Render("register", fiber.Map{
		"Message":   c.Query("message"),
		"Questions": domain.SecurityQuestions,
	}, "layouts/logreg")
}

func (h *AuthHandler) PostRegister(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return h.renderRegisterError(c, "Invalid input")
	}

	if _, err := h.svc.Register(c.UserContext(), input); err != nil {
		var policy *apperrors.PolicyError
		switch {
		case errors.Is(err, apperrors.ErrMissingFields):
			return h.renderRegisterError(c, "All fields are required!")
		case errors.Is(err, apperrors.ErrPasswordMismatch):
			return h.renderRegisterError(c, "Passwords do not match!")
		case errors.As(err, &policy):
			return h.renderRegisterError(c, strings.Join(policy.Violations, " "))
		case errors.Is(err, apperrors.ErrAccountExists):
			return h.renderRegisterError(c, "Username or email is already in use!")
		default:
			return err
		}
	}

	return c.Redirect("/login?message=" + url.QueryEscape("Account created! Please log in."))
}

func (h *AuthHandler) renderRegisterError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).Render("register", fiber.Map{
		"Error":     msg,
		"Questions": domain.SecurityQuestions,
	}, "layouts/logreg")
}

// Logout tears the session down entirely. Teardown errors go to the error
// handler rather than being swallowed.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if acc := CurrentAccount(c); acc != nil {
		h.svc.RecordLogout(c.UserContext(), acc.ID)
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Destroy(); err != nil {
		return err
	}

	return c.Redirect("/?message=" + url.QueryEscape("You have been logged out."))
}

func (h *AuthHandler) GetChangePassword(c *fiber.Ctx) error {
	acc := CurrentAccount(c)
	return c.Render("changepassword", fiber.Map{
		"Question1": acc.SecurityQuestion1,
		"Question2": acc.SecurityQuestion2,
	})
}

// PostChangePassword is the current-password path of the change flow.
func (h *AuthHandler) PostChangePassword(c *fiber.Ctx) error {
	var input dto.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return h.renderChangeError(c, fiber.StatusBadRequest, "Invalid input")
	}

	acc := CurrentAccount(c)
	err := h.svc.ChangePassword(c.UserContext(), acc.ID, input, service.ReconfirmCurrentPassword)
	if err != nil {
		return h.mapChangeError(c, err)
	}

	return h.finishChange(c)
}

// PostSecurityQuestion verifies the account's security answers and, on
// success, re-renders the change form armed with a recovery grant.
func (h *AuthHandler) PostSecurityQuestion(c *fiber.Ctx) error {
	var input dto.SecurityAnswersInput
	if err := c.BodyParser(&input); err != nil {
		return h.renderChangeError(c, fiber.StatusBadRequest, "Invalid input")
	}

	acc := CurrentAccount(c)
	grant, err := h.svc.VerifySecurityAnswers(c.UserContext(), acc.ID, input)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrMissingFields):
			return h.renderChangeError(c, fiber.StatusBadRequest, "All fields are required!")
		case errors.Is(err, apperrors.ErrSecurityAnswers):
			return h.renderChangeError(c, fiber.StatusForbidden, "Security answers do not match!")
		default:
			return err
		}
	}

	return c.Render("changepassword", fiber.Map{
		"Question1":     acc.SecurityQuestion1,
		"Question2":     acc.SecurityQuestion2,
		"RecoveryToken": grant,
	})
}

// PostRecoveryChangePassword is the security-question path: the grant issued
// by PostSecurityQuestion stands in for the current password.
func (h *AuthHandler) PostRecoveryChangePassword(c *fiber.Ctx) error {
	var input dto.RecoveryChangeInput
	if err := c.BodyParser(&input); err != nil {
		return h.renderChangeError(c, fiber.StatusBadRequest, "Invalid input")
	}

	acc := CurrentAccount(c)
	if err := h.svc.ChangePasswordWithGrant(c.UserContext(), acc.ID, input); err != nil {
		if errors.Is(err, apperrors.ErrRecoveryGrant) {
			return h.renderChangeError(c, fiber.StatusForbidden, "Recovery grant is invalid or has expired. Verify your security answers again.")
		}
		return h.mapChangeError(c, err)
	}

	return h.finishChange(c)
}

// finishChange terminates the session after a successful password change,
// forcing a fresh login.
func (h *AuthHandler) finishChange(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Destroy(); err != nil {
		return err
	}
	return c.Redirect("/login?message=" + url.QueryEscape("Password changed. Please log in again."))
}

func (h *AuthHandler) mapChangeError(c *fiber.Ctx, err error) error {
	var (
		age    *apperrors.PasswordAgeError
		policy *apperrors.PolicyError
	)
	switch {
	case errors.Is(err, apperrors.ErrMissingFields):
		return h.renderChangeError(c, fiber.StatusBadRequest, "All fields are required!")
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return h.renderChangeError(c, fiber.StatusBadRequest, "Current password is incorrect!")
	case errors.As(err, &age):
		return h.renderChangeError(c, fiber.StatusBadRequest, age.Error())
	case errors.Is(err, apperrors.ErrPasswordMismatch):
		return h.renderChangeError(c, fiber.StatusBadRequest, "Passwords do not match!")
	case errors.As(err, &policy):
		return h.renderChangeError(c, fiber.StatusBadRequest, strings.Join(policy.Violations, " "))
	case errors.Is(err, apperrors.ErrPasswordReused):
		return h.renderChangeError(c, fiber.StatusBadRequest, "New password must differ from your current and previous passwords!")
	default:
		return err
	}
}

func (h *AuthHandler) renderChangeError(c *fiber.Ctx, status int, msg string) error {
	bind := fiber.Map{"Error": msg}
	if acc := CurrentAccount(c); acc != nil {
		bind["Question1"] = acc.SecurityQuestion1
		bind["Question2"] = acc.SecurityQuestion2
	}
	return c.Status(status).Render("changepassword", bind)
}

// clientInfo captures the request metadata the auth flow records: the first
// forwarded-for hop when present, the direct peer otherwise.
func clientInfo(c *fiber.Ctx) domain.ClientInfo {
	ip := c.Get(fiber.HeaderXForwardedFor)
	if ip != "" {
		ip = strings.TrimSpace(strings.Split(ip, ",")[0])
	} else {
		ip = c.IP()
	}

	return domain.ClientInfo{
		IPAddress: ip,
		UserAgent: string(c.Request().Header.UserAgent()),
	}
}
