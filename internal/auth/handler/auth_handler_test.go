package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/audit"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/domain"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/handler"
	"github.com/aaronnicolas/CSSECDV-Machine-Project/internal/auth/service"
)

// memRepo is an in-memory AccountRepository for wiring a real app under test.
type memRepo struct {
	accounts map[string]*domain.Account
}

func (r *memRepo) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	for _, acc := range r.accounts {
		if acc.Username == username {
			return acc, nil
		}
	}
	return nil, nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	return r.accounts[id], nil
}

func (r *memRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.Account, error) {
	for _, acc := range r.accounts {
		if acc.Username == username || acc.Email == email {
			return acc, nil
		}
	}
	return nil, nil
}

func (r *memRepo) Create(_ context.Context, acc *domain.Account) error {
	r.accounts[acc.ID] = acc
	return nil
}

func (r *memRepo) Save(_ context.Context, acc *domain.Account) error {
	r.accounts[acc.ID] = acc
	return nil
}

type memAuditor struct {
	events []string
}

func (a *memAuditor) Record(_ context.Context, event, _, _ string) {
	a.events = append(a.events, event)
}

type testApp struct {
	app     *fiber.App
	repo    *memRepo
	auditor *memAuditor
}

func newTestApp(t *testing.T, accounts ...*domain.Account) *testApp {
	t.Helper()

	repo := &memRepo{accounts: make(map[string]*domain.Account)}
	for _, acc := range accounts {
		repo.accounts[acc.ID] = acc
	}
	auditor := &memAuditor{}

	tracker := service.NewTracker(auditor, 5, 15*time.Minute)
	recovery := service.NewRecoveryTokenService("test-secret", 10*time.Minute)
	svc := service.NewAuthService(repo, auditor, tracker, recovery, 24*time.Hour)

	engine := html.New("../../../views", ".html")
	app := fiber.New(fiber.Config{
		Views:       engine,
		ViewsLayout: "layouts/main",
	})
	store := session.New(session.Config{CookieHTTPOnly: true})

	handler.RegisterRoutes(app,
		handler.NewAuthHandler(svc, store),
		handler.NewPageHandler(),
		handler.NewMiddleware(store, repo, auditor))

	return &testApp{app: app, repo: repo, auditor: auditor}
}

func mustSecret(t *testing.T, secret string) (hash, salt string) {
	t.Helper()
	salt, err := service.NewSalt()
	require.NoError(t, err)
	hash, err = service.HashSecret(secret, salt)
	require.NoError(t, err)
	return hash, salt
}

func seedAccount(t *testing.T, role domain.Role) *domain.Account {
	t.Helper()
	acc := &domain.Account{
		ID:                "acc-" + role.String(),
		Username:          role.String(),
		Email:             role.String() + "@example.com",
		Role:              role,
		PasswordChangedAt: time.Now().Add(-48 * time.Hour),
		CreatedAt:         time.Now().Add(-30 * 24 * time.Hour),
		SecurityQuestion1: domain.QuestionFavoriteGame,
		SecurityQuestion2: domain.QuestionFavoriteColor,
	}
	acc.PasswordHash, acc.PasswordSalt = mustSecret(t, "Current-pass1!")
	acc.SecurityAnswerHash1, acc.SecurityAnswerSalt1 = mustSecret(t, "zelda")
	acc.SecurityAnswerHash2, acc.SecurityAnswerSalt2 = mustSecret(t, "blue")
	return acc
}

func (ta *testApp) get(t *testing.T, path string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (ta *testApp) postForm(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// login runs the form login and returns the session cookie.
func (ta *testApp) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	resp := ta.postForm(t, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/?message="))
	require.NotEmpty(t, resp.Cookies())
	return resp.Cookies()[0]
}

func TestPublicPages(t *testing.T) {
	ta := newTestApp(t)

	assert.Equal(t, fiber.StatusOK, ta.get(t, "/").StatusCode)
	assert.Equal(t, fiber.StatusOK, ta.get(t, "/info").StatusCode)
	assert.Equal(t, fiber.StatusOK, ta.get(t, "/login").StatusCode)
	assert.Equal(t, fiber.StatusOK, ta.get(t, "/register").StatusCode)
	assert.Equal(t, fiber.StatusNotFound, ta.get(t, "/no-such-page").StatusCode)
}

func TestGatedPagesRedirectToLogin(t *testing.T) {
	ta := newTestApp(t)

	for _, path := range []string{"/user_dashboard", "/user_profile", "/changepassword", "/logout"} {
		resp := ta.get(t, path)
		assert.Equal(t, fiber.StatusFound, resp.StatusCode, path)
		assert.Contains(t, resp.Header.Get("Location"), "/login?feedback=", path)
	}
}

func TestPostLogin_WrongPassword(t *testing.T) {
	ta := newTestApp(t, seedAccount(t, domain.RoleUser))

	resp := ta.postForm(t, "/login", url.Values{
		"username": {"user"},
		"password": {"wrong"},
	})
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?feedback="+url.QueryEscape("Incorrect username and/or password!"),
		resp.Header.Get("Location"))
}

func TestPostLogin_MissingFields(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.postForm(t, "/login", url.Values{"username": {"user"}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLoginSessionFlow(t *testing.T) {
	ta := newTestApp(t, seedAccount(t, domain.RoleUser))

	cookie := ta.login(t, "user", "Current-pass1!")

	resp := ta.get(t, "/user_dashboard", cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Entry pages bounce an authenticated session back home.
	resp = ta.get(t, "/login", cookie)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp = ta.get(t, "/logout", cookie)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Contains(t, ta.auditor.events, audit.EventLogout)

	resp = ta.get(t, "/user_dashboard", cookie)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/login?feedback=")
}

func TestLockedAccountFeedback(t *testing.T) {
	acc := seedAccount(t, domain.RoleUser)
	until := time.Now().Add(15 * time.Minute)
	acc.Locked = true
	acc.LockedUntil = &until
	ta := newTestApp(t, acc)

	resp := ta.postForm(t, "/login", url.Values{
		"username": {"user"},
		"password": {"Current-pass1!"},
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRoleGates(t *testing.T) {
	ta := newTestApp(t,
		seedAccount(t, domain.RoleUser),
		seedAccount(t, domain.RoleModerator),
		seedAccount(t, domain.RoleAdmin))

	userCookie := ta.login(t, "user", "Current-pass1!")
	modCookie := ta.login(t, "moderator", "Current-pass1!")
	adminCookie := ta.login(t, "admin", "Current-pass1!")

	assert.Equal(t, fiber.StatusForbidden, ta.get(t, "/star_admin", userCookie).StatusCode)
	assert.Equal(t, fiber.StatusForbidden, ta.get(t, "/star_admin", modCookie).StatusCode)
	assert.Equal(t, fiber.StatusOK, ta.get(t, "/star_admin", adminCookie).StatusCode)

	assert.Equal(t, fiber.StatusForbidden, ta.get(t, "/star_sentinel", userCookie).StatusCode)
	assert.Equal(t, fiber.StatusOK, ta.get(t, "/star_sentinel", modCookie).StatusCode)
	assert.Equal(t, fiber.StatusOK, ta.get(t, "/star_sentinel", adminCookie).StatusCode)

	assert.Contains(t, ta.auditor.events, audit.EventAccessDenied)

	// Unauthenticated requests never see the denied page, only login.
	resp := ta.get(t, "/star_admin")
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/login?feedback=")
}

func TestRegisterFlow(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.postForm(t, "/register", url.Values{
		"username":          {"newbie"},
		"email":             {"newbie@example.com"},
		"password":          {"Fresh-start7!"},
		"confirm_password":  {"Fresh-start7!"},
		"security_answer_1": {"zelda"},
		"security_answer_2": {"blue"},
	})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?message="+url.QueryEscape("Account created! Please log in."),
		resp.Header.Get("Location"))
	assert.Len(t, ta.repo.accounts, 1)

	// Weak password comes back to the form, not a redirect.
	resp = ta.postForm(t, "/register", url.Values{
		"username":          {"second"},
		"email":             {"second@example.com"},
		"password":          {"password"},
		"confirm_password":  {"password"},
		"security_answer_1": {"zelda"},
		"security_answer_2": {"blue"},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Len(t, ta.repo.accounts, 1)
}

func TestChangePasswordFlow(t *testing.T) {
	acc := seedAccount(t, domain.RoleUser)
	ta := newTestApp(t, acc)

	cookie := ta.login(t, "user", "Current-pass1!")

	resp := ta.get(t, "/changepassword", cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Wrong current password stays on the form.
	resp = ta.postForm(t, "/changepassword", url.Values{
		"current_password":     {"wrong"},
		"new_password":         {"Next-round2!"},
		"confirm_new_password": {"Next-round2!"},
	}, cookie)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = ta.postForm(t, "/changepassword", url.Values{
		"current_password":     {"Current-pass1!"},
		"new_password":         {"Next-round2!"},
		"confirm_new_password": {"Next-round2!"},
	}, cookie)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?message="+url.QueryEscape("Password changed. Please log in again."),
		resp.Header.Get("Location"))

	// The change tore the session down.
	resp = ta.get(t, "/user_dashboard", cookie)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)

	assert.True(t, service.CompareSecret(acc.PasswordHash, "Next-round2!", acc.PasswordSalt))
}

func TestSecurityQuestionFlow(t *testing.T) {
	acc := seedAccount(t, domain.RoleUser)
	ta := newTestApp(t, acc)

	cookie := ta.login(t, "user", "Current-pass1!")

	// Wrong answers are a 403 back to the form.
	resp := ta.postForm(t, "/securityquestion", url.Values{
		"security_answer_1": {"zelda"},
		"security_answer_2": {"green"},
	}, cookie)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = ta.postForm(t, "/securityquestion", url.Values{
		"security_answer_1": {"zelda"},
		"security_answer_2": {"blue"},
	}, cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, ta.auditor.events, audit.EventSecurityVerified)

	// A bogus grant cannot change the password.
	resp = ta.postForm(t, "/changepassword/recovery", url.Values{
		"grant_token":          {"bogus"},
		"new_password":         {"Next-round2!"},
		"confirm_new_password": {"Next-round2!"},
	}, cookie)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
