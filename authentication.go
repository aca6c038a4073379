package admin

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/goliatone/go-errors"
)

const sessionLocalsKey = "admin_session"

// SessionFromContext returns the session loaded by the authentication
// middleware, nil when the admin runs without a backend.
func SessionFromContext(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(sessionLocalsKey).(*session.Session)
	return sess
}

func (a *Admin) loginRequired(c *fiber.Ctx) error {
	if a.auth == nil {
		return c.Next()
	}

	sess, err := a.sessions.Get(c)
	if err != nil {
		return a.ErrorHandler(c, errors.Wrap(err, errors.CategoryInternal, "unable to load session"))
	}

	ok, err := a.auth.Authenticate(c, sess)
	if errors.Is(err, ErrResponseSent) {
		return nil
	}
	if err != nil {
		a.logger.Warn("authenticate failed", "path", c.Path(), "error", err)
		ok = false
	}

	if !ok {
		if a.config.Debug {
			a.logger.Debug("unauthenticated admin request", "path", c.OriginalURL())
		}
		return c.Redirect(a.loginURL(c.OriginalURL()), fiber.StatusFound)
	}

	c.Locals(sessionLocalsKey, sess)
	return c.Next()
}

func (a *Admin) loginURL(next string) string {
	u := a.url("/login")
	if next == "" || !a.isAdminPath(next) {
		return u
	}
	return u + "?next=" + url.QueryEscape(next)
}

func (a *Admin) isAdminPath(p string) bool {
	if strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return false
	}
	return p == a.config.BaseURL || strings.HasPrefix(p, a.config.BaseURL+"/")
}

// nextURL only follows redirects that stay under the mount path
func (a *Admin) nextURL(next string) string {
	if next != "" && a.isAdminPath(next) && !strings.HasPrefix(next, a.url("/login")) {
		return next
	}
	return a.url("/")
}

func (a *Admin) loginShow(c *fiber.Ctx) error {
	return a.templates.Render(c, "admin/login.html", map[string]any{
		"next": c.Query("next"),
	})
}

func (a *Admin) loginPost(c *fiber.Ctx) error {
	sess, err := a.sessions.Get(c)
	if err != nil {
		return a.ErrorHandler(c, errors.Wrap(err, errors.CategoryInternal, "unable to load session"))
	}

	ok, err := a.auth.Login(c, sess)
	if errors.Is(err, ErrResponseSent) {
		return nil
	}

	if err != nil {
		if statusFromError(err) >= http.StatusInternalServerError {
			return a.ErrorHandler(c, err)
		}
		a.logger.Debug("login rejected", "error", err)
		ok = false
	}

	if !ok {
		return a.templates.RenderStatus(c, fiber.StatusBadRequest, "admin/login.html", map[string]any{
			"next":  c.FormValue("next"),
			"error": ErrInvalidCredentials.Message,
		})
	}

	if !sess.Fresh() {
		if err := sess.Regenerate(); err != nil {
			return a.ErrorHandler(c, errors.Wrap(err, errors.CategoryInternal, "unable to regenerate session"))
		}
	}

	if err := sess.Save(); err != nil {
		return a.ErrorHandler(c, errors.Wrap(err, errors.CategoryInternal, "unable to save session"))
	}

	a.logger.Info("admin login", "ip", c.IP())

	return c.Redirect(a.nextURL(c.FormValue("next")), fiber.StatusFound)
}

func (a *Admin) logout(c *fiber.Ctx) error {
	sess, err := a.sessions.Get(c)
	if err != nil {
		return a.ErrorHandler(c, errors.Wrap(err, errors.CategoryInternal, "unable to load session"))
	}

	if _, err := a.auth.Logout(c, sess); err != nil {
		if errors.Is(err, ErrResponseSent) {
			return nil
		}
		a.logger.Warn("logout backend error", "error", err)
	}

	if err := sess.Destroy(); err != nil {
		return a.ErrorHandler(c, errors.Wrap(err, errors.CategoryInternal, "unable to destroy session"))
	}

	return c.Redirect(a.url("/login"), fiber.StatusFound)
}
