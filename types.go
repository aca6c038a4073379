package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Logger is the logging contract used across the admin. Arguments after the
// message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// LoggerProvider hands out named loggers
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// AuthenticationBackend gates the admin behind a login. All three methods
// operate on the fiber session bound to the request.
//
// Login inspects the request (usually the login form) and stores whatever
// state it needs in the session. The admin persists the session only when
// Login reports success.
//
// Logout clears backend state. The admin destroys the session afterwards.
//
// Authenticate reports whether the request belongs to a logged in user. A
// backend that wants to answer with its own response writes it on the
// context and returns ErrResponseSent.
type AuthenticationBackend interface {
	Login(c *fiber.Ctx, sess *session.Session) (bool, error)
	Logout(c *fiber.Ctx, sess *session.Session) (bool, error)
	Authenticate(c *fiber.Ctx, sess *session.Session) (bool, error)
}

// View is anything that can be mounted on the admin. Embedding BaseView is
// enough to satisfy it.
type View interface {
	Base() *BaseView
}

// mountable views get a chance to register extra routes and resolve
// metadata once they are attached to an Admin.
type mountable interface {
	mount(a *Admin) error
}
