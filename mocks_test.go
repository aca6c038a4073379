package admin_test

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/mock"

	admin "github.com/goliatone/go-bunadmin"
)

// MockBackend implements admin.AuthenticationBackend
type MockBackend struct {
	mock.Mock
}

var _ admin.AuthenticationBackend = (*MockBackend)(nil)

func (m *MockBackend) Login(c *fiber.Ctx, sess *session.Session) (bool, error) {
	args := m.Called(c, sess)
	return args.Bool(0), args.Error(1)
}

func (m *MockBackend) Logout(c *fiber.Ctx, sess *session.Session) (bool, error) {
	args := m.Called(c, sess)
	return args.Bool(0), args.Error(1)
}

func (m *MockBackend) Authenticate(c *fiber.Ctx, sess *session.Session) (bool, error) {
	args := m.Called(c, sess)
	return args.Bool(0), args.Error(1)
}

// tokenBackend accepts the username "a" and keeps a token in the session
type tokenBackend struct{}

func (tokenBackend) Login(c *fiber.Ctx, sess *session.Session) (bool, error) {
	if c.FormValue("username") != "a" {
		return false, nil
	}
	sess.Set("token", "amin")
	return true, nil
}

func (tokenBackend) Logout(c *fiber.Ctx, sess *session.Session) (bool, error) {
	sess.Delete("token")
	return true, nil
}

func (tokenBackend) Authenticate(c *fiber.Ctx, sess *session.Session) (bool, error) {
	return sess.Get("token") != nil, nil
}
