package backend

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	admin "github.com/goliatone/go-bunadmin"
)

// TokenKey is the session key holding the signed token
const TokenKey = "token"

// claimsLocalsKey exposes the validated claims to admin handlers
const claimsLocalsKey = "admin_claims"

// LoginRequest is the login form payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"-"`
}

// Validate will validate the payload
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 200)),
	)
}

// SessionBackend authenticates admin users against the Users store
type SessionBackend struct {
	users  *Users
	tokens *TokenService
	logger admin.Logger
	debug  bool
}

// SessionBackendOption configures a SessionBackend
type SessionBackendOption func(*SessionBackend)

func WithLogger(logger admin.Logger) SessionBackendOption {
	return func(b *SessionBackend) { b.logger = logger }
}

// WithDebug prints login payloads, without the password
func WithDebug(debug bool) SessionBackendOption {
	return func(b *SessionBackend) { b.debug = debug }
}

var _ admin.AuthenticationBackend = (*SessionBackend)(nil)

// NewSessionBackend wires the store and token service into an
// admin.AuthenticationBackend
func NewSessionBackend(users *Users, tokens *TokenService, opts ...SessionBackendOption) *SessionBackend {
	b := &SessionBackend{users: users, tokens: tokens}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = admin.ResolveLogger("admin.backend", nil, b.logger)
	return b
}

func (b *SessionBackend) Login(c *fiber.Ctx, sess *session.Session) (bool, error) {
	payload := new(LoginRequest)
	if err := c.BodyParser(payload); err != nil {
		return false, errors.Wrap(err, errors.CategoryBadInput, "unable to parse login form")
	}

	if b.debug {
		b.logger.Debug("login payload", "payload", print.MaybePrettyJSON(payload))
	}

	if err := payload.Validate(); err != nil {
		return false, errors.Wrap(err, errors.CategoryValidation, "invalid login form")
	}

	user, err := b.users.VerifyIdentity(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) || errors.Is(err, ErrMismatchedHashAndPassword) {
			b.logger.Info("login failed", "username", payload.Username)
			return false, nil
		}
		return false, err
	}

	token, err := b.tokens.Generate(user)
	if err != nil {
		return false, err
	}
	sess.Set(TokenKey, token)

	if err := b.users.TrackLogin(c.UserContext(), user); err != nil {
		b.logger.Warn("unable to track login", "username", user.Username, "error", err)
	}

	return true, nil
}

func (b *SessionBackend) Logout(c *fiber.Ctx, sess *session.Session) (bool, error) {
	sess.Delete(TokenKey)
	return true, nil
}

func (b *SessionBackend) Authenticate(c *fiber.Ctx, sess *session.Session) (bool, error) {
	raw, ok := sess.Get(TokenKey).(string)
	if !ok || raw == "" {
		return false, nil
	}

	claims, err := b.tokens.Validate(raw)
	if err != nil {
		b.logger.Debug("session token rejected", "error", err)
		return false, nil
	}

	c.Locals(claimsLocalsKey, claims)
	return true, nil
}

// ClaimsFromContext returns the claims of the logged in admin user
func ClaimsFromContext(c *fiber.Ctx) (*Claims, error) {
	claims, ok := c.Locals(claimsLocalsKey).(*Claims)
	if !ok {
		return nil, fmt.Errorf("no admin claims on request %s", c.Path())
	}
	return claims, nil
}
