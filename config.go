package admin

import (
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
)

// Config holds the construction time options of an Admin
type Config struct {
	BaseURL           string        `env:"ADMIN_BASE_URL" envDefault:"/admin"`
	Title             string        `env:"ADMIN_TITLE" envDefault:"Admin"`
	LogoURL           string        `env:"ADMIN_LOGO_URL"`
	SecretKey         string        `env:"ADMIN_SECRET_KEY"`
	TemplatesDir      string        `env:"ADMIN_TEMPLATES_DIR"`
	SessionCookie     string        `env:"ADMIN_SESSION_COOKIE" envDefault:"session_id"`
	SessionExpiration time.Duration `env:"ADMIN_SESSION_EXPIRATION" envDefault:"24h"`
	SecureCookies     bool          `env:"ADMIN_SECURE_COOKIES"`
	Debug             bool          `env:"ADMIN_DEBUG"`
}

// DefaultConfig returns the configuration used when no option overrides it
func DefaultConfig() Config {
	return Config{
		BaseURL:           "/admin",
		Title:             "Admin",
		SessionCookie:     "session_id",
		SessionExpiration: 24 * time.Hour,
	}
}

// ConfigFromEnv reads ADMIN_* environment variables
func ConfigFromEnv() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) normalize() Config {
	def := DefaultConfig()
	c.BaseURL = "/" + strings.Trim(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "/" {
		c.BaseURL = def.BaseURL
	}
	if c.Title == "" {
		c.Title = def.Title
	}
	if c.SessionCookie == "" {
		c.SessionCookie = def.SessionCookie
	}
	if c.SessionExpiration <= 0 {
		c.SessionExpiration = def.SessionExpiration
	}
	return c
}

// Option configures an Admin
type Option func(*Admin)

// WithConfig replaces the whole configuration
func WithConfig(cfg Config) Option {
	return func(a *Admin) {
		a.config = cfg
	}
}

// WithBaseURL sets the mount path, "/admin" by default
func WithBaseURL(base string) Option {
	return func(a *Admin) {
		a.config.BaseURL = base
	}
}

// WithTitle sets the title shown in the navigation bar
func WithTitle(title string) Option {
	return func(a *Admin) {
		a.config.Title = title
	}
}

// WithLogoURL sets the logo shown in the navigation bar
func WithLogoURL(url string) Option {
	return func(a *Admin) {
		a.config.LogoURL = url
	}
}

// WithAuthenticationBackend protects every admin route with backend
func WithAuthenticationBackend(backend AuthenticationBackend) Option {
	return func(a *Admin) {
		a.auth = backend
	}
}

// WithSecretKey enables encryption of the admin cookies
func WithSecretKey(key string) Option {
	return func(a *Admin) {
		a.config.SecretKey = key
	}
}

// WithTemplatesDir adds a directory searched before the embedded templates
func WithTemplatesDir(dir string) Option {
	return func(a *Admin) {
		a.config.TemplatesDir = dir
	}
}

// WithTemplatesFS adds a filesystem searched before the embedded templates.
// It takes precedence over WithTemplatesDir.
func WithTemplatesFS(fsys fs.FS) Option {
	return func(a *Admin) {
		a.templatesFS = fsys
	}
}

// WithSessionStorage sets where session data lives, in memory by default
func WithSessionStorage(storage fiber.Storage) Option {
	return func(a *Admin) {
		a.sessionStorage = storage
	}
}

// WithSessionExpiration sets the idle lifetime of a session
func WithSessionExpiration(d time.Duration) Option {
	return func(a *Admin) {
		a.config.SessionExpiration = d
	}
}

// WithLogger sets the logger
func WithLogger(logger Logger) Option {
	return func(a *Admin) {
		a.logger = logger
	}
}

// WithLoggerProvider resolves the "admin" logger from provider
func WithLoggerProvider(provider LoggerProvider) Option {
	return func(a *Admin) {
		a.loggerProvider = provider
	}
}

// WithDebug enables verbose logging of requests handled by the admin
func WithDebug(debug bool) Option {
	return func(a *Admin) {
		a.config.Debug = debug
	}
}
