package admin

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Admin mounts the admin interface on a fiber application
type Admin struct {
	app            *fiber.App
	db             *bun.DB
	router         fiber.Router
	config         Config
	auth           AuthenticationBackend
	sessions       *session.Store
	sessionStorage fiber.Storage
	templates      *Templates
	templatesFS    fs.FS
	logger         Logger
	loggerProvider LoggerProvider

	// ErrorHandler renders errors returned by admin handlers
	ErrorHandler func(c *fiber.Ctx, err error) error

	mu     sync.RWMutex
	views  []View
	byID   map[string]View
	routes map[string]string
}

// New binds an admin to app and db. Views are added with AddView before the
// application starts serving.
func New(app *fiber.App, db *bun.DB, opts ...Option) (*Admin, error) {
	if app == nil {
		return nil, errors.New("fiber application is required", errors.CategoryBadInput)
	}

	if db == nil {
		return nil, ErrMissingDB
	}

	a := &Admin{
		app:    app,
		db:     db,
		config: DefaultConfig(),
		byID:   map[string]View{},
		routes: map[string]string{},
	}

	for _, opt := range opts {
		opt(a)
	}

	a.config = a.config.normalize()
	a.logger = ResolveLogger("admin", a.loggerProvider, a.logger)
	a.ErrorHandler = a.defaultErrorHandler

	userFS := a.templatesFS
	if userFS == nil && a.config.TemplatesDir != "" {
		userFS = os.DirFS(a.config.TemplatesDir)
	}

	templates, err := newTemplates(userFS, a.templateGlobals)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to load admin templates")
	}
	a.templates = templates

	a.sessions = session.New(session.Config{
		Expiration:     a.config.SessionExpiration,
		Storage:        a.sessionStorage,
		KeyLookup:      "cookie:" + a.config.SessionCookie,
		CookiePath:     a.config.BaseURL,
		CookieHTTPOnly: true,
		CookieSecure:   a.config.SecureCookies,
		CookieSameSite: "Lax",
	})

	a.router = app.Group(a.config.BaseURL)

	if a.config.SecretKey != "" {
		a.router.Use(encryptcookie.New(encryptcookie.Config{
			Key: cookieKey(a.config.SecretKey),
		}))
	}

	a.registerRoutes()

	a.logger.Info("admin mounted", "base_url", a.config.BaseURL, "authentication", a.auth != nil)

	return a, nil
}

// cookieKey derives the base64 AES-256 key encryptcookie expects
func cookieKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (a *Admin) registerRoutes() {
	r := a.router

	r.Use("/statics", filesystem.New(filesystem.Config{
		Root:   http.FS(staticsFS()),
		MaxAge: 3600,
	}))

	r.Get("/", a.loginRequired, a.index)

	if a.auth != nil {
		r.Get("/login", a.loginShow)
		r.Post("/login", a.loginPost)
		r.Get("/logout", a.logout)
	}

	r.Get("/:identity/list", a.loginRequired, a.listHandler)
	r.Get("/:identity/details/:pk", a.loginRequired, a.detailsHandler)
	r.Get("/:identity/create", a.loginRequired, a.createShow)
	r.Post("/:identity/create", a.loginRequired, a.createPost)
	r.Get("/:identity/edit/:pk", a.loginRequired, a.editShow)
	r.Post("/:identity/edit/:pk", a.loginRequired, a.editPost)
	r.Delete("/:identity/delete", a.loginRequired, a.deleteHandler)
	r.Post("/:identity/delete", a.loginRequired, a.deleteHandler)
	r.Get("/:identity/export/:type", a.loginRequired, a.exportHandler)
	r.Get("/:identity/action/:name", a.loginRequired, a.actionHandler)
	r.Post("/:identity/action/:name", a.loginRequired, a.actionHandler)
}

// AddView mounts view. Every exposed route is registered on the admin
// router behind the authentication check.
func (a *Admin) AddView(view View) error {
	if view == nil || view.Base() == nil {
		return errors.New("view is required", errors.CategoryBadInput)
	}

	base := view.Base()

	for _, route := range base.routes {
		if !strings.HasPrefix(route.Path, "/") {
			return fmt.Errorf("%w: %q", ErrInvalidExposePath, route.Path)
		}
		if route.Handler == nil {
			return errors.New("exposed route "+route.Path+" has no handler", errors.CategoryBadInput)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if m, ok := view.(mountable); ok {
		if err := m.mount(a); err != nil {
			return err
		}
	}

	id := base.identity()
	if id == "" {
		return errors.New("view needs a name or identity", errors.CategoryBadInput)
	}

	if _, exists := a.byID[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateView, id)
	}

	base.Identity = id
	base.admin = a

	for _, route := range base.routes {
		handlers := []fiber.Handler{a.loginRequired, route.Handler}
		for _, method := range route.Methods {
			a.router.Add(strings.ToUpper(method), route.Path, handlers...)
		}
		a.routes[id+":"+route.Name] = a.config.BaseURL + route.Path
	}

	a.byID[id] = view
	a.views = append(a.views, view)

	a.logger.Debug("admin view added", "identity", id, "routes", len(base.routes))

	return nil
}

// Views returns the mounted views in registration order
func (a *Admin) Views() []View {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]View, len(a.views))
	copy(out, a.views)
	return out
}

// View finds a mounted view by identity
func (a *Admin) View(identity string) (View, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.byID[identity]
	return v, ok
}

// URLFor returns the full path of an exposed route, looked up by view
// identity and route name.
func (a *Admin) URLFor(identity, name string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	u, ok := a.routes[identity+":"+name]
	return u, ok
}

// Config returns the normalized configuration
func (a *Admin) Config() Config {
	return a.config
}

// DB returns the bun handle the admin queries
func (a *Admin) DB() *bun.DB {
	return a.db
}

// Templates returns the admin renderer
func (a *Admin) Templates() *Templates {
	return a.templates
}

// Sessions returns the fiber session store used by the authentication backend
func (a *Admin) Sessions() *session.Store {
	return a.sessions
}

func (a *Admin) url(path string) string {
	return a.config.BaseURL + path
}

func (a *Admin) index(c *fiber.Ctx) error {
	return a.templates.Render(c, "admin/index.html", nil)
}

func (a *Admin) menu() []map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	items := make([]map[string]any, 0, len(a.views))
	for _, v := range a.views {
		var link string
		if mv, ok := v.(*ModelView); ok {
			if mv.CanView {
				link = mv.listURL()
			}
		} else {
			link = v.Base().menuURL(a.config.BaseURL)
		}
		if link == "" {
			continue
		}
		base := v.Base()
		items = append(items, map[string]any{
			"name":     base.Name,
			"identity": base.Identity,
			"icon":     base.Icon,
			"category": base.Category,
			"url":      link,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i]["category"].(string) < items[j]["category"].(string)
	})

	return items
}

func (a *Admin) templateGlobals(c *fiber.Ctx) map[string]any {
	return map[string]any{
		"admin": map[string]any{
			"title":        a.config.Title,
			"base_url":     a.config.BaseURL,
			"logo_url":     a.config.LogoURL,
			"has_auth":     a.auth != nil,
			"menu":         a.menu(),
			"current_path": c.Path(),
		},
	}
}

func (a *Admin) defaultErrorHandler(c *fiber.Ctx, err error) error {
	status := statusFromError(err)

	message := "An unexpected server error occurred"
	var richErr *errors.Error
	if status < http.StatusInternalServerError {
		message = err.Error()
		if errors.As(err, &richErr) {
			message = richErr.Message
		}
	}

	if status >= http.StatusInternalServerError {
		a.logger.Error("admin handler error", "path", c.Path(), "error", err)
	} else {
		a.logger.Debug("admin handler rejected request", "path", c.Path(), "status", status, "error", err)
	}

	if rerr := a.templates.RenderStatus(c, status, "admin/error.html", map[string]any{
		"status":  status,
		"message": message,
	}); rerr != nil {
		a.logger.Error("admin error template failed", "error", rerr)
		return c.Status(status).SendString(message)
	}
	return nil
}
