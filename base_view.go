package admin

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Route is a handler exposed by a view under the admin mount path
type Route struct {
	Path    string
	Methods []string
	Name    string
	Hidden  bool
	Handler fiber.Handler
}

// ExposeOption customizes an exposed route
type ExposeOption func(*Route)

// Methods sets the HTTP methods of an exposed route, GET by default
func Methods(methods ...string) ExposeOption {
	return func(r *Route) {
		r.Methods = methods
	}
}

// RouteName sets the name used to look up the route with Admin.URLFor
func RouteName(name string) ExposeOption {
	return func(r *Route) {
		r.Name = name
	}
}

// Hidden keeps the route out of the navigation menu
func Hidden() ExposeOption {
	return func(r *Route) {
		r.Hidden = true
	}
}

// BaseView is the building block for custom admin pages. Embed it, then
// call Expose for every page the view serves:
//
//	type ReportView struct{ admin.BaseView }
//
//	func NewReportView() *ReportView {
//		v := &ReportView{BaseView: admin.BaseView{Name: "Reports"}}
//		v.Expose("/reports", v.index)
//		return v
//	}
//
//	func (v *ReportView) index(c *fiber.Ctx) error {
//		return v.Render(c, "reports.html", nil)
//	}
type BaseView struct {
	Name     string
	Identity string
	Icon     string
	Category string

	routes []Route
	admin  *Admin
}

// Base returns the view itself, it makes any struct embedding BaseView a View
func (v *BaseView) Base() *BaseView {
	return v
}

// Expose registers handler at path, relative to the admin mount path.
// Routes are protected by the admin authentication backend.
func (v *BaseView) Expose(path string, handler fiber.Handler, opts ...ExposeOption) *BaseView {
	r := Route{
		Path:    path,
		Methods: []string{fiber.MethodGet},
		Handler: handler,
	}
	for _, opt := range opts {
		opt(&r)
	}
	if r.Name == "" {
		r.Name = strings.Trim(path, "/")
	}
	v.routes = append(v.routes, r)
	return v
}

// Routes lists the exposed routes in registration order
func (v *BaseView) Routes() []Route {
	out := make([]Route, len(v.routes))
	copy(out, v.routes)
	return out
}

// Admin returns the admin this view is mounted on, nil before AddView
func (v *BaseView) Admin() *Admin {
	return v.admin
}

// Render writes a template through the admin renderer
func (v *BaseView) Render(c *fiber.Ctx, name string, data map[string]any) error {
	return v.RenderStatus(c, fiber.StatusOK, name, data)
}

// RenderStatus writes a template with the given status code
func (v *BaseView) RenderStatus(c *fiber.Ctx, status int, name string, data map[string]any) error {
	if v.admin == nil {
		return ErrViewNotFound
	}
	return v.admin.templates.RenderStatus(c, status, name, data)
}

// menuURL is the first visible exposed route
func (v *BaseView) menuURL(base string) string {
	for _, r := range v.routes {
		if !r.Hidden {
			return base + r.Path
		}
	}
	return ""
}

func (v *BaseView) identity() string {
	if v.Identity != "" {
		return v.Identity
	}
	return slugify(v.Name)
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
