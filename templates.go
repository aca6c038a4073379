package admin

import (
	"bytes"
	"embed"
	"io/fs"
	"maps"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
)

//go:embed templates statics
var assetsFS embed.FS

// Templates renders admin pages with the django engine. User templates
// shadow the embedded ones, so "admin/layout.html" can be extended or
// replaced from a custom directory.
type Templates struct {
	engine  *django.Engine
	globals func(c *fiber.Ctx) map[string]any
}

func newTemplates(user fs.FS, globals func(c *fiber.Ctx) map[string]any) (*Templates, error) {
	embedded, err := fs.Sub(assetsFS, "templates")
	if err != nil {
		return nil, err
	}

	engine := django.NewPathForwardingFileSystem(http.FS(newOverlayFS(user, embedded)), "/", ".html")
	if err := engine.Load(); err != nil {
		return nil, err
	}

	return &Templates{engine: engine, globals: globals}, nil
}

func staticsFS() fs.FS {
	sub, err := fs.Sub(assetsFS, "statics")
	if err != nil {
		return assetsFS
	}
	return sub
}

// Render writes the named template with a 200 status
func (t *Templates) Render(c *fiber.Ctx, name string, data map[string]any) error {
	return t.RenderStatus(c, fiber.StatusOK, name, data)
}

// RenderStatus writes the named template with the given status. The
// ".html" suffix is optional.
func (t *Templates) RenderStatus(c *fiber.Ctx, status int, name string, data map[string]any) error {
	bind := map[string]any{}
	if t.globals != nil {
		maps.Copy(bind, t.globals(c))
	}
	maps.Copy(bind, data)

	var buf bytes.Buffer
	if err := t.engine.Render(&buf, templateName(name), bind); err != nil {
		return err
	}

	c.Status(status)
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func templateName(name string) string {
	name = strings.TrimPrefix(name, "/")
	return strings.TrimSuffix(name, ".html")
}
