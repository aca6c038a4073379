package admin

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// deleteAction is the built-in bulk delete, offered when CanDelete is set
const deleteAction = "delete"

// ActionHandler runs an action over the selected primary keys. A handler
// that writes no response gets redirected back to the list page.
type ActionHandler func(c *fiber.Ctx, pks []string) error

// Action is a custom operation offered on the list and details pages
type Action struct {
	Name                string
	Label               string
	ConfirmationMessage string
	AddInList           bool
	AddInDetail         bool
	Handler             ActionHandler
}

func (m *ModelView) action(name string) (Action, bool) {
	for _, a := range m.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

func (m *ModelView) actionMenu(detail bool) []map[string]any {
	out := make([]map[string]any, 0, len(m.Actions)+1)
	if !detail && m.CanDelete {
		out = append(out, map[string]any{
			"name":    deleteAction,
			"label":   "Delete selected",
			"confirm": "Delete the selected " + m.NamePlural + "?",
			"url":     m.url("/action/" + deleteAction),
		})
	}
	for _, a := range m.Actions {
		if (detail && !a.AddInDetail) || (!detail && !a.AddInList) {
			continue
		}
		label := a.Label
		if label == "" {
			label = m.Label(a.Name)
		}
		out = append(out, map[string]any{
			"name":    a.Name,
			"label":   label,
			"confirm": a.ConfirmationMessage,
			"url":     m.url("/action/" + a.Name),
		})
	}
	return out
}

// selectedPKs reads pks from the query string, comma separated, or from
// repeated form values.
func selectedPKs(c *fiber.Ctx) []string {
	var out []string
	add := func(raw string) {
		for _, pk := range strings.Split(raw, ",") {
			if pk = strings.TrimSpace(pk); pk != "" {
				out = append(out, pk)
			}
		}
	}

	add(c.Query("pks"))

	if len(out) == 0 {
		if form, err := c.MultipartForm(); err == nil && form != nil {
			for _, v := range form.Value["pks"] {
				add(v)
			}
		}
	}

	if len(out) == 0 {
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			if string(key) == "pks" {
				add(string(value))
			}
		})
	}
	return out
}
