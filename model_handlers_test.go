package admin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	admin "github.com/goliatone/go-bunadmin"
)

func newModelApp(t *testing.T, opts ...admin.ModelViewOption) (*fiber.App, *bun.DB, *admin.ModelView) {
	t.Helper()

	db := newTestDB(t)
	app, a := newTestAdmin(t, db)
	view := admin.NewModelView((*User)(nil), opts...)
	require.NoError(t, a.AddView(view))
	return app, db, view
}

func countUsers(t *testing.T, db *bun.DB) int {
	t.Helper()

	n, err := db.NewSelect().Model((*User)(nil)).Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestListPage(t *testing.T) {
	app, db, _ := newModelApp(t, admin.WithSearchable("name"))
	seedUsers(t, db, "Alice", "Bob")

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/users/list", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, "Alice")
	assert.Contains(t, body, "Bob")
	assert.Contains(t, body, "/admin/users/create")
	assert.Contains(t, body, `name="search"`)

	resp = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/users/list?search=bob", nil))
	body = readBody(t, resp)
	assert.Contains(t, body, "Bob")
	assert.NotContains(t, body, "alice@example.com")
}

func TestIndexListsModelViews(t *testing.T) {
	app, _, _ := newModelApp(t)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `href="/admin/users/list"`)
}

func TestUnknownIdentityFallsThrough(t *testing.T) {
	app, _, _ := newModelApp(t)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/nope/list", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDetailsPage(t *testing.T) {
	app, db, _ := newModelApp(t)
	seedUsers(t, db, "Alice")

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/users/details/1", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "alice@example.com")

	resp = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/users/details/42", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateRecord(t *testing.T) {
	app, db, _ := newModelApp(t)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/users/create", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `name="birth_date"`)

	resp = doRequest(t, app, formRequest(http.MethodPost, "/admin/users/create", url.Values{
		"name":   {"Alice"},
		"email":  {"alice@example.com"},
		"age":    {"30"},
		"active": {"on"},
		"save":   {"save"},
	}))
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/users/list", resp.Header.Get(fiber.HeaderLocation))

	var user User
	require.NoError(t, db.NewSelect().Model(&user).Where("name = ?", "Alice").Scan(context.Background()))
	assert.Equal(t, 30, user.Age)
	assert.True(t, user.Active)
}

func TestCreateRedirectsBySaveButton(t *testing.T) {
	tests := []struct {
		button   string
		location string
	}{
		{button: "continue", location: "/admin/users/edit/1"},
		{button: "another", location: "/admin/users/create"},
		{button: "", location: "/admin/users/list"},
	}

	for _, tt := range tests {
		t.Run(tt.button, func(t *testing.T) {
			app, _, _ := newModelApp(t)

			resp := doRequest(t, app, formRequest(http.MethodPost, "/admin/users/create", url.Values{
				"name": {"Alice"},
				"save": {tt.button},
			}))
			assert.Equal(t, fiber.StatusFound, resp.StatusCode)
			assert.Equal(t, tt.location, resp.Header.Get(fiber.HeaderLocation))
		})
	}
}

func TestCreateValidationError(t *testing.T) {
	app, db, _ := newModelApp(t)

	resp := doRequest(t, app, formRequest(http.MethodPost, "/admin/users/create", url.Values{
		"name":  {""},
		"email": {"kept@example.com"},
	}))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, "Name is required")
	assert.Contains(t, body, "kept@example.com")
	assert.Zero(t, countUsers(t, db))
}

func TestEditRecord(t *testing.T) {
	app, db, _ := newModelApp(t)
	seedUsers(t, db, "Alice")

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/users/edit/1", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `value="alice@example.com"`)

	resp = doRequest(t, app, formRequest(http.MethodPost, "/admin/users/edit/1", url.Values{
		"name":  {"Alicia"},
		"email": {"alicia@example.com"},
		"age":   {"33"},
		"save":  {"continue"},
	}))
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/users/edit/1", resp.Header.Get(fiber.HeaderLocation))

	var user User
	require.NoError(t, db.NewSelect().Model(&user).Where("id = 1").Scan(context.Background()))
	assert.Equal(t, "Alicia", user.Name)
	assert.Equal(t, 33, user.Age)

	resp = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/users/edit/9", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestReadOnlyView(t *testing.T) {
	app, db, _ := newModelApp(t, admin.ReadOnly())
	seedUsers(t, db, "Alice")

	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/admin/users/create", nil),
		formRequest(http.MethodPost, "/admin/users/create", url.Values{"name": {"Bob"}}),
		httptest.NewRequest(http.MethodGet, "/admin/users/edit/1", nil),
		httptest.NewRequest(http.MethodDelete, "/admin/users/delete?pks=1", nil),
		formRequest(http.MethodPost, "/admin/users/action/delete", url.Values{"pks": {"1"}}),
	}
	for _, req := range requests {
		resp := doRequest(t, app, req)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, req.Method+" "+req.URL.Path)
	}
	assert.Equal(t, 1, countUsers(t, db))

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/users/list", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotContains(t, readBody(t, resp), "/admin/users/create")
}

func TestDeleteRecords(t *testing.T) {
	app, db, _ := newModelApp(t)
	seedUsers(t, db, "Alice", "Bob", "Carol")

	resp := doRequest(t, app, httptest.NewRequest(http.MethodDelete, "/admin/users/delete?pks=1,2", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "/admin/users/list", readBody(t, resp))
	assert.Equal(t, 1, countUsers(t, db))

	resp = doRequest(t, app, formRequest(http.MethodPost, "/admin/users/delete", url.Values{"pks": {"3"}}))
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/users/list", resp.Header.Get(fiber.HeaderLocation))
	assert.Zero(t, countUsers(t, db))
}

func TestDeleteAction(t *testing.T) {
	app, db, _ := newModelApp(t)
	seedUsers(t, db, "Alice", "Bob", "Carol")

	resp := doRequest(t, app, formRequest(http.MethodPost, "/admin/users/action/delete", url.Values{
		"pks": {"1", "3"},
	}))
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, 1, countUsers(t, db))

	resp = doRequest(t, app, formRequest(http.MethodPost, "/admin/users/action/delete", url.Values{
		"pks": {"7"},
	}))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1, countUsers(t, db))
}

func TestCustomAction(t *testing.T) {
	var selected []string
	app, db, _ := newModelApp(t, admin.WithActions(
		admin.Action{
			Name:      "activate",
			Label:     "Activate",
			AddInList: true,
			Handler: func(c *fiber.Ctx, pks []string) error {
				selected = pks
				return nil
			},
		},
		admin.Action{
			Name:        "report",
			AddInDetail: true,
			Handler: func(c *fiber.Ctx, pks []string) error {
				return c.Status(fiber.StatusAccepted).SendString("queued")
			},
		},
	))
	seedUsers(t, db, "Alice", "Bob")

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/users/list", nil))
	body := readBody(t, resp)
	assert.Contains(t, body, "/admin/users/action/activate")
	assert.Contains(t, body, "/admin/users/action/delete")
	assert.NotContains(t, body, "/admin/users/action/report")

	resp = doRequest(t, app, formRequest(http.MethodPost, "/admin/users/action/activate", url.Values{
		"pks": {"1", "2"},
	}))
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/users/list", resp.Header.Get(fiber.HeaderLocation))
	assert.Equal(t, []string{"1", "2"}, selected)

	resp = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/users/action/report?pks=1", nil))
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "queued", readBody(t, resp))

	resp = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/users/action/missing", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestExportHandler(t *testing.T) {
	app, db, _ := newModelApp(t, admin.WithColumns("id", "name"))
	seedUsers(t, db, "Alice", "Bob")

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/users/export/csv", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="users.csv"`, resp.Header.Get(fiber.HeaderContentDisposition))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")
	assert.Equal(t, "id,name\n1,Alice\n2,Bob\n", readBody(t, resp))

	resp = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/users/export/json", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, fiber.MIMEApplicationJSON, resp.Header.Get(fiber.HeaderContentType))
	assert.JSONEq(t, `[{"id":"1","name":"Alice"},{"id":"2","name":"Bob"}]`, readBody(t, resp))

	resp = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/users/export/xml", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(fiber.HeaderContentDisposition))
}

func TestExportRestrictedTypes(t *testing.T) {
	app, _, _ := newModelApp(t, admin.WithExportTypes(admin.ExportCSV))

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/admin/users/export/json", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
