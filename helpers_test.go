package admin_test

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"

	admin "github.com/goliatone/go-bunadmin"
)

type User struct {
	bun.BaseModel `bun:"table:users"`
	ID            int64      `bun:"id,pk,autoincrement"`
	Name          string     `bun:"name,notnull"`
	Email         string     `bun:"email"`
	Age           int        `bun:"age"`
	Active        bool       `bun:"active,notnull"`
	BirthDate     *time.Time `bun:"birth_date"`
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	_, err = db.NewCreateTable().Model((*User)(nil)).Exec(context.Background())
	require.NoError(t, err)

	return db
}

func seedUsers(t *testing.T, db *bun.DB, names ...string) []*User {
	t.Helper()

	users := make([]*User, len(names))
	for i, name := range names {
		users[i] = &User{
			Name:   name,
			Email:  strings.ToLower(name) + "@example.com",
			Age:    20 + i,
			Active: i%2 == 0,
		}
	}
	if len(users) > 0 {
		_, err := db.NewInsert().Model(&users).Exec(context.Background())
		require.NoError(t, err)
	}
	return users
}

func newTestAdmin(t *testing.T, db *bun.DB, opts ...admin.Option) (*fiber.App, *admin.Admin) {
	t.Helper()

	app := fiber.New()
	opts = append([]admin.Option{admin.WithLogger(admin.NewZapLogger(zap.NewNop()))}, opts...)
	a, err := admin.New(app, db, opts...)
	require.NoError(t, err)
	return app, a
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "session_id" {
			return c
		}
	}
	return nil
}
