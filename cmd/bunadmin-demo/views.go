package main

import (
	"context"
	"embed"
	"io/fs"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"

	admin "github.com/goliatone/go-bunadmin"
	"github.com/goliatone/go-bunadmin/backend"
)

//go:embed templates
var templatesFS embed.FS

func demoTemplates() fs.FS {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

type ReportView struct {
	admin.BaseView
}

func NewReportView() *ReportView {
	v := &ReportView{BaseView: admin.BaseView{Name: "Reports", Icon: "chart", Category: "Insights"}}
	v.Expose("/reports", v.index)
	return v
}

func (v *ReportView) index(c *fiber.Ctx) error {
	db := v.Admin().DB()
	ctx := c.UserContext()

	authors, err := db.NewSelect().Model((*Author)(nil)).Count(ctx)
	if err != nil {
		return err
	}
	posts, err := db.NewSelect().Model((*Post)(nil)).Count(ctx)
	if err != nil {
		return err
	}
	published, err := db.NewSelect().Model((*Post)(nil)).Where("published = ?", true).Count(ctx)
	if err != nil {
		return err
	}

	return v.Render(c, "reports.html", map[string]any{
		"authors":   authors,
		"posts":     posts,
		"published": published,
	})
}

func publishAction(db *bun.DB) admin.Action {
	return admin.Action{
		Name:                "publish",
		Label:               "Publish",
		ConfirmationMessage: "Publish the selected posts?",
		AddInList:           true,
		AddInDetail:         true,
		Handler: func(c *fiber.Ctx, pks []string) error {
			if len(pks) == 0 {
				return nil
			}
			_, err := db.NewUpdate().
				Model((*Post)(nil)).
				Set("published = ?", true).
				Set("published_at = ?", time.Now().UTC()).
				Where("id IN (?)", bun.In(pks)).
				Exec(c.UserContext())
			return err
		},
	}
}

func registerViews(a *admin.Admin) error {
	// accounts are created with the create-user command
	adminUsers := admin.NewModelView((*backend.AdminUser)(nil),
		admin.WithViewName("Admin user", "Admin users"),
		admin.WithCategory("Settings"),
		admin.WithColumns("username", "role", "active", "logged_in_at"),
		admin.WithSearchable("username"),
		admin.WithFormColumns("role", "active"),
		admin.WithFormRules("role", validation.In(backend.RoleViewer, backend.RoleEditor, backend.RoleAdmin)),
		admin.WithExportTypes(admin.ExportCSV),
	)
	adminUsers.CanCreate = false

	views := []admin.View{
		admin.NewModelView((*Author)(nil),
			admin.WithCategory("Content"),
			admin.WithColumns("id", "name", "email", "created_at"),
			admin.WithSearchable("name", "email"),
			admin.WithSortable("id", "name", "created_at"),
			admin.WithFormColumns("name", "email", "bio"),
			admin.WithFormRules("email", is.Email),
		),
		admin.NewModelView((*Post)(nil),
			admin.WithCategory("Content"),
			admin.WithColumns("id", "title", "author_id", "published", "published_at"),
			admin.WithSearchable("title", "body"),
			admin.WithSortable("id", "title", "published_at"),
			admin.WithDefaultSort("id", true),
			admin.WithFormExcludedColumns("created_at"),
			admin.WithFormRules("title", validation.Length(3, 200)),
			admin.WithActions(publishAction(a.DB())),
		),
		adminUsers,
		NewReportView(),
	}

	for _, v := range views {
		if err := a.AddView(v); err != nil {
			return err
		}
	}
	return nil
}

func seed(ctx context.Context, db *bun.DB) error {
	count, err := db.NewSelect().Model((*Author)(nil)).Count(ctx)
	if err != nil || count > 0 {
		return err
	}

	author := &Author{Name: "Ada Lovelace", Email: "ada@example.com", Bio: "First programmer"}
	if _, err := db.NewInsert().Model(author).Exec(ctx); err != nil {
		return err
	}

	posts := []*Post{
		{AuthorID: author.ID, Title: "Notes on the Analytical Engine", Body: "Sketch of the engine."},
		{AuthorID: author.ID, Title: "On Bernoulli numbers", Body: "Note G."},
	}
	_, err = db.NewInsert().Model(&posts).Exec(ctx)
	return err
}
