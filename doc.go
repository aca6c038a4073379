// Package admin mounts an administrative interface on a fiber application
// backed by a bun database.
//
// Model views:
//   - NewModelView reads the bun table metadata of a model and serves list,
//     details, create, edit, delete and export pages under
//     <base>/<identity>/..., where identity defaults to the table name.
//   - Form input is validated with ozzo-validation. NOT NULL columns without
//     a default are required; extra rules are added with WithFormRules.
//
// Custom views:
//   - Embed BaseView and call Expose to serve any handler under the admin
//     mount path. Templates live in the directory given by WithTemplatesDir
//     (or WithTemplatesFS) and may extend "admin/layout.html".
//
// Authentication:
//   - WithAuthenticationBackend gates every page behind a login form. The
//     backend reads and writes the fiber session; the admin saves the session
//     after a successful Login and destroys it on logout. The backend
//     package ships a bun backed implementation.
//
// Example:
//
//	app := fiber.New()
//	a, err := admin.New(app, db,
//		admin.WithTitle("Backoffice"),
//		admin.WithAuthenticationBackend(backend),
//	)
//	if err != nil {
//		return err
//	}
//	_ = a.AddView(admin.NewModelView((*User)(nil), admin.WithSearchable("email")))
//	return app.Listen(":8080")
package admin
