package admin

import (
	"net/url"
	"reflect"
	"slices"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun/schema"
)

// submit button values of the create and edit forms
const (
	saveAndList     = "save"
	saveAndContinue = "continue"
	saveAndAddNew   = "another"
)

// modelView resolves the :identity route param. Unknown identities fall
// through so exposed routes with the same shape still match.
func (a *Admin) modelView(c *fiber.Ctx) (*ModelView, bool) {
	v, ok := a.View(c.Params("identity"))
	if !ok {
		return nil, false
	}
	mv, ok := v.(*ModelView)
	return mv, ok
}

func (m *ModelView) viewData() map[string]any {
	return map[string]any{
		"name":         m.Name,
		"name_plural":  m.NamePlural,
		"identity":     m.Identity,
		"can_create":   m.CanCreate,
		"can_edit":     m.CanEdit,
		"can_delete":   m.CanDelete,
		"can_export":   m.CanExport,
		"export_types": m.ExportTypes,
		"searchable":   len(m.search) > 0,
		"list_url":     m.listURL(),
		"create_url":   m.url("/create"),
		"delete_url":   m.url("/delete"),
		"export_url":   m.url("/export/"),
	}
}

func (m *ModelView) cells(record any, fields []*schema.Field) []string {
	strct := reflect.Indirect(reflect.ValueOf(record))
	out := make([]string, len(fields))
	for i, f := range fields {
		if fn, ok := m.ColumnFormatters[f.Name]; ok {
			out[i] = fn(record)
			continue
		}
		if fn, ok := m.ColumnFormatters[f.GoName]; ok {
			out[i] = fn(record)
			continue
		}
		out[i] = formatValue(f.Value(strct))
	}
	return out
}

func (m *ModelView) listQuery(p *Pagination, page, size int, sortBy string, desc bool) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(size))
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if sortBy != "" {
		q.Set("sort", sortBy)
		if desc {
			q.Set("desc", "true")
		}
	}
	return m.listURL() + "?" + q.Encode()
}

func (a *Admin) listHandler(c *fiber.Ctx) error {
	m, ok := a.modelView(c)
	if !ok {
		return c.Next()
	}
	if !m.CanView {
		return a.ErrorHandler(c, ErrOperationNotAllowed)
	}

	page, err := m.List(c.UserContext(), ListParams{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", m.PageSize),
		Search:   c.Query("search"),
		SortBy:   c.Query("sort"),
		SortDesc: c.QueryBool("desc", false),
	})
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	columns := make([]map[string]any, len(m.list))
	for i, f := range m.list {
		sorted := page.SortBy == f.Name
		columns[i] = map[string]any{
			"name":     f.Name,
			"label":    m.Label(f.Name),
			"sortable": m.isSortable(f.Name),
			"sorted":   sorted,
			"desc":     sorted && page.SortDesc,
			"sort_url": m.listQuery(page, 1, page.PageSize, f.Name, sorted && !page.SortDesc),
		}
	}

	rows := make([]map[string]any, len(page.Rows))
	for i, rec := range page.Rows {
		pk := m.PK(rec)
		rows[i] = map[string]any{
			"pk":          pk,
			"cells":       m.cells(rec, m.list),
			"details_url": m.url("/details/" + url.PathEscape(pk)),
			"edit_url":    m.url("/edit/" + url.PathEscape(pk)),
		}
	}

	sizes := make([]map[string]any, len(m.PageSizeOptions))
	for i, size := range m.PageSizeOptions {
		sizes[i] = map[string]any{
			"size":   size,
			"active": size == page.PageSize,
			"url":    m.listQuery(page, 1, size, page.SortBy, page.SortDesc),
		}
	}

	return a.templates.Render(c, "admin/list.html", map[string]any{
		"view":    m.viewData(),
		"columns": columns,
		"rows":    rows,
		"actions": m.actionMenu(false),
		"search":  page.Search,
		"page": map[string]any{
			"number":       page.Page,
			"total_pages":  page.TotalPages(),
			"count":        page.Count,
			"has_previous": page.HasPrevious(),
			"has_next":     page.HasNext(),
			"previous_url": m.listQuery(page, page.Page-1, page.PageSize, page.SortBy, page.SortDesc),
			"next_url":     m.listQuery(page, page.Page+1, page.PageSize, page.SortBy, page.SortDesc),
			"sizes":        sizes,
		},
	})
}

func (a *Admin) detailsHandler(c *fiber.Ctx) error {
	m, ok := a.modelView(c)
	if !ok {
		return c.Next()
	}
	if !m.CanView {
		return a.ErrorHandler(c, ErrOperationNotAllowed)
	}

	pk := pathParam(c, "pk")
	rec, err := m.Get(c.UserContext(), pk)
	if err != nil {
		return a.ErrorHandler(c, err)
	}

	cells := m.cells(rec, m.details)
	fields := make([]map[string]any, len(m.details))
	for i, f := range m.details {
		fields[i] = map[string]any{
			"label": m.Label(f.Name),
			"value": cells[i],
		}
	}

	return a.templates.Render(c, "admin/details.html", map[string]any{
		"view":       m.viewData(),
		"pk":         pk,
		"fields":     fields,
		"actions":    m.actionMenu(true),
		"edit_url":   m.url("/edit/" + url.PathEscape(pk)),
		"delete_url": m.url("/delete?pks=" + url.QueryEscape(pk)),
	})
}

func (a *Admin) createShow(c *fiber.Ctx) error {
	m, ok := a.modelView(c)
	if !ok {
		return c.Next()
	}
	if !m.CanCreate {
		return a.ErrorHandler(c, ErrOperationNotAllowed)
	}
	return m.renderForm(c, fiber.StatusOK, nil, nil, nil, "")
}

func (a *Admin) createPost(c *fiber.Ctx) error {
	m, ok := a.modelView(c)
	if !ok {
		return c.Next()
	}
	if !m.CanCreate {
		return a.ErrorHandler(c, ErrOperationNotAllowed)
	}

	values := m.formValues(c)
	rec, err := m.Insert(c.UserContext(), values)
	if err != nil {
		return m.formError(c, err, values, "")
	}

	return c.Redirect(m.afterSave(c.FormValue("save"), m.PK(rec)), fiber.StatusFound)
}

func (a *Admin) editShow(c *fiber.Ctx) error {
	m, ok := a.modelView(c)
	if !ok {
		return c.Next()
	}
	if !m.CanEdit {
		return a.ErrorHandler(c, ErrOperationNotAllowed)
	}

	pk := pathParam(c, "pk")
	rec, err := m.Get(c.UserContext(), pk)
	if err != nil {
		return a.ErrorHandler(c, err)
	}
	return m.renderForm(c, fiber.StatusOK, rec, nil, nil, pk)
}

func (a *Admin) editPost(c *fiber.Ctx) error {
	m, ok := a.modelView(c)
	if !ok {
		return c.Next()
	}
	if !m.CanEdit {
		return a.ErrorHandler(c, ErrOperationNotAllowed)
	}

	pk := pathParam(c, "pk")
	values := m.formValues(c)
	rec, err := m.Update(c.UserContext(), pk, values)
	if err != nil {
		return m.formError(c, err, values, pk)
	}

	return c.Redirect(m.afterSave(c.FormValue("save"), m.PK(rec)), fiber.StatusFound)
}

func (m *ModelView) formError(c *fiber.Ctx, err error, values FormValues, pk string) error {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return m.renderForm(c, fiber.StatusBadRequest, nil, values, verrs, pk)
	}
	return m.admin.ErrorHandler(c, err)
}

func (m *ModelView) renderForm(c *fiber.Ctx, status int, rec any, values FormValues, verrs ValidationErrors, pk string) error {
	created := pk == ""
	action := m.url("/create")
	if !created {
		action = m.url("/edit/" + url.PathEscape(pk))
	}
	return m.admin.templates.RenderStatus(c, status, "admin/form.html", map[string]any{
		"view":    m.viewData(),
		"created": created,
		"pk":      pk,
		"action":  action,
		"fields":  m.formFields(rec, values, verrs, created),
		"failed":  len(verrs) > 0,
	})
}

func (m *ModelView) afterSave(button, pk string) string {
	switch button {
	case saveAndContinue:
		return m.url("/edit/" + url.PathEscape(pk))
	case saveAndAddNew:
		return m.url("/create")
	default:
		return m.listURL()
	}
}

func (a *Admin) deleteHandler(c *fiber.Ctx) error {
	m, ok := a.modelView(c)
	if !ok {
		return c.Next()
	}
	if !m.CanDelete {
		return a.ErrorHandler(c, ErrOperationNotAllowed)
	}

	if err := m.Delete(c.UserContext(), selectedPKs(c)); err != nil {
		return a.ErrorHandler(c, err)
	}

	// scripted DELETE requests navigate on their own
	if c.Method() == fiber.MethodDelete {
		return c.SendString(m.listURL())
	}
	return c.Redirect(m.listURL(), fiber.StatusFound)
}

func (a *Admin) exportHandler(c *fiber.Ctx) error {
	m, ok := a.modelView(c)
	if !ok {
		return c.Next()
	}
	if !m.CanExport {
		return a.ErrorHandler(c, ErrOperationNotAllowed)
	}

	exportType := c.Params("type")
	contentType, known := exportContentTypes[exportType]
	if !known || !slices.Contains(m.ExportTypes, exportType) {
		return a.ErrorHandler(c, ErrInvalidExportType)
	}

	c.Attachment(m.Identity + "." + exportType)
	c.Set(fiber.HeaderContentType, contentType)
	if err := m.Export(c.UserContext(), c, exportType); err != nil {
		c.Response().ResetBody()
		c.Response().Header.Del(fiber.HeaderContentDisposition)
		return a.ErrorHandler(c, err)
	}
	return nil
}

func (a *Admin) actionHandler(c *fiber.Ctx) error {
	m, ok := a.modelView(c)
	if !ok {
		return c.Next()
	}

	name := c.Params("name")
	pks := selectedPKs(c)

	if act, found := m.action(name); found {
		if err := act.Handler(c, pks); err != nil {
			return a.ErrorHandler(c, err)
		}
		if len(c.Response().Body()) > 0 || c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		return c.Redirect(m.listURL(), fiber.StatusFound)
	}

	if name != deleteAction {
		return a.ErrorHandler(c, ErrViewNotFound)
	}
	if !m.CanDelete {
		return a.ErrorHandler(c, ErrOperationNotAllowed)
	}
	if err := m.Delete(c.UserContext(), pks); err != nil {
		return a.ErrorHandler(c, err)
	}
	return c.Redirect(m.listURL(), fiber.StatusFound)
}

func pathParam(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
