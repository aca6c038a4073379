package admin

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// ModelView generates list, details, create, edit, delete and export pages
// for a bun model. Column names are SQL names; Go field names are accepted
// too.
type ModelView struct {
	BaseView

	NamePlural string

	ColumnList           []string
	ColumnExcludeList    []string
	ColumnDetailsList    []string
	ColumnLabels         map[string]string
	ColumnSearchableList []string
	ColumnSortableList   []string
	ColumnFormatters     map[string]func(record any) string
	DefaultSort          string
	DefaultSortDesc      bool

	FormColumns         []string
	FormExcludedColumns []string
	FormRules           map[string][]validation.Rule

	PageSize        int
	PageSizeOptions []int

	CanCreate bool
	CanEdit   bool
	CanDelete bool
	CanView   bool
	CanExport bool

	ExportTypes   []string
	ExportMaxRows int

	Actions []Action

	// OnModelChange runs before insert or update, inside the transaction.
	OnModelChange func(ctx context.Context, values FormValues, record any, created bool) error
	// AfterModelChange runs once the change is committed.
	AfterModelChange func(ctx context.Context, values FormValues, record any, created bool) error
	// OnModelDelete runs before each row is deleted, inside the transaction.
	OnModelDelete func(ctx context.Context, record any) error
	// AfterModelDelete runs once the deletion is committed.
	AfterModelDelete func(ctx context.Context, record any) error

	model   any
	db      *bun.DB
	table   *schema.Table
	list    []*schema.Field
	details []*schema.Field
	form    []*schema.Field
	search  []*schema.Field
	sort    []*schema.Field
	logger  Logger
}

// ModelViewOption configures a ModelView
type ModelViewOption func(*ModelView)

// NewModelView builds a view for model, a pointer to a bun model struct:
//
//	users := admin.NewModelView((*User)(nil),
//		admin.WithColumns("id", "username", "created_at"),
//		admin.WithSearchable("username"),
//	)
func NewModelView(model any, opts ...ModelViewOption) *ModelView {
	m := &ModelView{
		model:           model,
		PageSize:        10,
		PageSizeOptions: []int{10, 25, 50, 100},
		CanCreate:       true,
		CanEdit:         true,
		CanDelete:       true,
		CanView:         true,
		CanExport:       true,
		ExportTypes:     []string{ExportCSV, ExportJSON},
		Icon:            "table",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func WithViewName(name, plural string) ModelViewOption {
	return func(m *ModelView) {
		m.Name = name
		m.NamePlural = plural
	}
}

func WithIdentity(identity string) ModelViewOption {
	return func(m *ModelView) { m.Identity = identity }
}

func WithIcon(icon string) ModelViewOption {
	return func(m *ModelView) { m.Icon = icon }
}

func WithCategory(category string) ModelViewOption {
	return func(m *ModelView) { m.Category = category }
}

// WithColumns sets the columns of the list page
func WithColumns(columns ...string) ModelViewOption {
	return func(m *ModelView) { m.ColumnList = columns }
}

// WithExcludedColumns hides columns from the list page
func WithExcludedColumns(columns ...string) ModelViewOption {
	return func(m *ModelView) { m.ColumnExcludeList = columns }
}

// WithDetailColumns sets the columns of the details page
func WithDetailColumns(columns ...string) ModelViewOption {
	return func(m *ModelView) { m.ColumnDetailsList = columns }
}

func WithLabels(labels map[string]string) ModelViewOption {
	return func(m *ModelView) { m.ColumnLabels = labels }
}

// WithSearchable enables the search box over the given columns
func WithSearchable(columns ...string) ModelViewOption {
	return func(m *ModelView) { m.ColumnSearchableList = columns }
}

// WithSortable lets the list page sort on the given columns
func WithSortable(columns ...string) ModelViewOption {
	return func(m *ModelView) { m.ColumnSortableList = columns }
}

func WithDefaultSort(column string, desc bool) ModelViewOption {
	return func(m *ModelView) {
		m.DefaultSort = column
		m.DefaultSortDesc = desc
	}
}

// WithFormatter renders column through fn on list and details pages
func WithFormatter(column string, fn func(record any) string) ModelViewOption {
	return func(m *ModelView) {
		if m.ColumnFormatters == nil {
			m.ColumnFormatters = map[string]func(any) string{}
		}
		m.ColumnFormatters[column] = fn
	}
}

// WithFormColumns sets the editable columns
func WithFormColumns(columns ...string) ModelViewOption {
	return func(m *ModelView) { m.FormColumns = columns }
}

func WithFormExcludedColumns(columns ...string) ModelViewOption {
	return func(m *ModelView) { m.FormExcludedColumns = columns }
}

// WithFormRules adds validation rules to a form column
func WithFormRules(column string, rules ...validation.Rule) ModelViewOption {
	return func(m *ModelView) {
		if m.FormRules == nil {
			m.FormRules = map[string][]validation.Rule{}
		}
		m.FormRules[column] = append(m.FormRules[column], rules...)
	}
}

func WithPageSize(size int, options ...int) ModelViewOption {
	return func(m *ModelView) {
		m.PageSize = size
		if len(options) > 0 {
			m.PageSizeOptions = options
		}
	}
}

func WithExportTypes(types ...string) ModelViewOption {
	return func(m *ModelView) { m.ExportTypes = types }
}

// WithActions adds custom actions to the list and details pages
func WithActions(actions ...Action) ModelViewOption {
	return func(m *ModelView) { m.Actions = append(m.Actions, actions...) }
}

// ReadOnly disables create, edit and delete
func ReadOnly() ModelViewOption {
	return func(m *ModelView) {
		m.CanCreate = false
		m.CanEdit = false
		m.CanDelete = false
	}
}

func (m *ModelView) mount(a *Admin) error {
	typ := reflect.TypeOf(m.model)
	if typ == nil || typ.Kind() != reflect.Pointer || typ.Elem().Kind() != reflect.Struct {
		return ErrUnsupportedModel
	}

	m.db = a.db
	m.logger = a.logger
	m.table = a.db.Table(typ.Elem())

	if len(m.table.PKs) == 0 {
		return errors.New("model "+m.table.TypeName+" has no primary key", errors.CategoryBadInput)
	}

	if m.Identity == "" {
		m.Identity = m.table.Name
	}
	if m.Name == "" {
		m.Name = m.table.Type.Name()
	}
	if m.NamePlural == "" {
		m.NamePlural = m.Name + "s"
	}

	if m.PageSize <= 0 {
		m.PageSize = 10
	}
	if !slices.Contains(m.PageSizeOptions, m.PageSize) {
		m.PageSizeOptions = append(m.PageSizeOptions, m.PageSize)
		slices.Sort(m.PageSizeOptions)
	}

	var err error
	if m.list, err = m.resolve(m.ColumnList, m.ColumnExcludeList, m.table.Fields); err != nil {
		return err
	}
	if m.details, err = m.resolve(m.ColumnDetailsList, nil, m.table.Fields); err != nil {
		return err
	}
	if m.form, err = m.resolve(m.FormColumns, m.FormExcludedColumns, m.defaultFormFields()); err != nil {
		return err
	}
	if m.search, err = m.resolve(m.ColumnSearchableList, nil, []*schema.Field{}); err != nil {
		return err
	}
	if m.sort, err = m.resolve(m.ColumnSortableList, nil, []*schema.Field{}); err != nil {
		return err
	}

	if m.DefaultSort != "" {
		f, ok := m.field(m.DefaultSort)
		if !ok {
			return fmt.Errorf("%w: unknown default sort column %q", ErrUnsupportedModel, m.DefaultSort)
		}
		m.DefaultSort = f.Name
	}

	for rule := range m.FormRules {
		if _, ok := m.field(rule); !ok {
			return errors.New("form rules for unknown column "+rule, errors.CategoryBadInput)
		}
	}

	for _, act := range m.Actions {
		if act.Name == "" || act.Handler == nil {
			return errors.New("action needs a name and a handler", errors.CategoryBadInput)
		}
	}

	return nil
}

func (m *ModelView) defaultFormFields() []*schema.Field {
	out := make([]*schema.Field, 0, len(m.table.Fields))
	for _, f := range m.table.Fields {
		if f.IsPK && (f.AutoIncrement || f.Identity || f.SQLDefault != "") {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (m *ModelView) field(name string) (*schema.Field, bool) {
	if f, ok := m.table.FieldMap[name]; ok {
		return f, true
	}
	for _, f := range m.table.Fields {
		if f.GoName == name {
			return f, true
		}
	}
	return nil, false
}

// resolve maps names to fields, falling back to def minus exclude
func (m *ModelView) resolve(names, exclude []string, def []*schema.Field) ([]*schema.Field, error) {
	if len(names) > 0 {
		out := make([]*schema.Field, 0, len(names))
		for _, name := range names {
			f, ok := m.field(name)
			if !ok {
				return nil, errors.New("unknown column "+name+" on "+m.table.Name, errors.CategoryBadInput)
			}
			out = append(out, f)
		}
		return out, nil
	}

	skip := map[string]bool{}
	for _, name := range exclude {
		f, ok := m.field(name)
		if !ok {
			return nil, errors.New("unknown column "+name+" on "+m.table.Name, errors.CategoryBadInput)
		}
		skip[f.Name] = true
	}

	out := make([]*schema.Field, 0, len(def))
	for _, f := range def {
		if !skip[f.Name] {
			out = append(out, f)
		}
	}
	return out, nil
}

// Label returns the display label of a column
func (m *ModelView) Label(column string) string {
	if l, ok := m.ColumnLabels[column]; ok {
		return l
	}
	if f, ok := m.field(column); ok {
		if l, ok := m.ColumnLabels[f.GoName]; ok {
			return l
		}
	}
	words := strings.Fields(strings.ReplaceAll(column, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Table returns the bun table metadata, nil before the view is mounted
func (m *ModelView) Table() *schema.Table {
	return m.table
}

func (m *ModelView) isSortable(column string) bool {
	for _, f := range m.sort {
		if f.Name == column {
			return true
		}
	}
	return false
}

func (m *ModelView) newRecord() reflect.Value {
	return reflect.New(m.table.Type)
}

func (m *ModelView) url(path string) string {
	return m.admin.url("/" + m.Identity + path)
}

func (m *ModelView) listURL() string {
	return m.url("/list")
}
