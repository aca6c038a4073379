package admin

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// pkSeparator joins the values of a composite primary key
const pkSeparator = ";"

// ListParams are the list page query parameters
type ListParams struct {
	Page     int
	PageSize int
	Search   string
	SortBy   string
	SortDesc bool
}

// Pagination is one page of records
type Pagination struct {
	Rows     []any
	Page     int
	PageSize int
	Count    int
	Search   string
	SortBy   string
	SortDesc bool
}

func (p *Pagination) TotalPages() int {
	if p.PageSize <= 0 || p.Count == 0 {
		return 1
	}
	return (p.Count + p.PageSize - 1) / p.PageSize
}

func (p *Pagination) HasPrevious() bool { return p.Page > 1 }

func (p *Pagination) HasNext() bool { return p.Page < p.TotalPages() }

// List returns a page of records. Page and page size are clamped, search
// matches any searchable column and sorting is limited to sortable columns.
func (m *ModelView) List(ctx context.Context, params ListParams) (*Pagination, error) {
	if !slices.Contains(m.PageSizeOptions, params.PageSize) {
		params.PageSize = m.PageSize
	}
	if params.Page < 1 {
		params.Page = 1
	}

	params.Search = strings.TrimSpace(params.Search)
	if len(m.search) == 0 {
		params.Search = ""
	}

	if f, ok := m.field(params.SortBy); ok && m.isSortable(f.Name) {
		params.SortBy = f.Name
	} else {
		params.SortBy = m.DefaultSort
		params.SortDesc = m.DefaultSortDesc
	}

	slice := reflect.New(reflect.SliceOf(reflect.PointerTo(m.table.Type)))

	q := m.db.NewSelect().Model(slice.Interface())
	q = m.applySearch(q, params.Search)

	if params.SortBy != "" {
		dir := "ASC"
		if params.SortDesc {
			dir = "DESC"
		}
		q = q.OrderExpr("?TableAlias.? "+dir, bun.Ident(params.SortBy))
	} else {
		for _, pk := range m.table.PKs {
			q = q.OrderExpr("?TableAlias.? ASC", bun.Ident(pk.Name))
		}
	}

	q = q.Limit(params.PageSize).Offset((params.Page - 1) * params.PageSize)

	count, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to list "+m.Identity)
	}

	page := &Pagination{
		Page:     params.Page,
		PageSize: params.PageSize,
		Count:    count,
		Search:   params.Search,
		SortBy:   params.SortBy,
		SortDesc: params.SortDesc,
	}

	if page.Page > page.TotalPages() {
		params.Page = 1
		if count > 0 {
			return m.List(ctx, params)
		}
		page.Page = 1
	}

	page.Rows = records(slice.Elem())
	return page, nil
}

func (m *ModelView) applySearch(q *bun.SelectQuery, term string) *bun.SelectQuery {
	if term == "" {
		return q
	}
	pattern := "%" + strings.ToLower(term) + "%"
	return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, f := range m.search {
			q = q.WhereOr("LOWER(CAST(?TableAlias.? AS TEXT)) LIKE ?", bun.Ident(f.Name), pattern)
		}
		return q
	})
}

func records(slice reflect.Value) []any {
	out := make([]any, slice.Len())
	for i := range out {
		out[i] = slice.Index(i).Interface()
	}
	return out
}

// Get loads one record by primary key
func (m *ModelView) Get(ctx context.Context, pk string) (any, error) {
	rec, err := m.recordWithPK(pk)
	if err != nil {
		return nil, err
	}

	if err := m.db.NewSelect().Model(rec.Interface()).WherePK().Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "unable to load "+m.Identity)
	}
	return rec.Interface(), nil
}

// Insert validates values and stores a new record
func (m *ModelView) Insert(ctx context.Context, values FormValues) (any, error) {
	rec := m.newRecord()
	if err := m.populate(rec, values, true); err != nil {
		return nil, err
	}

	err := m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if m.OnModelChange != nil {
			if err := m.OnModelChange(ctx, values, rec.Interface(), true); err != nil {
				return err
			}
		}
		_, err := tx.NewInsert().Model(rec.Interface()).Returning("*").Exec(ctx)
		return err
	})
	if err != nil {
		return nil, m.writeError(err, "insert")
	}

	if m.AfterModelChange != nil {
		if err := m.AfterModelChange(ctx, values, rec.Interface(), true); err != nil {
			m.logger.Warn("after model change hook failed", "view", m.Identity, "error", err)
		}
	}

	m.logger.Info("record created", "view", m.Identity, "pk", m.PK(rec.Interface()))
	return rec.Interface(), nil
}

// Update validates values and writes them to the record identified by pk.
// Primary key columns are never changed.
func (m *ModelView) Update(ctx context.Context, pk string, values FormValues) (any, error) {
	current, err := m.Get(ctx, pk)
	if err != nil {
		return nil, err
	}

	rec := reflect.ValueOf(current)
	if err := m.populate(rec, values, false); err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(m.form))
	for _, f := range m.form {
		if !f.IsPK {
			columns = append(columns, f.Name)
		}
	}

	err = m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if m.OnModelChange != nil {
			if err := m.OnModelChange(ctx, values, current, false); err != nil {
				return err
			}
		}
		if len(columns) == 0 {
			return nil
		}
		_, err := tx.NewUpdate().Model(current).Column(columns...).WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return nil, m.writeError(err, "update")
	}

	if m.AfterModelChange != nil {
		if err := m.AfterModelChange(ctx, values, current, false); err != nil {
			m.logger.Warn("after model change hook failed", "view", m.Identity, "error", err)
		}
	}

	m.logger.Info("record updated", "view", m.Identity, "pk", pk)
	return current, nil
}

// Delete removes every record in pks within a single transaction
func (m *ModelView) Delete(ctx context.Context, pks []string) error {
	deleted := make([]any, 0, len(pks))

	err := m.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, pk := range pks {
			rec, err := m.recordWithPK(pk)
			if err != nil {
				return err
			}
			if err := tx.NewSelect().Model(rec.Interface()).WherePK().Scan(ctx); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return ErrRecordNotFound
				}
				return err
			}
			if m.OnModelDelete != nil {
				if err := m.OnModelDelete(ctx, rec.Interface()); err != nil {
					return err
				}
			}
			if _, err := tx.NewDelete().Model(rec.Interface()).WherePK().Exec(ctx); err != nil {
				return err
			}
			deleted = append(deleted, rec.Interface())
		}
		return nil
	})
	if err != nil {
		return m.writeError(err, "delete")
	}

	if m.AfterModelDelete != nil {
		for _, rec := range deleted {
			if err := m.AfterModelDelete(ctx, rec); err != nil {
				m.logger.Warn("after model delete hook failed", "view", m.Identity, "error", err)
			}
		}
	}

	m.logger.Info("records deleted", "view", m.Identity, "count", len(deleted))
	return nil
}

// PK returns the primary key of record in its URL form
func (m *ModelView) PK(record any) string {
	v := reflect.Indirect(reflect.ValueOf(record))
	parts := make([]string, len(m.table.PKs))
	for i, pk := range m.table.PKs {
		parts[i] = formatValue(pk.Value(v))
	}
	return strings.Join(parts, pkSeparator)
}

func (m *ModelView) recordWithPK(pk string) (reflect.Value, error) {
	rec := m.newRecord()
	parts := strings.Split(pk, pkSeparator)
	if pk == "" || len(parts) != len(m.table.PKs) {
		return rec, ErrRecordNotFound
	}
	for i, f := range m.table.PKs {
		if err := assignField(f, rec.Elem(), parts[i]); err != nil {
			return rec, ErrRecordNotFound
		}
	}
	return rec, nil
}

func (m *ModelView) writeError(err error, op string) error {
	var verr ValidationErrors
	var richErr *errors.Error
	if errors.As(err, &verr) || errors.As(err, &richErr) {
		return err
	}
	return errors.Wrap(err, errors.CategoryOperation, fmt.Sprintf("unable to %s %s", op, m.Identity))
}
