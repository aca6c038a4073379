package admin

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"reflect"
	"slices"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

const (
	ExportCSV  = "csv"
	ExportJSON = "json"
)

var exportContentTypes = map[string]string{
	ExportCSV:  "text/csv; charset=utf-8",
	ExportJSON: "application/json",
}

// Export writes the records of the view as csv or json, using the list
// columns. ExportMaxRows caps the number of rows when set.
func (m *ModelView) Export(ctx context.Context, w io.Writer, exportType string) error {
	if !slices.Contains(m.ExportTypes, exportType) {
		return ErrInvalidExportType
	}
	if _, ok := exportContentTypes[exportType]; !ok {
		return ErrInvalidExportType
	}

	slice := reflect.New(reflect.SliceOf(reflect.PointerTo(m.table.Type)))
	q := m.db.NewSelect().Model(slice.Interface())
	for _, pk := range m.table.PKs {
		q = q.OrderExpr("?TableAlias.? ASC", bun.Ident(pk.Name))
	}
	if m.ExportMaxRows > 0 {
		q = q.Limit(m.ExportMaxRows)
	}
	if err := q.Scan(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "unable to export "+m.Identity)
	}
	rows := records(slice.Elem())

	switch exportType {
	case ExportJSON:
		return m.exportJSON(w, rows)
	default:
		return m.exportCSV(w, rows)
	}
}

func (m *ModelView) exportCSV(w io.Writer, rows []any) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(m.list))
	for i, f := range m.list {
		header[i] = f.Name
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rec := range rows {
		if err := cw.Write(m.cells(rec, m.list)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (m *ModelView) exportJSON(w io.Writer, rows []any) error {
	out := make([]map[string]string, 0, len(rows))
	for _, rec := range rows {
		cells := m.cells(rec, m.list)
		row := make(map[string]string, len(cells))
		for i, f := range m.list {
			row[f.Name] = cells[i]
		}
		out = append(out, row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
