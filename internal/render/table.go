package render

import (
	"slices"

	"github.com/couchcryptid/road-accidents-dashboard/internal/domain"
)

// Table is the raw data panel: the chosen columns and one row per record.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// SelectColumns keeps the known columns of the request in the order given,
// dropping unknown names and duplicates. A nil selection falls back to the
// default columns.
func SelectColumns(requested []string) []string {
	if requested == nil {
		return slices.Clone(domain.DefaultTableColumns)
	}
	known := domain.Columns()
	cols := make([]string, 0, len(requested))
	for _, c := range requested {
		if slices.Contains(known, c) && !slices.Contains(cols, c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// BuildTable renders the records under the given columns. An empty view
// yields a header-only table.
func BuildTable(records []domain.AccidentRecord, columns []string) Table {
	t := Table{Columns: columns, Rows: make([][]string, len(records))}
	for i, r := range records {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j], _ = r.Field(c)
		}
		t.Rows[i] = row
	}
	return t
}
