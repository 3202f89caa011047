package csvfile

import (
	"fmt"
	"io"

	"github.com/couchcryptid/road-accidents-dashboard/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ContentType is the MIME type of exported files.
const ContentType = "text/csv"

// FilteredFileName and FullFileName name the two downloads.
func FilteredFileName(prefix string) string { return prefix + "_filtered.csv" }

func FullFileName(prefix string) string { return prefix + "_full.csv" }

// Write serializes records with every raw and derived column in declaration
// order. An empty slice produces a header-only file.
func Write(w io.Writer, records []domain.AccidentRecord) error {
	return WriteColumns(w, records, domain.Columns())
}

// WriteColumns serializes the named columns only, in the given order. The
// date column uses one layout for every row.
func WriteColumns(w io.Writer, records []domain.AccidentRecord, columns []string) error {
	dateLayout := domain.DateLayout(records)
	cols := make([]series.Series, 0, len(columns))
	for _, name := range columns {
		values := make([]string, len(records))
		for i := range records {
			if name == "date" {
				values[i] = records[i].Date.Format(dateLayout)
				continue
			}
			v, ok := records[i].Field(name)
			if !ok {
				return fmt.Errorf("export: unknown column %q", name)
			}
			values[i] = v
		}
		cols = append(cols, series.New(values, series.String, name))
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return fmt.Errorf("export: build data frame: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("export: write csv: %w", err)
	}
	return nil
}
