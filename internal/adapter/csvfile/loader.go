// Package csvfile reads accident datasets from delimited files and writes
// enriched records back out.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/road-accidents-dashboard/internal/domain"
	"github.com/go-gota/gota/dataframe"
)

// dateLayouts are tried in order for the date column.
var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Loader parses a dataset file into enriched records.
// It implements dataset.Loader.
type Loader struct {
	delimiter rune
}

// NewLoader creates a Loader for files using the given field delimiter.
func NewLoader(delimiter rune) *Loader {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Loader{delimiter: delimiter}
}

// Load reads the file at path. Any failure is returned as a *domain.LoadError
// and no records are returned with it.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Reason: "open file", Err: err}
	}
	defer f.Close()

	records, err := l.Decode(ctx, f)
	if err != nil {
		var le *domain.LoadError
		if errors.As(err, &le) {
			le.Path = path
			return nil, le
		}
		return nil, &domain.LoadError{Path: path, Reason: "decode", Err: err}
	}
	return &domain.Dataset{Path: path, Records: records}, nil
}

// Decode parses delimited text with a header row into enriched records.
func (l *Loader) Decode(ctx context.Context, r io.Reader) ([]domain.AccidentRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = l.delimiter
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, &domain.LoadError{Reason: "parse delimited text", Err: err}
	}
	if len(rows) == 0 {
		return nil, &domain.LoadError{Reason: "missing header row"}
	}
	for i := range rows[0] {
		rows[0][i] = strings.TrimSpace(strings.TrimPrefix(rows[0][i], "\ufeff"))
	}
	if err := requireColumns(rows[0]); err != nil {
		return nil, err
	}
	if len(rows) == 1 {
		return []domain.AccidentRecord{}, nil
	}

	// Every cell is read verbatim; typing happens per column below.
	df := dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, &domain.LoadError{Reason: "build data frame", Err: df.Err}
	}

	cols := make(map[string][]string, len(domain.RawColumns))
	for _, name := range domain.RawColumns {
		col := df.Col(name)
		if col.Err != nil {
			return nil, &domain.LoadError{Reason: "column " + name, Err: col.Err}
		}
		cols[name] = col.Records()
	}

	out := make([]domain.AccidentRecord, df.Nrow())
	for i := range out {
		if i%1000 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		rec, err := parseRow(cols, i)
		if err != nil {
			// +2: one for the header, one for 1-based row numbers.
			return nil, &domain.LoadError{Reason: fmt.Sprintf("row %d", i+2), Err: err}
		}
		out[i] = domain.Enrich(rec)
	}
	return out, nil
}

// requireColumns checks that every raw column appears exactly once. The
// data frame renames repeated headers, so a duplicate would hide its column.
func requireColumns(header []string) error {
	seen := make(map[string]int, len(header))
	for _, h := range header {
		seen[h]++
	}
	var missing, duplicated []string
	for _, c := range domain.RawColumns {
		switch n := seen[c]; {
		case n == 0:
			missing = append(missing, c)
		case n > 1:
			duplicated = append(duplicated, c)
		}
	}
	if len(missing) > 0 {
		return &domain.LoadError{Reason: "missing required columns: " + strings.Join(missing, ", ")}
	}
	if len(duplicated) > 0 {
		return &domain.LoadError{Reason: "duplicated columns: " + strings.Join(duplicated, ", ")}
	}
	return nil
}

func parseRow(cols map[string][]string, i int) (domain.AccidentRecord, error) {
	p := rowParser{cols: cols, i: i}
	rec := domain.AccidentRecord{
		ID:              p.text("id"),
		Date:            p.date("date"),
		Hour:            p.integer("hour"),
		Latitude:        p.float("latitude"),
		Longitude:       p.float("longitude"),
		Parish:          p.text("parish"),
		RoadType:        p.text("road_type"),
		AccidentType:    p.text("accident_type"),
		Weather:         p.text("weather"),
		NumVehicles:     p.integer("num_vehicles"),
		InjuriesLight:   p.integer("injuries_light"),
		InjuriesSerious: p.integer("injuries_serious"),
		Fatalities30d:   p.integer("fatalities_30d"),
		DayOfWeek:       p.text("day_of_week"),
	}
	if p.err != nil {
		return domain.AccidentRecord{}, p.err
	}
	if rec.Hour < 0 || rec.Hour > 23 {
		return domain.AccidentRecord{}, fmt.Errorf("column hour: %d out of range 0-23", rec.Hour)
	}
	return rec, nil
}

// rowParser keeps the first error so parseRow reads as a flat field list.
type rowParser struct {
	cols map[string][]string
	i    int
	err  error
}

func (p *rowParser) text(col string) string {
	return p.cols[col][p.i]
}

func (p *rowParser) fail(col string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
}

func (p *rowParser) integer(col string) int {
	s := strings.TrimSpace(p.cols[col][p.i])
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	// Integer columns written by float-typed tools come out as "2.0".
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) {
		p.fail(col, fmt.Errorf("invalid integer %q", s))
		return 0
	}
	return int(v)
}

func (p *rowParser) float(col string) float64 {
	s := strings.TrimSpace(p.cols[col][p.i])
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(col, fmt.Errorf("invalid number %q", s))
		return 0
	}
	return v
}

func (p *rowParser) date(col string) time.Time {
	s := strings.TrimSpace(p.cols[col][p.i])
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	p.fail(col, fmt.Errorf("invalid date %q", s))
	return time.Time{}
}
