package render

import (
	"fmt"
	"html/template"
	"io"
	"net/url"
	"slices"
	"time"

	"github.com/couchcryptid/road-accidents-dashboard/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Page is the data behind the dashboard HTML.
type Page struct {
	Options  domain.Options
	Query    url.Values
	Metrics  domain.Metrics
	Empty    bool
	Notice   string
	Charts   []ChartSpec
	Table    Table
	Tiles    []TileLayer
	Selected TileLayer
	Records  int
	LoadedAt time.Time
}

// Columns lists every column the table can show.
func (p Page) Columns() []string { return domain.Columns() }

// RawQuery is the current filter selection, reused by the map, chart and
// export links.
func (p Page) RawQuery() string { return p.Query.Encode() }

// IsSelected reports whether a form value should be pre-selected. An absent
// parameter means every value is selected.
func (p Page) IsSelected(key, value string) bool {
	values, ok := p.Query[key]
	if !ok {
		return true
	}
	return slices.Contains(values, value)
}

// Legend is the severity legend under the map.
func (p Page) Legend() []LegendEntry { return Legend }

// ShowsColumn reports whether the table currently includes the column.
func (p Page) ShowsColumn(column string) bool {
	return slices.Contains(p.Table.Columns, column)
}

var funcMap = template.FuncMap{
	"fmtInt": fmtInt,
	"fmtShare": func(share *float64) string {
		if share == nil {
			return "—"
		}
		return fmt.Sprintf("%.1f%% of total", *share)
	},
	"fmtDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.DateOnly)
	},
	"fmtTime": func(t time.Time) string {
		if t.IsZero() {
			return "—"
		}
		return t.Local().Format("Jan 2 15:04:05")
	},
	"withQuery": func(path, rawQuery string) template.URL {
		if rawQuery == "" {
			return template.URL(path)
		}
		return template.URL(path + "?" + rawQuery)
	},
	"firstOr": func(fallback string, values []string) string {
		if len(values) == 0 || values[0] == "" {
			return fallback
		}
		return values[0]
	},
}

// numbers groups thousands the way the dashboard's English labels read.
var numbers = message.NewPrinter(language.English)

func fmtInt(n int) string {
	return numbers.Sprintf("%d", n)
}

var dashboardTmpl = template.Must(template.New("page").Funcs(funcMap).Parse(tmplBase + tmplDashboard))

// RenderDashboard writes the dashboard page.
func RenderDashboard(w io.Writer, p Page) error {
	if err := dashboardTmpl.ExecuteTemplate(w, "base", p); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}
