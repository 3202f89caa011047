package render

import (
	"fmt"
	"html"
	"io"

	"github.com/couchcryptid/road-accidents-dashboard/internal/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartKind selects how a chart is drawn.
type ChartKind string

const (
	KindPie  ChartKind = "pie"
	KindBar  ChartKind = "bar"
	KindLine ChartKind = "line"
)

// Chart names served under /charts/{name}.
const (
	ChartSeverity     = "severity"
	ChartWeather      = "weather"
	ChartRoadType     = "road_type"
	ChartAccidentType = "accident_type"
	ChartHourly       = "hourly"
	ChartMonthly      = "monthly"
	ChartDayOfWeek    = "day_of_week"
	ChartParishes     = "parishes"
)

// ChartNames lists the charts in the order the dashboard lays them out.
var ChartNames = []string{
	ChartSeverity, ChartWeather, ChartRoadType, ChartAccidentType,
	ChartHourly, ChartMonthly, ChartDayOfWeek, ChartParishes,
}

const (
	chartWidth  = 640
	chartHeight = 400
)

var severityChartColors = map[string]drawing.Color{
	string(domain.SeverityPropertyDamageOnly): drawing.ColorFromHex("2ecc71"),
	string(domain.SeverityLight):              drawing.ColorFromHex("f1c40f"),
	string(domain.SeveritySerious):            drawing.ColorFromHex("e74c3c"),
	string(domain.SeverityFatal):              drawing.ColorFromHex("9b59b6"),
}

var barColor = drawing.ColorFromHex("3498db")

// ChartSpec is a chart before drawing: what it shows and how.
type ChartSpec struct {
	Name  string                 `json:"name"`
	Title string                 `json:"title"`
	Kind  ChartKind              `json:"kind"`
	Data  []domain.CategoryCount `json:"data"`
}

// Empty reports whether the chart has nothing to draw.
func (c ChartSpec) Empty() bool {
	for _, d := range c.Data {
		if d.Count > 0 {
			return false
		}
	}
	return true
}

// Charts builds every chart spec from the aggregations of one view.
func Charts(agg domain.Aggregations) []ChartSpec {
	return []ChartSpec{
		{Name: ChartSeverity, Title: "Accident Severity Distribution", Kind: KindPie, Data: agg.BySeverity},
		{Name: ChartWeather, Title: "Accidents by Weather Condition", Kind: KindBar, Data: agg.ByWeather},
		{Name: ChartRoadType, Title: "Accidents by Road Type", Kind: KindBar, Data: agg.ByRoadType},
		{Name: ChartAccidentType, Title: "Accidents by Type", Kind: KindBar, Data: agg.ByAccidentType},
		{Name: ChartHourly, Title: "Accidents by Hour of Day", Kind: KindLine, Data: agg.ByHour},
		{Name: ChartMonthly, Title: "Accidents by Month", Kind: KindBar, Data: agg.ByMonth},
		{Name: ChartDayOfWeek, Title: "Accidents by Day of Week", Kind: KindBar, Data: agg.ByDayOfWeek},
		{Name: ChartParishes, Title: "Top Parishes by Accident Count", Kind: KindBar, Data: agg.TopParishes},
	}
}

// FindChart returns the named chart spec.
func FindChart(specs []ChartSpec, name string) (ChartSpec, bool) {
	for _, s := range specs {
		if s.Name == name {
			return s, true
		}
	}
	return ChartSpec{}, false
}

// RenderSVG draws the chart as SVG. A chart without data is drawn as a
// notice instead.
func RenderSVG(w io.Writer, spec ChartSpec) error {
	if spec.Empty() {
		return NoDataSVG(w, spec.Title)
	}
	var err error
	switch spec.Kind {
	case KindPie:
		err = pieChart(spec).Render(chart.SVG, w)
	case KindLine:
		err = lineChart(spec).Render(chart.SVG, w)
	default:
		err = barChart(spec).Render(chart.SVG, w)
	}
	if err != nil {
		return fmt.Errorf("render chart %s: %w", spec.Name, err)
	}
	return nil
}

func pieChart(spec ChartSpec) chart.PieChart {
	values := make([]chart.Value, 0, len(spec.Data))
	for _, d := range spec.Data {
		if d.Count == 0 {
			continue
		}
		v := chart.Value{Label: fmt.Sprintf("%s (%d)", d.Category, d.Count), Value: float64(d.Count)}
		if c, ok := severityChartColors[d.Category]; ok {
			v.Style = chart.Style{FillColor: c, StrokeColor: drawing.ColorWhite}
		}
		values = append(values, v)
	}
	return chart.PieChart{
		Title:  spec.Title,
		Width:  chartWidth,
		Height: chartHeight,
		Values: values,
	}
}

func barChart(spec ChartSpec) chart.BarChart {
	bars := make([]chart.Value, len(spec.Data))
	for i, d := range spec.Data {
		bars[i] = chart.Value{
			Label: d.Category,
			Value: float64(d.Count),
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		}
	}
	barWidth := chartWidth / (2 * len(bars))
	if barWidth > 60 {
		barWidth = 60
	}
	return chart.BarChart{
		Title:      spec.Title,
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		YAxis:      chart.YAxis{Range: countRange(spec.Data)},
		Bars:       bars,
	}
}

func lineChart(spec ChartSpec) chart.Chart {
	xs := make([]float64, len(spec.Data))
	ys := make([]float64, len(spec.Data))
	ticks := make([]chart.Tick, len(spec.Data))
	for i, d := range spec.Data {
		xs[i] = float64(i)
		ys[i] = float64(d.Count)
		ticks[i] = chart.Tick{Value: float64(i), Label: d.Category}
	}
	return chart.Chart{
		Title:      spec.Title,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		XAxis:      chart.XAxis{Name: "Hour", Ticks: ticks},
		YAxis:      chart.YAxis{Name: "Accidents", Range: countRange(spec.Data)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    spec.Title,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: barColor,
					StrokeWidth: 2,
					DotColor:    barColor,
					DotWidth:    3,
				},
			},
		},
	}
}

// countRange pins the y axis to start at zero; a flat series would
// otherwise produce a zero-height range.
func countRange(data []domain.CategoryCount) *chart.ContinuousRange {
	peak := 1
	for _, d := range data {
		if d.Count > peak {
			peak = d.Count
		}
	}
	return &chart.ContinuousRange{Min: 0, Max: float64(peak)}
}

// NoDataSVG writes a placeholder image carrying the empty-view notice.
func NoDataSVG(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
		`<rect width="100%%" height="100%%" fill="#fafafa" stroke="#ddd"/>`+
		`<text x="50%%" y="40" text-anchor="middle" font-family="sans-serif" font-size="16" fill="#333">%s</text>`+
		`<text x="50%%" y="50%%" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#888">%s</text>`+
		`</svg>`,
		chartWidth, chartHeight, chartWidth, chartHeight,
		html.EscapeString(title), html.EscapeString(domain.ErrEmptyView.Error()))
	return err
}
