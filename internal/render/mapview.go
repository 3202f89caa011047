// Package render turns a filtered view into the dashboard panels: map
// markers, chart images, the data table and the HTML page.
package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/couchcryptid/road-accidents-dashboard/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SeverityColors maps each tier to its marker colour.
var SeverityColors = map[domain.Severity]string{
	domain.SeverityPropertyDamageOnly: "green",
	domain.SeverityLight:              "orange",
	domain.SeveritySerious:            "red",
	domain.SeverityFatal:              "darkred",
}

// fallbackColor is used for a severity outside the known tiers.
const fallbackColor = "blue"

// MarkerColor returns the marker colour of a severity tier.
func MarkerColor(s domain.Severity) string {
	if c, ok := SeverityColors[s]; ok {
		return c
	}
	return fallbackColor
}

// TileLayer is a base map the browser can draw markers on.
type TileLayer struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

const (
	TilesPositron     = "CartoDB Positron"
	TilesDarkMatter   = "CartoDB dark_matter"
	TilesOpenStreet   = "OpenStreetMap"
	TilesMapboxStreet = "Mapbox Streets"
)

// TileLayers lists the selectable base maps. Mapbox is offered only when a
// token is configured.
func TileLayers(mapboxToken string) []TileLayer {
	layers := []TileLayer{
		{
			Name:        TilesPositron,
			URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
			Attribution: "&copy; OpenStreetMap contributors &copy; CARTO",
		},
		{
			Name:        TilesDarkMatter,
			URL:         "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png",
			Attribution: "&copy; OpenStreetMap contributors &copy; CARTO",
		},
		{
			Name:        TilesOpenStreet,
			URL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: "&copy; OpenStreetMap contributors",
		},
	}
	if mapboxToken != "" {
		layers = append(layers, TileLayer{
			Name:        TilesMapboxStreet,
			URL:         "https://api.mapbox.com/styles/v1/mapbox/streets-v12/tiles/{z}/{x}/{y}?access_token=" + mapboxToken,
			Attribution: "&copy; Mapbox &copy; OpenStreetMap contributors",
		})
	}
	return layers
}

// SelectTiles returns the named layer, or the first layer when the name is
// unknown.
func SelectTiles(layers []TileLayer, name string) TileLayer {
	for _, l := range layers {
		if l.Name == name {
			return l
		}
	}
	return layers[0]
}

// MapView is everything the browser needs to draw the incident map.
type MapView struct {
	Empty   bool                       `json:"empty"`
	Notice  string                     `json:"notice,omitempty"`
	Center  [2]float64                 `json:"center"` // [lat, lon]
	Zoom    int                        `json:"zoom"`
	Bounds  [2][2]float64              `json:"bounds"` // [[south, west], [north, east]]
	Tiles   TileLayer                  `json:"tiles"`
	Markers *geojson.FeatureCollection `json:"markers"`
	Legend  []LegendEntry              `json:"legend"`
}

// LegendEntry is one row of the severity legend.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Legend lists the tiers from least to most severe, as the map legend shows them.
var Legend = []LegendEntry{
	{Label: "Property Damage Only", Color: SeverityColors[domain.SeverityPropertyDamageOnly]},
	{Label: "Light Injuries", Color: SeverityColors[domain.SeverityLight]},
	{Label: "Serious Injuries", Color: SeverityColors[domain.SeveritySerious]},
	{Label: "Fatal", Color: SeverityColors[domain.SeverityFatal]},
}

// BuildMap places one marker per record, centred on the mean position.
// An empty view produces a notice and no markers.
func BuildMap(records []domain.AccidentRecord, tiles TileLayer, zoom int) MapView {
	mv := MapView{
		Zoom:    zoom,
		Tiles:   tiles,
		Markers: geojson.NewFeatureCollection(),
		Legend:  Legend,
	}
	if len(records) == 0 {
		mv.Empty = true
		mv.Notice = domain.ErrEmptyView.Error()
		return mv
	}

	points := make(orb.MultiPoint, 0, len(records))
	var sumLat, sumLon float64
	for _, r := range records {
		p := orb.Point{r.Longitude, r.Latitude}
		points = append(points, p)
		sumLat += r.Latitude
		sumLon += r.Longitude

		f := geojson.NewFeature(p)
		f.ID = r.ID
		f.Properties["id"] = r.ID
		f.Properties["severity"] = string(r.Severity)
		f.Properties["color"] = MarkerColor(r.Severity)
		f.Properties["popup"] = Popup(r)
		mv.Markers.Append(f)
	}

	n := float64(len(records))
	mv.Center = [2]float64{sumLat / n, sumLon / n}
	b := points.Bound()
	mv.Bounds = [2][2]float64{{b.Min.Lat(), b.Min.Lon()}, {b.Max.Lat(), b.Max.Lon()}}
	return mv
}

// Popup renders the marker detail block. Values are HTML-escaped.
func Popup(r domain.AccidentRecord) string {
	var sb strings.Builder
	sb.WriteString(`<div style="width: 200px;"><h4>Accident Details</h4>`)
	row := func(label, value string) {
		fmt.Fprintf(&sb, "<b>%s:</b> %s<br>", label, html.EscapeString(value))
	}
	row("ID", r.ID)
	row("Date", r.Date.Format("2006-01-02"))
	row("Time", fmt.Sprintf("%d:00", r.Hour))
	row("Parish", r.Parish)
	row("Road Type", r.RoadType)
	row("Accident Type", r.AccidentType)
	row("Weather", r.Weather)
	row("Severity", string(r.Severity))
	row("Casualties", fmt.Sprint(r.TotalCasualties))
	sb.WriteString("</div>")
	return sb.String()
}
