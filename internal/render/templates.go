package render

const tmplBase = `
{{define "base"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Lisbon Road Accidents Dashboard</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:system-ui,sans-serif;background:#f6f8fa;color:#24292f;font-size:14px;line-height:1.5}
a{color:#0969da;text-decoration:none}
a:hover{text-decoration:underline}
nav{background:#24292f;padding:10px 16px;display:flex;gap:16px;align-items:center}
nav .brand{color:#fff;font-weight:700;font-size:16px}
nav .dim{color:#afb8c1;margin-left:auto;font-size:12px}
main{padding:16px;max-width:1400px;margin:0 auto}
h2{font-size:13px;font-weight:600;color:#57606a;text-transform:uppercase;letter-spacing:.06em;margin:20px 0 8px}
.cards{display:flex;gap:12px;flex-wrap:wrap;margin-bottom:16px}
.card{background:#fff;border:1px solid #d0d7de;border-radius:6px;padding:12px 16px;min-width:160px;flex:1}
.card .val{font-size:24px;font-weight:700}
.card .lbl{font-size:12px;color:#57606a;margin-top:2px}
.card .delta{font-size:11px;color:#1a7f37}
.filters{display:flex;gap:12px;flex-wrap:wrap;align-items:flex-start;background:#fff;padding:10px 12px;border-radius:6px;border:1px solid #d0d7de}
.filters fieldset{border:none;display:flex;flex-direction:column;gap:2px}
.filters label{font-size:11px;color:#57606a;text-transform:uppercase}
.filters select,.filters input{border:1px solid #d0d7de;border-radius:4px;padding:3px 6px;font-size:12px;font-family:inherit}
.filters select[multiple]{min-height:90px}
.filters button{background:#0969da;border:none;color:#fff;padding:6px 14px;border-radius:4px;cursor:pointer;font-size:12px;align-self:flex-end}
.notice{background:#fff8c5;border:1px solid #d4a72c;border-radius:6px;padding:10px 12px;margin:12px 0}
#map{height:520px;border-radius:6px;border:1px solid #d0d7de}
.legend{display:flex;gap:12px;margin-top:6px;font-size:12px}
.legend span::before{content:"";display:inline-block;width:10px;height:10px;border-radius:50%;background:var(--c);margin-right:4px}
.charts{display:grid;grid-template-columns:repeat(auto-fill,minmax(560px,1fr));gap:12px}
.charts figure{background:#fff;border:1px solid #d0d7de;border-radius:6px;padding:8px}
.charts img{width:100%}
.table-wrap{max-height:420px;overflow:auto;background:#fff;border:1px solid #d0d7de;border-radius:6px}
table{width:100%;border-collapse:collapse;font-size:12px}
th{position:sticky;top:0;background:#f6f8fa;text-align:left;padding:6px 10px;border-bottom:1px solid #d0d7de;color:#57606a;font-weight:600;font-size:11px;text-transform:uppercase}
td{padding:4px 10px;border-bottom:1px solid #eaeef2}
.downloads{display:flex;gap:12px;margin-top:10px}
.downloads a{background:#fff;border:1px solid #d0d7de;border-radius:6px;padding:6px 12px}
footer{text-align:center;color:gray;font-size:12px;margin:24px 0}
</style>
</head>
<body>
<nav><span class="brand">Lisbon Road Accidents Dashboard</span>
<span class="dim">{{fmtInt .Records}} records · loaded {{fmtTime .LoadedAt}}</span></nav>
<main>
{{template "content" .}}
</main>
<footer>
<p><strong>Important Notice:</strong> Use of this data is restricted for educational purposes within this course only.</p>
</footer>
</body>
</html>{{end}}
`

const tmplDashboard = `
{{define "content"}}
<form class="filters" method="get" action="/">
  <fieldset><label for="from">From</label>
    <input type="date" id="from" name="from" value="{{index .Query "from" | firstOr (fmtDate .Options.MinDate)}}" min="{{fmtDate .Options.MinDate}}" max="{{fmtDate .Options.MaxDate}}"></fieldset>
  <fieldset><label for="to">To</label>
    <input type="date" id="to" name="to" value="{{index .Query "to" | firstOr (fmtDate .Options.MaxDate)}}" min="{{fmtDate .Options.MinDate}}" max="{{fmtDate .Options.MaxDate}}"></fieldset>
  <fieldset><label for="severity">Severity</label>
    <input type="hidden" name="severity" value="">
    <select id="severity" name="severity" multiple>{{range .Options.Severities}}
      <option value="{{.}}"{{if $.IsSelected "severity" (print .)}} selected{{end}}>{{.}}</option>{{end}}
    </select></fieldset>
  <fieldset><label for="weather">Weather</label>
    <input type="hidden" name="weather" value="">
    <select id="weather" name="weather" multiple>{{range .Options.Weather}}
      <option value="{{.}}"{{if $.IsSelected "weather" .}} selected{{end}}>{{.}}</option>{{end}}
    </select></fieldset>
  <fieldset><label for="road_type">Road Type</label>
    <input type="hidden" name="road_type" value="">
    <select id="road_type" name="road_type" multiple>{{range .Options.RoadTypes}}
      <option value="{{.}}"{{if $.IsSelected "road_type" .}} selected{{end}}>{{.}}</option>{{end}}
    </select></fieldset>
  <fieldset><label for="parish">Parish</label>
    <input type="hidden" name="parish" value="">
    <select id="parish" name="parish" multiple>{{range .Options.Parishes}}
      <option value="{{.}}"{{if $.IsSelected "parish" .}} selected{{end}}>{{.}}</option>{{end}}
    </select></fieldset>
  <fieldset><label for="time_period">Time Period</label>
    <input type="hidden" name="time_period" value="">
    <select id="time_period" name="time_period" multiple>{{range .Options.TimePeriods}}
      <option value="{{.}}"{{if $.IsSelected "time_period" (print .)}} selected{{end}}>{{.}}</option>{{end}}
    </select></fieldset>
  <fieldset><label for="tiles">Map Style</label>
    <select id="tiles" name="tiles">{{range .Tiles}}
      <option value="{{.Name}}"{{if eq .Name $.Selected.Name}} selected{{end}}>{{.Name}}</option>{{end}}
    </select></fieldset>
  <fieldset><label for="cols">Columns</label>
    <input type="hidden" name="cols" value="">
    <select id="cols" name="cols" multiple>{{range .Columns}}
      <option value="{{.}}"{{if $.ShowsColumn .}} selected{{end}}>{{.}}</option>{{end}}
    </select></fieldset>
  <button type="submit">Apply</button>
</form>

{{if .Empty}}<div class="notice">{{.Notice}}</div>{{end}}

<h2>Key Metrics</h2>
<div class="cards">
  <div class="card"><div class="val">{{fmtInt .Metrics.TotalAccidents}}</div><div class="lbl">Total Accidents</div><div class="delta">{{fmtShare .Metrics.ShareOfTotal}}</div></div>
  <div class="card"><div class="val">{{fmtInt .Metrics.TotalCasualties}}</div><div class="lbl">Total Casualties</div></div>
  <div class="card"><div class="val">{{fmtInt .Metrics.FatalAccidents}}</div><div class="lbl">Fatal Accidents</div></div>
  <div class="card"><div class="val">{{fmtInt .Metrics.SeriousInjuries}}</div><div class="lbl">Serious Injuries</div></div>
  <div class="card"><div class="val">{{fmtInt .Metrics.ParishesAffected}}</div><div class="lbl">Parishes Affected</div></div>
</div>

<h2>Accident Locations Map</h2>
<div id="map"></div>
<div class="legend">{{range $.Legend}}<span style="--c:{{.Color}}">{{.Label}}</span>{{end}}</div>

<h2>Statistical Analysis</h2>
<div class="charts">{{range .Charts}}
  <figure><img src="{{withQuery (print "/charts/" .Name) $.RawQuery}}" alt="{{.Title}}"></figure>{{end}}
</div>

<h2>Detailed Data Table</h2>
{{if .Table.Columns}}<div class="table-wrap"><table>
<thead><tr>{{range .Table.Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>{{range .Table.Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody>
</table></div>{{else}}<p>No columns selected.</p>{{end}}

<h2>Download Data</h2>
<div class="downloads">
  <a href="{{withQuery "/export/filtered.csv" $.RawQuery}}">Download Filtered Data (CSV)</a>
  <a href="/export/full.csv">Download Full Dataset (CSV)</a>
</div>

<script>
(function () {
  var map = L.map("map");
  fetch({{withQuery "/api/map" $.RawQuery}})
    .then(function (r) { return r.json(); })
    .then(function (mv) {
      L.tileLayer(mv.tiles.url, {attribution: mv.tiles.attribution}).addTo(map);
      map.setView(mv.empty ? [38.7223, -9.1393] : mv.center, mv.zoom);
      if (mv.empty) { return; }
      L.geoJSON(mv.markers, {
        pointToLayer: function (f, latlng) {
          return L.circleMarker(latlng, {radius: 6, color: f.properties.color, fillColor: f.properties.color, fillOpacity: 0.7});
        },
        onEachFeature: function (f, layer) { layer.bindPopup(f.properties.popup, {maxWidth: 250}); }
      }).addTo(map);
    });
})();
</script>
{{end}}
`
