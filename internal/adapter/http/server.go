package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/couchcryptid/road-accidents-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/road-accidents-dashboard/internal/domain"
	"github.com/couchcryptid/road-accidents-dashboard/internal/pipeline"
	"github.com/couchcryptid/road-accidents-dashboard/internal/render"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ViewBuilder computes views and exports for a filter selection.
type ViewBuilder interface {
	Build(ctx context.Context, f domain.Filter) (pipeline.Result, error)
	Export(ctx context.Context, w io.Writer, scope pipeline.Scope, f domain.Filter) (int, error)
}

// Settings tune how panels are presented.
type Settings struct {
	MapZoom      int
	MapboxToken  string
	ExportPrefix string
}

// Server exposes the dashboard, its JSON and chart endpoints, CSV downloads,
// and health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	views      ViewBuilder
	settings   Settings
	tiles      []render.TileLayer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the dashboard and operational routes.
func NewServer(addr string, views ViewBuilder, ready sharedobs.ReadinessChecker, settings Settings, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		views:    views,
		settings: settings,
		tiles:    render.TileLayers(settings.MapboxToken),
		logger:   logger,
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/map", s.handleMap)
	mux.HandleFunc("GET /api/table", s.handleTable)
	mux.HandleFunc("GET /charts/{name}", s.handleChart)
	mux.HandleFunc("GET /export/filtered.csv", s.handleExport(pipeline.ScopeFiltered))
	mux.HandleFunc("GET /export/full.csv", s.handleExport(pipeline.ScopeFull))

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// build parses the request filter and computes the view, writing the error
// response itself when either step fails.
func (s *Server) build(w http.ResponseWriter, r *http.Request) (pipeline.Result, bool) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return pipeline.Result{}, false
	}
	res, err := s.views.Build(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return pipeline.Result{}, false
	}
	return res, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var bad *BadRequestError
	if errors.As(err, &bad) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if domain.IsLoadError(err) {
		s.logger.Error("dataset load failed", "error", err, "path", r.URL.Path)
	} else {
		s.logger.Error("request failed", "error", err, "path", r.URL.Path)
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	res, ok := s.build(w, r)
	if !ok {
		return
	}

	page := render.Page{
		Options:  res.Options,
		Query:    r.URL.Query(),
		Metrics:  res.Metrics,
		Empty:    res.Empty(),
		Charts:   render.Charts(res.Aggregations),
		Table:    render.BuildTable(res.View.Records, s.columns(r)),
		Tiles:    s.tiles,
		Selected: render.SelectTiles(s.tiles, r.URL.Query().Get(paramTiles)),
		Records:  res.Dataset.Len(),
	}
	if res.Dataset != nil {
		page.LoadedAt = res.Dataset.LoadedAt
	}
	if page.Empty {
		page.Notice = domain.ErrEmptyView.Error()
	}

	var buf bytes.Buffer
	if err := render.RenderDashboard(&buf, page); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	res, err := s.views.Build(r.Context(), domain.Filter{})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res.Options)
}

type viewResponse struct {
	Rows         int                 `json:"rows"`
	Total        int                 `json:"total"`
	Empty        bool                `json:"empty"`
	Notice       string              `json:"notice,omitempty"`
	Metrics      domain.Metrics      `json:"metrics"`
	Aggregations domain.Aggregations `json:"aggregations"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	res, ok := s.build(w, r)
	if !ok {
		return
	}
	resp := viewResponse{
		Rows:         res.View.Len(),
		Total:        res.View.Total,
		Empty:        res.Empty(),
		Metrics:      res.Metrics,
		Aggregations: res.Aggregations,
	}
	if resp.Empty {
		resp.Notice = domain.ErrEmptyView.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	res, ok := s.build(w, r)
	if !ok {
		return
	}
	tiles := render.SelectTiles(s.tiles, r.URL.Query().Get(paramTiles))
	writeJSON(w, http.StatusOK, render.BuildMap(res.View.Records, tiles, s.settings.MapZoom))
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	res, ok := s.build(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, render.BuildTable(res.View.Records, s.columns(r)))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !slices.Contains(render.ChartNames, name) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("unknown chart %q", name)})
		return
	}
	res, ok := s.build(w, r)
	if !ok {
		return
	}
	spec, _ := render.FindChart(render.Charts(res.Aggregations), name)

	var buf bytes.Buffer
	if err := render.RenderSVG(&buf, spec); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExport(scope pipeline.Scope) http.HandlerFunc {
	fileName := csvfile.FilteredFileName(s.settings.ExportPrefix)
	if scope == pipeline.ScopeFull {
		fileName = csvfile.FullFileName(s.settings.ExportPrefix)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := ParseFilter(r.URL.Query())
		if err != nil {
			s.fail(w, r, err)
			return
		}

		var buf bytes.Buffer
		n, err := s.views.Export(r.Context(), &buf, scope, f)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", csvfile.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
		_, _ = buf.WriteTo(w)
		s.logger.Info("csv exported", "scope", scope, "rows", n)
	}
}

// columns reads the table column selection, falling back to the defaults
// when the parameter is absent.
func (s *Server) columns(r *http.Request) []string {
	return render.SelectColumns(listParam(r.URL.Query(), paramColumns))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // response already committed
}
