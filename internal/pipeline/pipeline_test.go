package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/road-accidents-dashboard/internal/domain"
	"github.com/couchcryptid/road-accidents-dashboard/internal/observability"
	"github.com/couchcryptid/road-accidents-dashboard/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type staticSource struct {
	ds  *domain.Dataset
	err error
}

func (s *staticSource) GetOrLoad(_ context.Context) (*domain.Dataset, error) {
	return s.ds, s.err
}

type flakyPublisher struct {
	failures int
	calls    atomic.Int64
	got      []domain.AccidentRecord
}

func (f *flakyPublisher) Publish(_ context.Context, records []domain.AccidentRecord) error {
	if int(f.calls.Add(1)) <= f.failures {
		return errors.New("broker unavailable")
	}
	f.got = append(f.got, records...)
	return nil
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

func testDataset() *domain.Dataset {
	raw := []domain.AccidentRecord{
		{ID: "1", Date: time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC), Hour: 8, Parish: "Belém", Weather: "Clear", RoadType: "Avenue", InjuriesLight: 2, DayOfWeek: "Tuesday"},
		{ID: "2", Date: time.Date(2023, 2, 11, 0, 0, 0, 0, time.UTC), Hour: 23, Parish: "Alvalade", Weather: "Rain", RoadType: "Street", Fatalities30d: 1, DayOfWeek: "Saturday"},
		{ID: "3", Date: time.Date(2023, 3, 12, 0, 0, 0, 0, time.UTC), Hour: 15, Parish: "Belém", Weather: "Clear", RoadType: "Street", InjuriesSerious: 1, DayOfWeek: "Sunday"},
	}
	for i := range raw {
		raw[i] = domain.Enrich(raw[i])
	}
	return &domain.Dataset{Path: "test.csv", Records: raw}
}

func newPipeline(ds *domain.Dataset) (*pipeline.Pipeline, *observability.Metrics) {
	metrics := newTestMetrics()
	return pipeline.New(&staticSource{ds: ds}, 10, slog.Default(), metrics), metrics
}

// --- tests ---

func TestPipeline_Build(t *testing.T) {
	p, metrics := newPipeline(testDataset())

	res, err := p.Build(context.Background(), domain.Filter{Weather: []string{"Clear"}})
	require.NoError(t, err)

	assert.False(t, res.Empty())
	assert.Equal(t, 2, res.Metrics.TotalAccidents)
	assert.Equal(t, 3, res.View.Total)
	assert.Equal(t, 1, res.Metrics.ParishesAffected)
	assert.Len(t, res.Aggregations.ByHour, 24)
	assert.Equal(t, []string{"Alvalade", "Belém"}, res.Options.Parishes)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ViewsBuilt), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.EmptyViews), 0)
}

func TestPipeline_Build_EmptyIsNotAnError(t *testing.T) {
	p, metrics := newPipeline(testDataset())

	res, err := p.Build(context.Background(), domain.Filter{Severities: []domain.Severity{}})
	require.NoError(t, err)

	assert.True(t, res.Empty())
	assert.Zero(t, res.Metrics.TotalAccidents)
	assert.Zero(t, res.Metrics.TotalCasualties)
	assert.Zero(t, res.Metrics.ParishesAffected)
	require.NotNil(t, res.Metrics.ShareOfTotal)
	assert.Zero(t, *res.Metrics.ShareOfTotal)
	assert.Empty(t, res.Aggregations.BySeverity)
	assert.Len(t, res.Options.Severities, 3)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.EmptyViews), 0)
}

func TestPipeline_Full(t *testing.T) {
	p, _ := newPipeline(testDataset())

	res, err := p.Full(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Metrics.ShareOfTotal)
	assert.InDelta(t, 100, *res.Metrics.ShareOfTotal, 1e-9)
	assert.Equal(t, 3, res.Metrics.TotalAccidents)
}

func TestPipeline_LoadErrorPropagates(t *testing.T) {
	loadErr := &domain.LoadError{Path: "x.csv", Reason: "open file", Err: errors.New("boom")}
	p := pipeline.New(&staticSource{err: loadErr}, 10, slog.Default(), newTestMetrics())

	_, err := p.Build(context.Background(), domain.Filter{})
	require.Error(t, err)
	assert.True(t, domain.IsLoadError(err))
}

func TestPipeline_Export(t *testing.T) {
	p, metrics := newPipeline(testDataset())
	filter := domain.Filter{Severities: []domain.Severity{domain.SeverityFatal}}

	var buf bytes.Buffer
	n, err := p.Export(context.Background(), &buf, pipeline.ScopeFiltered, filter)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,date,hour"))
	assert.True(t, strings.HasPrefix(lines[1], "2,2023-02-11,23"))

	buf.Reset()
	n, err = p.Export(context.Background(), &buf, pipeline.ScopeFull, filter)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ExportedRows.WithLabelValues("filtered")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.ExportedRows.WithLabelValues("full")), 0)
}

func TestPipeline_Export_EmptyIsHeaderOnly(t *testing.T) {
	p, _ := newPipeline(testDataset())

	var buf bytes.Buffer
	n, err := p.Export(context.Background(), &buf, pipeline.ScopeFiltered, domain.Filter{Parishes: []string{}})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, strings.Join(domain.Columns(), ","), strings.TrimSpace(buf.String()))
}

func TestPipeline_Records_UnknownScope(t *testing.T) {
	p, _ := newPipeline(testDataset())
	_, err := p.Records(context.Background(), pipeline.Scope("partial"), domain.Filter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "partial")
}

func TestPipeline_Publish_RetriesThenSucceeds(t *testing.T) {
	ds := testDataset()
	p, metrics := newPipeline(ds)
	sink := &flakyPublisher{failures: 1}

	err := p.Publish(context.Background(), sink, ds.Records)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sink.calls.Load())
	if diff := cmp.Diff(ds.Records, sink.got); diff != "" {
		t.Errorf("published records mismatch (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.PublishedRecords), 0)
}

func TestPipeline_Publish_Empty(t *testing.T) {
	p, _ := newPipeline(testDataset())
	sink := &flakyPublisher{}
	require.NoError(t, p.Publish(context.Background(), sink, nil))
	assert.Zero(t, sink.calls.Load())
}

func TestPipeline_Publish_ContextCancellation(t *testing.T) {
	ds := testDataset()
	p, _ := newPipeline(ds)
	sink := &flakyPublisher{failures: 100}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := p.Publish(ctx, sink, ds.Records)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(1), sink.calls.Load())
}
