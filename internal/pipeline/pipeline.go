// Package pipeline turns a filter selection into everything the dashboard
// panels draw from: the filtered view, its metrics, chart series and the
// filter options of the full dataset.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/road-accidents-dashboard/internal/adapter/csvfile"
	"github.com/couchcryptid/road-accidents-dashboard/internal/domain"
	"github.com/couchcryptid/road-accidents-dashboard/internal/observability"
)

// DatasetSource yields the current enriched dataset.
type DatasetSource interface {
	GetOrLoad(ctx context.Context) (*domain.Dataset, error)
}

// Publisher writes enriched records to an external sink.
type Publisher interface {
	Publish(ctx context.Context, records []domain.AccidentRecord) error
}

// Scope names which records an export covers.
type Scope string

const (
	ScopeFiltered Scope = "filtered"
	ScopeFull     Scope = "full"
)

// Result is one computed view and the panel inputs derived from it.
type Result struct {
	Dataset      *domain.Dataset
	View         domain.View
	Metrics      domain.Metrics
	Aggregations domain.Aggregations
	Options      domain.Options
}

// Empty reports whether the view matched no records.
func (r Result) Empty() bool { return r.View.Len() == 0 }

// Pipeline computes views against the dataset source.
type Pipeline struct {
	source      DatasetSource
	topParishes int
	logger      *slog.Logger
	metrics     *observability.Metrics

	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// New creates a Pipeline that keeps the top n parishes in its aggregations.
func New(source DatasetSource, topParishes int, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:         source,
		topParishes:    topParishes,
		logger:         logger,
		metrics:        metrics,
		maxAttempts:    5,
		initialBackoff: 200 * time.Millisecond,
		maxBackoff:     5 * time.Second,
	}
}

// Build filters the dataset and computes every panel input. A selection
// matching nothing is not an error; the result is simply empty.
func (p *Pipeline) Build(ctx context.Context, f domain.Filter) (Result, error) {
	return p.build(ctx, func(ds *domain.Dataset) domain.View { return domain.BuildView(ds, f) })
}

// Full computes the panel inputs over the whole dataset.
func (p *Pipeline) Full(ctx context.Context) (Result, error) {
	return p.build(ctx, domain.FullView)
}

func (p *Pipeline) build(ctx context.Context, view func(*domain.Dataset) domain.View) (Result, error) {
	start := time.Now()

	ds, err := p.source.GetOrLoad(ctx)
	if err != nil {
		return Result{}, err
	}

	v := view(ds)
	res := Result{
		Dataset:      ds,
		View:         v,
		Metrics:      domain.Summarize(v),
		Aggregations: domain.Aggregate(v.Records, p.topParishes),
		Options:      domain.OptionsFor(ds),
	}

	p.metrics.ViewsBuilt.Inc()
	p.metrics.ViewRows.Observe(float64(v.Len()))
	p.metrics.ViewLatency.Observe(time.Since(start).Seconds())
	if err := v.Check(); errors.Is(err, domain.ErrEmptyView) {
		p.metrics.EmptyViews.Inc()
		p.logger.Info("empty view", "total", v.Total)
	}
	return res, nil
}

// Records returns the records an export of the given scope covers.
func (p *Pipeline) Records(ctx context.Context, scope Scope, f domain.Filter) ([]domain.AccidentRecord, error) {
	var (
		res Result
		err error
	)
	switch scope {
	case ScopeFull:
		res, err = p.Full(ctx)
	case ScopeFiltered:
		res, err = p.Build(ctx, f)
	default:
		return nil, fmt.Errorf("unknown export scope %q", scope)
	}
	if err != nil {
		return nil, err
	}
	return res.View.Records, nil
}

// Export writes the records of the scope as CSV and returns the row count.
func (p *Pipeline) Export(ctx context.Context, w io.Writer, scope Scope, f domain.Filter) (int, error) {
	records, err := p.Records(ctx, scope, f)
	if err != nil {
		return 0, err
	}
	if err := csvfile.Write(w, records); err != nil {
		return 0, fmt.Errorf("export %s: %w", scope, err)
	}
	p.metrics.ExportedRows.WithLabelValues(string(scope)).Add(float64(len(records)))
	p.logger.Debug("export written", "scope", scope, "rows", len(records))
	return len(records), nil
}

// Publish sends the records to the sink, retrying failed attempts with
// exponential backoff until the attempts run out or ctx is cancelled.
func (p *Pipeline) Publish(ctx context.Context, sink Publisher, records []domain.AccidentRecord) error {
	if len(records) == 0 {
		return nil
	}

	backoff := p.initialBackoff
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err = sink.Publish(ctx, records); err == nil {
			p.metrics.PublishedRecords.Add(float64(len(records)))
			p.logger.Info("records published", "count", len(records), "attempt", attempt)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.logger.Error("publish failed", "error", err, "attempt", attempt, "count", len(records))
		if attempt == p.maxAttempts {
			break
		}
		if !sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, p.maxBackoff)
	}
	return fmt.Errorf("publish %d records after %d attempts: %w", len(records), p.maxAttempts, err)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
