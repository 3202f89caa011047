// Package dataset caches enriched datasets keyed by file identity so a file
// is parsed once per modification time.
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/couchcryptid/road-accidents-dashboard/internal/domain"
	"github.com/couchcryptid/road-accidents-dashboard/internal/observability"
	gocache "github.com/patrickmn/go-cache"
)

// Loader parses a dataset file.
type Loader interface {
	Load(ctx context.Context, path string) (*domain.Dataset, error)
}

// Store is the single accessor for the loaded dataset. Callers always go
// through GetOrLoad; cached datasets are shared read-only.
type Store struct {
	path    string
	loader  Loader
	logger  *slog.Logger
	metrics *observability.Metrics

	// loadMu serializes loads so concurrent misses parse the file once.
	loadMu     sync.Mutex
	currentKey string
	ttl        time.Duration
	cache      *gocache.Cache
}

// NewStore creates a Store for the file at path. A positive ttl forces a
// re-read after that long even if the file is unchanged; zero keeps a
// version until the file changes.
func NewStore(path string, loader Loader, ttl time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Store {
	expiration := gocache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = 2 * ttl
	}
	return &Store{
		path:    path,
		loader:  loader,
		logger:  logger,
		metrics: metrics,
		ttl:     expiration,
		cache:   gocache.New(expiration, cleanup),
	}
}

// Path returns the dataset file path.
func (s *Store) Path() string { return s.path }

// GetOrLoad returns the dataset for the file's current modification time,
// loading it on a miss. A changed modification time makes the old entry
// unreachable.
func (s *Store) GetOrLoad(ctx context.Context) (*domain.Dataset, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		s.metrics.DatasetLoadErrors.Inc()
		return nil, &domain.LoadError{Path: s.path, Reason: "stat file", Err: err}
	}
	key := cacheKey(s.path, info.ModTime())

	if ds, ok := s.lookup(key); ok {
		s.metrics.DatasetCache.WithLabelValues("hit").Inc()
		return ds, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	// Another caller may have loaded it while we waited.
	if ds, ok := s.lookup(key); ok {
		s.metrics.DatasetCache.WithLabelValues("hit").Inc()
		return ds, nil
	}
	s.metrics.DatasetCache.WithLabelValues("miss").Inc()

	start := time.Now()
	ds, err := s.loader.Load(ctx, s.path)
	if err != nil {
		s.metrics.DatasetLoadErrors.Inc()
		s.logger.Error("dataset load failed", "path", s.path, "error", err)
		return nil, err
	}
	ds.Path = s.path
	ds.ModTime = info.ModTime()
	ds.LoadedAt = domain.Now()

	s.metrics.DatasetLoads.Inc()
	s.metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	s.metrics.DatasetRecords.Set(float64(ds.Len()))
	s.logger.Info("dataset loaded",
		"path", s.path,
		"records", ds.Len(),
		"mod_time", ds.ModTime,
		"duration", time.Since(start),
	)

	// Only the current file version stays reachable.
	if s.currentKey != "" && s.currentKey != key {
		s.cache.Delete(s.currentKey)
	}
	s.currentKey = key
	s.cache.Set(key, ds, s.ttl)
	return ds, nil
}

func (s *Store) lookup(key string) (*domain.Dataset, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	ds, ok := v.(*domain.Dataset)
	return ds, ok
}

// CheckReadiness reports whether the dataset can currently be served.
func (s *Store) CheckReadiness(ctx context.Context) error {
	_, err := s.GetOrLoad(ctx)
	return err
}

// Invalidate drops every cached dataset.
func (s *Store) Invalidate() {
	s.cache.Flush()
	s.logger.Info("dataset cache invalidated", "path", s.path)
}

// Len returns the number of cached file versions.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

func cacheKey(path string, modTime time.Time) string {
	return fmt.Sprintf("%s|%d", path, modTime.UnixNano())
}
