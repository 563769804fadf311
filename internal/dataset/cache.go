package dataset

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"hpicpulse/internal/config"
	"hpicpulse/internal/infrastructure"
	"hpicpulse/pkg/contracts/domain"
)

// cacheEntry is one cached dataset with its freshness bookkeeping.
type cacheEntry struct {
	value     interface{}
	source    string
	rows      int
	loadedAt  time.Time
	expiresAt time.Time
	hitCount  int
}

// SnapshotLoader is the loading side of the Store. *Loader implements it;
// tests substitute their own.
type SnapshotLoader interface {
	MembershipTimeline(ctx context.Context) ([]domain.MembershipRecord, string, error)
	RevenueAnalysis(ctx context.Context) ([]domain.RevenueCategory, string, error)
}

// Store is a TTL cache over the Loader keyed by dataset name. Snapshots
// change at most monthly, so staleness up to the TTL is acceptable.
// Concurrent loads of the same dataset are collapsed with singleflight.
type Store struct {
	loader    SnapshotLoader
	ttl       time.Duration
	entries   map[string]cacheEntry
	mutex     sync.Mutex
	group     singleflight.Group
	hitCount  int64
	missCount int64
	stopChan  chan struct{}
	stopOnce  sync.Once
	logger    *slog.Logger
	metrics   *infrastructure.BusinessMetrics
}

// DatasetStats reports the freshness of one cached dataset.
type DatasetStats struct {
	Rows      int       `json:"rows"`
	Source    string    `json:"source"`
	LoadedAt  time.Time `json:"loaded_at"`
	ExpiresAt time.Time `json:"expires_at"`
	HitCount  int       `json:"hit_count"`
}

// CacheStats reports cache effectiveness for the health and info endpoints.
type CacheStats struct {
	Entries    int                     `json:"entries"`
	HitCount   int64                   `json:"hit_count"`
	MissCount  int64                   `json:"miss_count"`
	HitRatio   float64                 `json:"hit_ratio"`
	TTLSeconds float64                 `json:"ttl_seconds"`
	Datasets   map[string]DatasetStats `json:"datasets"`
}

// NewStore creates a dataset store and starts its background sweep.
// metrics may be nil when observability is disabled.
func NewStore(loader SnapshotLoader, ttl, sweepInterval time.Duration, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = config.DatasetCacheTTL
	}
	if sweepInterval <= 0 {
		sweepInterval = config.DatasetCacheSweepInterval
	}

	store := &Store{
		loader:   loader,
		ttl:      ttl,
		entries:  make(map[string]cacheEntry),
		stopChan: make(chan struct{}),
		logger:   logger.With(slog.String("component", "dataset-store")),
		metrics:  metrics,
	}

	go store.sweep(sweepInterval)

	return store
}

// MembershipTimeline returns the cached membership timeline, loading it
// when absent or expired.
func (s *Store) MembershipTimeline(ctx context.Context) ([]domain.MembershipRecord, error) {
	value, err := s.get(ctx, config.DatasetMembership, func(ctx context.Context) (interface{}, string, int, error) {
		records, source, err := s.loader.MembershipTimeline(ctx)
		return records, source, len(records), err
	})
	if err != nil {
		return nil, err
	}
	return value.([]domain.MembershipRecord), nil
}

// RevenueAnalysis returns the cached revenue analysis, loading it when
// absent or expired.
func (s *Store) RevenueAnalysis(ctx context.Context) ([]domain.RevenueCategory, error) {
	value, err := s.get(ctx, config.DatasetRevenue, func(ctx context.Context) (interface{}, string, int, error) {
		categories, source, err := s.loader.RevenueAnalysis(ctx)
		return categories, source, len(categories), err
	})
	if err != nil {
		return nil, err
	}
	return value.([]domain.RevenueCategory), nil
}

// get serves a dataset from cache or loads it through singleflight.
func (s *Store) get(ctx context.Context, name string, load func(context.Context) (interface{}, string, int, error)) (interface{}, error) {
	if value, ok := s.cached(ctx, name); ok {
		return value, nil
	}

	value, err, shared := s.group.Do(name, func() (interface{}, error) {
		// A concurrent flight may have refreshed the entry already. The
		// outer check already counted this request as a miss, so this
		// double-check must not touch the counters.
		if value, ok := s.peek(name); ok {
			return value, nil
		}

		start := time.Now()
		value, source, rows, err := load(ctx)
		infrastructure.RecordDatasetLoad(ctx, s.metrics, name, sourceLabel(source), rows, time.Since(start), err)
		if err != nil {
			s.logger.ErrorContext(ctx, "dataset load failed",
				slog.String("dataset", name),
				slog.String("error", err.Error()),
			)
			return nil, err
		}

		s.mutex.Lock()
		s.entries[name] = cacheEntry{
			value:     value,
			source:    source,
			rows:      rows,
			loadedAt:  time.Now(),
			expiresAt: time.Now().Add(s.ttl),
		}
		s.mutex.Unlock()

		s.logger.InfoContext(ctx, "dataset loaded",
			slog.String("dataset", name),
			slog.String("file", source),
			slog.Int("rows", rows),
			slog.Duration("duration", time.Since(start)),
		)

		return value, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.DebugContext(ctx, "dataset load deduplicated", slog.String("dataset", name))
	}

	return value, nil
}

// peek returns a fresh entry without touching the hit/miss counters.
func (s *Store) peek(name string) (interface{}, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entry, exists := s.entries[name]
	if !exists || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// cached returns a fresh entry and counts the hit or miss.
func (s *Store) cached(ctx context.Context, name string) (interface{}, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entry, exists := s.entries[name]
	if !exists || time.Now().After(entry.expiresAt) {
		s.missCount++
		if s.metrics != nil {
			s.metrics.DatasetCacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("dataset", name)))
		}
		return nil, false
	}

	entry.hitCount++
	s.entries[name] = entry
	s.hitCount++
	if s.metrics != nil {
		s.metrics.DatasetCacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("dataset", name)))
	}

	return entry.value, true
}

// Invalidate removes a dataset from cache so the next read reloads it.
func (s *Store) Invalidate(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.entries, name)
}

// Stats returns cache statistics.
func (s *Store) Stats() CacheStats {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	totalRequests := s.hitCount + s.missCount
	hitRatio := float64(0)
	if totalRequests > 0 {
		hitRatio = float64(s.hitCount) / float64(totalRequests)
	}

	datasets := make(map[string]DatasetStats, len(s.entries))
	for name, entry := range s.entries {
		datasets[name] = DatasetStats{
			Rows:      entry.rows,
			Source:    entry.source,
			LoadedAt:  entry.loadedAt,
			ExpiresAt: entry.expiresAt,
			HitCount:  entry.hitCount,
		}
	}

	return CacheStats{
		Entries:    len(s.entries),
		HitCount:   s.hitCount,
		MissCount:  s.missCount,
		HitRatio:   hitRatio,
		TTLSeconds: s.ttl.Seconds(),
		Datasets:   datasets,
	}
}

// Stop gracefully stops the background sweep.
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// sweep drops expired entries so a long-idle process does not hold stale
// snapshots in memory.
func (s *Store) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mutex.Lock()
			now := time.Now()
			removed := 0
			for name, entry := range s.entries {
				if now.After(entry.expiresAt) {
					delete(s.entries, name)
					removed++
				}
			}
			s.mutex.Unlock()
			if removed > 0 {
				s.logger.Debug("swept expired datasets", slog.Int("removed", removed))
			}
		case <-s.stopChan:
			return
		}
	}
}

// sourceLabel classifies a resolved path for metrics: the public-data
// directory or the base fallback.
func sourceLabel(path string) string {
	if filepath.Base(filepath.Dir(path)) == config.DefaultPublicDataDir {
		return "public_data"
	}
	return "base"
}
