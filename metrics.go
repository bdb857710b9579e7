package querymon

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational
// metrics. Implement this interface to integrate with monitoring
// systems like Prometheus.
type MetricsCollector interface {
	// RecordRegister is called after each Register call.
	// queries is the number of queries submitted, err is nil on success.
	RecordRegister(queries int, duration time.Duration, err error)

	// RecordDelete is called after each DeleteByID or Clear call.
	RecordDelete(ids int, duration time.Duration, err error)

	// RecordSearch is called after each Search call. docs is the batch
	// size, candidates the number of presearch candidates across the
	// batch.
	RecordSearch(docs, candidates int, duration time.Duration, err error)

	// RecordPurge is called after each purge cycle, scheduled or
	// manual. evicted is the number of cache entries dropped.
	RecordPurge(evicted int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRegister(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordDelete(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordSearch(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordPurge(int, time.Duration, error)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external
// dependencies.
type BasicMetricsCollector struct {
	RegisterCount      atomic.Int64
	RegisterQueries    atomic.Int64
	RegisterErrors     atomic.Int64
	RegisterTotalNanos atomic.Int64
	DeleteCount        atomic.Int64
	DeleteErrors       atomic.Int64
	SearchCount        atomic.Int64
	SearchDocs         atomic.Int64
	SearchCandidates   atomic.Int64
	SearchErrors       atomic.Int64
	SearchTotalNanos   atomic.Int64
	PurgeCount         atomic.Int64
	PurgeEvicted       atomic.Int64
	PurgeErrors        atomic.Int64
}

// RecordRegister implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRegister(queries int, duration time.Duration, err error) {
	b.RegisterCount.Add(1)
	b.RegisterQueries.Add(int64(queries))
	b.RegisterTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RegisterErrors.Add(1)
	}
}

// RecordDelete implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDelete(ids int, duration time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(docs, candidates int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchDocs.Add(int64(docs))
	b.SearchCandidates.Add(int64(candidates))
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordPurge implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPurge(evicted int, duration time.Duration, err error) {
	b.PurgeCount.Add(1)
	b.PurgeEvicted.Add(int64(evicted))
	if err != nil {
		b.PurgeErrors.Add(1)
	}
}
