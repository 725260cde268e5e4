package annie

import (
	"sync/atomic"
	"time"
)

// PersistOp identifies a persistence operation.
type PersistOp uint8

const (
	PersistSave PersistOp = iota
	PersistLoad
)

func (op PersistOp) String() string {
	if op == PersistLoad {
		return "load"
	}
	return "save"
}

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    addCounter      prometheus.Counter
//	    searchHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordSearch(k int, duration time.Duration, degraded bool, err error) {
//	    p.searchHistogram.Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordAdd is called after each add. count is the batch size.
	RecordAdd(count int, duration time.Duration, err error)

	// RecordRemove is called after each remove with the number of entries removed.
	RecordRemove(removed int, duration time.Duration)

	// RecordSearch is called after each single-query search.
	// degraded reports a filtered search that hit its expansion bound.
	RecordSearch(k int, duration time.Duration, degraded bool, err error)

	// RecordBatchSearch is called after each batch search.
	// failed is the number of queries whose result carries an error.
	RecordBatchSearch(count, failed int, duration time.Duration)

	// RecordPersist is called after each save or load.
	RecordPersist(op PersistOp, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(int, time.Duration, error)           {}
func (NoopMetricsCollector) RecordRemove(int, time.Duration)               {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, bool, error)  {}
func (NoopMetricsCollector) RecordBatchSearch(int, int, time.Duration)     {}
func (NoopMetricsCollector) RecordPersist(PersistOp, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount          atomic.Int64
	AddItems          atomic.Int64
	AddErrors         atomic.Int64
	RemoveCount       atomic.Int64
	RemovedItems      atomic.Int64
	SearchCount       atomic.Int64
	SearchErrors      atomic.Int64
	SearchDegraded    atomic.Int64
	SearchTotalNanos  atomic.Int64
	BatchSearchCount  atomic.Int64
	BatchSearchItems  atomic.Int64
	BatchSearchFailed atomic.Int64
	SaveCount         atomic.Int64
	LoadCount         atomic.Int64
	PersistErrors     atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(count int, _ time.Duration, err error) {
	b.AddCount.Add(1)
	if err != nil {
		b.AddErrors.Add(1)
		return
	}
	b.AddItems.Add(int64(count))
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(removed int, _ time.Duration) {
	b.RemoveCount.Add(1)
	b.RemovedItems.Add(int64(removed))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ int, duration time.Duration, degraded bool, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
	if degraded {
		b.SearchDegraded.Add(1)
	}
}

// RecordBatchSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchSearch(count, failed int, _ time.Duration) {
	b.BatchSearchCount.Add(1)
	b.BatchSearchItems.Add(int64(count))
	b.BatchSearchFailed.Add(int64(failed))
}

// RecordPersist implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPersist(op PersistOp, _ time.Duration, err error) {
	if op == PersistLoad {
		b.LoadCount.Add(1)
	} else {
		b.SaveCount.Add(1)
	}
	if err != nil {
		b.PersistErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:          b.AddCount.Load(),
		AddItems:          b.AddItems.Load(),
		AddErrors:         b.AddErrors.Load(),
		RemoveCount:       b.RemoveCount.Load(),
		RemovedItems:      b.RemovedItems.Load(),
		SearchCount:       b.SearchCount.Load(),
		SearchErrors:      b.SearchErrors.Load(),
		SearchDegraded:    b.SearchDegraded.Load(),
		SearchAvgNanos:    b.getAvgSearchNanos(),
		BatchSearchCount:  b.BatchSearchCount.Load(),
		BatchSearchItems:  b.BatchSearchItems.Load(),
		BatchSearchFailed: b.BatchSearchFailed.Load(),
		SaveCount:         b.SaveCount.Load(),
		LoadCount:         b.LoadCount.Load(),
		PersistErrors:     b.PersistErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AddCount          int64
	AddItems          int64
	AddErrors         int64
	RemoveCount       int64
	RemovedItems      int64
	SearchCount       int64
	SearchErrors      int64
	SearchDegraded    int64
	SearchAvgNanos    int64
	BatchSearchCount  int64
	BatchSearchItems  int64
	BatchSearchFailed int64
	SaveCount         int64
	LoadCount         int64
	PersistErrors     int64
}
