package annie

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hupe1980/annie/distance"
	"github.com/hupe1980/annie/index"
	"github.com/hupe1980/annie/index/flat"
	"github.com/hupe1980/annie/index/hnsw"
)

// Kind identifies the index implementation.
type Kind = index.Kind

const (
	KindFlat = index.KindFlat
	KindHNSW = index.KindHNSW
)

// Metric describes a distance function.
type Metric = distance.Metric

// Euclidean returns the L2 metric.
func Euclidean() Metric { return distance.Euclidean() }

// Manhattan returns the L1 metric.
func Manhattan() Metric { return distance.Manhattan() }

// Cosine returns the cosine distance, 1 - cos(a, b).
func Cosine() Metric { return distance.Cosine() }

// Chebyshev returns the L∞ metric.
func Chebyshev() Metric { return distance.Chebyshev() }

// Minkowski returns the Lp metric for p > 0.
func Minkowski(p float64) (Metric, error) {
	m, err := distance.Minkowski(p)
	if err != nil {
		return Metric{}, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	return m, nil
}

// ParseMetric parses names such as "cosine", "l2" or "minkowski:3".
func ParseMetric(s string) (Metric, error) {
	m, err := distance.Parse(s)
	if err != nil {
		return Metric{}, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	return m, nil
}

// SearchResult is one neighbour.
type SearchResult = index.SearchResult

// SearchReport describes how a search ran.
type SearchReport = index.SearchReport

// Results is a list of neighbours ordered by ascending distance, ties by
// insertion order.
type Results []SearchResult

// IDs returns the ids in result order.
func (r Results) IDs() []int64 { return index.IDs(r) }

// Distances returns the distances in result order.
func (r Results) Distances() []float64 { return index.Distances(r) }

// Index is a k-nearest-neighbour index safe for concurrent use.
type Index struct {
	mu   sync.RWMutex
	idx  index.Index
	opts options
}

// New creates an empty index for vectors of the given dimension.
func New(dimension int, metric Metric, opts ...Option) (*Index, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	idx, err := newIndex(dimension, metric, o)
	if err != nil {
		return nil, translateError(err)
	}
	return wrap(idx, o), nil
}

func newIndex(dimension int, metric Metric, o options) (index.Index, error) {
	switch o.kind {
	case KindHNSW:
		fns := append(slices.Clone(o.hnswOptions), func(ho *hnsw.Options) {
			ho.Dimension = dimension
			ho.Metric = metric
		})
		return hnsw.New(fns...)
	default:
		return flat.New(func(fo *flat.Options) {
			fo.Dimension = dimension
			fo.Metric = metric
		})
	}
}

func wrap(idx index.Index, o options) *Index {
	o.logger = o.logger.WithKind(idx.Kind())
	return &Index{idx: idx, opts: o}
}

// Kind returns the index implementation.
func (x *Index) Kind() Kind { return x.idx.Kind() }

// Dimension returns the vector dimensionality.
func (x *Index) Dimension() int { return x.idx.Dimension() }

// Metric returns the distance metric.
func (x *Index) Metric() Metric { return x.idx.Metric() }

// Len returns the number of live entries.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.idx.Len()
}

// Add inserts a batch of entries. Either every entry is added or, on error,
// none is. Duplicate ids are allowed; Get returns the most recent one.
func (x *Index) Add(ids []int64, vectors [][]float32) error {
	start := time.Now()

	x.mu.Lock()
	err := x.idx.Add(ids, vectors)
	x.mu.Unlock()

	err = translateError(err)
	x.opts.logger.LogAdd(context.Background(), len(ids), x.idx.Dimension(), err)
	x.opts.metricsCollector.RecordAdd(len(ids), time.Since(start), err)
	return err
}

// Remove deletes every entry carrying one of ids and returns how many
// entries were removed. Unknown ids are ignored.
func (x *Index) Remove(ids ...int64) int {
	start := time.Now()

	x.mu.Lock()
	n := x.idx.Remove(ids)
	x.mu.Unlock()

	x.opts.logger.LogRemove(context.Background(), len(ids), n)
	x.opts.metricsCollector.RecordRemove(n, time.Since(start))
	return n
}

// Get returns a copy of the most recently added live vector for id.
func (x *Index) Get(id int64) ([]float32, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	v, ok := x.idx.Get(id)
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// Search returns up to k nearest neighbours of query.
func (x *Index) Search(query []float32, k int) (Results, error) {
	res, _, err := x.SearchWithReport(query, k, nil)
	return res, err
}

// SearchFilter returns up to k nearest neighbours whose id passes filter.
// Fewer than k results, including none, is not an error.
func (x *Index) SearchFilter(query []float32, k int, filter Filter) (Results, error) {
	res, _, err := x.SearchWithReport(query, k, filter)
	return res, err
}

// SearchWithReport is SearchFilter plus a report on how the search ran. A
// nil filter accepts every entry.
func (x *Index) SearchWithReport(query []float32, k int, filter Filter) (Results, SearchReport, error) {
	start := time.Now()

	x.mu.RLock()
	res, report, err := x.idx.Search(query, k, index.Filter(filter))
	x.mu.RUnlock()

	err = translateError(err)
	x.opts.logger.LogSearch(context.Background(), k, len(res), report, err)
	x.opts.metricsCollector.RecordSearch(k, time.Since(start), report.Degraded, err)
	if err != nil {
		return nil, SearchReport{}, err
	}
	return res, report, nil
}

// BruteSearch runs an exhaustive scan regardless of the index kind. It is
// the ground truth approximate results can be compared against.
func (x *Index) BruteSearch(query []float32, k int, filter Filter) (Results, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var (
		res []SearchResult
		err error
	)
	switch idx := x.idx.(type) {
	case *hnsw.HNSW:
		res, err = idx.BruteSearch(query, k, index.Filter(filter))
	case *flat.Flat:
		res, err = idx.BruteSearch(query, k, index.Filter(filter))
	default:
		res, _, err = idx.Search(query, k, index.Filter(filter))
	}
	if err != nil {
		return nil, translateError(err)
	}
	return res, nil
}
