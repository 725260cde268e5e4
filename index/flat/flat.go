// Package flat provides an exact nearest neighbor index backed by a linear scan.
package flat

import (
	"fmt"

	"github.com/hupe1980/annie/distance"
	"github.com/hupe1980/annie/index"
	"github.com/hupe1980/annie/persistence"
	"github.com/hupe1980/annie/vectorstore"
)

// Compile-time check to ensure Flat satisfies the index interface.
var _ index.Index = (*Flat)(nil)

// Options contains configuration options for the flat index.
type Options struct {
	// Dimension is the fixed vector dimensionality for this index.
	// It must be > 0 and is enforced for all inserts and searches.
	Dimension int

	// Metric is the distance used for ranking.
	Metric distance.Metric
}

// DefaultOptions contains the default configuration options for the flat index.
var DefaultOptions = Options{
	Dimension: 0,
	Metric:    distance.Euclidean(),
}

// Flat represents a flat index for vector storage and search.
type Flat struct {
	opts  Options
	dist  distance.Func
	store *vectorstore.Store
}

// New creates a new flat index.
func New(optFns ...func(o *Options)) (*Flat, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be > 0, got %d", index.ErrInvalidParameter, opts.Dimension)
	}
	if err := opts.Metric.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", index.ErrInvalidParameter, err)
	}

	store, err := vectorstore.New(opts.Dimension)
	if err != nil {
		return nil, index.StoreError(err)
	}
	return newWithStore(opts.Metric, store), nil
}

func newWithStore(metric distance.Metric, store *vectorstore.Store) *Flat {
	return &Flat{
		opts:  Options{Dimension: store.Dimension(), Metric: metric},
		dist:  metric.Func(),
		store: store,
	}
}

// Kind implements index.Index.
func (f *Flat) Kind() index.Kind { return index.KindFlat }

// Dimension returns the vector dimensionality.
func (f *Flat) Dimension() int { return f.opts.Dimension }

// Metric returns the distance metric.
func (f *Flat) Metric() distance.Metric { return f.opts.Metric }

// Len returns the number of live entries.
func (f *Flat) Len() int { return f.store.Len() }

// Store exposes the entry storage.
func (f *Flat) Store() *vectorstore.Store { return f.store }

// Add appends a batch of entries. Nothing is written if any vector is invalid.
func (f *Flat) Add(ids []int64, vectors [][]float32) error {
	_, err := f.store.Add(ids, vectors)
	return index.StoreError(err)
}

// Remove deletes every entry carrying one of ids.
func (f *Flat) Remove(ids []int64) int { return f.store.Remove(ids) }

// Get returns the most recently added live vector for id.
func (f *Flat) Get(id int64) ([]float32, bool) { return f.store.Get(id) }

// Search returns the exact k nearest entries accepted by filter.
// The filter runs before the distance computation, once per live entry.
func (f *Flat) Search(query []float32, k int, filter index.Filter) ([]index.SearchResult, index.SearchReport, error) {
	res, err := f.BruteSearch(query, k, filter)
	return res, index.SearchReport{}, err
}

// BruteSearch performs an exhaustive scan.
func (f *Flat) BruteSearch(query []float32, k int, filter index.Filter) ([]index.SearchResult, error) {
	if err := index.ValidateSearch(f.store, query, k); err != nil {
		return nil, err
	}

	score := index.NewScorer(f.dist, f.opts.Metric, f.store, query)
	top := index.NewTopK(min(k, f.store.Len()))
	for pos, e := range f.store.All() {
		if !filter.Accept(e.ID) {
			continue
		}
		top.Push(pos, score(pos))
	}
	return top.Results(f.store), nil
}

// EncodeBinary implements index.Index. The flat index has no state beyond
// the shared entry table.
func (f *Flat) EncodeBinary(enc *persistence.Encoder) error {
	return enc.Err()
}
