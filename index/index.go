package index

import (
	"fmt"

	"github.com/hupe1980/annie/distance"
	"github.com/hupe1980/annie/persistence"
	"github.com/hupe1980/annie/vectorstore"
)

// Kind identifies an index implementation. The value is persisted.
type Kind uint8

const (
	KindFlat Kind = 1
	KindHNSW Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindFlat:
		return "Flat"
	case KindHNSW:
		return "HNSW"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// SearchResult represents a search result.
type SearchResult struct {
	// ID is the identifier of the search result.
	ID int64

	// Distance is the distance between the query vector and the result vector.
	Distance float64
}

// Filter reports whether an entry id may appear in results.
// It must be pure; it is evaluated at most once per candidate and query.
type Filter func(id int64) bool

// SearchReport carries non-fatal details about a search.
type SearchReport struct {
	// EF is the beam width of the final search pass (0 for exact search).
	EF int
	// Expansions counts how often a filtered search widened its beam.
	Expansions int
	// Degraded is set when a filtered search hit its widening bound while
	// fewer than k accepted results were found.
	Degraded bool
}

// Index represents an index for vector search.
//
// Implementations are not safe for concurrent mutation; callers serialize
// writes and may run searches concurrently with each other.
type Index interface {
	// Kind returns the persisted implementation tag.
	Kind() Kind

	// Dimension returns the vector length accepted by the index.
	Dimension() int

	// Metric returns the distance metric.
	Metric() distance.Metric

	// Len returns the number of live entries.
	Len() int

	// Add inserts a batch atomically: the whole batch is validated first.
	Add(ids []int64, vectors [][]float32) error

	// Remove deletes every entry carrying one of ids and returns the count.
	Remove(ids []int64) int

	// Get returns the most recently added live vector for id.
	Get(id int64) ([]float32, bool)

	// Search returns up to k results ordered by ascending distance.
	// A nil filter accepts every entry.
	Search(query []float32, k int, filter Filter) ([]SearchResult, SearchReport, error)

	// Store exposes the underlying entries for persistence.
	Store() *vectorstore.Store

	// EncodeBinary writes the index specific section that follows the
	// shared entry table.
	EncodeBinary(enc *persistence.Encoder) error
}
