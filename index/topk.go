package index

import (
	"github.com/hupe1980/annie/internal/queue"
	"github.com/hupe1980/annie/vectorstore"
)

// TopK keeps the k closest positions seen so far in a bounded max-heap.
// Equal distances rank by position, so earlier insertions win ties.
type TopK struct {
	k    int
	heap *queue.PriorityQueue
}

// NewTopK creates a collector for k results.
func NewTopK(k int) *TopK {
	return &TopK{k: k, heap: queue.NewMax(k)}
}

// Push offers a candidate and reports whether it was kept.
func (t *TopK) Push(pos uint32, dist float64) bool {
	return t.heap.PushBounded(queue.PriorityQueueItem{Node: pos, Distance: dist}, t.k)
}

// Len returns the number of collected results.
func (t *TopK) Len() int { return t.heap.Len() }

// Full reports whether k results have been collected.
func (t *TopK) Full() bool { return t.heap.Len() >= t.k }

// Worst returns the largest collected distance.
func (t *TopK) Worst() (float64, bool) {
	top, ok := t.heap.TopItem()
	return top.Distance, ok
}

// Results drains the collector into ascending results, resolving positions
// to ids through s.
func (t *TopK) Results(s *vectorstore.Store) []SearchResult {
	items := t.heap.Drain()
	out := make([]SearchResult, len(items))
	for i, it := range items {
		out[i] = SearchResult{ID: s.ID(it.Node), Distance: it.Distance}
	}
	return out
}
