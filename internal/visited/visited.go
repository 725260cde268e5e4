// Package visited provides a resettable visited set for graph traversal.
package visited

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
)

// VisitedSet tracks visited nodes using a bitset and a dirty list for fast reset.
type VisitedSet struct {
	bits  *bitset.BitSet
	dirty []uint32
}

// New creates a new visited set sized for capacity nodes.
func New(capacity int) *VisitedSet {
	return &VisitedSet{
		bits:  bitset.New(uint(capacity)),
		dirty: make([]uint32, 0, 128),
	}
}

// Visit marks a node as visited and reports whether it was newly marked.
func (v *VisitedSet) Visit(id uint32) bool {
	if v.bits.Test(uint(id)) {
		return false
	}
	v.bits.Set(uint(id))
	v.dirty = append(v.dirty, id)
	return true
}

// Visited returns true if the node has been visited.
func (v *VisitedSet) Visited(id uint32) bool {
	return v.bits.Test(uint(id))
}

// Count returns the number of nodes visited since the last reset.
func (v *VisitedSet) Count() int { return len(v.dirty) }

// Reset clears the visited status for all nodes visited in the current session.
func (v *VisitedSet) Reset() {
	// Sparse sessions clear only the dirty bits; dense ones wipe the words.
	if uint(len(v.dirty))*64 > v.bits.Len() {
		v.bits.ClearAll()
	} else {
		for _, id := range v.dirty {
			v.bits.Clear(uint(id))
		}
	}
	v.dirty = v.dirty[:0]
}

// Pool recycles visited sets between searches.
type Pool struct {
	p sync.Pool
}

// NewPool returns a pool whose fresh sets are sized by capacity.
func NewPool(capacity func() int) *Pool {
	return &Pool{p: sync.Pool{
		New: func() any { return New(capacity()) },
	}}
}

// Get returns a clean visited set.
func (p *Pool) Get() *VisitedSet {
	return p.p.Get().(*VisitedSet)
}

// Put resets v and returns it to the pool.
func (p *Pool) Put(v *VisitedSet) {
	v.Reset()
	p.p.Put(v)
}
