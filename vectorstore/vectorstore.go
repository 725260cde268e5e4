// Package vectorstore holds the (id, embedding) entries owned by an index.
//
// Entries live in one contiguous []float32 arena in insertion order. Each
// entry has a dense position that never changes, which lets graph indexes
// refer to entries by position. Removal tombstones a position instead of
// compacting the arena.
package vectorstore

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/annie/distance"
)

var (
	// ErrWrongDimension is returned when a vector doesn't match the store dimension.
	ErrWrongDimension = errors.New("wrong vector dimension")

	// ErrLengthMismatch is returned when ids and vectors have different lengths.
	ErrLengthMismatch = errors.New("ids and vectors length mismatch")

	// ErrInvalidDimension is returned for a non-positive store dimension.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrFull is returned when the store would exceed the addressable position range.
	ErrFull = errors.New("store is full")
)

// DimensionError reports the offending vector of a rejected batch.
type DimensionError struct {
	Index    int // position of the vector within the batch
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("vector %d: expected dimension %d, got %d", e.Index, e.Expected, e.Actual)
}

func (e *DimensionError) Unwrap() error { return ErrWrongDimension }

// Entry is a stored vector and its identifier.
type Entry struct {
	ID     int64
	Vector []float32
}

// Store is the canonical entry storage of an index.
//
// Thread safety: concurrent reads are safe; writes require external synchronization.
type Store struct {
	dim   int
	data  []float32 // data[pos*dim : (pos+1)*dim]
	ids   []int64
	norms []float64 // squared L2 norm per position
	byID  map[int64]uint32
	dead  *roaring.Bitmap
	live  int
}

// New creates an empty store for vectors of the given dimension.
func New(dim int) (*Store, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}
	return &Store{
		dim:  dim,
		byID: make(map[int64]uint32),
		dead: roaring.New(),
	}, nil
}

// Dimension returns the vector dimensionality.
func (s *Store) Dimension() int { return s.dim }

// Len returns the number of live entries.
func (s *Store) Len() int { return s.live }

// IsEmpty reports whether the store has no live entries.
func (s *Store) IsEmpty() bool { return s.live == 0 }

// Cap returns the number of allocated positions, including tombstones.
func (s *Store) Cap() int { return len(s.ids) }

// Validate checks a batch without mutating the store.
func (s *Store) Validate(ids []int64, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("%w: %d ids, %d vectors", ErrLengthMismatch, len(ids), len(vectors))
	}
	for i, v := range vectors {
		if len(v) != s.dim {
			return &DimensionError{Index: i, Expected: s.dim, Actual: len(v)}
		}
	}
	if uint64(len(s.ids))+uint64(len(ids)) > math.MaxUint32 {
		return ErrFull
	}
	return nil
}

// Add appends a batch of entries and returns the position of the first one.
// The whole batch is validated before any entry is written.
func (s *Store) Add(ids []int64, vectors [][]float32) (uint32, error) {
	if err := s.Validate(ids, vectors); err != nil {
		return 0, err
	}

	first := uint32(len(s.ids))
	s.data = growFloat32(s.data, len(vectors)*s.dim)
	for i, v := range vectors {
		pos := first + uint32(i)
		s.data = append(s.data, v...)
		s.ids = append(s.ids, ids[i])
		s.norms = append(s.norms, distance.NormSquared(v))
		s.byID[ids[i]] = pos
	}
	s.live += len(ids)
	return first, nil
}

func growFloat32(s []float32, n int) []float32 {
	if cap(s)-len(s) >= n {
		return s
	}
	grown := make([]float32, len(s), max(2*cap(s), len(s)+n))
	copy(grown, s)
	return grown
}

// Get returns the most recently added live vector with the given id.
// The returned slice aliases internal memory; do not modify.
func (s *Store) Get(id int64) ([]float32, bool) {
	pos, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return s.Vector(pos), true
}

// Position returns the position of the most recent live entry for id.
func (s *Store) Position(id int64) (uint32, bool) {
	pos, ok := s.byID[id]
	return pos, ok
}

// Vector returns the vector stored at pos, live or not.
func (s *Store) Vector(pos uint32) []float32 {
	off := int(pos) * s.dim
	return s.data[off : off+s.dim : off+s.dim]
}

// ID returns the identifier stored at pos.
func (s *Store) ID(pos uint32) int64 { return s.ids[pos] }

// NormSq returns the cached squared L2 norm of the vector at pos.
func (s *Store) NormSq(pos uint32) float64 { return s.norms[pos] }

// Deleted reports whether pos has been removed.
func (s *Store) Deleted(pos uint32) bool { return s.dead.Contains(pos) }

// HasDeleted reports whether any position is tombstoned.
func (s *Store) HasDeleted() bool { return !s.dead.IsEmpty() }

// Remove tombstones every live entry carrying one of the given ids and
// returns the number of entries removed.
func (s *Store) Remove(ids []int64) int {
	if len(ids) == 0 || s.live == 0 {
		return 0
	}
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.byID[id]; ok {
			drop[id] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return 0
	}

	removed := 0
	for pos, id := range s.ids {
		if _, ok := drop[id]; !ok {
			continue
		}
		if s.dead.CheckedAdd(uint32(pos)) {
			removed++
		}
	}
	for id := range drop {
		delete(s.byID, id)
	}
	s.live -= removed
	return removed
}

// All iterates over live entries in insertion order.
func (s *Store) All() iter.Seq2[uint32, Entry] {
	return func(yield func(uint32, Entry) bool) {
		for pos := range s.ids {
			p := uint32(pos)
			if s.dead.Contains(p) {
				continue
			}
			if !yield(p, Entry{ID: s.ids[p], Vector: s.Vector(p)}) {
				return
			}
		}
	}
}

// Tombstones returns a copy of the removed-position bitmap.
func (s *Store) Tombstones() *roaring.Bitmap {
	return s.dead.Clone()
}

// Restore rebuilds a store from persisted state: every entry in insertion
// order plus the removed-position bitmap.
func Restore(dim int, ids []int64, data []float32, dead *roaring.Bitmap) (*Store, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}
	if len(data) != len(ids)*dim {
		return nil, fmt.Errorf("%w: %d values for %d entries", ErrWrongDimension, len(data), len(ids))
	}
	if dead == nil {
		dead = roaring.New()
	}
	if !dead.IsEmpty() && uint64(dead.Maximum()) >= uint64(len(ids)) {
		return nil, fmt.Errorf("tombstone %d out of range for %d entries", dead.Maximum(), len(ids))
	}

	s := &Store{
		dim:   dim,
		data:  data,
		ids:   ids,
		norms: make([]float64, len(ids)),
		byID:  make(map[int64]uint32, len(ids)),
		dead:  dead,
	}
	for pos, id := range ids {
		p := uint32(pos)
		s.norms[p] = distance.NormSquared(s.Vector(p))
		if dead.Contains(p) {
			continue
		}
		s.byID[id] = p
		s.live++
	}
	return s, nil
}

// Raw exposes the backing id and vector slices for serialization.
// Callers must not modify them.
func (s *Store) Raw() (ids []int64, data []float32) {
	return s.ids, s.data
}
