package index

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/annie/distance"
	"github.com/hupe1980/annie/persistence"
	"github.com/hupe1980/annie/vectorstore"
)

// BinaryLoader reconstructs an index from its restored entries and the
// index specific section read from dec.
type BinaryLoader func(metric distance.Metric, store *vectorstore.Store, dec *persistence.Decoder) (Index, error)

var (
	binaryLoaderMu sync.RWMutex
	binaryLoaders  = map[Kind]BinaryLoader{}
)

// RegisterBinaryLoader registers a loader for a specific on-disk index type.
//
// Index implementations should typically call this from an init() function.
func RegisterBinaryLoader(kind Kind, loader BinaryLoader) {
	binaryLoaderMu.Lock()
	defer binaryLoaderMu.Unlock()
	binaryLoaders[kind] = loader
}

func lookupBinaryLoader(kind Kind) (BinaryLoader, bool) {
	binaryLoaderMu.RLock()
	defer binaryLoaderMu.RUnlock()
	loader, ok := binaryLoaders[kind]
	return loader, ok
}

// WriteBinary writes idx to w in the persistence format.
func WriteBinary(w io.Writer, idx Index, compression persistence.Compression) error {
	s := idx.Store()
	ids, data := s.Raw()
	dim := s.Dimension()
	m := idx.Metric()

	h := persistence.Header{
		IndexType:   uint8(idx.Kind()),
		MetricKind:  uint8(m.Kind),
		Compression: compression,
		Dimension:   uint32(dim),
		MinkowskiP:  m.P,
		SlotCount:   uint64(len(ids)),
		LiveCount:   uint64(s.Len()),
	}
	if s.HasDeleted() {
		h.Flags |= persistence.FlagTombstones
	}

	pw, err := persistence.NewWriter(w, h)
	if err != nil {
		return err
	}

	for i, id := range ids {
		pw.Int64(id)
		pw.Float32s(data[i*dim : (i+1)*dim])
	}

	tombstones, err := s.Tombstones().ToBytes()
	if err != nil {
		_ = pw.Close()
		return fmt.Errorf("failed to encode tombstones: %w", err)
	}
	pw.Bytes(tombstones)

	if err := idx.EncodeBinary(pw.Encoder); err != nil {
		_ = pw.Close()
		return err
	}
	return pw.Close()
}

// ReadBinary reads an index written by WriteBinary, dispatching on the
// persisted index type to a registered loader.
func ReadBinary(r io.Reader) (Index, error) {
	pr, err := persistence.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer pr.Release()
	h := pr.Header

	m := distance.Metric{Kind: distance.Kind(h.MetricKind), P: h.MinkowskiP}
	if m.Kind != distance.KindMinkowski && m.P != 0 {
		return nil, fmt.Errorf("%w: unexpected metric parameter %g for %s", ErrCorruptFormat, m.P, m.Kind)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFormat, err)
	}
	if h.Dimension == 0 || h.Dimension > math.MaxInt32 {
		return nil, fmt.Errorf("%w: invalid dimension %d", ErrCorruptFormat, h.Dimension)
	}

	loader, ok := lookupBinaryLoader(Kind(h.IndexType))
	if !ok {
		return nil, fmt.Errorf("%w: unknown index type %d", ErrCorruptFormat, h.IndexType)
	}

	store, err := decodeStore(pr.Decoder, h)
	if err != nil {
		return nil, err
	}

	idx, err := loader(m, store, pr.Decoder)
	if err != nil {
		if pr.Err() != nil {
			return nil, pr.Err()
		}
		return nil, err
	}
	if err := pr.Close(); err != nil {
		return nil, err
	}
	return idx, nil
}

// decodeStore reads the entry table and tombstones. Buffers grow with the
// data actually present so a forged slot count cannot force a huge
// allocation up front.
func decodeStore(dec *persistence.Decoder, h persistence.Header) (*vectorstore.Store, error) {
	if h.SlotCount > math.MaxUint32 {
		return nil, fmt.Errorf("%w: slot count %d out of range", ErrCorruptFormat, h.SlotCount)
	}
	n := int(h.SlotCount)
	dim := int(h.Dimension)

	const initial = 1 << 14
	ids := make([]int64, 0, min(n, initial))
	data := make([]float32, 0, min(n, initial)*dim)
	for range n {
		ids = append(ids, dec.Int64())
		off := len(data)
		data = slices.Grow(data, dim)[:off+dim]
		dec.Float32sInto(data[off:])
		if dec.Err() != nil {
			return nil, dec.Err()
		}
	}

	raw := dec.Bytes(math.MaxInt32)
	if dec.Err() != nil {
		return nil, dec.Err()
	}
	dead := roaring.New()
	if err := dead.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("%w: tombstones: %v", ErrCorruptFormat, err)
	}
	if hasDead := !dead.IsEmpty(); hasDead != (h.Flags&persistence.FlagTombstones != 0) {
		return nil, fmt.Errorf("%w: tombstone flag does not match bitmap", ErrCorruptFormat)
	}

	store, err := vectorstore.Restore(dim, ids, data, dead)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFormat, err)
	}
	if uint64(store.Len()) != h.LiveCount {
		return nil, fmt.Errorf("%w: live count %d, header says %d", ErrCorruptFormat, store.Len(), h.LiveCount)
	}
	return store, nil
}

// IsCorrupt reports whether err stems from malformed persisted data.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorruptFormat)
}
