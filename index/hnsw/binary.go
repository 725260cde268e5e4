package hnsw

import (
	"math/rand"

	"github.com/hupe1980/annie/distance"
	"github.com/hupe1980/annie/index"
	"github.com/hupe1980/annie/persistence"
	"github.com/hupe1980/annie/vectorstore"
)

func init() {
	index.RegisterBinaryLoader(index.KindHNSW, func(metric distance.Metric, store *vectorstore.Store, dec *persistence.Decoder) (index.Index, error) {
		return decodeGraph(metric, store, dec)
	})
}

// encodeGraph writes the parameters, the level generator state and the
// adjacency lists. Node i always corresponds to store position i.
func (h *HNSW) encodeGraph(enc *persistence.Encoder) error {
	enc.Uint32(uint32(h.opts.M))
	enc.Uint32(uint32(h.opts.EFConstruction))
	enc.Uint32(uint32(h.opts.EFSearch))
	enc.Bool(h.opts.Heuristic)
	enc.Uint32(uint32(h.opts.MaxFilterExpansion))

	enc.Int64(h.seed)
	enc.Uint64(h.draws)

	enc.Uint32(uint32(len(h.nodes)))
	enc.Uint8(uint8(h.maxLevel))
	enc.Uint32(h.entryPoint)

	for _, n := range h.nodes {
		enc.Uint8(uint8(n.level))
		for _, links := range n.links {
			enc.Uint32s(links)
		}
	}
	return enc.Err()
}

func decodeGraph(metric distance.Metric, store *vectorstore.Store, dec *persistence.Decoder) (*HNSW, error) {
	opts := DefaultOptions
	opts.Dimension = store.Dimension()
	opts.Metric = metric
	opts.M = int(dec.Uint32())
	opts.EFConstruction = int(dec.Uint32())
	opts.EFSearch = int(dec.Uint32())
	opts.Heuristic = dec.Bool()
	opts.MaxFilterExpansion = int(dec.Uint32())

	seed := dec.Int64()
	draws := dec.Uint64()

	count := int(dec.Uint32())
	maxLevel := int(dec.Uint8())
	entryPoint := dec.Uint32()
	if err := dec.Err(); err != nil {
		return nil, err
	}

	if opts.M < minimumM || opts.EFConstruction <= 0 || opts.EFSearch <= 0 || opts.MaxFilterExpansion < 1 {
		dec.Failf("invalid graph parameters M=%d efConstruction=%d efSearch=%d expansion=%d",
			opts.M, opts.EFConstruction, opts.EFSearch, opts.MaxFilterExpansion)
		return nil, dec.Err()
	}
	if count != store.Cap() {
		dec.Failf("graph has %d nodes, store has %d entries", count, store.Cap())
		return nil, dec.Err()
	}
	if maxLevel > maxLevelLimit {
		dec.Failf("max level %d exceeds %d", maxLevel, maxLevelLimit)
		return nil, dec.Err()
	}
	// Every insert draws exactly one level.
	if draws != uint64(count) {
		dec.Failf("level draw count %d does not match %d nodes", draws, count)
		return nil, dec.Err()
	}
	if count > 0 && uint64(entryPoint) >= uint64(count) {
		dec.Failf("entry point %d out of range", entryPoint)
		return nil, dec.Err()
	}

	h := newWithStore(opts, store, seed)
	limit := max(h.maxConnectionsLayer0, h.maxConnectionsPerLayer)

	h.nodes = make([]node, 0, min(count, 1<<16))
	for i := 0; i < count; i++ {
		level := int(dec.Uint8())
		if level > maxLevel {
			dec.Failf("node %d: level %d exceeds max level %d", i, level, maxLevel)
			return nil, dec.Err()
		}
		n := node{level: level, links: make([][]uint32, level+1)}
		for l := 0; l <= level; l++ {
			n.links[l] = dec.Uint32s(limit)
		}
		if err := dec.Err(); err != nil {
			return nil, err
		}
		h.nodes = append(h.nodes, n)
	}

	// Links must point at existing nodes that live on the same layer.
	for i, n := range h.nodes {
		for l, links := range n.links {
			for _, target := range links {
				if uint64(target) >= uint64(count) || h.nodes[target].level < l {
					dec.Failf("node %d layer %d: invalid link to %d", i, l, target)
					return nil, dec.Err()
				}
			}
		}
	}

	if count > 0 {
		if h.nodes[entryPoint].level != maxLevel {
			dec.Failf("entry point level %d does not match max level %d", h.nodes[entryPoint].level, maxLevel)
			return nil, dec.Err()
		}
		h.entryPoint = entryPoint
		h.maxLevel = maxLevel
	}

	// Replay the level generator so later inserts draw the same levels as
	// they would have without the round trip.
	h.rng = rand.New(rand.NewSource(seed))
	for i := uint64(0); i < draws; i++ {
		h.rng.Float64()
	}
	h.draws = draws

	return h, nil
}
