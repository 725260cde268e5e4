package hnsw

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/hupe1980/annie/distance"
	"github.com/hupe1980/annie/index"
	"github.com/hupe1980/annie/persistence"
	"github.com/hupe1980/annie/testutil"
	"github.com/hupe1980/annie/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(21)
	vectors := rng.UniformRangeVectors(500, 8)
	ids := testutil.SequentialIDs(1, len(vectors))
	queries := rng.UniformRangeVectors(20, 8)

	for _, c := range []persistence.Compression{persistence.CompressionNone, persistence.CompressionLZ4, persistence.CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			h := newHNSW(t, 8, func(o *Options) {
				o.Metric = distance.Cosine()
				o.M = 8
				o.EFSearch = 40
			})
			require.NoError(t, h.Add(ids, vectors))
			h.Remove([]int64{3, 50, 51})

			var buf bytes.Buffer
			require.NoError(t, index.WriteBinary(&buf, h, c))

			loaded, err := index.ReadBinary(&buf)
			require.NoError(t, err)
			require.IsType(t, &HNSW{}, loaded)

			lh := loaded.(*HNSW)
			assert.Equal(t, h.Stats(), lh.Stats())
			assert.Equal(t, h.opts.EFSearch, lh.opts.EFSearch)

			odd := func(id int64) bool { return id%2 == 1 }
			for _, q := range queries {
				want, wantReport, err := h.Search(q, 5, nil)
				require.NoError(t, err)
				got, gotReport, err := lh.Search(q, 5, nil)
				require.NoError(t, err)
				assert.Equal(t, want, got)
				assert.Equal(t, wantReport, gotReport)

				want, _, err = h.Search(q, 5, odd)
				require.NoError(t, err)
				got, _, err = lh.Search(q, 5, odd)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestBinaryInsertAfterLoad(t *testing.T) {
	rng := testutil.NewRNG(8)
	first := rng.UniformVectors(200, 4)
	second := rng.UniformVectors(100, 4)

	h := newHNSW(t, 4)
	require.NoError(t, h.Add(testutil.SequentialIDs(0, 200), first))

	var buf bytes.Buffer
	require.NoError(t, index.WriteBinary(&buf, h, persistence.CompressionNone))
	loaded, err := index.ReadBinary(&buf)
	require.NoError(t, err)

	// The level generator resumes where it stopped, so both graphs grow alike.
	require.NoError(t, h.Add(testutil.SequentialIDs(200, 100), second))
	require.NoError(t, loaded.Add(testutil.SequentialIDs(200, 100), second))
	assert.Equal(t, h.Stats(), loaded.(*HNSW).Stats())

	for _, q := range rng.UniformVectors(10, 4) {
		want, _, err := h.Search(q, 10, nil)
		require.NoError(t, err)
		got, _, err := loaded.Search(q, 10, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestBinarySaveLoadFile(t *testing.T) {
	h := newHNSW(t, 4)
	require.NoError(t, h.Add(testutil.SequentialIDs(0, 50), testutil.NewRNG(2).UniformVectors(50, 4)))

	path := filepath.Join(t.TempDir(), "graph.annie")
	require.NoError(t, persistence.SaveToFile(path, func(w io.Writer) error {
		return index.WriteBinary(w, h, persistence.CompressionZstd)
	}))

	var loaded index.Index
	require.NoError(t, persistence.LoadFromFile(path, func(r io.Reader) error {
		var err error
		loaded, err = index.ReadBinary(r)
		return err
	}))
	assert.Equal(t, 50, loaded.Len())
	assert.Equal(t, index.KindHNSW, loaded.Kind())
}

func TestBinaryTruncated(t *testing.T) {
	h := newHNSW(t, 4)
	require.NoError(t, h.Add(testutil.SequentialIDs(0, 30), testutil.NewRNG(1).UniformVectors(30, 4)))

	var buf bytes.Buffer
	require.NoError(t, index.WriteBinary(&buf, h, persistence.CompressionNone))

	data := buf.Bytes()
	for _, n := range []int{persistence.HeaderSize + 10, len(data) / 2, len(data) - 20, len(data) - 1} {
		_, err := index.ReadBinary(bytes.NewReader(data[:n]))
		assert.ErrorIs(t, err, index.ErrCorruptFormat, "length %d", n)
	}
}

func TestBinaryCorruptDrawCount(t *testing.T) {
	h := newHNSW(t, 4)
	require.NoError(t, h.Add(testutil.SequentialIDs(0, 10), testutil.NewRNG(2).UniformVectors(10, 4)))

	var file, graph bytes.Buffer
	require.NoError(t, index.WriteBinary(&file, h, persistence.CompressionNone))
	require.NoError(t, h.encodeGraph(persistence.NewEncoder(&graph)))

	// The graph section sits right before the 4 byte checksum. The draw
	// count follows M, efConstruction, efSearch, heuristic, expansion and seed.
	data := file.Bytes()
	drawsAt := len(data) - 4 - graph.Len() + 3*4 + 1 + 4 + 8
	require.Equal(t, uint8(10), data[drawsAt])
	data[drawsAt+7] = 0x10

	_, err := index.ReadBinary(bytes.NewReader(data))
	assert.ErrorIs(t, err, index.ErrCorruptFormat)
}

func TestDecodeGraphInvalid(t *testing.T) {
	store, err := vectorstore.New(2)
	require.NoError(t, err)
	_, err = store.Add([]int64{1, 2}, [][]float32{{0, 0}, {1, 1}})
	require.NoError(t, err)

	type graph struct {
		m, count   uint32
		draws      uint64
		maxLevel   uint8
		entryPoint uint32
		levels     []uint8
		links      [][]uint32
	}
	valid := graph{m: 4, count: 2, draws: 2, levels: []uint8{0, 0}, links: [][]uint32{{1}, {0}}}

	encode := func(g graph) *persistence.Decoder {
		var buf bytes.Buffer
		enc := persistence.NewEncoder(&buf)
		enc.Uint32(g.m)
		enc.Uint32(10) // efConstruction
		enc.Uint32(10) // efSearch
		enc.Bool(true)
		enc.Uint32(2) // expansion
		enc.Int64(1)
		enc.Uint64(g.draws)
		enc.Uint32(g.count)
		enc.Uint8(g.maxLevel)
		enc.Uint32(g.entryPoint)
		for i, level := range g.levels {
			enc.Uint8(level)
			enc.Uint32s(g.links[i])
		}
		require.NoError(t, enc.Err())
		return persistence.NewDecoder(&buf)
	}

	h, err := decodeGraph(distance.Euclidean(), store, encode(valid))
	require.NoError(t, err)
	assert.Len(t, h.nodes, 2)

	tests := map[string]func(g *graph){
		"ZeroM":           func(g *graph) { g.m = 0 },
		"CountMismatch":   func(g *graph) { g.count = 3 },
		"DrawsMismatch":   func(g *graph) { g.draws = 1 },
		"DrawsCorrupt":    func(g *graph) { g.draws = 1 << 60 },
		"EntryOutOfRange": func(g *graph) { g.entryPoint = 7 },
		"LinkOutOfRange":  func(g *graph) { g.links = [][]uint32{{9}, {0}} },
		"LevelAboveMax":   func(g *graph) { g.levels = []uint8{1, 0} },
		"EntryNotOnTop":   func(g *graph) { g.maxLevel = 1 },
		"TooManyLinks":    func(g *graph) { g.links = [][]uint32{make([]uint32, 100), {0}} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			g := valid
			mutate(&g)
			_, err := decodeGraph(distance.Euclidean(), store, encode(g))
			assert.ErrorIs(t, err, persistence.ErrCorruptFormat)
		})
	}
}
