package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	assert.LessOrEqual(t, v[0][0], float32(1.0))
	assert.GreaterOrEqual(t, v[1][0], float32(0.0))
}

func TestUniformRangeVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformRangeVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.GreaterOrEqual(t, v[1][0], float32(-1.0))
	assert.Less(t, v[1][0], float32(1.0))
}

func TestUnitVectors(t *testing.T) {
	rng := NewRNG(4711)

	for _, vec := range rng.UnitVectors(8, 32) {
		var sum float64
		for _, val := range vec {
			sum += float64(val) * float64(val)
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	}
}

func TestReproducible(t *testing.T) {
	a := NewRNG(7).GaussianVectors(4, 4)
	b := NewRNG(7).GaussianVectors(4, 4)
	assert.Equal(t, a, b)

	rng := NewRNG(7)
	first := rng.Intn(1000)
	rng.Reset()
	assert.Equal(t, first, rng.Intn(1000))
	assert.Equal(t, int64(7), rng.Seed())
}

func TestClusteredVectors(t *testing.T) {
	v := NewRNG(4711).ClusteredVectors(20, 8, 4, 0.01)
	require.Len(t, v, 20)
	assert.Len(t, v[0], 8)
}

func TestExactTopK(t *testing.T) {
	l1 := func(a, b []float32) float64 {
		var s float64
		for i := range a {
			s += math.Abs(float64(a[i] - b[i]))
		}
		return s
	}
	ids := SequentialIDs(10, 4)
	assert.Equal(t, []int64{10, 11, 12, 13}, ids)

	got := ExactTopK([]float32{0}, ids, [][]float32{{3}, {1}, {-1}, {2}}, 3, l1)
	require.Len(t, got, 3)
	// 11 and 12 tie at distance 1; input order wins.
	assert.Equal(t, []Neighbor{{11, 1}, {12, 1}, {13, 2}}, got)
}

func TestComputeRecall(t *testing.T) {
	truth := []Neighbor{{1, 0}, {2, 0}, {3, 0}, {4, 0}}
	assert.Equal(t, 1.0, ComputeRecall(truth, []int64{4, 3, 2, 1}))
	assert.Equal(t, 0.5, ComputeRecall(truth, []int64{1, 2, 8, 9}))
	assert.Equal(t, 1.0, ComputeRecall(nil, nil))
	assert.Equal(t, 0.0, ComputeRecall(truth, nil))
}
