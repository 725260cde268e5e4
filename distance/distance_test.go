package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernels(t *testing.T) {
	tests := []struct {
		name     string
		metric   Metric
		a, b     []float32
		expected float64
	}{
		{"EuclideanSimple", Euclidean(), []float32{1, 2, 3}, []float32{4, 5, 6}, math.Sqrt(27)},
		{"EuclideanIdentical", Euclidean(), []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"ManhattanSimple", Manhattan(), []float32{1, 2, 3}, []float32{4, 5, 6}, 9},
		{"ManhattanMixed", Manhattan(), []float32{1, -1}, []float32{-1, 1}, 4},
		{"ChebyshevSimple", Chebyshev(), []float32{1, 2, 3}, []float32{4, 7, 6}, 5},
		{"CosineSameDirection", Cosine(), []float32{1, 2, 3}, []float32{2, 4, 6}, 0},
		{"CosineOrthogonal", Cosine(), []float32{1, 0}, []float32{0, 1}, 1},
		{"CosineOpposite", Cosine(), []float32{1, 0}, []float32{-1, 0}, 2},
		{"CosineZeroNorm", Cosine(), []float32{0, 0}, []float32{1, 1}, 1},
		{"Empty", Euclidean(), []float32{}, []float32{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.metric.Func()(tt.a, tt.b)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestMinkowski(t *testing.T) {
	t.Run("P3", func(t *testing.T) {
		m, err := Minkowski(3)
		require.NoError(t, err)

		fn := m.Func()
		zero := []float32{0, 0, 0}
		assert.InDelta(t, math.Cbrt(17), fn([]float32{1, 2, 2}, zero), 1e-9)
		assert.InDelta(t, math.Cbrt(36), fn([]float32{2, 3, 1}, zero), 1e-9)
	})

	t.Run("GeneralizesL1AndL2", func(t *testing.T) {
		a := []float32{0.5, -1.25, 3}
		b := []float32{2, 0.75, -1}

		m1, err := Minkowski(1)
		require.NoError(t, err)
		m2, err := Minkowski(2)
		require.NoError(t, err)

		assert.InDelta(t, Manhattan1(a, b), m1.Func()(a, b), 1e-9)
		assert.InDelta(t, Euclidean2(a, b), m2.Func()(a, b), 1e-9)
	})

	t.Run("FractionalP", func(t *testing.T) {
		m, err := Minkowski(0.5)
		require.NoError(t, err)
		// (1 + 1)^2 = 4
		assert.InDelta(t, 4.0, m.Func()([]float32{1, 1}, []float32{0, 0}), 1e-9)
	})

	t.Run("InvalidP", func(t *testing.T) {
		for _, p := range []float64{0, -1, math.NaN(), math.Inf(1)} {
			_, err := Minkowski(p)
			assert.ErrorIs(t, err, ErrInvalidMetric, "p=%v", p)
		}
	})
}

func TestSymmetry(t *testing.T) {
	a := []float32{0.1, 0.7, -2.5, 4}
	b := []float32{-3, 0.2, 1.5, 0}
	p3, err := Minkowski(3)
	require.NoError(t, err)

	for _, m := range []Metric{Euclidean(), Manhattan(), Cosine(), Chebyshev(), p3} {
		fn := m.Func()
		assert.InDelta(t, fn(a, b), fn(b, a), 1e-12, m.String())
		assert.GreaterOrEqual(t, fn(a, b), 0.0, m.String())
	}
}

func TestDoubleAccumulation(t *testing.T) {
	// A float32 accumulator drops the 1 once the sum passes 2^24.
	a := []float32{1e8, 1, 1e8}
	b := []float32{0, 0, 0}
	assert.Equal(t, 200000001.0, Manhattan1(a, b))
}

func TestMetric(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "Euclidean", Euclidean().String())
		assert.Equal(t, "Manhattan", Manhattan().String())
		assert.Equal(t, "Cosine", Cosine().String())
		assert.Equal(t, "Chebyshev", Chebyshev().String())
		assert.Equal(t, "Minkowski(p=3)", Metric{Kind: KindMinkowski, P: 3}.String())
		assert.Equal(t, "Unknown(99)", Kind(99).String())
	})

	t.Run("Validate", func(t *testing.T) {
		assert.NoError(t, Euclidean().Validate())
		assert.ErrorIs(t, Metric{Kind: 99}.Validate(), ErrInvalidMetric)
		assert.ErrorIs(t, Metric{Kind: KindMinkowski}.Validate(), ErrInvalidMetric)
	})

	t.Run("Parse", func(t *testing.T) {
		tests := []struct {
			in   string
			want Metric
		}{
			{"euclidean", Euclidean()},
			{"L2", Euclidean()},
			{"l1", Manhattan()},
			{" Cosine ", Cosine()},
			{"linf", Chebyshev()},
			{"minkowski:3", Metric{Kind: KindMinkowski, P: 3}},
		}
		for _, tt := range tests {
			got, err := Parse(tt.in)
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got, tt.in)
		}

		for _, bad := range []string{"hamming", "minkowski", "minkowski:x", "minkowski:-2"} {
			_, err := Parse(bad)
			assert.ErrorIs(t, err, ErrInvalidMetric, bad)
		}
	})
}

func BenchmarkEuclidean(b *testing.B) {
	x := make([]float32, 768)
	y := make([]float32, 768)
	for i := range x {
		x[i] = float32(i)
		y[i] = float32(i) * 0.5
	}
	fn := Euclidean().Func()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = fn(x, y)
	}
}
