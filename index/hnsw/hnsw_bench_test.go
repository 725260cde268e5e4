package hnsw

import (
	"testing"

	"github.com/hupe1980/annie/testutil"
)

// BenchmarkInsertSequential measures sequential insert performance
func BenchmarkInsertSequential(b *testing.B) {
	vectors := testutil.NewRNG(42).UniformVectors(1000, 128)
	ids := testutil.SequentialIDs(0, len(vectors))

	b.ReportAllocs()
	for b.Loop() {
		h, err := New(func(o *Options) {
			o.Dimension = 128
			o.M = 16
			o.EFConstruction = 200
		})
		if err != nil {
			b.Fatal(err)
		}
		if err := h.Add(ids, vectors); err != nil {
			b.Fatalf("Add failed: %v", err)
		}
	}
}

func BenchmarkSearch(b *testing.B) {
	rng := testutil.NewRNG(42)
	vectors := rng.UniformVectors(10000, 128)
	queries := rng.UniformVectors(100, 128)

	h, err := New(func(o *Options) {
		o.Dimension = 128
		o.M = 16
		o.EFConstruction = 200
	})
	if err != nil {
		b.Fatal(err)
	}
	if err := h.Add(testutil.SequentialIDs(0, len(vectors)), vectors); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; b.Loop(); i++ {
		if _, _, err := h.Search(queries[i%len(queries)], 10, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearchFiltered(b *testing.B) {
	rng := testutil.NewRNG(42)
	vectors := rng.UniformVectors(10000, 64)
	queries := rng.UniformVectors(100, 64)

	h, err := New(func(o *Options) { o.Dimension = 64 })
	if err != nil {
		b.Fatal(err)
	}
	if err := h.Add(testutil.SequentialIDs(0, len(vectors)), vectors); err != nil {
		b.Fatal(err)
	}
	tenth := func(id int64) bool { return id%10 == 0 }

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; b.Loop(); i++ {
		if _, _, err := h.Search(queries[i%len(queries)], 10, tenth); err != nil {
			b.Fatal(err)
		}
	}
}
