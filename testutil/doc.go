// Package testutil provides testing utilities for annie.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random vectors, computing exact
// nearest neighbors, and verifying search recall.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.UniformVectors(1000, 128)   // uniform [0, 1)
//	vecs = rng.GaussianVectors(1000, 128)   // standard normal
//
// # Exact Search (Ground Truth)
//
//	truth := testutil.ExactTopK(query, ids, vecs, k, distance.Euclidean2)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(truth, approx)
package testutil
