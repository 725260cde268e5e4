// Package distance provides the vector distance metrics used by annie indexes.
//
// All kernels take two float32 vectors of equal length and accumulate in
// float64, so results are stable even for high-dimensional inputs.
//
// # Supported Metrics
//
//   - Euclidean: L2 distance, sqrt(Σ(aᵢ−bᵢ)²)
//   - Manhattan: L1 distance, Σ|aᵢ−bᵢ|
//   - Chebyshev: L∞ distance, max|aᵢ−bᵢ|
//   - Minkowski: (Σ|aᵢ−bᵢ|^p)^(1/p) for p > 0
//   - Cosine: 1 − cosine similarity
//
// # Usage
//
//	m, _ := distance.Minkowski(3)
//	fn := m.Func()
//	d := fn(a, b)
//
// Length checks are the caller's responsibility; indexes validate vector
// dimensions once on insert and query so the kernels stay branch-free.
package distance
