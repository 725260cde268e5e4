// Package index defines the contract shared by the vector indexes and the
// pieces they have in common: result types, errors, top-k selection and the
// binary loader registry.
//
// Two implementations exist:
//
//   - flat: exact search by linear scan, O(n) per query, 100% recall
//   - hnsw: approximate search over a hierarchical navigable small world graph
//
// # Choosing an index
//
// Flat is the right default for small collections and whenever exactness
// matters. HNSW trades a little recall for sub-linear queries on large
// collections; tune it with M, EFConstruction and EFSearch.
//
// # Persistence
//
// Both indexes share one file layout: the persistence header, the entry table
// in insertion order, the tombstone bitmap and then an index specific section
// (empty for flat, the full graph for HNSW). Implementations register a
// BinaryLoader for their Kind from an init function.
package index
