package index

// IDs returns the identifiers of results in order.
func IDs(results []SearchResult) []int64 {
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

// Distances returns the distances of results in order.
func Distances(results []SearchResult) []float64 {
	ds := make([]float64, len(results))
	for i, r := range results {
		ds[i] = r.Distance
	}
	return ds
}

// Accept reports whether filter admits id. A nil filter admits everything.
func (f Filter) Accept(id int64) bool {
	return f == nil || f(id)
}
