package flat

// Stats summarizes the index.
type Stats struct {
	Dimension int
	Metric    string
	Live      int
	Removed   int
}

// Stats returns a snapshot of index statistics.
func (f *Flat) Stats() Stats {
	return Stats{
		Dimension: f.opts.Dimension,
		Metric:    f.opts.Metric.String(),
		Live:      f.store.Len(),
		Removed:   f.store.Cap() - f.store.Len(),
	}
}
