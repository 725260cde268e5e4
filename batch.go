package annie

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/annie/index"
)

// BatchResult holds the outcome of one query of a batch.
type BatchResult struct {
	Results Results
	Report  SearchReport
	// Err is set when this query failed, e.g. with a dimension mismatch.
	Err error
}

// SearchBatch runs Search for every query concurrently. See SearchBatchFilter.
func (x *Index) SearchBatch(queries [][]float32, k int) ([]BatchResult, error) {
	return x.SearchBatchFilter(queries, k, nil)
}

// SearchBatchFilter runs SearchFilter for every query on up to the
// configured number of workers. Output order matches input order.
//
// Errors that affect every query (k <= 0, empty index) fail the whole call.
// A query with the wrong dimension only fails its own BatchResult.
func (x *Index) SearchBatchFilter(queries [][]float32, k int, filter Filter) ([]BatchResult, error) {
	ctx := context.Background()
	start := time.Now()

	x.mu.RLock()
	defer x.mu.RUnlock()

	var err error
	switch {
	case k <= 0:
		err = fmt.Errorf("%w: got %d", ErrInvalidK, k)
	case x.idx.Len() == 0:
		err = ErrEmptyIndex
	}
	if err != nil {
		x.opts.logger.LogBatchSearch(ctx, len(queries), len(queries), err)
		x.opts.metricsCollector.RecordBatchSearch(len(queries), len(queries), time.Since(start))
		return nil, err
	}

	out := make([]BatchResult, len(queries))

	var g errgroup.Group
	g.SetLimit(x.opts.workers)
	for i, q := range queries {
		g.Go(func() error {
			res, report, err := x.idx.Search(q, k, index.Filter(filter))
			out[i] = BatchResult{Results: res, Report: report, Err: translateError(err)}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range out {
		if r.Err != nil {
			failed++
		}
	}
	x.opts.logger.LogBatchSearch(ctx, len(queries), failed, nil)
	x.opts.metricsCollector.RecordBatchSearch(len(queries), failed, time.Since(start))
	return out, nil
}
