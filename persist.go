package annie

import (
	"context"
	"errors"
	"io"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/annie/blobstore"
	"github.com/hupe1980/annie/index"
	"github.com/hupe1980/annie/persistence"
)

// Save writes the index to path. The file is replaced atomically, so a
// failed save leaves any previous file intact. Searches may run while the
// index is being saved.
func (x *Index) Save(ctx context.Context, path string) (err error) {
	start := time.Now()
	defer func() {
		err = translateError(err)
		x.opts.logger.LogPersist(ctx, PersistSave, path, err)
		x.opts.metricsCollector.RecordPersist(PersistSave, time.Since(start), err)
	}()

	x.mu.RLock()
	defer x.mu.RUnlock()

	lim := persistence.NewLimiter(x.opts.rateLimit)
	return persistence.SaveToFile(path, func(w io.Writer) error {
		return index.WriteBinary(persistence.NewThrottledWriter(ctx, w, lim), x.idx, x.opts.compression)
	})
}

// Load reads an index saved with Save. A missing file yields ErrNotFound;
// malformed content yields ErrCorruptFormat.
func Load(ctx context.Context, path string, opts ...Option) (*Index, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	start := time.Now()
	var idx index.Index
	lim := persistence.NewLimiter(o.rateLimit)
	err := persistence.LoadFromFile(path, func(r io.Reader) error {
		var err error
		idx, err = index.ReadBinary(persistence.NewThrottledReader(ctx, r, lim))
		return err
	})
	err = translateError(err)
	o.logger.LogPersist(ctx, PersistLoad, path, err)
	o.metricsCollector.RecordPersist(PersistLoad, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return wrap(idx, o), nil
}

// SaveTo writes the index as blob name in store. The blob only becomes
// visible once fully written.
func (x *Index) SaveTo(ctx context.Context, store blobstore.BlobStore, name string) (err error) {
	start := time.Now()
	defer func() {
		err = translateError(err)
		x.opts.logger.LogPersist(ctx, PersistSave, name, err)
		x.opts.metricsCollector.RecordPersist(PersistSave, time.Since(start), err)
	}()

	x.mu.RLock()
	defer x.mu.RUnlock()

	wb, err := store.Create(ctx, name)
	if err != nil {
		return err
	}

	lim := persistence.NewLimiter(x.opts.rateLimit)
	if err := index.WriteBinary(persistence.NewThrottledWriter(ctx, wb, lim), x.idx, x.opts.compression); err != nil {
		return errors.Join(err, wb.Abort())
	}
	return wb.Close()
}

// LoadFrom reads an index saved with SaveTo.
func LoadFrom(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) (*Index, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	start := time.Now()
	idx, err := loadBlob(ctx, store, name, persistence.NewLimiter(o.rateLimit))
	err = translateError(err)
	o.logger.LogPersist(ctx, PersistLoad, name, err)
	o.metricsCollector.RecordPersist(PersistLoad, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return wrap(idx, o), nil
}

func loadBlob(ctx context.Context, store blobstore.BlobStore, name string, lim *rate.Limiter) (index.Index, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	rc, err := blobstore.NewReader(ctx, b)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return index.ReadBinary(persistence.NewThrottledReader(ctx, rc, lim))
}
