package flat

import (
	"github.com/hupe1980/annie/distance"
	"github.com/hupe1980/annie/index"
	"github.com/hupe1980/annie/persistence"
	"github.com/hupe1980/annie/vectorstore"
)

func init() {
	index.RegisterBinaryLoader(index.KindFlat, func(metric distance.Metric, store *vectorstore.Store, dec *persistence.Decoder) (index.Index, error) {
		if err := dec.Err(); err != nil {
			return nil, err
		}
		return newWithStore(metric, store), nil
	})
}
