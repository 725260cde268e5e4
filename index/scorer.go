package index

import (
	"github.com/hupe1980/annie/distance"
	"github.com/hupe1980/annie/vectorstore"
)

// Scorer returns the distance from a fixed query to a stored position.
type Scorer func(pos uint32) float64

// NewScorer binds query to the store. For cosine the cached entry norms are
// used so each evaluation costs a single dot product.
func NewScorer(fn distance.Func, metric distance.Metric, s *vectorstore.Store, query []float32) Scorer {
	if metric.Kind == distance.KindCosine {
		qn := distance.NormSquared(query)
		return func(pos uint32) float64 {
			return distance.CosineFromDot(distance.Dot(query, s.Vector(pos)), qn, s.NormSq(pos))
		}
	}
	return func(pos uint32) float64 {
		return fn(query, s.Vector(pos))
	}
}
