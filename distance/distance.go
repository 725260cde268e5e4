package distance

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidMetric is returned for unknown metric kinds or invalid parameters.
var ErrInvalidMetric = errors.New("invalid metric")

// Kind identifies a distance formula.
type Kind uint8

const (
	KindEuclidean Kind = iota
	KindManhattan
	KindCosine
	KindMinkowski
	KindChebyshev
)

func (k Kind) String() string {
	switch k {
	case KindEuclidean:
		return "Euclidean"
	case KindManhattan:
		return "Manhattan"
	case KindCosine:
		return "Cosine"
	case KindMinkowski:
		return "Minkowski"
	case KindChebyshev:
		return "Chebyshev"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Metric describes the distance used by an index.
// P is only meaningful for KindMinkowski.
type Metric struct {
	Kind Kind
	P    float64
}

// Euclidean returns the L2 metric.
func Euclidean() Metric { return Metric{Kind: KindEuclidean} }

// Manhattan returns the L1 metric.
func Manhattan() Metric { return Metric{Kind: KindManhattan} }

// Cosine returns the cosine distance metric (1 - cosine similarity).
func Cosine() Metric { return Metric{Kind: KindCosine} }

// Chebyshev returns the L∞ metric.
func Chebyshev() Metric { return Metric{Kind: KindChebyshev} }

// Minkowski returns the Minkowski metric of order p. p must be a finite value > 0.
func Minkowski(p float64) (Metric, error) {
	m := Metric{Kind: KindMinkowski, P: p}
	if err := m.Validate(); err != nil {
		return Metric{}, err
	}
	return m, nil
}

// Validate checks that the metric kind is known and its parameter is usable.
func (m Metric) Validate() error {
	switch m.Kind {
	case KindEuclidean, KindManhattan, KindCosine, KindChebyshev:
		return nil
	case KindMinkowski:
		if math.IsNaN(m.P) || math.IsInf(m.P, 0) || m.P <= 0 {
			return fmt.Errorf("%w: minkowski p must be > 0, got %v", ErrInvalidMetric, m.P)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidMetric, m.Kind)
	}
}

func (m Metric) String() string {
	if m.Kind == KindMinkowski {
		return fmt.Sprintf("Minkowski(p=%g)", m.P)
	}
	return m.Kind.String()
}

// Parse parses a metric name as produced by String. Names are case-insensitive;
// "l1", "l2" and "linf" are accepted as aliases, and "minkowski:3" selects p=3.
func Parse(s string) (Metric, error) {
	name, param, hasParam := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")
	switch name {
	case "euclidean", "l2":
		return Euclidean(), nil
	case "manhattan", "l1":
		return Manhattan(), nil
	case "cosine":
		return Cosine(), nil
	case "chebyshev", "linf":
		return Chebyshev(), nil
	case "minkowski":
		if !hasParam {
			return Metric{}, fmt.Errorf("%w: minkowski requires a p parameter", ErrInvalidMetric)
		}
		p, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return Metric{}, fmt.Errorf("%w: minkowski p: %w", ErrInvalidMetric, err)
		}
		return Minkowski(p)
	default:
		return Metric{}, fmt.Errorf("%w: %q", ErrInvalidMetric, s)
	}
}

// Func computes the distance between two vectors of equal length.
type Func func(a, b []float32) float64

// Func resolves the kernel for the metric. The result is meant to be cached by
// the caller so distance evaluation never re-dispatches on the metric kind.
// An invalid metric resolves to Euclidean; call Validate first.
func (m Metric) Func() Func {
	switch m.Kind {
	case KindManhattan:
		return Manhattan1
	case KindCosine:
		return CosineDistance
	case KindChebyshev:
		return ChebyshevDistance
	case KindMinkowski:
		switch m.P {
		case 1:
			return Manhattan1
		case 2:
			return Euclidean2
		}
		p := m.P
		inv := 1 / p
		return func(a, b []float32) float64 {
			return minkowski(a, b, p, inv)
		}
	default:
		return Euclidean2
	}
}

// Euclidean2 returns the L2 distance between a and b.
func Euclidean2(a, b []float32) float64 {
	return math.Sqrt(SquaredL2(a, b))
}

// SquaredL2 returns the squared L2 distance between a and b.
func SquaredL2(a, b []float32) float64 {
	b = b[:len(a)]
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// Manhattan1 returns the L1 distance between a and b.
func Manhattan1(a, b []float32) float64 {
	b = b[:len(a)]
	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}
	return sum
}

// ChebyshevDistance returns the L∞ distance between a and b.
func ChebyshevDistance(a, b []float32) float64 {
	b = b[:len(a)]
	var m float64
	for i := range a {
		if d := math.Abs(float64(a[i]) - float64(b[i])); d > m {
			m = d
		}
	}
	return m
}

func minkowski(a, b []float32, p, inv float64) float64 {
	b = b[:len(a)]
	var sum float64
	for i := range a {
		sum += math.Pow(math.Abs(float64(a[i])-float64(b[i])), p)
	}
	return math.Pow(sum, inv)
}

// CosineDistance returns 1 - cos(a, b), clamped to [0, 2].
// If either vector has zero norm the distance is 1.
func CosineDistance(a, b []float32) float64 {
	b = b[:len(a)]
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	return CosineFromDot(dot, na, nb)
}

// CosineFromDot returns the cosine distance given the dot product and the
// squared norms of both operands.
func CosineFromDot(dot, normSqA, normSqB float64) float64 {
	if normSqA == 0 || normSqB == 0 {
		return 1
	}
	d := 1 - dot/math.Sqrt(normSqA*normSqB)
	switch {
	case d < 0:
		return 0
	case d > 2:
		return 2
	}
	return d
}

// Dot returns the dot product of a and b.
func Dot(a, b []float32) float64 {
	b = b[:len(a)]
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// NormSquared returns the squared L2 norm of v.
func NormSquared(v []float32) float64 {
	return Dot(v, v)
}
