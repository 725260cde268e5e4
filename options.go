package annie

import (
	"runtime"

	"github.com/hupe1980/annie/index/hnsw"
	"github.com/hupe1980/annie/persistence"
)

type options struct {
	kind             Kind
	hnswOptions      []func(*hnsw.Options)
	workers          int
	metricsCollector MetricsCollector
	logger           *Logger
	compression      persistence.Compression
	rateLimit        int // bytes per second, 0 = unlimited
}

func defaultOptions() options {
	return options{
		kind:             KindFlat,
		workers:          runtime.GOMAXPROCS(0),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		compression:      persistence.CompressionNone,
	}
}

// Option configures New, Load and LoadFrom.
//
// Index construction options (WithHNSW) are ignored when loading: the
// persisted index keeps the kind and parameters it was saved with.
type Option func(*options)

// WithHNSW selects the HNSW graph index instead of the exhaustive flat scan.
// Dimension and Metric are always taken from New.
//
// Example:
//
//	idx, err := annie.New(128, annie.Cosine(), annie.WithHNSW(func(o *hnsw.Options) {
//	    o.M = 32
//	    o.EFConstruction = 400
//	}))
func WithHNSW(optFns ...func(o *hnsw.Options)) Option {
	return func(o *options) {
		o.kind = KindHNSW
		o.hnswOptions = append(o.hnswOptions, optFns...)
	}
}

// WithWorkers bounds the number of goroutines SearchBatch uses.
// Values <= 0 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// WithMetricsCollector sets a custom metrics collector for observability.
// If not set, NoopMetricsCollector is used.
//
// Example:
//
//	metrics := &annie.BasicMetricsCollector{}
//	idx, err := annie.New(128, annie.Euclidean(), annie.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger sets a custom structured logger.
// If not set, logging is disabled.
//
// Example:
//
//	logger := annie.NewJSONLogger(slog.LevelInfo)
//	idx, err := annie.New(128, annie.Euclidean(), annie.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithCompression sets the body compression used by Save and SaveTo.
// Loading detects the compression from the file header.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithRateLimit caps save and load throughput in bytes per second.
// Values <= 0 disable throttling.
func WithRateLimit(bytesPerSec int) Option {
	return func(o *options) {
		o.rateLimit = bytesPerSec
	}
}
