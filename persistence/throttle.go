package persistence

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// NewThrottledWriter limits the byte rate written to w.
// A nil or infinite limiter returns w unchanged.
func NewThrottledWriter(ctx context.Context, w io.Writer, lim *rate.Limiter) io.Writer {
	if lim == nil || lim.Limit() == rate.Inf {
		return w
	}
	return &throttledWriter{ctx: ctx, w: w, lim: lim}
}

// NewThrottledReader limits the byte rate read from r.
// A nil or infinite limiter returns r unchanged.
func NewThrottledReader(ctx context.Context, r io.Reader, lim *rate.Limiter) io.Reader {
	if lim == nil || lim.Limit() == rate.Inf {
		return r
	}
	return &throttledReader{ctx: ctx, r: r, lim: lim}
}

// NewLimiter returns a limiter for bytesPerSec, or nil when bytesPerSec <= 0.
// The burst equals one second of traffic.
func NewLimiter(bytesPerSec int) *rate.Limiter {
	if bytesPerSec <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec)
}

type throttledWriter struct {
	ctx context.Context
	w   io.Writer
	lim *rate.Limiter
}

func (t *throttledWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		n := min(len(p), max(t.lim.Burst(), 1))
		if err := t.lim.WaitN(t.ctx, n); err != nil {
			return written, err
		}
		m, err := t.w.Write(p[:n])
		written += m
		if err != nil {
			return written, err
		}
		p = p[n:]
	}
	return written, nil
}

type throttledReader struct {
	ctx context.Context
	r   io.Reader
	lim *rate.Limiter
}

func (t *throttledReader) Read(p []byte) (int, error) {
	if len(p) > t.lim.Burst() {
		p = p[:max(t.lim.Burst(), 1)]
	}
	if err := t.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := t.r.Read(p)
	if n > 0 {
		if werr := t.lim.WaitN(t.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
