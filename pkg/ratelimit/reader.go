package ratelimit

import (
	"context"
	"io"
	"strings"

	"github.com/docker/go-units"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/time/rate"
)

// minBurst keeps small limits from degenerating into tiny reads
const minBurst = 64 * 1024

// Limiter controls the rate of data transfer across multiple readers.
// One limiter is shared by every copy of a run so the limit applies
// to the run as a whole, not per file.
type Limiter struct {
	bytesPerSecond int64
	burst          int
	limiter        *rate.Limiter
}

// NewLimiter creates a new rate limiter with the specified bytes per second limit.
// A non-positive limit returns nil, which every helper treats as unlimited.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	// One second worth of data, never below minBurst
	burst := bytesPerSecond
	if burst < minBurst {
		burst = minBurst
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		burst:          int(burst),
		limiter:        rate.NewLimiter(rate.Limit(bytesPerSecond), int(burst)),
	}
}

// BytesPerSecond returns the configured limit
func (l *Limiter) BytesPerSecond() int64 {
	if l == nil {
		return 0
	}
	return l.bytesPerSecond
}

// ParseBandwidth parses limits such as "512K", "10M" or "1G" (binary
// multiples). An empty string means unlimited.
func ParseBandwidth(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.TrimSuffix(strings.TrimSuffix(s, "/s"), "ps")
	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, errors.Errorf("invalid bandwidth %q: %w", s, err)
	}
	if n < 0 {
		return 0, errors.Errorf("invalid bandwidth %q: must not be negative", s)
	}
	return n, nil
}

// Reader wraps an io.Reader with bandwidth limiting
type Reader struct {
	reader  io.Reader
	limiter *Limiter
	ctx     context.Context
}

// NewReader wraps an io.Reader with rate limiting
func NewReader(ctx context.Context, reader io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return reader
	}
	return &Reader{
		reader:  reader,
		limiter: limiter,
		ctx:     ctx,
	}
}

// Read reads at most one burst and then waits until the limiter
// has tokens for the bytes actually read.
func (r *Reader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}

	if len(p) > r.limiter.burst {
		p = p[:r.limiter.burst]
	}

	n, err := r.reader.Read(p)
	if n > 0 {
		if werr := r.limiter.limiter.WaitN(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
