package source

import (
	"context"
	"encoding/binary"

	"golang.org/x/time/rate"
)

// Sink receives one encoded frame. The buffer must not be retained or
// mutated after the call returns.
type Sink func(frame []byte)

// Source produces encoded frames and hands each one to the sink
// synchronously, in capture order. Run returns when the source is exhausted
// or ctx is cancelled.
type Source interface {
	Run(ctx context.Context, sink Sink) error
}

// Synthetic emits deterministic dummy frames at a fixed rate. Used by the
// bench tool and anywhere a capture pipeline is unavailable.
type Synthetic struct {
	FrameSize int
	FPS       int
	Count     int // 0 = unbounded
}

// Run emits frames until Count is reached or ctx is cancelled.
func (s *Synthetic) Run(ctx context.Context, sink Sink) error {
	limiter := rate.NewLimiter(rate.Limit(s.FPS), 1)
	frame := make([]byte, s.FrameSize)
	for n := uint64(0); s.Count == 0 || n < uint64(s.Count); n++ {
		if err := limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}
		fill(frame, n)
		sink(frame)
	}
	return nil
}

// fill writes a frame-number-derived pattern so consecutive frames have
// distinct checksums.
func fill(frame []byte, n uint64) {
	for i := range frame {
		frame[i] = byte(n + uint64(i))
	}
	if len(frame) >= 8 {
		binary.BigEndian.PutUint64(frame[:8], n)
	}
}
