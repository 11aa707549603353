package crawler

import (
	"context"
	"sync"
	"time"
)

// Throttle enforces a minimum interval between origin requests.
//
// A single Throttle is shared by every phase and every community worker,
// so the pause is global: concurrent callers serialize on Wait and each
// gets its own full interval.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewThrottle creates a Throttle with the given minimum interval.
// A zero or negative interval disables throttling.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Wait blocks until at least the configured interval has elapsed since
// the previous Wait returned. It returns early with the context's error
// if the context is canceled while waiting.
func (t *Throttle) Wait(ctx context.Context) error {
	if t.interval <= 0 {
		return ctx.Err()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.last.IsZero() {
		remaining := t.interval - time.Since(t.last)
		if remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	t.last = time.Now()
	return nil
}
