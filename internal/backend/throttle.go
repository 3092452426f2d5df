package backend

import (
	"context"
	"sync"
	"time"
)

// throttle keeps successive fetches at least gap apart.
type throttle struct {
	gap time.Duration

	mu   sync.Mutex
	next time.Time
}

func newThrottle(gap time.Duration) *throttle {
	return &throttle{gap: max(gap, 0)}
}

// wait blocks until the next slot opens or ctx ends.
func (t *throttle) wait(ctx context.Context) error {
	if t == nil || t.gap <= 0 {
		return ctx.Err()
	}
	t.mu.Lock()
	now := time.Now()
	slot := t.next
	if slot.Before(now) {
		slot = now
	}
	t.next = slot.Add(t.gap)
	t.mu.Unlock()

	delay := time.Until(slot)
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
