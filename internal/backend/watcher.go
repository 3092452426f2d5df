package backend

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/popup-listbox/internal/menu"
)

// Fetch loads the current option list.
type Fetch func(context.Context) ([]menu.Item, error)

// Event conveys an updated option list or an error from a poll.
type Event struct {
	Items []menu.Item
	Err   error
}

// Watcher polls a Fetch at a fixed interval and publishes changes. An
// interval of zero fetches once.
type Watcher struct {
	fetch    Fetch
	interval time.Duration
	throttle *throttle

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher starts polling fetch every interval.
func NewWatcher(fetch Fetch, interval time.Duration) *Watcher {
	return newWatcher(fetch, interval, 250*time.Millisecond)
}

func newWatcher(fetch Fetch, interval, minGap time.Duration) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fetch:    fetch,
		interval: interval,
		throttle: newThrottle(minGap),
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
	}

	w.wg.Add(1)
	go w.poll()

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns a channel of option list events. It is closed once the
// poller exits.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. The poller exits after its current fetch
// completes; use Wait if a clean drain is required (e.g. in tests).
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until the poller has exited and the events channel is closed.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) poll() {
	defer w.wg.Done()

	var last []menu.Item
	first := true
	emit := func() bool {
		if w.throttle.wait(w.ctx) != nil {
			return false
		}
		items, err := w.fetch(w.ctx)
		if err == nil && !first && sameItems(last, items) {
			return true
		}
		if err == nil {
			last = menu.CloneItems(items)
		}
		first = false
		select {
		case <-w.ctx.Done():
			return false
		case w.events <- Event{Items: items, Err: err}:
			return true
		}
	}

	if !emit() || w.interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if !emit() {
				return
			}
		}
	}
}

func sameItems(a, b []menu.Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
