package ui

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/atomicstack/popup-listbox/internal/listbox"
	"github.com/atomicstack/popup-listbox/internal/logging/events"
)

var errDetached = errors.New("surface is no longer on screen")

// focusRing records which surface holds terminal focus. Focus requests may
// arrive from timer goroutines, so access is locked.
type focusRing struct {
	mu      sync.RWMutex
	current *surface
}

func (r *focusRing) set(s *surface) {
	r.mu.Lock()
	r.current = s
	r.mu.Unlock()
	events.UI.Focus(s.name)
}

func (r *focusRing) Current() *surface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// surface is a focusable region of the view. Item surfaces are children of
// the listbox surface.
type surface struct {
	name     string
	ring     *focusRing
	parent   *surface
	detached atomic.Bool
}

func newSurface(name string, ring *focusRing, parent *surface) *surface {
	return &surface{name: name, ring: ring, parent: parent}
}

func (s *surface) Focus() error {
	if s.detached.Load() {
		return errDetached
	}
	s.ring.set(s)
	return nil
}

// Contains reports whether other is s or one of its descendants.
func (s *surface) Contains(other listbox.Handle) bool {
	o, ok := other.(*surface)
	for ok && o != nil {
		if o == s {
			return true
		}
		o = o.parent
	}
	return false
}

func (s *surface) detach() {
	s.detached.Store(true)
}

// within reports whether the focused surface sits inside s.
func (r *focusRing) within(s *surface) bool {
	current := r.Current()
	return current != nil && s.Contains(current)
}

// document fans pointer-up notifications out to attached listeners.
type document struct {
	mu        sync.Mutex
	next      int
	listeners map[int]func()
}

func newDocument() *document {
	return &document{listeners: make(map[int]func())}
}

func (d *document) OnPointerUp(fn func()) func() {
	d.mu.Lock()
	id := d.next
	d.next++
	d.listeners[id] = fn
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		delete(d.listeners, id)
		d.mu.Unlock()
	}
}

func (d *document) pointerUp() {
	d.mu.Lock()
	fns := make([]func(), 0, len(d.listeners))
	for _, fn := range d.listeners {
		fns = append(fns, fn)
	}
	d.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (d *document) listenerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}
