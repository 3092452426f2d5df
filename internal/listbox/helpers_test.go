package listbox

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type manualTimer struct {
	s       *manualScheduler
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// manualScheduler fires timers only when Advance moves its clock past them.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
	// leaky timers ignore Stop, so a stale fire reaches the machine.
	leaky bool
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, at: s.now + d, fn: fn}
	s.timers = append(s.timers, t)
	if s.leaky {
		return leakyTimer{}
	}
	return t
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	s.mu.Unlock()
	for {
		s.mu.Lock()
		var due []*manualTimer
		for _, t := range s.timers {
			if !t.stopped && !t.fired && t.at <= s.now {
				due = append(due, t)
			}
		}
		sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
		for _, t := range due {
			t.fired = true
		}
		s.mu.Unlock()
		if len(due) == 0 {
			return
		}
		for _, t := range due {
			t.fn()
		}
	}
}

func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// recorder collects side effects in the order they happen.
type recorder struct {
	mu      sync.Mutex
	entries []string
}

func (r *recorder) add(entry string) {
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.entries...)
}

type fakeHandle struct {
	name     string
	rec      *recorder
	children []Handle
	err      error

	mu      sync.Mutex
	focused int
}

func (h *fakeHandle) Focus() error {
	h.mu.Lock()
	h.focused++
	h.mu.Unlock()
	if h.rec != nil {
		h.rec.add("focus:" + h.name)
	}
	return h.err
}

func (h *fakeHandle) Contains(other Handle) bool {
	if other == Handle(h) {
		return true
	}
	for _, child := range h.children {
		if child == other {
			return true
		}
	}
	return false
}

func (h *fakeHandle) Focused() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.focused
}

type fakeDocument struct {
	mu       sync.Mutex
	fn       func()
	attached int
	detached int
}

func (d *fakeDocument) OnPointerUp(fn func()) func() {
	d.mu.Lock()
	d.fn = fn
	d.attached++
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		d.fn = nil
		d.detached++
		d.mu.Unlock()
	}
}

func (d *fakeDocument) pointerUp() {
	d.mu.Lock()
	fn := d.fn
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type fakeForm struct {
	submitted int
}

func (f *fakeForm) Submit() error {
	f.submitted++
	return nil
}

type fixture struct {
	m        *Machine
	sched    *manualScheduler
	rec      *recorder
	button   *fakeHandle
	listbox  *fakeHandle
	refs     []*fakeHandle
	commits  []int
	doc      *fakeDocument
	tooltips *TooltipGate
	errs     []error
	mu       sync.Mutex
}

func (f *fixture) commitCount(i int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits[i]
}

func (f *fixture) errors() []error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]error(nil), f.errs...)
}

func (f *fixture) send(t *testing.T, events ...Sendable) {
	t.Helper()
	for _, ev := range events {
		require.NoError(t, f.m.Send(ev))
	}
}

func index(ev EventType, i int) Event {
	return Event{Type: ev, Index: i}
}

func char(key string) Event {
	return Event{Type: KeydownChar, Key: key}
}

// newFixture builds and starts a machine over apple/banana/cherry. mutate
// may adjust the config before the machine is built.
func newFixture(t *testing.T, selected int, mutate ...func(*Config)) *fixture {
	t.Helper()
	f := &fixture{
		sched:    &manualScheduler{},
		rec:      &recorder{},
		doc:      &fakeDocument{},
		tooltips: NewTooltipGate(),
	}
	f.button = &fakeHandle{name: "button", rec: f.rec}
	f.listbox = &fakeHandle{name: "listbox", rec: f.rec}

	names := []string{"apple", "banana", "cherry"}
	f.commits = make([]int, len(names))
	items := make(Items, len(names))
	for i, name := range names {
		ref := &fakeHandle{name: name, rec: f.rec}
		f.refs = append(f.refs, ref)
		f.listbox.children = append(f.listbox.children, ref)
		i := i
		items[i] = Item{
			Name: name,
			Ref:  ref,
			OnSelect: func() {
				f.mu.Lock()
				f.commits[i]++
				f.mu.Unlock()
				f.rec.add("commit:" + names[i])
			},
		}
	}

	cfg := Config{
		ID:        "test",
		Items:     items,
		Selected:  selected,
		Button:    f.button,
		Listbox:   f.listbox,
		Document:  f.doc,
		Tooltips:  f.tooltips,
		Scheduler: f.sched,
		OnError: func(err error) {
			f.mu.Lock()
			f.errs = append(f.errs, err)
			f.mu.Unlock()
		},
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	m, err := NewMachine(cfg)
	require.NoError(t, err)
	require.NoError(t, m.Start())
	t.Cleanup(func() { _ = m.Stop() })
	f.m = m
	return f
}
