package ui

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/atomicstack/popup-listbox/internal/listbox"
	"github.com/atomicstack/popup-listbox/internal/menu"
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
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) listbox.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, at: s.now + d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	s.mu.Unlock()
	for {
		s.mu.Lock()
		var next *manualTimer
		for _, t := range s.timers {
			if t.stopped || t.fired || t.at > s.now {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next != nil {
			next.fired = true
		}
		s.mu.Unlock()
		if next == nil {
			return
		}
		next.fn()
	}
}

var fruit = []string{"apple", "banana", "cherry"}

type testModel struct {
	h     *Harness
	sched *manualScheduler
}

func (tm *testModel) model() *Model { return tm.h.Model() }

// view renders without styling so assertions can match plain text.
func (tm *testModel) view() string { return ansi.Strip(tm.h.View()) }

// newTestModel hosts a machine over apple/banana/cherry with a 40 column
// viewport and a manual scheduler.
func newTestModel(t *testing.T, mutate ...func(*Options)) *testModel {
	t.Helper()
	sched := &manualScheduler{}
	opts := Options{
		Items:     menu.ItemsFromLabels(fruit),
		Context:   menu.Context{Source: menu.SourceStatic, Labels: fruit},
		Action:    menu.StaticSelectAction,
		Label:     "Pick a fruit",
		Selected:  -1,
		Width:     40,
		Timings:   listbox.DefaultTimings(),
		Scheduler: sched,
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	m, err := NewModel(opts)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	t.Cleanup(m.Close)
	return &testModel{h: NewHarness(m), sched: sched}
}

func (tm *testModel) key(t tea.KeyType) {
	tm.h.Send(tea.KeyMsg{Type: t})
}

func (tm *testModel) typed(s string) {
	for _, r := range s {
		tm.h.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (tm *testModel) press(x, y int) {
	tm.h.Send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
}

func (tm *testModel) release(x, y int) {
	tm.h.Send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
}

func (tm *testModel) move(x, y int) {
	tm.h.Send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
}

// advance fires due timers and hands their side effects to the model.
func (tm *testModel) advance(d time.Duration) {
	tm.sched.Advance(d)
	tm.h.Flush()
}

// optionRow is the screen row of the option at visible position i.
func optionRow(i int) int {
	return 1 + styles.Button.GetVerticalFrameSize() + styles.Popover.GetBorderTopSize() + i
}

func (tm *testModel) expectState(t *testing.T, want listbox.State) {
	t.Helper()
	if got := tm.model().State(); got != want {
		t.Fatalf("expected state %s, got %s", want, got)
	}
}
