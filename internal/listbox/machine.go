package listbox

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/atomicstack/popup-listbox/internal/logging"
	"github.com/atomicstack/popup-listbox/internal/logging/events"
)

// Config configures a Machine. Only Items is commonly required; every other
// field has a usable default.
type Config struct {
	// ID names the machine in traces. A random id is used when empty.
	ID    string
	Items ItemSource
	// Selected is the initially selected index; -1 for none.
	Selected int

	Button  Handle
	Listbox Handle
	// Env is called once per Send to snapshot externally owned handles.
	Env      EnvFunc
	Document Document
	Tooltips *TooltipGate

	Scheduler Scheduler
	// Chart defaults to NewChart(Timings).
	Chart   *Chart
	Timings Timings
	Guards  Guards
	Actions Actions
	// OnError receives action failures. Defaults to logging.Error.
	OnError func(error)
}

// Snapshot is the committed machine state handed to subscribers.
type Snapshot struct {
	ID      string
	State   State
	Context Context
	Step    uint64
}

type phase int

const (
	phaseCreated phase = iota
	phaseRunning
	phaseStopped
)

type queued struct {
	ev  Event
	env Env
}

type subscriber struct {
	id uint64
	fn func(Snapshot)
}

// Machine interprets a Chart. Send may be called from any goroutine; events
// are processed one at a time, in order, by whichever caller finds the
// machine idle.
type Machine struct {
	id       string
	chart    *Chart
	guards   Guards
	actions  Actions
	env      EnvFunc
	doc      Document
	tooltips *TooltipGate
	sched    Scheduler
	onError  func(error)

	mu         sync.Mutex
	phase      phase
	queue      []queued
	draining   bool
	subs       []subscriber
	nextSub    uint64
	timer      Timer
	generation uint64
	detach     func()

	stateMu sync.RWMutex
	state   State
	ctx     Context
	step    uint64
}

// NewMachine builds a machine in its initial state. It does not run entry
// actions or arm timers until Start.
func NewMachine(cfg Config) (*Machine, error) {
	m := &Machine{
		id:       cfg.ID,
		chart:    cfg.Chart,
		guards:   cfg.Guards,
		actions:  cfg.Actions,
		env:      cfg.Env,
		doc:      cfg.Document,
		tooltips: cfg.Tooltips,
		sched:    cfg.Scheduler,
		onError:  cfg.OnError,
	}
	if m.id == "" {
		m.id = uuid.NewString()
	}
	if m.chart == nil {
		m.chart = NewChart(cfg.Timings)
	}
	if m.guards == nil {
		m.guards = DefaultGuards()
	}
	if m.actions == nil {
		m.actions = DefaultActions()
	}
	if m.sched == nil {
		m.sched = SystemScheduler
	}
	if m.onError == nil {
		m.onError = logging.Error
	}
	if devChecks {
		if err := m.check(); err != nil {
			return nil, err
		}
	}

	m.ctx = NewContext(cfg.Items)
	m.ctx.SelectedIndex = cfg.Selected
	m.ctx.Button = cfg.Button
	m.ctx.Listbox = cfg.Listbox
	m.state = m.chart.Initial
	return m, nil
}

func (m *Machine) check() error {
	var fatal []string
	for _, p := range Validate(m.chart, m.actions, m.guards) {
		events.Machine.Problem(m.id, p.Error())
		if p.Fatal() {
			fatal = append(fatal, p.Error())
		}
	}
	if len(fatal) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidChart, strings.Join(fatal, "; "))
	}
	return nil
}

// ID returns the machine's trace id.
func (m *Machine) ID() string { return m.id }

// State returns the committed state.
func (m *Machine) State() State {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

// Snapshot returns the committed state and context.
func (m *Machine) Snapshot() Snapshot {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{ID: m.id, State: m.state, Context: m.ctx, Step: m.step}
}

// Subscribe registers fn to be called after every taken transition. The
// returned function removes it and may be called more than once.
func (m *Machine) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	m.mu.Lock()
	m.nextSub++
	id := m.nextSub
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, sub := range m.subs {
				if sub.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Start runs the initial state's entry actions, arms its timer and attaches
// the document pointer-up listener.
func (m *Machine) Start() error {
	env := m.captureEnv()
	m.mu.Lock()
	switch m.phase {
	case phaseRunning:
		m.mu.Unlock()
		return ErrAlreadyStarted
	case phaseStopped:
		m.mu.Unlock()
		return ErrStopped
	}
	m.phase = phaseRunning
	m.queue = append(m.queue, queued{ev: Event{Type: eventInit}, env: env})
	m.mu.Unlock()

	events.Machine.Lifecycle(m.id, "start")
	if m.doc != nil {
		detach := m.doc.OnPointerUp(func() {
			_ = m.Send(DocPointerUp)
		})
		m.mu.Lock()
		if m.phase == phaseStopped {
			m.mu.Unlock()
			if detach != nil {
				detach()
			}
			return nil
		}
		m.detach = detach
		m.mu.Unlock()
	}
	m.drain()
	return nil
}

// Stop disarms the pending timer, detaches the document listener and
// discards queued events. No event is accepted afterwards.
func (m *Machine) Stop() error {
	m.mu.Lock()
	switch m.phase {
	case phaseCreated:
		m.mu.Unlock()
		return ErrNotStarted
	case phaseStopped:
		m.mu.Unlock()
		return ErrStopped
	}
	m.phase = phaseStopped
	m.disarmLocked()
	m.queue = nil
	detach := m.detach
	m.detach = nil
	m.mu.Unlock()

	if detach != nil {
		detach()
	}
	events.Machine.Lifecycle(m.id, "stop")
	return nil
}

// Send queues ev and processes the queue unless another caller already is.
// Guard and action outcomes are not reported here; action failures go to
// Config.OnError.
func (m *Machine) Send(ev Sendable) error {
	if ev == nil {
		return ErrEmptyEvent
	}
	e := ev.event()
	if err := e.validate(); err != nil {
		return err
	}
	e.generation = 0
	return m.enqueue(e)
}

func (m *Machine) enqueue(e Event) error {
	env := m.captureEnv()
	m.mu.Lock()
	switch m.phase {
	case phaseCreated:
		m.mu.Unlock()
		return ErrNotStarted
	case phaseStopped:
		m.mu.Unlock()
		return ErrStopped
	}
	m.queue = append(m.queue, queued{ev: e, env: env})
	m.mu.Unlock()
	m.drain()
	return nil
}

func (m *Machine) captureEnv() Env {
	if m.env == nil {
		return Env{}
	}
	return m.env()
}

func (m *Machine) drain() {
	m.mu.Lock()
	if m.draining {
		m.mu.Unlock()
		return
	}
	m.draining = true
	for len(m.queue) > 0 && m.phase == phaseRunning {
		next := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		m.process(next)
		m.mu.Lock()
	}
	m.draining = false
	m.mu.Unlock()
}

func (m *Machine) fire(generation uint64) {
	// the generation is checked when the event is processed; a timer
	// that raced with a transition is dropped there.
	_ = m.enqueue(Event{Type: eventAfter, generation: generation})
}

func (m *Machine) process(q queued) {
	ev := q.ev

	m.stateMu.RLock()
	from := m.state
	ctx := m.ctx
	m.stateMu.RUnlock()

	var (
		tr      Transition
		initial = ev.Type == eventInit
	)
	switch ev.Type {
	case eventInit:
		tr = Transition{Target: from}
	case eventAfter:
		m.mu.Lock()
		current := m.generation
		m.mu.Unlock()
		node := m.chart.node(from)
		stale := ev.generation != current || node == nil || node.After == nil
		events.Machine.TimerFired(m.id, from.String(), ev.generation, stale)
		if stale {
			return
		}
		tr = node.After.Transition
	default:
		var ok bool
		tr, ok = m.chart.Lookup(from, ev.Type)
		if !ok {
			events.Machine.Dropped(m.id, from.String(), string(ev.Type))
			return
		}
	}

	scope := &Scope{
		State:    from,
		Target:   from,
		Ctx:      &ctx,
		Event:    ev,
		Env:      q.env,
		tooltips: m.tooltips,
	}
	if tr.Guard != "" {
		guard := m.guards[tr.Guard]
		if guard == nil || !guard(scope) {
			events.Machine.Guarded(m.id, from.String(), string(ev.Type), string(tr.Guard))
			return
		}
	}
	scope.Target = tr.Target

	names := tr.Actions
	if node := m.chart.node(tr.Target); node != nil {
		names = append(append([]ActionName(nil), tr.Actions...), node.Entry...)
	}
	if err := m.run(scope, names); err != nil {
		m.stateMu.Lock()
		m.ctx = ctx
		m.stateMu.Unlock()
		events.Machine.ActionError(m.id, from.String(), string(ev.Type), err)
		m.onError(err)
		return
	}

	m.mu.Lock()
	if m.phase != phaseRunning {
		m.mu.Unlock()
		return
	}
	m.disarmLocked()
	m.stateMu.Lock()
	m.state = tr.Target
	m.ctx = ctx
	if !initial {
		m.step++
	}
	snap := m.snapshotLocked()
	m.stateMu.Unlock()
	m.armLocked(tr.Target)
	subs := make([]subscriber, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	if !initial {
		events.Machine.Transition(m.id, from.String(), string(ev.Type), tr.Target.String(), snap.Step)
	}
	for _, sub := range subs {
		sub.fn(snap)
	}
	// a subscriber may have stopped the machine; nothing runs after Stop.
	m.mu.Lock()
	running := m.phase == phaseRunning
	m.mu.Unlock()
	if !running {
		return
	}
	for _, fn := range scope.deferred {
		if err := fn(); err != nil {
			events.Machine.ActionError(m.id, tr.Target.String(), string(ev.Type), err)
			m.onError(err)
		}
	}
}

func (m *Machine) run(scope *Scope, names []ActionName) error {
	for _, name := range names {
		action := m.actions[name]
		if action == nil {
			return fmt.Errorf("%w: %s", ErrUnknownAction, name)
		}
		if err := action(scope); err != nil {
			return err
		}
	}
	return nil
}

// disarmLocked stops the pending timer and invalidates any fire already
// queued. m.mu must be held.
func (m *Machine) disarmLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.generation++
}

// armLocked starts the delayed transition of s, if any. m.mu must be held.
func (m *Machine) armLocked(s State) {
	node := m.chart.node(s)
	if node == nil || node.After == nil {
		return
	}
	generation := m.generation
	m.timer = m.sched.AfterFunc(node.After.Delay, func() { m.fire(generation) })
	events.Machine.TimerArmed(m.id, s.String(), generation, node.After.Delay.Milliseconds())
}
