package ui

import (
	"fmt"
	"reflect"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/popup-listbox/internal/backend"
	"github.com/atomicstack/popup-listbox/internal/listbox"
	"github.com/atomicstack/popup-listbox/internal/logging"
	"github.com/atomicstack/popup-listbox/internal/menu"
	"github.com/atomicstack/popup-listbox/internal/theme"
	"github.com/atomicstack/popup-listbox/internal/ui/command"
	uistate "github.com/atomicstack/popup-listbox/internal/ui/state"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options configures a Model.
type Options struct {
	Items   []menu.Item
	Context menu.Context
	// Action runs when an option is committed; nil only records the choice.
	Action menu.Action
	// Label is shown on the button while nothing is selected.
	Label string
	// Selected is the initially selected index; -1 for none.
	Selected   int
	Filter     string
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
	// Form makes Enter on the closed button submit the selection.
	Form    bool
	Timings listbox.Timings
	// Scheduler drives the machine's delays; tests pass a manual one.
	Scheduler listbox.Scheduler
	Watcher   *backend.Watcher
}

// Result is what the program produced when it quit.
type Result struct {
	// Selection is the committed or submitted option, if any.
	Selection *menu.Item
	Info      string
	Submitted bool
	Cancelled bool
}

// Model implements the Bubble Tea model hosting one listbox machine.
type Model struct {
	machine     *listbox.Machine
	collection  *listbox.Collection
	unsubscribe func()

	tokens   map[string]listbox.Token
	options  map[listbox.Token]menu.Item
	itemRefs map[listbox.Token]*surface

	ring     *focusRing
	button   *surface
	listbox  *surface
	doc      *document
	gate     *listbox.TooltipGate
	tip      tooltip
	form     *form
	box      *mailbox
	waiting  bool
	bus      *command.Bus
	keys     KeyMap
	help     help.Model
	viewport uistate.Viewport
	// shownHighlight is the highlight the viewport last scrolled to.
	shownHighlight int

	menuCtx menu.Context
	action  menu.Action
	all     []menu.Item
	filter  string
	label   string

	pointer pointerState

	watcher     *backend.Watcher
	loading     bool
	errMsg      string
	infoMsg     string
	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool
	verbose     bool

	result   Result
	quitting bool

	handlers map[reflect.Type]msgHandler
}

// NewModel builds the surfaces, loads the initial options into the
// collection and starts the machine.
func NewModel(opts Options) (*Model, error) {
	ring := &focusRing{}
	box := newMailbox()
	m := &Model{
		collection: listbox.NewCollection(),
		tokens:     make(map[string]listbox.Token),
		options:    make(map[listbox.Token]menu.Item),
		itemRefs:   make(map[listbox.Token]*surface),
		ring:       ring,
		doc:        newDocument(),
		gate:       listbox.NewTooltipGate(),
		box:        box,
		bus:        command.New(),
		keys:       DefaultKeyMap(),
		help:       help.New(),
		menuCtx:    opts.Context,
		action:     opts.Action,
		filter:     opts.Filter,
		label:      opts.Label,
		watcher:    opts.Watcher,
		showFooter: opts.ShowFooter,
		verbose:    opts.Verbose,
		pointer:    newPointerState(),
	}
	m.shownHighlight = -2
	m.button = newSurface("button", ring, nil)
	m.listbox = newSurface("listbox", ring, nil)
	m.tip = tooltip{gate: m.gate}
	if opts.Form {
		m.form = &form{box: box}
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	m.applyItems(opts.Items)

	machine, err := listbox.NewMachine(listbox.Config{
		Items:     m.collection,
		Selected:  m.visibleIndex(opts.Items, opts.Selected),
		Button:    m.button,
		Listbox:   m.listbox,
		Env:       m.env,
		Document:  m.doc,
		Tooltips:  m.gate,
		Scheduler: opts.Scheduler,
		Timings:   opts.Timings,
		OnError: func(err error) {
			logging.Error(err)
			box.fail(err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build listbox: %w", err)
	}
	m.machine = machine
	m.unsubscribe = machine.Subscribe(func(listbox.Snapshot) { box.redraw() })
	if err := machine.Start(); err != nil {
		return nil, fmt.Errorf("start listbox: %w", err)
	}
	// the button starts with focus, as a page would after tabbing to it.
	_ = m.button.Focus()
	m.registerHandlers()
	m.syncViewport()
	return m, nil
}

// visibleIndex maps selected, an index into all, onto the filtered
// collection. Options hidden by the filter are not selected.
func (m *Model) visibleIndex(all []menu.Item, selected int) int {
	if selected < 0 || selected >= len(all) {
		return -1
	}
	tok, ok := m.tokens[all[selected].ID]
	if !ok {
		return -1
	}
	if i, ok := m.collection.Index(tok); ok {
		return i
	}
	return -1
}

func (m *Model) env() listbox.Env {
	env := listbox.Env{Button: m.button, Listbox: m.listbox}
	if m.form != nil {
		env.Form = m.form
	}
	return env
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	m.waiting = true
	cmds := []tea.Cmd{waitForMail(m.box)}
	if m.watcher != nil {
		cmds = append(cmds, waitForBackendEvent(m.watcher))
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if cmd := m.collectMail(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.MouseMsg{}):      m.handleMouseMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(mailMsg{}):           m.handleMailMsg,
		reflect.TypeOf(menu.ActionResult{}): m.handleActionResultMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	m.syncViewport()
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = size.Width
	}
	if !m.fixedHeight {
		m.height = size.Height
	}
	m.help.Width = m.width
	return nil
}

func (m *Model) handleMailMsg(tea.Msg) tea.Cmd {
	if !m.waiting {
		return nil
	}
	return waitForMail(m.box)
}

// collectMail applies everything the machine posted since the last call.
func (m *Model) collectMail() tea.Cmd {
	got := m.box.take()
	if got.empty() {
		return nil
	}
	for _, err := range got.errs {
		m.errMsg = err.Error()
	}
	cmds := make([]tea.Cmd, 0, len(got.commits)+1)
	for _, item := range got.commits {
		if cmd := m.commitCmd(item); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if got.submit {
		if cmd := m.submit(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	return tea.Quit
}

// send forwards ev to the machine; failures are shown in the status line.
func (m *Model) send(ev listbox.Sendable) {
	if err := m.machine.Send(ev); err != nil {
		logging.Error(err)
		m.errMsg = err.Error()
	}
}

func (m *Model) snapshot() listbox.Snapshot {
	return m.machine.Snapshot()
}

// optionAt returns the option rendered at position i.
func (m *Model) optionAt(i int) (menu.Item, bool) {
	toks := m.collection.Tokens()
	if i < 0 || i >= len(toks) {
		return menu.Item{}, false
	}
	item, ok := m.options[toks[i]]
	return item, ok
}

// syncViewport scrolls to the highlight when it moved; otherwise it only
// clamps, so a wheel scroll away from the highlight sticks.
func (m *Model) syncViewport() {
	highlight := m.snapshot().Context.HighlightIndex
	m.viewport.Height = m.maxVisibleItems()
	if highlight != m.shownHighlight {
		m.viewport.Ensure(highlight, m.collection.Len())
		m.shownHighlight = highlight
		return
	}
	m.viewport.Ensure(-1, m.collection.Len())
}

// Result reports how the program finished.
func (m *Model) Result() Result {
	return m.result
}

// State exposes the machine's committed state.
func (m *Model) State() listbox.State {
	return m.machine.State()
}

// Close stops the machine and releases background waits.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	_ = m.machine.Stop()
	m.box.close()
}
