package ui

import (
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/popup-listbox/internal/listbox"
	"github.com/atomicstack/popup-listbox/internal/logging/events"
)

// KeyMap lists the bindings the host translates into listbox events.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Home   key.Binding
	End    key.Binding
	Choose key.Binding
	Toggle key.Binding
	Close  key.Binding
	Leave  key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous")),
		Down:   key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next")),
		Home:   key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first")),
		End:    key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last")),
		Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
		Toggle: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "open/choose")),
		Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Leave:  key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "leave list")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Choose, k.Close, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Home, k.End},
		{k.Choose, k.Toggle, k.Close, k.Leave, k.Quit},
	}
}

var keyEvents = []struct {
	binding func(KeyMap) key.Binding
	event   listbox.EventType
}{
	{func(k KeyMap) key.Binding { return k.Up }, listbox.KeydownArrowUp},
	{func(k KeyMap) key.Binding { return k.Down }, listbox.KeydownArrowDown},
	{func(k KeyMap) key.Binding { return k.Home }, listbox.KeydownHome},
	{func(k KeyMap) key.Binding { return k.End }, listbox.KeydownEnd},
	{func(k KeyMap) key.Binding { return k.Choose }, listbox.KeydownEnter},
	{func(k KeyMap) key.Binding { return k.Toggle }, listbox.KeydownSpace},
}

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.result.Cancelled = true
		return m.quit()
	case key.Matches(keyMsg, m.keys.Close):
		if !m.State().Expanded() {
			m.result.Cancelled = true
			return m.quit()
		}
		m.sendKey(listbox.KeydownEscape, "")
		return nil
	case key.Matches(keyMsg, m.keys.Leave):
		if m.State().Expanded() {
			// focus moves out of the popover onto the button.
			events.UI.Input("key", string(listbox.Blur), -1)
			m.send(listbox.Event{Type: listbox.Blur, RelatedTarget: m.button})
			_ = m.button.Focus()
		}
		return nil
	}
	for _, entry := range keyEvents {
		if key.Matches(keyMsg, entry.binding(m.keys)) {
			m.sendKey(entry.event, "")
			return nil
		}
	}
	if ch, ok := typedChar(keyMsg); ok {
		m.sendKey(listbox.KeydownChar, ch)
	}
	return nil
}

func (m *Model) sendKey(ev listbox.EventType, ch string) {
	events.UI.Input("key", string(ev), -1)
	m.errMsg = ""
	if ev == listbox.KeydownChar {
		m.send(listbox.Event{Type: ev, Key: ch})
		return
	}
	m.send(ev)
}

// typedChar returns the printable character carried by a key press.
func typedChar(msg tea.KeyMsg) (string, bool) {
	if msg.Type != tea.KeyRunes || msg.Alt || len(msg.Runes) != 1 {
		return "", false
	}
	r := msg.Runes[0]
	if unicode.IsControl(r) || unicode.IsSpace(r) {
		return "", false
	}
	return string(r), true
}

type hitKind int

const (
	hitNone hitKind = iota
	hitButton
	hitPopover
	hitItem
)

type hit struct {
	kind  hitKind
	index int
}

// pointerState remembers what the pointer was doing between mouse messages.
type pointerState struct {
	pressed    hit
	down       bool
	leftButton bool
	hover      int
	overButton bool
}

func newPointerState() pointerState {
	return pointerState{hover: -1}
}

func (m *Model) handleMouseMsg(msg tea.Msg) tea.Cmd {
	mouse, ok := msg.(tea.MouseMsg)
	if !ok {
		return nil
	}
	h := m.hitTest(mouse.X, mouse.Y)
	switch {
	case mouse.Button == tea.MouseButtonWheelUp:
		m.viewport.Scroll(-1, m.collection.Len())
	case mouse.Button == tea.MouseButtonWheelDown:
		m.viewport.Scroll(1, m.collection.Len())
	case mouse.Action == tea.MouseActionPress && mouse.Button == tea.MouseButtonLeft:
		m.pointerDown(h)
	case mouse.Action == tea.MouseActionRelease:
		m.pointerUp(h)
	case mouse.Action == tea.MouseActionMotion:
		m.pointerMove(h)
	}
	return nil
}

func (m *Model) pointerDown(h hit) {
	if h.kind == hitItem && m.pointer.hover != h.index {
		// terminals without motion reporting only tell us about presses.
		m.pointerMove(h)
	}
	m.pointer.pressed = h
	m.pointer.down = true
	m.pointer.leftButton = false
	m.errMsg = ""
	switch h.kind {
	case hitButton:
		m.sendPointer(listbox.ButtonPointerDown, -1)
	case hitItem:
		m.sendPointer(listbox.ItemPointerDown, h.index)
	case hitNone:
		if m.State().Expanded() {
			// clicking empty space moves focus nowhere.
			m.sendPointer(listbox.Blur, -1)
		}
	}
}

func (m *Model) pointerUp(h hit) {
	pressed := m.pointer.pressed
	m.pointer.pressed = hit{}
	m.pointer.down = false
	switch h.kind {
	case hitButton:
		m.sendPointer(listbox.ButtonPointerUp, -1)
		if pressed.kind == hitButton {
			m.sendPointer(listbox.ButtonClick, -1)
		}
	case hitItem:
		m.sendPointer(listbox.ItemPointerUp, h.index)
	}
	// the release bubbles to the document after the element under it.
	m.doc.pointerUp()
}

func (m *Model) pointerMove(h hit) {
	m.pointer.overButton = h.kind == hitButton
	if m.pointer.down && m.pointer.pressed.kind == hitButton && h.kind != hitButton && !m.pointer.leftButton {
		m.pointer.leftButton = true
		m.sendPointer(listbox.ButtonPointerLeave, -1)
	}
	overList := h.kind == hitItem || h.kind == hitPopover
	reentered := false
	if overList {
		before := m.State()
		m.sendPointer(listbox.PointerMove, -1)
		// a pointer move out of keyboard mode clears the highlight; the
		// item under the pointer takes it back.
		reentered = before == listbox.SelectingWithKeys && m.State() != before
	}
	next := -1
	if h.kind == hitItem {
		next = h.index
	}
	if next == m.pointer.hover && !reentered {
		return
	}
	if m.pointer.hover >= 0 && next != m.pointer.hover {
		m.sendPointer(listbox.ItemPointerLeave, m.pointer.hover)
	}
	m.pointer.hover = next
	if next >= 0 {
		m.sendPointer(listbox.ItemPointerEnter, next)
	}
}

func (m *Model) sendPointer(ev listbox.EventType, index int) {
	events.UI.Input("pointer", string(ev), index)
	if index >= 0 {
		m.send(listbox.Event{Type: ev, Index: index})
		return
	}
	m.send(ev)
}
