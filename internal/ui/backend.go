package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/popup-listbox/internal/backend"
	"github.com/atomicstack/popup-listbox/internal/listbox"
	"github.com/atomicstack/popup-listbox/internal/logging"
	"github.com/atomicstack/popup-listbox/internal/logging/events"
	"github.com/atomicstack/popup-listbox/internal/menu"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	m.applyBackendEvent(eventMsg.event)
	if m.watcher != nil && m.waiting {
		return waitForBackendEvent(m.watcher)
	}
	return nil
}

func (m *Model) handleBackendDoneMsg(tea.Msg) tea.Cmd {
	m.watcher = nil
	m.loading = false
	return nil
}

func (m *Model) applyBackendEvent(evt backend.Event) {
	m.loading = false
	if evt.Err != nil {
		logging.Error(evt.Err)
		m.errMsg = evt.Err.Error()
		return
	}
	m.applyItems(evt.Items)
}

// applyItems rebuilds the collection from items in a single batch so the
// machine never observes a half-updated list. Options keep their token, and
// with it their focus surface, across refreshes.
func (m *Model) applyItems(items []menu.Item) {
	m.all = menu.CloneItems(items)
	visible := menu.FilterItems(items, m.filter)
	seen := make(map[string]struct{}, len(visible))
	order := make([]listbox.Token, 0, len(visible))

	m.collection.Batch(func() {
		for _, item := range visible {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			if tok, ok := m.tokens[item.ID]; ok {
				if err := m.collection.Update(tok, m.listItem(item, m.itemRefs[tok])); err != nil {
					logging.Error(err)
				}
				m.options[tok] = item
				order = append(order, tok)
				continue
			}
			ref := newSurface("option:"+item.ID, m.ring, m.listbox)
			tok := m.collection.Register(m.listItem(item, ref))
			m.tokens[item.ID] = tok
			m.options[tok] = item
			m.itemRefs[tok] = ref
			order = append(order, tok)
		}
		for id, tok := range m.tokens {
			if _, ok := seen[id]; ok {
				continue
			}
			if err := m.collection.Unregister(tok); err != nil {
				logging.Error(err)
			}
			if ref := m.itemRefs[tok]; ref != nil {
				ref.detach()
			}
			delete(m.tokens, id)
			delete(m.options, tok)
			delete(m.itemRefs, tok)
		}
		if err := m.collection.Reorder(order); err != nil {
			logging.Error(err)
		}
	})
	events.UI.Items(len(order))
}

func (m *Model) listItem(item menu.Item, ref *surface) listbox.Item {
	box := m.box
	return listbox.Item{
		Name: item.Label,
		Ref:  ref,
		OnSelect: func() {
			box.commit(item)
		},
	}
}
