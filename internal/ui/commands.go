package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/popup-listbox/internal/logging/events"
	"github.com/atomicstack/popup-listbox/internal/menu"
	"github.com/atomicstack/popup-listbox/internal/ui/command"
)

// commitCmd runs the configured action for an option the machine committed.
func (m *Model) commitCmd(item menu.Item) tea.Cmd {
	m.loading = true
	m.errMsg = ""
	return m.bus.Execute(m.menuCtx, command.Request{Handler: m.action, Item: item})
}

func (m *Model) handleActionResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(menu.ActionResult)
	if !ok {
		return nil
	}
	m.loading = false
	if result.Err != nil {
		m.errMsg = result.Err.Error()
		m.infoMsg = ""
		events.Action.Error(result.Err)
		return nil
	}
	m.infoMsg = result.Info
	item := result.Item
	m.result.Selection = &item
	m.result.Info = result.Info
	events.Action.Success(result.Info)
	if m.form != nil {
		// inside a form the choice waits for an explicit submit.
		return nil
	}
	return m.quit()
}

// submit ends the program with whatever is selected right now.
func (m *Model) submit() tea.Cmd {
	snap := m.snapshot()
	m.result.Submitted = true
	if item, ok := m.optionAt(snap.Context.SelectedIndex); ok {
		m.result.Selection = &item
		events.UI.Submit(item.ID)
	} else {
		m.result.Selection = nil
		events.UI.Submit("")
	}
	return m.quit()
}
