package command

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/popup-listbox/internal/logging/events"
	"github.com/atomicstack/popup-listbox/internal/menu"
)

// Request encapsulates the action run for a committed option.
type Request struct {
	Handler menu.Action
	Item    menu.Item
}

// Bus runs option actions as Bubble Tea commands.
type Bus struct{}

// New initialises a command bus instance.
func New() *Bus {
	return &Bus{}
}

// Execute wraps the request's action into a command while emitting trace
// logs. A request without a handler resolves to a plain ActionResult so the
// commit still completes.
func (b *Bus) Execute(ctx menu.Context, req Request) tea.Cmd {
	events.Command.Queue(req.Item.ID, req.Item.Label)
	return func() tea.Msg {
		if req.Handler == nil {
			events.Command.Skip(req.Item.ID, req.Item.Label)
			return menu.ActionResult{Item: req.Item}
		}
		cmd := req.Handler(ctx, req.Item)
		if cmd == nil {
			events.Command.Skip(req.Item.ID, req.Item.Label)
			return menu.ActionResult{Item: req.Item}
		}
		msg := cmd()
		events.Command.Result(req.Item.ID, req.Item.Label, fmt.Sprintf("%T", msg))
		if result, ok := msg.(menu.ActionResult); ok && result.Item == (menu.Item{}) {
			result.Item = req.Item
			return result
		}
		return msg
	}
}
