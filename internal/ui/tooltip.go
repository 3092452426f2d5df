package ui

import (
	"github.com/atomicstack/popup-listbox/internal/listbox"
	"github.com/atomicstack/popup-listbox/internal/logging/events"
)

// tooltip describes the hovered surface while the gate allows it. The
// machine closes the gate whenever the popover is open.
type tooltip struct {
	gate  listbox.TooltipReader
	shown bool
}

// text returns the tooltip for the hovered button, or "" when hidden.
func (t *tooltip) text(hovering bool, selected string) string {
	visible := hovering && t.gate != nil && t.gate.Enabled()
	if visible != t.shown {
		t.shown = visible
		events.UI.Tooltip(-1, visible)
	}
	if !visible {
		return ""
	}
	if selected == "" {
		return "nothing selected yet"
	}
	return "selected: " + selected
}
