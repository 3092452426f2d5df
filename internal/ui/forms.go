package ui

import "github.com/atomicstack/popup-listbox/internal/logging/events"

// form stands in for the form that owns the widget. Submitting ends the
// program with the current selection.
type form struct {
	box *mailbox
}

func (f *form) Submit() error {
	events.UI.Submit("requested")
	f.box.requestSubmit()
	return nil
}
