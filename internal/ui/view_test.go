package ui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/popup-listbox/internal/menu"
)

func TestViewShowsLabelWhileClosed(t *testing.T) {
	tm := newTestModel(t)
	view := tm.view()
	if !strings.Contains(view, "Pick a fruit") {
		t.Fatalf("expected button label in view:\n%s", view)
	}
	if strings.Contains(view, "banana") {
		t.Fatalf("closed popover should not render options:\n%s", view)
	}
}

func TestViewShowsSelectionOnButton(t *testing.T) {
	tm := newTestModel(t, func(o *Options) { o.Selected = 1 })
	view := tm.view()
	if !strings.Contains(view, "banana") || strings.Contains(view, "Pick a fruit") {
		t.Fatalf("expected the selected option on the button:\n%s", view)
	}
}

func TestViewMarksSelectedOption(t *testing.T) {
	tm := newTestModel(t, func(o *Options) { o.Selected = 2 })
	tm.key(tea.KeyDown)
	view := tm.view()
	if !strings.Contains(view, selectedMark+"cherry") {
		t.Fatalf("expected cherry marked as selected:\n%s", view)
	}
	if strings.Contains(view, selectedMark+"apple") {
		t.Fatalf("only the selection carries the mark:\n%s", view)
	}
}

func TestViewEmptyList(t *testing.T) {
	tm := newTestModel(t, func(o *Options) { o.Items = nil })
	tm.key(tea.KeyDown)
	if view := tm.view(); !strings.Contains(view, emptyOptionText) {
		t.Fatalf("expected empty placeholder:\n%s", view)
	}
}

func TestViewTruncatesLongLabels(t *testing.T) {
	long := strings.Repeat("x", 80)
	tm := newTestModel(t, func(o *Options) {
		o.Items = menu.ItemsFromLabels([]string{long})
		o.Label = "pick"
		o.Width = 20
	})
	tm.key(tea.KeyDown)
	view := tm.view()
	if strings.Contains(view, long) {
		t.Fatalf("expected long label to be truncated:\n%s", view)
	}
	if !strings.Contains(view, truncationTail) {
		t.Fatalf("expected truncation marker:\n%s", view)
	}
}

func TestViewportFollowsHighlight(t *testing.T) {
	labels := make([]string, 6)
	for i := range labels {
		labels[i] = fmt.Sprintf("opt-%d", i+1)
	}
	tm := newTestModel(t, func(o *Options) {
		o.Items = menu.ItemsFromLabels(labels)
		o.Height = 9
	})
	tm.key(tea.KeyDown)
	tm.key(tea.KeyEnd)
	view := tm.view()
	if !strings.Contains(view, "opt-6") || strings.Contains(view, "opt-1") {
		t.Fatalf("expected the end of the list in view:\n%s", view)
	}

	// the first visible row now maps to the scrolled index.
	tm.move(2, optionRow(0))
	if got := tm.model().snapshot().Context.HighlightIndex; got != 4 {
		t.Fatalf("expected hovering the first row to highlight index 4, got %d", got)
	}
}

func TestTooltipOnlyWhileIdle(t *testing.T) {
	tm := newTestModel(t)
	tm.move(1, 1)
	if view := tm.view(); !strings.Contains(view, "nothing selected yet") {
		t.Fatalf("expected button tooltip:\n%s", view)
	}
	tm.key(tea.KeyDown)
	if view := tm.view(); strings.Contains(view, "nothing selected yet") {
		t.Fatalf("tooltips are disabled while the popover is open:\n%s", view)
	}
	tm.key(tea.KeyEsc)
	if view := tm.view(); !strings.Contains(view, "nothing selected yet") {
		t.Fatalf("expected tooltip back once closed:\n%s", view)
	}
}

func TestFooterShowsHelp(t *testing.T) {
	tm := newTestModel(t, func(o *Options) { o.ShowFooter = true })
	if view := tm.view(); !strings.Contains(view, "choose") {
		t.Fatalf("expected key help in footer:\n%s", view)
	}
}

func TestFit(t *testing.T) {
	if got := fit("ab", 4); got != "ab  " {
		t.Fatalf("expected padding, got %q", got)
	}
	if got := fit("abcdef", 4); got != "abc"+truncationTail {
		t.Fatalf("expected truncation, got %q", got)
	}
}
