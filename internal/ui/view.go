package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/atomicstack/popup-listbox/internal/listbox"
)

const (
	selectedMark    = "✓ "
	indicatorWidth  = 2
	caretClosed     = " ▾"
	caretOpen       = " ▴"
	caretWidth      = 2
	truncationTail  = "…"
	emptyOptionText = "(no options)"
	// lines below the popover: detail (search or tooltip) and status.
	reservedLines = 2
)

// layout holds the screen geometry shared by View and mouse hit testing.
type layout struct {
	inner    int
	buttonW  int
	buttonH  int
	popTop   int
	listTop  int
	listLeft int
	listW    int
	rows     int
	popH     int
	popW     int
	expanded bool
}

func (m *Model) layout(snap listbox.Snapshot) layout {
	btnFrameH := styles.Button.GetHorizontalFrameSize()
	popFrameH := styles.Popover.GetHorizontalFrameSize()

	inner := lipgloss.Width(m.label)
	total := m.collection.Len()
	for i := 0; i < total; i++ {
		if w := lipgloss.Width(m.collection.At(i).Name); w > inner {
			inner = w
		}
	}
	if m.width > 0 {
		avail := m.width - max(btnFrameH+caretWidth, popFrameH+indicatorWidth)
		if inner > avail {
			inner = avail
		}
	}
	if inner < 1 {
		inner = 1
	}

	l := layout{
		inner:    inner,
		buttonW:  inner + caretWidth + btnFrameH,
		buttonH:  1 + styles.Button.GetVerticalFrameSize(),
		listW:    indicatorWidth + inner,
		expanded: snap.State.Expanded(),
	}
	l.popTop = l.buttonH
	l.listTop = l.popTop + styles.Popover.GetBorderTopSize() + styles.Popover.GetPaddingTop()
	l.listLeft = styles.Popover.GetBorderLeftSize() + styles.Popover.GetPaddingLeft()
	l.rows = m.viewport.Rows(total)
	body := l.rows
	if body == 0 {
		body = 1
	}
	l.popH = body + styles.Popover.GetVerticalFrameSize()
	l.popW = l.listW + popFrameH
	return l
}

// maxVisibleItems returns how many option rows fit, or 0 when unbounded.
func (m *Model) maxVisibleItems() int {
	if m.height <= 0 {
		return 0
	}
	chrome := 1 + styles.Button.GetVerticalFrameSize() + styles.Popover.GetVerticalFrameSize() + reservedLines
	if m.showFooter {
		chrome++
	}
	rows := m.height - chrome
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) hitTest(x, y int) hit {
	l := m.layout(m.snapshot())
	if x < 0 || y < 0 {
		return hit{kind: hitNone, index: -1}
	}
	if y < l.buttonH && x < l.buttonW {
		return hit{kind: hitButton, index: -1}
	}
	if !l.expanded || y < l.popTop || y >= l.popTop+l.popH || x >= l.popW {
		return hit{kind: hitNone, index: -1}
	}
	row := y - l.listTop
	if row >= 0 && row < l.rows && x >= l.listLeft && x < l.listLeft+l.listW {
		if idx, ok := m.viewport.IndexAt(row, m.collection.Len()); ok {
			return hit{kind: hitItem, index: idx}
		}
	}
	return hit{kind: hitPopover, index: -1}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	snap := m.snapshot()
	l := m.layout(snap)
	sections := []string{m.renderButton(snap, l)}
	if l.expanded {
		sections = append(sections, m.renderPopover(snap, l))
	}
	sections = append(sections, m.detailLine(snap), m.statusLine())
	if m.showFooter {
		sections = append(sections, styles.Footer.Render(m.help.View(m.keys)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) selectedName(snap listbox.Snapshot) string {
	i := snap.Context.SelectedIndex
	if i < 0 || i >= m.collection.Len() {
		return ""
	}
	return m.collection.At(i).Name
}

func (m *Model) renderButton(snap listbox.Snapshot, l layout) string {
	text := m.selectedName(snap)
	if text == "" {
		text = m.label
	}
	caret := caretClosed
	if l.expanded {
		caret = caretOpen
	}
	style := styles.Button
	if m.ring.Current() == m.button {
		style = styles.ButtonFocused
	}
	return style.Render(fit(text, l.inner) + caret)
}

func (m *Model) renderPopover(snap listbox.Snapshot, l layout) string {
	total := m.collection.Len()
	lines := make([]string, 0, l.rows)
	if total == 0 {
		lines = append(lines, styles.Info.Render(fit(emptyOptionText, l.listW)))
	}
	start, end := m.viewport.Window(total)
	for i := start; i < end; i++ {
		indicator := styles.ItemIndicator.Render(strings.Repeat(" ", indicatorWidth))
		if i == snap.Context.SelectedIndex {
			indicator = styles.SelectedIndicator.Render(selectedMark)
		}
		style := styles.Item
		if i == snap.Context.HighlightIndex {
			style = styles.HighlightedItem
		}
		lines = append(lines, indicator+style.Render(fit(m.collection.At(i).Name, l.inner)))
	}
	box := styles.Popover
	if m.ring.within(m.listbox) {
		box = styles.PopoverFocused
	}
	return box.Render(strings.Join(lines, "\n"))
}

func (m *Model) detailLine(snap listbox.Snapshot) string {
	tip := m.tip.text(m.pointer.overButton, m.selectedName(snap))
	if search := snap.Context.Search; search != "" {
		return styles.Search.Render("search: " + search)
	}
	if tip != "" {
		return styles.Tooltip.Render(tip)
	}
	return ""
}

func (m *Model) statusLine() string {
	switch {
	case m.errMsg != "":
		return styles.Error.Render(m.errMsg)
	case m.loading:
		return styles.Loading.Render("loading options…")
	case m.infoMsg != "" && m.verbose:
		return styles.Info.Render(m.infoMsg)
	case m.filter != "":
		return styles.Info.Render(fmt.Sprintf("filter %q: %d of %d", m.filter, m.collection.Len(), len(m.all)))
	}
	return ""
}

// fit truncates s to width cells and pads it so rows line up.
func fit(s string, width int) string {
	s = ansi.Truncate(s, width, truncationTail)
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
