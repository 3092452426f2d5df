package listbox

import "fmt"

// ActionName keys an action in an Actions registry.
type ActionName string

const (
	ActionHighlightFirst        ActionName = "highlightFirst"
	ActionHighlightLast         ActionName = "highlightLast"
	ActionHighlightItem         ActionName = "highlightItem"
	ActionHighlightNext         ActionName = "highlightNext"
	ActionHighlightPrev         ActionName = "highlightPrev"
	ActionResetHighlightIndex   ActionName = "resetHighlightIndex"
	ActionHighlightSelectedItem ActionName = "highlightSelectedItem"
	ActionHighlightSearchMatch  ActionName = "highlightSearchMatch"
	ActionSelectFirst           ActionName = "selectFirst"
	ActionSelectLast            ActionName = "selectLast"
	ActionAssignSelectedIndex   ActionName = "assignSelectedIndex"
	ActionSelectNext            ActionName = "selectNext"
	ActionSelectPrev            ActionName = "selectPrev"
	ActionSelectHighlightedItem ActionName = "selectHighlightedItem"
	ActionCommitSelection       ActionName = "commitSelection"
	ActionResetSearch           ActionName = "resetSearch"
	ActionConcatSearch          ActionName = "concatSearch"
	ActionSetSearchStartIndex   ActionName = "setSearchStartIndex"
	ActionResetSearchStartIndex ActionName = "resetSearchStartIndex"
	ActionStartDrag             ActionName = "startDrag"
	ActionResetDrag             ActionName = "resetDrag"
	ActionFocusButton           ActionName = "focusButton"
	ActionFocusListbox          ActionName = "focusListbox"
	ActionFocusSelectedItem     ActionName = "focusSelectedItem"
	ActionDisableTooltips       ActionName = "disableTooltips"
	ActionEnableTooltips        ActionName = "enableTooltips"
	ActionSubmit                ActionName = "submit"
)

// Action mutates the scope's context or performs a side effect. A returned
// error aborts the event; mutations made so far are kept.
type Action func(s *Scope) error

// Actions maps names used by a chart to their implementations.
type Actions map[ActionName]Action

// DefaultActions returns every built-in action.
func DefaultActions() Actions {
	return Actions{
		ActionHighlightFirst:        assign(func(s *Scope) { s.Ctx.HighlightIndex = firstIndex(s.Ctx) }),
		ActionHighlightLast:         assign(func(s *Scope) { s.Ctx.HighlightIndex = lastIndex(s.Ctx) }),
		ActionHighlightItem:         assign(func(s *Scope) { s.Ctx.HighlightIndex = s.Event.Index }),
		ActionHighlightNext:         assign(func(s *Scope) { s.Ctx.HighlightIndex = step(s.Ctx, s.Ctx.HighlightIndex, 1) }),
		ActionHighlightPrev:         assign(func(s *Scope) { s.Ctx.HighlightIndex = step(s.Ctx, s.Ctx.HighlightIndex, -1) }),
		ActionResetHighlightIndex:   assign(func(s *Scope) { s.Ctx.HighlightIndex = -1 }),
		ActionHighlightSelectedItem: assign(func(s *Scope) { s.Ctx.HighlightIndex = s.Ctx.SelectedIndex }),
		ActionHighlightSearchMatch:  assign(highlightSearchMatch),
		ActionSelectFirst:           assign(func(s *Scope) { s.Ctx.SelectedIndex = firstIndex(s.Ctx) }),
		ActionSelectLast:            assign(func(s *Scope) { s.Ctx.SelectedIndex = lastIndex(s.Ctx) }),
		ActionAssignSelectedIndex:   assign(func(s *Scope) { s.Ctx.SelectedIndex = s.Event.Index }),
		ActionSelectNext:            assign(func(s *Scope) { s.Ctx.SelectedIndex = step(s.Ctx, s.Ctx.SelectedIndex, 1) }),
		ActionSelectPrev:            assign(func(s *Scope) { s.Ctx.SelectedIndex = step(s.Ctx, s.Ctx.SelectedIndex, -1) }),
		ActionSelectHighlightedItem: assign(selectHighlightedItem),
		ActionCommitSelection:       commitSelection,
		ActionResetSearch:           assign(func(s *Scope) { s.Ctx.Search = "" }),
		ActionConcatSearch:          assign(func(s *Scope) { s.Ctx.Search += s.Event.Key }),
		ActionSetSearchStartIndex:   assign(func(s *Scope) { s.Ctx.SearchStartIndex = s.Ctx.SelectedIndex }),
		ActionResetSearchStartIndex: assign(func(s *Scope) { s.Ctx.SearchStartIndex = -1 }),
		ActionStartDrag:             assign(func(s *Scope) { s.Ctx.Dragging = true }),
		ActionResetDrag:             assign(func(s *Scope) { s.Ctx.Dragging = false }),
		ActionFocusButton:           focusButton,
		ActionFocusListbox:          focusListbox,
		ActionFocusSelectedItem:     focusSelectedItem,
		ActionDisableTooltips:       setTooltips(false),
		ActionEnableTooltips:        setTooltips(true),
		ActionSubmit:                submit,
	}
}

func assign(fn func(s *Scope)) Action {
	return func(s *Scope) error {
		fn(s)
		return nil
	}
}

func firstIndex(c *Context) int {
	if c.itemCount() == 0 {
		return -1
	}
	return 0
}

func lastIndex(c *Context) int {
	return c.itemCount() - 1
}

// step moves from by delta around the live collection. From -1 a forward
// step lands on the first item and a backward step on the last.
func step(c *Context, from, delta int) int {
	n := c.itemCount()
	if n == 0 {
		return -1
	}
	if from < 0 || from >= n {
		if delta > 0 {
			return 0
		}
		return n - 1
	}
	return ((from+delta)%n + n) % n
}

func selectHighlightedItem(s *Scope) {
	if s.Ctx.HighlightIndex > -1 {
		s.Ctx.SelectedIndex = s.Ctx.HighlightIndex
	}
}

func highlightSearchMatch(s *Scope) {
	s.Ctx.HighlightIndex = SearchMatch(s.Ctx.Items, s.Ctx.Search, s.Ctx.SearchStartIndex)
}

// commitSelection invokes the selected item's callback. A selection that
// no longer addresses an item is reported once the step completes rather
// than aborting it, so the confirm timeout always leaves CONFIRMING.
func commitSelection(s *Scope) error {
	item, ok := s.Ctx.item(s.Ctx.SelectedIndex)
	if !ok {
		index, count := s.Ctx.SelectedIndex, s.Ctx.itemCount()
		if index < 0 {
			return nil
		}
		s.Defer(func() error {
			return fmt.Errorf("commit selection: %w %d (%d items)", ErrNoSuchItem, index, count)
		})
		return nil
	}
	if item.OnSelect != nil {
		item.OnSelect()
	}
	return nil
}

func focusButton(s *Scope) error {
	button := s.button()
	if button == nil {
		return nil
	}
	s.Defer(func() error {
		if err := button.Focus(); err != nil {
			return fmt.Errorf("focus button: %w", err)
		}
		return nil
	})
	return nil
}

// Focus actions run once the step has committed; hosts can drop focus
// requests made while they are still dispatching the triggering input.
func focusListbox(s *Scope) error {
	lb := s.listbox()
	if lb == nil {
		return nil
	}
	s.Defer(func() error {
		if err := lb.Focus(); err != nil {
			return fmt.Errorf("focus listbox: %w", err)
		}
		return nil
	})
	return nil
}

// focusSelectedItem seeds the highlight from the selection when the
// popover opens from idle, then moves focus to the highlighted option once
// the step completes.
func focusSelectedItem(s *Scope) error {
	if s.State == Idle {
		s.Ctx.HighlightIndex = s.Ctx.SelectedIndex
	}
	target := s.listbox()
	if item, ok := s.Ctx.item(s.Ctx.HighlightIndex); ok && item.Ref != nil {
		target = item.Ref
	}
	if target == nil {
		return nil
	}
	s.Defer(func() error {
		if err := target.Focus(); err != nil {
			return fmt.Errorf("focus selected item: %w", err)
		}
		return nil
	})
	return nil
}

func setTooltips(enabled bool) Action {
	return func(s *Scope) error {
		gate := s.Tooltips()
		if gate == nil {
			return nil
		}
		if enabled {
			gate.Enable()
		} else {
			gate.Disable()
		}
		return nil
	}
}

func submit(s *Scope) error {
	if s.Env.Form == nil {
		return nil
	}
	if err := s.Env.Form.Submit(); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return nil
}
