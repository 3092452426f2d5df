package listbox

import "time"

// Transition is the reaction of a state to one event.
type Transition struct {
	Target  State
	Guard   GuardName
	Actions []ActionName
}

// Delayed is a transition taken when its state has been active for Delay.
type Delayed struct {
	Delay time.Duration
	Transition
}

// StateNode describes one state of the chart.
type StateNode struct {
	Entry []ActionName
	On    map[EventType]Transition
	After *Delayed
}

// Chart is the full transition table interpreted by a Machine.
type Chart struct {
	Initial State
	States  map[State]*StateNode
}

// Timings holds the delays used by the delayed transitions.
type Timings struct {
	ConfirmDelay  time.Duration
	DragThreshold time.Duration
	SearchTimeout time.Duration
}

// DefaultTimings returns the stock delays.
func DefaultTimings() Timings {
	return Timings{
		ConfirmDelay:  2 * time.Second,
		DragThreshold: 2 * time.Second,
		SearchTimeout: time.Second,
	}
}

func (t Timings) withDefaults() Timings {
	def := DefaultTimings()
	if t.ConfirmDelay <= 0 {
		t.ConfirmDelay = def.ConfirmDelay
	}
	if t.DragThreshold <= 0 {
		t.DragThreshold = def.DragThreshold
	}
	if t.SearchTimeout <= 0 {
		t.SearchTimeout = def.SearchTimeout
	}
	return t
}

// Lookup returns the transition for ev in state s.
func (c *Chart) Lookup(s State, ev EventType) (Transition, bool) {
	node, ok := c.States[s]
	if !ok || node == nil {
		return Transition{}, false
	}
	tr, ok := node.On[ev]
	return tr, ok
}

func (c *Chart) node(s State) *StateNode {
	if c == nil {
		return nil
	}
	return c.States[s]
}

func to(target State, actions ...ActionName) Transition {
	return Transition{Target: target, Actions: actions}
}

func when(target State, guard GuardName, actions ...ActionName) Transition {
	return Transition{Target: target, Guard: guard, Actions: actions}
}

type handlers map[EventType]Transition

func merge(sets ...handlers) map[EventType]Transition {
	out := make(map[EventType]Transition)
	for _, set := range sets {
		for ev, tr := range set {
			out[ev] = tr
		}
	}
	return out
}

func openEvents() handlers {
	return handlers{
		KeydownEscape: when(Idle, GuardNotConfirming, ActionFocusButton),
		Blur:          when(Idle, GuardNotConfirming),
	}
}

func selectingEvents() handlers {
	return handlers{
		KeydownArrowDown: to(SelectingWithKeys, ActionHighlightNext),
		// up steps backwards with highlightPrev, not highlightNext.
		KeydownArrowUp:   to(SelectingWithKeys, ActionHighlightPrev),
		ItemPointerEnter: to(Selecting, ActionHighlightItem),
		ItemPointerLeave: to(Selecting, ActionResetHighlightIndex),
		ItemPointerDown:  to(ClickingItem),
		ItemPointerUp:    when(Confirming, GuardDragStarted),
		DocPointerUp:     when(Idle, GuardDragStarted, ActionFocusButton),
		KeydownEnter:     when(Confirming, GuardHasHighlight),
		KeydownSpace:     when(Confirming, GuardHasHighlight),
		KeydownHome:      to(SelectingWithKeys, ActionHighlightFirst),
		KeydownEnd:       to(SelectingWithKeys, ActionHighlightLast),
		// resetSearch runs first so a new search never extends a stale buffer.
		KeydownChar:      to(Searching, ActionResetSearch, ActionConcatSearch, ActionSetSearchStartIndex),
	}
}

// NewChart builds the listbox chart using the given delays. Zero delays
// fall back to DefaultTimings.
func NewChart(t Timings) *Chart {
	t = t.withDefaults()
	open := []ActionName{ActionFocusSelectedItem, ActionDisableTooltips}
	return &Chart{
		Initial: Idle,
		States: map[State]*StateNode{
			Idle: {
				Entry: []ActionName{ActionResetDrag, ActionEnableTooltips},
				On: map[EventType]Transition{
					ButtonClick:       to(Selecting),
					ButtonPointerDown: to(ClickingButton),
					KeydownEnter:      when(Idle, GuardIsFormElement, ActionSubmit),
					KeydownSpace:      to(SelectingWithKeys, ActionFocusSelectedItem),
					KeydownArrowDown:  to(SelectingWithKeys, ActionFocusSelectedItem),
					KeydownArrowUp:    to(SelectingWithKeys, ActionFocusSelectedItem),
					KeydownChar:       to(Idle, ActionConcatSearch, ActionSetSearchStartIndex),
				},
			},
			Searching: {
				Entry: []ActionName{ActionHighlightSearchMatch},
				On: merge(openEvents(), handlers{
					KeydownChar:      to(Searching, ActionConcatSearch),
					KeydownEnter:     when(Confirming, GuardHasHighlight, ActionResetSearch, ActionResetSearchStartIndex),
					KeydownArrowDown: to(SelectingWithKeys, ActionResetSearch, ActionResetSearchStartIndex, ActionHighlightNext),
					KeydownArrowUp:   to(SelectingWithKeys, ActionResetSearch, ActionResetSearchStartIndex, ActionHighlightPrev),
				}),
				After: &Delayed{
					Delay:      t.SearchTimeout,
					Transition: to(SelectingWithKeys, ActionResetSearch, ActionResetSearchStartIndex),
				},
			},
			Selecting: {
				Entry: open,
				On:    merge(openEvents(), selectingEvents()),
			},
			SelectingWithKeys: {
				Entry: open,
				On: merge(openEvents(), selectingEvents(), handlers{
					PointerMove: to(Selecting, ActionResetHighlightIndex),
				}),
			},
			SelectingWithDrag: {
				Entry: []ActionName{ActionStartDrag, ActionDisableTooltips},
				On: merge(openEvents(), selectingEvents(), handlers{
					ItemPointerEnter: to(SelectingWithDrag, ActionHighlightItem),
					ItemPointerLeave: to(SelectingWithDrag, ActionResetHighlightIndex),
				}),
			},
			Confirming: {
				Entry: []ActionName{ActionSelectHighlightedItem},
				On:    map[EventType]Transition{},
				After: &Delayed{
					Delay:      t.ConfirmDelay,
					Transition: to(Idle, ActionFocusButton, ActionCommitSelection),
				},
			},
			ClickingButton: {
				Entry: []ActionName{ActionResetDrag, ActionHighlightSelectedItem, ActionDisableTooltips},
				On: map[EventType]Transition{
					ButtonPointerUp:    to(Selecting),
					ButtonPointerLeave: to(SelectingWithDrag),
				},
				After: &Delayed{Delay: t.DragThreshold, Transition: to(SelectingWithDrag)},
			},
			ClickingItem: {
				Entry: []ActionName{ActionResetDrag},
				On: map[EventType]Transition{
					ItemPointerLeave: to(SelectingWithDrag),
					ItemPointerUp:    to(Confirming),
				},
				After: &Delayed{Delay: t.DragThreshold, Transition: to(SelectingWithDrag)},
			},
		},
	}
}
