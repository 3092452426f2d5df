package listbox

// Scope is what guards and actions see while a transition is evaluated.
type Scope struct {
	// State is the state the event was received in.
	State State
	// Target is the state being entered; equal to State for guards.
	Target State
	Ctx    *Context
	Event  Event
	Env    Env

	tooltips *TooltipGate
	deferred []func() error
}

// Defer queues fn to run once the current step has committed and subscribers
// have been notified, before the next queued event is processed.
func (s *Scope) Defer(fn func() error) {
	if fn == nil {
		return
	}
	s.deferred = append(s.deferred, fn)
}

// Tooltips returns the gate shared with the tooltip collaborator, or nil.
func (s *Scope) Tooltips() *TooltipGate {
	return s.tooltips
}

func (s *Scope) button() Handle {
	if s.Env.Button != nil {
		return s.Env.Button
	}
	return s.Ctx.Button
}

func (s *Scope) listbox() Handle {
	if s.Env.Listbox != nil {
		return s.Env.Listbox
	}
	return s.Ctx.Listbox
}

// GuardName keys a guard in a Guards registry.
type GuardName string

const (
	GuardHasHighlight            GuardName = "hasHighlight"
	GuardClickedNonListboxOption GuardName = "clickedNonListboxOption"
	GuardDragStarted             GuardName = "dragStarted"
	GuardNotConfirming           GuardName = "notConfirming"
	GuardIsFormElement           GuardName = "isFormElement"
)

// Guard gates a transition. Guards must not mutate the scope.
type Guard func(s *Scope) bool

// Guards maps names used by a chart to their predicates.
type Guards map[GuardName]Guard

// DefaultGuards returns the predicates referenced by NewChart.
func DefaultGuards() Guards {
	return Guards{
		GuardHasHighlight:            hasHighlight,
		GuardClickedNonListboxOption: clickedNonListboxOption,
		GuardDragStarted:             dragStarted,
		GuardNotConfirming:           notConfirming,
		GuardIsFormElement:           isFormElement,
	}
}

func hasHighlight(s *Scope) bool {
	return s.Ctx.SelectedIndex > -1
}

func clickedNonListboxOption(s *Scope) bool {
	target := s.Event.RelatedTarget
	if target == nil {
		return true
	}
	lb := s.listbox()
	return lb == nil || !lb.Contains(target)
}

func dragStarted(s *Scope) bool {
	return s.Ctx.Dragging
}

func notConfirming(s *Scope) bool {
	return s.State != Confirming
}

func isFormElement(s *Scope) bool {
	return s.Env.Form != nil
}
