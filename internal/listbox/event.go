package listbox

import (
	"fmt"
	"strings"
)

// EventType names an input signal accepted by the machine.
type EventType string

const (
	ButtonClick        EventType = "BUTTON_CLICK"
	ButtonPointerDown  EventType = "BUTTON_POINTER_DOWN"
	ButtonPointerUp    EventType = "BUTTON_POINTER_UP"
	ButtonPointerLeave EventType = "BUTTON_POINTER_LEAVE"

	ItemPointerEnter EventType = "ITEM_POINTER_ENTER"
	ItemPointerLeave EventType = "ITEM_POINTER_LEAVE"
	ItemPointerDown  EventType = "ITEM_POINTER_DOWN"
	ItemPointerUp    EventType = "ITEM_POINTER_UP"

	PointerMove  EventType = "POINTER_MOVE"
	DocPointerUp EventType = "DOC_POINTER_UP"
	Blur         EventType = "BLUR"

	KeydownEnter     EventType = "KEYDOWN_ENTER"
	KeydownSpace     EventType = "KEYDOWN_SPACE"
	KeydownArrowDown EventType = "KEYDOWN_ARROW_DOWN"
	KeydownArrowUp   EventType = "KEYDOWN_ARROW_UP"
	KeydownHome      EventType = "KEYDOWN_HOME"
	KeydownEnd       EventType = "KEYDOWN_END"
	KeydownEscape    EventType = "KEYDOWN_ESCAPE"
	KeydownChar      EventType = "KEYDOWN_CHAR"
)

// internal signals; never accepted from Send.
const (
	internalPrefix           = "listbox."
	eventInit      EventType = internalPrefix + "init"
	eventAfter     EventType = internalPrefix + "after"
)

// Vocabulary lists every externally sendable event type.
var Vocabulary = []EventType{
	ButtonClick, ButtonPointerDown, ButtonPointerUp, ButtonPointerLeave,
	ItemPointerEnter, ItemPointerLeave, ItemPointerDown, ItemPointerUp,
	PointerMove, DocPointerUp, Blur,
	KeydownEnter, KeydownSpace, KeydownArrowDown, KeydownArrowUp,
	KeydownHome, KeydownEnd, KeydownEscape, KeydownChar,
}

// reservedKeys may not appear in Event.Data; the runtime owns them.
var reservedKeys = []string{"type", "refs"}

func (t EventType) internal() bool {
	return strings.HasPrefix(string(t), internalPrefix)
}

// Sendable is accepted by Machine.Send: either a bare EventType or an Event
// carrying payload fields.
type Sendable interface {
	event() Event
}

func (t EventType) event() Event { return Event{Type: t} }

// Event is a vocabulary tag plus its auxiliary payload.
type Event struct {
	Type EventType
	// Key is the typed character for KEYDOWN_CHAR.
	Key string
	// Index is the item position for ITEM_* events.
	Index int
	// RelatedTarget is the surface receiving focus for BLUR.
	RelatedTarget Handle
	// Data holds any further host-specific payload.
	Data map[string]any

	generation uint64
}

func (e Event) event() Event { return e }

func (e Event) validate() error {
	if e.Type == "" {
		return ErrEmptyEvent
	}
	if e.Type.internal() {
		return fmt.Errorf("%w: %s", ErrReservedEvent, e.Type)
	}
	for _, key := range reservedKeys {
		if _, ok := e.Data[key]; ok {
			return fmt.Errorf("%w: %q", ErrReservedKey, key)
		}
	}
	return nil
}
