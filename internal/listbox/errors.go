package listbox

import "errors"

var (
	ErrEmptyEvent     = errors.New("listbox: event type is empty")
	ErrReservedEvent  = errors.New("listbox: event type is reserved")
	ErrReservedKey    = errors.New("listbox: event payload key is reserved")
	ErrAlreadyStarted = errors.New("listbox: machine already started")
	ErrNotStarted     = errors.New("listbox: machine not started")
	ErrStopped        = errors.New("listbox: machine stopped")
	ErrInvalidChart   = errors.New("listbox: invalid chart")
	ErrUnknownAction  = errors.New("listbox: unknown action")
	ErrUnknownGuard   = errors.New("listbox: unknown guard")
	ErrNoSuchItem     = errors.New("listbox: no item at index")
	ErrUnknownToken   = errors.New("listbox: unknown item token")
	ErrBadOrder       = errors.New("listbox: order is not a permutation of registered tokens")
)
