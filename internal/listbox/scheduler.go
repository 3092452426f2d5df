package listbox

import "time"

// Timer is a pending delayed transition.
type Timer interface {
	Stop() bool
}

// Scheduler arms delayed transitions. fn may be called from any goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// SystemScheduler schedules with time.AfterFunc.
var SystemScheduler Scheduler = realScheduler{}
