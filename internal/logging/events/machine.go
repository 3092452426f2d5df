package events

import "github.com/atomicstack/popup-listbox/internal/logging"

type MachineTracer struct{}

var Machine = MachineTracer{}

func (MachineTracer) Lifecycle(id, phase string) {
	logging.Trace("machine.lifecycle", map[string]interface{}{"id": id, "phase": phase})
}

func (MachineTracer) Transition(id, from, event, to string, step uint64) {
	logging.Trace("machine.transition", map[string]interface{}{
		"id":    id,
		"from":  from,
		"event": event,
		"to":    to,
		"step":  step,
	})
}

func (MachineTracer) Dropped(id, state, event string) {
	logging.Trace("machine.dropped", map[string]interface{}{"id": id, "state": state, "event": event})
}

func (MachineTracer) Guarded(id, state, event, guard string) {
	logging.Trace("machine.guarded", map[string]interface{}{"id": id, "state": state, "event": event, "guard": guard})
}

func (MachineTracer) TimerArmed(id, state string, generation uint64, delayMS int64) {
	logging.Trace("machine.timer.armed", map[string]interface{}{
		"id":         id,
		"state":      state,
		"generation": generation,
		"delay_ms":   delayMS,
	})
}

func (MachineTracer) TimerFired(id, state string, generation uint64, stale bool) {
	logging.Trace("machine.timer.fired", map[string]interface{}{
		"id":         id,
		"state":      state,
		"generation": generation,
		"stale":      stale,
	})
}

func (MachineTracer) ActionError(id, state, event string, err error) {
	if err == nil {
		return
	}
	logging.Trace("machine.action.error", map[string]interface{}{
		"id":    id,
		"state": state,
		"event": event,
		"error": err.Error(),
	})
}

func (MachineTracer) Problem(id, problem string) {
	logging.Trace("machine.problem", map[string]interface{}{"id": id, "problem": problem})
}
