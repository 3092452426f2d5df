package events

import "github.com/atomicstack/popup-listbox/internal/logging"

type UITracer struct{}

type CommandTracer struct{}

type SourceTracer struct{}

type ActionTracer struct{}

var (
	UI      = UITracer{}
	Command = CommandTracer{}
	Source  = SourceTracer{}
	Action  = ActionTracer{}
)

func (UITracer) Input(kind, event string, index int) {
	logging.Trace("ui.input", map[string]interface{}{"kind": kind, "event": event, "index": index})
}

func (UITracer) Focus(surface string) {
	logging.Trace("ui.focus", map[string]interface{}{"surface": surface})
}

func (UITracer) Tooltip(index int, shown bool) {
	logging.Trace("ui.tooltip", map[string]interface{}{"index": index, "shown": shown})
}

func (UITracer) Submit(selection string) {
	logging.Trace("ui.submit", map[string]interface{}{"selection": selection})
}

func (UITracer) Items(count int) {
	logging.Trace("ui.items", map[string]interface{}{"count": count})
}

func (CommandTracer) Queue(id, label string) {
	logging.Trace("command.queue", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Skip(id, label string) {
	logging.Trace("command.skip", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Result(id, label, msgType string) {
	logging.Trace("command.result", map[string]interface{}{"id": id, "label": label, "msg": msgType})
}

func (SourceTracer) Load(kind string, count int, err error) {
	payload := map[string]interface{}{"kind": kind, "count": count}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("source.load", payload)
}

func (SourceTracer) Switch(target string) {
	logging.Trace("source.switch", map[string]interface{}{"target": target})
}

func (ActionTracer) Success(info string) {
	logging.Trace("action.success", map[string]interface{}{"info": info})
}

func (ActionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"error": err.Error()})
}
