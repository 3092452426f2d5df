package listbox

import (
	"fmt"
	"sort"
)

// ProblemKind classifies a validation finding.
type ProblemKind string

const (
	MissingAction ProblemKind = "missing-action"
	MissingGuard  ProblemKind = "missing-guard"
	UnknownTarget ProblemKind = "unknown-target"
	MissingState  ProblemKind = "missing-state"
	UnusedAction  ProblemKind = "unused-action"
)

// Problem is one finding of Validate. State and Event locate the reference;
// Event is empty for entry actions and "after" for delayed transitions.
type Problem struct {
	Kind  ProblemKind
	State State
	Event EventType
	Name  string
}

func (p Problem) Error() string {
	switch p.Kind {
	case UnusedAction:
		return fmt.Sprintf("%s: %s", p.Kind, p.Name)
	case MissingState:
		return fmt.Sprintf("%s: %s", p.Kind, p.State)
	}
	where := p.State.String()
	if p.Event != "" {
		where += "." + string(p.Event)
	} else {
		where += ".entry"
	}
	return fmt.Sprintf("%s: %s at %s", p.Kind, p.Name, where)
}

// Fatal reports whether the problem makes the chart unusable.
func (p Problem) Fatal() bool {
	return p.Kind != UnusedAction
}

const afterEvent EventType = "after"

// Validate checks every name referenced by chart against the registries and
// reports actions that are registered but never referenced. The result is
// sorted for stable output.
func Validate(chart *Chart, actions Actions, guards Guards) []Problem {
	var problems []Problem
	used := make(map[ActionName]bool)
	if chart == nil {
		return []Problem{{Kind: MissingState, State: Idle}}
	}
	if chart.node(chart.Initial) == nil {
		problems = append(problems, Problem{Kind: MissingState, State: chart.Initial})
	}

	checkActions := func(s State, ev EventType, names []ActionName) {
		for _, name := range names {
			used[name] = true
			if _, ok := actions[name]; !ok {
				problems = append(problems, Problem{Kind: MissingAction, State: s, Event: ev, Name: string(name)})
			}
		}
	}
	checkTransition := func(s State, ev EventType, tr Transition) {
		if tr.Guard != "" {
			if _, ok := guards[tr.Guard]; !ok {
				problems = append(problems, Problem{Kind: MissingGuard, State: s, Event: ev, Name: string(tr.Guard)})
			}
		}
		if chart.node(tr.Target) == nil {
			problems = append(problems, Problem{Kind: UnknownTarget, State: s, Event: ev, Name: tr.Target.String()})
		}
		checkActions(s, ev, tr.Actions)
	}

	for s, node := range chart.States {
		if node == nil {
			problems = append(problems, Problem{Kind: MissingState, State: s})
			continue
		}
		checkActions(s, "", node.Entry)
		for ev, tr := range node.On {
			checkTransition(s, ev, tr)
		}
		if node.After != nil {
			checkTransition(s, afterEvent, node.After.Transition)
		}
	}

	for name := range actions {
		if !used[name] {
			problems = append(problems, Problem{Kind: UnusedAction, Name: string(name)})
		}
	}

	sort.Slice(problems, func(i, j int) bool {
		a, b := problems[i], problems[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.State != b.State {
			return a.State < b.State
		}
		if a.Event != b.Event {
			return a.Event < b.Event
		}
		return a.Name < b.Name
	})
	return problems
}
