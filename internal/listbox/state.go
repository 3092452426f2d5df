package listbox

// State tags the mutually exclusive states of the chart.
type State int

const (
	Idle State = iota
	Searching
	Selecting
	SelectingWithKeys
	SelectingWithDrag
	Confirming
	ClickingButton
	ClickingItem
)

// States enumerates every chart state in declaration order.
var States = []State{
	Idle, Searching, Selecting, SelectingWithKeys,
	SelectingWithDrag, Confirming, ClickingButton, ClickingItem,
}

var stateNames = map[State]string{
	Idle:              "idle",
	Searching:         "searching",
	Selecting:         "selecting",
	SelectingWithKeys: "selectingWithKeys",
	SelectingWithDrag: "selectingWithDrag",
	Confirming:        "confirming",
	ClickingButton:    "clickingButton",
	ClickingItem:      "clickingItem",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Expanded reports whether the popover is shown in this state.
func (s State) Expanded() bool {
	return s != Idle
}
