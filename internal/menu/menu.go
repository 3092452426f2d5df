package menu

import (
	"fmt"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/popup-listbox/internal/logging/events"
	"github.com/atomicstack/popup-listbox/internal/tmux"
)

// Item represents a selectable option.
type Item struct {
	ID      string
	Label   string
	Current bool
}

// Context carries runtime data needed by loaders and actions.
type Context struct {
	Source     string
	SocketPath string
	Labels     []string
}

const (
	SourceStatic = "static"
	SourceTmux   = "tmux"
)

// Loader produces the option list for a source.
type Loader func(Context) ([]Item, error)

// Action runs once an option is committed.
type Action func(Context, Item) tea.Cmd

// ActionResult communicates the outcome of executing an action.
type ActionResult struct {
	Item Item
	Info string
	Err  error
}

// Loaders lists option loaders keyed by source name.
func Loaders() map[string]Loader {
	return map[string]Loader{
		SourceStatic: loadStatic,
		SourceTmux:   loadTmuxSessions,
	}
}

// ActionHandlers maps source names to their commit logic.
func ActionHandlers() map[string]Action {
	return map[string]Action{
		SourceStatic: StaticSelectAction,
		SourceTmux:   SessionSwitchAction,
	}
}

// Sources returns the known source names in a stable order.
func Sources() []string {
	return []string{SourceStatic, SourceTmux}
}

// Load runs the loader registered for ctx.Source.
func Load(ctx Context) ([]Item, error) {
	loader, ok := Loaders()[ctx.Source]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", ctx.Source)
	}
	items, err := loader(ctx)
	events.Source.Load(ctx.Source, len(items), err)
	return items, err
}

// ItemsFromLabels turns free-form labels into items with derived ids.
// Empty labels are skipped and duplicate ids get a numeric suffix.
func ItemsFromLabels(labels []string) []Item {
	items := make([]Item, 0, len(labels))
	seen := make(map[string]int, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		id := slug(label)
		seen[id]++
		if n := seen[id]; n > 1 {
			id = fmt.Sprintf("%s-%d", id, n)
		}
		items = append(items, Item{ID: id, Label: label})
	}
	return items
}

// CurrentIndex returns the position of the first item marked current.
func CurrentIndex(items []Item) int {
	for i, item := range items {
		if item.Current {
			return i
		}
	}
	return -1
}

// IndexOf returns the position of the item with id.
func IndexOf(items []Item, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func loadStatic(ctx Context) ([]Item, error) {
	return ItemsFromLabels(ctx.Labels), nil
}

func loadTmuxSessions(ctx Context) ([]Item, error) {
	snap, err := tmux.FetchSessions(ctx.SocketPath)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(snap.Sessions))
	for _, s := range snap.Sessions {
		items = append(items, Item{ID: s.Name, Label: s.Label, Current: s.Current})
	}
	return items, nil
}

func StaticSelectAction(ctx Context, item Item) tea.Cmd {
	return func() tea.Msg {
		return ActionResult{Item: item, Info: fmt.Sprintf("Selected %s", item.Label)}
	}
}

func SessionSwitchAction(ctx Context, item Item) tea.Cmd {
	return func() tea.Msg {
		events.Source.Switch(item.ID)
		if err := tmux.SwitchClient(ctx.SocketPath, item.ID); err != nil {
			return ActionResult{Item: item, Err: err}
		}
		return ActionResult{Item: item, Info: fmt.Sprintf("Switched to %s", item.Label)}
	}
}

func slug(label string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(label) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
