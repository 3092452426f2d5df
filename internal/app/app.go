package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/atomicstack/popup-listbox/internal/backend"
	"github.com/atomicstack/popup-listbox/internal/listbox"
	"github.com/atomicstack/popup-listbox/internal/menu"
	"github.com/atomicstack/popup-listbox/internal/tmux"
	"github.com/atomicstack/popup-listbox/internal/ui"
)

// Config describes user-provided application options.
type Config struct {
	Source     string
	Items      []string
	Label      string
	Selected   int
	SocketPath string
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
	Filter     string
	Form       bool
	// PollInterval is how often the tmux source is reloaded; zero loads once.
	PollInterval time.Duration
	Timings      listbox.Timings
}

// resolveSocket is swapped out by tests.
var resolveSocket = tmux.ResolveSocketPath

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) (ui.Result, error) {
	opts, err := buildOptions(cfg)
	if err != nil {
		return ui.Result{}, err
	}
	if opts.Watcher != nil {
		defer opts.Watcher.Stop()
	}
	model, err := ui.NewModel(opts)
	if err != nil {
		return ui.Result{}, err
	}
	defer model.Close()

	popts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseAllMotion()}
	if tty := openTTYOutput(); tty != nil {
		defer tty.Close()
		popts = append(popts, tea.WithOutput(tty))
	}
	program := tea.NewProgram(model, popts...)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return model.Result(), err
	}
	return model.Result(), nil
}

// buildOptions loads the initial options and wires the source's action and
// refresh watcher.
func buildOptions(cfg Config) (ui.Options, error) {
	ctx := menu.Context{Source: cfg.Source, Labels: cfg.Items}
	if cfg.Source == menu.SourceTmux {
		socketPath, err := resolveSocket(cfg.SocketPath)
		if err != nil {
			return ui.Options{}, fmt.Errorf("resolve socket path: %w", err)
		}
		ctx.SocketPath = socketPath
	}
	items, err := menu.Load(ctx)
	if err != nil {
		return ui.Options{}, fmt.Errorf("load %s options: %w", cfg.Source, err)
	}
	selected := cfg.Selected
	if selected < 0 {
		selected = menu.CurrentIndex(items)
	}
	opts := ui.Options{
		Items:      items,
		Context:    ctx,
		Action:     menu.ActionHandlers()[cfg.Source],
		Label:      cfg.Label,
		Selected:   selected,
		Filter:     cfg.Filter,
		Width:      cfg.Width,
		Height:     cfg.Height,
		ShowFooter: cfg.ShowFooter,
		Verbose:    cfg.Verbose,
		Form:       cfg.Form,
		Timings:    cfg.Timings,
	}
	if cfg.Source == menu.SourceTmux && cfg.PollInterval > 0 {
		opts.Watcher = backend.NewWatcher(reload(ctx), cfg.PollInterval)
	}
	return opts, nil
}

// openTTYOutput returns the controlling terminal when stdout is redirected,
// so the selection can be piped while the popup still draws.
func openTTYOutput() *os.File {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return nil
	}
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return nil
	}
	return tty
}

func reload(menuCtx menu.Context) backend.Fetch {
	return func(ctx context.Context) ([]menu.Item, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return menu.Load(menuCtx)
	}
}
