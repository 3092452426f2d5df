package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"

	"github.com/atomicstack/popup-listbox/internal/app"
	"github.com/atomicstack/popup-listbox/internal/listbox"
	"github.com/atomicstack/popup-listbox/internal/menu"
)

// ErrInvalid marks configuration that parsed but cannot be run.
var ErrInvalid = errors.New("invalid configuration")

// Config captures runtime configuration for the application.
type Config struct {
	App      app.Config
	Logging  Logging
	Features Features
	// File is the config file that was read, if any.
	File  string
	Flags map[string]string
	Args  []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

type Features struct {
	Verbose bool
}

const (
	envSocketPath    = "POPUP_LISTBOX_SOCKET"
	envWidth         = "POPUP_LISTBOX_WIDTH"
	envHeight        = "POPUP_LISTBOX_HEIGHT"
	envShowFooter    = "POPUP_LISTBOX_FOOTER"
	envVerbose       = "POPUP_LISTBOX_VERBOSE"
	envTrace         = "POPUP_LISTBOX_TRACE"
	envLogFile       = "POPUP_LISTBOX_LOG_FILE"
	envConfigFile    = "POPUP_LISTBOX_CONFIG"
	envSource        = "POPUP_LISTBOX_SOURCE"
	envItems         = "POPUP_LISTBOX_ITEMS"
	envLabel         = "POPUP_LISTBOX_LABEL"
	envSelected      = "POPUP_LISTBOX_SELECTED"
	envFilter        = "POPUP_LISTBOX_FILTER"
	envConfirmDelay  = "POPUP_LISTBOX_CONFIRM_DELAY"
	envDragThreshold = "POPUP_LISTBOX_DRAG_THRESHOLD"
	envSearchTimeout = "POPUP_LISTBOX_SEARCH_TIMEOUT"
	envPoll          = "POPUP_LISTBOX_POLL"
	envForm          = "POPUP_LISTBOX_FORM"
)

const (
	defaultLabel = "Select an option"
	defaultPoll  = 1500 * time.Millisecond
)

// settings is the merged view of every configuration layer.
type settings struct {
	socket   string
	width    int
	height   int
	footer   bool
	trace    bool
	verbose  bool
	logFile  string
	source   string
	items    []string
	label    string
	selected int
	filter   string
	form     bool
	poll     time.Duration
	timings  listbox.Timings
}

func defaults() settings {
	return settings{
		source:   menu.SourceStatic,
		label:    defaultLabel,
		selected: -1,
		poll:     defaultPoll,
		timings:  listbox.DefaultTimings(),
	}
}

// flagValues holds the destinations bound to the flag set.
type flagValues struct {
	config        string
	socket        string
	width         int
	height        int
	footer        bool
	trace         bool
	verbose       bool
	logFile       string
	source        string
	items         []string
	label         string
	selected      int
	filter        string
	form          bool
	poll          time.Duration
	confirmDelay  time.Duration
	dragThreshold time.Duration
	searchTimeout time.Duration
}

func newFlagSet() (*pflag.FlagSet, *flagValues) {
	d := defaults()
	v := &flagValues{}
	fs := pflag.NewFlagSet("popup-listbox", pflag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))
	fs.SortFlags = false

	fs.StringVarP(&v.config, "config", "c", "", "path to a TOML config file")
	fs.StringVar(&v.source, "source", d.source, "option source: "+strings.Join(menu.Sources(), ", "))
	fs.StringSliceVarP(&v.items, "item", "i", nil, "option label for the static source (repeatable, comma separated)")
	fs.StringVarP(&v.label, "label", "l", d.label, "button label shown while nothing is selected")
	fs.IntVar(&v.selected, "selected", d.selected, "initially selected option index (-1 for none)")
	fs.StringVarP(&v.filter, "filter", "f", "", "only offer options fuzzily matching this query")
	fs.BoolVar(&v.form, "form", false, "treat the widget as part of a form; enter while closed submits")
	fs.StringVar(&v.socket, "socket", "", "path to the tmux socket (overrides environment detection)")
	fs.DurationVar(&v.poll, "poll", d.poll, "refresh interval for the tmux source (0 loads once)")
	fs.DurationVar(&v.confirmDelay, "confirm-delay", d.timings.ConfirmDelay, "how long a chosen option flashes before the popover closes")
	fs.DurationVar(&v.dragThreshold, "drag-threshold", d.timings.DragThreshold, "how long the button must be held before drag selection starts")
	fs.DurationVar(&v.searchTimeout, "search-timeout", d.timings.SearchTimeout, "type-ahead inactivity before the search buffer resets")
	fs.IntVar(&v.width, "width", 0, "desired viewport width in cells (0 uses terminal width)")
	fs.IntVar(&v.height, "height", 0, "desired viewport height in rows (0 uses terminal height)")
	fs.BoolVar(&v.footer, "footer", false, "enable footer hint row (disabled by default)")
	fs.BoolVar(&v.trace, "trace", false, "enable verbose JSON trace logging")
	fs.BoolVar(&v.verbose, "verbose", false, "print success messages for actions")
	fs.StringVar(&v.logFile, "log-file", "", "path to the log file")
	return fs, v
}

// Usage returns the flag help text.
func Usage() string {
	fs, _ := newFlagSet()
	return "Usage: popup-listbox [flags] [option...]\n\n" + fs.FlagUsages()
}

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment. Values are
// resolved flag first, then environment, then config file, then default.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs, v := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	s := defaults()

	path := envOrDefault(env, envConfigFile, "")
	if fs.Changed("config") {
		path = v.config
	}
	if path != "" {
		if err := applyFile(&s, path); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&s, env)
	applyFlags(&s, fs, v)

	if s.width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", s.width)
	}
	if s.height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", s.height)
	}

	cfg := Config{
		App: app.Config{
			Source:       s.source,
			Items:        append([]string(nil), s.items...),
			Label:        s.label,
			Selected:     s.selected,
			SocketPath:   s.socket,
			Width:        s.width,
			Height:       s.height,
			ShowFooter:   s.footer,
			Verbose:      s.verbose,
			Filter:       s.filter,
			Form:         s.form,
			PollInterval: s.poll,
			Timings:      s.timings,
		},
		Logging: Logging{
			FilePath: s.logFile,
			Trace:    s.trace,
		},
		Features: Features{
			Verbose: s.verbose,
		},
		File: path,
		Flags: map[string]string{
			"socket":        s.socket,
			"width":         strconv.Itoa(s.width),
			"height":        strconv.Itoa(s.height),
			"footer":        strconv.FormatBool(s.footer),
			"trace":         strconv.FormatBool(s.trace),
			"verbose":       strconv.FormatBool(s.verbose),
			"logFile":       s.logFile,
			"source":        s.source,
			"items":         strings.Join(s.items, ","),
			"label":         s.label,
			"selected":      strconv.Itoa(s.selected),
			"filter":        s.filter,
			"form":          strconv.FormatBool(s.form),
			"poll":          s.poll.String(),
			"confirmDelay":  s.timings.ConfirmDelay.String(),
			"dragThreshold": s.timings.DragThreshold.String(),
			"searchTimeout": s.timings.SearchTimeout.String(),
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

// fileConfig mirrors the TOML config file. Pointer fields distinguish an
// explicit zero from an absent key.
type fileConfig struct {
	Source   string   `toml:"source"`
	Items    []string `toml:"items"`
	Label    *string  `toml:"label"`
	Selected *int     `toml:"selected"`
	Filter   string   `toml:"filter"`
	Form     *bool    `toml:"form"`
	Socket   string   `toml:"socket"`
	Poll     string   `toml:"poll"`
	Width    *int     `toml:"width"`
	Height   *int     `toml:"height"`
	Footer   *bool    `toml:"footer"`
	Verbose  *bool    `toml:"verbose"`
	Timings  struct {
		ConfirmDelay  string `toml:"confirm_delay"`
		DragThreshold string `toml:"drag_threshold"`
		SearchTimeout string `toml:"search_timeout"`
	} `toml:"timings"`
	Log struct {
		File  string `toml:"file"`
		Trace *bool  `toml:"trace"`
	} `toml:"log"`
}

func applyFile(s *settings, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Source != "" {
		s.source = fc.Source
	}
	if len(fc.Items) > 0 {
		s.items = append([]string(nil), fc.Items...)
	}
	if fc.Label != nil {
		s.label = *fc.Label
	}
	if fc.Selected != nil {
		s.selected = *fc.Selected
	}
	if fc.Filter != "" {
		s.filter = fc.Filter
	}
	if fc.Form != nil {
		s.form = *fc.Form
	}
	if fc.Socket != "" {
		s.socket = fc.Socket
	}
	if fc.Width != nil {
		s.width = *fc.Width
	}
	if fc.Height != nil {
		s.height = *fc.Height
	}
	if fc.Footer != nil {
		s.footer = *fc.Footer
	}
	if fc.Verbose != nil {
		s.verbose = *fc.Verbose
	}
	if fc.Log.File != "" {
		s.logFile = fc.Log.File
	}
	if fc.Log.Trace != nil {
		s.trace = *fc.Log.Trace
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"poll", fc.Poll, &s.poll},
		{"timings.confirm_delay", fc.Timings.ConfirmDelay, &s.timings.ConfirmDelay},
		{"timings.drag_threshold", fc.Timings.DragThreshold, &s.timings.DragThreshold},
		{"timings.search_timeout", fc.Timings.SearchTimeout, &s.timings.SearchTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse config file %s: %s: %w", path, d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func applyEnv(s *settings, env map[string]string) {
	s.socket = envOrDefault(env, envSocketPath, s.socket)
	s.width = envOrInt(env, envWidth, s.width)
	s.height = envOrInt(env, envHeight, s.height)
	s.footer = envOrBool(env, envShowFooter, s.footer)
	s.trace = envOrBool(env, envTrace, s.trace)
	s.verbose = envOrBool(env, envVerbose, s.verbose)
	s.logFile = envOrDefault(env, envLogFile, s.logFile)
	s.source = envOrDefault(env, envSource, s.source)
	s.items = envOrList(env, envItems, s.items)
	s.label = envOrDefault(env, envLabel, s.label)
	s.selected = envOrInt(env, envSelected, s.selected)
	s.filter = envOrDefault(env, envFilter, s.filter)
	s.form = envOrBool(env, envForm, s.form)
	s.poll = envOrDuration(env, envPoll, s.poll)
	s.timings.ConfirmDelay = envOrDuration(env, envConfirmDelay, s.timings.ConfirmDelay)
	s.timings.DragThreshold = envOrDuration(env, envDragThreshold, s.timings.DragThreshold)
	s.timings.SearchTimeout = envOrDuration(env, envSearchTimeout, s.timings.SearchTimeout)
}

func applyFlags(s *settings, fs *pflag.FlagSet, v *flagValues) {
	if fs.Changed("socket") {
		s.socket = v.socket
	}
	if fs.Changed("width") {
		s.width = v.width
	}
	if fs.Changed("height") {
		s.height = v.height
	}
	if fs.Changed("footer") {
		s.footer = v.footer
	}
	if fs.Changed("trace") {
		s.trace = v.trace
	}
	if fs.Changed("verbose") {
		s.verbose = v.verbose
	}
	if fs.Changed("log-file") {
		s.logFile = v.logFile
	}
	if fs.Changed("source") {
		s.source = v.source
	}
	// positional arguments are option labels, same as --item.
	if fs.Changed("item") || fs.NArg() > 0 {
		s.items = append(append([]string(nil), v.items...), fs.Args()...)
	}
	if fs.Changed("label") {
		s.label = v.label
	}
	if fs.Changed("selected") {
		s.selected = v.selected
	}
	if fs.Changed("filter") {
		s.filter = v.filter
	}
	if fs.Changed("form") {
		s.form = v.form
	}
	if fs.Changed("poll") {
		s.poll = v.poll
	}
	if fs.Changed("confirm-delay") {
		s.timings.ConfirmDelay = v.confirmDelay
	}
	if fs.Changed("drag-threshold") {
		s.timings.DragThreshold = v.dragThreshold
	}
	if fs.Changed("search-timeout") {
		s.timings.SearchTimeout = v.searchTimeout
	}
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrList(env map[string]string, key string, fallback []string) []string {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Fprint(os.Stdout, Usage())
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate ensures the merged configuration can be run.
func Validate(cfg Config) error {
	a := cfg.App
	known := false
	for _, name := range menu.Sources() {
		if a.Source == name {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown source %q (want one of %s)", ErrInvalid, a.Source, strings.Join(menu.Sources(), ", "))
	}
	if a.Source == menu.SourceStatic && len(menu.ItemsFromLabels(a.Items)) == 0 {
		return fmt.Errorf("%w: the static source needs at least one option", ErrInvalid)
	}
	if a.Selected < -1 {
		return fmt.Errorf("%w: selected must be >= -1 (got %d)", ErrInvalid, a.Selected)
	}
	if a.PollInterval < 0 {
		return fmt.Errorf("%w: poll must be >= 0 (got %s)", ErrInvalid, a.PollInterval)
	}
	timings := []struct {
		name  string
		value time.Duration
	}{
		{"confirm-delay", a.Timings.ConfirmDelay},
		{"drag-threshold", a.Timings.DragThreshold},
		{"search-timeout", a.Timings.SearchTimeout},
	}
	for _, t := range timings {
		if t.value <= 0 {
			return fmt.Errorf("%w: %s must be > 0 (got %s)", ErrInvalid, t.name, t.value)
		}
	}
	return nil
}
