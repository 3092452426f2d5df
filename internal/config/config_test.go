package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"

	"github.com/atomicstack/popup-listbox/internal/listbox"
	"github.com/atomicstack/popup-listbox/internal/menu"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listbox.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.Source != menu.SourceStatic {
		t.Fatalf("expected static source, got %q", cfg.App.Source)
	}
	if cfg.App.Selected != -1 {
		t.Fatalf("expected no initial selection, got %d", cfg.App.Selected)
	}
	if cfg.App.Label != defaultLabel {
		t.Fatalf("expected default label, got %q", cfg.App.Label)
	}
	if cfg.App.Timings != listbox.DefaultTimings() {
		t.Fatalf("expected default timings, got %+v", cfg.App.Timings)
	}
	if cfg.App.PollInterval != defaultPoll {
		t.Fatalf("expected poll %s, got %s", defaultPoll, cfg.App.PollInterval)
	}
	if cfg.File != "" {
		t.Fatalf("expected no config file, got %q", cfg.File)
	}
}

func TestLoadArgsFlags(t *testing.T) {
	args := []string{
		"--socket", "/tmp/tmux.sock",
		"--width", "60", "--height", "20",
		"--footer", "--trace", "--verbose",
		"--log-file", "/tmp/listbox.log",
		"-i", "alpha,beta", "--item", "gamma",
		"--selected", "1",
		"--confirm-delay", "500ms",
		"--form",
	}
	cfg, err := LoadArgs(args, nil)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.SocketPath != "/tmp/tmux.sock" || cfg.App.Width != 60 || cfg.App.Height != 20 {
		t.Fatalf("unexpected app config %+v", cfg.App)
	}
	if !cfg.App.ShowFooter || !cfg.App.Verbose || !cfg.Logging.Trace || !cfg.App.Form {
		t.Fatalf("expected boolean flags to be set, got %+v / %+v", cfg.App, cfg.Logging)
	}
	if diff := cmp.Diff([]string{"alpha", "beta", "gamma"}, cfg.App.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	if cfg.App.Selected != 1 {
		t.Fatalf("expected selected 1, got %d", cfg.App.Selected)
	}
	if cfg.App.Timings.ConfirmDelay != 500*time.Millisecond {
		t.Fatalf("expected confirm delay 500ms, got %s", cfg.App.Timings.ConfirmDelay)
	}
	if cfg.App.Timings.SearchTimeout != listbox.DefaultTimings().SearchTimeout {
		t.Fatalf("untouched timing should keep its default, got %s", cfg.App.Timings.SearchTimeout)
	}
	if cfg.Flags["logFile"] != "/tmp/listbox.log" || cfg.Flags["items"] != "alpha,beta,gamma" {
		t.Fatalf("unexpected flags map %v", cfg.Flags)
	}
	if len(cfg.Args) != len(args) {
		t.Fatalf("expected raw args to be kept, got %v", cfg.Args)
	}
}

func TestLoadArgsPositionalItems(t *testing.T) {
	cfg, err := LoadArgs([]string{"--item", "one", "two", "three"}, []string{envItems + "=env"})
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if diff := cmp.Diff([]string{"one", "two", "three"}, cfg.App.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadArgsEnvironmentFallback(t *testing.T) {
	env := []string{
		envSocketPath + "=/env/socket",
		envWidth + "=42",
		envShowFooter + "=true",
		envItems + "=red, green ,,blue",
		envSearchTimeout + "=3s",
		envSelected + "=2",
		envHeight + "=not-a-number",
	}
	cfg, err := LoadArgs(nil, env)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.SocketPath != "/env/socket" || cfg.App.Width != 42 || !cfg.App.ShowFooter {
		t.Fatalf("environment not applied: %+v", cfg.App)
	}
	if cfg.App.Height != 0 {
		t.Fatalf("invalid env value should fall back, got %d", cfg.App.Height)
	}
	if diff := cmp.Diff([]string{"red", "green", "blue"}, cfg.App.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	if cfg.App.Timings.SearchTimeout != 3*time.Second {
		t.Fatalf("expected search timeout 3s, got %s", cfg.App.Timings.SearchTimeout)
	}
	if cfg.App.Selected != 2 {
		t.Fatalf("expected selected 2, got %d", cfg.App.Selected)
	}
}

func TestLoadArgsPrecedence(t *testing.T) {
	path := writeConfig(t, `
label = "from file"
width = 10
height = 11
items = ["file-a", "file-b"]

[timings]
confirm_delay = "250ms"
drag_threshold = "750ms"
`)
	env := []string{
		envConfigFile + "=" + path,
		envWidth + "=20",
		envLabel + "=from env",
	}
	cfg, err := LoadArgs([]string{"--label", "from flag"}, env)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.File != path {
		t.Fatalf("expected config file %q, got %q", path, cfg.File)
	}
	if cfg.App.Label != "from flag" {
		t.Fatalf("flag should win, got %q", cfg.App.Label)
	}
	if cfg.App.Width != 20 {
		t.Fatalf("env should beat file, got %d", cfg.App.Width)
	}
	if cfg.App.Height != 11 {
		t.Fatalf("file should beat default, got %d", cfg.App.Height)
	}
	if diff := cmp.Diff([]string{"file-a", "file-b"}, cfg.App.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	want := listbox.Timings{
		ConfirmDelay:  250 * time.Millisecond,
		DragThreshold: 750 * time.Millisecond,
		SearchTimeout: listbox.DefaultTimings().SearchTimeout,
	}
	if cfg.App.Timings != want {
		t.Fatalf("expected timings %+v, got %+v", want, cfg.App.Timings)
	}
}

func TestLoadArgsConfigFlagOverridesEnvPath(t *testing.T) {
	envPath := writeConfig(t, `label = "env file"`)
	flagPath := writeConfig(t, `label = "flag file"`)
	cfg, err := LoadArgs([]string{"--config", flagPath}, []string{envConfigFile + "=" + envPath})
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if cfg.App.Label != "flag file" {
		t.Fatalf("expected flag config to be read, got %q", cfg.App.Label)
	}
}

func TestLoadArgsConfigErrors(t *testing.T) {
	if _, err := LoadArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}, nil); err == nil {
		t.Fatalf("expected missing file error")
	}
	broken := writeConfig(t, `label = `)
	if _, err := LoadArgs([]string{"--config", broken}, nil); err == nil {
		t.Fatalf("expected parse error")
	}
	badDuration := writeConfig(t, "[timings]\nconfirm_delay = \"soon\"\n")
	if _, err := LoadArgs([]string{"--config", badDuration}, nil); err == nil {
		t.Fatalf("expected duration error")
	}
}

func TestLoadArgsRejectsNegativeSizes(t *testing.T) {
	if _, err := LoadArgs([]string{"--width", "-1"}, nil); err == nil {
		t.Fatalf("expected width error")
	}
	if _, err := LoadArgs([]string{"--height", "-3"}, nil); err == nil {
		t.Fatalf("expected height error")
	}
}

func TestLoadArgsHelp(t *testing.T) {
	_, err := LoadArgs([]string{"--help"}, nil)
	if !errors.Is(err, pflag.ErrHelp) {
		t.Fatalf("expected ErrHelp, got %v", err)
	}
	if usage := Usage(); usage == "" {
		t.Fatalf("expected usage text")
	}
}

func TestValidate(t *testing.T) {
	base, err := LoadArgs([]string{"a", "b"}, nil)
	if err != nil {
		t.Fatalf("LoadArgs: %v", err)
	}
	if err := Validate(base); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(*Config){
		"unknown source":   func(c *Config) { c.App.Source = "nope" },
		"no static items":  func(c *Config) { c.App.Items = []string{" "} },
		"bad selection":    func(c *Config) { c.App.Selected = -2 },
		"negative poll":    func(c *Config) { c.App.PollInterval = -time.Second },
		"zero confirm":     func(c *Config) { c.App.Timings.ConfirmDelay = 0 },
		"negative drag":    func(c *Config) { c.App.Timings.DragThreshold = -time.Millisecond },
		"zero search wait": func(c *Config) { c.App.Timings.SearchTimeout = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base
			cfg.App.Items = append([]string(nil), base.App.Items...)
			mutate(&cfg)
			if err := Validate(cfg); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}

	tmux := base
	tmux.App.Source = menu.SourceTmux
	tmux.App.Items = nil
	if err := Validate(tmux); err != nil {
		t.Fatalf("tmux source needs no items, got %v", err)
	}
}
