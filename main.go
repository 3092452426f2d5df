package main

import (
	"fmt"
	"io"
	"os"

	"github.com/atomicstack/popup-listbox/internal/app"
	"github.com/atomicstack/popup-listbox/internal/config"
	"github.com/atomicstack/popup-listbox/internal/logging"
	"github.com/atomicstack/popup-listbox/internal/logging/events"
	"github.com/atomicstack/popup-listbox/internal/ui"
	"golang.org/x/term"
)

func main() {
	os.Exit(run())
}

func run() int {
	runtimeCfg := config.MustLoad()
	if err := config.Validate(runtimeCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 2
	}
	logging.Configure(runtimeCfg.Logging.FilePath)
	logging.SetTraceEnabled(runtimeCfg.Logging.Trace)
	defer logging.Close()

	traceStartup(runtimeCfg)

	result, err := app.Run(runtimeCfg.App)
	events.App.Exit(selectionLabel(result), err)
	if err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return report(os.Stdout, os.Stderr, result, runtimeCfg.Features.Verbose)
}

// exitCancelled matches what shells report for an interrupted program.
const exitCancelled = 130

// report prints the chosen option and returns the process exit code.
func report(stdout, stderr io.Writer, result ui.Result, verbose bool) int {
	if result.Cancelled || result.Selection == nil {
		return exitCancelled
	}
	fmt.Fprintln(stdout, result.Selection.Label)
	if verbose && result.Info != "" {
		fmt.Fprintln(stderr, result.Info)
	}
	return 0
}

func selectionLabel(result ui.Result) string {
	if result.Selection == nil {
		return ""
	}
	return result.Selection.Label
}

func traceStartup(cfg config.Config) {
	events.App.Start(startupTracePayload(cfg))
}

// startupTracePayload bundles runtime context for trace logging.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags))
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath
	payload := map[string]interface{}{
		"argv":    cfg.Args,
		"flags":   flags,
		"config":  cfg,
		"source":  cfg.App.Source,
		"options": len(cfg.App.Items),
	}
	if cfg.File != "" {
		payload["configFile"] = cfg.File
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	} else {
		payload["executableError"] = err.Error()
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	} else {
		payload["cwdError"] = err.Error()
	}
	payload["tty"] = collectTTYDetails()
	return payload
}

type ttyDetails struct {
	Detected *ttyDetected     `json:"detected,omitempty"`
	Probes   []ttyProbeResult `json:"probes"`
	// OutputRedirected means the popup draws on /dev/tty instead of stdout.
	OutputRedirected bool `json:"output_redirected"`
}

type ttyDetected struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ttyProbeResult struct {
	Name       string `json:"name"`
	IsTerminal bool   `json:"is_terminal"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Error      string `json:"error,omitempty"`
}

// collectTTYDetails inspects standard descriptors for terminal support and dimensions.
func collectTTYDetails() ttyDetails {
	probes := []struct {
		name string
		fd   uintptr
	}{
		{"stdin", os.Stdin.Fd()},
		{"stdout", os.Stdout.Fd()},
		{"stderr", os.Stderr.Fd()},
	}
	results := make([]ttyProbeResult, 0, len(probes))
	var detected *ttyDetected
	for _, probe := range probes {
		entry := ttyProbeResult{Name: probe.name}
		fd := int(probe.fd)
		if term.IsTerminal(fd) {
			entry.IsTerminal = true
			if width, height, err := term.GetSize(fd); err == nil {
				entry.Width = width
				entry.Height = height
				if detected == nil {
					detected = &ttyDetected{Source: probe.name, Width: width, Height: height}
				}
			} else {
				entry.Error = err.Error()
			}
		}
		results = append(results, entry)
	}
	return ttyDetails{Detected: detected, Probes: results, OutputRedirected: !results[1].IsTerminal}
}
