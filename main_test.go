package main

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/atomicstack/popup-listbox/internal/app"
	"github.com/atomicstack/popup-listbox/internal/config"
	"github.com/atomicstack/popup-listbox/internal/menu"
	"github.com/atomicstack/popup-listbox/internal/ui"
)

func TestCollectTTYDetailsIncludesStandardDescriptors(t *testing.T) {
	info := collectTTYDetails()
	if len(info.Probes) != 3 {
		t.Fatalf("expected 3 probe entries, got %d", len(info.Probes))
	}
	expected := []string{"stdin", "stdout", "stderr"}
	for i, name := range expected {
		if info.Probes[i].Name != name {
			t.Fatalf("expected probe %d name %q, got %q", i, name, info.Probes[i].Name)
		}
	}
}

func TestStartupTracePayloadIncludesFlags(t *testing.T) {
	cfg := config.Config{
		App: app.Config{
			Source:     "static",
			Items:      []string{"apple", "banana"},
			Selected:   -1,
			SocketPath: "socket-path",
			Width:      80,
			Height:     24,
			ShowFooter: true,
			Verbose:    true,
		},
		Logging: config.Logging{
			FilePath: "trace.log",
			Trace:    true,
		},
		Flags: map[string]string{
			"socket":  "socket-path",
			"width":   "80",
			"height":  "24",
			"footer":  "true",
			"verbose": "true",
		},
		Args: []string{"--socket", "socket-path"},
	}

	payload := startupTracePayload(cfg)

	flagsValue, ok := payload["flags"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected flags map in payload")
	}
	if flagsValue["socket"] != "socket-path" {
		t.Fatalf("expected socket flag %q, got %v", "socket-path", flagsValue["socket"])
	}
	if flagsValue["width"] != "80" {
		t.Fatalf("expected width 80, got %v", flagsValue["width"])
	}
	if flagsValue["height"] != "24" {
		t.Fatalf("expected height 24, got %v", flagsValue["height"])
	}
	if flagsValue["footer"] != "true" {
		t.Fatalf("expected footer flag true, got %v", flagsValue["footer"])
	}
	if flagsValue["trace"] != true {
		t.Fatalf("expected trace flag true, got %v", flagsValue["trace"])
	}
	if flagsValue["verbose"] != "true" {
		t.Fatalf("expected verbose flag true, got %v", flagsValue["verbose"])
	}
	if flagsValue["logFile"] != "trace.log" {
		t.Fatalf("expected log file trace.log, got %v", flagsValue["logFile"])
	}

	if payload["source"] != "static" || payload["options"] != 2 {
		t.Fatalf("expected source summary, got %v / %v", payload["source"], payload["options"])
	}
	if _, ok := payload["configFile"]; ok {
		t.Fatalf("configFile is only traced when a file was read")
	}
	if _, ok := payload["tty"].(ttyDetails); !ok {
		t.Fatalf("expected tty details in payload")
	}
	if cfgValue, ok := payload["config"].(config.Config); !ok {
		t.Fatalf("expected config in payload")
	} else if diff := cmp.Diff(cfg.App, cfgValue.App); diff != "" {
		t.Fatalf("app config mismatch (-want +got):\n%s", diff)
	}
}

func TestReportPrintsSelection(t *testing.T) {
	var stdout, stderr bytes.Buffer
	result := ui.Result{Selection: &menu.Item{ID: "banana", Label: "banana"}, Info: "Selected banana"}
	if code := report(&stdout, &stderr, result, true); code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if stdout.String() != "banana\n" {
		t.Fatalf("unexpected stdout %q", stdout.String())
	}
	if stderr.String() != "Selected banana\n" {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}

func TestReportCancelled(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cases := []ui.Result{
		{Cancelled: true},
		{},
	}
	for _, result := range cases {
		if code := report(&stdout, &stderr, result, false); code != exitCancelled {
			t.Fatalf("expected exit %d for %+v, got %d", exitCancelled, result, code)
		}
	}
	if stdout.Len() != 0 || stderr.Len() != 0 {
		t.Fatalf("nothing is printed without a selection")
	}
}
