// Package logging writes errors and JSON trace lines to one shared file.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const defaultLogFile = "popup-listbox.log"

// sink owns the open log file. It is opened on first write so a run that
// never logs leaves nothing behind.
type sink struct {
	mu    sync.Mutex
	path  string
	file  *os.File
	trace bool
	seq   uint64
}

var out = &sink{path: defaultLogFile}

// Error appends err to the shared log file.
func Error(err error) {
	if err == nil {
		return
	}
	out.mu.Lock()
	defer out.mu.Unlock()
	f, ferr := out.open()
	if ferr != nil {
		fmt.Fprintf(os.Stderr, "logging failed: %v\n", ferr)
		return
	}
	log.New(f, "", log.LstdFlags).Println(err)
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	out.mu.Lock()
	out.trace = enabled
	out.mu.Unlock()
}

// TraceEnabled reports whether Trace currently writes entries.
func TraceEnabled() bool {
	out.mu.Lock()
	defer out.mu.Unlock()
	return out.trace
}

// Trace appends a structured JSON entry when tracing is enabled. Entries
// carry a sequence number that restarts on Configure.
func Trace(event string, payload interface{}) {
	out.mu.Lock()
	defer out.mu.Unlock()
	if !out.trace {
		return
	}
	out.seq++
	entry := struct {
		Time    time.Time   `json:"time"`
		Seq     uint64      `json:"seq"`
		Event   string      `json:"event"`
		Payload interface{} `json:"payload,omitempty"`
	}{
		Time:    time.Now().UTC(),
		Seq:     out.seq,
		Event:   event,
		Payload: payload,
	}
	f, err := out.open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "trace logging failed: %v\n", err)
		return
	}
	if err := json.NewEncoder(f).Encode(entry); err != nil {
		fmt.Fprintf(os.Stderr, "trace encoding failed: %v\n", err)
	}
}

// Configure sets the log destination. Empty values fall back to the default
// path. Directories are created automatically when missing.
func Configure(path string) {
	out.mu.Lock()
	defer out.mu.Unlock()
	out.closeFile()
	out.seq = 0
	if strings.TrimSpace(path) == "" {
		out.path = defaultLogFile
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		out.path = defaultLogFile
		return
	}
	out.path = path
}

// Path returns the current log destination.
func Path() string {
	out.mu.Lock()
	defer out.mu.Unlock()
	return out.path
}

// Close flushes and releases the log file. Later writes reopen it.
func Close() error {
	out.mu.Lock()
	defer out.mu.Unlock()
	return out.closeFile()
}

func (s *sink) open() (*os.File, error) {
	if s.file != nil {
		return s.file, nil
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	s.file = f
	return f, nil
}

func (s *sink) closeFile() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
