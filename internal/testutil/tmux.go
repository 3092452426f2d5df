// Package testutil runs tests against a throwaway tmux server.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gotmux "github.com/atomicstack/gotmuxcc/gotmuxcc"
)

var ErrPaneUnavailable = errors.New("tmux pane unavailable")

// Server is a temporary tmux server bound to its own socket.
type Server struct {
	Socket string
	LogDir string
}

// RequireTmux skips the calling test when tmux is not on PATH.
func RequireTmux(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("tmux")
	if err != nil {
		t.Skip("skipping: tmux binary not available")
	}
	return path
}

// StartTmuxServer boots a server with one detached session named session.
// The server is killed and its files removed when the test ends.
func StartTmuxServer(t *testing.T, session string) *Server {
	t.Helper()
	RequireTmux(t)
	baseDir, err := os.MkdirTemp("/tmp", "popup-listbox-*")
	if err != nil {
		t.Fatalf("failed to create tmux temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(baseDir) })
	srv := &Server{Socket: filepath.Join(baseDir, "tmux-test.sock"), LogDir: baseDir}
	cmd := srv.Command("-f", "/dev/null", "-vv", "new-session", "-d", "-s", session, "sleep", "600")
	cmd.Dir = baseDir
	if err := cmd.Run(); err != nil {
		t.Skipf("skipping: failed to start tmux server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := killServer(ctx, srv.Socket); err != nil {
			t.Logf("control-mode kill failed for socket %s: %v; falling back to tmux kill-server", srv.Socket, err)
			_ = srv.Command("kill-server").Run()
		}
		srv.assertNoCrash(t)
	})
	return srv
}

// Command builds a tmux invocation against the server, isolated from any
// tmux the test itself runs under.
func (s *Server) Command(extra ...string) *exec.Cmd {
	args := append([]string{"-S", s.Socket}, extra...)
	cmd := exec.Command("tmux", args...)
	env := make([]string, 0, len(os.Environ())+2)
	for _, entry := range os.Environ() {
		if strings.HasPrefix(entry, "TMUX=") || strings.HasPrefix(entry, "TMUX_PANE=") {
			continue
		}
		env = append(env, entry)
	}
	cmd.Env = append(env, "TMUX=", "TMUX_TMPDIR="+filepath.Dir(s.Socket))
	return cmd
}

// SendKeys types keys into target as tmux key names.
func (s *Server) SendKeys(t *testing.T, target string, keys ...string) {
	t.Helper()
	args := append([]string{"send-keys", "-t", target}, keys...)
	if err := s.Command(args...).Run(); err != nil {
		t.Fatalf("send-keys %v: %v", keys, err)
	}
}

// CapturePane returns the rendered contents of a pane.
func (s *Server) CapturePane(target string) (string, error) {
	output, err := s.Command("capture-pane", "-p", "-t", target).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", ErrPaneUnavailable
		}
		return "", fmt.Errorf("capture-pane failed: %w", err)
	}
	return string(output), nil
}

// WaitForText polls target until its contents include want.
func (s *Server) WaitForText(t *testing.T, target, want string, timeout time.Duration) string {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var last string
	for time.Now().Before(deadline) {
		out, err := s.CapturePane(target)
		switch {
		case errors.Is(err, ErrPaneUnavailable):
		case err != nil:
			t.Fatalf("capture-pane error: %v", err)
		case strings.Contains(out, want):
			return out
		default:
			last = out
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q in pane %s; last capture:\n%s", want, target, last)
	return ""
}

// assertNoCrash scans the server's -vv logs for an unexpected exit.
func (s *Server) assertNoCrash(t *testing.T) {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(s.LogDir, "tmux-server-*.log"))
	if err != nil {
		t.Errorf("failed to glob tmux logs: %v", err)
		return
	}
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if bytes.Contains(content, []byte("server exited unexpectedly")) {
			t.Errorf("tmux server reported unexpected exit; see %s", path)
		}
	}
}

func killServer(ctx context.Context, socket string) error {
	client, err := gotmux.NewTmuxWithOptions(socket, gotmux.WithContext(ctx))
	if err != nil {
		return err
	}
	defer client.Close()
	return client.KillServer()
}
