package tmux

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"

	gotmux "github.com/atomicstack/gotmuxcc/gotmuxcc"

	"github.com/atomicstack/popup-listbox/internal/format/table"
)

// ErrNoTarget is returned when a switch is requested without a session.
var ErrNoTarget = errors.New("tmux: session target required")

type Session struct {
	Name     string
	Label    string
	Attached bool
	Clients  []string
	Current  bool
	Windows  int
}

type SessionSnapshot struct {
	Sessions []Session
	Current  string
}

// CurrentIndex returns the position of the current session, or -1.
func (s SessionSnapshot) CurrentIndex() int {
	for i, session := range s.Sessions {
		if session.Current {
			return i
		}
	}
	return -1
}

// FetchSessions lists sessions on the server behind socketPath in server
// order, marking the one the launching pane belongs to.
func FetchSessions(socketPath string) (SessionSnapshot, error) {
	client, err := newTmux(socketPath)
	if err != nil {
		return SessionSnapshot{}, fmt.Errorf("connect tmux: %w", err)
	}
	defer client.Close()

	sessions, err := client.ListSessions()
	if err != nil {
		return SessionSnapshot{}, fmt.Errorf("list sessions: %w", err)
	}
	currentName := currentSessionName(client)
	realClients := realAttachedClients(client)
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if s == nil {
			continue
		}
		clients := realClients[s.Name]
		entry := Session{
			Name:     s.Name,
			Attached: len(clients) > 0,
			Clients:  clients,
			Current:  s.Name == currentName,
			Windows:  s.Windows,
		}
		out = append(out, entry)
	}
	labelSessions(out)
	return SessionSnapshot{Sessions: out, Current: currentName}, nil
}

// SwitchClient moves the launching client to target.
func SwitchClient(socketPath, target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return ErrNoTarget
	}
	client, err := newTmux(socketPath)
	if err != nil {
		return fmt.Errorf("connect tmux: %w", err)
	}
	defer client.Close()
	opts := &gotmux.SwitchClientOptions{TargetSession: target}
	if id := currentClientName(client); id != "" {
		opts.TargetClient = id
	}
	if err := client.SwitchClient(opts); err != nil {
		return fmt.Errorf("switch client to %s: %w", target, err)
	}
	return nil
}

func ResolveSocketPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if envSocket := os.Getenv("POPUP_LISTBOX_SOCKET"); envSocket != "" {
		return envSocket, nil
	}
	if tmuxEnv := os.Getenv("TMUX"); tmuxEnv != "" {
		parts := strings.Split(tmuxEnv, ",")
		if len(parts) > 0 && parts[0] != "" {
			return parts[0], nil
		}
	}
	baseDir := os.Getenv("TMUX_TMPDIR")
	if baseDir == "" {
		baseDir = "/tmp"
	}
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, fmt.Sprintf("tmux-%s", u.Uid), "default"), nil
}

// labelSessions fills in labels with the session names, window counts and
// attached markers lined up in columns.
func labelSessions(sessions []Session) {
	rows := make([][]string, len(sessions))
	for i, s := range sessions {
		noun := "windows"
		if s.Windows == 1 {
			noun = "window"
		}
		attached := ""
		if s.Attached {
			attached = "(attached)"
		}
		rows[i] = []string{s.Name + ":", strconv.Itoa(s.Windows), noun, attached}
	}
	for i, label := range table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignRight}) {
		sessions[i].Label = label
	}
}

// realAttachedClients maps session names to attached terminal clients,
// ignoring the control-mode connection used for these queries.
func realAttachedClients(client tmuxClient) map[string][]string {
	clients, err := client.ListClients()
	if err != nil {
		return nil
	}
	result := make(map[string][]string)
	for _, c := range clients {
		if c == nil || c.ControlMode || c.Session == "" {
			continue
		}
		result[c.Session] = append(result[c.Session], c.Name)
	}
	return result
}

func currentSessionName(client tmuxClient) string {
	if pane := strings.TrimSpace(os.Getenv("TMUX_PANE")); pane != "" {
		if name, err := client.DisplayMessage(pane, "#{session_name}"); err == nil {
			if name = strings.TrimSpace(name); name != "" {
				return name
			}
		}
	}
	if clients, err := client.ListClients(); err == nil {
		for _, c := range clients {
			if c != nil && !c.ControlMode && c.Session != "" {
				return c.Session
			}
		}
	}
	return ""
}

func currentClientName(client tmuxClient) string {
	pane := strings.TrimSpace(os.Getenv("TMUX_PANE"))
	if pane == "" {
		return ""
	}
	name, err := client.DisplayMessage(pane, "#{client_name}")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(name)
}
