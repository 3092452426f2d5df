package tmux

import (
	"testing"

	"github.com/atomicstack/popup-listbox/internal/testutil"
)

func TestFetchSessionsFromServer(t *testing.T) {
	srv := testutil.StartTmuxServer(t, "alpha")
	if err := srv.Command("new-session", "-d", "-s", "beta").Run(); err != nil {
		t.Skipf("skipping: second session: %v", err)
	}
	t.Setenv("TMUX_PANE", "")

	snap, err := FetchSessions(srv.Socket)
	if err != nil {
		t.Fatalf("FetchSessions: %v", err)
	}
	names := map[string]bool{}
	for _, s := range snap.Sessions {
		names[s.Name] = true
		if s.Attached {
			t.Fatalf("detached session %s reported as attached", s.Name)
		}
	}
	if !names["alpha"] || !names["beta"] {
		t.Fatalf("expected alpha and beta, got %+v", snap.Sessions)
	}
}
