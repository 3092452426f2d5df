package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/popup-listbox/internal/menu"
)

// mailbox collects machine side effects that happen off the Bubble Tea
// goroutine (timer transitions, commits, submits, errors) until Update
// drains them. Posting never blocks.
type mailbox struct {
	mu      sync.Mutex
	commits []menu.Item
	errs    []error
	submit  bool
	dirty   bool

	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

type mail struct {
	commits []menu.Item
	errs    []error
	submit  bool
	dirty   bool
}

func (m mail) empty() bool {
	return len(m.commits) == 0 && len(m.errs) == 0 && !m.submit && !m.dirty
}

// mailMsg wakes Update after something was posted.
type mailMsg struct{}

func newMailbox() *mailbox {
	return &mailbox{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func (b *mailbox) signal() {
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

func (b *mailbox) redraw() {
	b.mu.Lock()
	b.dirty = true
	b.mu.Unlock()
	b.signal()
}

func (b *mailbox) commit(item menu.Item) {
	b.mu.Lock()
	b.commits = append(b.commits, item)
	b.mu.Unlock()
	b.signal()
}

func (b *mailbox) fail(err error) {
	if err == nil {
		return
	}
	b.mu.Lock()
	b.errs = append(b.errs, err)
	b.mu.Unlock()
	b.signal()
}

func (b *mailbox) requestSubmit() {
	b.mu.Lock()
	b.submit = true
	b.mu.Unlock()
	b.signal()
}

func (b *mailbox) take() mail {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := mail{commits: b.commits, errs: b.errs, submit: b.submit, dirty: b.dirty}
	b.commits, b.errs, b.submit, b.dirty = nil, nil, false, false
	return out
}

func (b *mailbox) close() {
	b.once.Do(func() { close(b.done) })
}

func waitForMail(b *mailbox) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.notify:
			return mailMsg{}
		case <-b.done:
			return nil
		}
	}
}
