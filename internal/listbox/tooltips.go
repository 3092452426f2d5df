package listbox

import "sync"

// TooltipReader is the read side of a TooltipGate.
type TooltipReader interface {
	Enabled() bool
}

// TooltipGate is the shared flag telling the tooltip collaborator whether
// hover tooltips may show. The machine writes it from entry actions; the
// collaborator reads it from its own goroutine.
type TooltipGate struct {
	mu       sync.RWMutex
	disabled bool
}

// NewTooltipGate returns an enabled gate.
func NewTooltipGate() *TooltipGate {
	return &TooltipGate{}
}

func (g *TooltipGate) Disable() {
	g.mu.Lock()
	g.disabled = true
	g.mu.Unlock()
}

func (g *TooltipGate) Enable() {
	g.mu.Lock()
	g.disabled = false
	g.mu.Unlock()
}

func (g *TooltipGate) Enabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return !g.disabled
}
