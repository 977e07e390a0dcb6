package services

import "sync"

// ToggleGate tracks staff-pick writes in flight. A movie id is pending from
// Begin until Done; other ids are unaffected.
type ToggleGate struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

func NewToggleGate() *ToggleGate {
	return &ToggleGate{pending: make(map[string]struct{})}
}

// Begin marks id pending. It returns false if id is already pending.
func (g *ToggleGate) Begin(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.pending[id]; busy {
		return false
	}
	g.pending[id] = struct{}{}
	return true
}

func (g *ToggleGate) Done(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, id)
}
