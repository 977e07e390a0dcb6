package services

import (
	"sync"
	"sync/atomic"
	"testing"
)

func (g *ToggleGate) isPending(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.pending[id]
	return busy
}

func TestToggleGate(t *testing.T) {
	g := NewToggleGate()

	if !g.Begin("a") {
		t.Fatal("first Begin should succeed")
	}
	if g.Begin("a") {
		t.Fatal("second Begin on a pending id should fail")
	}
	if !g.Begin("b") {
		t.Fatal("a different id should not be blocked")
	}
	if !g.isPending("a") {
		t.Fatal("a should be pending")
	}

	g.Done("a")
	if g.isPending("a") {
		t.Fatal("a should be idle after Done")
	}
	if !g.Begin("a") {
		t.Fatal("Begin after Done should succeed")
	}
}

func TestToggleGateConcurrentSameID(t *testing.T) {
	g := NewToggleGate()
	var wins atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Begin("movie") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("%d goroutines entered, want 1", wins.Load())
	}
}
