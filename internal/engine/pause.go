package engine

import "sync"

// PauseGate lets goroutines other than the frame loop stop it between
// frames. Requests nest: the loop stays paused while at least one Pause has
// no matching Resume. The loop acknowledges a change on its next Poll.
type PauseGate struct {
	mu     sync.Mutex
	cond   *sync.Cond
	count  int
	paused bool
	closed bool
}

// NewPauseGate returns an open gate with the loop running.
func NewPauseGate() *PauseGate {
	g := &PauseGate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Pause requests a pause and blocks until the loop is paused. It returns
// false if the gate was closed.
func (g *PauseGate) Pause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	g.count++
	for !g.paused && !g.closed {
		g.cond.Wait()
	}
	return !g.closed
}

// Resume withdraws one pause request. The last one blocks until the loop
// runs again. It returns false if there was nothing to resume or the gate
// was closed.
func (g *PauseGate) Resume() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || g.count == 0 {
		return false
	}
	g.count--
	for g.count == 0 && g.paused && !g.closed {
		g.cond.Wait()
	}
	return !g.closed
}

// Poll is called by the frame loop between frames. It acknowledges the
// pending requests and reports whether the loop must stay paused.
func (g *PauseGate) Poll() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	want := g.count > 0 && !g.closed
	if want != g.paused {
		g.paused = want
		g.cond.Broadcast()
	}
	return g.paused
}

// Paused reports whether the loop has acknowledged a pause.
func (g *PauseGate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Pending returns the number of outstanding pause requests.
func (g *PauseGate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count
}

// Close releases every waiter. Later calls to Pause and Resume return
// false and Poll never reports paused again.
func (g *PauseGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.paused = false
	g.cond.Broadcast()
}
