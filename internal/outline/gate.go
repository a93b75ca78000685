package outline

import (
	"sync"
)

// Gate serializes structural mutations per project. Two mutations on the
// same project never interleave; unrelated projects proceed concurrently.
type Gate struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewGate() *Gate {
	return &Gate{locks: map[string]*sync.Mutex{}}
}

func (g *Gate) forProject(projectID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[projectID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[projectID] = l
	}
	return l
}

func (g *Gate) Lock(projectID string) {
	g.forProject(projectID).Lock()
}

func (g *Gate) Unlock(projectID string) {
	g.forProject(projectID).Unlock()
}
