package outline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_SerializesSameProject(t *testing.T) {
	g := NewGate()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Lock("p1")
			defer g.Unlock("p1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestGate_IndependentProjectsDoNotBlock(t *testing.T) {
	g := NewGate()
	g.Lock("p1")
	defer g.Unlock("p1")

	done := make(chan struct{})
	go func() {
		g.Lock("p2")
		g.Unlock("p2")
		close(done)
	}()

	// Must complete even while p1 is held.
	<-done
}
