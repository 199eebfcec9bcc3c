package mailbox

import (
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"
)

// Spawner runs a mailbox worker. It must eventually call f exactly once and
// must not call it on the caller's goroutine.
type Spawner interface {
	Spawn(f func())
}

// SpawnerFunc adapts a function to Spawner.
type SpawnerFunc func(f func())

func (s SpawnerFunc) Spawn(f func()) { s(f) }

// GoSpawner starts each worker on its own goroutine.
var GoSpawner Spawner = SpawnerFunc(func(f func()) { go f() })

// Group starts each worker on its own goroutine and can wait for all of
// them to finish.
type Group struct {
	wg conc.WaitGroup
}

// NewGroup returns an empty Group.
func NewGroup() *Group { return &Group{} }

// Spawn starts f on a new goroutine tracked by the group.
func (g *Group) Spawn(f func()) { g.wg.Go(f) }

// Wait blocks until every worker spawned through g has returned.
func (g *Group) Wait() { g.wg.Wait() }

// Pool runs at most limit workers at a time. Workers beyond the limit wait
// for a slot; a mailbox keeps its slot until its handler returns, so
// messages posted to a waiting mailbox are only handled once an earlier
// mailbox dies.
type Pool struct {
	p *pool.Pool
	// pool.Go blocks while the pool is full; submit tracks the goroutines
	// handing work to it.
	submit sync.WaitGroup
}

// NewPool creates a Pool. If limit <= 0 the pool is unlimited.
func NewPool(limit int) *Pool {
	p := pool.New()
	if limit > 0 {
		p = p.WithMaxGoroutines(limit)
	}
	return &Pool{p: p}
}

// Spawn queues f on the pool without blocking the caller.
func (p *Pool) Spawn(f func()) {
	p.submit.Add(1)
	go func() {
		defer p.submit.Done()
		p.p.Go(f)
	}()
}

// Wait blocks until every worker spawned through p has returned. Call it
// after the last Spawn; the pool cannot be reused afterwards.
func (p *Pool) Wait() {
	p.submit.Wait()
	p.p.Wait()
}

var (
	_ Spawner = (*Group)(nil)
	_ Spawner = (*Pool)(nil)
)
