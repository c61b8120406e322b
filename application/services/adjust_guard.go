package services

import (
	"context"
	"sync"
)

// LocalAdjustGuard serializes stats adjustments per user with in-process
// keyed mutexes. Sufficient for a single-instance deployment only: two
// service instances sharing one store can still interleave their
// read-modify-write cycles and lose an update. Multi-instance
// deployments should swap in a guard backed by the store's
// conditional-write primitive.
type LocalAdjustGuard struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocalAdjustGuard creates a process-local adjust guard
func NewLocalAdjustGuard() *LocalAdjustGuard {
	return &LocalAdjustGuard{locks: make(map[string]*sync.Mutex)}
}

// Do runs fn while holding the mutex for userID.
func (g *LocalAdjustGuard) Do(ctx context.Context, userID string, fn func(ctx context.Context) error) error {
	lock := g.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()
	return fn(ctx)
}

func (g *LocalAdjustGuard) lockFor(userID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()

	lock, ok := g.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[userID] = lock
	}
	return lock
}
