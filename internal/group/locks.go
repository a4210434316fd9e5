package group

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Locks hands out one exclusive lock per group so that a group's
// load, apply, collapse and persist cycle never interleaves with another.
type Locks struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

// NewLocks creates an empty lock table
func NewLocks() *Locks {
	return &Locks{sems: make(map[string]*semaphore.Weighted)}
}

// Lock blocks until the group's lock is held or ctx is done. The returned
// func releases it.
func (l *Locks) Lock(ctx context.Context, groupID string) (func(), error) {
	l.mu.Lock()
	sem, ok := l.sems[groupID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[groupID] = sem
	}
	l.mu.Unlock()

	if err := sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to lock group %s: %w", groupID, err)
	}
	return func() { sem.Release(1) }, nil
}
