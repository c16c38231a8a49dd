// Package swap implements the exclusive, restorable substitution of an
// implementation file by mock content: backup, atomic overwrite, a
// caller-supplied action, and a restore that runs on every exit path.
package swap

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// PathLocks serializes transactions per canonical target path. The lock is
// mandatory and held for the whole backup, swap, action and restore sequence;
// two transactions over the same file must never interleave, or the second
// would back up the first one's mock content as "original".
type PathLocks struct {
	mu   sync.Mutex
	sems map[string]*semaphore.Weighted
}

// NewPathLocks builds an empty lock table.
func NewPathLocks() *PathLocks {
	return &PathLocks{sems: make(map[string]*semaphore.Weighted)}
}

func (l *PathLocks) sem(key string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sems[key]
	if !ok {
		s = semaphore.NewWeighted(1)
		l.sems[key] = s
	}

	return s
}

// Acquire blocks until the lock for key is held or ctx expires. The returned
// release function must be called exactly once.
func (l *PathLocks) Acquire(ctx context.Context, key string) (func(), error) {
	s := l.sem(key)
	if err := s.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	return func() { s.Release(1) }, nil
}
