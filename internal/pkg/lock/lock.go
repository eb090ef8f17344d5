// Package lock serialises access to the model backend, which holds GPU state
// and must not run two generations at once.
package lock

import "context"

// Locker hands out exclusive access. Acquire blocks until the lock is held or
// ctx is done; the returned release func must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context) (release func(), err error)
}

type localLocker struct {
	slot chan struct{}
}

// NewLocal returns an in-process lock. Waiting for it ends when ctx is done.
func NewLocal() Locker {
	return &localLocker{slot: make(chan struct{}, 1)}
}

func (l *localLocker) Acquire(ctx context.Context) (func(), error) {
	select {
	case l.slot <- struct{}{}:
		return func() { <-l.slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
