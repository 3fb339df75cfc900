package cron

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Lock keeps cycles from overlapping.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// LocalLock is held by one cycle at a time within the process. The caches a
// cycle warms are in-memory, so there is nothing to coordinate across
// instances.
type LocalLock struct {
	mu    sync.Mutex
	owner string
}

func NewLocalLock() *LocalLock {
	return &LocalLock{}
}

// Acquire returns false while another cycle holds the lock.
func (l *LocalLock) Acquire(context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owner != "" {
		return false, nil
	}
	l.owner = uuid.NewString()
	return true, nil
}

func (l *LocalLock) Release(context.Context) error {
	l.mu.Lock()
	l.owner = ""
	l.mu.Unlock()
	return nil
}

// Owner is the id of the cycle holding the lock, empty when free.
func (l *LocalLock) Owner() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owner
}
