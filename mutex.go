package remex

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Mutex is a context-aware mutex.
//
// Unlike RecursiveMutex it is not re-entrant and tracks no ownership;
// in exchange its Lock honors context cancellation. A goroutine that
// calls Lock twice deadlocks itself, exactly as with sync.Mutex.
//
// A Mutex must not be copied after first use.
type Mutex struct {
	once sync.Once
	sem  *semaphore.Weighted // binary gate, acquire = lock, release = unlock
}

func (m *Mutex) init() {
	m.once.Do(func() {
		m.sem = semaphore.NewWeighted(1)
	})
}

// Lock acquires an exclusive lock on the mutex.
//
// It blocks until the mutex is acquired, or ctx is canceled. An
// uncontended mutex may be acquired even if ctx is already done.
func (m *Mutex) Lock(ctx context.Context) error {
	m.init()
	return m.sem.Acquire(ctx, 1)
}

// TryLock acquires an exclusive lock on the mutex if doing so would not block.
//
// It returns true if the mutex is locked.
func (m *Mutex) TryLock() bool {
	m.init()
	return m.sem.TryAcquire(1)
}

// Unlock releases the mutex.
//
// It panics if the mutex is not currently locked.
func (m *Mutex) Unlock() {
	m.init()
	m.sem.Release(1)
}
