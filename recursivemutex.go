package remex

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// RecursiveMutex is a mutex that may be re-acquired by the goroutine
// that already holds it.
//
// It composes a single-slot counting semaphore with two pieces of
// ownership state: the ID of the holding goroutine and the number of
// extra acquisitions it has made. Only the outermost Unlock releases
// the semaphore slot, so other goroutines are excluded until the
// holder has matched every Lock with an Unlock.
//
// A RecursiveMutex must not be copied after first use. A nil
// *RecursiveMutex behaves as an always-available lock: Lock and Unlock
// are no-op successes and TryLock always reports the lock as acquired,
// so callers may legally run with no lock configured.
type RecursiveMutex struct {
	once  sync.Once
	sem   *semaphore.Weighted // binary gate, acquire = take the lock, release = free it
	owner int64               // goroutine ID of the holder, noOwner when unheld
	depth int32               // acquisitions beyond the first, touched only by the holder
}

func (m *RecursiveMutex) init() {
	m.once.Do(func() {
		m.sem = semaphore.NewWeighted(1)
	})
}

// Lock acquires the mutex.
//
// If the calling goroutine already holds the mutex its recursion depth
// is incremented and Lock returns without blocking. Otherwise Lock
// blocks, with no timeout, until the holder fully releases the mutex.
func (m *RecursiveMutex) Lock() {
	if m == nil {
		return
	}
	m.init()

	id := goroutineID()
	if atomic.LoadInt64(&m.owner) == id {
		m.depth++
		return
	}

	// Acquire cannot fail with a background context.
	_ = m.sem.Acquire(context.Background(), 1)

	// The owner is recorded only once the slot is held, so unlocks
	// from other goroutines keep failing while this one waits.
	atomic.StoreInt64(&m.owner, id)
	m.depth = 0
}

// TryLock acquires the mutex if doing so would not block.
//
// It returns true if the mutex is now held by the calling goroutine,
// and false, leaving the mutex untouched, if another goroutine holds
// it.
func (m *RecursiveMutex) TryLock() bool {
	if m == nil {
		return true
	}
	m.init()

	id := goroutineID()
	if atomic.LoadInt64(&m.owner) == id {
		m.depth++
		return true
	}

	if !m.sem.TryAcquire(1) {
		return false
	}

	atomic.StoreInt64(&m.owner, id)
	m.depth = 0
	return true
}

// Unlock releases one acquisition of the mutex.
//
// It returns ErrNotOwner, leaving the mutex untouched, if the calling
// goroutine does not hold it. The mutex becomes available to other
// goroutines only once Unlock has been called as many times as Lock.
func (m *RecursiveMutex) Unlock() error {
	if m == nil {
		return nil
	}

	if atomic.LoadInt64(&m.owner) != goroutineID() {
		return ErrNotOwner
	}

	if m.depth > 0 {
		m.depth--
		return nil
	}

	// The owner is cleared before the slot is released, so the next
	// holder can never observe a stale owner.
	atomic.StoreInt64(&m.owner, noOwner)
	m.sem.Release(1)

	return nil
}
