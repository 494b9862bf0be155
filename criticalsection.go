package remex

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

var lastOwnerID uint64 // token source for NewOwnerID()

// NewOwnerID returns a token identifying a new logical owner of a
// CriticalSection.
//
// Tokens are process-wide and never zero; zero is reserved to mean
// "held by nobody". The counter skips the reserved value if it ever
// wraps around.
func NewOwnerID() uint64 {
	atomic.CompareAndSwapUint64(&lastOwnerID, ^uint64(0), 0)
	return atomic.AddUint64(&lastOwnerID, 1)
}

// CriticalSection is a recursive lock whose unit of ownership is a
// caller-supplied token rather than the calling goroutine.
//
// It suits owners that are not goroutines: a connection whose handler
// hops between pooled goroutines, a state machine resumed from
// anywhere, and so on. A token must identify a single logical owner at
// a time; two goroutines entering concurrently with the same token
// corrupt the recursion count, just as two platform threads sharing a
// thread ID would. Handing a token from one goroutine to another needs
// the same synchronization as handing off any other shared state.
//
// A CriticalSection must not be copied after first use. A nil
// *CriticalSection behaves as an always-available lock, like a nil
// *RecursiveMutex.
type CriticalSection struct {
	once  sync.Once
	sem   *semaphore.Weighted // binary gate, acquire = take the lock, release = free it
	owner uint64              // token of the holder, noOwner when unheld
	depth int32               // acquisitions beyond the first, touched only by the holder
}

func (cs *CriticalSection) init() {
	cs.once.Do(func() {
		cs.sem = semaphore.NewWeighted(1)
	})
}

// Lock acquires the critical section on behalf of owner.
//
// If owner already holds it the recursion depth is incremented and
// Lock returns without blocking. Otherwise Lock blocks, with no
// timeout, until the holder fully releases the critical section.
//
// It panics if owner is the reserved zero token.
func (cs *CriticalSection) Lock(owner uint64) {
	if cs == nil {
		return
	}
	checkOwnerToken(owner)
	cs.init()

	if atomic.LoadUint64(&cs.owner) == owner {
		cs.depth++
		return
	}

	// Acquire cannot fail with a background context.
	_ = cs.sem.Acquire(context.Background(), 1)

	atomic.StoreUint64(&cs.owner, owner)
	cs.depth = 0
}

// TryLock acquires the critical section on behalf of owner if doing so
// would not block.
//
// It returns true if the critical section is now held by owner, and
// false, leaving it untouched, if a different owner holds it.
//
// It panics if owner is the reserved zero token.
func (cs *CriticalSection) TryLock(owner uint64) bool {
	if cs == nil {
		return true
	}
	checkOwnerToken(owner)
	cs.init()

	if atomic.LoadUint64(&cs.owner) == owner {
		cs.depth++
		return true
	}

	if !cs.sem.TryAcquire(1) {
		return false
	}

	atomic.StoreUint64(&cs.owner, owner)
	cs.depth = 0
	return true
}

// Unlock releases one acquisition held by owner.
//
// It returns ErrNotOwner, leaving the critical section untouched, if
// owner does not hold it. The critical section becomes available to
// other owners only once Unlock has been called as many times as Lock.
//
// It panics if owner is the reserved zero token.
func (cs *CriticalSection) Unlock(owner uint64) error {
	if cs == nil {
		return nil
	}
	checkOwnerToken(owner)

	if atomic.LoadUint64(&cs.owner) != owner {
		return ErrNotOwner
	}

	if cs.depth > 0 {
		cs.depth--
		return nil
	}

	atomic.StoreUint64(&cs.owner, noOwner)
	cs.sem.Release(1)

	return nil
}

func checkOwnerToken(owner uint64) {
	if owner == noOwner {
		panic("zero is not a valid owner token, use NewOwnerID()")
	}
}
