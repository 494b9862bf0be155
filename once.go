package remex

import (
	"context"
	"sync/atomic"
)

// Once is a context-aware and "failable" version of sync.Once.
type Once struct {
	done uint32 // atomic bool, set once a call has succeeded
	m    Mutex
}

// Do calls fn if and only if no prior call to Do on this instance has
// succeeded.
//
// A successful call is one that returns a nil error and does not
// panic. While a call is in flight, concurrent calls block until it
// completes or their own ctx is canceled.
func (o *Once) Do(
	ctx context.Context,
	fn func(context.Context) error,
) error {
	if atomic.LoadUint32(&o.done) != 0 {
		return nil
	}

	if err := o.m.Lock(ctx); err != nil {
		return err
	}
	defer o.m.Unlock()

	if o.done == 0 {
		if err := fn(ctx); err != nil {
			return err
		}

		atomic.StoreUint32(&o.done, 1)
	}

	return nil
}
