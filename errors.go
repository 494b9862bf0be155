package remex

import "errors"

// ErrNotOwner is returned by Unlock when the caller does not hold the
// lock it is attempting to release.
//
// It signals a defect in the caller; it is never returned under
// correct use, no matter how the goroutines interleave.
var ErrNotOwner = errors.New("lock is not held by the caller")
