package remex

import "github.com/petermattis/goid"

// noOwner is the reserved owner value meaning "held by nobody".
//
// The runtime numbers goroutines from 1 and never reuses an ID, so
// zero is free to act as the sentinel for both lock flavors.
const noOwner = 0

// goroutineID returns the runtime's ID for the calling goroutine.
func goroutineID() int64 {
	return goid.Get()
}
