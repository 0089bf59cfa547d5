// Package dam provides the one-shot cancellation token shared between the
// input loop and long running computations such as tree builds.
package dam

import "sync/atomic"

// Dam is a single-producer "stop now" indicator. A build borrows it and
// polls HasEvent at bounded granularity; the input loop calls Signal when
// newer input makes the running computation obsolete.
type Dam struct {
	unlimited bool
	fired     atomic.Bool
}

// New returns a dam that can be signalled.
func New() *Dam {
	return &Dam{}
}

// Unlimited returns a dam that never signals. Used for synchronous
// navigation builds where cancellation is not meaningful.
func Unlimited() *Dam {
	return &Dam{unlimited: true}
}

// Signal asks the borrowing computation to stop. Idempotent and safe to
// call from any goroutine. Signalling an unlimited dam is a no-op.
func (d *Dam) Signal() {
	if d.unlimited {
		return
	}
	d.fired.Store(true)
}

// HasEvent reports whether the dam has been signalled. Once true it stays
// true for the lifetime of the dam.
func (d *Dam) HasEvent() bool {
	if d.unlimited {
		return false
	}
	return d.fired.Load()
}
