package dummynet

import "sync/atomic"

// Control is the scheduler's control surface (spec.md §4.8): two
// single-writer flags, set from an asynchronous context (typically a
// signal handler owned by a cmd/ front end) and observed at iteration
// boundaries. Grounded on ooni-netem/router.go's closeOnce/channel
// shutdown pattern, simplified to the spec's flag-polled model using
// atomic.Bool, which is lock-free for the single-writer/single-reader
// discipline spec.md §5 requires.
type Control struct {
	stop       atomic.Bool
	dumpStats  atomic.Bool
}

// NewControl creates a zero-valued Control (neither flag set).
func NewControl() *Control {
	return &Control{}
}

// RequestStop sets the stop flag. Safe to call from a signal handler.
func (c *Control) RequestStop() {
	c.stop.Store(true)
}

// StopRequested reports whether a stop has been requested.
func (c *Control) StopRequested() bool {
	return c.stop.Load()
}

// RequestStatsDump sets the stats-dump flag. Safe to call from a
// signal handler.
func (c *Control) RequestStatsDump() {
	c.dumpStats.Store(true)
}

// ConsumeStatsDumpRequest reports whether a stats dump was requested
// since the last call, clearing the flag atomically.
func (c *Control) ConsumeStatsDumpRequest() bool {
	return c.dumpStats.CompareAndSwap(true, false)
}
