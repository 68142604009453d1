package dummynet

import (
	"sync"
	"time"
)

// Bridge is the zero-impairment dual-device mode from spec.md §1/§9:
// read from one tunnel endpoint and write to the other, and vice
// versa, without queueing. It is a degenerate configuration of the
// core rather than a separate implementation: each direction is a
// Scheduler with Delay=0, shaping disabled, loss disabled, and
// QueueCapacity=1 (the "transient" single-slot queue spec.md §8
// describes for this boundary case), so the same delay/shape/loss
// admission path runs, it just never has anything to do.
//
// Grounded on ooni-netem/link.go's NewLink (two goroutines, one per
// direction, a shared shutdown mechanism) and on original_source's
// second kept file (tunbridge.c's bidirectional copy loop).
type Bridge struct {
	leftToRight *Scheduler
	rightToLeft *Scheduler
	control     *Control
	wg          sync.WaitGroup
}

// bridgeConfig is the degenerate Scheduler configuration every Bridge
// direction uses.
func bridgeConfig(logger Logger) Config {
	return Config{
		Delay:              0,
		ShapingBytesPerSec: 0,
		QueueCapacity:      1,
		Loss:               LossConfig{},
		ReportInterval:     0,
		Logger:             logger,
	}
}

// NewBridge creates a Bridge between left and right devices, sharing a
// single Control so that one stop request halts both directions.
func NewBridge(left, right Device, logger Logger) (*Bridge, error) {
	control := NewControl()

	fwd, err := NewScheduler(&directionalDevice{reader: left, writer: right}, bridgeConfig(logger), control)
	if err != nil {
		return nil, err
	}
	rev, err := NewScheduler(&directionalDevice{reader: right, writer: left}, bridgeConfig(logger), control)
	if err != nil {
		return nil, err
	}

	return &Bridge{leftToRight: fwd, rightToLeft: rev, control: control}, nil
}

// Run starts both directions and blocks until both stop (spec.md §5's
// cancellation model: Close/the control surface's stop flag ends the
// current iteration of each, then each flushes its transient queue).
func (b *Bridge) Run() error {
	var errLTR, errRTL error
	b.wg.Add(2)
	go func() {
		defer b.wg.Done()
		errLTR = b.leftToRight.Run()
	}()
	go func() {
		defer b.wg.Done()
		errRTL = b.rightToLeft.Run()
	}()
	b.wg.Wait()
	if errLTR != nil {
		return errLTR
	}
	return errRTL
}

// Stop requests both directions to stop at their next iteration
// boundary.
func (b *Bridge) Stop() {
	b.control.RequestStop()
}

// directionalDevice adapts a (reader, writer) device pair into a
// single Device, so each Bridge direction can reuse Scheduler
// unmodified: reads come from one tunnel endpoint, writes go to the
// other.
type directionalDevice struct {
	reader Device
	writer Device
}

var _ Device = (*directionalDevice)(nil)

func (d *directionalDevice) ReadPacket(buf []byte) (int, error) {
	return d.reader.ReadPacket(buf)
}

func (d *directionalDevice) WritePacket(buf []byte) (int, error) {
	return d.writer.WritePacket(buf)
}

func (d *directionalDevice) Fd() int {
	return d.reader.Fd()
}

func (d *directionalDevice) Close() error {
	// Bridge owns device lifetime independently; directionalDevice
	// does not close either side.
	return nil
}

// PollReadable polls only the read side, since writes in this system
// are always single-shot and non-blocking.
func (d *directionalDevice) PollReadable(timeout time.Duration) (bool, error) {
	if p, ok := d.reader.(Poller); ok {
		return p.PollReadable(timeout)
	}
	return true, nil
}
