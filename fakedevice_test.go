package dummynet

import (
	"sync"
	"time"
)

// fakeDevice is an in-memory Device backed by two slices, used by
// scheduler and bridge tests in place of a real tunnel descriptor.
// Grounded on ooni-netem's StaticReadableNIC/StaticWriteableNIC pair,
// merged into a single bidirectional type since this package's Device
// interface is symmetric (one type both reads and writes).
type fakeDevice struct {
	mu     sync.Mutex
	inbox  [][]byte
	sent   [][]byte
	closed bool
}

var _ Device = (*fakeDevice)(nil)
var _ Poller = (*fakeDevice)(nil)

// newFakeDevice creates a fakeDevice whose ReadPacket will yield each of
// pkts in order, then ErrNoPacket.
func newFakeDevice(pkts ...[]byte) *fakeDevice {
	return &fakeDevice{inbox: append([][]byte{}, pkts...)}
}

// Feed appends additional packets to the read queue, for tests that
// drive the scheduler across several iterations.
func (d *fakeDevice) Feed(pkt []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inbox = append(d.inbox, pkt)
}

func (d *fakeDevice) ReadPacket(buf []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, ErrDeviceClosed
	}
	if len(d.inbox) == 0 {
		return 0, ErrNoPacket
	}
	pkt := d.inbox[0]
	d.inbox = d.inbox[1:]
	n := copy(buf, pkt)
	return n, nil
}

func (d *fakeDevice) WritePacket(buf []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := append([]byte{}, buf...)
	d.sent = append(d.sent, cp)
	return len(buf), nil
}

func (d *fakeDevice) Fd() int {
	return -1
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// PollReadable reports readable whenever the inbox is non-empty. When
// not readable it sleeps briefly (capped well below any real timeout)
// instead of returning immediately, so a Scheduler.Run loop driven by
// this fake does not busy-spin while waiting for a test to feed it more
// packets or request a stop.
func (d *fakeDevice) PollReadable(timeout time.Duration) (bool, error) {
	d.mu.Lock()
	readable := len(d.inbox) > 0
	d.mu.Unlock()
	if !readable && timeout != 0 {
		time.Sleep(time.Millisecond)
	}
	return readable, nil
}

// Sent returns a snapshot of the packets written so far.
func (d *fakeDevice) Sent() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]byte{}, d.sent...)
}
