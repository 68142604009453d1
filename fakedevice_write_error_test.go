package dummynet

import (
	"errors"
	"time"
)

// failingWriteDevice wraps a fakeDevice but fails every WritePacket
// call, exercising drainReady's hard-write-failure accounting path.
type failingWriteDevice struct {
	fake *fakeDevice
}

var errSimulatedWriteFailure = errors.New("simulated write failure")

var _ Device = (*failingWriteDevice)(nil)
var _ Poller = (*failingWriteDevice)(nil)

func newFailingWriteDevice(pkts ...[]byte) *failingWriteDevice {
	return &failingWriteDevice{fake: newFakeDevice(pkts...)}
}

func (d *failingWriteDevice) ReadPacket(buf []byte) (int, error) {
	return d.fake.ReadPacket(buf)
}

func (d *failingWriteDevice) WritePacket(buf []byte) (int, error) {
	return 0, errSimulatedWriteFailure
}

func (d *failingWriteDevice) Fd() int { return d.fake.Fd() }

func (d *failingWriteDevice) Close() error { return d.fake.Close() }

func (d *failingWriteDevice) PollReadable(timeout time.Duration) (bool, error) {
	return d.fake.PollReadable(timeout)
}
