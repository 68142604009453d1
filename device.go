package dummynet

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// fdDevice implements Device and Poller over a raw file descriptor
// obtained by the platform-specific OpenDevice (device_bsd.go,
// device_linux.go). This is the shared half of the tunnel device
// implementation described in SPEC_FULL.md §4.9.
type fdDevice struct {
	fd int
}

var _ Device = (*fdDevice)(nil)
var _ Poller = (*fdDevice)(nil)

// ReadPacket implements Device.
func (d *fdDevice) ReadPacket(buf []byte) (int, error) {
	n, err := unix.Read(d.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return 0, ErrNoPacket
		}
		return 0, err
	}
	if n <= 0 {
		return 0, ErrNoPacket
	}
	return n, nil
}

// WritePacket implements Device.
func (d *fdDevice) WritePacket(buf []byte) (int, error) {
	return unix.Write(d.fd, buf)
}

// Fd implements Device.
func (d *fdDevice) Fd() int {
	return d.fd
}

// Close implements Device.
func (d *fdDevice) Close() error {
	return unix.Close(d.fd)
}

// PollReadable implements Poller using a single-descriptor unix.Poll
// call, the real suspension point spec.md §4.6 mandates for the
// scheduler's event loop.
func (d *fdDevice) PollReadable(timeout time.Duration) (bool, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout.Milliseconds())
	}
	fds := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, ms)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, ErrPollInterrupted
		}
		return false, ErrPollFailed
	}
	if n == 0 {
		return false, nil
	}
	if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		return false, ErrPollFailed
	}
	return fds[0].Revents&unix.POLLIN != 0, nil
}
