//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package dummynet

import "golang.org/x/sys/unix"

// OpenDevice opens a BSD-style tunnel device at path (default
// /dev/tun0, per spec.md §6's -n flag). On these platforms the device
// node, once created, behaves as a plain bidirectional datagram file:
// no ioctl dance is needed, matching original_source's tunbridge.c,
// which simply open(2)s each path and read(2)s/write(2)s frames.
func OpenDevice(path string) (Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	return &fdDevice{fd: fd}, nil
}
