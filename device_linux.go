//go:build linux

package dummynet

import (
	"strings"

	"golang.org/x/sys/unix"
)

// clonePath is the Linux TUN/TAP cloning device every tunnel interface
// is created through.
const clonePath = "/dev/net/tun"

// OpenDevice opens a Linux tunnel interface named by the trailing
// component of path (e.g. "/dev/tun0" -> "tun0"), requesting IFF_TUN
// without IFF_NO_PI so the kernel supplies the same 4-byte
// address-family prefix the BSD implementation gets for free from the
// device node itself (spec.md's "Address-family prefix" non-goal
// exception). Grounded on cbrunnkvist-ttylag/main.go's
// unix.IoctlGetTermios/IoctlSetTermios ioctl usage, the pack's only
// other direct x/sys/unix ioctl caller, for the general shape of a
// typed ioctl through x/sys/unix.
func OpenDevice(path string) (Device, error) {
	name := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		name = path[idx+1:]
	}

	fd, err := unix.Open(clonePath, unix.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}

	req, err := unix.NewIfreq(name)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	req.SetUint16(unix.IFF_TUN)
	if err := unix.IoctlIfreq(fd, unix.TUNSETIFF, req); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &fdDevice{fd: fd}, nil
}
