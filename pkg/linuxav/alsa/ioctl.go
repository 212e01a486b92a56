//go:build linux

package alsa

import (
	"bytes"
	"errors"
	"syscall"
	"unsafe"
)

// ioctl issues req on fd, retrying while a signal interrupts the call. PCM
// hw_refine can block long enough on USB cards to be hit by SIGCHLD or SIGURG.
func ioctl(fd, req uintptr, arg unsafe.Pointer) error {
	for {
		_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, req, uintptr(arg))
		switch {
		case errno == 0:
			return nil
		case errors.Is(errno, syscall.EINTR):
			continue
		default:
			return errno
		}
	}
}

// cstr converts a NUL padded kernel string.
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
