//go:build linux

package asdaerr

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// errnoDescription resolves a syscall.Errno to its symbolic name plus
// description, preferring the x/sys/unix name table (kept current with
// the kernel's errno list) over the narrower stdlib one.
func errnoDescription(errno syscall.Errno) string {
	name := unix.ErrnoName(errno)
	if name == "" {
		return errno.Error()
	}
	return name + ": " + errno.Error()
}
