//go:build !linux

package asdaerr

import "syscall"

// errnoDescription falls back to the stdlib error string on platforms
// where x/sys/unix's errno name table isn't wired up.
func errnoDescription(errno syscall.Errno) string {
	return errno.Error()
}
