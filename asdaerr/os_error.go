package asdaerr

import (
	"errors"
	"syscall"
)

// OSError wraps an OS-level failure (spec §7: "os-error: wraps
// OS-level failures; message carries errno and its description when
// available").
func OSError(phase Phase, op string, cause error) *Error {
	detail := op
	var errno syscall.Errno
	if errors.As(cause, &errno) {
		detail = op + ": " + errnoDescription(errno)
	} else if cause != nil {
		detail = op + ": " + cause.Error()
	}
	return New(phase, KindOS).Detail(detail).Cause(cause).Build()
}
