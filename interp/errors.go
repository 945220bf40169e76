package interp

import (
	"fmt"

	"github.com/asda-lang/asdar/object"
)

// thrownError carries an asda error object through Go's error-return
// propagation path, so a THROW deep in a call chain surfaces to
// whichever frame's error-handler stack matches it, or all the way to
// the driver if none does (spec §4.9's "Error propagation").
type thrownError struct {
	val *object.ErrorValue
}

func (e *thrownError) Error() string {
	msg := "<no message>"
	if e.val.Message() != nil {
		msg = string(e.val.Message().CodePoints())
	}
	return fmt.Sprintf("%s: %s", e.val.Type().Name, msg)
}

// throwValue wraps an already-owned error reference as a Go error.
// Ownership of the reference transfers to the returned error; the
// caller must not decref val itself afterward.
func throwValue(val *object.ErrorValue) error {
	return &thrownError{val: val}
}

// asThrown extracts the carried error object, if err is one raised by
// THROW (as opposed to an internal driver/decode error).
func asThrown(err error) (*object.ErrorValue, bool) {
	te, ok := err.(*thrownError)
	if !ok {
		return nil, false
	}
	return te.val, true
}
