// Package asdaerr provides the structured error type used throughout the
// asdar runtime.
//
// Errors are categorized by Phase (where the error occurred) and Kind
// (which of spec's error classes it belongs to: nomem, variable, value,
// os, or user-defined). The Error type mirrors the taxonomy asda itself
// exposes to running bytecode (spec §7): a value of Kind KindUser wraps
// a bytecode-defined error instance, the rest describe conditions the
// runtime itself detects.
//
// Use the Builder for structured construction:
//
//	err := asdaerr.New(asdaerr.PhaseRun, asdaerr.KindVariable).
//		Path("mymodule", "counter").
//		Detail("variable not set").
//		Build()
//
// or a convenience constructor:
//
//	err := asdaerr.Variable(asdaerr.PhaseRun, "counter not set")
//
// All errors implement the standard error interface and support
// errors.Is / errors.As.
package asdaerr
