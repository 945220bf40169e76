package asdaerr

import (
	"fmt"
	"strings"
)

// Phase indicates which stage of the runtime produced the error.
type Phase string

const (
	PhaseDecode   Phase = "decode"   // bytecode decoding (§4.8)
	PhaseImport   Phase = "import"   // module import resolution (§4.10)
	PhaseRun      Phase = "run"      // interpreter execution (§4.9)
	PhaseShutdown Phase = "shutdown" // module/object teardown (§4.7)
)

// Kind maps 1:1 onto the error taxonomy of spec §7.
type Kind string

const (
	// KindNoMem is allocation failure. The single static instance never allocates.
	KindNoMem Kind = "nomem"
	// KindVariable is reading an unset exported variable, unset field, or similar.
	KindVariable Kind = "variable"
	// KindValue is invalid input to a primitive (bad UTF-8, bad bytecode, bad code point).
	KindValue Kind = "value"
	// KindOS wraps an OS-level failure; Detail carries errno and its description.
	KindOS Kind = "os"
	// KindUser is a bytecode-thrown instance of a user-defined error subclass.
	KindUser Kind = "user"
)

// Error is the structured error type raised by every asdar package.
type Error struct {
	Cause    error
	TypeName string // asda-class name, set when Kind == KindUser
	Detail   string
	Phase    Phase
	Kind     Kind
	Path     []string // accumulated (module, ...) or (source path, line) trail, innermost last
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	if e.TypeName != "" {
		b.WriteString(e.TypeName)
	} else {
		b.WriteString(string(e.Kind))
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, " -> "))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Phase and Kind
// (and, for KindUser, the same TypeName).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Phase != t.Phase || e.Kind != t.Kind {
		return false
	}
	if e.Kind == KindUser {
		return e.TypeName == t.TypeName
	}
	return true
}

// WithLocation returns a copy of e with one (path:line) entry appended
// to its location trail; the receiver is unchanged. See SPEC_FULL.md §10.
func (e *Error) WithLocation(sourcePath string, line int) *Error {
	cp := *e
	cp.Path = append(append([]string{}, e.Path...), fmt.Sprintf("%s:%d", sourcePath, line))
	return &cp
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New starts building an error for the given phase and kind.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

func (b *Builder) TypeName(name string) *Builder {
	b.err.TypeName = name
	return b
}

func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

func (b *Builder) Build() *Error {
	cp := b.err
	return &cp
}

// staticNoMem is the single static nomem-error instance (spec §3, §7):
// setting it never allocates, so it is constructed once at init and
// reused by every allocation-failure path.
var staticNoMem = &Error{
	Phase:  PhaseRun,
	Kind:   KindNoMem,
	Detail: "out of memory",
}

// NoMem returns the static nomem-error sentinel.
func NoMem() *Error { return staticNoMem }

// Variable creates a variable-error.
func Variable(phase Phase, detail string, args ...any) *Error {
	return New(phase, KindVariable).Detail(detail, args...).Build()
}

// Value creates a value-error.
func Value(phase Phase, detail string, args ...any) *Error {
	return New(phase, KindValue).Detail(detail, args...).Build()
}

// User creates a bytecode-thrown error of a user-defined asda-class.
func User(typeName, detail string) *Error {
	return New(PhaseRun, KindUser).TypeName(typeName).Detail(detail).Build()
}

// Decode wraps a lower-level decoding failure (short read, bad magic,
// malformed section) as a value-error in PhaseDecode.
func Decode(detail string, cause error) *Error {
	return New(PhaseDecode, KindValue).Detail(detail).Cause(cause).Build()
}

// ImportCycle reports a module import cycle detected during DFS
// (spec §9 Open Question, resolved: reject rather than synthesize a
// placeholder scope).
func ImportCycle(path []string) *Error {
	return New(PhaseImport, KindValue).
		Path(path...).
		Detail("import cycle detected").
		Build()
}
