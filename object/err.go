package object

import "fmt"

// ErrorBaseType is the root of asda's error-class hierarchy (spec §7).
// Every builtin error type, and every bytecode-declared "error"
// subclass, chains up to this through Type.Parent so EH_ADD's handler
// matching (Type.IsAssignableTo) works uniformly for both.
var ErrorBaseType = NewClassType("error", 1, nil)

// Builtin error subtypes (spec §7's taxonomy): nomem-error is raised
// on allocation failure and is itself never allocated (it is the one
// error value that must exist even when the process is out of
// memory); the rest carry a message.
var (
	NoMemErrorType   = NewClassType("nomem-error", 1, ErrorBaseType)
	VariableErrType  = NewClassType("variable-error", 1, ErrorBaseType)
	ValueErrType     = NewClassType("value-error", 1, ErrorBaseType)
	OSErrType        = NewClassType("os-error", 1, ErrorBaseType)
)

// ErrorValue is an instance of the error class hierarchy: a single
// asda-visible "message" attribute plus the Type identifying which
// subclass (builtin or user-declared) it is.
type ErrorValue struct {
	Object
	message *StringValue
}

func destroyError(v Value, phase DestroyPhase) {
	e := v.(*ErrorValue)
	switch phase {
	case DestroyReleaseRefs:
		DecRef(e.message)
	case DestroyReleaseResources:
		e.message = nil
	}
}

// NewError creates a heap-allocated error instance of typ (typ must
// be ErrorBaseType or a descendant), taking a new reference to
// message.
func NewError(h *Heap, typ *Type, message *StringValue) *ErrorValue {
	e := &ErrorValue{}
	IncRef(message)
	e.message = message
	initHeap(&e.Object, h, e, typ, destroyError)
	return e
}

// Message returns the error's message string without transferring a
// reference.
func (e *ErrorValue) Message() *StringValue { return e.message }

// GetField, SetField, and IsFieldSet let GETATTR/SETATTR address an
// error value's sole asda-visible data attribute ("message", spec §7,
// always index 0 -- every error type's NewClassType call above uses
// NumAsdaAttrs 1) the same way they address a ClassInstance's fields.
func (e *ErrorValue) GetField(i int) Value {
	if i != 0 {
		panic(fmt.Sprintf("error value has no field index %d", i))
	}
	IncRef(e.message)
	return e.message
}

func (e *ErrorValue) SetField(i int, v Value) {
	if i != 0 {
		panic(fmt.Sprintf("error value has no field index %d", i))
	}
	IncRef(v)
	old := e.message
	e.message = v.(*StringValue)
	DecRef(old)
}

func (e *ErrorValue) IsFieldSet(i int) bool {
	if i != 0 {
		panic(fmt.Sprintf("error value has no field index %d", i))
	}
	return e.message != nil
}

// errorConstructorFor backs CALLCONSTRUCTOR for any class in the error
// hierarchy: one StringValue argument, the message.
func errorConstructorFor(typ *Type) ConstructorFunc {
	return func(h *Heap, args []Value) (Value, error) {
		msg := args[0].(*StringValue)
		return NewError(h, typ, msg), nil
	}
}

func init() {
	ErrorBaseType.Constructor = errorConstructorFor(ErrorBaseType)
	NoMemErrorType.Constructor = errorConstructorFor(NoMemErrorType)
	VariableErrType.Constructor = errorConstructorFor(VariableErrType)
	ValueErrType.Constructor = errorConstructorFor(ValueErrType)
	OSErrType.Constructor = errorConstructorFor(OSErrType)
}

// staticNoMemMessage is the fixed message used by the one
// pre-allocated nomem-error instance below; it must never require an
// allocation to produce, since it is the error raised when allocation
// itself just failed.
var staticNoMemMessage = &StringValue{codePoints: []rune("out of memory")}

// staticNoMemError is the single static nomem-error instance (spec
// §7: "out-of-memory error... is pre-allocated so raising it never
// itself requires an allocation"). Both it and its message are static
// objects: IncRef/DecRef on either are no-ops, so raising and
// catching it never touches the heap.
var staticNoMemError = &ErrorValue{message: staticNoMemMessage}

func init() {
	initStatic(&staticNoMemMessage.Object, staticNoMemMessage, StringType, nil)
	initStatic(&staticNoMemError.Object, staticNoMemError, NoMemErrorType, nil)
}

// StaticNoMemError returns the single pre-allocated nomem-error
// instance; callers must not mutate it.
func StaticNoMemError() *ErrorValue { return staticNoMemError }

// NewErrorClass declares a bytecode-defined subclass of parent (nil
// means ErrorBaseType; the error-hierarchy half of a class-definition
// op, spec §4.3/§4.9). numAsdaAttrs is stored as the type's total
// attribute count, the inherited "message" at index 0 included (the
// builtin error types use 1); instances are ErrorValues, which hold
// only the message.
func NewErrorClass(name string, numAsdaAttrs int, parent *Type) *Type {
	if parent == nil {
		parent = ErrorBaseType
	}
	t := NewClassType(name, numAsdaAttrs, parent)
	t.Constructor = errorConstructorFor(t)
	return t
}
