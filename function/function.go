// Package function implements asda's function object (spec §4.6): a
// native callback plus user data, with two concrete kinds of user
// data -- asda-function and partial application. The asda-function
// kind itself (which must invoke the interpreter's run loop) is NOT
// defined here; it lives in the interp package as interp.AsdaFunction,
// which implements Callable. That split keeps this package's
// dependency graph a leaf: function depends only on object, never on
// bytecode/scope/interp, so there is no import cycle between
// "the thing interp calls" and "the thing that calls back into interp".
package function

import "github.com/asda-lang/asdar/object"

// FunctionType is the builtin type every Function instance carries
// (spec §4.3's function-kind Type is identity-only; the concrete
// argument/return types live on the Type the compiler attaches, not
// here).
var FunctionType = object.NewBasicType("function", nil, nil)

// Callable is the native callback every concrete function kind
// implements: forward an argument vector, return a result (nil if the
// asda function returns no value) or an error.
type Callable interface {
	Call(args []object.Value) (object.Value, error)
}

// Destroyable is implemented by a Callable whose user data owns
// references that must be released on the function object's two-phase
// destruction (spec §3) -- the asda-function kind (interp.AsdaFunction,
// which owns a retained definition Scope) and partialData both do;
// most natives don't need to implement it.
type Destroyable interface {
	ReleaseRefs()
	ReleaseResources()
}

// Function is asda's function object: a refcounted header plus the
// native callback that actually runs it.
type Function struct {
	object.Object
	callable Callable
}

func destroyFunction(v object.Value, phase object.DestroyPhase) {
	f := v.(*Function)
	d, ok := f.callable.(Destroyable)
	if !ok {
		return
	}
	switch phase {
	case object.DestroyReleaseRefs:
		d.ReleaseRefs()
	case object.DestroyReleaseResources:
		d.ReleaseResources()
	}
}

func newFunction(h *object.Heap, callable Callable) *Function {
	f := &Function{callable: callable}
	object.InitHeap(&f.Object, h, f, FunctionType, destroyFunction)
	return f
}

// Call forwards args to the underlying callable.
func (f *Function) Call(args []object.Value) (object.Value, error) {
	return f.callable.Call(args)
}

// nativeCallable adapts a plain Go func to Callable, for builtins that
// own no references to release.
type nativeCallable func(args []object.Value) (object.Value, error)

func (n nativeCallable) Call(args []object.Value) (object.Value, error) { return n(args) }

// NewNative wraps a native Go function with no captured references.
func NewNative(h *object.Heap, fn func(args []object.Value) (object.Value, error)) *Function {
	return newFunction(h, nativeCallable(fn))
}

// New wraps any Callable (optionally implementing Destroyable) as a
// Function object -- the constructor interp.AsdaFunction uses, since
// it owns a retained Scope that must be released on destruction.
func New(h *object.Heap, callable Callable) *Function {
	return newFunction(h, callable)
}

// partialData is the "partial" user-data kind (spec §4.6): an inner
// function plus a captured prefix argument vector. Calling it
// concatenates captured + given and forwards to inner.
type partialData struct {
	inner  *Function
	prefix []object.Value
}

func (p *partialData) Call(args []object.Value) (object.Value, error) {
	full := make([]object.Value, 0, len(p.prefix)+len(args))
	full = append(full, p.prefix...)
	full = append(full, args...)
	return p.inner.Call(full)
}

func (p *partialData) ReleaseRefs() {
	object.DecRef(p.inner)
	for _, v := range p.prefix {
		object.DecRef(v)
	}
}

func (p *partialData) ReleaseResources() {
	p.inner = nil
	p.prefix = nil
}

// NewPartial creates a partial application of inner with the given
// captured prefix arguments. An empty prefix returns inner itself with
// an incremented reference count rather than wrapping it (spec §4.6:
// "Partial application with an empty prefix returns the inner function
// unmodified (refcount-incremented)").
func NewPartial(h *object.Heap, inner *Function, prefix []object.Value) *Function {
	if len(prefix) == 0 {
		object.IncRef(inner)
		return inner
	}
	object.IncRef(inner)
	captured := make([]object.Value, len(prefix))
	copy(captured, prefix)
	for _, v := range captured {
		object.IncRef(v)
	}
	return newFunction(h, &partialData{inner: inner, prefix: captured})
}
