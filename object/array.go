package object

import "github.com/asda-lang/asdar/bigint"

// ArrayType is asda's builtin growable array of values (SPEC_FULL.md
// §10, supplemented from the original's ArrayObject, grounded on
// original_source/asdar/src/objects/array.c). The original exposes an
// empty-constructor-only array whose push/get/set/length operations
// are reached through the same generic method-table dispatch as any
// other builtin type; ArrayMethods below is installed as ArrayType's
// Methods table for exactly that reason.
var ArrayType = NewBasicType("array", nil, arrayConstructor)

func init() {
	ArrayType.Methods = []Value{
		newArrayMethod("push", arrayPush),
		newArrayMethod("get", arrayGet),
		newArrayMethod("set", arraySet),
		newArrayMethod("length", arrayLength),
		newArrayMethod("pop", arrayPop),
	}
}

// ArrayValue is a growable, reference-holding sequence of values. Like
// the original's ArrayObject, it owns one reference to every element
// it holds (array_constructor in array.c starts with an empty
// dynarray; destroy_array decrefs every held element in its
// ReleaseRefs phase and frees the backing array in its
// ReleaseResources phase).
type ArrayValue struct {
	Object
	elems []Value
}

func destroyArray(v Value, phase DestroyPhase) {
	a := v.(*ArrayValue)
	switch phase {
	case DestroyReleaseRefs:
		for _, e := range a.elems {
			DecRef(e)
		}
	case DestroyReleaseResources:
		a.elems = nil
	}
}

func arrayConstructor(h *Heap, args []Value) (Value, error) {
	a := &ArrayValue{}
	initHeap(&a.Object, h, a, ArrayType, destroyArray)
	return a, nil
}

// NewArray creates an empty array directly, for native code (the
// module bootstrap, tests) that doesn't go through CALLCONSTRUCTOR.
func NewArray(h *Heap) *ArrayValue {
	a := &ArrayValue{}
	initHeap(&a.Object, h, a, ArrayType, destroyArray)
	return a
}

// Len returns the number of elements.
func (a *ArrayValue) Len() int { return len(a.elems) }

// Push appends v, taking a new reference to it.
func (a *ArrayValue) Push(v Value) {
	IncRef(v)
	a.elems = append(a.elems, v)
}

// Pop removes and returns the last element, transferring its
// reference to the caller. Panics if the array is empty -- bounds are
// the interpreter's responsibility, matching the rest of this
// package's invariant-violation-is-a-panic convention.
func (a *ArrayValue) Pop() Value {
	n := len(a.elems)
	v := a.elems[n-1]
	a.elems = a.elems[:n-1]
	return v
}

// Get returns a new reference to the element at index i.
func (a *ArrayValue) Get(i int) Value {
	v := a.elems[i]
	IncRef(v)
	return v
}

// Set replaces the element at index i with v, taking a new reference
// to v and releasing the displaced element's reference.
func (a *ArrayValue) Set(i int, v Value) {
	IncRef(v)
	old := a.elems[i]
	a.elems[i] = v
	DecRef(old)
}

// arrayMethod is the Value wrapper installed in ArrayType.Methods; it
// is a thin static object so method lookup (GETATTR on an array
// instance) has something uniform to return regardless of which
// builtin type owns the slot.
type arrayMethod struct {
	Object
	name string
	fn   func(a *ArrayValue, args []Value) (Value, error)
}

var arrayMethodType = NewBasicType("array-method", nil, nil)

func newArrayMethod(name string, fn func(a *ArrayValue, args []Value) (Value, error)) *arrayMethod {
	m := &arrayMethod{name: name, fn: fn}
	initStatic(&m.Object, m, arrayMethodType, nil)
	return m
}

// Name returns the method's attribute name, for diagnostics.
func (m *arrayMethod) Name() string { return m.name }

// CallBound implements BoundMethod: GETATTR on an array instance binds
// this method's receiver to self before wrapping it as a callable
// function object (spec §4.9's attribute-index method path).
func (m *arrayMethod) CallBound(self Value, args []Value) (Value, error) {
	return m.fn(self.(*ArrayValue), args)
}

func arrayPush(a *ArrayValue, args []Value) (Value, error) {
	a.Push(args[0])
	return nil, nil
}

func arrayPop(a *ArrayValue, args []Value) (Value, error) {
	return a.Pop(), nil
}

func arrayGet(a *ArrayValue, args []Value) (Value, error) {
	idx := args[0].(*IntValue)
	n, _ := bigint.Int64Fast(idx.Value())
	return a.Get(int(n)), nil
}

func arraySet(a *ArrayValue, args []Value) (Value, error) {
	idx := args[0].(*IntValue)
	n, _ := bigint.Int64Fast(idx.Value())
	a.Set(int(n), args[1])
	return nil, nil
}

func arrayLength(a *ArrayValue, args []Value) (Value, error) {
	return NewIntFromInt64(a.heapOrNil(), int64(len(a.elems))), nil
}

// heapOrNil returns the heap the array itself lives on, so a
// length-result int beyond the small-int range (every small int is
// static) lands on the right heap. Static arrays never exist (arrays are always
// constructed via arrayConstructor/NewArray onto a real heap), so this
// is always non-nil in practice.
func (a *ArrayValue) heapOrNil() *Heap { return a.Object.heap }
