package object

import "fmt"

// DestroyPhase distinguishes the two passes of two-phase destruction
// (spec §3): first release outgoing references, then release
// non-reference resources and the object itself. Running every
// object's reference-release pass before any object's resource-release
// pass lets a forced shutdown sweep break cross-references safely
// regardless of traversal order.
type DestroyPhase int

const (
	DestroyReleaseRefs DestroyPhase = iota
	DestroyReleaseResources
)

// Destructor is invoked twice on the terminal decref of a heap object,
// once per DestroyPhase. A forced shutdown sweep likewise calls it
// once per phase for each object (all objects' ReleaseRefs pass, then
// all objects' ReleaseResources pass).
type Destructor func(v Value, phase DestroyPhase)

// Value is the interface every asda runtime object implements. A
// concrete value type embeds Object as its first field, which provides
// Obj() via method promotion.
type Value interface {
	Obj() *Object
}

// Object is the refcounted header embedded in every heap or static
// value.
type Object struct {
	typ       *Type
	refcount  uint64
	destroy   Destructor
	self      Value
	prev, next *Object
	heap      *Heap // non-nil for heap objects; nil for static objects
	gcScratch bool
}

// Obj returns the receiver; it exists so that types embedding Object
// satisfy Value without writing their own accessor.
func (o *Object) Obj() *Object { return o }

// Type returns the value's type.
func (o *Object) Type() *Type { return o.typ }

// IsStatic reports whether the object is a compile-time static object
// (refcount permanently >= 1, not linked into any heap list).
func (o *Object) IsStatic() bool { return o.heap == nil }

// RefCount returns the current reference count, for diagnostics and
// tests only.
func (o *Object) RefCount() uint64 { return o.refcount }

// initHeap wires up a freshly allocated heap object: refcount 1,
// linked at the head of the interpreter's object list.
func initHeap(o *Object, h *Heap, self Value, typ *Type, destroy Destructor) {
	o.typ = typ
	o.refcount = 1
	o.destroy = destroy
	o.self = self
	o.heap = h
	h.link(o)
}

// InitHeap wires up a freshly allocated heap object for a value type
// defined outside this package (spec's object types all embed Object
// as their first field but the package that defines the concrete type
// -- e.g. function.Function -- needs a way to finish construction
// without object exporting its internal linked-list plumbing).
func InitHeap(o *Object, h *Heap, self Value, typ *Type, destroy Destructor) {
	initHeap(o, h, self, typ, destroy)
}

// initStatic wires up a compile-time static object: refcount
// permanently elevated, never linked into a heap list.
func initStatic(o *Object, self Value, typ *Type, destroy Destructor) {
	o.typ = typ
	o.refcount = 1
	o.destroy = destroy
	o.self = self
	o.heap = nil
}

// IncRef increments v's reference count. A nil Value is a no-op, which
// keeps call sites that haven't bound an optional slot yet simple.
func IncRef(v Value) {
	if v == nil {
		return
	}
	v.Obj().refcount++
}

// DecRef decrements v's reference count, running the two-phase
// destructor and unlinking from the heap list on the terminal decref.
// Decref of a static object is a no-op (spec §4.3); decref of an
// object whose count is already zero is a runtime invariant violation.
func DecRef(v Value) {
	if v == nil {
		return
	}
	o := v.Obj()
	if o.IsStatic() {
		return
	}
	if o.refcount == 0 {
		panic(fmt.Sprintf("decref of object %T with refcount already zero", v))
	}
	o.refcount--
	if o.refcount == 0 {
		if o.destroy != nil {
			o.destroy(o.self, DestroyReleaseRefs)
			o.destroy(o.self, DestroyReleaseResources)
		}
		o.heap.unlink(o)
	}
}

// Heap is the interpreter's intrusive doubly-linked list of live heap
// objects, rooted in the interpreter instance (spec §3, §5). It exists
// so a fatal-error teardown can force-destroy every remaining object in
// a single traversal without depending on individual refcounts.
type Heap struct {
	head *Object
	size int
}

// NewHeap creates an empty object heap.
func NewHeap() *Heap { return &Heap{} }

// Len returns the number of live heap objects, for diagnostics/tests.
func (h *Heap) Len() int { return h.size }

func (h *Heap) link(o *Object) {
	o.prev = nil
	o.next = h.head
	if h.head != nil {
		h.head.prev = o
	}
	h.head = o
	h.size++
}

func (h *Heap) unlink(o *Object) {
	if o.prev != nil {
		o.prev.next = o.next
	} else if h.head == o {
		h.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	}
	o.prev, o.next = nil, nil
	h.size--
}

// ForceDestroyAll runs the two-phase destructor across every remaining
// live object, in two full passes over the list (spec §5: "the
// interpreter forces destruction of all remaining objects ... using
// the object-list doubly-linked list to sweep in a single
// traversal" -- here expressed as one traversal per phase, since a
// single combined pass would free an object's resources before a
// sibling object still referencing it had released its own
// reference).
func (h *Heap) ForceDestroyAll() {
	for o := h.head; o != nil; o = o.next {
		o.gcScratch = true
		if o.destroy != nil {
			o.destroy(o.self, DestroyReleaseRefs)
		}
	}
	for o := h.head; o != nil; o = o.next {
		if o.destroy != nil {
			o.destroy(o.self, DestroyReleaseResources)
		}
	}
	h.head = nil
	h.size = 0
}

// Walk calls fn for every live heap object, head to tail. Used by
// refcount-integrity diagnostics (spec §3's "GC scratch flag").
func (h *Heap) Walk(fn func(o *Object)) {
	for o := h.head; o != nil; o = o.next {
		fn(o)
	}
}
