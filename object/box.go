package object

// BoxType is the type of a one-slot mutable cell (spec §4.5: a
// closure captures a variable it assigns to by boxing it, so every
// Scope referencing that variable sees the same mutable cell rather
// than a stale copy). Boxes are never asda-visible as a declared
// type -- CREATEBOX/SET2BOX/UNBOX reach them directly -- but they are
// still refcounted heap objects like everything else the interpreter
// holds.
var BoxType = NewBasicType("box", nil, nil)

// BoxValue is a single mutable reference cell.
type BoxValue struct {
	Object
	content Value
}

func destroyBox(v Value, phase DestroyPhase) {
	b := v.(*BoxValue)
	switch phase {
	case DestroyReleaseRefs:
		DecRef(b.content)
	case DestroyReleaseResources:
		b.content = nil
	}
}

// NewBox creates an empty box (CREATEBOX, spec §4.9).
func NewBox(h *Heap) *BoxValue {
	b := &BoxValue{}
	initHeap(&b.Object, h, b, BoxType, destroyBox)
	return b
}

// Set stores v in the box (SET2BOX), taking a new reference to v and
// releasing whatever the box previously held.
func (b *BoxValue) Set(v Value) {
	IncRef(v)
	old := b.content
	b.content = v
	DecRef(old)
}

// Get returns a new reference to the box's current content (UNBOX).
// Callers implementing UNBOX must check IsSet first and raise asda's
// catchable variable-error themselves (spec §7's
// read-before-assignment case) -- Get's panic here is only a backstop
// against an interpreter bug that skipped that check.
func (b *BoxValue) Get() Value {
	if b.content == nil {
		panic("unbox of a box that was never set")
	}
	IncRef(b.content)
	return b.content
}

// IsSet reports whether the box currently holds a value.
func (b *BoxValue) IsSet() bool { return b.content != nil }
