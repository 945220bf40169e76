package object

// ClassInstance is an instance of a bytecode-declared asda-class
// type (spec §4.3): NumAsdaAttrs data-field slots, addressed
// 0..NumAsdaAttrs-1 by GETATTR/SETATTR; method lookups on the same
// attribute index space are served from the class Type's Methods
// table (partial-bound to the instance), not from per-instance
// storage.
type ClassInstance struct {
	Object
	fields []Value
}

func destroyClassInstance(v Value, phase DestroyPhase) {
	ci := v.(*ClassInstance)
	switch phase {
	case DestroyReleaseRefs:
		for _, f := range ci.fields {
			DecRef(f)
		}
	case DestroyReleaseResources:
		ci.fields = nil
	}
}

// NewClassInstance allocates an instance of typ (typ.Kind must be
// KindClass) with all field slots initially unset.
func NewClassInstance(h *Heap, typ *Type) *ClassInstance {
	ci := &ClassInstance{fields: make([]Value, typ.NumAsdaAttrs)}
	initHeap(&ci.Object, h, ci, typ, destroyClassInstance)
	return ci
}

// ClassConstructor is the ConstructorFunc a decoded asda-class type
// installs: construction allocates an instance and seats args into
// its first len(args) field slots in order, taking a new reference to
// each (mirroring asdainstobj_constructor's attribute-value copy).
// Any remaining fields are left unset, assigned later via SETATTR ops
// the compiler emits in the constructor method body.
func ClassConstructor(typ *Type) ConstructorFunc {
	return func(h *Heap, args []Value) (Value, error) {
		ci := NewClassInstance(h, typ)
		for i, a := range args {
			ci.SetField(i, a)
		}
		return ci, nil
	}
}

// GetField returns a new reference to field i, or nil if unset.
func (ci *ClassInstance) GetField(i int) Value {
	v := ci.fields[i]
	IncRef(v)
	return v
}

// SetField stores v in field i, taking a new reference and releasing
// whatever the field previously held.
func (ci *ClassInstance) SetField(i int, v Value) {
	IncRef(v)
	old := ci.fields[i]
	ci.fields[i] = v
	DecRef(old)
}

// IsFieldSet reports whether field i currently holds a value.
func (ci *ClassInstance) IsFieldSet(i int) bool { return ci.fields[i] != nil }
