package object

// Kind distinguishes the three kinds of Type (spec §4.3).
type Kind int

const (
	KindBasic Kind = iota
	KindFunction
	KindClass
)

// ConstructorFunc builds a new instance of a basic type from bytecode's
// CALLCONSTRUCTOR op. Pure data types (that have no constructor
// opcode-visible way to build them) leave this nil. It receives the
// heap the new instance must be linked into, since object
// construction is always heap-allocated (spec §4.9: CALLCONSTRUCTOR
// always pushes a fresh, refcounted instance).
type ConstructorFunc func(h *Heap, args []Value) (Value, error)

// Type is a compile-time descriptor (spec §3 "Type"). Values never own
// their Type; a Type's lifetime is managed by the module that declared
// it (or, for builtins, the process lifetime).
type Type struct {
	Name string
	Kind Kind

	// Methods is the ordered, index-addressed method table shared by
	// basic and asda-class types. Stored as Value (rather than a
	// concrete function type) so this package does not need to import
	// the function package -- avoiding an object<->function import
	// cycle, since *function.Function itself embeds object.Object.
	Methods []Value

	// Constructor is set for builtin types constructible from
	// bytecode (array, error, ...); nil for pure data types.
	Constructor ConstructorFunc

	// ArgTypes and ReturnType describe a function-type; both nil for
	// non-function kinds. Function types carry no behavior beyond
	// identity (spec §4.3: "identity-only used for type checks").
	ArgTypes   []*Type
	ReturnType *Type

	// NumAsdaAttrs is the number of asda-class data-field attributes,
	// which precede the NumAsdaAttrs+len(Methods) total attribute
	// indices used by GETATTR/SETATTR (spec §4.9). Zero for non-class
	// kinds.
	NumAsdaAttrs int

	// Parent chains error subtypes to their base (spec §7's error
	// taxonomy: user-defined subclasses of the generic error type,
	// and the builtin nomem/variable/value/os-error types, all
	// descend from a single base "error" type). Nil for types with no
	// declared supertype.
	Parent *Type
}

// ObjectType is the builtin root type (spec §6's builtin type table
// entry "object"): identity-only, carries no methods or constructor
// of its own.
var ObjectType = NewBasicType("object", nil, nil)

// NewBasicType creates a basic type with a fixed method table and
// optional constructor.
func NewBasicType(name string, methods []Value, ctor ConstructorFunc) *Type {
	return &Type{Name: name, Kind: KindBasic, Methods: methods, Constructor: ctor}
}

// NewFunctionType creates a function-type descriptor.
func NewFunctionType(argTypes []*Type, returnType *Type) *Type {
	return &Type{Name: "function", Kind: KindFunction, ArgTypes: argTypes, ReturnType: returnType}
}

// NewClassType creates an asda-class type with nasdaattrs data-field
// attributes. Methods are installed afterwards via SetMethods, since
// "classes and their methods can reference each other" (spec §4.3) --
// the class value must exist before its methods are compiled.
func NewClassType(name string, numAsdaAttrs int, parent *Type) *Type {
	return &Type{Name: name, Kind: KindClass, NumAsdaAttrs: numAsdaAttrs, Parent: parent}
}

// SetMethods installs t's trailing methods, as bytecode's
// SETMETHODS2CLASS op does at runtime (spec §4.9). The type takes its
// own reference to each method -- methods are owned by the class type
// (spec §9's design note) -- so callers pass a borrowed slice, not a
// transferred one.
func (t *Type) SetMethods(methods []Value) {
	for _, m := range methods {
		IncRef(m)
	}
	t.Methods = methods
}

// NullMethods clears every method slot and returns the displaced
// values, decrefing nothing itself -- callers (module teardown, spec
// §4.7) are responsible for decrefing the returned values after
// calling this, since that decref is what breaks the
// class<->method<->instance reference cycle.
func (t *Type) NullMethods() []Value {
	old := t.Methods
	t.Methods = nil
	return old
}

// Fielder is implemented by any value with asda-class-style indexed
// data-field attributes (ClassInstance and ErrorValue) so GETATTR/
// SETATTR can address fields generically without a type switch over
// every concrete kind.
type Fielder interface {
	GetField(i int) Value
	SetField(i int, v Value)
	IsFieldSet(i int) bool
}

// BoundMethod is implemented by a builtin method Value stored in a
// Type's Methods table that is not itself a callable function object
// (spec §4.9's GETATTR on a builtin-type instance): CallBound receives
// the receiver the attribute was looked up on, separately from the
// asda-defined-function case where Methods holds a *function.Function
// and binding is just a partial application with self as the prefix.
type BoundMethod interface {
	CallBound(self Value, args []Value) (Value, error)
}

// IsAssignableTo reports whether a value of type t may be bound where
// decl is declared, per spec §4.9's error-handler matching: t itself,
// or any ancestor in t's Parent chain, equals decl.
func (t *Type) IsAssignableTo(decl *Type) bool {
	for cur := t; cur != nil; cur = cur.Parent {
		if cur == decl {
			return true
		}
	}
	return false
}
