package interp

import (
	"fmt"
	"os"

	"github.com/asda-lang/asdar/bytecode"
	"github.com/asda-lang/asdar/function"
	"github.com/asda-lang/asdar/object"
)

// doGetAttr implements GETATTR (spec §4.9): pop a receiver, push the
// value at attribute index op.Int on type f.types[op.TypeIdx]. Indices
// below the type's NumAsdaAttrs are data fields; the rest select a
// method, bound to the popped receiver.
func (f *frame) doGetAttr(op bytecode.Op) error {
	recv := f.pop()
	typ := f.types[op.TypeIdx]
	idx := int(op.Int)

	if idx < typ.NumAsdaAttrs {
		fielder, ok := recv.(object.Fielder)
		if !ok {
			return fmt.Errorf("GETATTR: %T has no data fields", recv)
		}
		if !fielder.IsFieldSet(idx) {
			object.DecRef(recv)
			return throwVariableError(f.interp.Heap, "attribute value is not set")
		}
		v := fielder.GetField(idx)
		object.DecRef(recv)
		f.push(v)
		return nil
	}

	method := typ.Methods[idx-typ.NumAsdaAttrs]
	bound, err := bindMethod(f.interp.Heap, method, recv)
	if err != nil {
		object.DecRef(recv)
		return err
	}
	f.push(bound)
	return nil
}

// doSetAttr implements SETATTR: pop a value then a receiver, store the
// value at the given data-field index.
func (f *frame) doSetAttr(op bytecode.Op) error {
	v := f.pop()
	recv := f.pop()
	idx := int(op.Int)

	fielder, ok := recv.(object.Fielder)
	if !ok {
		object.DecRef(v)
		object.DecRef(recv)
		return fmt.Errorf("SETATTR: %T has no data fields", recv)
	}
	fielder.SetField(idx, v)
	object.DecRef(v)
	object.DecRef(recv)
	return nil
}

// bindMethod wraps method (either an asda-compiled *function.Function
// or a builtin object.BoundMethod) as a callable bound to self,
// transferring self's reference into the bound value.
func bindMethod(h *object.Heap, method object.Value, self object.Value) (object.Value, error) {
	switch m := method.(type) {
	case *function.Function:
		bound := function.NewPartial(h, m, []object.Value{self})
		object.DecRef(self)
		return bound, nil
	default:
		if bm, ok := method.(object.BoundMethod); ok {
			return function.New(h, &boundBuiltinMethod{method: bm, self: self}), nil
		}
		return nil, fmt.Errorf("GETATTR: method value of type %T is not callable", method)
	}
}

// boundBuiltinMethod adapts an object.BoundMethod plus a bound
// receiver into function.Callable/Destroyable, so a GETATTR on a
// builtin-type instance (e.g. array.push) produces an ordinary
// function object like any other method lookup.
type boundBuiltinMethod struct {
	method object.BoundMethod
	self   object.Value
}

func (b *boundBuiltinMethod) Call(args []object.Value) (object.Value, error) {
	return b.method.CallBound(b.self, args)
}

func (b *boundBuiltinMethod) ReleaseRefs()     { object.DecRef(b.self) }
func (b *boundBuiltinMethod) ReleaseResources() { b.self = nil }

// doCallCodeFunc implements CALL_CODE_FUNC (spec §4.9): pop op.Int
// arguments (in order), then the function value, call it, and push its
// return value if it has one.
func (f *frame) doCallCodeFunc(op bytecode.Op) error {
	n := int(op.Int)
	args := make([]object.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = f.pop()
	}
	fn := f.pop().(*function.Function)

	ret, err := fn.Call(args)
	for _, a := range args {
		object.DecRef(a)
	}
	object.DecRef(fn)
	if err != nil {
		return err
	}
	if ret != nil {
		f.push(ret)
	}
	return nil
}

// doCallConstructor implements CALLCONSTRUCTOR: pop op.Int args, call
// f.types[op.TypeIdx]'s Constructor, push the fresh instance.
func (f *frame) doCallConstructor(op bytecode.Op) error {
	n := int(op.Int)
	args := make([]object.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = f.pop()
	}
	typ := f.types[op.TypeIdx]
	if typ.Constructor == nil {
		return fmt.Errorf("type %q has no constructor", typ.Name)
	}
	v, err := typ.Constructor(f.interp.Heap, args)
	for _, a := range args {
		object.DecRef(a)
	}
	if err != nil {
		return err
	}
	f.push(v)
	return nil
}

// doCreatePartial implements CREATEPARTIAL: pop op.Int prefix
// arguments (in order), then the inner function, pushing a partial
// application (spec §4.6).
func (f *frame) doCreatePartial(op bytecode.Op) error {
	n := int(op.Int)
	prefix := make([]object.Value, n)
	for i := n - 1; i >= 0; i-- {
		prefix[i] = f.pop()
	}
	inner := f.pop().(*function.Function)

	partial := function.NewPartial(f.interp.Heap, inner, prefix)
	object.DecRef(inner)
	for _, v := range prefix {
		object.DecRef(v)
	}
	f.push(partial)
	return nil
}

// doSetMethods implements SETMETHODS2CLASS: pop op.Int method values
// (in order) and install them as f.types[op.TypeIdx]'s method table
// (spec §4.3/§4.9).
func (f *frame) doSetMethods(op bytecode.Op) error {
	n := int(op.Int)
	methods := make([]object.Value, n)
	for i := n - 1; i >= 0; i-- {
		methods[i] = f.pop()
	}
	typ := f.types[op.TypeIdx]
	typ.SetMethods(methods)
	for _, m := range methods {
		object.DecRef(m)
	}
	return nil
}

// createFunc implements CREATEFUNC: build an AsdaFunction closing over
// the current scope for the sibling function body at index, wrapped as
// a function.Function.
func (f *frame) createFunc(index int) object.Value {
	body := f.funcs[index]
	asdaFn := newAsdaFunction(f.interp, body, f.scope, f.types, f.funcs, f.imports)
	return function.New(f.interp.Heap, asdaFn)
}

// builtinFuncs is the CALL_BUILTIN_FUNCTION table (spec §6's
// CALL_BUILTIN_FUNCTION tag, grounded on
// original_source/asdarc/builtin.c's single-entry builtin_funcs table:
// print is the only builtin function, taking one string argument and
// returning nothing).
var builtinFuncs = []func(h *object.Heap, args []object.Value) (object.Value, error){
	builtinPrint,
}

func builtinPrint(h *object.Heap, args []object.Value) (object.Value, error) {
	s := args[0].(*object.StringValue)
	os.Stdout.Write(s.UTF8())
	os.Stdout.Write([]byte{'\n'})
	return nil, nil
}

// doCallBuiltin implements CALL_BUILTIN_FUNCTION: op.Int selects the
// builtin; its argument count is fixed per builtin (print takes
// exactly one string).
func (f *frame) doCallBuiltin(op bytecode.Op) error {
	idx := int(op.Int)
	if idx < 0 || idx >= len(builtinFuncs) {
		return fmt.Errorf("unknown builtin function index %d", idx)
	}
	arg := f.pop()
	ret, err := builtinFuncs[idx](f.interp.Heap, []object.Value{arg})
	object.DecRef(arg)
	if err != nil {
		return err
	}
	if ret != nil {
		f.push(ret)
	}
	return nil
}
