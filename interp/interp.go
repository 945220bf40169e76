// Package interp runs decoded bytecode (spec §4.9): it owns the
// operand stack, locals scope, error-handler stack, and finally-state
// stack for each call, dispatches every opcode, and propagates THROWn
// errors through Go's native call-return path until a handler matches
// or the call chain is exhausted.
//
// The frame/dispatch-loop shape here is grounded on
// dr8co-kong/vm/vm.go's fetch-decode-execute loop; the two-phase
// object destruction on every exit path is grounded on this runtime's
// own object package (spec §3).
package interp

import (
	"fmt"

	"github.com/asda-lang/asdar/bigint"
	"github.com/asda-lang/asdar/bytecode"
	"github.com/asda-lang/asdar/internal/obslog"
	"github.com/asda-lang/asdar/module"
	"github.com/asda-lang/asdar/object"
	"github.com/asda-lang/asdar/scope"
)

// Interp is one running asda program: its object heap, module
// registry, and the base directory imports resolve relative to (spec
// §4.10).
type Interp struct {
	Heap    *object.Heap
	Modules *module.Registry
	BaseDir string

	// Tracer, when set, is notified before every opcode executes (the
	// step-debugger's hook, cmd/asdar's -i mode). A nil Tracer costs a
	// single nil check per opcode.
	Tracer Tracer
}

// TraceEvent describes one opcode about to execute.
type TraceEvent struct {
	Op        bytecode.Op
	IP        int
	Source    string
	StackSize int
}

// Tracer observes a frame's dispatch loop one opcode at a time. Trace
// may block -- the step-debugger uses this to pause the VM goroutine
// until the user asks to advance.
type Tracer interface {
	Trace(ev TraceEvent)
}

// New creates an interpreter with a fresh heap and module registry.
func New(baseDir string) *Interp {
	return &Interp{
		Heap:    object.NewHeap(),
		Modules: module.New(),
		BaseDir: baseDir,
	}
}

// ehEntry is one live error-handler-stack entry (spec §4.9's EH_ADD):
// errors whose type is assignable to Want are caught by jumping to
// JumpTarget, after binding the thrown value to VarIndex (a local slot
// index, -1 if the handler doesn't bind it).
type ehEntry struct {
	JumpTarget int
	Want       *object.Type
	VarIndex   int
}

// noBindVarIndex is EH_ADD's wire-level sentinel for "this handler
// doesn't bind the caught value to a variable" -- the var-index field
// is an unsigned u16 on the wire (decoder.go's readOp), so -1 isn't
// representable there; 0xFFFF stands in for it and is translated to
// -1 the moment an ehEntry is built.
const noBindVarIndex = 0xFFFF

// fsState is one live finally-state-stack entry (spec §4.9's FS_*
// ops): records what a `finally` block's body must do once it finishes
// running, since the body is emitted once but must resume whichever
// control-transfer (fallthrough, return, jump, or re-raise) triggered
// it.
type fsState struct {
	kind     fsKind
	errVal   *object.ErrorValue // fsError
	retVal   object.Value       // fsValueReturn
	jumpDest int                // fsJump
}

type fsKind int

const (
	fsOK fsKind = iota
	fsError
	fsValueReturn
	fsJumpState
)

// frame is one function call's execution state.
type frame struct {
	interp  *Interp
	code    *bytecode.Code
	scope   *scope.Scope
	types   []*object.Type
	funcs   []*bytecode.Code
	imports []*module.Module

	stack     []object.Value
	ehStack   []ehEntry
	fsStack   []fsState
	retVal    object.Value
	returning bool
}

func newFrame(in *Interp, code *bytecode.Code, sc *scope.Scope, types []*object.Type, funcs []*bytecode.Code, imports []*module.Module) *frame {
	return &frame{
		interp:  in,
		code:    code,
		scope:   sc,
		types:   types,
		funcs:   funcs,
		imports: imports,
		stack:   make([]object.Value, 0, code.MaxStackSize),
	}
}

func (f *frame) push(v object.Value) { f.stack = append(f.stack, v) }

func (f *frame) pop() object.Value {
	n := len(f.stack)
	v := f.stack[n-1]
	f.stack = f.stack[:n-1]
	return v
}

func (f *frame) top() object.Value { return f.stack[len(f.stack)-1] }

// clearStack decrefs and drops every remaining operand, run when an
// error propagates out of this frame (spec §4.9's error-propagation
// paragraph: "the operand stack is cleared, decrefing everything on
// it").
func (f *frame) clearStack() {
	for _, v := range f.stack {
		object.DecRef(v)
	}
	f.stack = f.stack[:0]
}

// Run executes code in a fresh scope chained under parent (nil for a
// module's top-level body), with types/funcs resolved against the
// owning module, returning the function's single return value (nil for
// a void function) or the error that propagated out uncaught.
func (in *Interp) Run(code *bytecode.Code, parent *scope.Scope, types []*object.Type, funcs []*bytecode.Code, imports []*module.Module) (object.Value, error) {
	sc := scope.New(parent, code.NumLocals)
	f := newFrame(in, code, sc, types, funcs, imports)
	retVal, err := f.exec()
	sc.Release()
	return retVal, err
}

// RunModule executes one decoded module's top-level body (spec
// §4.7/§4.10), registering the result in the interpreter's module
// registry so later GETFROMMODULE lookups and the eventual Teardown
// sweep can find it. imports are this module's already-loaded
// dependencies, in declaration order (spec §4.8's import section),
// matched to GETFROMMODULE's module index by position.
//
// The wire format carries no separate export table (spec §9's kind of
// gap): every top-level local of main is treated as exported, indexed
// identically to its local-variable slot -- the simplest mapping
// consistent with GETFROMMODULE's (module-index, slot-index) pair.
func (in *Interp) RunModule(decoded *bytecode.Module, imports []*module.Module) (*module.Module, error) {
	types := ResolveTypes(decoded.Types)
	mainCode := decoded.Funcs[decoded.MainIndex]

	sc := scope.New(nil, mainCode.NumLocals)
	f := newFrame(in, mainCode, sc, types, decoded.Funcs, imports)
	if _, err := f.exec(); err != nil {
		sc.Release()
		return nil, err
	}

	exports := make([]object.Value, mainCode.NumLocals)
	for i := range exports {
		exports[i] = sc.GetLocal(i)
	}

	mod := &module.Module{
		Path:    decoded.SourcePath,
		Scope:   sc,
		Types:   types,
		Exports: exports,
	}
	in.Modules.Add(mod)
	return mod, nil
}

// exec is the fetch-decode-execute loop (spec §4.9's opcode table).
func (f *frame) exec() (object.Value, error) {
	ip := 0
	for ip < len(f.code.Ops) {
		op := f.code.Ops[ip]
		obslog.Debugf("%s:%d [%d] %s", f.code.SourcePath, op.Line, ip, bytecode.OpName(op.Tag))
		if f.interp.Tracer != nil {
			f.interp.Tracer.Trace(TraceEvent{
				Op:        op,
				IP:        ip,
				Source:    f.code.SourcePath,
				StackSize: len(f.stack),
			})
		}
		next, err := f.step(op, ip)
		if err != nil {
			thrown, ok := asThrown(err)
			if !ok {
				f.clearStack()
				return nil, err
			}
			handled, newIP := f.dispatchError(thrown)
			if !handled {
				f.clearStack()
				return nil, err
			}
			ip = newIP
			continue
		}
		if f.returning {
			retVal := f.retVal
			f.retVal = nil
			return retVal, nil
		}
		ip = next
	}
	return nil, fmt.Errorf("asda function body fell off the end without RETURN or VALUE_RETURN")
}

// dispatchError walks the error-handler stack top-to-bottom (spec
// §4.9) looking for the first entry whose Want type thrown's type is
// assignable to. exec does not clear the operand stack before calling
// this; on a match, dispatchError clears it, binds the thrown value
// into VarIndex if requested, and execution resumes at JumpTarget. No
// match means the error keeps propagating to the caller.
func (f *frame) dispatchError(thrown *object.ErrorValue) (handled bool, ip int) {
	for len(f.ehStack) > 0 {
		n := len(f.ehStack) - 1
		h := f.ehStack[n]
		f.ehStack = f.ehStack[:n]
		if !thrown.Type().IsAssignableTo(h.Want) {
			continue
		}
		f.clearStack()
		if h.VarIndex >= 0 {
			f.scope.SetLocal(h.VarIndex, thrown)
		}
		object.DecRef(thrown)
		return true, h.JumpTarget
	}
	return false, 0
}

// step executes one opcode, returning the next instruction pointer (if
// no control transfer), or setting f.returning, or returning an error
// (a *thrownError for asda-level THROW, any other error for an
// interpreter/runtime fault).
func (f *frame) step(op bytecode.Op, ip int) (int, error) {
	h := f.interp.Heap
	switch op.Tag {
	case bytecode.TagStringConstant:
		s, err := object.NewStringFromUTF8(h, []byte(op.Str))
		if err != nil {
			return 0, err
		}
		f.push(s)

	case bytecode.TagNonNegIntConstant:
		f.push(object.NewInt(h, bigint.FromBytes(op.BigBytes, false)))

	case bytecode.TagNegIntConstant:
		f.push(object.NewInt(h, bigint.FromBytes(op.BigBytes, true)))

	case bytecode.TagGetBuiltinVar:
		f.push(builtinVar(h, int(op.Int)))

	case bytecode.TagSetLocal:
		v := f.pop()
		f.scope.SetLocal(int(op.Int), v)
		object.DecRef(v)

	case bytecode.TagGetLocal:
		if !f.scope.IsLocalSet(int(op.Int)) {
			return 0, throwVariableError(h, "value of a local variable is not set")
		}
		f.push(f.scope.GetLocal(int(op.Int)))

	case bytecode.TagCreateBox:
		f.push(object.NewBox(h))

	case bytecode.TagSetToBox:
		v := f.pop()
		box := f.pop().(*object.BoxValue)
		box.Set(v)
		object.DecRef(v)
		object.DecRef(box)

	case bytecode.TagUnbox:
		box := f.pop().(*object.BoxValue)
		if !box.IsSet() {
			object.DecRef(box)
			return 0, throwVariableError(h, "value of a box is not set")
		}
		f.push(box.Get())
		object.DecRef(box)

	case bytecode.TagGetFromModule:
		mod := f.imports[int(op.Int)]
		v := mod.Exports[int(op.Int2)]
		if v == nil {
			return 0, throwVariableError(h, "value of an exported variable is not set")
		}
		object.IncRef(v)
		f.push(v)

	case bytecode.TagGetAttr:
		return 0, f.doGetAttr(op)

	case bytecode.TagSetAttr:
		return 0, f.doSetAttr(op)

	case bytecode.TagFunctionBegins:
		// a marker the decoder consumes structurally; nothing to do
		// at execution time.

	case bytecode.TagCallBuiltin:
		return 0, f.doCallBuiltin(op)

	case bytecode.TagCallCodeFunc:
		return 0, f.doCallCodeFunc(op)

	case bytecode.TagCallConstructor:
		return 0, f.doCallConstructor(op)

	case bytecode.TagJump:
		return int(op.Int), nil

	case bytecode.TagJumpIf:
		cond := f.pop().(*object.BoolValue)
		if cond.Value {
			return int(op.Int), nil
		}
		return ip + 1, nil

	case bytecode.TagJumpIfEqInt:
		b := f.pop().(*object.IntValue)
		a := f.pop().(*object.IntValue)
		eq := object.IntCmp(a, b) == 0
		object.DecRef(a)
		object.DecRef(b)
		if eq {
			return int(op.Int), nil
		}
		return ip + 1, nil

	case bytecode.TagJumpIfEqStr:
		b := f.pop().(*object.StringValue)
		a := f.pop().(*object.StringValue)
		eq := object.StringEqual(a, b)
		object.DecRef(a)
		object.DecRef(b)
		if eq {
			return int(op.Int), nil
		}
		return ip + 1, nil

	case bytecode.TagStringJoin:
		n := int(op.Int)
		parts := make([]*object.StringValue, n)
		for i := n - 1; i >= 0; i-- {
			parts[i] = f.pop().(*object.StringValue)
		}
		joined := object.Join(h, parts)
		for _, p := range parts {
			object.DecRef(p)
		}
		f.push(joined)

	case bytecode.TagThrow:
		v := f.pop().(*object.ErrorValue)
		return 0, throwValue(v)

	case bytecode.TagReturn:
		f.returning = true

	case bytecode.TagValueReturn:
		f.retVal = f.pop()
		f.returning = true

	case bytecode.TagPop:
		v := f.pop()
		object.DecRef(v)

	case bytecode.TagSwap:
		n := len(f.stack)
		f.stack[n-1], f.stack[n-2] = f.stack[n-2], f.stack[n-1]

	case bytecode.TagDup:
		v := f.stack[len(f.stack)-1-int(op.Int)]
		object.IncRef(v)
		f.push(v)

	case bytecode.TagIntAdd, bytecode.TagIntSub, bytecode.TagIntMul:
		b := f.pop().(*object.IntValue)
		a := f.pop().(*object.IntValue)
		var res *object.IntValue
		switch op.Tag {
		case bytecode.TagIntAdd:
			res = object.IntAdd(h, a, b)
		case bytecode.TagIntSub:
			res = object.IntSub(h, a, b)
		case bytecode.TagIntMul:
			res = object.IntMul(h, a, b)
		}
		object.DecRef(a)
		object.DecRef(b)
		f.push(res)

	case bytecode.TagIntNeg:
		a := f.pop().(*object.IntValue)
		res := object.IntNeg(h, a)
		object.DecRef(a)
		f.push(res)

	case bytecode.TagCreateFunc:
		f.push(f.createFunc(int(op.Int)))

	case bytecode.TagCreatePartial:
		return 0, f.doCreatePartial(op)

	case bytecode.TagStoreRetVal:
		if f.retVal != nil {
			panic("STORERETVAL: return-value holder already set")
		}
		f.retVal = f.pop()

	case bytecode.TagSetMethods2Class:
		return 0, f.doSetMethods(op)

	case bytecode.TagEHAdd:
		varIdx := int(op.Int2)
		if varIdx == noBindVarIndex {
			varIdx = -1
		}
		f.ehStack = append(f.ehStack, ehEntry{
			JumpTarget: int(op.Int),
			Want:       f.types[op.TypeIdx],
			VarIndex:   varIdx,
		})

	case bytecode.TagEHRm:
		n := int(op.Int)
		if n > len(f.ehStack) {
			n = len(f.ehStack)
		}
		f.ehStack = f.ehStack[:len(f.ehStack)-n]

	case bytecode.TagFSOk:
		f.fsStack = append(f.fsStack, fsState{kind: fsOK})

	case bytecode.TagFSError:
		v := f.pop().(*object.ErrorValue)
		f.fsStack = append(f.fsStack, fsState{kind: fsError, errVal: v})

	case bytecode.TagFSValueReturn:
		v := f.pop()
		f.fsStack = append(f.fsStack, fsState{kind: fsValueReturn, retVal: v})

	case bytecode.TagFSJump:
		f.fsStack = append(f.fsStack, fsState{kind: fsJumpState, jumpDest: int(op.Int)})

	case bytecode.TagFSDiscard:
		n := len(f.fsStack) - 1
		st := f.fsStack[n]
		f.fsStack = f.fsStack[:n]
		if st.kind == fsError {
			object.DecRef(st.errVal)
		} else if st.kind == fsValueReturn {
			object.DecRef(st.retVal)
		}

	case bytecode.TagFSApply:
		n := len(f.fsStack) - 1
		st := f.fsStack[n]
		f.fsStack = f.fsStack[:n]
		switch st.kind {
		case fsOK:
			// fall through to the next instruction.
		case fsError:
			return 0, throwValue(st.errVal)
		case fsValueReturn:
			f.retVal = st.retVal
			f.returning = true
		case fsJumpState:
			return st.jumpDest, nil
		}

	case bytecode.TagEndOfBody:
		f.returning = true

	default:
		return 0, fmt.Errorf("unimplemented opcode tag %q", op.Tag)
	}
	return ip + 1, nil
}

func throwVariableError(h *object.Heap, detail string) error {
	msg, err := object.NewStringFromUTF8(h, []byte(detail))
	if err != nil {
		panic(err)
	}
	return throwValue(object.NewError(h, object.VariableErrType, msg))
}

// builtinVar resolves spec §6's builtin-variable table: the boolean
// constants (index 0 = true, 1 = false). Builtin *functions* (print and
// friends) are a separate table reached through CALL_BUILTIN_FUNCTION
// (doCallBuiltin in ops.go), matching the original's separate
// builtin_objects/builtin_funcs arrays
// (original_source/asdarc/builtin.c, bcreader.c's read_builtin_func).
func builtinVar(h *object.Heap, index int) object.Value {
	switch index {
	case 0:
		return object.Bool(true)
	case 1:
		return object.Bool(false)
	default:
		panic(fmt.Sprintf("unknown builtin variable index %d", index))
	}
}
