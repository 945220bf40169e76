package interp

import (
	"github.com/asda-lang/asdar/bytecode"
	"github.com/asda-lang/asdar/module"
	"github.com/asda-lang/asdar/object"
	"github.com/asda-lang/asdar/scope"
)

// AsdaFunction is the asda-defined-function kind of function.Callable
// (spec §4.6): a compiled body plus the lexical scope it closed over
// when CREATEFUNC built it. It lives here, not in the function
// package, because calling it must re-enter this package's dispatch
// loop -- the split that keeps function a leaf package (see
// function.go's package doc).
type AsdaFunction struct {
	interp  *Interp
	code    *bytecode.Code
	def     *scope.Scope // retained definition (closure) scope
	types   []*object.Type
	funcs   []*bytecode.Code
	imports []*module.Module
}

// newAsdaFunction captures def as the function's closure scope,
// retaining it for the function object's lifetime.
func newAsdaFunction(in *Interp, code *bytecode.Code, def *scope.Scope, types []*object.Type, funcs []*bytecode.Code, imports []*module.Module) *AsdaFunction {
	def.Retain()
	return &AsdaFunction{interp: in, code: code, def: def, types: types, funcs: funcs, imports: imports}
}

// Call runs the function body in a fresh scope chained under its
// closed-over definition scope, with args bound to the first
// len(args) local slots (spec §4.9's call convention: "arguments
// occupy the first local-variable slots").
func (a *AsdaFunction) Call(args []object.Value) (object.Value, error) {
	sc := scope.New(a.def, a.code.NumLocals)
	for i, v := range args {
		sc.SetLocal(i, v)
	}
	f := newFrame(a.interp, a.code, sc, a.types, a.funcs, a.imports)
	retVal, err := f.exec()
	sc.Release()
	return retVal, err
}

// ReleaseRefs releases the retained closure scope (function.Destroyable,
// spec §3's two-phase destruction: this runs in the refs-release
// phase since releasing a Scope may itself cascade into decrefing
// captured objects).
func (a *AsdaFunction) ReleaseRefs() {
	if a.def != nil {
		a.def.Release()
	}
}

// ReleaseResources drops the now-released scope pointer.
func (a *AsdaFunction) ReleaseResources() {
	a.def = nil
	a.code = nil
	a.types = nil
	a.funcs = nil
	a.imports = nil
}
