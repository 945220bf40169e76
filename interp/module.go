package interp

import (
	"github.com/asda-lang/asdar/bytecode"
	"github.com/asda-lang/asdar/object"
)

var builtinTypesInOrder = []*object.Type{
	object.StringType,
	object.IntType,
	object.BoolType,
	object.ObjectType,
	object.ErrorBaseType,
	object.NoMemErrorType,
	object.VariableErrType,
	object.ValueErrType,
	object.OSErrType,
	object.ArrayType,
}

// ResolveTypes materializes every decoded type descriptor into a real
// object.Type. Builtins map onto the package-level shared instances;
// asda-classes become fresh object.NewClassType values.
//
// The wire format (spec §6's type tag bytes) carries no inheritance
// information for asda-class descriptors, so a class decoded here is
// always a plain class (Parent nil) -- user-defined error subclasses
// declared with object.NewErrorClass are a capability the object
// package exposes, but wiring a decoded class to that hierarchy would need a
// wire-format extension this decoder doesn't have.
func ResolveTypes(descs []*bytecode.TypeDesc) []*object.Type {
	types := make([]*object.Type, len(descs))
	for i, d := range descs {
		switch d.Tag {
		case 'b':
			types[i] = builtinTypesInOrder[d.BuiltinIndex]
		case 'v':
			types[i] = nil // void: valid only as a function's return type
		case 'a':
			// the wire format names classes only by their declaration
			// order within the module (spec §6's type-list section
			// carries no class-name string); SETMETHODS2CLASS installs
			// the method table separately once it's compiled.
			typ := object.NewClassType("class", d.NumAsdaAttrs, nil)
			typ.Constructor = object.ClassConstructor(typ)
			types[i] = typ
		case 'f':
			// function-type descriptors may reference types not yet
			// resolved if the wire format ever forward-references;
			// the decoder always lists dependencies first in
			// practice, so a direct recursive resolve is sufficient.
			args := make([]*object.Type, len(d.ArgTypes))
			for j, a := range d.ArgTypes {
				args[j] = resolveOne(a)
			}
			types[i] = object.NewFunctionType(args, resolveOne(d.ReturnType))
		}
	}
	return types
}

func resolveOne(d *bytecode.TypeDesc) *object.Type {
	if d == nil {
		return nil
	}
	resolved := ResolveTypes([]*bytecode.TypeDesc{d})
	return resolved[0]
}
