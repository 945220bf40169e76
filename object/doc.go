// Package object implements asda's object and type system (spec §3,
// §4.3): refcounted heap objects linked into the owning interpreter's
// object list, per-type method tables, and compile-time static
// objects whose decref is a no-op.
//
// Every runtime value embeds Object as its first field, the same
// optional-header-plus-payload composition the teacher uses for its
// wasm section types (component.Alias wraps ParsedAlias + RawData;
// here every Value wraps an Object header + its own payload fields).
// Embedding gives each concrete value type the Object's methods
// (Type(), refcount bookkeeping) for free via Go's method promotion.
package object
