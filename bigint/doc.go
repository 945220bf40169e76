// Package bigint implements asda's arbitrary-precision signed integer
// (spec §4.2 / §3 "Integer object"): a small-integer fast path plus a
// math/big-backed path for magnitudes outside it.
//
// The original asda runtime represents a small integer by tagging the
// low bit of an object pointer; spec §9 flags this as a correctness-
// critical trick and explicitly allows replacing it with a safe sum
// type in a memory-safe language. This package takes that option: Int
// is a small struct with a nilable *big.Int field, the same
// optional-parsed / raw-fallback shape the teacher uses for its wasm
// section types (see component.Alias, component.Canon).
package bigint
