package object

import "github.com/asda-lang/asdar/bigint"

// IntType is asda's builtin arbitrary-precision integer type (spec
// §3, §4.2).
var IntType = NewBasicType("int", nil, nil)

// IntValue is asda's integer object. Per spec, a value within the
// small range is its own reference with no refcount bookkeeping
// needed; a Go safe sum type can't pull that off with zero allocation
// the way the original's pointer tagging did (spec §9's REDESIGN
// FLAG), so this package keeps the *behavioral* guarantee instead: a
// small IntValue is built with initStatic, so IncRef/DecRef on it are
// the same trivial no-ops a truly static object gets. A small,
// precomputed cache (cacheMin..cacheMax, mirroring the "int cache"
// spec §5 calls out as one of the interpreter's process-global
// resources) avoids repeat allocation for the values bytecode uses
// most -- small loop counters, array indices, and the like.
type IntValue struct {
	Object
	val bigint.Int
}

// Value returns the underlying arbitrary-precision integer.
func (i *IntValue) Value() bigint.Int { return i.val }

// Decimal renders the integer's decimal string form (spec §4.2
// "to-decimal-string").
func (i *IntValue) Decimal() string { return i.val.String() }

func newIntStatic(v bigint.Int) *IntValue {
	iv := &IntValue{val: v}
	initStatic(&iv.Object, iv, IntType, nil)
	return iv
}

func newIntHeap(h *Heap, v bigint.Int) *IntValue {
	iv := &IntValue{val: v}
	initHeap(&iv.Object, h, iv, IntType, nil)
	return iv
}

const (
	intCacheMin int64 = -128
	intCacheMax int64 = 1024 // exclusive
)

var intCache [intCacheMax - intCacheMin]*IntValue

func init() {
	for n := intCacheMin; n < intCacheMax; n++ {
		intCache[n-intCacheMin] = newIntStatic(bigint.FromInt64(n))
	}
}

// NewInt returns the IntValue for v, using the heap only when v falls
// outside the small (tagged) range.
func NewInt(h *Heap, v bigint.Int) *IntValue {
	if v.IsSmall() {
		if n, ok := smallInt64(v); ok && n >= intCacheMin && n < intCacheMax {
			return intCache[n-intCacheMin]
		}
		return newIntStatic(v)
	}
	return newIntHeap(h, v)
}

// smallInt64 extracts the int64 held by a small bigint.Int, for cache
// indexing only.
func smallInt64(v bigint.Int) (int64, bool) {
	return bigint.Int64Fast(v)
}

// NewIntFromInt64 is a convenience wrapper for native int64 constants.
func NewIntFromInt64(h *Heap, n int64) *IntValue {
	return NewInt(h, bigint.FromInt64(n))
}

// IntAdd, IntSub, IntMul, IntNeg implement the INT_ADD/SUB/MUL/NEG ops
// (spec §4.9).
func IntAdd(h *Heap, a, b *IntValue) *IntValue { return NewInt(h, bigint.Add(a.val, b.val)) }
func IntSub(h *Heap, a, b *IntValue) *IntValue { return NewInt(h, bigint.Sub(a.val, b.val)) }
func IntMul(h *Heap, a, b *IntValue) *IntValue { return NewInt(h, bigint.Mul(a.val, b.val)) }
func IntNeg(h *Heap, a *IntValue) *IntValue    { return NewInt(h, bigint.Neg(a.val)) }

// IntCmp performs the three-way comparison used by JUMPIFEQ and
// ordering builtins.
func IntCmp(a, b *IntValue) int { return bigint.Cmp(a.val, b.val) }
