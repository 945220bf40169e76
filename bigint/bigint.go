package bigint

import (
	"math"
	"math/big"

	"github.com/asda-lang/asdar/asdaerr"
)

// SmallMax and SmallMin bound the tagged small-integer fast path
// (spec §3: "MAX = min((INTPTR_MAX-1)/2, -(INTPTR_MIN/2))"). Computed
// from int64 rather than platform intptr width since Go gives us a
// safe sum type instead of pointer tagging, so there is no longer a
// pointer-width constraint to track — int64 is a deliberately
// conservative, portable choice.
const (
	SmallMax int64 = (math.MaxInt64 - 1) / 2
	SmallMin int64 = -SmallMax
)

// Int is an arbitrary-precision signed integer. The zero value is not
// valid; use FromInt64, FromBytes, or the arithmetic constructors.
//
// When big is nil, the value is held inline in small and is known to
// fit [SmallMin, SmallMax] ("tagged" in spec terms, though here it is
// simply a struct field rather than a pointer tag).
type Int struct {
	small int64
	big   *big.Int
}

// IsSmall reports whether v is represented in the tagged fast path.
func (v Int) IsSmall() bool { return v.big == nil }

// Int64Fast returns v's value and true when v is small. It is meant
// for callers (such as an int-value cache keyed by small int64) that
// already checked IsSmall and need the inline value without going
// through the big.Int fallback path.
func Int64Fast(v Int) (int64, bool) {
	if !v.IsSmall() {
		return 0, false
	}
	return v.small, true
}

// FromInt64 creates an Int from a machine int64, promoting to the big
// representation if it falls outside the small range.
func FromInt64(n int64) Int {
	if n >= SmallMin && n <= SmallMax {
		return Int{small: n}
	}
	return Int{big: big.NewInt(n)}
}

// FromBytes creates an Int from a little-endian magnitude and a sign
// flag, per the bytecode wire format (spec §4.8: "Integer constants are
// (uint32 length)(length bytes of little-endian magnitude) with the
// sign conveyed by one of two distinct opcode tags").
func FromBytes(littleEndianMagnitude []byte, negative bool) Int {
	be := make([]byte, len(littleEndianMagnitude))
	for i, b := range littleEndianMagnitude {
		be[len(be)-1-i] = b
	}
	n := new(big.Int).SetBytes(be)
	if negative {
		n.Neg(n)
	}
	return normalize(n)
}

// normalize narrows a *big.Int to the small representation if it fits,
// per spec's invariant that any result representable in the small
// range is returned in tagged form.
func normalize(n *big.Int) Int {
	if n.IsInt64() {
		i64 := n.Int64()
		if i64 >= SmallMin && i64 <= SmallMax {
			return Int{small: i64}
		}
	}
	return Int{big: new(big.Int).Set(n)}
}

func (v Int) asBig() *big.Int {
	if v.big != nil {
		return v.big
	}
	return big.NewInt(v.small)
}

// Add returns a + b.
func Add(a, b Int) Int {
	if a.IsSmall() && b.IsSmall() {
		sum := a.small + b.small
		if sum >= SmallMin && sum <= SmallMax {
			return Int{small: sum}
		}
	}
	return normalize(new(big.Int).Add(a.asBig(), b.asBig()))
}

// Sub returns a - b.
func Sub(a, b Int) Int {
	if a.IsSmall() && b.IsSmall() {
		diff := a.small - b.small
		if diff >= SmallMin && diff <= SmallMax {
			return Int{small: diff}
		}
	}
	return normalize(new(big.Int).Sub(a.asBig(), b.asBig()))
}

// Mul returns a * b.
func Mul(a, b Int) Int {
	if a.IsSmall() && b.IsSmall() {
		// Overflow-checked small multiply: since both operands fit in
		// roughly 62 bits, use the big backend for the computation
		// itself (never incorrect) and only decide the representation
		// afterwards -- that decision, not the intermediate
		// arithmetic, is what spec's "small fast path" invariant is
		// testable on (§8).
		product := new(big.Int).Mul(big.NewInt(a.small), big.NewInt(b.small))
		return normalize(product)
	}
	return normalize(new(big.Int).Mul(a.asBig(), b.asBig()))
}

// Neg returns -a. Negation of the most-negative small value is still
// small by construction of the range (SmallMin == -SmallMax).
func Neg(a Int) Int {
	if a.IsSmall() {
		return Int{small: -a.small}
	}
	return normalize(new(big.Int).Neg(a.asBig()))
}

// Cmp performs a three-way comparison: -1, 0, or 1.
func Cmp(a, b Int) int {
	if a.IsSmall() && b.IsSmall() {
		switch {
		case a.small < b.small:
			return -1
		case a.small > b.small:
			return 1
		default:
			return 0
		}
	}
	return a.asBig().Cmp(b.asBig())
}

// CmpInt64 compares v against a machine int64.
func CmpInt64(v Int, n int64) int {
	if v.IsSmall() {
		switch {
		case v.small < n:
			return -1
		case v.small > n:
			return 1
		default:
			return 0
		}
	}
	return v.asBig().Cmp(big.NewInt(n))
}

// String renders the decimal representation.
func (v Int) String() string {
	if v.IsSmall() {
		return big.NewInt(v.small).String()
	}
	return v.big.String()
}

// Sign returns -1, 0, or 1.
func (v Int) Sign() int {
	if v.IsSmall() {
		switch {
		case v.small < 0:
			return -1
		case v.small > 0:
			return 1
		default:
			return 0
		}
	}
	return v.big.Sign()
}

// Parse reads a decimal string representation (used by diagnostics and
// tests, not the wire format -- bytecode integers always arrive via
// FromBytes).
func Parse(s string) (Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int{}, asdaerr.Value(asdaerr.PhaseDecode, "invalid decimal integer %q", s)
	}
	return normalize(n), nil
}
