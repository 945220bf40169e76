package object

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asda-lang/asdar/utf8codec"
)

// StringType is asda's builtin string type: an immutable sequence of
// code points (spec §4.4).
var StringType = NewBasicType("string", nil, nil)

// StringValue is an immutable sequence of Unicode code points with a
// lazily-built UTF-8 byte cache.
type StringValue struct {
	Object
	codePoints []rune
	utf8Cache  []byte
	haveUTF8   bool
}

func newString(h *Heap, codePoints []rune) *StringValue {
	s := &StringValue{codePoints: codePoints}
	initHeap(&s.Object, h, s, StringType, nil)
	return s
}

// NewStringOwned creates a string from an owned code-point buffer: the
// caller must not mutate codePoints afterwards.
func NewStringOwned(h *Heap, codePoints []rune) *StringValue {
	return newString(h, codePoints)
}

// NewStringCopy creates a string from borrowed code points, copying
// them.
func NewStringCopy(h *Heap, codePoints []rune) *StringValue {
	cp := make([]rune, len(codePoints))
	copy(cp, codePoints)
	return newString(h, cp)
}

// NewStringFromUTF8 decodes UTF-8 input into a string object.
func NewStringFromUTF8(h *Heap, data []byte) (*StringValue, error) {
	decoded, err := utf8codec.Decode(data)
	if err != nil {
		return nil, err
	}
	// strip the trailing NUL utf8codec.Decode appends (spec §4.1).
	return newString(h, decoded[:len(decoded)-1]), nil
}

// CodePoints returns the string's code points; callers must not mutate
// the returned slice.
func (s *StringValue) CodePoints() []rune { return s.codePoints }

// Len returns the number of code points.
func (s *StringValue) Len() int { return len(s.codePoints) }

// UTF8 returns the UTF-8 byte encoding, building and caching it on
// first use.
func (s *StringValue) UTF8() []byte {
	if !s.haveUTF8 {
		encoded, err := utf8codec.Encode(s.codePoints)
		if err != nil {
			// code points already passed through Decode or were
			// constructed internally from valid data; this would be
			// a runtime invariant violation, not a user-facing error.
			panic(fmt.Sprintf("string holds code points that cannot be re-encoded: %v", err))
		}
		s.utf8Cache = encoded[:len(encoded)-1]
		s.haveUTF8 = true
	}
	return s.utf8Cache
}

// Join concatenates many strings in one allocation (spec §4.4, the
// STRJOIN op).
func Join(h *Heap, parts []*StringValue) *StringValue {
	total := 0
	for _, p := range parts {
		total += len(p.codePoints)
	}
	joined := make([]rune, 0, total)
	for _, p := range parts {
		joined = append(joined, p.codePoints...)
	}
	return newString(h, joined)
}

// Format implements asda's printf-like formatter (spec §4.4), a fixed
// directive set: %s (NUL-terminated UTF-8 C string, here a plain Go
// string), %S (string object), %d (signed decimal), %zu (unsigned
// decimal), %U (code point as "U+XXXX 'c'"), %B (byte as
// "0xXX 'c'"), %%. Any other directive is a programmer error and
// panics, matching spec's "Any other directive is a programmer error".
func Format(h *Heap, format string, args ...any) *StringValue {
	var out strings.Builder
	argi := 0
	nextArg := func() any {
		if argi >= len(args) {
			panic("asda string formatter: too few arguments for format string")
		}
		v := args[argi]
		argi++
		return v
	}

	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '%' {
			out.WriteRune(c)
			continue
		}
		i++
		if i >= len(runes) {
			panic("asda string formatter: trailing %")
		}
		switch runes[i] {
		case 's':
			out.WriteString(nextArg().(string))
		case 'S':
			out.Write(nextArg().(*StringValue).UTF8())
		case 'd':
			out.WriteString(strconv.FormatInt(nextArg().(int64), 10))
		case 'z':
			i++
			if i >= len(runes) || runes[i] != 'u' {
				panic("asda string formatter: unknown directive %z" + string(runes[i]))
			}
			out.WriteString(strconv.FormatUint(nextArg().(uint64), 10))
		case 'U':
			cp := nextArg().(rune)
			out.WriteString(formatCodePoint(cp))
		case 'B':
			b := nextArg().(byte)
			out.WriteString(formatByte(b))
		case '%':
			out.WriteByte('%')
		default:
			panic("asda string formatter: unknown directive %" + string(runes[i]))
		}
	}
	decoded := []rune(out.String())
	return newString(h, decoded)
}

func formatCodePoint(cp rune) string {
	base := fmt.Sprintf("U+%04X", cp)
	if cp >= 0x21 && cp < 0x7F {
		base += fmt.Sprintf(" '%c'", cp)
	}
	return base
}

func formatByte(b byte) string {
	base := fmt.Sprintf("0x%02x", b)
	if b >= 0x21 && b < 0x7F {
		base += fmt.Sprintf(" '%c'", b)
	}
	return base
}
