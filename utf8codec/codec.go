package utf8codec

import (
	"github.com/asda-lang/asdar/asdaerr"
)

const (
	maxCodePoint   = 0x10FFFF
	surrogateStart = 0xD800
	surrogateEnd   = 0xDFFF
)

// Encode converts a sequence of Unicode scalar code points to UTF-8
// bytes, rejecting any code point in [0xD800, 0xDFFF] or > 0x10FFFF.
//
// The returned slice carries one trailing NUL byte for convenience
// (spec §4.1); it is not counted in the content length. Callers that
// only want the encoded bytes should slice off the last byte:
// `buf, err := Encode(cps); content := buf[:len(buf)-1]`.
func Encode(codePoints []rune) ([]byte, error) {
	buf := make([]byte, 0, len(codePoints)*2+1)
	for _, cp := range codePoints {
		if cp < 0 || cp > maxCodePoint {
			return nil, asdaerr.Value(asdaerr.PhaseRun, "code point %#x out of range", cp)
		}
		if cp >= surrogateStart && cp <= surrogateEnd {
			return nil, asdaerr.Value(asdaerr.PhaseRun, "code point %#x is a surrogate", cp)
		}
		buf = appendUTF8(buf, uint32(cp))
	}
	return append(buf, 0), nil
}

func appendUTF8(buf []byte, cp uint32) []byte {
	switch {
	case cp < 0x80:
		return append(buf, byte(cp))
	case cp < 0x800:
		return append(buf,
			byte(0xC0|(cp>>6)),
			byte(0x80|(cp&0x3F)),
		)
	case cp < 0x10000:
		return append(buf,
			byte(0xE0|(cp>>12)),
			byte(0x80|((cp>>6)&0x3F)),
			byte(0x80|(cp&0x3F)),
		)
	default:
		return append(buf,
			byte(0xF0|(cp>>18)),
			byte(0x80|((cp>>12)&0x3F)),
			byte(0x80|((cp>>6)&0x3F)),
			byte(0x80|(cp&0x3F)),
		)
	}
}

// sequenceInfo describes the shape implied by a leading UTF-8 byte.
type sequenceInfo struct {
	size   int
	minVal uint32
	first  uint32 // bits contributed by the leading byte
}

func classifyLead(b byte) (sequenceInfo, bool) {
	switch {
	case b&0x80 == 0x00:
		return sequenceInfo{size: 1, minVal: 0, first: uint32(b)}, true
	case b&0xE0 == 0xC0:
		return sequenceInfo{size: 2, minVal: 0x80, first: uint32(b & 0x1F)}, true
	case b&0xF0 == 0xE0:
		return sequenceInfo{size: 3, minVal: 0x800, first: uint32(b & 0x0F)}, true
	case b&0xF8 == 0xF0:
		return sequenceInfo{size: 4, minVal: 0x10000, first: uint32(b & 0x07)}, true
	default:
		return sequenceInfo{}, false
	}
}

// Decode converts UTF-8 bytes to a sequence of Unicode scalar code
// points, rejecting overlong encodings, lone continuation bytes,
// truncated sequences, and invalid start bytes.
//
// The returned slice carries one trailing NUL rune for convenience
// (spec §4.1), not counted in the content length.
func Decode(data []byte) ([]rune, error) {
	out := make([]rune, 0, len(data)+1)
	i := 0
	for i < len(data) {
		lead := data[i]
		info, ok := classifyLead(lead)
		if !ok {
			return nil, asdaerr.Value(asdaerr.PhaseRun, "invalid UTF-8 start byte %#02x at offset %d", lead, i)
		}
		if i+info.size > len(data) {
			return nil, asdaerr.Value(asdaerr.PhaseRun, "truncated UTF-8 sequence at offset %d", i)
		}

		value := info.first
		for k := 1; k < info.size; k++ {
			cont := data[i+k]
			if cont&0xC0 != 0x80 {
				return nil, asdaerr.Value(asdaerr.PhaseRun, "invalid UTF-8 continuation byte %#02x at offset %d", cont, i+k)
			}
			value = (value << 6) | uint32(cont&0x3F)
		}

		if value < info.minVal {
			return nil, asdaerr.Value(asdaerr.PhaseRun, "overlong UTF-8 encoding at offset %d", i)
		}
		if value > maxCodePoint {
			return nil, asdaerr.Value(asdaerr.PhaseRun, "code point %#x out of range at offset %d", value, i)
		}
		if value >= surrogateStart && value <= surrogateEnd {
			return nil, asdaerr.Value(asdaerr.PhaseRun, "surrogate code point %#x at offset %d", value, i)
		}

		out = append(out, rune(value))
		i += info.size
	}
	return append(out, 0), nil
}
