package utf8codec

import (
	"testing"
	"unicode/utf8"
)

func stripNUL(b []byte) []byte { return b[:len(b)-1] }
func stripNULRunes(r []rune) []rune { return r[:len(r)-1] }

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := [][]rune{
		{},
		{'a', 'b', 'c'},
		{0x20AC},    // euro sign, 3-byte
		{0x10437},   // deseret, 4-byte
		{0, 0x7F, 0x80, 0x7FF, 0x800, 0xFFFF},
	}
	for _, cps := range cases {
		encoded, err := Encode(cps)
		if err != nil {
			t.Fatalf("Encode(%v): %v", cps, err)
		}
		decoded, err := Decode(stripNUL(encoded))
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		decoded = stripNULRunes(decoded)
		if len(decoded) != len(cps) {
			t.Fatalf("round-trip length mismatch: got %v want %v", decoded, cps)
		}
		for i := range cps {
			if decoded[i] != cps[i] {
				t.Fatalf("round-trip mismatch at %d: got %v want %v", i, decoded, cps)
			}
		}
	}
}

func TestEncodeRejectsSurrogate(t *testing.T) {
	if _, err := Encode([]rune{0xD800}); err == nil {
		t.Fatal("expected error encoding a surrogate code point")
	}
}

func TestEncodeRejectsTooLarge(t *testing.T) {
	if _, err := Encode([]rune{0x110000}); err == nil {
		t.Fatal("expected error encoding a code point beyond U+10FFFF")
	}
}

func TestDecodeRejectsOverlong(t *testing.T) {
	// 0xC0 0x80 is an overlong encoding of NUL.
	if _, err := Decode([]byte{0xC0, 0x80}); err == nil {
		t.Fatal("expected error decoding an overlong sequence")
	}
}

func TestDecodeRejectsLoneContinuation(t *testing.T) {
	if _, err := Decode([]byte{0x80}); err == nil {
		t.Fatal("expected error decoding a lone continuation byte")
	}
}

func TestDecodeRejectsTruncated(t *testing.T) {
	if _, err := Decode([]byte{0xE2, 0x82}); err == nil {
		t.Fatal("expected error decoding a truncated sequence")
	}
}

func TestDecodeRejectsInvalidStartByte(t *testing.T) {
	if _, err := Decode([]byte{0xFF}); err == nil {
		t.Fatal("expected error decoding an invalid start byte")
	}
}

// TestAgreesWithStdlibOnValidInput cross-checks against unicode/utf8 for
// a large swath of valid scalar values, without depending on it for the
// actual implementation.
func TestAgreesWithStdlibOnValidInput(t *testing.T) {
	var cps []rune
	for cp := rune(0); cp < 0x2000; cp++ {
		if cp >= surrogateStart && cp <= surrogateEnd {
			continue
		}
		cps = append(cps, cp)
	}

	encoded, err := Encode(cps)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	content := stripNUL(encoded)

	want := make([]byte, 0, len(content))
	for _, cp := range cps {
		want = utf8.AppendRune(want, cp)
	}
	if string(content) != string(want) {
		t.Fatalf("encoding disagrees with unicode/utf8")
	}
}
