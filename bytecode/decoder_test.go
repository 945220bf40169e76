package bytecode

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildMinimal assembles a minimal valid bytecode stream: header, empty
// path, empty type list, empty import list, and one function body whose
// ops are given verbatim (caller supplies full op bytes including any
// SET_LINENO meta-ops).
func buildMinimal(t *testing.T, opBytes []byte, numOps int) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(Magic[:])
	writeLenString(&buf, "")   // source path
	buf.WriteByte(sectionTypeList)
	writeUint16(&buf, 0) // 0 types
	buf.WriteByte(sectionImport)
	writeUint16(&buf, 0) // 0 imports
	writeUint16(&buf, 1) // 1 function
	writeUint16(&buf, uint16(numOps))
	buf.Write(opBytes)
	return buf.Bytes()
}

func writeUint16(buf *bytes.Buffer, n uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], n)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, n uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], n)
	buf.Write(b[:])
}

func writeLenString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func TestDecodeMinimalModule(t *testing.T) {
	var ops bytes.Buffer
	ops.WriteByte(TagEndOfBody)
	data := buildMinimal(t, ops.Bytes(), 1)

	mod, err := Decode(bytes.NewReader(data), "test.asda-bc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mod.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(mod.Funcs))
	}
	if len(mod.Funcs[0].Ops) != 1 || mod.Funcs[0].Ops[0].Tag != TagEndOfBody {
		t.Fatalf("expected single end-of-body op, got %+v", mod.Funcs[0].Ops)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data := buildMinimal(t, []byte{TagEndOfBody}, 1)
	data[0] ^= 0xFF
	if _, err := Decode(bytes.NewReader(data), "test.asda-bc"); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestJumpTargetOutOfRangeRejected(t *testing.T) {
	var ops bytes.Buffer
	ops.WriteByte(TagJump)
	writeUint16(&ops, 99) // well out of range
	ops.WriteByte(TagEndOfBody)
	data := buildMinimal(t, ops.Bytes(), 2)

	if _, err := Decode(bytes.NewReader(data), "test.asda-bc"); err == nil {
		t.Fatal("expected error for out-of-range jump target")
	}
}

func TestJumpTargetInRangeAccepted(t *testing.T) {
	var ops bytes.Buffer
	ops.WriteByte(TagJump)
	writeUint16(&ops, 1) // targets the end-of-body op
	ops.WriteByte(TagEndOfBody)
	data := buildMinimal(t, ops.Bytes(), 2)

	mod, err := Decode(bytes.NewReader(data), "test.asda-bc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mod.Funcs[0].Ops[0].Int != 1 {
		t.Fatalf("expected jump target 1, got %d", mod.Funcs[0].Ops[0].Int)
	}
}

func TestTwoConsecutiveSetLinenoRejected(t *testing.T) {
	var ops bytes.Buffer
	ops.WriteByte(TagSetLineNo)
	writeUint32(&ops, 1)
	ops.WriteByte(TagSetLineNo)
	writeUint32(&ops, 2)
	ops.WriteByte(TagEndOfBody)
	data := buildMinimal(t, ops.Bytes(), 1)

	if _, err := Decode(bytes.NewReader(data), "test.asda-bc"); err == nil {
		t.Fatal("expected error for two consecutive SET_LINENO ops")
	}
}

func TestStringConstantDecoded(t *testing.T) {
	var ops bytes.Buffer
	ops.WriteByte(TagStringConstant)
	writeLenString(&ops, "hello")
	ops.WriteByte(TagEndOfBody)
	data := buildMinimal(t, ops.Bytes(), 2)

	mod, err := Decode(bytes.NewReader(data), "test.asda-bc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mod.Funcs[0].Ops[0].Str != "hello" {
		t.Fatalf("expected %q, got %q", "hello", mod.Funcs[0].Ops[0].Str)
	}
}
