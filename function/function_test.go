package function

import (
	"testing"

	"github.com/asda-lang/asdar/object"
)

func TestNativeCallForwardsArgs(t *testing.T) {
	h := object.NewHeap()
	f := NewNative(h, func(args []object.Value) (object.Value, error) {
		return args[0], nil
	})
	arg := object.True()
	got, err := f.Call([]object.Value{arg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != object.Value(arg) {
		t.Fatal("expected native call to forward its argument")
	}
	object.DecRef(f)
}

func TestEmptyPrefixPartialReturnsInnerIncremented(t *testing.T) {
	h := object.NewHeap()
	inner := NewNative(h, func(args []object.Value) (object.Value, error) { return nil, nil })
	before := inner.RefCount()
	p := NewPartial(h, inner, nil)
	if p != inner {
		t.Fatal("expected empty-prefix partial to return inner unmodified")
	}
	if inner.RefCount() != before+1 {
		t.Fatalf("expected refcount incremented, got %d want %d", inner.RefCount(), before+1)
	}
	object.DecRef(p)
	object.DecRef(inner)
}

func TestPartialConcatenatesPrefixAndArgs(t *testing.T) {
	h := object.NewHeap()
	var seen []object.Value
	inner := NewNative(h, func(args []object.Value) (object.Value, error) {
		seen = args
		return nil, nil
	})
	a := object.True()
	b := object.False()
	p := NewPartial(h, inner, []object.Value{a})
	_, err := p.Call([]object.Value{b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 2 || seen[0] != object.Value(a) || seen[1] != object.Value(b) {
		t.Fatalf("expected [a, b], got %v", seen)
	}
	object.DecRef(p)
}

func TestPartialDestroyReleasesCapturedRefs(t *testing.T) {
	h := object.NewHeap()
	inner := NewNative(h, func(args []object.Value) (object.Value, error) { return nil, nil })
	str := object.NewStringOwned(h, []rune("captured"))
	p := NewPartial(h, inner, []object.Value{str})
	if str.RefCount() != 2 {
		t.Fatalf("expected partial to take a reference, got %d", str.RefCount())
	}
	object.DecRef(p)
	if str.RefCount() != 1 {
		t.Fatalf("expected partial destruction to release captured ref, got %d", str.RefCount())
	}
	object.DecRef(str)
	object.DecRef(inner)
	if h.Len() != 0 {
		t.Fatalf("expected heap empty, got %d", h.Len())
	}
}
