package object

import "testing"

func TestIncDecRefBalancesHeapSize(t *testing.T) {
	h := NewHeap()
	s := NewStringOwned(h, []rune("hi"))
	if h.Len() != 1 {
		t.Fatalf("expected 1 live object, got %d", h.Len())
	}
	IncRef(s)
	if s.RefCount() != 2 {
		t.Fatalf("expected refcount 2, got %d", s.RefCount())
	}
	DecRef(s)
	if h.Len() != 1 {
		t.Fatalf("object destroyed too early, heap len %d", h.Len())
	}
	DecRef(s)
	if h.Len() != 0 {
		t.Fatalf("expected heap empty after terminal decref, got %d", h.Len())
	}
}

func TestDecRefOfStaticObjectIsNoOp(t *testing.T) {
	b := True()
	before := b.RefCount()
	DecRef(b)
	DecRef(b)
	if b.RefCount() != before {
		t.Fatalf("static object refcount changed: before %d after %d", before, b.RefCount())
	}
}

func TestOverDecrefPanics(t *testing.T) {
	h := NewHeap()
	s := NewStringOwned(h, []rune("x"))
	DecRef(s)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on over-decref")
		}
	}()
	DecRef(s)
}

func TestArrayDestroyReleasesElementRefs(t *testing.T) {
	h := NewHeap()
	arr := NewArray(h)
	elem := NewStringOwned(h, []rune("elem"))
	arr.Push(elem)
	if elem.RefCount() != 2 {
		t.Fatalf("expected push to take a reference, refcount %d", elem.RefCount())
	}
	// drop the caller's own reference to elem, then destroy the array;
	// the array's ReleaseRefs phase must drop its reference too.
	DecRef(elem)
	DecRef(arr)
	if h.Len() != 0 {
		t.Fatalf("expected both array and element destroyed, heap len %d", h.Len())
	}
}

func TestForceDestroyAllRunsRefsPhaseBeforeAnyResourcesPhase(t *testing.T) {
	h := NewHeap()
	outer := NewArray(h)
	inner := NewArray(h)
	outer.Push(inner)
	// inner now has refcount 2: one from Push, one implicit from the
	// local variable in this test (never separately incremented --
	// the constructor's return already counts as the test's
	// reference). Force-destroy must not panic despite the live
	// cross-reference from outer to inner.
	h.ForceDestroyAll()
	if h.Len() != 0 {
		t.Fatalf("expected heap empty after forced sweep, got %d", h.Len())
	}
}

func TestBoxSetReplacesAndReleasesPrevious(t *testing.T) {
	h := NewHeap()
	box := NewBox(h)
	first := NewStringOwned(h, []rune("first"))
	box.Set(first)
	if first.RefCount() != 2 {
		t.Fatalf("expected box.Set to take a reference, got %d", first.RefCount())
	}
	second := NewStringOwned(h, []rune("second"))
	box.Set(second)
	if first.RefCount() != 1 {
		t.Fatalf("expected box.Set to release the previous value, got %d", first.RefCount())
	}
	DecRef(first)
	DecRef(second)
	DecRef(box)
	if h.Len() != 0 {
		t.Fatalf("expected heap empty, got %d", h.Len())
	}
}

func TestIntSmallValuesAreStaticAndCached(t *testing.T) {
	h := NewHeap()
	a := NewIntFromInt64(h, 5)
	b := NewIntFromInt64(h, 5)
	if a != b {
		t.Fatal("expected small int cache to return the identical instance")
	}
	if !a.IsStatic() {
		t.Fatal("expected small int to be static")
	}
	DecRef(a) // must be a no-op, not a panic
	if a.RefCount() == 0 {
		t.Fatal("static int refcount must never reach zero via DecRef")
	}
}

func TestIntBeyondCacheStillNoOpsOnDecref(t *testing.T) {
	h := NewHeap()
	a := NewIntFromInt64(h, 100000)
	if !a.IsStatic() {
		t.Fatal("expected small-but-uncached int to still be static")
	}
	DecRef(a)
	DecRef(a)
}

func TestErrorHierarchyAssignability(t *testing.T) {
	h := NewHeap()
	msg := NewStringOwned(h, []rune("boom"))
	e := NewError(h, ValueErrType, msg)
	if !e.Type().IsAssignableTo(ErrorBaseType) {
		t.Fatal("expected value-error to be assignable to the base error type")
	}
	if e.Type().IsAssignableTo(VariableErrType) {
		t.Fatal("value-error must not be assignable to variable-error")
	}
	DecRef(msg)
	DecRef(e)
}

func TestStaticNoMemErrorNeverAllocates(t *testing.T) {
	e := StaticNoMemError()
	if !e.IsStatic() {
		t.Fatal("nomem-error instance must be static")
	}
	if !e.Message().IsStatic() {
		t.Fatal("nomem-error message must be static")
	}
	DecRef(e)
	DecRef(e)
}
