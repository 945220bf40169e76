package scope

import (
	"testing"

	"github.com/asda-lang/asdar/object"
)

func TestGetForLevelReturnsAncestorsByLevel(t *testing.T) {
	root := New(nil, 1)
	mid := New(root, 1)
	leaf := New(mid, 1)

	if leaf.GetForLevel(leaf.Depth()) != leaf {
		t.Fatal("expected own level to return self")
	}
	if leaf.GetForLevel(mid.Depth()) != mid {
		t.Fatal("expected mid level to return mid")
	}
	if leaf.GetForLevel(root.Depth()) != root {
		t.Fatal("expected level 0 to return root")
	}
}

func TestSetLocalThenGetLocalRoundTrips(t *testing.T) {
	h := object.NewHeap()
	s := New(nil, 2)
	v := object.True()
	s.SetLocal(0, v)
	got := s.GetLocal(0)
	if got != object.Value(v) {
		t.Fatal("expected GetLocal to return the value just set")
	}
	object.DecRef(got)
	if s.IsLocalSet(1) {
		t.Fatal("expected slot 1 to be unset")
	}
	_ = h
}

func TestReleaseReleasesParentAndLocals(t *testing.T) {
	h := object.NewHeap()
	root := New(nil, 0)
	child := New(root, 1)
	str := object.NewStringOwned(h, []rune("x"))
	child.SetLocal(0, str)

	child.Release()
	// str's only remaining reference was the test's own (str started
	// at refcount 1 from construction; SetLocal incremented it to 2;
	// Release's local-slot teardown must have brought it back to 1).
	if str.RefCount() != 1 {
		t.Fatalf("expected refcount 1 after scope release, got %d", str.RefCount())
	}
	object.DecRef(str)
	if h.Len() != 0 {
		t.Fatalf("expected heap empty, got %d", h.Len())
	}
}
