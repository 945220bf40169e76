package module

import (
	"testing"

	"github.com/asda-lang/asdar/object"
	"github.com/asda-lang/asdar/scope"
)

func TestGetMissReturnsNil(t *testing.T) {
	r := New()
	if r.Get("nope") != nil {
		t.Fatal("expected nil on lookup miss")
	}
}

func TestAddThenGetRoundTrips(t *testing.T) {
	r := New()
	m := &Module{Path: "a.asda-bc", Scope: scope.New(nil, 1)}
	r.Add(m)
	if r.Get("a.asda-bc") != m {
		t.Fatal("expected Get to return the registered module")
	}
}

func TestAddDuplicatePanics(t *testing.T) {
	r := New()
	r.Add(&Module{Path: "a.asda-bc", Scope: scope.New(nil, 0)})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate path")
		}
	}()
	r.Add(&Module{Path: "a.asda-bc", Scope: scope.New(nil, 0)})
}

// TestImportExportVisibility is spec §8 scenario 6, at the registry
// level: a exports 42 into scope slot 0; looking a up in the registry
// and reading its scope slot 0 yields it.
func TestImportExportVisibility(t *testing.T) {
	h := object.NewHeap()
	r := New()

	aScope := scope.New(nil, 1)
	fortyTwo := object.NewIntFromInt64(h, 42)
	aScope.SetLocal(0, fortyTwo)
	object.DecRef(fortyTwo) // scope now owns the only reference

	a := &Module{Path: "a.asda-bc", Scope: aScope, Exports: []object.Value{aScope.GetLocal(0)}}
	r.Add(a)

	got := r.Get("a.asda-bc")
	if got == nil {
		t.Fatal("expected module a to be registered")
	}
	val := got.Scope.GetLocal(0).(*object.IntValue)
	if val.Decimal() != "42" {
		t.Fatalf("expected 42, got %s", val.Decimal())
	}
	object.DecRef(val)
}

func TestTeardownReleasesExportsAndScopes(t *testing.T) {
	h := object.NewHeap()
	r := New()
	s := scope.New(nil, 1)
	str := object.NewStringOwned(h, []rune("exported"))
	s.SetLocal(0, str)
	exported := s.GetLocal(0)
	r.Add(&Module{Path: "a.asda-bc", Scope: s, Exports: []object.Value{exported}})

	object.DecRef(str) // drop the constructor's own reference

	r.Teardown()
	if h.Len() != 0 {
		t.Fatalf("expected heap empty after teardown, got %d", h.Len())
	}
}

func TestTeardownNullsClassMethodSlotsBreakingCycle(t *testing.T) {
	h := object.NewHeap()
	r := New()

	classType := object.NewClassType("widget", 0, nil)
	// a method that captures an instance of its own class, forming
	// the class<->method<->instance cycle spec §4.7 exists to break.
	instanceType := classType
	instance := &fakeInstance{}
	object.InitHeap(&instance.Object, h, instance, instanceType, nil)

	method := &fakeMethod{held: instance}
	object.InitHeap(&method.Object, h, method, object.NewBasicType("method", nil, nil), destroyFakeMethod)
	object.IncRef(instance)          // method "holds" the instance
	classType.SetMethods([]object.Value{method}) // class type takes its own ref to method

	s := scope.New(nil, 0)
	r.Add(&Module{Path: "a.asda-bc", Scope: s, Types: []*object.Type{classType}})

	object.DecRef(method)   // drop the constructor's own method reference (class type still holds one)
	object.DecRef(instance) // drop the constructor's own instance reference (method still holds one)

	r.Teardown()
	if h.Len() != 0 {
		t.Fatalf("expected cycle broken and heap empty, got %d", h.Len())
	}
}

type fakeInstance struct{ object.Object }

type fakeMethod struct {
	object.Object
	held object.Value
}

func destroyFakeMethod(v object.Value, phase object.DestroyPhase) {
	m := v.(*fakeMethod)
	if phase == object.DestroyReleaseRefs {
		object.DecRef(m.held)
	} else {
		m.held = nil
	}
}
