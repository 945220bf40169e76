// Package scope implements asda's lexical Scope object (spec §4.5):
// a fixed-size array of local-variable slots plus a level-indexed
// parent chain, used both as the runtime record a function call
// populates with its arguments and as the closure-capture mechanism a
// function literal records as its definition environment.
package scope

import "github.com/asda-lang/asdar/object"

// Scope holds a module's or function call's local variables, plus
// O(1) access to every enclosing lexical scope by level (spec §4.5:
// "get-for-level(L) ... this is the closure capture mechanism").
//
// Unlike the object package's Value types, Scope is not refcounted
// through object.Object and is never pushed onto the operand stack --
// it is runtime bookkeeping a Function captures by pointer, not an
// asda-visible value -- so it gets its own minimal Retain/Release
// pair instead.
//
// Only the immediate parent is actually retained; Scope.parents is a
// flattened *lookup* cache built by copying the parent's own cache and
// appending the parent itself. Every entry in that cache is kept
// alive transitively by the single retain on the immediate parent (the
// parent, in turn, retains *its* parent, and so on), so Release must
// only ever release the direct parent -- releasing every cached entry
// independently would double-release references the parent chain
// already owns.
type Scope struct {
	locals   []object.Value
	parent   *Scope
	parents  []*Scope
	depth    int
	refcount uint64
}

// New creates a scope with numLocals local slots (all initially
// unset), as a child of parent. parent may be nil for the level-0
// builtin scope.
func New(parent *Scope, numLocals int) *Scope {
	s := &Scope{
		locals:   make([]object.Value, numLocals),
		refcount: 1,
	}
	if parent != nil {
		parent.Retain()
		s.parent = parent
		s.depth = parent.depth + 1
		s.parents = make([]*Scope, s.depth)
		copy(s.parents, parent.parents)
		s.parents[parent.depth] = parent
	}
	return s
}

// Depth returns the scope's lexical level (0 for the builtin scope).
func (s *Scope) Depth() int { return s.depth }

// GetForLevel returns the scope at lexical level L: the receiver
// itself if L equals its own depth, otherwise the cached ancestor.
func (s *Scope) GetForLevel(level int) *Scope {
	if level == s.depth {
		return s
	}
	return s.parents[level]
}

// NumLocals returns the number of local slots.
func (s *Scope) NumLocals() int { return len(s.locals) }

// SetLocal stores v in slot i (SETLOCAL, spec §4.9), taking a new
// reference and releasing whatever the slot previously held.
func (s *Scope) SetLocal(i int, v object.Value) {
	object.IncRef(v)
	old := s.locals[i]
	s.locals[i] = v
	object.DecRef(old)
}

// GetLocal returns a new reference to slot i's value, or nil if the
// slot has never been set. A nil return is not an error by itself --
// GETLOCAL's caller (interp) is responsible for turning an unset read
// into asda's catchable variable-error (spec §7).
func (s *Scope) GetLocal(i int) object.Value {
	v := s.locals[i]
	object.IncRef(v)
	return v
}

// IsLocalSet reports whether slot i currently holds a value.
func (s *Scope) IsLocalSet(i int) bool { return s.locals[i] != nil }

// Retain increments the scope's reference count, for every additional
// owner (typically a closure recording this as its definition scope).
func (s *Scope) Retain() { s.refcount++ }

// Release decrements the scope's reference count, releasing its local
// slots and its parent on the terminal release.
func (s *Scope) Release() {
	if s.refcount == 0 {
		panic("scope released with refcount already zero")
	}
	s.refcount--
	if s.refcount == 0 {
		for _, v := range s.locals {
			object.DecRef(v)
		}
		s.locals = nil
		if s.parent != nil {
			s.parent.Release()
		}
	}
}
