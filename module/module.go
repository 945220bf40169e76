// Package module implements asda's module registry (spec §4.7): a
// binary tree keyed by normalized bytecode path, enforcing
// import-once and providing the two-pass teardown order that safely
// breaks the class<->method<->instance reference cycle.
package module

import (
	"fmt"
	"strings"

	"github.com/dchest/siphash"
	"go.uber.org/multierr"
	"golang.org/x/exp/slices"

	"github.com/asda-lang/asdar/object"
	"github.com/asda-lang/asdar/scope"
)

// pathHashKey is a fixed process-lifetime siphash key. Its only job is
// to spread module paths across the binary tree's comparisons; it
// never crosses a process boundary, so it doesn't need to be secret or
// stable across restarts.
var pathHashKey0, pathHashKey1 uint64 = 0x6173_6461_5f68_6173, 0x6d6f_6475_6c65_6b65

func pathHash(path string) uint64 {
	return siphash.Hash(pathHashKey0, pathHashKey1, []byte(path))
}

// Module is one imported bytecode file's runtime record (spec §3
// "Module").
type Module struct {
	Path    string
	Scope   *scope.Scope
	Types   []*object.Type
	Exports []object.Value // index-addressed exported slots, owned

	hash        uint64
	left, right *Module
}

// Registry is the module import-once tree.
type Registry struct {
	root *Module
}

// New creates an empty registry.
func New() *Registry { return &Registry{} }

// Get returns the module registered under path, or nil if none is
// (a lookup miss is not an error -- spec §4.7). Paths are compared by
// precomputed siphash first -- a single uint64 compare that rejects
// the overwhelming majority of mismatches before ever touching the
// path string -- falling back to the string itself only to break a
// hash collision.
func (r *Registry) Get(path string) *Module {
	hash := pathHash(path)
	n := r.root
	for n != nil {
		switch {
		case hash == n.hash && path == n.Path:
			return n
		case hash < n.hash || (hash == n.hash && path < n.Path):
			n = n.left
		default:
			n = n.right
		}
	}
	return nil
}

// Add inserts m, panicking if path is already registered -- spec
// §4.7's "asserting uniqueness".
func (r *Registry) Add(m *Module) {
	m.hash = pathHash(m.Path)
	if r.root == nil {
		r.root = m
		return
	}
	n := r.root
	for {
		switch {
		case m.hash == n.hash && m.Path == n.Path:
			panic("module already registered: " + m.Path)
		case m.hash < n.hash || (m.hash == n.hash && m.Path < n.Path):
			if n.left == nil {
				n.left = m
				return
			}
			n = n.left
		default:
			if n.right == nil {
				n.right = m
				return
			}
			n = n.right
		}
	}
}

// all returns every module in the tree, sorted by path. Pass A's
// per-module teardown is self-contained either way, but a stable,
// path-ordered walk (rather than the tree's hash order, which
// reshuffles with every new pathHashKey) keeps Teardown's aggregated
// error messages and any -debug teardown trace reproducible across
// runs. It's gathered once up front since pass A mutates the tree's
// leaves' Types slices in ways that would otherwise complicate an
// in-place recursive walk.
func (r *Registry) all() []*Module {
	var out []*Module
	var walk func(*Module)
	walk = func(n *Module) {
		if n == nil {
			return
		}
		walk(n.left)
		out = append(out, n)
		walk(n.right)
	}
	walk(r.root)
	slices.SortFunc(out, func(a, b *Module) int { return strings.Compare(a.Path, b.Path) })
	return out
}

// Teardown destroys every registered module in the two passes spec
// §4.7 requires:
//
//  1. over every module: release the module scope (which decrefs any
//     constant objects function closures captured from it), decref
//     every exported object, and null out each asda-class type's
//     method slots (decrefing the displaced methods) -- this breaks
//     the class<->method<->instance reference cycle while every
//     type descriptor involved is still alive to be nulled safely.
//  2. over every module: the type descriptors themselves are dropped
//     (Go's GC reclaims them once nothing references them -- there is
//     no separate "destroy a Type" step the way there is for a
//     refcounted Value, since Type carries no destructor of its own).
//
// A panic raised while tearing down one module (a refcount invariant
// violation, spec §3's "decref of an object with refcount already
// zero") does not stop the rest of the modules from tearing down --
// the loop recovers each module's panic independently and the
// returned error aggregates every one it saw, so a single corrupted
// module can't mask a second one by crashing the process before it
// gets a turn.
func (r *Registry) Teardown() error {
	mods := r.all()
	var errs error

	// Pass A.
	for _, m := range mods {
		if err := teardownPassA(m); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("module %s: %w", m.Path, err))
		}
	}

	// Pass B: drop type descriptors now that nothing method-shaped
	// still references them.
	for _, m := range mods {
		m.Types = nil
	}

	r.root = nil
	return errs
}

func teardownPassA(m *Module) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during teardown: %v", r)
		}
	}()

	for _, v := range m.Exports {
		object.DecRef(v)
	}
	m.Exports = nil
	for _, t := range m.Types {
		if t.Kind != object.KindClass {
			continue
		}
		displaced := t.NullMethods()
		for _, meth := range displaced {
			object.DecRef(meth)
		}
	}
	if m.Scope != nil {
		m.Scope.Release()
		m.Scope = nil
	}
	return nil
}
