package driver

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/asda-lang/asdar/asdaerr"
	"github.com/asda-lang/asdar/interp"
)

// The wire-format tags below mirror bytecode/opcode.go's unexported
// section/type-tag bytes; this package can't reach those constants
// from outside, so the handful this test needs are hardcoded as the
// literal bytes the decoder checks against.
const (
	wireSectionTypeList = 'y'
	wireSectionImport   = 'i'
	wireTagReturn       = 'r'
	wireTagGetLocal     = 'v'
)

func putUint32(b []byte, n uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], n)
	return append(b, buf[:]...)
}

func putUint16(b []byte, n uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], n)
	return append(b, buf[:]...)
}

func putLenString(b []byte, s string) []byte {
	b = putUint32(b, uint32(len(s)))
	return append(b, s...)
}

// encodeModule hand-assembles a minimal valid bytecode file: an empty
// type list, the given import paths, and a single-function body
// consisting of ops (no SET_LINE_NO directives). numOps is the number
// of opcodes in ops, which the wire format records as the body length.
func encodeModule(srcPath string, imports []string, ops []byte, numOps int) []byte {
	var b []byte
	b = append(b, 0x61, 0x73, 0x64, 0x61, 0xA5, 0xDA) // magic, spec §4.8
	b = putLenString(b, srcPath)

	b = append(b, wireSectionTypeList)
	b = putUint16(b, 0)

	b = append(b, wireSectionImport)
	b = putUint16(b, uint16(len(imports)))
	for _, imp := range imports {
		b = putLenString(b, imp)
	}

	b = putUint16(b, 1) // one function: main
	b = putUint16(b, uint16(numOps))
	b = append(b, ops...)
	return b
}

// writeModuleFile encodes and writes a module to dir/name, returning
// its absolute path.
func writeModuleFile(t *testing.T, dir, name string, imports []string, ops []byte, numOps int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data := encodeModule(name, imports, ops, numOps)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// returnOnly is a function body that does nothing but void-return --
// the simplest legal module entry point.
var returnOnly = []byte{wireTagReturn}

// recordingTracer records the source path of every opcode dispatched,
// in execution order, so an import's module body can be shown to have
// run (and finished) before the importing module's own body starts.
type recordingTracer struct {
	sources []string
}

func (r *recordingTracer) Trace(ev interp.TraceEvent) {
	r.sources = append(r.sources, ev.Source)
}

func TestRunSingleModuleWithNoImports(t *testing.T) {
	dir := t.TempDir()
	path := writeModuleFile(t, dir, "main.asdac", nil, returnOnly, 1)

	if err := Run(path, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunResolvesImportsBeforeImportingModule(t *testing.T) {
	dir := t.TempDir()
	writeModuleFile(t, dir, "dep.asdac", nil, returnOnly, 1)
	mainPath := writeModuleFile(t, dir, "main.asdac", []string{"dep.asdac"}, returnOnly, 1)

	tracer := &recordingTracer{}
	if err := Run(mainPath, Options{Tracer: tracer}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tracer.sources) != 2 {
		t.Fatalf("expected 2 traced ops (one per module body), got %d: %v", len(tracer.sources), tracer.sources)
	}
	if tracer.sources[0] != "dep.asdac" {
		t.Fatalf("expected the import's body to run first, got order %v", tracer.sources)
	}
	if tracer.sources[1] != "main.asdac" {
		t.Fatalf("expected the importing module's body to run last, got order %v", tracer.sources)
	}
}

func TestRunRejectsImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeModuleFile(t, dir, "a.asdac", []string{"b.asdac"}, returnOnly, 1)
	bPath := writeModuleFile(t, dir, "b.asdac", []string{"a.asdac"}, returnOnly, 1)

	err := Run(bPath, Options{})
	if err == nil {
		t.Fatalf("expected an import-cycle error, got nil")
	}

	var asdaErr *asdaerr.Error
	if !errors.As(err, &asdaErr) {
		t.Fatalf("expected an *asdaerr.Error, got %T: %v", err, err)
	}
	if asdaErr.Phase != asdaerr.PhaseImport || asdaErr.Kind != asdaerr.KindValue {
		t.Fatalf("expected phase=import kind=value, got phase=%s kind=%s", asdaErr.Phase, asdaErr.Kind)
	}
}

// TestRunTearsDownEvenOnRuntimeError exercises the always-teardown
// guarantee (spec §4.10): a module whose top-level body throws an
// uncaught error still runs Modules.Teardown()/Heap.ForceDestroyAll()
// before Run returns -- observable here as Run completing cleanly
// (no panic, a single well-formed error) rather than hanging or
// propagating a teardown-masking artifact.
func TestRunTearsDownEvenOnRuntimeError(t *testing.T) {
	dir := t.TempDir()
	// GETLOCAL on a never-set local 0 throws a catchable variable-error
	// (interp.go's TagGetLocal handler) that nothing in this body
	// catches, so it propagates all the way out of Run.
	ops := []byte{}
	ops = append(ops, wireTagGetLocal)
	ops = putUint16(ops, 0)
	ops = append(ops, wireTagReturn)
	path := writeModuleFile(t, dir, "throws.asdac", nil, ops, 2)

	err := Run(path, Options{})
	if err == nil {
		t.Fatalf("expected the uncaught throw to propagate as an error")
	}
}
