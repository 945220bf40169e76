// Package driver wires together decoding, module-import resolution,
// and execution into the single entry point cmd/asdar calls (spec
// §4.10): load the named bytecode file, recursively load and run its
// declared imports first, run the file itself, then tear everything
// down.
package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/asda-lang/asdar/asdaerr"
	"github.com/asda-lang/asdar/bytecode"
	"github.com/asda-lang/asdar/internal/obslog"
	"github.com/asda-lang/asdar/interp"
	"github.com/asda-lang/asdar/module"
)

// Options configures a single run.
type Options struct {
	Debug  bool          // trace every opcode via internal/obslog
	Tracer interp.Tracer // step-debugger hook (cmd/asdar -i); nil runs untraced
}

// Run loads and executes the bytecode file at path, then tears down
// every module and heap object it created.
func Run(path string, opts Options) error {
	obslog.SetDebug(opts.Debug)

	sessionID := uuid.New()
	log := obslog.Logger().Sugar()
	log.Infow("starting asda run", "session", sessionID.String(), "entry", path)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return asdaerr.New(asdaerr.PhaseImport, asdaerr.KindValue).
			Detail("resolving entry path: %v", err).Build()
	}

	in := interp.New(filepath.Dir(absPath))
	in.Tracer = opts.Tracer
	loader := &moduleLoader{interp: in, visiting: map[string]bool{}, loaded: map[string]*module.Module{}}

	_, runErr := loader.load(absPath)

	teardownErr := in.Modules.Teardown()
	in.Heap.ForceDestroyAll()

	if runErr != nil {
		log.Errorw("run failed", "session", sessionID.String(), "error", runErr)
		return runErr
	}
	if teardownErr != nil {
		log.Errorw("teardown reported errors", "session", sessionID.String(), "error", teardownErr)
		return asdaerr.New(asdaerr.PhaseShutdown, asdaerr.KindValue).
			Cause(teardownErr).
			Detail("module teardown").
			Build()
	}
	log.Infow("run finished", "session", sessionID.String())
	return nil
}

// moduleLoader recursively decodes and runs a module's declared
// imports before the module itself, detecting import cycles by DFS
// (spec §9's Open Question, resolved: reject a cycle rather than
// synthesize a placeholder scope for it).
//
// loaded is keyed by the resolved absolute file path the loader itself
// used to reach a module, not by the module.Module.Path the decoded
// file happens to embed (interp.RunModule sets that from the
// bytecode's own in-band source-path field, which a compiler is free
// to leave relative, or otherwise not identical to how this loader
// resolved the import) -- the import-once guarantee (spec §4.7) must
// hold against how imports actually get *found*, so the cache key has
// to be the same string the DFS cycle check already uses.
type moduleLoader struct {
	interp   *interp.Interp
	visiting map[string]bool
	loaded   map[string]*module.Module
}

func (l *moduleLoader) load(path string) (*module.Module, error) {
	if mod := l.loaded[path]; mod != nil {
		return mod, nil
	}
	if l.visiting[path] {
		return nil, asdaerr.ImportCycle(l.cyclePath(path))
	}
	l.visiting[path] = true
	defer delete(l.visiting, path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, asdaerr.New(asdaerr.PhaseImport, asdaerr.KindValue).
			Path(path).Detail("reading bytecode file: %v", err).Build()
	}

	decoded, err := bytecode.Decode(bytes.NewReader(data), path)
	if err != nil {
		return nil, asdaerr.Decode(path+": decoding bytecode", err)
	}

	imports := make([]*module.Module, len(decoded.Imports))
	for i, imp := range decoded.Imports {
		resolved := imp
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(l.interp.BaseDir, resolved)
		}
		importedMod, err := l.load(resolved)
		if err != nil {
			return nil, err
		}
		imports[i] = importedMod
	}

	obslog.Debugf("running module %s", path)
	mod, err := l.interp.RunModule(decoded, imports)
	if err != nil {
		return nil, err
	}
	l.loaded[path] = mod
	return mod, nil
}

// cyclePath reconstructs a readable (path -> path -> ...) trail from
// the currently-visiting set, for the ImportCycle diagnostic. Map
// iteration order isn't meaningful here -- visiting records only which
// paths are mid-load, not the order -- so the trail is sorted for
// reproducible output rather than reflecting true DFS order.
func (l *moduleLoader) cyclePath(closingPath string) []string {
	paths := make([]string, 0, len(l.visiting)+1)
	for p := range l.visiting {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	paths = append(paths, closingPath)
	return paths
}
