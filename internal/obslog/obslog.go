// Package obslog is the interpreter's logging accessor. It defaults to
// a no-op logger so library callers get silence unless they opt in; see
// cmd/asdar for how the CLI installs a real zap.Logger.
package obslog

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
	mu         sync.Mutex
)

// Logger returns the process-wide logger, defaulting to a no-op one.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// SetLogger installs l as the process-wide logger. Called once from
// cmd/asdar's main before any module is imported.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// debug gates the opcode-tracing Debugf helper independently of the
// installed logger's own level, matching the teacher's cheap
// compile-time-ish toggle for a hot path.
var debug = false

// SetDebug enables or disables opcode-level tracing.
func SetDebug(enabled bool) { debug = enabled }

// Debugf logs a formatted debug line if tracing is enabled.
func Debugf(format string, args ...any) {
	if debug {
		Logger().Sugar().Debugf(format, args...)
	}
}
