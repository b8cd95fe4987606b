// Package monitoring provides the diagnostic logger shared by the planning
// packages.
package monitoring

import (
	"log"
	"sync/atomic"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// may be replaced by SetLogger so tests or embedding processes can redirect
// or mute planner output.
var Logf func(format string, v ...interface{}) = log.Printf

var debugEnabled atomic.Bool

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetDebug enables or disables Debugf output.
func SetDebug(enabled bool) { debugEnabled.Store(enabled) }

// DebugEnabled reports whether Debugf currently logs.
func DebugEnabled() bool { return debugEnabled.Load() }

// Debugf logs through Logf with a [debug] prefix when debug output is on.
// Per-boundary detail goes here so the per-cycle summary stays readable.
func Debugf(format string, v ...interface{}) {
	if !debugEnabled.Load() {
		return
	}
	Logf("[debug] "+format, v...)
}
