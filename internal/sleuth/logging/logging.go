// Package logging holds the engine's diagnostic logger. It is kept
// deliberately thin: a single package-level hook that production code calls
// through and tests can redirect or silence.
package logging

import (
	"fmt"
	"log"
	"runtime"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Coefficient logs (§4.1) and per-step engine
// diagnostics are routed through it so a caller can capture or mute them.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Fatal reports a single diagnostic line carrying the caller's file, line,
// and message, then terminates the process. This is the engine's one
// non-silent error path (§7): configuration, shape-mismatch, and resource
// errors are all fatal and all look like this.
var Fatal = func(err error) {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "unknown", 0
	}
	log.Fatalf("%s:%d: %v", file, line, err)
}

// Fatalf formats a message and reports it the same way as Fatal.
func Fatalf(format string, args ...interface{}) {
	Fatal(fmt.Errorf(format, args...))
}
