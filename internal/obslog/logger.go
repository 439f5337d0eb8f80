// Package obslog provides the pluggable diagnostic logger used by
// adapters (the CLI and the run-history store). The core packages (geom,
// camera, cuboid, lift) never import this package.
package obslog

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf
// but may be replaced by SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
