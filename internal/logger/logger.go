// Package logger traces the ranking pipeline to stderr. It stays silent
// unless verbose mode is switched on (the --verbose flag), so the CLI's
// stdout output is never mixed with diagnostics.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects the trace output. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// emit writes one prefixed line when verbose mode is on. Callers hold no
// locks.
func emit(prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug traces fine-grained pipeline steps.
func Debug(format string, args ...any) {
	emit("[DEBUG] ", format, args...)
}

// Info traces the notable milestones of a request.
func Info(format string, args ...any) {
	emit("[INFO] ", format, args...)
}

// Warn traces recoverable problems, like a failed observation append.
func Warn(format string, args ...any) {
	emit("[WARN] ", format, args...)
}

// Section marks the start of a new request in the trace.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
