// Package log is the minimal leveled logger used across jpath. It exists
// because the evaluator and the jpath CLI want the same cheap
// DEBUG/TRACE calls that cost nothing when the corresponding level is off,
// colorized the same way the rest of the toolchain colorizes its output.
package log

import (
	"fmt"
	"os"

	"github.com/starkandwayne/goutils/ansi"
)

var (
	debugOn bool
	traceOn bool
)

// DebugOn reports whether DEBUG-level messages are currently emitted.
func DebugOn() bool { return debugOn }

// TraceOn reports whether TRACE-level messages are currently emitted.
func TraceOn() bool { return traceOn }

// SetDebug toggles DEBUG-level logging. TRACE implies DEBUG.
func SetDebug(on bool) { debugOn = on }

// SetTrace toggles TRACE-level logging.
func SetTrace(on bool) {
	traceOn = on
	if on {
		debugOn = true
	}
}

// DEBUG writes a yellow-tagged debug line to stderr when debug logging is on.
func DEBUG(format string, args ...interface{}) {
	if !debugOn {
		return
	}
	PrintfStdErr("@Y{DEBUG> }"+format+"\n", args...)
}

// TRACE writes a cyan-tagged trace line to stderr when trace logging is on.
func TRACE(format string, args ...interface{}) {
	if !traceOn {
		return
	}
	PrintfStdErr("@C{TRACE> }"+format+"\n", args...)
}

// Printf writes a colorized message to stdout.
func Printf(format string, args ...interface{}) {
	fmt.Print(ansi.Sprintf(format, args...))
}

// PrintfStdErr writes a colorized message to stderr.
func PrintfStdErr(format string, args ...interface{}) {
	fmt.Fprint(os.Stderr, ansi.Sprintf(format, args...))
}
