// Package monitoring holds the process-wide diagnostic logger.
package monitoring

import (
	"log"
	"os"
	"strings"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// LogLevelEnv names the environment variable that enables debug logging.
const LogLevelEnv = "COLOR_TRACKER_LOG_LEVEL"

// DebugEnabled reports whether COLOR_TRACKER_LOG_LEVEL=debug.
func DebugEnabled() bool {
	return strings.EqualFold(os.Getenv(LogLevelEnv), "debug")
}
