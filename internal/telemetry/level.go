// Package telemetry provides the leveled logging plumbing threaded through
// the transport package and the interactive shell. It mirrors the
// shape of a typical injectable logging hook: callers provide a Func, the
// library never reaches for a global logger.
package telemetry

import "fmt"

// Level identifies the severity of a log message.
type Level int

// Supported levels, lowest severity first.
const (
	Debug Level = iota
	Info
	Warn
	Error
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Func is a logging hook. format/args follow fmt.Printf conventions.
type Func func(level Level, format string, args ...any)

// Discard is a Func that drops every message.
func Discard(Level, string, ...any) {}

// Default writes each message to standard output as "LEVEL: message" via
// fmt.Printf; callers almost always override this with WithLogFunc-style
// options instead of relying on it.
func Default(level Level, format string, args ...any) {
	fmt.Printf("%s: %s\n", level, fmt.Sprintf(format, args...))
}
