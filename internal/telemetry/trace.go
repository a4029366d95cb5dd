package telemetry

import (
	"os"
	"sync/atomic"
)

// traceEnabled gates statement tracing, mirroring go-hdb's sqltrace.On()
// gate so that Tracef never pays for formatting a message nobody reads.
var traceEnabled int32

func init() {
	if os.Getenv("MSSQLCLI_TRACE") == "1" {
		atomic.StoreInt32(&traceEnabled, 1)
	}
}

// TraceOn reports whether statement tracing is enabled.
func TraceOn() bool {
	return atomic.LoadInt32(&traceEnabled) == 1
}

// SetTrace toggles tracing programmatically, overriding the
// MSSQLCLI_TRACE setting read at startup.
func SetTrace(on bool) {
	if on {
		atomic.StoreInt32(&traceEnabled, 1)
	} else {
		atomic.StoreInt32(&traceEnabled, 0)
	}
}

// Tracef logs a trace-level message through log only if tracing is enabled.
func Tracef(log Func, format string, args ...any) {
	if !TraceOn() || log == nil {
		return
	}
	log(Debug, format, args...)
}
