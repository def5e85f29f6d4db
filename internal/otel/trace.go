package otel

import (
	"os"
	"sync/atomic"
)

// traceEnabled is read on every UI message.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("CXDASH_TRACE") != "")
}

// TraceEnabled reports whether CXDASH_TRACE is set.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
