// Package otel provides structured observability for cxdash.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer keeps recent events in memory for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Fetch executor
	KindFetchStart    EventKind = "fetch.start"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"

	// Staleness guard and view slots
	KindSlotApplied EventKind = "slot.applied"
	KindSlotStale   EventKind = "slot.stale"
	KindSlotAbandon EventKind = "slot.abandon"

	// Per-bank fan-out
	KindFanoutBegin   EventKind = "fanout.begin"
	KindFanoutPartial EventKind = "fanout.partial"
	KindFanoutDone    EventKind = "fanout.done"

	// UI events
	KindKeyPress    EventKind = "ui.key"
	KindScopeChange EventKind = "ui.scope"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace events, only when CXDASH_TRACE is set
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "fetch", "dashboard", "ui", "main"
	SessionID string         `json:"session_id,omitempty"` // uuid, same for entire app run
	Slot      string         `json:"slot,omitempty"`       // view slot or guard key
	Seq       uint64         `json:"seq,omitempty"`        // staleness token sequence
	Bank      string         `json:"bank,omitempty"`
	URL       string         `json:"url,omitempty"`
	Status    int            `json:"status,omitempty"` // HTTP status, when one was received
	Dur       time.Duration  `json:"-"`                // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`   // free text
	Extra     map[string]any `json:"extra,omitempty"` // escape hatch for unusual fields
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
