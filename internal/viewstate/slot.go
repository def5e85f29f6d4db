// Package viewstate holds per-slot view state driven by guarded responses.
package viewstate

import "github.com/abelbrown/cxdash/internal/guard"

// Status is the state of one view slot.
//
//	Idle --Begin--> Loading --Resolve--> Ready | Failed
//	Ready, Failed --Begin--> Loading
//	Loading --Abandon--> Idle
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Slot is one independently loading piece of the view. Its zero value is
// not usable; create slots with NewSlot.
type Slot[T any] struct {
	g      *guard.Guard
	key    guard.Key
	status Status
	tok    guard.Token
	value  T
	err    error
}

// NewSlot creates an Idle slot whose requests are sequenced by g under key.
func NewSlot[T any](g *guard.Guard, key guard.Key) *Slot[T] {
	return &Slot[T]{g: g, key: key}
}

// Key returns the guard key of the slot.
func (s *Slot[T]) Key() guard.Key { return s.key }

// Begin issues a new token, superseding any in-flight request, and moves
// the slot to Loading. The previous value is dropped: it belonged to a
// different filter.
func (s *Slot[T]) Begin() guard.Token {
	var zero T
	s.tok = s.g.Issue(s.key)
	s.status = Loading
	s.value = zero
	s.err = nil
	return s.tok
}

// Resolve applies a response issued under tok. It returns false, leaving
// the slot untouched, when tok is not the slot's current token or the slot
// is not waiting for a response.
func (s *Slot[T]) Resolve(tok guard.Token, v T, err error) bool {
	if s.status != Loading || tok != s.tok || !s.g.IsCurrent(tok) {
		return false
	}
	if err != nil {
		var zero T
		s.status = Failed
		s.value = zero
		s.err = err
		return true
	}
	s.status = Ready
	s.value = v
	s.err = nil
	return true
}

// Abandon invalidates the in-flight request, if any. A Loading slot goes
// back to Idle; settled data is kept.
func (s *Slot[T]) Abandon() {
	s.g.Invalidate(s.key)
	if s.status == Loading {
		var zero T
		s.status = Idle
		s.value = zero
	}
}

// Status returns the slot state.
func (s *Slot[T]) Status() Status { return s.status }

// Value returns the applied value; the zero value unless Ready.
func (s *Slot[T]) Value() T { return s.value }

// Err returns the failure of a Failed slot.
func (s *Slot[T]) Err() error { return s.err }

// Token returns the token of the most recent Begin.
func (s *Slot[T]) Token() guard.Token { return s.tok }

// Loading reports whether a response is awaited.
func (s *Slot[T]) Loading() bool { return s.status == Loading }

// Snapshot is a read-only copy of a slot for presentation.
type Snapshot[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Snapshot returns the current state of the slot.
func (s *Slot[T]) Snapshot() Snapshot[T] {
	return Snapshot[T]{Status: s.status, Value: s.value, Err: s.err}
}
