// Package fanout runs one query per entity (bank) in parallel and merges
// the results into a keyed view in entity-list order.
//
// Each entity gets its own guarded slot, so one entity failing never
// affects its siblings, and results are visible as soon as they arrive.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/cxdash/internal/guard"
	"github.com/abelbrown/cxdash/internal/viewstate"
)

// DefaultLimit bounds concurrent per-entity calls when no limit is given.
const DefaultLimit = 8

// Call is one per-entity request to issue.
type Call struct {
	Entity string
	Token  guard.Token
}

// Result is the outcome of one Call.
type Result[T any] struct {
	Call
	Value T
	Err   error
}

// Entry is the current view of one entity.
type Entry[T any] struct {
	Entity string
	Status viewstate.Status
	Value  T
	Err    error
}

// Aggregator holds the per-entity slots of one fan-out view. It is not
// safe for concurrent use: apply results from a single goroutine.
type Aggregator[T any] struct {
	g      *guard.Guard
	prefix string
	order  []string
	slots  map[string]*viewstate.Slot[T]
}

// New creates an Aggregator whose slot keys are prefix + "/" + entity.
func New[T any](g *guard.Guard, prefix string) *Aggregator[T] {
	return &Aggregator[T]{
		g:      g,
		prefix: prefix,
		slots:  make(map[string]*viewstate.Slot[T]),
	}
}

// Key returns the guard key used for entity.
func (a *Aggregator[T]) Key(entity string) guard.Key {
	return guard.Key(a.prefix + "/" + entity)
}

// Begin starts a new round over entities. Every token issued by earlier
// rounds is invalidated, including those of entities no longer listed.
// All entries become Loading. The returned calls are in entity order.
func (a *Aggregator[T]) Begin(entities []string) []Call {
	keep := make(map[string]bool, len(entities))
	for _, e := range entities {
		keep[e] = true
	}
	for e, s := range a.slots {
		if !keep[e] {
			s.Abandon()
			delete(a.slots, e)
		}
	}

	a.order = append(a.order[:0:0], entities...)
	calls := make([]Call, 0, len(entities))
	for _, e := range entities {
		s, ok := a.slots[e]
		if !ok {
			s = viewstate.NewSlot[T](a.g, a.Key(e))
			a.slots[e] = s
		}
		calls = append(calls, Call{Entity: e, Token: s.Begin()})
	}
	return calls
}

// Apply applies r if its token is still current for its entity.
func (a *Aggregator[T]) Apply(r Result[T]) bool {
	s, ok := a.slots[r.Entity]
	if !ok {
		return false
	}
	return s.Resolve(r.Token, r.Value, r.Err)
}

// Reissue restarts a single entity of the current round, superseding its
// previous call. Siblings are untouched.
func (a *Aggregator[T]) Reissue(entity string) (Call, bool) {
	s, ok := a.slots[entity]
	if !ok {
		return Call{}, false
	}
	return Call{Entity: entity, Token: s.Begin()}, true
}

// Abandon ends the current round: every in-flight call is invalidated and
// all entries, settled or not, are dropped.
func (a *Aggregator[T]) Abandon() {
	for e, s := range a.slots {
		s.Abandon()
		delete(a.slots, e)
	}
	a.order = nil
}

// Entity returns the entry for one entity.
func (a *Aggregator[T]) Entity(name string) (Entry[T], bool) {
	s, ok := a.slots[name]
	if !ok {
		return Entry[T]{}, false
	}
	return Entry[T]{Entity: name, Status: s.Status(), Value: s.Value(), Err: s.Err()}, true
}

// Entries returns one entry per entity in the order given to Begin,
// regardless of the order results arrived in.
func (a *Aggregator[T]) Entries() []Entry[T] {
	out := make([]Entry[T], 0, len(a.order))
	for _, e := range a.order {
		entry, _ := a.Entity(e)
		out = append(out, entry)
	}
	return out
}

// Len returns the number of entities in the current round.
func (a *Aggregator[T]) Len() int { return len(a.order) }

// Pending returns how many entities are still Loading.
func (a *Aggregator[T]) Pending() int {
	n := 0
	for _, e := range a.order {
		if a.slots[e].Loading() {
			n++
		}
	}
	return n
}

// Done reports whether every entity of a non-empty round has settled.
func (a *Aggregator[T]) Done() bool {
	return len(a.order) > 0 && a.Pending() == 0
}

// Failed returns the entities whose call failed, in entity order.
func (a *Aggregator[T]) Failed() []string {
	var out []string
	for _, e := range a.order {
		if a.slots[e].Status() == viewstate.Failed {
			out = append(out, e)
		}
	}
	return out
}

// Stream runs fn for every call with at most limit in flight and delivers
// each result as soon as it resolves. The channel is closed once all calls
// have resolved. A failing call never cancels its siblings.
func Stream[T any](ctx context.Context, calls []Call, limit int, fn func(ctx context.Context, entity string) (T, error)) <-chan Result[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := make(chan Result[T], len(calls))
	go func() {
		defer close(out)
		var g errgroup.Group
		g.SetLimit(limit)
		for _, c := range calls {
			g.Go(func() error {
				v, err := fn(ctx, c.Entity)
				out <- Result[T]{Call: c, Value: v, Err: err}
				return nil
			})
		}
		_ = g.Wait()
	}()
	return out
}

// Collect starts a round over entities, streams the calls, and applies
// results on the calling goroutine until all have arrived. onResult, if
// non-nil, sees each applied entry as it lands.
func Collect[T any](ctx context.Context, a *Aggregator[T], entities []string, limit int,
	fn func(ctx context.Context, entity string) (T, error), onResult func(Entry[T])) []Entry[T] {
	calls := a.Begin(entities)
	for r := range Stream(ctx, calls, limit, fn) {
		if a.Apply(r) && onResult != nil {
			entry, _ := a.Entity(r.Entity)
			onResult(entry)
		}
	}
	return a.Entries()
}
