// Package guard decides whether an asynchronous response is still wanted.
//
// Every logical query slot has a monotonically increasing sequence. Issuing a
// request for a slot hands out a Token carrying the new sequence; a response
// may be applied only while its token is the slot's current one. Arrival
// order never matters.
package guard

import (
	"fmt"
	"sync"
)

// Key identifies one logical query slot, e.g. "themes" or "painpoints/CBE".
type Key string

// Token is the request identity captured when a request is issued.
type Token struct {
	Key Key
	Seq uint64
}

// IsZero reports whether t was never issued.
func (t Token) IsZero() bool {
	return t.Seq == 0
}

func (t Token) String() string {
	return fmt.Sprintf("%s#%d", t.Key, t.Seq)
}

// Guard tracks the current sequence of each slot. Safe for concurrent use.
type Guard struct {
	mu   sync.Mutex
	seqs map[Key]uint64
}

// New returns an empty Guard.
func New() *Guard {
	return &Guard{seqs: make(map[Key]uint64)}
}

// Issue supersedes any outstanding request for key and returns the new
// current token.
func (g *Guard) Issue(key Key) Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seqs[key]++
	return Token{Key: key, Seq: g.seqs[key]}
}

// Invalidate supersedes any outstanding request for key without issuing a
// new one. Used when the view owning the slot is closed.
func (g *Guard) Invalidate(key Key) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seqs[key]++
}

// Current returns the sequence of the newest token issued or invalidated
// for key; 0 if none.
func (g *Guard) Current(key Key) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seqs[key]
}

// IsCurrent reports whether a response carrying tok may be applied.
// The zero token is never current.
func (g *Guard) IsCurrent(tok Token) bool {
	if tok.IsZero() {
		return false
	}
	return g.Current(tok.Key) == tok.Seq
}
