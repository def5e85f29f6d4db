package viewstate

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/abelbrown/cxdash/internal/guard"
)

func TestSlotLifecycle(t *testing.T) {
	s := NewSlot[string](guard.New(), "summary")
	if s.Status() != Idle {
		t.Fatalf("new slot should be idle, got %v", s.Status())
	}

	tok := s.Begin()
	if !s.Loading() {
		t.Fatalf("Begin should move to loading, got %v", s.Status())
	}
	if !s.Resolve(tok, "cbe", nil) {
		t.Fatal("current token should apply")
	}
	if s.Status() != Ready || s.Value() != "cbe" {
		t.Errorf("expected ready/cbe, got %v/%q", s.Status(), s.Value())
	}
}

func TestSlotFailure(t *testing.T) {
	s := NewSlot[int](guard.New(), "themes")
	tok := s.Begin()
	boom := errors.New("boom")
	if !s.Resolve(tok, 7, boom) {
		t.Fatal("current failure should apply")
	}
	if s.Status() != Failed || s.Err() != boom || s.Value() != 0 {
		t.Errorf("expected failed with err and zero value, got %v %v %v", s.Status(), s.Err(), s.Value())
	}

	// Failed is not terminal.
	tok = s.Begin()
	if s.Err() != nil {
		t.Error("Begin should clear the error")
	}
	s.Resolve(tok, 3, nil)
	if s.Status() != Ready || s.Value() != 3 {
		t.Errorf("retry should reach ready, got %v", s.Status())
	}
}

func TestSlotStaleResponseDiscarded(t *testing.T) {
	s := NewSlot[string](guard.New(), "themes")
	a := s.Begin()
	b := s.Begin()

	if s.Resolve(a, "A", nil) {
		t.Error("stale token must not apply")
	}
	if !s.Loading() {
		t.Errorf("stale response must not transition, got %v", s.Status())
	}
	s.Resolve(b, "B", nil)
	if s.Value() != "B" {
		t.Errorf("value = %q, want B", s.Value())
	}
	if s.Resolve(a, "A", nil) {
		t.Error("stale token must not apply after ready either")
	}
	if s.Value() != "B" {
		t.Errorf("value = %q, want B", s.Value())
	}
}

func TestSlotDuplicateDeliveryIgnored(t *testing.T) {
	s := NewSlot[string](guard.New(), "themes")
	tok := s.Begin()
	s.Resolve(tok, "first", nil)
	if s.Resolve(tok, "second", nil) {
		t.Error("a settled slot must not apply the same token twice")
	}
	if s.Value() != "first" {
		t.Errorf("value = %q", s.Value())
	}
}

func TestSlotABA(t *testing.T) {
	// Rapid A -> B -> A: responses arrive B, A(second), A(first).
	s := NewSlot[string](guard.New(), "themes")
	a1 := s.Begin()
	b := s.Begin()
	a2 := s.Begin()

	s.Resolve(b, "B", nil)
	if s.Value() == "B" {
		t.Fatal("B must never be displayed")
	}
	s.Resolve(a2, "A", nil)
	s.Resolve(a1, "A-old", nil)
	if s.Status() != Ready || s.Value() != "A" {
		t.Errorf("expected ready A, got %v %q", s.Status(), s.Value())
	}
}

func TestSlotAbandon(t *testing.T) {
	s := NewSlot[string](guard.New(), "card/Fees")
	tok := s.Begin()
	s.Abandon()

	if s.Status() != Idle {
		t.Errorf("abandoned loading slot should be idle, got %v", s.Status())
	}
	if s.Resolve(tok, "late", nil) {
		t.Error("response after abandon must be discarded")
	}

	tok = s.Begin()
	s.Resolve(tok, "kept", nil)
	s.Abandon()
	if s.Status() != Ready || s.Value() != "kept" {
		t.Errorf("abandon must keep settled data, got %v %q", s.Status(), s.Value())
	}
}

// Whatever order N responses resolve in, the slot ends Ready with the
// value of the last request issued.
func TestSlotLastIssuedWinsUnderPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 200; round++ {
		s := NewSlot[int](guard.New(), "themes")
		n := 2 + rng.Intn(8)
		toks := make([]guard.Token, n)
		for i := range toks {
			toks[i] = s.Begin()
		}
		for _, i := range rng.Perm(n) {
			s.Resolve(toks[i], i, nil)
			if s.Status() == Ready && s.Value() != n-1 {
				t.Fatalf("round %d: displayed %d before the last request resolved", round, s.Value())
			}
		}
		if s.Status() != Ready || s.Value() != n-1 {
			t.Fatalf("round %d: got %v %d, want ready %d", round, s.Status(), s.Value(), n-1)
		}
	}
}

func TestStatusString(t *testing.T) {
	for s, want := range map[Status]string{Idle: "idle", Loading: "loading", Ready: "ready", Failed: "failed", Status(9): "unknown"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
