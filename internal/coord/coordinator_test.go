package coord

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/cxdash/internal/dashboard"
	"github.com/abelbrown/cxdash/internal/model"
	"github.com/abelbrown/cxdash/internal/query"
	"github.com/abelbrown/cxdash/internal/ui"
)

// mockExecutor implements dashboard.Executor for testing.
type mockExecutor struct {
	delay    time.Duration
	failBank string

	inFlight atomic.Int32
	maxSeen  atomic.Int32
	calls    atomic.Int32
}

func (m *mockExecutor) Execute(ctx context.Context, req query.Request) (any, error) {
	m.calls.Add(1)
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		old := m.maxSeen.Load()
		if n <= old || m.maxSeen.CompareAndSwap(old, n) {
			break
		}
	}

	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	bank := req.Params.Get("bank")
	if bank != "" && bank == m.failBank {
		return nil, errors.New("boom")
	}
	return []model.Theme{{Name: "t-" + bank}}, nil
}

// mockSender collects messages like a tea.Program would receive them.
type mockSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
	got  chan struct{}
}

func newMockSender() *mockSender {
	return &mockSender{got: make(chan struct{}, 128)}
}

func (s *mockSender) Send(msg tea.Msg) {
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	s.mu.Unlock()
	s.got <- struct{}{}
}

func (s *mockSender) wait(t *testing.T, n int) []tea.Msg {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.got:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d messages", i, n)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tea.Msg(nil), s.msgs...)
}

func painCalls(banks ...string) []dashboard.Call {
	calls := make([]dashboard.Call, len(banks))
	for i, b := range banks {
		calls[i] = dashboard.Call{
			Target:  dashboard.TargetPainPoints,
			Name:    b,
			Request: query.Build(query.KindThemes, query.Filter{Scope: model.Scope(b)}),
		}
	}
	return calls
}

func TestCoordinatorDeliversEveryResponse(t *testing.T) {
	ex := &mockExecutor{failBank: "B"}
	snd := newMockSender()
	c := NewCoordinator(ex, 4)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx, snd)

	if msg := c.Dispatch(painCalls("A", "B", "C"))(); msg != nil {
		t.Errorf("dispatch command should return nil, got %T", msg)
	}
	msgs := snd.wait(t, 3)
	cancel()
	c.Wait()

	byBank := make(map[string]dashboard.Response)
	for _, m := range msgs {
		rm, ok := m.(ui.ResponseMsg)
		if !ok {
			t.Fatalf("unexpected message %T", m)
		}
		byBank[rm.Response.Call.Name] = rm.Response
	}
	if byBank["B"].Err == nil {
		t.Error("B should carry its error")
	}
	for _, b := range []string{"A", "C"} {
		themes, _ := byBank[b].Value.([]model.Theme)
		if byBank[b].Err != nil || len(themes) != 1 || themes[0].Name != "t-"+b {
			t.Errorf("%s response = %+v", b, byBank[b])
		}
	}
}

func TestCoordinatorLimitsConcurrency(t *testing.T) {
	ex := &mockExecutor{delay: 20 * time.Millisecond}
	snd := newMockSender()
	c := NewCoordinator(ex, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx, snd)

	c.Dispatch(painCalls("A", "B", "C", "D", "E", "F"))()
	snd.wait(t, 6)

	if got := ex.maxSeen.Load(); got > 2 {
		t.Errorf("max in flight = %d, want <= 2", got)
	}
}

// blockingExecutor never returns for hungBank until ctx is cancelled.
type blockingExecutor struct {
	hungBank string
}

func (b blockingExecutor) Execute(ctx context.Context, req query.Request) (any, error) {
	if req.Params.Get("bank") == b.hungBank {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return model.Summary{TotalReviews: 1}, nil
}

func TestHungCallsDoNotBlockLaterBatches(t *testing.T) {
	snd := newMockSender()
	c := NewCoordinator(blockingExecutor{hungBank: "Hung"}, 2)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx, snd)

	c.Dispatch(painCalls("Hung", "Hung"))()
	c.Dispatch(painCalls("Hung"))()
	c.Dispatch([]dashboard.Call{{
		Target:  dashboard.TargetSummary,
		Request: query.Build(query.KindSummary, query.Filter{Scope: "CBE"}),
	}})()

	msgs := snd.wait(t, 1)
	rm, ok := msgs[0].(ui.ResponseMsg)
	if !ok || rm.Response.Call.Target != dashboard.TargetSummary || rm.Response.Err != nil {
		t.Errorf("first delivered message = %+v, want the CBE summary", msgs[0])
	}

	cancel()
	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after cancel")
	}
}

func TestDispatchEmpty(t *testing.T) {
	c := NewCoordinator(&mockExecutor{}, 0)
	if c.Dispatch(nil) != nil {
		t.Error("no calls should yield a nil command")
	}
	if c.limit != 8 {
		t.Errorf("default limit = %d", c.limit)
	}
}

func TestCoordinatorStopsOnCancel(t *testing.T) {
	ex := &mockExecutor{delay: time.Second}
	c := NewCoordinator(ex, 2)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx, nil)
	c.Dispatch(painCalls("A", "B"))()

	time.Sleep(20 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after cancel")
	}

	// Dispatch after shutdown must not block.
	finished := make(chan struct{})
	go func() {
		for i := 0; i < queueSize+1; i++ {
			c.Dispatch(painCalls("Z"))()
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Dispatch blocked after shutdown")
	}
}
