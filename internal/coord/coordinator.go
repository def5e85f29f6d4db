// Package coord executes dashboard calls in the background and delivers
// each response to the Bubble Tea program as a message.
package coord

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/cxdash/internal/dashboard"
	"github.com/abelbrown/cxdash/internal/fanout"
	"github.com/abelbrown/cxdash/internal/ui"
)

// queueSize is how many dispatched batches may wait for the worker loop.
const queueSize = 64

// sender is the part of *tea.Program the coordinator needs.
type sender interface {
	Send(msg tea.Msg)
}

// Coordinator runs dispatched batches against an executor. Each batch gets
// its own concurrency limit, so a call that never returns holds a slot only
// in the batch that issued it.
// Uses context cancellation as the ONLY stop mechanism.
type Coordinator struct {
	ex    dashboard.Executor
	limit int
	queue chan []dashboard.Call
	done  chan struct{}
	wg    sync.WaitGroup
}

// NewCoordinator creates a Coordinator allowing limit calls of one batch in
// flight (fanout.DefaultLimit when limit <= 0).
func NewCoordinator(ex dashboard.Executor, limit int) *Coordinator {
	if limit <= 0 {
		limit = fanout.DefaultLimit
	}
	return &Coordinator{
		ex:    ex,
		limit: limit,
		queue: make(chan []dashboard.Call, queueSize),
		done:  make(chan struct{}),
	}
}

// Start begins executing dispatched calls. Call with a cancellable context.
// Every response is sent to program as a ui.ResponseMsg, in completion
// order; the dashboard's tokens sort out staleness.
func (c *Coordinator) Start(ctx context.Context, program sender) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(c.done)

		for {
			select {
			case <-ctx.Done():
				return
			case calls := <-c.queue:
				c.wg.Add(1)
				go func() {
					defer c.wg.Done()
					c.runBatch(ctx, calls, program)
				}()
			}
		}
	}()
}

// runBatch executes one dispatched batch with at most c.limit calls in flight.
func (c *Coordinator) runBatch(ctx context.Context, calls []dashboard.Call, program sender) {
	var g errgroup.Group
	g.SetLimit(c.limit)
	for _, call := range calls {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			resp := dashboard.Execute(ctx, c.ex, call)
			// Send completion message (nil program in tests)
			if program != nil {
				program.Send(ui.ResponseMsg{Response: resp})
			}
			return nil // never fail the group, errors travel in the response
		})
	}
	g.Wait()
}

// Wait blocks until the worker loop and its in-flight calls exit.
// Call after canceling the context passed to Start.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Dispatch returns a command that queues calls for execution. It has the
// signature ui.App expects for its dispatcher.
func (c *Coordinator) Dispatch(calls []dashboard.Call) tea.Cmd {
	if len(calls) == 0 {
		return nil
	}
	batch := append([]dashboard.Call(nil), calls...)
	return func() tea.Msg {
		select {
		case c.queue <- batch:
		case <-c.done:
		}
		return nil
	}
}
