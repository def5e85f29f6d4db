package dashboard

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/abelbrown/cxdash/internal/query"
)

// Executor performs one request descriptor. *fetch.Client implements it.
type Executor interface {
	Execute(ctx context.Context, req query.Request) (any, error)
}

// Execute runs c against ex and wraps the outcome as a Response.
func Execute(ctx context.Context, ex Executor, c Call) Response {
	v, err := ex.Execute(ctx, c.Request)
	return Response{Call: c, Value: v, Err: err}
}

// Drive executes calls concurrently, with at most limit in flight, and
// applies every response to s on the calling goroutine, following up on
// the calls Apply returns, until nothing is outstanding. onResponse, if
// non-nil, sees each response after it was offered to s.
func Drive(ctx context.Context, s *State, ex Executor, calls []Call, limit int, onResponse func(resp Response, applied bool)) {
	if limit <= 0 {
		limit = len(calls) + 1
	}
	sem := semaphore.NewWeighted(int64(limit))
	out := make(chan Response)
	pending := 0

	dispatch := func(cs []Call) {
		for _, c := range cs {
			pending++
			go func() {
				if err := sem.Acquire(ctx, 1); err != nil {
					out <- Response{Call: c, Err: err}
					return
				}
				defer sem.Release(1)
				out <- Execute(ctx, ex, c)
			}()
		}
	}

	dispatch(calls)
	for pending > 0 {
		resp := <-out
		pending--
		applied, next := s.Apply(resp)
		if onResponse != nil {
			onResponse(resp, applied)
		}
		dispatch(next)
	}
}
