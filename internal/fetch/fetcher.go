// Package fetch executes request descriptors against the review aggregation
// API and classifies every failure.
//
// Each Execute is exactly one outbound GET. There are no retries here:
// retrying is a user action handled by the caller issuing a fresh request.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/cxdash/internal/model"
	"github.com/abelbrown/cxdash/internal/otel"
	"github.com/abelbrown/cxdash/internal/query"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 8 << 20

// errBodySnippet is how much of a non-2xx body is kept on HTTPError.
const errBodySnippet = 200

const userAgent = "cxdash/1.0"

// Options configures a Client. The zero value is usable: no timeout and no
// rate limit.
type Options struct {
	// Timeout bounds each request. Zero means a request may wait forever.
	Timeout time.Duration
	// RequestsPerSecond limits outbound requests; <= 0 is unlimited.
	RequestsPerSecond float64
	Burst             int
	// Events receives fetch.* events. Nil disables them.
	Events *otel.Logger
}

// Client retrieves aggregates from the API.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	events  *otel.Logger
}

// NewClient creates a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts Options) *Client {
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		events:  opts.Events,
	}
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Execute performs req and returns the decoded payload for its kind:
//
//	KindBanks          []string
//	KindSummary        model.Summary
//	KindThemes         []model.Theme
//	KindSentiment      model.SentimentBreakdown
//	KindThemeSentiment model.ThemeSentimentMatrix
//	KindReviews        model.ReviewPage
//
// Errors are *NetworkError, *HTTPError or *ParseError.
func (c *Client) Execute(ctx context.Context, req query.Request) (any, error) {
	url := req.Encode(c.baseURL)
	body, err := c.get(ctx, url, req.Kind)
	if err != nil {
		return nil, err
	}
	v, err := decode(req.Kind, body)
	if err != nil {
		pe := &ParseError{URL: url, Reason: err.Error()}
		c.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindFetchError, Comp: "fetch", URL: url, Err: pe.Error()})
		return nil, pe
	}
	return v, nil
}

// get performs one GET and returns the body of a 2xx JSON response.
func (c *Client) get(ctx context.Context, url string, kind query.Kind) ([]byte, error) {
	start := time.Now()
	c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchStart, Comp: "fetch", URL: url, Msg: kind.String()})

	fail := func(err error, status int) ([]byte, error) {
		c.events.Emit(otel.Event{
			Level:  otel.LevelWarn,
			Kind:   otel.KindFetchError,
			Comp:   "fetch",
			URL:    url,
			Status: status,
			Dur:    time.Since(start),
			Err:    err.Error(),
		})
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return fail(&NetworkError{URL: url, Err: err}, 0)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fail(&NetworkError{URL: url, Err: fmt.Errorf("rate limiter: %w", err)}, 0)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(&NetworkError{URL: url, Err: fmt.Errorf("create request: %w", err)}, 0)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fail(&NetworkError{URL: url, Err: err}, 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > errBodySnippet {
			snippet = snippet[:errBodySnippet]
		}
		return fail(&HTTPError{URL: url, Status: resp.StatusCode, Body: snippet}, resp.StatusCode)
	}
	if err != nil {
		return fail(&NetworkError{URL: url, Err: fmt.Errorf("read body: %w", err)}, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !isJSON(ct) {
		reason := "unexpected content type " + ct
		if ct == "" {
			reason = "missing content type"
		}
		return fail(&ParseError{URL: url, Reason: reason}, resp.StatusCode)
	}

	c.events.Emit(otel.Event{
		Level:  otel.LevelInfo,
		Kind:   otel.KindFetchComplete,
		Comp:   "fetch",
		URL:    url,
		Status: resp.StatusCode,
		Dur:    time.Since(start),
		Count:  len(body),
	})
	return body, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// Banks returns bank names in display order.
func (c *Client) Banks(ctx context.Context) ([]string, error) {
	v, err := c.Execute(ctx, query.Build(query.KindBanks, query.Filter{}))
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Summary returns the KPI figures for scope.
func (c *Client) Summary(ctx context.Context, scope model.Scope) (model.Summary, error) {
	v, err := c.Execute(ctx, query.Build(query.KindSummary, query.Filter{Scope: scope}))
	if err != nil {
		return model.Summary{}, err
	}
	return v.(model.Summary), nil
}

// Themes returns per-theme aggregates for scope, as ordered by the API.
func (c *Client) Themes(ctx context.Context, scope model.Scope) ([]model.Theme, error) {
	v, err := c.Execute(ctx, query.Build(query.KindThemes, query.Filter{Scope: scope}))
	if err != nil {
		return nil, err
	}
	return v.([]model.Theme), nil
}

// Sentiment returns the sentiment label counts for scope.
func (c *Client) Sentiment(ctx context.Context, scope model.Scope) (model.SentimentBreakdown, error) {
	v, err := c.Execute(ctx, query.Build(query.KindSentiment, query.Filter{Scope: scope}))
	if err != nil {
		return model.SentimentBreakdown{}, err
	}
	return v.(model.SentimentBreakdown), nil
}

// ThemeSentiment returns the theme x sentiment matrix for scope.
func (c *Client) ThemeSentiment(ctx context.Context, scope model.Scope) (model.ThemeSentimentMatrix, error) {
	v, err := c.Execute(ctx, query.Build(query.KindThemeSentiment, query.Filter{Scope: scope}))
	if err != nil {
		return model.ThemeSentimentMatrix{}, err
	}
	return v.(model.ThemeSentimentMatrix), nil
}

// Reviews returns one page of reviews matching f.
func (c *Client) Reviews(ctx context.Context, f query.Filter) (model.ReviewPage, error) {
	v, err := c.Execute(ctx, query.Build(query.KindReviews, f))
	if err != nil {
		return model.ReviewPage{}, err
	}
	return v.(model.ReviewPage), nil
}
