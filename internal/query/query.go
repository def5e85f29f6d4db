// Package query turns dashboard filter selections into canonical request
// descriptors for the review aggregation API.
//
// Build is pure and total: every filter tuple yields a descriptor, and two
// equal filter tuples always yield byte-identical descriptors.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/abelbrown/cxdash/internal/model"
)

// DefaultPageSize is the reviews page size used when none is given.
const DefaultPageSize = 10

// Kind identifies which aggregate a request asks for.
type Kind int

const (
	KindBanks Kind = iota
	KindSummary
	KindThemes
	KindSentiment
	KindThemeSentiment
	KindReviews
)

var kindNames = [...]string{"banks", "summary", "themes", "sentiment", "theme-sentiment", "reviews"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Path is the API path serving this kind.
func (k Kind) Path() string {
	return "/api/" + k.String()
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Filter is the user-selected filter tuple. Zero values mean "unset".
type Filter struct {
	Scope     model.Scope
	Theme     string
	Sentiment model.SentimentLabel
	Page      int
	PageSize  int
}

// Request is a canonical request descriptor.
type Request struct {
	Kind   Kind
	Params url.Values
}

// Build derives the descriptor for kind under f.
//
// The all-banks scope and empty theme or sentiment are omitted. Reviews
// always carry page and limit; non-positive values are normalized to page 1
// and DefaultPageSize. The banks list takes no parameters.
func Build(kind Kind, f Filter) Request {
	params := url.Values{}
	if kind == KindBanks {
		return Request{Kind: kind, Params: params}
	}
	if bank := f.Scope.Bank(); bank != "" {
		params.Set("bank", bank)
	}
	if kind != KindReviews {
		return Request{Kind: kind, Params: params}
	}

	if f.Theme != "" {
		params.Set("theme", f.Theme)
	}
	if f.Sentiment != "" {
		params.Set("sentiment", string(f.Sentiment))
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.PageSize
	if limit < 1 {
		limit = DefaultPageSize
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	return Request{Kind: kind, Params: params}
}

// Query returns the percent-encoded query string with keys sorted.
func (r Request) Query() string {
	return r.Params.Encode()
}

// Encode returns the absolute URL of r against base (scheme://host[/prefix]).
func (r Request) Encode(base string) string {
	u := strings.TrimRight(base, "/") + r.Kind.Path()
	if q := r.Query(); q != "" {
		u += "?" + q
	}
	return u
}

// Slot is a key identifying everything r asks for. Two descriptors built
// from equal filters share a slot.
func (r Request) Slot() string {
	if q := r.Query(); q != "" {
		return r.Kind.String() + "|" + q
	}
	return r.Kind.String()
}

func (r Request) String() string {
	return r.Kind.Path() + "?" + r.Query()
}
