// Package dashboard is the view state holder of the review dashboard.
//
// State owns every query slot of the dashboard and turns user actions into
// Calls. The caller executes Calls however it likes (Bubble Tea commands,
// goroutines, sequentially) and feeds each Response back through Apply on
// one goroutine. Token checks inside Apply make the final state independent
// of the order responses arrive in.
package dashboard

import (
	"github.com/abelbrown/cxdash/internal/fanout"
	"github.com/abelbrown/cxdash/internal/guard"
	"github.com/abelbrown/cxdash/internal/metrics"
	"github.com/abelbrown/cxdash/internal/model"
	"github.com/abelbrown/cxdash/internal/otel"
	"github.com/abelbrown/cxdash/internal/query"
	"github.com/abelbrown/cxdash/internal/viewstate"
)

// Target names the part of the dashboard a Call feeds.
type Target int

const (
	TargetBanks Target = iota
	TargetSummary
	TargetThemes
	TargetSentiment
	TargetMatrix
	TargetPainPoints
	TargetCard
)

var targetNames = [...]string{"banks", "summary", "themes", "sentiment", "matrix", "painpoints", "card"}

func (t Target) String() string {
	if t < 0 || int(t) >= len(targetNames) {
		return "target"
	}
	return targetNames[t]
}

// Call is one request the dashboard wants executed.
type Call struct {
	Target  Target
	Name    string // bank for TargetPainPoints, theme for TargetCard
	Token   guard.Token
	Request query.Request
}

// Response is the outcome of executing a Call.
type Response struct {
	Call  Call
	Value any
	Err   error
}

// Options configures a State.
type Options struct {
	Palette  metrics.Palette
	PageSize int
	Events   *otel.Logger
}

// State is the view state holder. It is not safe for concurrent use.
type State struct {
	g        *guard.Guard
	events   *otel.Logger
	palette  metrics.Palette
	pageSize int

	scope      model.Scope
	banks      *viewstate.Slot[[]string]
	summary    *viewstate.Slot[model.Summary]
	themes     *viewstate.Slot[[]model.Theme]
	sentiment  *viewstate.Slot[model.SentimentBreakdown]
	matrix     *viewstate.Slot[model.ThemeSentimentMatrix]
	painPoints *fanout.Aggregator[[]model.Theme]
	cards      map[string]*card
}

// New creates an idle dashboard scoped to all banks.
func New(opts Options) *State {
	g := guard.New()
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = query.DefaultPageSize
	}
	return &State{
		g:          g,
		events:     opts.Events,
		palette:    opts.Palette,
		pageSize:   pageSize,
		scope:      model.AllBanks,
		banks:      viewstate.NewSlot[[]string](g, "banks"),
		summary:    viewstate.NewSlot[model.Summary](g, "summary"),
		themes:     viewstate.NewSlot[[]model.Theme](g, "themes"),
		sentiment:  viewstate.NewSlot[model.SentimentBreakdown](g, "sentiment"),
		matrix:     viewstate.NewSlot[model.ThemeSentimentMatrix](g, "theme-sentiment"),
		painPoints: fanout.New[[]model.Theme](g, "painpoints"),
		cards:      make(map[string]*card),
	}
}

// Init loads the bank list and every panel for the current scope.
func (s *State) Init() []Call {
	var calls []Call
	if st := s.banks.Status(); st == viewstate.Idle || st == viewstate.Failed {
		calls = append(calls, s.beginBanks())
	}
	return append(calls, s.SelectScope(s.scope)...)
}

func (s *State) beginBanks() Call {
	return Call{Target: TargetBanks, Token: s.banks.Begin(), Request: query.Build(query.KindBanks, query.Filter{})}
}

// SelectScope switches the dashboard to scope and reissues every
// scope-dependent query. Responses to queries issued for the previous
// scope are discarded when they arrive.
func (s *State) SelectScope(scope model.Scope) []Call {
	if scope.IsAll() {
		scope = model.AllBanks
	}
	s.scope = scope
	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindScopeChange, Comp: "dashboard", Bank: scope.Bank(), Msg: scope.String()})

	f := query.Filter{Scope: scope}
	calls := []Call{
		{Target: TargetSummary, Token: s.summary.Begin(), Request: query.Build(query.KindSummary, f)},
		{Target: TargetThemes, Token: s.themes.Begin(), Request: query.Build(query.KindThemes, f)},
		{Target: TargetSentiment, Token: s.sentiment.Begin(), Request: query.Build(query.KindSentiment, f)},
		{Target: TargetMatrix, Token: s.matrix.Begin(), Request: query.Build(query.KindThemeSentiment, f)},
	}
	calls = append(calls, s.beginPainPoints()...)

	for _, name := range s.openCards() {
		c := s.cards[name]
		c.page = 1
		calls = append(calls, s.beginCard(c))
	}
	return calls
}

// beginPainPoints starts a pain-points round: one query per bank for the
// all-banks scope, or a single query for one bank. With the all-banks
// scope and no bank list yet, the round starts when the banks arrive.
func (s *State) beginPainPoints() []Call {
	var entities []string
	if s.scope.IsAll() {
		if s.banks.Status() != viewstate.Ready {
			s.painPoints.Abandon()
			return nil
		}
		entities = s.banks.Value()
	} else {
		entities = []string{s.scope.Bank()}
	}

	rounds := s.painPoints.Begin(entities)
	s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFanoutBegin, Comp: "dashboard", Count: len(rounds)})
	calls := make([]Call, len(rounds))
	for i, r := range rounds {
		calls[i] = s.painPointsCall(r)
	}
	return calls
}

func (s *State) painPointsCall(r fanout.Call) Call {
	return Call{
		Target:  TargetPainPoints,
		Name:    r.Entity,
		Token:   r.Token,
		Request: query.Build(query.KindThemes, query.Filter{Scope: model.Scope(r.Entity)}),
	}
}

// Apply applies resp if it is still current and returns any follow-up
// calls. Stale responses are dropped and reported as not applied.
func (s *State) Apply(resp Response) (applied bool, next []Call) {
	c := resp.Call
	switch c.Target {
	case TargetBanks:
		v, _ := resp.Value.([]string)
		applied = s.banks.Resolve(c.Token, v, resp.Err)
		if applied && resp.Err == nil && s.scope.IsAll() {
			next = s.beginPainPoints()
		}
	case TargetSummary:
		v, _ := resp.Value.(model.Summary)
		applied = s.summary.Resolve(c.Token, v, resp.Err)
	case TargetThemes:
		v, _ := resp.Value.([]model.Theme)
		applied = s.themes.Resolve(c.Token, v, resp.Err)
		if applied && resp.Err == nil {
			s.pruneCards(v)
		}
	case TargetSentiment:
		v, _ := resp.Value.(model.SentimentBreakdown)
		applied = s.sentiment.Resolve(c.Token, v, resp.Err)
	case TargetMatrix:
		v, _ := resp.Value.(model.ThemeSentimentMatrix)
		applied = s.matrix.Resolve(c.Token, v, resp.Err)
	case TargetPainPoints:
		v, _ := resp.Value.([]model.Theme)
		applied = s.painPoints.Apply(fanout.Result[[]model.Theme]{
			Call:  fanout.Call{Entity: c.Name, Token: c.Token},
			Value: v,
			Err:   resp.Err,
		})
		if applied {
			s.events.Emit(otel.Event{
				Level: otel.LevelDebug,
				Kind:  otel.KindFanoutPartial,
				Comp:  "dashboard",
				Bank:  c.Name,
				Count: s.painPoints.Pending(),
			})
			if s.painPoints.Done() {
				s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFanoutDone, Comp: "dashboard", Count: len(s.painPoints.Failed())})
			}
		}
	case TargetCard:
		if cd, ok := s.cards[c.Name]; ok {
			v, _ := resp.Value.(model.ReviewPage)
			applied = cd.reviews.Resolve(c.Token, v, resp.Err)
		}
	}

	if applied {
		s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSlotApplied, Comp: "dashboard", Slot: string(c.Token.Key), Seq: c.Token.Seq})
	} else {
		s.events.Emit(otel.Event{
			Level: otel.LevelInfo,
			Kind:  otel.KindSlotStale,
			Comp:  "dashboard",
			Slot:  string(c.Token.Key),
			Seq:   c.Token.Seq,
			Msg:   c.Request.String(),
		})
	}
	return applied, next
}

// Retry reissues every query whose slot is Failed.
func (s *State) Retry() []Call {
	var calls []Call
	if s.banks.Status() == viewstate.Failed {
		calls = append(calls, s.beginBanks())
	}
	f := query.Filter{Scope: s.scope}
	if s.summary.Status() == viewstate.Failed {
		calls = append(calls, Call{Target: TargetSummary, Token: s.summary.Begin(), Request: query.Build(query.KindSummary, f)})
	}
	if s.themes.Status() == viewstate.Failed {
		calls = append(calls, Call{Target: TargetThemes, Token: s.themes.Begin(), Request: query.Build(query.KindThemes, f)})
	}
	if s.sentiment.Status() == viewstate.Failed {
		calls = append(calls, Call{Target: TargetSentiment, Token: s.sentiment.Begin(), Request: query.Build(query.KindSentiment, f)})
	}
	if s.matrix.Status() == viewstate.Failed {
		calls = append(calls, Call{Target: TargetMatrix, Token: s.matrix.Begin(), Request: query.Build(query.KindThemeSentiment, f)})
	}
	for _, bank := range s.painPoints.Failed() {
		if r, ok := s.painPoints.Reissue(bank); ok {
			calls = append(calls, s.painPointsCall(r))
		}
	}
	for _, name := range s.openCards() {
		if c := s.cards[name]; c.reviews.Status() == viewstate.Failed {
			calls = append(calls, s.beginCard(c))
		}
	}
	return calls
}

// Loading reports whether any response is awaited.
func (s *State) Loading() bool {
	if s.banks.Loading() || s.summary.Loading() || s.themes.Loading() ||
		s.sentiment.Loading() || s.matrix.Loading() || s.painPoints.Pending() > 0 {
		return true
	}
	for _, c := range s.cards {
		if c.reviews.Loading() {
			return true
		}
	}
	return false
}

// Scope returns the selected scope.
func (s *State) Scope() model.Scope { return s.scope }

// PageSize returns the reviews page size.
func (s *State) PageSize() int { return s.pageSize }

// Palette returns the display palette.
func (s *State) Palette() metrics.Palette { return s.palette }
