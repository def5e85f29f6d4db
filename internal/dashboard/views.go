package dashboard

import (
	"fmt"

	"github.com/abelbrown/cxdash/internal/metrics"
	"github.com/abelbrown/cxdash/internal/model"
	"github.com/abelbrown/cxdash/internal/viewstate"
)

// Banks returns the sidebar bank list with palette colors. The returned
// slice is a copy.
func (s *State) Banks() viewstate.Snapshot[[]model.Bank] {
	snap := s.banks.Snapshot()
	return viewstate.Snapshot[[]model.Bank]{
		Status: snap.Status,
		Value:  s.palette.ColorBanks(snap.Value),
		Err:    snap.Err,
	}
}

// Summary returns the KPI strip slot.
func (s *State) Summary() viewstate.Snapshot[model.Summary] {
	return s.summary.Snapshot()
}

// Themes returns the theme distribution slot, in API order.
func (s *State) Themes() viewstate.Snapshot[[]model.Theme] {
	snap := s.themes.Snapshot()
	snap.Value = append([]model.Theme(nil), snap.Value...)
	return snap
}

// Matrix returns the theme x sentiment slot.
func (s *State) Matrix() viewstate.Snapshot[model.ThemeSentimentMatrix] {
	return s.matrix.Snapshot()
}

// Donut is the sentiment breakdown with its percentages.
type Donut struct {
	Status    viewstate.Status
	Err       error
	Counts    model.SentimentBreakdown
	Breakdown metrics.Breakdown
}

// Donut returns the sentiment breakdown panel.
func (s *State) Donut() Donut {
	snap := s.sentiment.Snapshot()
	return Donut{
		Status:    snap.Status,
		Err:       snap.Err,
		Counts:    snap.Value,
		Breakdown: metrics.BreakdownPercents(snap.Value),
	}
}

// ThemeBar is one bar of a pain-points panel.
type ThemeBar struct {
	Theme        string
	AvgSentiment float64
	ReviewCount  int
	Color        string
}

// Panel is the pain-points panel of one bank.
type Panel struct {
	Bank      string
	BankColor string
	Status    viewstate.Status
	Err       error
	Bars      []ThemeBar // most negative first
}

// PainPoints returns one panel per bank of the current round, in bank-list
// order. Each panel's themes are sorted by ascending sentiment and colored
// by polarity.
func (s *State) PainPoints() []Panel {
	entries := s.painPoints.Entries()
	panels := make([]Panel, 0, len(entries))
	for _, e := range entries {
		p := Panel{
			Bank:      e.Entity,
			BankColor: s.palette.BankColor(e.Entity),
			Status:    e.Status,
			Err:       e.Err,
		}
		for _, th := range metrics.SortThemesBySentiment(e.Value) {
			p.Bars = append(p.Bars, ThemeBar{
				Theme:        th.DisplayName(),
				AvgSentiment: th.AvgSentiment,
				ReviewCount:  th.ReviewCount,
				Color:        metrics.ColorForSentiment(s.palette, th.AvgSentiment),
			})
		}
		panels = append(panels, p)
	}
	return panels
}

// CardView is the presentation state of one theme card.
type CardView struct {
	Theme        string
	ReviewCount  int
	AvgSentiment float64
	Open         bool
	Tab          model.SentimentLabel
	Page         int
	Status       viewstate.Status
	Err          error
	Reviews      []model.Review
	Total        int
	Pager        metrics.Pager
}

// Empty reports whether a loaded card has no reviews for its tab.
func (v CardView) Empty() bool {
	return v.Status == viewstate.Ready && len(v.Reviews) == 0
}

// EmptyText is the message shown for an empty card.
func (v CardView) EmptyText() string {
	return fmt.Sprintf("No %s reviews for this theme.", v.Tab)
}

// Card returns the view of the card for theme. A theme whose card was
// never touched reports a closed card on the positive tab.
func (s *State) Card(theme string) (CardView, bool) {
	var info model.Theme
	found := false
	for _, th := range s.themes.Value() {
		if th.Name == theme {
			info, found = th, true
			break
		}
	}
	c, ok := s.cards[theme]
	if !found && !ok {
		return CardView{}, false
	}

	v := CardView{
		Theme:        theme,
		ReviewCount:  info.ReviewCount,
		AvgSentiment: info.AvgSentiment,
		Tab:          model.Positive,
		Page:         1,
	}
	if ok {
		page := c.reviews.Value()
		v.Open = c.open
		v.Tab = c.tab
		v.Page = c.page
		v.Status = c.reviews.Status()
		v.Err = c.reviews.Err()
		v.Reviews = page.Reviews
		v.Total = page.Total
		v.Pager = metrics.NewPager(c.page, page.Total, s.pageSize)
	}
	return v, true
}

// Cards returns a view per theme of the current theme list, in list order.
func (s *State) Cards() []CardView {
	themes := s.themes.Value()
	out := make([]CardView, 0, len(themes))
	for _, th := range themes {
		if v, ok := s.Card(th.Name); ok {
			out = append(out, v)
		}
	}
	return out
}

// KPIs returns the summary strip values. Zero values stand in while the
// summary is not Ready.
func (s *State) KPIs() model.Summary {
	return s.summary.Value()
}

// ThemeBars returns the theme distribution as bars colored by polarity,
// in API order (most reviewed first).
func (s *State) ThemeBars() []ThemeBar {
	themes := s.themes.Value()
	bars := make([]ThemeBar, len(themes))
	for i, th := range themes {
		bars[i] = ThemeBar{
			Theme:        th.DisplayName(),
			AvgSentiment: th.AvgSentiment,
			ReviewCount:  th.ReviewCount,
			Color:        metrics.ColorForSentiment(s.palette, th.AvgSentiment),
		}
	}
	return bars
}
