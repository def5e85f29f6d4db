package dashboard

import (
	"sort"

	"github.com/abelbrown/cxdash/internal/guard"
	"github.com/abelbrown/cxdash/internal/model"
	"github.com/abelbrown/cxdash/internal/otel"
	"github.com/abelbrown/cxdash/internal/query"
	"github.com/abelbrown/cxdash/internal/viewstate"
)

// card is one expandable theme card of the reviews explorer.
type card struct {
	theme   string
	open    bool
	tab     model.SentimentLabel
	page    int
	reviews *viewstate.Slot[model.ReviewPage]
}

func (s *State) ensureCard(theme string) *card {
	c, ok := s.cards[theme]
	if !ok {
		c = &card{
			theme:   theme,
			tab:     model.Positive,
			page:    1,
			reviews: viewstate.NewSlot[model.ReviewPage](s.g, guard.Key("card/"+theme)),
		}
		s.cards[theme] = c
	}
	return c
}

func (s *State) beginCard(c *card) Call {
	f := query.Filter{
		Scope:     s.scope,
		Theme:     c.theme,
		Sentiment: c.tab,
		Page:      c.page,
		PageSize:  s.pageSize,
	}
	return Call{
		Target:  TargetCard,
		Name:    c.theme,
		Token:   c.reviews.Begin(),
		Request: query.Build(query.KindReviews, f),
	}
}

func (s *State) closeCard(c *card) {
	c.open = false
	c.reviews.Abandon()
	s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSlotAbandon, Comp: "dashboard", Slot: string(c.reviews.Key())})
}

// openCards returns the names of open cards in a stable order.
func (s *State) openCards() []string {
	var names []string
	for name, c := range s.cards {
		if c.open {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// pruneCards drops cards for themes no longer listed.
func (s *State) pruneCards(themes []model.Theme) {
	present := make(map[string]bool, len(themes))
	for _, t := range themes {
		present[t.Name] = true
	}
	for name, c := range s.cards {
		if !present[name] {
			s.closeCard(c)
			delete(s.cards, name)
		}
	}
}

// ToggleTheme opens or closes the card of theme. Opening fetches the
// current tab and page; closing discards any in-flight fetch.
func (s *State) ToggleTheme(theme string) []Call {
	c := s.ensureCard(theme)
	if c.open {
		s.closeCard(c)
		return nil
	}
	c.open = true
	return []Call{s.beginCard(c)}
}

// SetTab switches the card of theme to the given sentiment tab and back to
// page 1. Only positive and negative tabs exist.
func (s *State) SetTab(theme string, tab model.SentimentLabel) []Call {
	if tab != model.Positive && tab != model.Negative {
		return nil
	}
	c := s.ensureCard(theme)
	if c.tab == tab {
		return nil
	}
	c.tab = tab
	c.page = 1
	if !c.open {
		return nil
	}
	return []Call{s.beginCard(c)}
}

// SetPage moves the card of theme to page (at least 1).
func (s *State) SetPage(theme string, page int) []Call {
	if page < 1 {
		page = 1
	}
	c := s.ensureCard(theme)
	c.page = page
	if !c.open {
		return nil
	}
	return []Call{s.beginCard(c)}
}

// NextPage advances the card of theme when the loaded page says a next
// page exists.
func (s *State) NextPage(theme string) []Call {
	v, ok := s.Card(theme)
	if !ok || !v.Pager.HasNext {
		return nil
	}
	return s.SetPage(theme, v.Page+1)
}

// PrevPage goes back one page of the card of theme.
func (s *State) PrevPage(theme string) []Call {
	v, ok := s.Card(theme)
	if !ok || !v.Pager.HasPrev {
		return nil
	}
	return s.SetPage(theme, v.Page-1)
}

// CloseAll closes every open card, discarding in-flight fetches.
func (s *State) CloseAll() {
	for _, name := range s.openCards() {
		s.closeCard(s.cards[name])
	}
}
