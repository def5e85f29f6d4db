package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/cxdash/internal/dashboard"
	"github.com/abelbrown/cxdash/internal/metrics"
	"github.com/abelbrown/cxdash/internal/model"
)

// mockDispatch records dispatched calls instead of executing them.
type mockDispatch struct {
	batches [][]dashboard.Call
}

func (m *mockDispatch) dispatch(calls []dashboard.Call) tea.Cmd {
	m.batches = append(m.batches, calls)
	return func() tea.Msg { return nil }
}

func (m *mockDispatch) last() []dashboard.Call {
	if len(m.batches) == 0 {
		return nil
	}
	return m.batches[len(m.batches)-1]
}

func (m *mockDispatch) find(target dashboard.Target) (dashboard.Call, bool) {
	for i := len(m.batches) - 1; i >= 0; i-- {
		for _, c := range m.batches[i] {
			if c.Target == target {
				return c, true
			}
		}
	}
	return dashboard.Call{}, false
}

func newTestApp() (App, *mockDispatch) {
	mock := &mockDispatch{}
	state := dashboard.New(dashboard.Options{Palette: metrics.DefaultPalette(), PageSize: 10})
	app := NewApp(state, mock.dispatch, Options{})
	app.ready = true
	app.width = 140
	app.height = 60
	return app, mock
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ := a.Update(msg)
		a = m.(App)
	}
	return a
}

func respond(a App, c dashboard.Call, v any) App {
	m, _ := a.Update(ResponseMsg{Response: dashboard.Response{Call: c, Value: v}})
	return m.(App)
}

// loadAll initializes the app and answers every initial call.
func loadAll(t *testing.T, a App, mock *mockDispatch) App {
	t.Helper()
	a.Init()
	for _, c := range mock.last() {
		switch c.Target {
		case dashboard.TargetBanks:
			a = respond(a, c, []string{"Abyssinia Bank", "CBE"})
		case dashboard.TargetSummary:
			a = respond(a, c, model.Summary{TotalReviews: 1234, AvgRating: 3.4, PctPositive: 40, PctNegative: 35.5})
		case dashboard.TargetThemes:
			a = respond(a, c, []model.Theme{{Name: "Fees", ReviewCount: 15, AvgSentiment: -0.4}, {Name: "App", ReviewCount: 3, AvgSentiment: 0.2}})
		case dashboard.TargetSentiment:
			a = respond(a, c, model.SentimentBreakdown{Positive: 4, Negative: 4, Neutral: 2})
		case dashboard.TargetMatrix:
			a = respond(a, c, model.ThemeSentimentMatrix{})
		}
	}
	for _, c := range mock.last() {
		if c.Target == dashboard.TargetPainPoints {
			a = respond(a, c, []model.Theme{{Name: "Login", AvgSentiment: -0.5}, {Name: "Speed", AvgSentiment: 0.3}})
		}
	}
	return a
}

func TestAppInit(t *testing.T) {
	app, mock := newTestApp()
	if cmd := app.Init(); cmd == nil {
		t.Fatal("Init should return a command")
	}
	if len(mock.batches) != 1 || len(mock.batches[0]) != 5 {
		t.Fatalf("Init should dispatch banks and four panel queries, got %+v", mock.batches)
	}
}

func TestAppInitNilDispatch(t *testing.T) {
	app := NewApp(dashboard.New(dashboard.Options{}), nil, Options{})
	if app.Init() == nil {
		t.Error("Init should still return the spinner tick")
	}
}

func TestBanksTriggerPainPoints(t *testing.T) {
	app, mock := newTestApp()
	app = loadAll(t, app, mock)

	panels := app.State().PainPoints()
	if len(panels) != 2 {
		t.Fatalf("expected 2 pain-point panels, got %d", len(panels))
	}
	if app.State().Loading() {
		t.Error("everything answered, should not be loading")
	}
}

func TestBankSelection(t *testing.T) {
	app, mock := newTestApp()
	app = loadAll(t, app, mock)

	app = press(t, app, "down", "down", "down")
	if app.BankCursor() != 2 {
		t.Fatalf("cursor should stop at last bank, got %d", app.BankCursor())
	}
	app = press(t, app, "enter")
	if app.State().Scope() != "CBE" {
		t.Errorf("scope = %s, want CBE", app.State().Scope())
	}
	c, _ := mock.find(dashboard.TargetSummary)
	if c.Request.Params.Get("bank") != "CBE" {
		t.Errorf("summary request = %s", c.Request)
	}

	app = press(t, app, "up", "up", "enter")
	if !app.State().Scope().IsAll() {
		t.Errorf("scope = %s, want All", app.State().Scope())
	}
}

func TestStaleResponseNotShown(t *testing.T) {
	app, mock := newTestApp()
	app = loadAll(t, app, mock)

	app = press(t, app, "down", "enter")
	first, _ := mock.find(dashboard.TargetSummary)
	app = press(t, app, "down", "enter")
	second, _ := mock.find(dashboard.TargetSummary)

	app = respond(app, second, model.Summary{TotalReviews: 2})
	app = respond(app, first, model.Summary{TotalReviews: 1})
	if got := app.State().Summary().Value.TotalReviews; got != 2 {
		t.Errorf("summary total = %d, want 2 (latest scope)", got)
	}
}

func TestExplorerCardFlow(t *testing.T) {
	app, mock := newTestApp()
	app = loadAll(t, app, mock)

	app = press(t, app, "tab")
	if app.Focus() != FocusExplorer {
		t.Fatal("tab should focus the explorer")
	}
	app = press(t, app, "space")
	open := mock.last()
	if len(open) != 1 || open[0].Request.Params.Get("theme") != "Fees" {
		t.Fatalf("open should fetch Fees reviews, got %+v", open)
	}

	reviews := make([]model.Review, 10)
	for i := range reviews {
		reviews[i] = model.Review{ID: "r", Rating: 4, Text: "Fine", SentimentLabel: model.Positive, TopicConfidence: 0.8}
	}
	app = respond(app, open[0], model.ReviewPage{Reviews: reviews, Total: 15, Page: 1, Limit: 10})
	if view := app.View(); !strings.Contains(view, "Page 1 of 2") {
		t.Errorf("explorer should show pager, got:\n%s", view)
	}

	app = press(t, app, "right")
	next := mock.last()
	if len(next) != 1 || next[0].Request.Params.Get("page") != "2" {
		t.Fatalf("right should fetch page 2, got %+v", next)
	}

	app = press(t, app, "n")
	neg := mock.last()
	if neg[0].Request.Params.Get("sentiment") != "negative" || neg[0].Request.Params.Get("page") != "1" {
		t.Errorf("n should fetch negative page 1, got %s", neg[0].Request)
	}
	app = respond(app, neg[0], model.ReviewPage{Page: 1, Limit: 10})
	if view := app.View(); !strings.Contains(view, "No negative reviews for this theme.") {
		t.Errorf("empty tab should say so, got:\n%s", view)
	}

	app = press(t, app, "down")
	if app.ThemeCursor() != 1 {
		t.Errorf("theme cursor = %d", app.ThemeCursor())
	}
	app = press(t, app, "down")
	if app.ThemeCursor() != 1 {
		t.Error("theme cursor should stop at last theme")
	}
}

func TestRetryKey(t *testing.T) {
	app, mock := newTestApp()
	app.Init()
	for _, c := range mock.last() {
		if c.Target == dashboard.TargetSummary {
			m, _ := app.Update(ResponseMsg{Response: dashboard.Response{Call: c, Err: errTest}})
			app = m.(App)
		}
	}
	before := len(mock.batches)
	app = press(t, app, "r")
	if len(mock.batches) != before+1 || mock.last()[0].Target != dashboard.TargetSummary {
		t.Errorf("r should retry the failed summary, got %+v", mock.last())
	}
}

type testError string

func (e testError) Error() string { return string(e) }

const errTest = testError("boom")

func TestQuit(t *testing.T) {
	app, _ := newTestApp()
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestOverviewView(t *testing.T) {
	app, mock := newTestApp()
	app = loadAll(t, app, mock)
	view := app.View()
	for _, want := range []string{"Banks", "All", "CBE", "1,234", "Pain Points", "Login", "Themes", "Sentiment"} {
		if !strings.Contains(view, want) {
			t.Errorf("overview should contain %q", want)
		}
	}
}

func TestViewBeforeReady(t *testing.T) {
	app := NewApp(dashboard.New(dashboard.Options{}), nil, Options{})
	if app.View() != "Loading..." {
		t.Error("view before window size should be a placeholder")
	}
}

func TestWindowSize(t *testing.T) {
	app := NewApp(dashboard.New(dashboard.Options{}), nil, Options{})
	m, _ := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	updated := m.(App)
	if !updated.ready || updated.width != 100 || updated.height != 40 {
		t.Error("window size should be recorded")
	}
}
