package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/abelbrown/cxdash/internal/dashboard"
	"github.com/abelbrown/cxdash/internal/fetch"
	"github.com/abelbrown/cxdash/internal/metrics"
	"github.com/abelbrown/cxdash/internal/model"
	"github.com/abelbrown/cxdash/internal/viewstate"
)

func TestStatusLine(t *testing.T) {
	if statusLine(viewstate.Ready, nil, "*") != "" {
		t.Error("ready slots have no status line")
	}
	if got := statusLine(viewstate.Loading, nil, "*"); !strings.Contains(got, "loading") {
		t.Errorf("loading = %q", got)
	}
	got := statusLine(viewstate.Failed, &fetch.HTTPError{URL: "u", Status: 503}, "*")
	if !strings.Contains(got, "HTTP 503") || !strings.Contains(got, "r to retry") {
		t.Errorf("failed 503 = %q", got)
	}
	got = statusLine(viewstate.Failed, &fetch.ParseError{URL: "u", Reason: "x"}, "*")
	if strings.Contains(got, "retry") {
		t.Errorf("parse errors are not retryable: %q", got)
	}
}

func TestPainPointsRowsOfThree(t *testing.T) {
	var panels []dashboard.Panel
	for _, b := range []string{"A", "B", "C", "D"} {
		panels = append(panels, dashboard.Panel{Bank: b, Status: viewstate.Ready, Bars: []dashboard.ThemeBar{{Theme: "Login", AvgSentiment: -0.5}}})
	}
	out := renderPainPoints(panels, 120, "*")
	rowA, rowD := -1, -1
	for i, l := range strings.Split(out, "\n") {
		if rowA < 0 && strings.Contains(l, "│ A") && strings.Contains(l, "│ C") {
			rowA = i
		}
		if strings.Contains(l, "│ D") {
			rowD = i
		}
	}
	if rowA < 0 {
		t.Fatalf("first row should hold A..C side by side:\n%s", out)
	}
	if rowD <= rowA {
		t.Errorf("fourth panel should start a new row:\n%s", out)
	}
}

func TestRenderPainPanelFailed(t *testing.T) {
	out := renderPainPanel(dashboard.Panel{Bank: "CBE", Status: viewstate.Failed, Err: &fetch.HTTPError{Status: 500}}, 40, "*")
	if !strings.Contains(out, "CBE") || !strings.Contains(out, "HTTP 500") {
		t.Errorf("failed panel = %q", out)
	}
}

func TestRenderCardClosedAndEmpty(t *testing.T) {
	p := metrics.DefaultPalette()
	closed := renderCard(dashboard.CardView{Theme: "", ReviewCount: 1200}, p, false, 80, "*")
	if !strings.Contains(closed, model.UnknownTheme) || !strings.Contains(closed, "1,200 reviews") {
		t.Errorf("closed card = %q", closed)
	}

	empty := renderCard(dashboard.CardView{Theme: "Fees", Open: true, Tab: model.Negative, Status: viewstate.Ready}, p, true, 80, "*")
	if !strings.Contains(empty, "No negative reviews for this theme.") {
		t.Errorf("empty card = %q", empty)
	}
	if strings.Contains(empty, "Page") {
		t.Error("pager should be hidden for a single page")
	}
}

func TestRenderPager(t *testing.T) {
	out := renderPager(metrics.NewPager(2, 15, 10))
	if !strings.Contains(out, "Page 2 of 2") {
		t.Errorf("pager = %q", out)
	}
}

func TestRenderReview(t *testing.T) {
	r := model.Review{Rating: 3, TopicConfidence: 0.87, Text: strings.Repeat("long text ", 30), SentimentLabel: model.Positive, Date: "2025-03-01"}
	out := renderReview(r, metrics.DefaultPalette(), 80)
	if !strings.Contains(out, "★★★☆☆") || !strings.Contains(out, "87%") || !strings.Contains(out, "…") {
		t.Errorf("review = %q", out)
	}
}

func TestRenderKPIsFailed(t *testing.T) {
	out := renderKPIs(viewstate.Snapshot[model.Summary]{Status: viewstate.Failed, Err: errors.New("x")}, "*")
	if !strings.Contains(out, "Summary") || !strings.Contains(out, "x") {
		t.Errorf("kpis = %q", out)
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 4, "hel…"},
		{"héllo", 2, "h…"},
		{"hello", 1, "…"},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
