package ui

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/abelbrown/cxdash/internal/dashboard"
	"github.com/abelbrown/cxdash/internal/fetch"
	"github.com/abelbrown/cxdash/internal/metrics"
	"github.com/abelbrown/cxdash/internal/model"
	"github.com/abelbrown/cxdash/internal/viewstate"
)

// panelsPerRow caps pain-points panels side by side.
const panelsPerRow = 3

// statusLine renders the placeholder for a slot that is not Ready.
// Returns "" for Ready slots.
func statusLine(status viewstate.Status, err error, spin string) string {
	switch status {
	case viewstate.Idle:
		return Muted.Render("…")
	case viewstate.Loading:
		return spin + Muted.Render(" loading")
	case viewstate.Failed:
		msg := fetch.Describe(err)
		if fetch.IsRetryable(err) {
			msg += " · r to retry"
		}
		return ErrorStyle.Render("✗ " + msg)
	}
	return ""
}

// renderSidebar renders the bank list. Row 0 is "All".
func renderSidebar(banks viewstate.Snapshot[[]model.Bank], scope model.Scope, cursor int, focused bool, spin string, height int) string {
	lines := []string{SectionTitle.Render("Banks"), ""}

	row := func(i int, label string, selected bool) string {
		mark := "  "
		if selected {
			mark = "● "
		}
		s := mark + label
		if focused && i == cursor {
			return SelectedItem.Render(s)
		}
		return NormalItem.Render(s)
	}

	lines = append(lines, row(0, "All", scope.IsAll()))
	if st := statusLine(banks.Status, banks.Err, spin); st != "" {
		lines = append(lines, st)
	}
	for i, b := range banks.Value {
		swatch := fg(b.Color).Render("■")
		lines = append(lines, row(i+1, swatch+" "+b.Name, scope.Bank() == b.Name))
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	return Sidebar.Render(strings.Join(lines, "\n"))
}

// renderKPIs renders the summary strip.
func renderKPIs(snap viewstate.Snapshot[model.Summary], spin string) string {
	if st := statusLine(snap.Status, snap.Err, spin); st != "" {
		return SectionTitle.Render("Summary") + "  " + st
	}
	s := snap.Value
	parts := []string{
		Muted.Render("Reviews ") + KPIValue.Render(humanize.Comma(int64(s.TotalReviews))),
		Muted.Render("Avg rating ") + KPIValue.Render(fmt.Sprintf("%.2f", s.AvgRating)) + " " + metrics.Stars(int(math.Round(s.AvgRating))),
		Muted.Render("Avg sentiment ") + KPIValue.Render(fmt.Sprintf("%+.3f", s.AvgSentiment)),
		Muted.Render("Positive ") + KPIValue.Render(fmt.Sprintf("%.1f%%", s.PctPositive)),
		Muted.Render("Negative ") + KPIValue.Render(fmt.Sprintf("%.1f%%", s.PctNegative)),
	}
	return strings.Join(parts, Muted.Render("  │  "))
}

// renderThemeBars renders the theme distribution as horizontal bars sized
// by review count.
func renderThemeBars(status viewstate.Status, err error, bars []dashboard.ThemeBar, width int, spin string) string {
	lines := []string{SectionTitle.Render("Themes")}
	if st := statusLine(status, err, spin); st != "" {
		return strings.Join(append(lines, st), "\n")
	}
	if len(bars) == 0 {
		return strings.Join(append(lines, Muted.Render("No themes.")), "\n")
	}

	maxCount := 0
	for _, b := range bars {
		maxCount = max(maxCount, b.ReviewCount)
	}
	nameW := 22
	barW := max(width-nameW-16, 4)
	for _, b := range bars {
		n := 0
		if maxCount > 0 {
			n = int(math.Round(float64(b.ReviewCount) / float64(maxCount) * float64(barW)))
		}
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			padRight(truncateRunes(b.Theme, nameW), nameW),
			fg(b.Color).Render(strings.Repeat("█", n))+strings.Repeat(" ", barW-n),
			padLeft(humanize.Comma(int64(b.ReviewCount)), 6),
			fg(b.Color).Render(fmt.Sprintf("%+.2f", b.AvgSentiment)),
		))
	}
	return strings.Join(lines, "\n")
}

// renderDonut renders the sentiment breakdown as one proportional bar with
// a legend.
func renderDonut(d dashboard.Donut, p metrics.Palette, width int, spin string) string {
	lines := []string{SectionTitle.Render("Sentiment")}
	if st := statusLine(d.Status, d.Err, spin); st != "" {
		return strings.Join(append(lines, st), "\n")
	}
	if d.Breakdown.Total == 0 {
		return strings.Join(append(lines, Muted.Render("No reviews.")), "\n")
	}

	barW := max(width, 10)
	pos := int(math.Round(d.Breakdown.PctPositive / 100 * float64(barW)))
	neg := int(math.Round(d.Breakdown.PctNegative / 100 * float64(barW)))
	neu := max(barW-pos-neg, 0)
	lines = append(lines,
		fg(p.Positive).Render(strings.Repeat("█", pos))+
			fg(p.Neutral).Render(strings.Repeat("█", neu))+
			fg(p.Negative).Render(strings.Repeat("█", neg)),
		fmt.Sprintf("%s %.1f%%  %s %.1f%%  %s %.1f%%  %s",
			fg(p.Positive).Render("■ positive"), d.Breakdown.PctPositive,
			fg(p.Neutral).Render("■ neutral"), d.Breakdown.PctNeutral,
			fg(p.Negative).Render("■ negative"), d.Breakdown.PctNegative,
			Muted.Render("total "+humanize.Comma(int64(d.Breakdown.Total))),
		),
	)
	return strings.Join(lines, "\n")
}

// renderPainPanel renders one bank's themes, most negative first, as bars
// diverging from a zero axis.
func renderPainPanel(p dashboard.Panel, width int, spin string) string {
	lines := []string{fg(p.BankColor).Bold(true).Render(p.Bank)}
	if st := statusLine(p.Status, p.Err, spin); st != "" {
		lines = append(lines, st)
		return Panel.Width(width).Render(strings.Join(lines, "\n"))
	}
	if len(p.Bars) == 0 {
		lines = append(lines, Muted.Render("No themes."))
		return Panel.Width(width).Render(strings.Join(lines, "\n"))
	}

	nameW := min(18, max(width/2-2, 6))
	half := max((width-nameW-4)/2, 2)
	for _, b := range p.Bars {
		n := int(math.Round(math.Min(math.Abs(b.AvgSentiment), 1) * float64(half)))
		bar := fg(b.Color).Render(strings.Repeat("█", n))
		var left, right string
		if b.AvgSentiment < 0 {
			left = strings.Repeat(" ", half-n) + bar
			right = strings.Repeat(" ", half)
		} else {
			left = strings.Repeat(" ", half)
			right = bar + strings.Repeat(" ", half-n)
		}
		lines = append(lines, padRight(truncateRunes(b.Theme, nameW), nameW)+" "+left+"│"+right)
	}
	return Panel.Width(width).Render(strings.Join(lines, "\n"))
}

// renderPainPoints lays panels out at most three per row.
func renderPainPoints(panels []dashboard.Panel, width int, spin string) string {
	title := SectionTitle.Render("Pain Points ← → Drivers")
	if len(panels) == 0 {
		return title + "\n" + Muted.Render("Waiting for banks…")
	}
	perRow := min(panelsPerRow, len(panels))
	panelW := max(width/perRow-2, 20)

	rows := []string{title}
	for i := 0; i < len(panels); i += perRow {
		var row []string
		for _, p := range panels[i:min(i+perRow, len(panels))] {
			row = append(row, renderPainPanel(p, panelW, spin))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return strings.Join(rows, "\n")
}

// renderDrivers lists the themes carrying the most positive and the most
// negative reviews, from the theme x sentiment matrix.
func renderDrivers(snap viewstate.Snapshot[model.ThemeSentimentMatrix], p metrics.Palette, spin string) string {
	lines := []string{SectionTitle.Render("Top drivers")}
	if st := statusLine(snap.Status, snap.Err, spin); st != "" {
		return strings.Join(append(lines, st), "\n")
	}
	pos := metrics.TopThemesFor(snap.Value, model.Positive)
	neg := metrics.TopThemesFor(snap.Value, model.Negative)
	for i := 0; i < min(3, max(len(pos), len(neg))); i++ {
		var l, r string
		if i < len(pos) {
			l = fmt.Sprintf("%s %s", fg(p.Positive).Render("▲"), labelCount(pos[i]))
		}
		if i < len(neg) {
			r = fmt.Sprintf("%s %s", fg(p.Negative).Render("▼"), labelCount(neg[i]))
		}
		lines = append(lines, padRight(l, 34)+"  "+r)
	}
	if len(lines) == 1 {
		lines = append(lines, Muted.Render("No data."))
	}
	return strings.Join(lines, "\n")
}

func labelCount(lc metrics.LabelCount) string {
	return truncateRunes(lc.Theme, 24) + " " + Muted.Render(humanize.Comma(int64(lc.Count)))
}

// renderCard renders one explorer card. Closed cards are a single header
// line; open cards show the tab strip, reviews and pager.
func renderCard(v dashboard.CardView, p metrics.Palette, selected bool, width int, spin string) string {
	arrow := "▸"
	if v.Open {
		arrow = "▾"
	}
	head := fmt.Sprintf("%s %s  %s  %s", arrow, lipgloss.NewStyle().Bold(true).Render(model.Theme{Name: v.Theme}.DisplayName()),
		Muted.Render(humanize.Comma(int64(v.ReviewCount))+" reviews"),
		fg(metrics.ColorForSentiment(p, v.AvgSentiment)).Render(fmt.Sprintf("avg %+.2f", v.AvgSentiment)))

	lines := []string{head}
	if v.Open {
		lines = append(lines, renderTabs(v.Tab, p))
		switch {
		case v.Status != viewstate.Ready:
			lines = append(lines, statusLine(v.Status, v.Err, spin))
		case v.Empty():
			lines = append(lines, Muted.Render(v.EmptyText()))
		default:
			for _, r := range v.Reviews {
				lines = append(lines, renderReview(r, p, width-4))
			}
			if v.Pager.Visible() {
				lines = append(lines, renderPager(v.Pager))
			}
		}
	}

	style := Card
	if selected {
		style = ActiveCard
	}
	return style.Width(max(width-2, 20)).Render(strings.Join(lines, "\n"))
}

func renderTabs(tab model.SentimentLabel, p metrics.Palette) string {
	pos, neg := InactiveTab.Render("Positive"), InactiveTab.Render("Negative")
	if tab == model.Negative {
		neg = ActiveTab.Inherit(fg(p.Negative)).Render("Negative")
	} else {
		pos = ActiveTab.Inherit(fg(p.Positive)).Render("Positive")
	}
	return pos + "  " + neg
}

// renderReview renders one review line: stars, confidence, date and text.
func renderReview(r model.Review, p metrics.Palette, width int) string {
	conf := metrics.ConfidencePercent(r.TopicConfidence)
	confBar := strings.Repeat("▮", conf/20) + strings.Repeat("▯", 5-conf/20)
	meta := fmt.Sprintf("%s %s %3d%% %s ", fg(p.SentimentLabelColor(r.SentimentLabel)).Render(metrics.Stars(r.Rating)),
		Muted.Render(confBar), conf, Muted.Render(r.Date))
	textW := max(width-lipgloss.Width(meta), 10)
	return meta + truncateRunes(r.Text, textW)
}

// renderPager renders "‹ Page p of n ›" with unavailable arrows muted.
func renderPager(pg metrics.Pager) string {
	prev, next := Muted.Render("‹"), Muted.Render("›")
	if pg.HasPrev {
		prev = StatusBarKey.Render("‹")
	}
	if pg.HasNext {
		next = StatusBarKey.Render("›")
	}
	return fmt.Sprintf("%s Page %d of %d %s", prev, pg.Page, pg.TotalPages, next)
}

// truncateRunes shortens s to at most n runes, marking the cut with "…".
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func padRight(s string, w int) string {
	if d := w - lipgloss.Width(s); d > 0 {
		return s + strings.Repeat(" ", d)
	}
	return s
}

func padLeft(s string, w int) string {
	if d := w - lipgloss.Width(s); d > 0 {
		return strings.Repeat(" ", d) + s
	}
	return s
}
