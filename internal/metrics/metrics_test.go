package metrics

import (
	"math/rand"
	"testing"

	"github.com/abelbrown/cxdash/internal/model"
)

func TestSortThemesBySentiment(t *testing.T) {
	in := []model.Theme{
		{Name: "App", AvgSentiment: 0.4},
		{Name: "Fees", AvgSentiment: -0.6},
		{Name: "Staff", AvgSentiment: 0},
		{Name: "Queue", AvgSentiment: -0.6},
		{Name: "ATM", AvgSentiment: 0},
	}
	got := SortThemesBySentiment(in)
	want := []string{"Fees", "Queue", "Staff", "ATM", "App"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("got[%d] = %s, want %s", i, got[i].Name, name)
		}
	}
	if in[0].Name != "App" {
		t.Error("input slice must not be reordered")
	}
}

func TestSortThemesStableProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for round := 0; round < 100; round++ {
		n := rng.Intn(12)
		in := make([]model.Theme, n)
		for i := range in {
			// Few distinct values to force ties.
			in[i] = model.Theme{Name: string(rune('a' + i)), AvgSentiment: float64(rng.Intn(5)-2) / 2}
		}
		got := SortThemesBySentiment(in)
		index := make(map[string]int, n)
		for i, th := range in {
			index[th.Name] = i
		}
		for i := 1; i < len(got); i++ {
			if got[i-1].AvgSentiment > got[i].AvgSentiment {
				t.Fatalf("round %d: not non-decreasing at %d", round, i)
			}
			if got[i-1].AvgSentiment == got[i].AvgSentiment && index[got[i-1].Name] > index[got[i].Name] {
				t.Fatalf("round %d: tie order not preserved at %d", round, i)
			}
		}
	}
}

func TestSortThemesEmpty(t *testing.T) {
	if got := SortThemesBySentiment(nil); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestClassifyAndColor(t *testing.T) {
	p := DefaultPalette()
	tests := []struct {
		value float64
		pol   Polarity
		color string
	}{
		{0, PolarityPositive, p.Positive},
		{0.01, PolarityPositive, p.Positive},
		{-0.01, PolarityNegative, p.Negative},
		{-1, PolarityNegative, p.Negative},
		{1, PolarityPositive, p.Positive},
	}
	for _, tt := range tests {
		if got := Classify(tt.value); got != tt.pol {
			t.Errorf("Classify(%v) = %v, want %v", tt.value, got, tt.pol)
		}
		if got := ColorForSentiment(p, tt.value); got != tt.color {
			t.Errorf("ColorForSentiment(%v) = %s, want %s", tt.value, got, tt.color)
		}
	}
}

func TestPercentOf(t *testing.T) {
	tests := []struct {
		part, whole, want float64
	}{
		{5, 0, 0},
		{0, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{1, 8, 12.5},
		{10, 10, 100},
		{0, 7, 0},
	}
	for _, tt := range tests {
		if got := PercentOf(tt.part, tt.whole); got != tt.want {
			t.Errorf("PercentOf(%v, %v) = %v, want %v", tt.part, tt.whole, got, tt.want)
		}
	}
}

func TestStarRating(t *testing.T) {
	tests := []struct {
		rating        int
		filled, empty int
		stars         string
	}{
		{-2, 0, 5, "☆☆☆☆☆"},
		{0, 0, 5, "☆☆☆☆☆"},
		{3, 3, 2, "★★★☆☆"},
		{5, 5, 0, "★★★★★"},
		{9, 5, 0, "★★★★★"},
	}
	for _, tt := range tests {
		f, e := StarRating(tt.rating)
		if f != tt.filled || e != tt.empty {
			t.Errorf("StarRating(%d) = %d,%d want %d,%d", tt.rating, f, e, tt.filled, tt.empty)
		}
		if got := Stars(tt.rating); got != tt.stars {
			t.Errorf("Stars(%d) = %q, want %q", tt.rating, got, tt.stars)
		}
	}
}

func TestConfidencePercent(t *testing.T) {
	for conf, want := range map[float64]int{0: 0, 0.914: 91, 0.916: 92, 1: 100, 1.3: 100, -0.2: 0} {
		if got := ConfidencePercent(conf); got != want {
			t.Errorf("ConfidencePercent(%v) = %d, want %d", conf, got, want)
		}
	}
}

func TestBreakdownPercents(t *testing.T) {
	b := BreakdownPercents(model.SentimentBreakdown{Positive: 1, Neutral: 1, Negative: 1})
	if b.Total != 3 || b.PctPositive != 33.3 || b.PctNegative != 33.3 {
		t.Errorf("unexpected breakdown %+v", b)
	}
	empty := BreakdownPercents(model.SentimentBreakdown{})
	if empty.Total != 0 || empty.PctPositive != 0 {
		t.Errorf("empty breakdown should be all zero, got %+v", empty)
	}
}

func TestTopThemesFor(t *testing.T) {
	m := model.ThemeSentimentMatrix{
		Themes: []string{"App", "Fees", "Staff"},
		Cells: map[string]map[model.SentimentLabel]model.ThemeSentimentRow{
			"App":   {model.Negative: {Count: 2}},
			"Fees":  {model.Negative: {Count: 9}, model.Positive: {Count: 1}},
			"Staff": {model.Positive: {Count: 4}},
		},
	}
	got := TopThemesFor(m, model.Negative)
	if len(got) != 2 || got[0].Theme != "Fees" || got[1].Theme != "App" {
		t.Errorf("TopThemesFor(negative) = %+v", got)
	}
}

func TestPager(t *testing.T) {
	tests := []struct {
		name                string
		page, total, size   int
		pages               int
		prev, next, visible bool
	}{
		{"second of two", 2, 15, 10, 2, true, false, true},
		{"first of two", 1, 15, 10, 2, false, true, true},
		{"single page", 1, 7, 10, 1, false, false, false},
		{"empty", 1, 0, 10, 0, false, false, false},
		{"exact multiple", 3, 30, 10, 3, true, false, true},
		{"middle", 2, 31, 10, 4, true, true, true},
	}
	for _, tt := range tests {
		p := NewPager(tt.page, tt.total, tt.size)
		if p.TotalPages != tt.pages || p.HasPrev != tt.prev || p.HasNext != tt.next || p.Visible() != tt.visible {
			t.Errorf("%s: got %+v visible=%v", tt.name, p, p.Visible())
		}
	}
}

func TestPalette(t *testing.T) {
	p := DefaultPalette()
	if p.BankColor("CBE") != "#3498db" {
		t.Errorf("CBE color = %s", p.BankColor("CBE"))
	}
	if p.BankColor("Unknown Bank") != p.Fallback {
		t.Error("unknown bank should use the fallback color")
	}
	if p.SentimentLabelColor(model.Neutral) != p.Neutral {
		t.Error("neutral label color mismatch")
	}
	banks := p.ColorBanks([]string{"Dashen Bank", "Zemen"})
	if banks[0].Color != "#2ecc71" || banks[1].Color != p.Fallback || banks[1].Name != "Zemen" {
		t.Errorf("ColorBanks = %+v", banks)
	}
}
