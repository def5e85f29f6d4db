// Package metrics computes the derived figures shown on the dashboard:
// sort orders, percentages, classifications, star ratings and pagination.
//
// Every function is pure.
package metrics

import (
	"math"
	"sort"
	"strings"

	"github.com/abelbrown/cxdash/internal/model"
)

// Polarity is the two-way classification used for coloring.
type Polarity int

const (
	PolarityPositive Polarity = iota
	PolarityNegative
)

func (p Polarity) String() string {
	if p == PolarityNegative {
		return "negative"
	}
	return "positive"
}

// SortThemesBySentiment returns a copy of themes ordered by ascending
// average sentiment, most negative first. Ties keep their input order.
func SortThemesBySentiment(themes []model.Theme) []model.Theme {
	out := make([]model.Theme, len(themes))
	copy(out, themes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvgSentiment < out[j].AvgSentiment
	})
	return out
}

// Classify maps a sentiment value to a polarity. Zero is positive.
func Classify(value float64) Polarity {
	if value < 0 {
		return PolarityNegative
	}
	return PolarityPositive
}

// ColorForSentiment returns the palette color for value: positive for
// value >= 0, negative otherwise.
func ColorForSentiment(p Palette, value float64) string {
	if Classify(value) == PolarityNegative {
		return p.Negative
	}
	return p.Positive
}

// PercentOf returns part as a percentage of whole, rounded to one decimal.
// A zero whole yields 0.
func PercentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(part/whole*1000) / 10
}

// MaxStars is the top of the rating scale.
const MaxStars = 5

// StarRating splits a rating into filled and empty stars, clamping it to
// [0, MaxStars].
func StarRating(rating int) (filled, empty int) {
	filled = min(max(rating, 0), MaxStars)
	return filled, MaxStars - filled
}

// Stars renders a rating as "★★★☆☆".
func Stars(rating int) string {
	filled, empty := StarRating(rating)
	return strings.Repeat("★", filled) + strings.Repeat("☆", empty)
}

// ConfidencePercent renders a topic confidence in [0, 1] as a whole
// percentage, clamped to [0, 100].
func ConfidencePercent(conf float64) int {
	return min(max(int(math.Round(conf*100)), 0), 100)
}

// Breakdown is a sentiment breakdown with its percentages.
type Breakdown struct {
	Total       int
	PctPositive float64
	PctNeutral  float64
	PctNegative float64
}

// BreakdownPercents computes the share of each label in b.
func BreakdownPercents(b model.SentimentBreakdown) Breakdown {
	total := float64(b.Total())
	return Breakdown{
		Total:       b.Total(),
		PctPositive: PercentOf(float64(b.Positive), total),
		PctNeutral:  PercentOf(float64(b.Neutral), total),
		PctNegative: PercentOf(float64(b.Negative), total),
	}
}

// LabelCount is one theme's review count for a single label.
type LabelCount struct {
	Theme string
	Count int
}

// TopThemesFor returns themes ordered by how many reviews carry label in m,
// highest first, skipping themes with none. Ties keep matrix order.
func TopThemesFor(m model.ThemeSentimentMatrix, label model.SentimentLabel) []LabelCount {
	var out []LabelCount
	for _, th := range m.Themes {
		if n := m.Count(th, label); n > 0 {
			out = append(out, LabelCount{Theme: th, Count: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
