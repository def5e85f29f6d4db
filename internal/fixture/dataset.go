// Package fixture serves the review aggregation API from an in-memory
// dataset. It backs the package tests and the --demo mode of the commands.
package fixture

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/abelbrown/cxdash/internal/analysis"
	"github.com/abelbrown/cxdash/internal/metrics"
	"github.com/abelbrown/cxdash/internal/model"
	"github.com/abelbrown/cxdash/internal/store"
)

// Dataset is an immutable set of reviews plus the bank list.
type Dataset struct {
	banks   []string
	reviews []model.Review
}

// NewDataset builds a dataset. Banks are listed by name; banks that appear
// only in reviews are added.
func NewDataset(banks []string, reviews []model.Review) *Dataset {
	seen := make(map[string]bool)
	var all []string
	for _, b := range banks {
		if !seen[b] {
			seen[b] = true
			all = append(all, b)
		}
	}
	for _, r := range reviews {
		if r.BankName != "" && !seen[r.BankName] {
			seen[r.BankName] = true
			all = append(all, r.BankName)
		}
	}
	sort.Strings(all)
	return &Dataset{banks: all, reviews: append([]model.Review(nil), reviews...)}
}

// LoadDataset reads a JSON array of reviews.
func LoadDataset(r io.Reader) (*Dataset, error) {
	var reviews []model.Review
	if err := json.NewDecoder(r).Decode(&reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	return NewDataset(nil, reviews), nil
}

// LoadStore reads every bank and review out of st.
func LoadStore(st *store.Store) (*Dataset, error) {
	banks, err := st.Banks()
	if err != nil {
		return nil, fmt.Errorf("load banks: %w", err)
	}
	reviews, err := st.Reviews()
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	return NewDataset(banks, reviews), nil
}

var sampleThemes = []string{
	"Account Access",
	"Transaction Performance",
	"User Interface",
	"Customer Support",
	"Fees & Charges",
}

// themeMood shifts the sentiment of each sample theme.
var themeMood = []float64{-0.2, -0.35, 0.15, 0.05, -0.4}

var sampleText = map[model.SentimentLabel][]string{
	model.Positive: {"Works great, transfers are instant.", "Very easy to use.", "Support solved my issue fast.", "Best banking app so far."},
	model.Neutral:  {"It is okay.", "Does the job.", "Average experience overall."},
	model.Negative: {"App keeps crashing on login.", "Transfers fail all the time.", "OTP never arrives.", "Too many hidden charges."},
}

// Sample returns a deterministic demo dataset of three banks.
func Sample() *Dataset {
	banks := []string{"Abyssinia Bank", "CBE", "Dashen Bank"}
	// Per bank mood so the pain-point panels differ.
	bias := map[string]float64{"Abyssinia Bank": -0.25, "CBE": 0.05, "Dashen Bank": 0.2}

	rng := rand.New(rand.NewSource(42))
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var reviews []model.Review
	id := 0
	for _, bank := range banks {
		for i := 0; i < 120; i++ {
			id++
			t := rng.Intn(len(sampleThemes))
			theme := sampleThemes[t]
			score := round(clamp(rng.NormFloat64()*0.45+bias[bank]+themeMood[t], -1, 1), 3)
			label := analysis.LabelForScore(score)
			texts := sampleText[label]
			if i%17 == 0 {
				theme = "" // unassigned by the topic model
			}
			reviews = append(reviews, model.Review{
				ID:              fmt.Sprintf("r%04d", id),
				Text:            texts[rng.Intn(len(texts))],
				Rating:          int(math.Round(clamp((score+1)*2.5, 1, 5))),
				Date:            start.AddDate(0, 0, rng.Intn(300)).Format("2006-01-02"),
				BankName:        bank,
				SentimentScore:  score,
				SentimentLabel:  label,
				TopicConfidence: round(0.4+rng.Float64()*0.6, 3),
				Theme:           theme,
			})
		}
	}
	return NewDataset(banks, reviews)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Banks returns the bank names ordered by name.
func (d *Dataset) Banks() []string {
	return append([]string(nil), d.banks...)
}

// Len returns the number of reviews.
func (d *Dataset) Len() int { return len(d.reviews) }

// All returns a copy of every review.
func (d *Dataset) All() []model.Review {
	return append([]model.Review(nil), d.reviews...)
}

// isAllBanks reports whether a bank parameter means every bank. Like the
// real backend, the server accepts any casing of "all".
func isAllBanks(bank string) bool {
	return bank == "" || strings.EqualFold(bank, string(model.AllBanks))
}

// filter returns reviews for bank ("" or any casing of "all" means every
// bank), theme and sentiment ("" means any).
func (d *Dataset) filter(bank, theme string, label model.SentimentLabel) []model.Review {
	allBanks := isAllBanks(bank)
	var out []model.Review
	for _, r := range d.reviews {
		if !allBanks && r.BankName != bank {
			continue
		}
		if theme != "" && r.Theme != theme {
			continue
		}
		if label != "" && r.SentimentLabel != label {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Summary aggregates the KPI figures for bank.
func (d *Dataset) Summary(bank string) model.Summary {
	rows := d.filter(bank, "", "")
	if len(rows) == 0 {
		return model.Summary{}
	}
	var rating, sentiment float64
	var pos, neg int
	for _, r := range rows {
		rating += float64(r.Rating)
		sentiment += r.SentimentScore
		switch r.SentimentLabel {
		case model.Positive:
			pos++
		case model.Negative:
			neg++
		}
	}
	n := float64(len(rows))
	return model.Summary{
		TotalReviews: len(rows),
		AvgRating:    round(rating/n, 2),
		AvgSentiment: round(sentiment/n, 3),
		PctPositive:  metrics.PercentOf(float64(pos), n),
		PctNegative:  metrics.PercentOf(float64(neg), n),
	}
}

// Themes aggregates per-theme counts and average sentiment for bank,
// ordered by review count descending then name.
func (d *Dataset) Themes(bank string) []model.Theme {
	type acc struct {
		count int
		sum   float64
	}
	byTheme := make(map[string]*acc)
	for _, r := range d.filter(bank, "", "") {
		a, ok := byTheme[r.Theme]
		if !ok {
			a = &acc{}
			byTheme[r.Theme] = a
		}
		a.count++
		a.sum += r.SentimentScore
	}
	out := make([]model.Theme, 0, len(byTheme))
	for name, a := range byTheme {
		out = append(out, model.Theme{Name: name, ReviewCount: a.count, AvgSentiment: round(a.sum/float64(a.count), 3)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReviewCount != out[j].ReviewCount {
			return out[i].ReviewCount > out[j].ReviewCount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Sentiment counts reviews per label for bank.
func (d *Dataset) Sentiment(bank string) model.SentimentBreakdown {
	var b model.SentimentBreakdown
	for _, r := range d.filter(bank, "", "") {
		switch r.SentimentLabel {
		case model.Positive:
			b.Positive++
		case model.Negative:
			b.Negative++
		case model.Neutral:
			b.Neutral++
		}
	}
	return b
}

// ThemeSentiment aggregates (theme, label) cells for bank, ordered by theme
// then label.
func (d *Dataset) ThemeSentiment(bank string) []model.ThemeSentimentRow {
	type key struct {
		theme string
		label model.SentimentLabel
	}
	cells := make(map[key]*model.ThemeSentimentRow)
	sums := make(map[key]float64)
	for _, r := range d.filter(bank, "", "") {
		k := key{r.Theme, r.SentimentLabel}
		row, ok := cells[k]
		if !ok {
			row = &model.ThemeSentimentRow{
				Theme:          r.Theme,
				SentimentLabel: r.SentimentLabel,
				MinSentiment:   r.SentimentScore,
				MaxSentiment:   r.SentimentScore,
			}
			cells[k] = row
		}
		row.Count++
		sums[k] += r.SentimentScore
		row.MinSentiment = math.Min(row.MinSentiment, r.SentimentScore)
		row.MaxSentiment = math.Max(row.MaxSentiment, r.SentimentScore)
	}
	out := make([]model.ThemeSentimentRow, 0, len(cells))
	for k, row := range cells {
		row.AvgSentiment = round(sums[k]/float64(row.Count), 3)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Theme != out[j].Theme {
			return out[i].Theme < out[j].Theme
		}
		return out[i].SentimentLabel < out[j].SentimentLabel
	})
	return out
}

// Reviews returns one page of matching reviews ordered by topic confidence
// descending, and the total match count.
func (d *Dataset) Reviews(bank, theme string, label model.SentimentLabel, page, limit int) model.ReviewPage {
	rows := d.filter(bank, theme, label)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TopicConfidence > rows[j].TopicConfidence
	})
	total := len(rows)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	return model.ReviewPage{
		Reviews: append([]model.Review{}, rows[start:end]...),
		Total:   total,
		Page:    page,
		Limit:   limit,
	}
}
