// Package model defines the read-only records served by the review
// aggregation API and shared by every dashboard layer.
//
// All records are values. Results are replaced wholesale when a newer
// response is applied, never mutated in place.
package model

// AllBanks is the scope value meaning "no bank filter".
const AllBanks Scope = "All"

// UnknownTheme is shown for reviews the topic model could not assign.
const UnknownTheme = "Unknown"

// Scope is either AllBanks or a single bank name.
type Scope string

// IsAll reports whether the scope covers every bank: exactly AllBanks, or
// the zero Scope. Any other value, "all" included, names a bank.
func (s Scope) IsAll() bool {
	return s == "" || s == AllBanks
}

// Bank returns the bank name, or "" for the all-banks scope.
func (s Scope) Bank() string {
	if s.IsAll() {
		return ""
	}
	return string(s)
}

func (s Scope) String() string {
	if s.IsAll() {
		return string(AllBanks)
	}
	return string(s)
}

// Bank is a bank as shown in the sidebar. Color comes from the configured
// palette, not from the API.
type Bank struct {
	Name  string
	Color string
}

// SentimentLabel is the categorical sentiment assigned to a review.
type SentimentLabel string

const (
	Positive SentimentLabel = "positive"
	Neutral  SentimentLabel = "neutral"
	Negative SentimentLabel = "negative"
)

// Valid reports whether l is one of the three known labels.
func (l SentimentLabel) Valid() bool {
	switch l {
	case Positive, Neutral, Negative:
		return true
	}
	return false
}

// Theme is one row of the per-theme aggregate for a scope.
type Theme struct {
	Name         string  `json:"theme"`
	ReviewCount  int     `json:"review_count"`
	AvgSentiment float64 `json:"avg_sentiment"`
}

// DisplayName returns the theme name, or UnknownTheme when the API sent null.
func (t Theme) DisplayName() string {
	if t.Name == "" {
		return UnknownTheme
	}
	return t.Name
}

// Review is a single customer review.
type Review struct {
	ID              string         `json:"review_id"`
	Text            string         `json:"review_text"`
	Rating          int            `json:"rating"`
	Date            string         `json:"review_date,omitempty"`
	BankName        string         `json:"bank_name"`
	SentimentScore  float64        `json:"sentiment_score"`
	SentimentLabel  SentimentLabel `json:"sentiment_label"`
	TopicConfidence float64        `json:"topic_confidence"`
	Theme           string         `json:"theme"`
}

// ReviewPage is one page of reviews plus the total matching the filter.
type ReviewPage struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
}

// SentimentBreakdown counts reviews per sentiment label.
type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Total is the sum of the three counts.
func (b SentimentBreakdown) Total() int {
	return b.Positive + b.Negative + b.Neutral
}

// Summary holds the KPI strip figures. Aggregates over an empty dataset
// decode as zero.
type Summary struct {
	TotalReviews int     `json:"total_reviews"`
	AvgRating    float64 `json:"avg_rating"`
	AvgSentiment float64 `json:"avg_sentiment"`
	PctPositive  float64 `json:"pct_positive"`
	PctNegative  float64 `json:"pct_negative"`
}

// ThemeSentimentRow is one (theme, label) cell of the theme x sentiment
// aggregate as the API returns it.
type ThemeSentimentRow struct {
	Theme          string         `json:"theme"`
	SentimentLabel SentimentLabel `json:"sentiment_label"`
	Count          int            `json:"count"`
	AvgSentiment   float64        `json:"avg_sentiment"`
	MinSentiment   float64        `json:"min_sentiment"`
	MaxSentiment   float64        `json:"max_sentiment"`
}

// ThemeSentimentMatrix is the pivoted form of []ThemeSentimentRow.
type ThemeSentimentMatrix struct {
	Themes []string // first-seen order
	Cells  map[string]map[SentimentLabel]ThemeSentimentRow
}

// Cell returns the cell for theme and label, or the zero row.
func (m ThemeSentimentMatrix) Cell(theme string, label SentimentLabel) ThemeSentimentRow {
	if m.Cells == nil {
		return ThemeSentimentRow{}
	}
	return m.Cells[theme][label]
}

// Count returns the number of reviews in theme carrying label.
func (m ThemeSentimentMatrix) Count(theme string, label SentimentLabel) int {
	return m.Cell(theme, label).Count
}
