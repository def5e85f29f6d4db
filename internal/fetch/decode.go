package fetch

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/abelbrown/cxdash/internal/model"
	"github.com/abelbrown/cxdash/internal/query"
)

var (
	errInvalidJSON = errors.New("invalid JSON")
	errNotArray    = errors.New("expected a JSON array")
	errNotObject   = errors.New("expected a JSON object")
)

// decode converts a JSON body to the payload type for kind. Unknown fields
// are ignored. Null numbers decode as zero and a null theme name as "".
func decode(kind query.Kind, body []byte) (any, error) {
	if !gjson.ValidBytes(body) {
		return nil, errInvalidJSON
	}
	root := gjson.ParseBytes(body)

	switch kind {
	case query.KindBanks:
		return decodeBanks(root)
	case query.KindSummary:
		return decodeSummary(root)
	case query.KindThemes:
		return decodeThemes(root)
	case query.KindSentiment:
		return decodeSentiment(root)
	case query.KindThemeSentiment:
		return decodeThemeSentiment(root)
	case query.KindReviews:
		return decodeReviewPage(root)
	}
	return nil, fmt.Errorf("unknown request kind %v", kind)
}

func decodeBanks(root gjson.Result) ([]string, error) {
	if !root.IsArray() {
		return nil, errNotArray
	}
	banks := make([]string, 0, len(root.Array()))
	for i, v := range root.Array() {
		if v.Type != gjson.String {
			return nil, fmt.Errorf("bank %d: expected a string", i)
		}
		banks = append(banks, v.Str)
	}
	return banks, nil
}

func decodeSummary(root gjson.Result) (model.Summary, error) {
	if !root.IsObject() {
		return model.Summary{}, errNotObject
	}
	return model.Summary{
		TotalReviews: int(root.Get("total_reviews").Int()),
		AvgRating:    root.Get("avg_rating").Float(),
		AvgSentiment: root.Get("avg_sentiment").Float(),
		PctPositive:  root.Get("pct_positive").Float(),
		PctNegative:  root.Get("pct_negative").Float(),
	}, nil
}

func decodeThemes(root gjson.Result) ([]model.Theme, error) {
	if !root.IsArray() {
		return nil, errNotArray
	}
	rows := root.Array()
	themes := make([]model.Theme, 0, len(rows))
	for i, row := range rows {
		if !row.IsObject() {
			return nil, fmt.Errorf("theme %d: %w", i, errNotObject)
		}
		themes = append(themes, model.Theme{
			Name:         row.Get("theme").String(),
			ReviewCount:  int(row.Get("review_count").Int()),
			AvgSentiment: row.Get("avg_sentiment").Float(),
		})
	}
	return themes, nil
}

func decodeSentiment(root gjson.Result) (model.SentimentBreakdown, error) {
	if !root.IsObject() {
		return model.SentimentBreakdown{}, errNotObject
	}
	return model.SentimentBreakdown{
		Positive: int(root.Get("positive").Int()),
		Negative: int(root.Get("negative").Int()),
		Neutral:  int(root.Get("neutral").Int()),
	}, nil
}

// decodeThemeSentiment pivots the row list into a matrix keyed by theme
// then label, keeping themes in first-seen order.
func decodeThemeSentiment(root gjson.Result) (model.ThemeSentimentMatrix, error) {
	if !root.IsArray() {
		return model.ThemeSentimentMatrix{}, errNotArray
	}
	m := model.ThemeSentimentMatrix{Cells: make(map[string]map[model.SentimentLabel]model.ThemeSentimentRow)}
	var bad error
	root.ForEach(func(_, row gjson.Result) bool {
		if !row.IsObject() {
			bad = errNotObject
			return false
		}
		r := model.ThemeSentimentRow{
			Theme:          row.Get("theme").String(),
			SentimentLabel: model.SentimentLabel(row.Get("sentiment_label").String()),
			Count:          int(row.Get("count").Int()),
			AvgSentiment:   row.Get("avg_sentiment").Float(),
			MinSentiment:   row.Get("min_sentiment").Float(),
			MaxSentiment:   row.Get("max_sentiment").Float(),
		}
		if r.Theme == "" {
			r.Theme = model.UnknownTheme
		}
		cells, ok := m.Cells[r.Theme]
		if !ok {
			cells = make(map[model.SentimentLabel]model.ThemeSentimentRow)
			m.Cells[r.Theme] = cells
			m.Themes = append(m.Themes, r.Theme)
		}
		cells[r.SentimentLabel] = r
		return true
	})
	if bad != nil {
		return model.ThemeSentimentMatrix{}, bad
	}
	return m, nil
}

func decodeReviewPage(root gjson.Result) (model.ReviewPage, error) {
	if !root.IsObject() {
		return model.ReviewPage{}, errNotObject
	}
	list := root.Get("reviews")
	if !list.IsArray() {
		return model.ReviewPage{}, fmt.Errorf("reviews: %w", errNotArray)
	}
	page := model.ReviewPage{
		Total: int(root.Get("total").Int()),
		Page:  int(root.Get("page").Int()),
		Limit: int(root.Get("limit").Int()),
	}
	rows := list.Array()
	page.Reviews = make([]model.Review, 0, len(rows))
	for i, row := range rows {
		if !row.IsObject() {
			return model.ReviewPage{}, fmt.Errorf("review %d: %w", i, errNotObject)
		}
		page.Reviews = append(page.Reviews, model.Review{
			ID:              row.Get("review_id").String(),
			Text:            row.Get("review_text").String(),
			Rating:          int(row.Get("rating").Int()),
			Date:            row.Get("review_date").String(),
			BankName:        row.Get("bank_name").String(),
			SentimentScore:  row.Get("sentiment_score").Float(),
			SentimentLabel:  model.SentimentLabel(row.Get("sentiment_label").String()),
			TopicConfidence: row.Get("topic_confidence").Float(),
			Theme:           row.Get("theme").String(),
		})
	}
	return page, nil
}
