// Package analysis derives sentiment labels and themes for raw reviews and
// checks predicted labels against star ratings.
package analysis

import "github.com/abelbrown/cxdash/internal/model"

// LabelThreshold is the absolute compound score at which a review stops
// being neutral.
const LabelThreshold = 0.05

// LabelForScore maps a compound sentiment score to its label. Scores at
// exactly ±LabelThreshold are not neutral.
func LabelForScore(score float64) model.SentimentLabel {
	switch {
	case score >= LabelThreshold:
		return model.Positive
	case score <= -LabelThreshold:
		return model.Negative
	}
	return model.Neutral
}

// LabelForRating maps a 1-5 star rating to the label used as ground truth:
// 1-2 negative, 3 neutral, 4-5 positive.
func LabelForRating(rating int) model.SentimentLabel {
	switch {
	case rating <= 2:
		return model.Negative
	case rating == 3:
		return model.Neutral
	}
	return model.Positive
}
