package analysis

import "github.com/abelbrown/cxdash/internal/model"

// Labels lists the sentiment classes in report order.
var Labels = []model.SentimentLabel{model.Negative, model.Neutral, model.Positive}

// ClassReport holds the per-class scores of an evaluation.
type ClassReport struct {
	Label     model.SentimentLabel `json:"label"`
	Precision float64              `json:"precision"`
	Recall    float64              `json:"recall"`
	F1        float64              `json:"f1"`
	Support   int                  `json:"support"`
}

// Report compares predicted labels against star-rating ground truth.
type Report struct {
	Evaluated int           `json:"evaluated"`
	Skipped   int           `json:"skipped"`
	Accuracy  float64       `json:"accuracy"`
	Classes   []ClassReport `json:"classes"`
	// Confusion[truth][predicted], indexed in Labels order.
	Confusion [3][3]int `json:"confusion"`
}

// MacroF1 is the unweighted mean F1 over the classes.
func (r Report) MacroF1() float64 {
	if len(r.Classes) == 0 {
		return 0
	}
	var sum float64
	for _, c := range r.Classes {
		sum += c.F1
	}
	return sum / float64(len(r.Classes))
}

func labelIndex(l model.SentimentLabel) int {
	for i, x := range Labels {
		if x == l {
			return i
		}
	}
	return -1
}

// Evaluate scores each review's label against LabelForRating(rating).
// Reviews without a valid label or a rating in 1..5 are skipped. Classes
// with no predictions or no support score 0.
func Evaluate(reviews []model.Review) Report {
	var r Report
	for _, rv := range reviews {
		pred := labelIndex(rv.SentimentLabel)
		if pred < 0 || rv.Rating < 1 || rv.Rating > 5 {
			r.Skipped++
			continue
		}
		truth := labelIndex(LabelForRating(rv.Rating))
		r.Confusion[truth][pred]++
		r.Evaluated++
	}
	if r.Evaluated == 0 {
		return r
	}

	correct := 0
	for i, label := range Labels {
		tp := r.Confusion[i][i]
		correct += tp
		support, predicted := 0, 0
		for j := range Labels {
			support += r.Confusion[i][j]
			predicted += r.Confusion[j][i]
		}
		c := ClassReport{Label: label, Support: support}
		if predicted > 0 {
			c.Precision = float64(tp) / float64(predicted)
		}
		if support > 0 {
			c.Recall = float64(tp) / float64(support)
		}
		if c.Precision+c.Recall > 0 {
			c.F1 = 2 * c.Precision * c.Recall / (c.Precision + c.Recall)
		}
		r.Classes = append(r.Classes, c)
	}
	r.Accuracy = float64(correct) / float64(r.Evaluated)
	return r
}
