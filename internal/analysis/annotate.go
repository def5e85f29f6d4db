package analysis

import "github.com/abelbrown/cxdash/internal/model"

// AnnotateOptions selects which missing fields Annotate fills in.
type AnnotateOptions struct {
	// Themes assigns a theme to reviews that have none.
	Themes bool
}

// Annotated counts the fields Annotate filled in.
type Annotated struct {
	Labels int
	Themes int
}

// Annotate returns a copy of reviews with missing sentiment labels derived
// from the score and, if requested, missing themes assigned from the text.
// Fields that are already set are kept.
func (a *Analyzer) Annotate(reviews []model.Review, opts AnnotateOptions) ([]model.Review, Annotated) {
	out := make([]model.Review, len(reviews))
	var n Annotated
	for i, r := range reviews {
		if r.SentimentLabel == "" {
			r.SentimentLabel = LabelForScore(r.SentimentScore)
			n.Labels++
		}
		if opts.Themes && r.Theme == "" && r.Text != "" {
			r.Theme = a.AssignTheme(r.Text)
			n.Themes++
		}
		out[i] = r
	}
	return out, n
}
