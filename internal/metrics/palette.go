package metrics

import "github.com/abelbrown/cxdash/internal/model"

// Palette holds every display color the dashboard derives from data.
// It is configuration, passed in by the caller.
type Palette struct {
	Positive string
	Negative string
	Neutral  string
	Fallback string
	Banks    map[string]string
}

// DefaultPalette returns the stock dashboard colors.
func DefaultPalette() Palette {
	return Palette{
		Positive: "#2ecc71",
		Negative: "#e74c3c",
		Neutral:  "#f39c12",
		Fallback: "#888888",
		Banks: map[string]string{
			"Abyssinia Bank": "#e74c3c",
			"CBE":            "#3498db",
			"Dashen Bank":    "#2ecc71",
		},
	}
}

// BankColor returns the configured color for bank, or the fallback.
func (p Palette) BankColor(bank string) string {
	if c, ok := p.Banks[bank]; ok && c != "" {
		return c
	}
	return p.Fallback
}

// SentimentLabelColor returns the color for a review's sentiment label.
func (p Palette) SentimentLabelColor(l model.SentimentLabel) string {
	switch l {
	case model.Positive:
		return p.Positive
	case model.Negative:
		return p.Negative
	case model.Neutral:
		return p.Neutral
	}
	return p.Fallback
}

// ColorBanks attaches palette colors to bank names, preserving order.
func (p Palette) ColorBanks(names []string) []model.Bank {
	out := make([]model.Bank, len(names))
	for i, n := range names {
		out[i] = model.Bank{Name: n, Color: p.BankColor(n)}
	}
	return out
}
