package model

import "testing"

func TestScopeIsAll(t *testing.T) {
	tests := []struct {
		scope Scope
		want  bool
	}{
		{"", true},
		{"All", true},
		{"all", false},
		{"ALL", false},
		{"Dashen Bank", false},
		{"Allied", false},
	}
	for _, tt := range tests {
		if got := tt.scope.IsAll(); got != tt.want {
			t.Errorf("Scope(%q).IsAll() = %v, want %v", tt.scope, got, tt.want)
		}
	}
}

func TestScopeBank(t *testing.T) {
	if got := AllBanks.Bank(); got != "" {
		t.Errorf("AllBanks.Bank() = %q, want empty", got)
	}
	if got := Scope("CBE").Bank(); got != "CBE" {
		t.Errorf("Scope(CBE).Bank() = %q", got)
	}
	if got := Scope("").String(); got != "All" {
		t.Errorf("empty scope should render as All, got %q", got)
	}
}

func TestThemeDisplayName(t *testing.T) {
	if got := (Theme{}).DisplayName(); got != UnknownTheme {
		t.Errorf("null theme should display %q, got %q", UnknownTheme, got)
	}
	if got := (Theme{Name: "Fees"}).DisplayName(); got != "Fees" {
		t.Errorf("got %q", got)
	}
}

func TestSentimentBreakdownTotal(t *testing.T) {
	b := SentimentBreakdown{Positive: 3, Negative: 2, Neutral: 5}
	if b.Total() != 10 {
		t.Errorf("Total() = %d, want 10", b.Total())
	}
}

func TestSentimentLabelValid(t *testing.T) {
	for _, l := range []SentimentLabel{Positive, Neutral, Negative} {
		if !l.Valid() {
			t.Errorf("%q should be valid", l)
		}
	}
	if SentimentLabel("mixed").Valid() {
		t.Error("mixed should be invalid")
	}
}

func TestMatrixCellMissing(t *testing.T) {
	var m ThemeSentimentMatrix
	if m.Count("Fees", Negative) != 0 {
		t.Error("zero matrix should report zero counts")
	}
}
