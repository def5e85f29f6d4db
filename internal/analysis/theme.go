package analysis

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Unclassified is assigned when no theme keyword matches.
const Unclassified = "General/Unclassified"

// Rule maps a theme to the keywords that vote for it.
type Rule struct {
	Theme    string
	Keywords []string
}

// DefaultRules are the keyword rules for mobile banking reviews. Order
// breaks ties: the earlier rule wins.
var DefaultRules = []Rule{
	{"App Performance", []string{
		"crash", "slow", "bug", "freeze", "lag", "close", "stuck", "open", "load",
		"update", "install", "network", "connection", "internet", "fast", "speed",
		"performance", "working", "work", "crushed", "lazy", "downtime", "glitch",
	}},
	{"Account Access & Security", []string{
		"login", "log in", "sign in", "password", "username", "otp", "code",
		"sms", "verification", "register", "signup", "account", "access",
		"blocked", "locked", "pin", "fingerprint", "face id", "activation", "create",
	}},
	{"Transactions & Payments", []string{
		"transfer", "send", "money", "transaction", "payment", "pay", "fund",
		"deposit", "withdraw", "balance", "credit", "debit", "telebirr",
		"receipt", "history", "statement", "remittance", "recharge", "buy",
	}},
	{"User Interface (UI/UX)", []string{
		"interface", "design", "look", "easy", "simple", "hard", "confusing",
		"navigate", "user friendly", "layout", "color", "font", "language",
		"english", "amharic", "menu", "button", "screen", "dark", "ui", "ux",
	}},
	{"Customer Service", []string{
		"support", "service", "customer", "agent", "staff", "branch", "call",
		"phone", "help", "response", "contact", "teller", "office", "person",
	}},
	{"General Praise", []string{
		"good", "great", "best", "love", "like", "nice", "excellent", "amazing",
		"wonderful", "perfect", "thanks", "thank", "wow", "super", "fine", "cool", "satisfied",
	}},
	{"General Dissatisfaction", []string{
		"bad", "worst", "terrible", "horrible", "hate", "useless", "trash",
		"garbage", "fake", "scam", "poor", "disappointed", "annoying", "stupid",
	}},
}

// stopWords are dropped before matching. Domain words that appear in
// nearly every review are included.
var stopWords = toSet(
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can", "had", "her",
	"was", "one", "our", "out", "has", "have", "him", "his", "how", "its", "may",
	"who", "did", "get", "got", "this", "that", "with", "they", "them", "then",
	"than", "there", "their", "what", "when", "which", "will", "your", "from",
	"been", "were", "would", "could", "should", "very", "just", "also", "into",
	"about", "after", "before", "again", "some", "such", "only", "own", "same",
	"too", "more", "most", "other", "these", "those", "while", "where", "why",
	"app", "bank", "mobile", "banking", "ethiopia", "please", "thank", "thanks",
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Analyzer assigns themes by keyword votes.
type Analyzer struct {
	rules []Rule
}

// NewAnalyzer returns an Analyzer over rules, or DefaultRules when rules is
// empty.
func NewAnalyzer(rules []Rule) *Analyzer {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Analyzer{rules: rules}
}

// Normalize folds case, turns every non-letter into a space, and drops stop
// words and words of two letters or fewer.
func Normalize(text string) string {
	folded := cases.Fold().String(text)
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	kept := words[:0]
	for _, w := range words {
		if len(w) > 2 && !stopWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// AssignTheme returns the theme whose keywords occur most often in text,
// or Unclassified when none occur. Keywords match as substrings of the
// normalized text, so "login" also matches "logins".
func (a *Analyzer) AssignTheme(text string) string {
	clean := Normalize(text)
	best, bestScore := Unclassified, 0
	for _, r := range a.rules {
		score := 0
		for _, kw := range r.Keywords {
			if strings.Contains(clean, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = r.Theme, score
		}
	}
	return best
}
