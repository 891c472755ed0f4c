package text

import (
	"strings"

	"github.com/opencompliance/kestrel/internal/domain"
)

// Risk contributions per flagged-term severity.
const (
	flaggedHighDelta   = 0.3
	flaggedMediumDelta = 0.15
	flaggedLowDelta    = 0.05
)

// FlaggedDelta returns the fixed risk contribution for a term severity.
func FlaggedDelta(sev domain.Severity) float64 {
	switch sev {
	case domain.SeverityHigh, domain.SeverityCritical:
		return flaggedHighDelta
	case domain.SeverityMedium:
		return flaggedMediumDelta
	default:
		return flaggedLowDelta
	}
}

// Characters of surrounding context captured on each side of a hit.
const flaggedContextRadius = 20

// FlaggedPhrase maps a phrase to its severity and category.
type FlaggedPhrase struct {
	Term     string
	Severity domain.Severity
	Category string
}

// DefaultFlaggedPhrases returns the built-in flagged-term table. Longer
// phrases precede their substrings so the most specific term reports first.
func DefaultFlaggedPhrases() []FlaggedPhrase {
	return []FlaggedPhrase{
		{Term: "guaranteed return", Severity: domain.SeverityHigh, Category: "investment_advice"},
		{Term: "double your money", Severity: domain.SeverityHigh, Category: "investment_advice"},
		{Term: "guarantee", Severity: domain.SeverityMedium, Category: "investment_advice"},
		{Term: "risk-free", Severity: domain.SeverityMedium, Category: "investment_advice"},
		{Term: "insider information", Severity: domain.SeverityHigh, Category: "market_abuse"},
		{Term: "don't tell anyone", Severity: domain.SeverityHigh, Category: "concealment"},
		{Term: "no questions asked", Severity: domain.SeverityHigh, Category: "concealment"},
		{Term: "delete this message", Severity: domain.SeverityHigh, Category: "concealment"},
		{Term: "off the record", Severity: domain.SeverityMedium, Category: "confidentiality"},
		{Term: "between you and me", Severity: domain.SeverityMedium, Category: "confidentiality"},
		{Term: "under the table", Severity: domain.SeverityHigh, Category: "money_laundering"},
		{Term: "shell company", Severity: domain.SeverityHigh, Category: "money_laundering"},
		{Term: "avoid taxes", Severity: domain.SeverityHigh, Category: "tax_evasion"},
		{Term: "wire the money", Severity: domain.SeverityMedium, Category: "payment_pressure"},
		{Term: "cash only", Severity: domain.SeverityMedium, Category: "payment_pressure"},
		{Term: "act now", Severity: domain.SeverityLow, Category: "pressure"},
		{Term: "limited time offer", Severity: domain.SeverityLow, Category: "pressure"},
	}
}

// FlaggedTermMatcher finds flagged phrases in content and captures the
// surrounding context for review.
type FlaggedTermMatcher struct {
	phrases []FlaggedPhrase
}

// NewFlaggedTermMatcher creates a matcher over the given phrase table.
func NewFlaggedTermMatcher(phrases []FlaggedPhrase) *FlaggedTermMatcher {
	return &FlaggedTermMatcher{phrases: phrases}
}

// Match returns one entry per table phrase present in the content. The
// context window covers the first occurrence.
func (m *FlaggedTermMatcher) Match(content string) []domain.FlaggedTerm {
	lower := strings.ToLower(content)
	var terms []domain.FlaggedTerm
	for _, p := range m.phrases {
		idx := strings.Index(lower, p.Term)
		if idx < 0 {
			continue
		}
		terms = append(terms, domain.FlaggedTerm{
			Term:     p.Term,
			Category: p.Category,
			Severity: p.Severity,
			Context:  contextWindow(content, lower, idx, len(p.Term)),
		})
	}
	return terms
}

// contextWindow extracts the matched phrase with up to flaggedContextRadius
// characters on each side, respecting rune boundaries.
func contextWindow(content, lower string, byteIdx, termLen int) string {
	runes := []rune(content)
	runeIdx := len([]rune(lower[:byteIdx]))
	termRunes := len([]rune(lower[byteIdx : byteIdx+termLen]))

	start := max(0, runeIdx-flaggedContextRadius)
	end := min(len(runes), runeIdx+termRunes+flaggedContextRadius)
	return string(runes[start:end])
}
