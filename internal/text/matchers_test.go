package text

import (
	"strings"
	"testing"

	"github.com/opencompliance/kestrel/internal/domain"
)

func TestRegulatoryInvestmentAdvice(t *testing.T) {
	m, err := NewRegulatoryMatcher(DefaultRegulatoryRules())
	if err != nil {
		t.Fatalf("failed to create matcher: %v", err)
	}

	issues := m.Match("I can guarantee this fund will outperform the market")

	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if issues[0].Regulation != "investment_advice" {
		t.Errorf("expected investment_advice, got %s", issues[0].Regulation)
	}
	if issues[0].Severity != domain.SeverityHigh {
		t.Errorf("expected high severity, got %s", issues[0].Severity)
	}
}

func TestRegulatoryInsiderTrading(t *testing.T) {
	m, _ := NewRegulatoryMatcher(DefaultRegulatoryRules())

	issues := m.Match("Buy quickly, I have insider information about the merger")

	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if issues[0].Regulation != "insider_trading" {
		t.Errorf("expected insider_trading, got %s", issues[0].Regulation)
	}
	if issues[0].Severity != domain.SeverityCritical {
		t.Errorf("expected critical severity, got %s", issues[0].Severity)
	}
}

func TestRegulatoryRulesFireIndependently(t *testing.T) {
	m, _ := NewRegulatoryMatcher(DefaultRegulatoryRules())

	content := "I guarantee a 20% return, and we can coordinate our trades " +
		"to drive up the price before the announcement"
	issues := m.Match(content)

	if len(issues) < 3 {
		t.Fatalf("expected at least 3 independent issues, got %d", len(issues))
	}

	seen := make(map[string]bool)
	for _, issue := range issues {
		seen[issue.Regulation] = true
	}
	for _, want := range []string{"investment_advice", "insider_trading", "market_manipulation"} {
		if !seen[want] {
			t.Errorf("expected %s to fire", want)
		}
	}
}

func TestRegulatoryCleanContent(t *testing.T) {
	m, _ := NewRegulatoryMatcher(DefaultRegulatoryRules())

	issues := m.Match("The quarterly report is attached for your review")

	if len(issues) != 0 {
		t.Errorf("expected no issues, got %d", len(issues))
	}
}

func TestRegulatoryMalformedPattern(t *testing.T) {
	_, err := NewRegulatoryMatcher([]RegulatoryRule{
		{Regulation: "broken", Pattern: "(unclosed"},
	})
	if err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestRegulatoryDelta(t *testing.T) {
	if d := RegulatoryDelta(domain.SeverityHigh); d != 0.3 {
		t.Errorf("expected 0.3 for high, got %.2f", d)
	}
	if d := RegulatoryDelta(domain.SeverityCritical); d != 0.5 {
		t.Errorf("expected 0.5 for critical, got %.2f", d)
	}
}

func TestSensitiveSSN(t *testing.T) {
	m, err := NewSensitiveMatcher(DefaultSensitivePatterns())
	if err != nil {
		t.Fatalf("failed to create matcher: %v", err)
	}

	matches := m.Match("My SSN is 123-45-6789 if you need it")

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Kind != "ssn" {
		t.Errorf("expected ssn, got %s", matches[0].Kind)
	}
	if matches[0].Count != 1 {
		t.Errorf("expected count 1, got %d", matches[0].Count)
	}
	if matches[0].Severity != domain.SeverityHigh {
		t.Errorf("expected high severity, got %s", matches[0].Severity)
	}
}

func TestSensitiveCountRecordedOnce(t *testing.T) {
	m, _ := NewSensitiveMatcher(DefaultSensitivePatterns())

	// Two SSNs produce one match entry with count 2
	matches := m.Match("First 123-45-6789 then 987-65-4321")

	if len(matches) != 1 {
		t.Fatalf("expected 1 match entry, got %d", len(matches))
	}
	if matches[0].Count != 2 {
		t.Errorf("expected count 2, got %d", matches[0].Count)
	}
}

func TestSensitiveMultipleKinds(t *testing.T) {
	m, _ := NewSensitiveMatcher(DefaultSensitivePatterns())

	matches := m.Match("Reach me at john.doe@example.com or 555-123-4567")

	kinds := make(map[string]bool)
	for _, match := range matches {
		kinds[match.Kind] = true
	}
	if !kinds["email"] {
		t.Error("expected email match")
	}
	if !kinds["phone"] {
		t.Error("expected phone match")
	}
}

func TestSensitiveCleanContent(t *testing.T) {
	m, _ := NewSensitiveMatcher(DefaultSensitivePatterns())

	matches := m.Match("See you at the office tomorrow")

	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}

func TestSensitiveDelta(t *testing.T) {
	if d := SensitiveDelta(domain.SeverityHigh); d != 0.25 {
		t.Errorf("expected 0.25 for high, got %.2f", d)
	}
	if d := SensitiveDelta(domain.SeverityMedium); d != 0.15 {
		t.Errorf("expected 0.15 for medium, got %.2f", d)
	}
	if d := SensitiveDelta(domain.SeverityLow); d != 0.05 {
		t.Errorf("expected 0.05 for low, got %.2f", d)
	}
}

func TestFlaggedTermWithContext(t *testing.T) {
	m := NewFlaggedTermMatcher(DefaultFlaggedPhrases())

	terms := m.Match("I can guarantee this fund will outperform the market")

	if len(terms) != 1 {
		t.Fatalf("expected 1 flagged term, got %d", len(terms))
	}
	if terms[0].Term != "guarantee" {
		t.Errorf("expected 'guarantee', got %q", terms[0].Term)
	}
	if terms[0].Category != "investment_advice" {
		t.Errorf("expected investment_advice category, got %s", terms[0].Category)
	}
	if !strings.Contains(terms[0].Context, "guarantee") {
		t.Errorf("context should contain the term, got %q", terms[0].Context)
	}
	// Window is the term plus at most 20 characters each side
	if len(terms[0].Context) > len("guarantee")+2*flaggedContextRadius {
		t.Errorf("context window too wide: %q", terms[0].Context)
	}
}

func TestFlaggedSpecificTermAlsoMatchesSubstring(t *testing.T) {
	m := NewFlaggedTermMatcher(DefaultFlaggedPhrases())

	terms := m.Match("This offers a guaranteed return on investment")

	seen := make(map[string]domain.Severity)
	for _, term := range terms {
		seen[term.Term] = term.Severity
	}
	if seen["guaranteed return"] != domain.SeverityHigh {
		t.Errorf("expected high-severity 'guaranteed return', got %v", seen)
	}
	// The bare "guarantee" phrase also matches inside "guaranteed"
	if _, ok := seen["guarantee"]; !ok {
		t.Error("expected bare 'guarantee' to match as well")
	}
}

func TestFlaggedContextAtContentEdge(t *testing.T) {
	m := NewFlaggedTermMatcher(DefaultFlaggedPhrases())

	terms := m.Match("act now")

	if len(terms) != 1 {
		t.Fatalf("expected 1 flagged term, got %d", len(terms))
	}
	if terms[0].Context != "act now" {
		t.Errorf("expected full short content as context, got %q", terms[0].Context)
	}
}

func TestFlaggedCleanContent(t *testing.T) {
	m := NewFlaggedTermMatcher(DefaultFlaggedPhrases())

	terms := m.Match("Lunch is confirmed for noon on Thursday")

	if len(terms) != 0 {
		t.Errorf("expected no flagged terms, got %d", len(terms))
	}
}

func TestFlaggedDelta(t *testing.T) {
	if d := FlaggedDelta(domain.SeverityHigh); d != 0.3 {
		t.Errorf("expected 0.3 for high, got %.2f", d)
	}
	if d := FlaggedDelta(domain.SeverityMedium); d != 0.15 {
		t.Errorf("expected 0.15 for medium, got %.2f", d)
	}
	if d := FlaggedDelta(domain.SeverityLow); d != 0.05 {
		t.Errorf("expected 0.05 for low, got %.2f", d)
	}
}

func TestAnalyzerConstruction(t *testing.T) {
	a, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("failed to create analyzer: %v", err)
	}

	if a.Sentiment("all good") == nil {
		t.Error("expected sentiment result")
	}
	if a.Intent("can you tell me more") == nil {
		t.Error("expected intent result")
	}
}
