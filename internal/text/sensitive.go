package text

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/opencompliance/kestrel/internal/domain"
)

// Risk contributions per sensitive-data severity. A pattern contributes once
// when it matches; the match count is recorded but does not scale the score.
const (
	sensitiveHighDelta   = 0.25
	sensitiveMediumDelta = 0.15
	sensitiveLowDelta    = 0.05
)

// SensitiveDelta returns the fixed risk contribution for a match severity.
func SensitiveDelta(sev domain.Severity) float64 {
	switch sev {
	case domain.SeverityHigh, domain.SeverityCritical:
		return sensitiveHighDelta
	case domain.SeverityMedium:
		return sensitiveMediumDelta
	default:
		return sensitiveLowDelta
	}
}

// SensitivePattern describes one class of sensitive data.
type SensitivePattern struct {
	Kind     string
	Severity domain.Severity
	Pattern  string
}

// DefaultSensitivePatterns returns the built-in sensitive-data pattern set.
func DefaultSensitivePatterns() []SensitivePattern {
	return []SensitivePattern{
		{Kind: "ssn", Severity: domain.SeverityHigh, Pattern: `\b\d{3}-\d{2}-\d{4}\b`},
		{Kind: "card_number", Severity: domain.SeverityHigh, Pattern: `\b(?:\d{4}[ -]?){3}\d{4}\b`},
		{Kind: "credentials", Severity: domain.SeverityHigh, Pattern: `\b(password|passwd|passphrase|login\s+credentials)\b`},
		{Kind: "account_number", Severity: domain.SeverityMedium, Pattern: `\b(account|acct)\s*(number|no\.?|#)\s*:?\s*\d{6,}`},
		{Kind: "passport", Severity: domain.SeverityMedium, Pattern: `\bpassport\s*(number|no\.?|#)?\s*:?\s*[a-z0-9]{6,9}\b`},
		{Kind: "pin_code", Severity: domain.SeverityMedium, Pattern: `\b(pin|cvv|security\s+code)\s*:?\s*\d{3,6}\b`},
		{Kind: "phone", Severity: domain.SeverityMedium, Pattern: `\b(\+?\d{1,2}[ .-]?)?\(?\d{3}\)?[ .-]?\d{3}[ .-]?\d{4}\b`},
		{Kind: "email", Severity: domain.SeverityLow, Pattern: `\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`},
		{Kind: "drivers_license", Severity: domain.SeverityLow, Pattern: `\bdriver'?s?\s+licen[cs]e\s*(number|no\.?|#)?\s*:?\s*[a-z0-9]{5,}`},
		{Kind: "date_of_birth", Severity: domain.SeverityLow, Pattern: `\b(dob|date\s+of\s+birth|born\s+on)\b`},
	}
}

type compiledSensitivePattern struct {
	pattern SensitivePattern
	re      *regexp.Regexp
}

// SensitiveMatcher finds sensitive-data references in content.
type SensitiveMatcher struct {
	patterns []compiledSensitivePattern
}

// NewSensitiveMatcher compiles the patterns. A malformed pattern is a
// configuration error and fails construction.
func NewSensitiveMatcher(patterns []SensitivePattern) (*SensitiveMatcher, error) {
	compiled := make([]compiledSensitivePattern, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile sensitive pattern %q: %w", p.Kind, err)
		}
		compiled = append(compiled, compiledSensitivePattern{pattern: p, re: re})
	}
	return &SensitiveMatcher{patterns: compiled}, nil
}

// Match returns one entry per pattern found in the content, with the number
// of occurrences recorded.
func (m *SensitiveMatcher) Match(content string) []domain.SensitiveMatch {
	lower := strings.ToLower(content)
	var matches []domain.SensitiveMatch
	for _, cp := range m.patterns {
		found := cp.re.FindAllString(lower, -1)
		if len(found) == 0 {
			continue
		}
		matches = append(matches, domain.SensitiveMatch{
			Kind:     cp.pattern.Kind,
			Count:    len(found),
			Severity: cp.pattern.Severity,
		})
	}
	return matches
}
