package text

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/opencompliance/kestrel/internal/domain"
)

// Risk contributions per regulatory severity.
const (
	regulatoryHighDelta     = 0.3
	regulatoryCriticalDelta = 0.5
)

// RegulatoryDelta returns the fixed risk contribution for an issue severity.
func RegulatoryDelta(sev domain.Severity) float64 {
	if sev == domain.SeverityCritical {
		return regulatoryCriticalDelta
	}
	return regulatoryHighDelta
}

// RegulatoryRule pairs a content pattern with the regulation it flags.
// Patterns are matched against lower-cased content; rules are independent
// and every applicable rule fires.
type RegulatoryRule struct {
	Regulation  string
	Description string
	Severity    domain.Severity
	Pattern     string
}

// DefaultRegulatoryRules returns the built-in compliance rule set.
func DefaultRegulatoryRules() []RegulatoryRule {
	return []RegulatoryRule{
		{
			Regulation:  "investment_advice",
			Description: "investment language without a required risk disclaimer",
			Severity:    domain.SeverityHigh,
			Pattern:     `guarantee[ds]?\b.{0,60}\b(return|profit|fund|invest|outperform|market)|risk[- ]free\s+invest|cannot\s+lose`,
		},
		{
			Regulation:  "insider_trading",
			Description: "potential sharing of material non-public information",
			Severity:    domain.SeverityCritical,
			Pattern:     `insider\s+information|material\s+non[- ]?public|before\s+(the\s+)?announcement|not\s+(yet\s+)?public\s+knowledge`,
		},
		{
			Regulation:  "data_protection",
			Description: "customer personal data shared over an unapproved channel",
			Severity:    domain.SeverityHigh,
			Pattern:     `(send|share|sending|sharing|attach|forward)\w*.{0,40}\b(ssn|social\s+security|passport|account\s+number|password|card\s+number)`,
		},
		{
			Regulation:  "market_manipulation",
			Description: "language consistent with coordinated price manipulation",
			Severity:    domain.SeverityCritical,
			Pattern:     `pump\s+and\s+dump|inflate\s+the\s+price|coordinate\s+(our\s+)?(trades|buying|selling)|drive\s+(up|down)\s+the\s+price|corner\s+the\s+market`,
		},
		{
			Regulation:  "aml",
			Description: "language consistent with money laundering or evading reporting",
			Severity:    domain.SeverityCritical,
			Pattern:     `launder|clean\s+(the\s+)?money|avoid\s+(the\s+)?report|under\s+the\s+radar|split\s+the\s+deposit|offshore.{0,30}(hide|conceal)`,
		},
	}
}

type compiledRegulatoryRule struct {
	rule RegulatoryRule
	re   *regexp.Regexp
}

// RegulatoryMatcher applies independent regulatory rules to content.
type RegulatoryMatcher struct {
	rules []compiledRegulatoryRule
}

// NewRegulatoryMatcher compiles the rule patterns. A malformed pattern is a
// configuration error and fails construction.
func NewRegulatoryMatcher(rules []RegulatoryRule) (*RegulatoryMatcher, error) {
	compiled := make([]compiledRegulatoryRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile regulatory rule %q: %w", r.Regulation, err)
		}
		compiled = append(compiled, compiledRegulatoryRule{rule: r, re: re})
	}
	return &RegulatoryMatcher{rules: compiled}, nil
}

// Match returns one issue per rule whose pattern matches the content.
func (m *RegulatoryMatcher) Match(content string) []domain.RegulatoryIssue {
	lower := strings.ToLower(content)
	var issues []domain.RegulatoryIssue
	for _, cr := range m.rules {
		if cr.re.MatchString(lower) {
			issues = append(issues, domain.RegulatoryIssue{
				Regulation:  cr.rule.Regulation,
				Description: cr.rule.Description,
				Severity:    cr.rule.Severity,
			})
		}
	}
	return issues
}
