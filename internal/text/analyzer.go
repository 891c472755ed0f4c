// Package text implements the heuristic content analyzers behind
// communication scoring: sentiment, intent, regulatory terms, sensitive
// data and flagged phrases. Analyzers are pure functions over a single
// text blob and share no state.
package text

import "github.com/opencompliance/kestrel/internal/domain"

// Analyzer bundles the content analyzers used by communication evaluation.
type Analyzer struct {
	sentiment  *SentimentScorer
	intents    *IntentClassifier
	regulatory *RegulatoryMatcher
	sensitive  *SensitiveMatcher
	flagged    *FlaggedTermMatcher
}

// NewAnalyzer builds an analyzer over the default tables. Pattern
// compilation failures are configuration errors and fail construction.
func NewAnalyzer() (*Analyzer, error) {
	regulatory, err := NewRegulatoryMatcher(DefaultRegulatoryRules())
	if err != nil {
		return nil, err
	}
	sensitive, err := NewSensitiveMatcher(DefaultSensitivePatterns())
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		sentiment:  NewSentimentScorer(),
		intents:    NewIntentClassifier(),
		regulatory: regulatory,
		sensitive:  sensitive,
		flagged:    NewFlaggedTermMatcher(DefaultFlaggedPhrases()),
	}, nil
}

// Sentiment scores the sentiment of content.
func (a *Analyzer) Sentiment(content string) *domain.SentimentResult {
	return a.sentiment.Score(content)
}

// Intent classifies the dominant intent of content.
func (a *Analyzer) Intent(content string) *domain.IntentResult {
	return a.intents.Classify(content)
}

// Regulatory returns all regulatory rules the content violates.
func (a *Analyzer) Regulatory(content string) []domain.RegulatoryIssue {
	return a.regulatory.Match(content)
}

// Sensitive returns all sensitive-data patterns found in content.
func (a *Analyzer) Sensitive(content string) []domain.SensitiveMatch {
	return a.sensitive.Match(content)
}

// Flagged returns all flagged phrases found in content.
func (a *Analyzer) Flagged(content string) []domain.FlaggedTerm {
	return a.flagged.Match(content)
}
