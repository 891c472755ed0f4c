package domain

import "time"

// RuleConfig defines an operator-supplied transaction scoring rule.
type RuleConfig struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version,omitempty"`

	// CEL expression over transaction variables; must yield a bool or a
	// numeric score in [0, 1].
	Expression string `json:"expression"`

	// Weight applied to the rule score when it contributes to the
	// transaction evaluation.
	Weight float64 `json:"weight"`

	// Bands map the rule score to a severity and reason for the emitted
	// risk factor.
	Bands []RuleBand `json:"bands,omitempty"`

	// Whether rule is active
	Enabled bool `json:"enabled"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// RuleBand maps a score range to a severity. Bands are half-open [lo, hi);
// a nil limit means unbounded on that side.
type RuleBand struct {
	LowerLimit *float64 `json:"lowerLimit,omitempty"`
	UpperLimit *float64 `json:"upperLimit,omitempty"`
	Severity   Severity `json:"severity"`
	Reason     string   `json:"reason"`
}

// RuleResult is the output of evaluating a single custom rule against a
// transaction.
type RuleResult struct {
	RuleID   string   `json:"ruleId"`
	Name     string   `json:"name"`
	Score    float64  `json:"score"`
	Weight   float64  `json:"weight"`
	Severity Severity `json:"severity"`
	Reason   string   `json:"reason,omitempty"`
	Err      string   `json:"error,omitempty"`
}

// Contribution is the weighted share the rule adds to the raw score.
func (r *RuleResult) Contribution() float64 {
	return r.Score * r.Weight
}
