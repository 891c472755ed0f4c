package rules

import "github.com/opencompliance/kestrel/internal/domain"

func limit(v float64) *float64 { return &v }

// BuiltinRules returns the seed rule set loaded when the repository holds
// no operator-defined rules yet. Operators replace these via POST /rules.
func BuiltinRules() []*domain.RuleConfig {
	return []*domain.RuleConfig{
		{
			ID:          "self-transfer",
			Name:        "sender equals recipient",
			Description: "Flags transactions where both parties are the same identity.",
			Version:     "1.0.0",
			Expression:  `sender_id == recipient_id ? 1.0 : 0.0`,
			Weight:      0.1,
			Bands: []domain.RuleBand{
				{LowerLimit: limit(0.5), Severity: domain.SeverityMedium, Reason: "sender and recipient are the same identity"},
			},
			Enabled: true,
		},
		{
			ID:          "burst-activity",
			Name:        "burst of recent activity",
			Description: "Flags identities with more than ten related transactions in the velocity window.",
			Version:     "1.0.0",
			Expression:  `velocity_count > 10 ? 1.0 : 0.0`,
			Weight:      0.1,
			Bands: []domain.RuleBand{
				{LowerLimit: limit(0.5), Severity: domain.SeverityMedium, Reason: "unusually frequent activity for this identity"},
			},
			Enabled: true,
		},
	}
}
