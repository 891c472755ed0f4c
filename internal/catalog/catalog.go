// Package catalog holds the static weighted-rule tables behind risk scoring.
// Lookups are pure and total: an unknown key contributes zero, never an error.
package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/opencompliance/kestrel/internal/domain"
)

// ReportingThreshold is the regulatory reporting threshold shared with the
// structuring and round-amount detectors.
var ReportingThreshold = decimal.NewFromInt(10000)

// RoundAmountBase is the increment that marks an amount as conspicuously round.
var RoundAmountBase = decimal.NewFromInt(1000)

// AmountTier maps an amount threshold to an additional weight contribution.
// Tiers are cumulative: every tier the amount strictly exceeds fires.
type AmountTier struct {
	Threshold decimal.Decimal
	Delta     float64
	Label     string
}

var amountTiers = []AmountTier{
	{Threshold: decimal.NewFromInt(10000), Delta: 0.2, Label: "high value transaction"},
	{Threshold: decimal.NewFromInt(50000), Delta: 0.2, Label: "very high value transaction"},
}

// AmountFactors returns one factor per tier the amount exceeds.
func AmountFactors(amount decimal.Decimal) []domain.RiskFactor {
	var factors []domain.RiskFactor
	for _, tier := range amountTiers {
		if amount.GreaterThan(tier.Threshold) {
			factors = append(factors, domain.RiskFactor{
				Label:       tier.Label,
				WeightDelta: tier.Delta,
				Severity:    SeverityForDelta(tier.Delta),
			})
		}
	}
	return factors
}

// TypeWeight is the base contribution of a transaction type.
type TypeWeight struct {
	Delta float64
	Label string
}

var transactionTypes = map[string]TypeWeight{
	domain.TxTypeInternational: {Delta: 0.15, Label: "international transfer"},
	domain.TxTypeWire:          {Delta: 0.10, Label: "wire transfer"},
	domain.TxTypeACH:           {Delta: 0.05, Label: "ach transfer"},
	domain.TxTypeDomestic:      {Delta: 0.02, Label: "domestic transfer"},
	domain.TxTypeInternal:      {Delta: 0.0, Label: "internal transfer"},
}

// TypeFactor looks up the base factor for a transaction type. Unknown and
// zero-weight types contribute nothing.
func TypeFactor(txType string) (domain.RiskFactor, bool) {
	tw, ok := transactionTypes[strings.ToLower(strings.TrimSpace(txType))]
	if !ok || tw.Delta == 0 {
		return domain.RiskFactor{}, false
	}
	return domain.RiskFactor{
		Label:       tw.Label,
		WeightDelta: tw.Delta,
		Severity:    SeverityForDelta(tw.Delta),
	}, true
}

// The two jurisdiction sets are disjoint; membership is checked high first.
var highRiskJurisdictions = map[string]bool{
	"IR": true, "KP": true, "SY": true, "CU": true,
	"MM": true, "AF": true, "YE": true,
}

var mediumRiskJurisdictions = map[string]bool{
	"PK": true, "AE": true, "TR": true, "PA": true,
	"VE": true, "NG": true, "KY": true,
}

const (
	highRiskJurisdictionDelta   = 0.3
	mediumRiskJurisdictionDelta = 0.15
)

// JurisdictionFactor scores one side of a transaction. Role names the side
// in the emitted factor label ("sender" or "recipient").
func JurisdictionFactor(country, role string) (domain.RiskFactor, bool) {
	c := strings.ToUpper(strings.TrimSpace(country))
	switch {
	case highRiskJurisdictions[c]:
		return domain.RiskFactor{
			Label:       fmt.Sprintf("high-risk %s jurisdiction: %s", role, c),
			WeightDelta: highRiskJurisdictionDelta,
			Severity:    SeverityForDelta(highRiskJurisdictionDelta),
		}, true
	case mediumRiskJurisdictions[c]:
		return domain.RiskFactor{
			Label:       fmt.Sprintf("medium-risk %s jurisdiction: %s", role, c),
			WeightDelta: mediumRiskJurisdictionDelta,
			Severity:    SeverityForDelta(mediumRiskJurisdictionDelta),
		}, true
	}
	return domain.RiskFactor{}, false
}

var profileMultipliers = map[string]float64{
	domain.ProfileLow:      0.8,
	domain.ProfileStandard: 1.0,
	domain.ProfileHigh:     1.2,
}

// ProfileMultiplier returns the score multiplier for a customer risk
// profile. Unknown profiles fall back to standard.
func ProfileMultiplier(profile string) float64 {
	if m, ok := profileMultipliers[strings.ToLower(strings.TrimSpace(profile))]; ok {
		return m
	}
	return 1.0
}

var channelMultipliers = map[string]float64{
	domain.ChannelEmail:       1.0,
	domain.ChannelMeeting:     1.0,
	domain.ChannelChat:        1.1,
	domain.ChannelPhone:       1.2,
	domain.ChannelSMS:         1.3,
	domain.ChannelSocialMedia: 1.5,
}

// ChannelMultiplier returns the score multiplier for a communication
// channel. Unknown channels fall back to 1.0.
func ChannelMultiplier(channel string) float64 {
	if m, ok := channelMultipliers[strings.ToLower(strings.TrimSpace(channel))]; ok {
		return m
	}
	return 1.0
}

// SeverityForDelta grades a weight contribution.
func SeverityForDelta(delta float64) domain.Severity {
	switch {
	case delta >= 0.4:
		return domain.SeverityCritical
	case delta >= 0.25:
		return domain.SeverityHigh
	case delta >= 0.1:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}
