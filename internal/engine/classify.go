package engine

import "github.com/opencompliance/kestrel/internal/domain"

// Status band boundaries for transaction and communication scores.
// Bands are half-open [lo, hi): a score of exactly 0.3 classifies upward.
const (
	reviewThreshold       = 0.3
	highRiskThreshold     = 0.6
	nonCompliantThreshold = 0.8
)

// KYC band boundaries. The three-band taxonomy is deliberately distinct
// from the four compliance bands.
const (
	kycReviewThreshold = 0.5
	kycRejectThreshold = 0.8
)

// clampScore bounds the multiplied score to [0, 1].
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// sumFactors adds up the weighted contributions.
func sumFactors(factors []domain.RiskFactor) float64 {
	total := 0.0
	for _, f := range factors {
		total += f.WeightDelta
	}
	return total
}

// classifyCompliance maps a final score onto the four ordered compliance
// bands. The mapping is monotonically non-decreasing in score.
func classifyCompliance(score float64) domain.ComplianceStatus {
	switch {
	case score >= nonCompliantThreshold:
		return domain.StatusNonCompliant
	case score >= highRiskThreshold:
		return domain.StatusHighRisk
	case score >= reviewThreshold:
		return domain.StatusReviewRequired
	default:
		return domain.StatusCompliant
	}
}

// classifyKYC maps a final score onto the three KYC bands.
func classifyKYC(score float64) domain.KYCStatus {
	switch {
	case score >= kycRejectThreshold:
		return domain.KYCRejected
	case score >= kycReviewThreshold:
		return domain.KYCReviewRequired
	default:
		return domain.KYCVerified
	}
}
