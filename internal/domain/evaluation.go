package domain

import (
	"time"
)

// Severity grades a risk factor or matched issue.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// RiskFactor is a named, weighted contributor to a risk score. Factors are
// immutable once produced and ordered by evaluation order, not severity.
type RiskFactor struct {
	Label       string   `json:"label"`
	WeightDelta float64  `json:"weightDelta"`
	Severity    Severity `json:"severity"`
}

// ComplianceStatus classifies transaction and communication scores into four
// ordered bands.
type ComplianceStatus string

const (
	StatusCompliant      ComplianceStatus = "COMPLIANT"
	StatusReviewRequired ComplianceStatus = "REVIEW_REQUIRED"
	StatusHighRisk       ComplianceStatus = "HIGH_RISK"
	StatusNonCompliant   ComplianceStatus = "POTENTIALLY_NON_COMPLIANT"
)

// KYCStatus classifies KYC scores into three ordered bands. The taxonomy is
// deliberately distinct from ComplianceStatus.
type KYCStatus string

const (
	KYCVerified       KYCStatus = "VERIFIED"
	KYCReviewRequired KYCStatus = "REVIEW_REQUIRED"
	KYCRejected       KYCStatus = "REJECTED"
)

// VerificationLevel is the KYC escalation tier, driven by rules rather than
// the numeric score.
type VerificationLevel string

const (
	LevelStandard VerificationLevel = "STANDARD"
	LevelEnhanced VerificationLevel = "ENHANCED"
)

// Evaluation domain constants.
const (
	DomainTransaction   = "transaction"
	DomainKYC           = "kyc"
	DomainCommunication = "communication"
)

// PatternSummary reports the outcome of historical pattern detection on a
// transaction evaluation.
type PatternSummary struct {
	Analyzed    bool   `json:"analyzed"`
	Structuring string `json:"structuring"`
	Velocity    string `json:"velocity"`
	RoundAmount string `json:"roundAmount"`
}

// Pattern outcome constants.
const (
	PatternDetected    = "detected"
	PatternNotDetected = "not_detected"
	PatternNotAnalyzed = "not_analyzed"
)

// EvaluationResult is the shape shared by all three evaluation domains.
// Status holds a ComplianceStatus for transactions and communications, and a
// KYCStatus for KYC evaluations.
type EvaluationResult struct {
	CorrelationID   string       `json:"correlationId"`
	Domain          string       `json:"domain"`
	EntityID        string       `json:"entityId,omitempty"`
	Score           float64      `json:"score"`
	Status          string       `json:"status"`
	Factors         []RiskFactor `json:"factors"`
	Recommendations []string     `json:"recommendations"`
	GeneratedAt     time.Time    `json:"generatedAt"`

	// Transaction evaluations only
	Patterns *PatternSummary `json:"patterns,omitempty"`

	// KYC evaluations only
	VerificationLevel VerificationLevel `json:"verificationLevel,omitempty"`
	ExpiryDate        *time.Time        `json:"expiryDate,omitempty"`

	// Communication evaluations only
	Analysis *ContentAnalysis `json:"analysis,omitempty"`
}

// IsAlerting reports whether a status warrants an alert event.
func IsAlerting(status string) bool {
	switch status {
	case string(StatusHighRisk), string(StatusNonCompliant), string(KYCRejected):
		return true
	}
	return false
}
