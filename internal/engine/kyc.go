package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/opencompliance/kestrel/internal/catalog"
	"github.com/opencompliance/kestrel/internal/domain"
)

// EvaluateKYC scores a customer profile for identity risk. The verification
// level is rule-driven, evaluated alongside and independently of the score.
func (e *Engine) EvaluateKYC(ctx context.Context, profile *domain.CustomerProfile, opts domain.KYCOptions) (*domain.EvaluationResult, error) {
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	var factors []domain.RiskFactor
	if profile.IsPoliticallyExposed {
		factors = append(factors, catalog.PEPFactor())
	}
	if f, ok := catalog.NationalityFactor(profile.Nationality); ok {
		factors = append(factors, f)
	}
	if f, ok := catalog.OccupationFactor(profile.Occupation); ok {
		factors = append(factors, f)
	}
	if f, ok := catalog.IndustryFactor(profile.IndustrySector); ok {
		factors = append(factors, f)
	}

	score := clampScore(sumFactors(factors))
	status := classifyKYC(score)
	level := verificationLevel(profile, opts)

	now := e.now()
	result := &domain.EvaluationResult{
		CorrelationID:     uuid.New().String(),
		Domain:            domain.DomainKYC,
		EntityID:          profile.CustomerID,
		Score:             score,
		Status:            string(status),
		Factors:           factors,
		Recommendations:   kycRecommendations(status, level, profile),
		GeneratedAt:       now,
		VerificationLevel: level,
		ExpiryDate:        verificationExpiry(status, level, now),
	}

	e.logger.Debug("kyc evaluated",
		"correlation_id", result.CorrelationID,
		"customer_id", profile.CustomerID,
		"score", score,
		"status", status,
		"verification_level", level,
	)

	return result, nil
}

// VerificationRecordFor derives the audit-log entry from a KYC evaluation.
func VerificationRecordFor(result *domain.EvaluationResult) *domain.VerificationRecord {
	return &domain.VerificationRecord{
		VerificationID:    result.CorrelationID,
		CustomerID:        result.EntityID,
		RiskScore:         result.Score,
		Status:            result.Status,
		VerificationLevel: result.VerificationLevel,
		ExpiryDate:        result.ExpiryDate,
		CreatedAt:         result.GeneratedAt,
	}
}

// verificationLevel applies the escalation rules: strong primary document,
// two or more additional documents, PEP status, high-risk industry, or an
// explicitly enhanced verification mode all force ENHANCED.
func verificationLevel(profile *domain.CustomerProfile, opts domain.KYCOptions) domain.VerificationLevel {
	switch {
	case opts.VerificationMode == domain.VerificationModeEnhanced:
		return domain.LevelEnhanced
	case catalog.DocumentElevatesLevel(profile.DocumentType):
		return domain.LevelEnhanced
	case len(profile.AdditionalDocuments) >= 2:
		return domain.LevelEnhanced
	case profile.IsPoliticallyExposed:
		return domain.LevelEnhanced
	case catalog.IsHighRiskIndustry(profile.IndustrySector):
		return domain.LevelEnhanced
	default:
		return domain.LevelStandard
	}
}

// verificationExpiry sets the re-verification horizon: two years for a
// standard verified customer, one year under review or enhanced scrutiny,
// none for a rejection.
func verificationExpiry(status domain.KYCStatus, level domain.VerificationLevel, now time.Time) *time.Time {
	switch {
	case status == domain.KYCRejected:
		return nil
	case status == domain.KYCReviewRequired || level == domain.LevelEnhanced:
		t := now.AddDate(1, 0, 0)
		return &t
	default:
		t := now.AddDate(2, 0, 0)
		return &t
	}
}

func validateProfile(profile *domain.CustomerProfile) error {
	var missing []string
	if profile.CustomerID == "" {
		missing = append(missing, "customerId")
	}
	if profile.Name == "" {
		missing = append(missing, "name")
	}
	if profile.DateOfBirth == "" {
		missing = append(missing, "dateOfBirth")
	}
	if profile.Address == "" {
		missing = append(missing, "address")
	}
	if profile.DocumentType == "" {
		missing = append(missing, "documentType")
	}
	if profile.DocumentID == "" {
		missing = append(missing, "documentId")
	}
	if len(missing) > 0 {
		return domain.NewValidationError(missing...)
	}
	return nil
}

func kycRecommendations(status domain.KYCStatus, level domain.VerificationLevel, profile *domain.CustomerProfile) []string {
	var recs []string

	switch status {
	case domain.KYCRejected:
		recs = append(recs, "Do not onboard; escalate to the compliance team")
	case domain.KYCReviewRequired:
		recs = append(recs, "Request additional documentation before onboarding")
	}
	if profile.IsPoliticallyExposed {
		recs = append(recs, "Apply enhanced due diligence with senior management approval")
	}
	if catalog.IsHighRiskIndustry(profile.IndustrySector) {
		recs = append(recs, "Review the customer's industry exposure and source of wealth")
	}
	if level == domain.LevelEnhanced && status != domain.KYCRejected {
		recs = append(recs, "Schedule annual re-verification under the enhanced programme")
	}
	if len(recs) == 0 {
		recs = append(recs, "Proceed with standard onboarding and periodic review")
	}
	return recs
}
