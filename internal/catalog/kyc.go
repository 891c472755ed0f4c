package catalog

import (
	"fmt"
	"strings"

	"github.com/opencompliance/kestrel/internal/domain"
)

// Document types that alone force ENHANCED verification.
var enhancedDocuments = map[string]bool{
	domain.DocPassport:   true,
	domain.DocNationalID: true,
}

// DocumentElevatesLevel reports whether the primary document type forces
// the ENHANCED verification level.
func DocumentElevatesLevel(docType string) bool {
	return enhancedDocuments[strings.ToLower(strings.TrimSpace(docType))]
}

const (
	pepDelta                 = 0.3
	highRiskNationalityDelta = 0.2
	highRiskOccupationDelta  = 0.15
	highRiskIndustryDelta    = 0.15
)

// PEPFactor is the fixed factor applied to politically exposed persons.
// PEP status also forces ENHANCED verification.
func PEPFactor() domain.RiskFactor {
	return domain.RiskFactor{
		Label:       "politically exposed person",
		WeightDelta: pepDelta,
		Severity:    SeverityForDelta(pepDelta),
	}
}

// NationalityFactor scores a high-risk nationality. The nationality list
// mirrors the high-risk jurisdiction set.
func NationalityFactor(nationality string) (domain.RiskFactor, bool) {
	n := strings.ToUpper(strings.TrimSpace(nationality))
	if !highRiskJurisdictions[n] {
		return domain.RiskFactor{}, false
	}
	return domain.RiskFactor{
		Label:       fmt.Sprintf("high-risk nationality: %s", n),
		WeightDelta: highRiskNationalityDelta,
		Severity:    SeverityForDelta(highRiskNationalityDelta),
	}, true
}

var highRiskOccupations = map[string]bool{
	"arms dealer":            true,
	"casino operator":        true,
	"money services agent":   true,
	"precious metals dealer": true,
	"cryptocurrency trader":  true,
	"art dealer":             true,
}

// OccupationFactor scores a high-risk occupation.
func OccupationFactor(occupation string) (domain.RiskFactor, bool) {
	o := strings.ToLower(strings.TrimSpace(occupation))
	if !highRiskOccupations[o] {
		return domain.RiskFactor{}, false
	}
	return domain.RiskFactor{
		Label:       fmt.Sprintf("high-risk occupation: %s", o),
		WeightDelta: highRiskOccupationDelta,
		Severity:    SeverityForDelta(highRiskOccupationDelta),
	}, true
}

var highRiskIndustries = map[string]bool{
	"gambling":            true,
	"defense":             true,
	"cryptocurrency":      true,
	"precious_metals":     true,
	"money_services":      true,
	"adult_entertainment": true,
}

// IndustryFactor scores a high-risk industry sector.
func IndustryFactor(industry string) (domain.RiskFactor, bool) {
	i := strings.ToLower(strings.TrimSpace(industry))
	if !highRiskIndustries[i] {
		return domain.RiskFactor{}, false
	}
	return domain.RiskFactor{
		Label:       fmt.Sprintf("high-risk industry: %s", i),
		WeightDelta: highRiskIndustryDelta,
		Severity:    SeverityForDelta(highRiskIndustryDelta),
	}, true
}

// IsHighRiskIndustry reports whether the industry forces ENHANCED
// verification.
func IsHighRiskIndustry(industry string) bool {
	return highRiskIndustries[strings.ToLower(strings.TrimSpace(industry))]
}
