package domain

import "time"

// CustomerProfile is the input to KYC evaluation. It is never persisted
// directly; only the derived VerificationRecord reaches the audit log.
type CustomerProfile struct {
	CustomerID  string `json:"customerId"`
	Name        string `json:"name"`
	DateOfBirth string `json:"dateOfBirth"`
	Address     string `json:"address"`

	// Primary identity document
	DocumentType string `json:"documentType"`
	DocumentID   string `json:"documentId"`

	// Optional attributes feeding the risk catalog
	Nationality          string `json:"nationality,omitempty"`
	Occupation           string `json:"occupation,omitempty"`
	IndustrySector       string `json:"industrySector,omitempty"`
	IsPoliticallyExposed bool   `json:"isPoliticallyExposed"`

	// Further documents supplied beyond the primary one
	AdditionalDocuments []string `json:"additionalDocuments,omitempty"`
}

// Document type constants.
const (
	DocPassport       = "passport"
	DocNationalID     = "national_id"
	DocDriversLicense = "drivers_license"
	DocUtilityBill    = "utility_bill"
	DocBankStatement  = "bank_statement"
)

// Verification mode constants for KYC evaluation.
const (
	VerificationModeStandard = "standard"
	VerificationModeEnhanced = "enhanced"
)

// KYCOptions controls how a KYC evaluation runs.
type KYCOptions struct {
	// VerificationMode is "standard" or "enhanced"; enhanced forces the
	// ENHANCED verification level regardless of rule outcomes.
	VerificationMode string `json:"verificationMode,omitempty"`
}

// KYCRequest is the API request payload for KYC evaluation.
type KYCRequest struct {
	CustomerProfile
	VerificationMode string `json:"verificationMode,omitempty"`
}

// Options extracts the evaluation options carried on the request.
func (r *KYCRequest) Options() KYCOptions {
	return KYCOptions{VerificationMode: r.VerificationMode}
}

// VerificationRecord is the audit-log entry derived from a KYC evaluation.
type VerificationRecord struct {
	VerificationID    string            `json:"verificationId"`
	CustomerID        string            `json:"customerId"`
	RiskScore         float64           `json:"riskScore"`
	Status            string            `json:"status"`
	VerificationLevel VerificationLevel `json:"verificationLevel"`
	ExpiryDate        *time.Time        `json:"expiryDate,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
}
