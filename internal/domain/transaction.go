package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is an immutable log entry describing a single transaction.
// Records are appended to the history ledger after scoring and never mutated.
type TransactionRecord struct {
	ID string `json:"id"`

	// Financial details
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`

	// Parties involved
	SenderID         string `json:"senderId"`
	SenderCountry    string `json:"senderCountry,omitempty"`
	RecipientID      string `json:"recipientId"`
	RecipientCountry string `json:"recipientCountry,omitempty"`

	// Transaction type (e.g., "wire", "international")
	Type string `json:"type"`

	// Optional free-text purpose
	Purpose string `json:"purpose,omitempty"`

	// Temporal
	OccurredAt time.Time `json:"occurredAt"`
}

// Transaction type constants.
const (
	TxTypeDomestic      = "domestic"
	TxTypeInternational = "international"
	TxTypeWire          = "wire"
	TxTypeACH           = "ach"
	TxTypeInternal      = "internal"
)

// Risk profile constants for transaction evaluation.
const (
	ProfileLow      = "low"
	ProfileStandard = "standard"
	ProfileHigh     = "high"
)

// TransactionOptions controls how a transaction evaluation runs.
type TransactionOptions struct {
	// RiskProfile selects the score multiplier: "low", "standard", "high".
	RiskProfile string `json:"riskProfile,omitempty"`

	// AnalyzePatterns enables historical structuring/velocity detection.
	AnalyzePatterns bool `json:"analyzePatterns,omitempty"`
}

// TransactionRequest is the API request payload for transaction evaluation.
type TransactionRequest struct {
	TransactionID    string          `json:"transactionId,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency,omitempty"`
	SenderID         string          `json:"senderId"`
	SenderCountry    string          `json:"senderCountry,omitempty"`
	RecipientID      string          `json:"recipientId"`
	RecipientCountry string          `json:"recipientCountry,omitempty"`
	Type             string          `json:"type"`
	Purpose          string          `json:"purpose,omitempty"`
	OccurredAt       *time.Time      `json:"occurredAt,omitempty"`

	RiskProfile     string `json:"riskProfile,omitempty"`
	AnalyzePatterns bool   `json:"analyzePatterns,omitempty"`
}

// ToRecord converts a request to a TransactionRecord domain object.
func (r *TransactionRequest) ToRecord() *TransactionRecord {
	occurred := time.Now().UTC()
	if r.OccurredAt != nil {
		occurred = r.OccurredAt.UTC()
	}
	return &TransactionRecord{
		ID:               r.TransactionID,
		Amount:           r.Amount,
		Currency:         r.Currency,
		SenderID:         r.SenderID,
		SenderCountry:    r.SenderCountry,
		RecipientID:      r.RecipientID,
		RecipientCountry: r.RecipientCountry,
		Type:             r.Type,
		Purpose:          r.Purpose,
		OccurredAt:       occurred,
	}
}

// Options extracts the evaluation options carried on the request.
func (r *TransactionRequest) Options() TransactionOptions {
	return TransactionOptions{
		RiskProfile:     r.RiskProfile,
		AnalyzePatterns: r.AnalyzePatterns,
	}
}
