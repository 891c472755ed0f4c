package domain

import "time"

// CommunicationRecord is an immutable log entry describing a single message.
// Records are appended to the history ledger after scoring, scoped per
// channel/participant pair, and never mutated.
type CommunicationRecord struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Channel     string    `json:"channel"`
	Subject     string    `json:"subject,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Communication channel constants.
const (
	ChannelEmail       = "email"
	ChannelChat        = "chat"
	ChannelPhone       = "phone"
	ChannelMeeting     = "meeting"
	ChannelSMS         = "sms"
	ChannelSocialMedia = "social_media"
)

// CommunicationOptions controls which analyses run on a communication.
type CommunicationOptions struct {
	AnalyzeSentiment          bool `json:"analyzeSentiment,omitempty"`
	DetectIntent              bool `json:"detectIntent,omitempty"`
	CheckRegulatoryCompliance bool `json:"checkRegulatoryCompliance,omitempty"`
}

// CommunicationRequest is the API request payload for communication evaluation.
type CommunicationRequest struct {
	CommunicationID string     `json:"communicationId,omitempty"`
	Content         string     `json:"content"`
	SenderID        string     `json:"senderId"`
	RecipientID     string     `json:"recipientId"`
	Channel         string     `json:"channel"`
	Subject         string     `json:"subject,omitempty"`
	OccurredAt      *time.Time `json:"occurredAt,omitempty"`

	AnalyzeSentiment          bool `json:"analyzeSentiment,omitempty"`
	DetectIntent              bool `json:"detectIntent,omitempty"`
	CheckRegulatoryCompliance bool `json:"checkRegulatoryCompliance,omitempty"`
}

// ToRecord converts a request to a CommunicationRecord domain object.
func (r *CommunicationRequest) ToRecord() *CommunicationRecord {
	occurred := time.Now().UTC()
	if r.OccurredAt != nil {
		occurred = r.OccurredAt.UTC()
	}
	return &CommunicationRecord{
		ID:          r.CommunicationID,
		Content:     r.Content,
		SenderID:    r.SenderID,
		RecipientID: r.RecipientID,
		Channel:     r.Channel,
		Subject:     r.Subject,
		OccurredAt:  occurred,
	}
}

// Options extracts the evaluation options carried on the request.
func (r *CommunicationRequest) Options() CommunicationOptions {
	return CommunicationOptions{
		AnalyzeSentiment:          r.AnalyzeSentiment,
		DetectIntent:              r.DetectIntent,
		CheckRegulatoryCompliance: r.CheckRegulatoryCompliance,
	}
}

// ContentAnalysis carries the detailed text-analysis breakdown attached to a
// communication evaluation.
type ContentAnalysis struct {
	Sentiment        *SentimentResult  `json:"sentiment,omitempty"`
	Intent           *IntentResult     `json:"intent,omitempty"`
	RegulatoryIssues []RegulatoryIssue `json:"regulatoryIssues,omitempty"`
	SensitiveData    []SensitiveMatch  `json:"sensitiveData,omitempty"`
	FlaggedTerms     []FlaggedTerm     `json:"flaggedTerms,omitempty"`
}

// SentimentResult is the output of the sentiment scorer.
type SentimentResult struct {
	Score    float64            `json:"score"`
	Label    string             `json:"label"` // "positive", "negative", "neutral"
	Emotions map[string]float64 `json:"emotions,omitempty"`
}

// Sentiment label constants.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// IntentResult is the output of the intent classifier.
type IntentResult struct {
	Primary    string  `json:"primary"`
	Secondary  string  `json:"secondary,omitempty"`
	Confidence float64 `json:"confidence"`
}

// RegulatoryIssue describes a matched regulatory-compliance rule.
type RegulatoryIssue struct {
	Regulation  string   `json:"regulation"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// SensitiveMatch describes a sensitive-data pattern found in content.
type SensitiveMatch struct {
	Kind     string   `json:"kind"`
	Count    int      `json:"count"`
	Severity Severity `json:"severity"`
}

// FlaggedTerm describes a flagged phrase found in content, with the
// surrounding context captured for review.
type FlaggedTerm struct {
	Term     string   `json:"term"`
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	Context  string   `json:"context"`
}
