package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/opencompliance/kestrel/internal/catalog"
	"github.com/opencompliance/kestrel/internal/domain"
	"github.com/opencompliance/kestrel/internal/text"
)

// EvaluateCommunication scores a communication record. Flagged-term and
// sensitive-data checks always run; sentiment, intent and regulatory
// analysis are switched per request. The record joins the history ledger
// after scoring.
func (e *Engine) EvaluateCommunication(ctx context.Context, rec *domain.CommunicationRecord, opts domain.CommunicationOptions) (*domain.EvaluationResult, error) {
	if err := validateCommunication(rec); err != nil {
		return nil, err
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = e.now()
	}

	analysis := &domain.ContentAnalysis{}
	var factors []domain.RiskFactor

	analysis.FlaggedTerms = e.analyzer.Flagged(rec.Content)
	for _, term := range analysis.FlaggedTerms {
		factors = append(factors, domain.RiskFactor{
			Label:       "flagged term: " + term.Term,
			WeightDelta: text.FlaggedDelta(term.Severity),
			Severity:    term.Severity,
		})
	}

	analysis.SensitiveData = e.analyzer.Sensitive(rec.Content)
	for _, match := range analysis.SensitiveData {
		factors = append(factors, domain.RiskFactor{
			Label:       "sensitive data: " + match.Kind,
			WeightDelta: text.SensitiveDelta(match.Severity),
			Severity:    match.Severity,
		})
	}

	if opts.CheckRegulatoryCompliance {
		analysis.RegulatoryIssues = e.analyzer.Regulatory(rec.Content)
		for _, issue := range analysis.RegulatoryIssues {
			factors = append(factors, domain.RiskFactor{
				Label:       "regulatory issue: " + issue.Regulation,
				WeightDelta: text.RegulatoryDelta(issue.Severity),
				Severity:    issue.Severity,
			})
		}
	}

	if opts.AnalyzeSentiment {
		analysis.Sentiment = e.analyzer.Sentiment(rec.Content)
	}
	if opts.DetectIntent {
		analysis.Intent = e.analyzer.Intent(rec.Content)
	}

	raw := sumFactors(factors)
	score := clampScore(raw * catalog.ChannelMultiplier(rec.Channel))
	status := classifyCompliance(score)

	result := &domain.EvaluationResult{
		CorrelationID:   uuid.New().String(),
		Domain:          domain.DomainCommunication,
		EntityID:        rec.ID,
		Score:           score,
		Status:          string(status),
		Factors:         factors,
		Recommendations: communicationRecommendations(score, analysis),
		GeneratedAt:     e.now(),
		Analysis:        analysis,
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	release := e.store.Acquire(rec.SenderID, rec.RecipientID)
	e.store.AppendCommunication(rec)
	release()

	e.logger.Debug("communication evaluated",
		"correlation_id", result.CorrelationID,
		"communication_id", rec.ID,
		"channel", rec.Channel,
		"score", score,
		"status", status,
	)

	return result, nil
}

func validateCommunication(rec *domain.CommunicationRecord) error {
	var missing []string
	if rec.Content == "" {
		missing = append(missing, "content")
	}
	if rec.SenderID == "" {
		missing = append(missing, "senderId")
	}
	if rec.RecipientID == "" {
		missing = append(missing, "recipientId")
	}
	if rec.Channel == "" {
		missing = append(missing, "channel")
	}
	if len(missing) > 0 {
		return domain.NewValidationError(missing...)
	}
	return nil
}

func communicationRecommendations(score float64, analysis *domain.ContentAnalysis) []string {
	var recs []string

	for _, issue := range analysis.RegulatoryIssues {
		if issue.Severity == domain.SeverityCritical {
			recs = append(recs, "Immediate action required: "+issue.Description)
		}
	}
	for _, issue := range analysis.RegulatoryIssues {
		if issue.Severity == domain.SeverityHigh {
			recs = append(recs, "Review the message against "+issue.Regulation+" obligations")
		}
	}
	if score >= highRiskThreshold {
		recs = append(recs, "Escalate the conversation to a compliance officer")
	}
	if len(analysis.SensitiveData) > 0 {
		recs = append(recs, "Redact sensitive data and move the exchange to an approved channel")
	}
	if len(analysis.FlaggedTerms) > 0 {
		recs = append(recs, "Review the flagged language with the sender's supervisor")
	}
	if analysis.Intent != nil && (analysis.Intent.Primary == "pressure" || analysis.Intent.Primary == "deception") {
		recs = append(recs, "Assess the conversation for potential misconduct")
	}
	if analysis.Sentiment != nil && analysis.Sentiment.Label == domain.SentimentNegative {
		recs = append(recs, "Follow up with the customer to address dissatisfaction")
	}
	if len(recs) == 0 {
		recs = append(recs, "No action required; retain the record per policy")
	}
	return recs
}
