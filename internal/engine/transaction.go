package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/opencompliance/kestrel/internal/catalog"
	"github.com/opencompliance/kestrel/internal/domain"
	"github.com/opencompliance/kestrel/internal/patterns"
	"github.com/opencompliance/kestrel/internal/rules"
)

// EvaluateTransaction scores a transaction record. The record is appended
// to the history ledger once scoring completes; a cancelled context
// abandons the evaluation before the append commits.
func (e *Engine) EvaluateTransaction(ctx context.Context, rec *domain.TransactionRecord, opts domain.TransactionOptions) (*domain.EvaluationResult, error) {
	if err := validateTransaction(rec); err != nil {
		return nil, err
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = e.now()
	}

	// Scan and append under the participant locks so concurrent
	// evaluations for the same identity always see each other's records.
	release := e.store.Acquire(rec.SenderID, rec.RecipientID)
	defer release()

	var factors []domain.RiskFactor
	factors = append(factors, catalog.AmountFactors(rec.Amount)...)
	if f, ok := catalog.TypeFactor(rec.Type); ok {
		factors = append(factors, f)
	}
	if f, ok := catalog.JurisdictionFactor(rec.SenderCountry, "sender"); ok {
		factors = append(factors, f)
	}
	if f, ok := catalog.JurisdictionFactor(rec.RecipientCountry, "recipient"); ok {
		factors = append(factors, f)
	}

	pat := patterns.NotAnalyzed()
	if opts.AnalyzePatterns {
		pat = e.detector.Detect(rec)
		factors = append(factors, pat.Factors...)
	}

	if e.rules != nil && e.rules.RulesCount() > 0 {
		factors = append(factors, e.evaluateCustomRules(ctx, rec)...)
	}

	raw := sumFactors(factors)
	score := clampScore(raw * catalog.ProfileMultiplier(opts.RiskProfile))
	status := classifyCompliance(score)

	result := &domain.EvaluationResult{
		CorrelationID:   uuid.New().String(),
		Domain:          domain.DomainTransaction,
		EntityID:        rec.ID,
		Score:           score,
		Status:          string(status),
		Factors:         factors,
		Recommendations: transactionRecommendations(score, status, factors),
		GeneratedAt:     e.now(),
		Patterns:        &pat.Summary,
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.store.AppendTransaction(rec)

	e.logger.Debug("transaction evaluated",
		"correlation_id", result.CorrelationID,
		"transaction_id", rec.ID,
		"score", score,
		"status", status,
		"factors", len(factors),
	)

	return result, nil
}

// evaluateCustomRules folds operator-defined CEL rules into the factor
// list. A rule contributes score x weight; failed rules contribute nothing.
func (e *Engine) evaluateCustomRules(ctx context.Context, rec *domain.TransactionRecord) []domain.RiskFactor {
	velocity := int64(len(e.store.RelatedTransactions(rec, e.now().Add(-patterns.VelocityWindow))))

	results := e.rules.EvaluateAll(ctx, &rules.EvaluateInput{
		Record:        rec,
		VelocityCount: velocity,
	})

	var factors []domain.RiskFactor
	for _, r := range results {
		if r.Err != "" {
			e.logger.Warn("custom rule evaluation failed",
				"rule_id", r.RuleID,
				"transaction_id", rec.ID,
				"error", r.Err,
			)
			continue
		}
		contribution := r.Contribution()
		if contribution <= 0 {
			continue
		}
		label := r.Name
		if r.Reason != "" {
			label = r.Name + ": " + r.Reason
		}
		severity := r.Severity
		if severity == "" {
			severity = catalog.SeverityForDelta(contribution)
		}
		factors = append(factors, domain.RiskFactor{
			Label:       label,
			WeightDelta: contribution,
			Severity:    severity,
		})
	}
	return factors
}

func validateTransaction(rec *domain.TransactionRecord) error {
	var missing []string
	if rec.Amount.IsZero() || rec.Amount.IsNegative() {
		missing = append(missing, "amount")
	}
	if rec.SenderID == "" {
		missing = append(missing, "senderId")
	}
	if rec.RecipientID == "" {
		missing = append(missing, "recipientId")
	}
	if rec.Type == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return domain.NewValidationError(missing...)
	}
	return nil
}

// transactionRecommendations applies the additive advice rules in source
// order.
func transactionRecommendations(score float64, status domain.ComplianceStatus, factors []domain.RiskFactor) []string {
	var recs []string

	if score >= highRiskThreshold {
		recs = append(recs, "Escalate to a compliance officer for review")
	}
	if hasFactorPrefix(factors, "possible structuring") {
		recs = append(recs, "File a suspicious activity report for potential structuring")
	}
	if hasFactorPrefix(factors, "velocity anomaly") {
		recs = append(recs, "Review recent transaction frequency for this customer")
	}
	if hasFactorPrefix(factors, "high-risk sender jurisdiction") || hasFactorPrefix(factors, "high-risk recipient jurisdiction") {
		recs = append(recs, "Verify source and destination of funds with enhanced due diligence")
	}
	if hasFactorPrefix(factors, "very high value transaction") {
		recs = append(recs, "Confirm the stated purpose and supporting documentation for the amount")
	}
	if status == domain.StatusNonCompliant {
		recs = append(recs, "Hold the transaction pending compliance approval")
	}
	if len(recs) == 0 {
		recs = append(recs, "No action required; continue standard monitoring")
	}
	return recs
}

func hasFactorPrefix(factors []domain.RiskFactor, prefix string) bool {
	for _, f := range factors {
		if len(f.Label) >= len(prefix) && f.Label[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
