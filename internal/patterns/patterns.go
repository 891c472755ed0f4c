// Package patterns mines the history ledger for structuring and velocity
// anomalies relative to an incoming transaction.
package patterns

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/opencompliance/kestrel/internal/catalog"
	"github.com/opencompliance/kestrel/internal/domain"
	"github.com/opencompliance/kestrel/internal/history"
)

// Detection windows and contributions.
const (
	StructuringWindow = 30 * 24 * time.Hour
	VelocityWindow    = 7 * 24 * time.Hour

	structuringMinCount = 3
	velocityRatio       = 2

	structuringDelta = 0.4
	velocityDelta    = 0.2
	roundAmountDelta = 0.1
)

// Detector runs the historical pattern checks. Callers must hold the
// history locks for both participant identities across Detect and the
// subsequent append so concurrent same-identity evaluations serialize.
type Detector struct {
	store *history.Store
}

// NewDetector creates a detector over the given ledger.
func NewDetector(store *history.Store) *Detector {
	return &Detector{store: store}
}

// Result carries the emitted factors and the per-pattern breakdown.
type Result struct {
	Factors []domain.RiskFactor
	Summary domain.PatternSummary
}

// NotAnalyzed is the result reported when pattern analysis is disabled.
func NotAnalyzed() Result {
	return Result{
		Summary: domain.PatternSummary{
			Analyzed:    false,
			Structuring: domain.PatternNotAnalyzed,
			Velocity:    domain.PatternNotAnalyzed,
			RoundAmount: domain.PatternNotAnalyzed,
		},
	}
}

// Detect runs all pattern checks against the incoming transaction. Only
// records strictly in the past relative to the store clock are considered.
func (d *Detector) Detect(tx *domain.TransactionRecord) Result {
	now := d.store.Now()

	res := Result{
		Summary: domain.PatternSummary{
			Analyzed:    true,
			Structuring: domain.PatternNotDetected,
			Velocity:    domain.PatternNotDetected,
			RoundAmount: domain.PatternNotDetected,
		},
	}

	related := d.store.RelatedTransactions(tx, now.Add(-StructuringWindow))

	if factor, ok := detectStructuring(tx, related); ok {
		res.Summary.Structuring = domain.PatternDetected
		res.Factors = append(res.Factors, factor)
	}
	if factor, ok := detectVelocity(related, now); ok {
		res.Summary.Velocity = domain.PatternDetected
		res.Factors = append(res.Factors, factor)
	}
	if factor, ok := detectRoundAmount(tx.Amount); ok {
		res.Summary.RoundAmount = domain.PatternDetected
		res.Factors = append(res.Factors, factor)
	}
	return res
}

// detectStructuring fires when at least three related transactions in the
// trailing 30 days each sit below the reporting threshold while their sum
// plus the new amount crosses it.
func detectStructuring(tx *domain.TransactionRecord, related []*domain.TransactionRecord) (domain.RiskFactor, bool) {
	if len(related) < structuringMinCount {
		return domain.RiskFactor{}, false
	}

	sum := decimal.Zero
	for _, r := range related {
		if r.Amount.GreaterThanOrEqual(catalog.ReportingThreshold) {
			return domain.RiskFactor{}, false
		}
		sum = sum.Add(r.Amount)
	}

	if sum.Add(tx.Amount).LessThanOrEqual(catalog.ReportingThreshold) {
		return domain.RiskFactor{}, false
	}

	return domain.RiskFactor{
		Label: fmt.Sprintf("possible structuring: %d sub-threshold transactions totalling %s in 30 days",
			len(related), sum.Add(tx.Amount).StringFixed(2)),
		WeightDelta: structuringDelta,
		Severity:    catalog.SeverityForDelta(structuringDelta),
	}, true
}

// detectVelocity compares the trailing 7-day count against the preceding
// 7-14-day window. A doubling over a non-empty prior window fires.
func detectVelocity(related []*domain.TransactionRecord, now time.Time) (domain.RiskFactor, bool) {
	recentStart := now.Add(-VelocityWindow)
	priorStart := now.Add(-2 * VelocityWindow)

	recent, prior := 0, 0
	for _, r := range related {
		switch {
		case !r.OccurredAt.Before(recentStart):
			recent++
		case !r.OccurredAt.Before(priorStart):
			prior++
		}
	}

	if prior == 0 || recent < velocityRatio*prior {
		return domain.RiskFactor{}, false
	}

	return domain.RiskFactor{
		Label: fmt.Sprintf("velocity anomaly: %d transactions in 7 days vs %d in the prior week",
			recent, prior),
		WeightDelta: velocityDelta,
		Severity:    catalog.SeverityForDelta(velocityDelta),
	}, true
}

// detectRoundAmount flags conspicuously round amounts at or above the
// reporting threshold.
func detectRoundAmount(amount decimal.Decimal) (domain.RiskFactor, bool) {
	if amount.LessThan(catalog.ReportingThreshold) {
		return domain.RiskFactor{}, false
	}
	if !amount.Mod(catalog.RoundAmountBase).IsZero() {
		return domain.RiskFactor{}, false
	}
	return domain.RiskFactor{
		Label:       fmt.Sprintf("round amount: %s", amount.StringFixed(2)),
		WeightDelta: roundAmountDelta,
		Severity:    catalog.SeverityForDelta(roundAmountDelta),
	}, true
}
