package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/opencompliance/kestrel/internal/domain"
	"github.com/opencompliance/kestrel/internal/history"
	"github.com/opencompliance/kestrel/internal/rules"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, time.Time) {
	t.Helper()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	store := history.NewStore(history.WithClock(func() time.Time { return now }))
	eng, err := New(store, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng, now
}

func newTx(amount int64, txType, sender, recipient string) *domain.TransactionRecord {
	return &domain.TransactionRecord{
		Amount:      decimal.NewFromInt(amount),
		Currency:    "USD",
		Type:        txType,
		SenderID:    sender,
		RecipientID: recipient,
	}
}

func TestEvaluateTransactionValidation(t *testing.T) {
	eng, _ := newTestEngine(t)

	tests := []struct {
		name    string
		rec     *domain.TransactionRecord
		missing []string
	}{
		{
			name:    "empty record",
			rec:     &domain.TransactionRecord{},
			missing: []string{"amount", "senderId", "recipientId", "type"},
		},
		{
			name: "negative amount",
			rec: &domain.TransactionRecord{
				Amount:      decimal.NewFromInt(-50),
				SenderID:    "a",
				RecipientID: "b",
				Type:        domain.TxTypeDomestic,
			},
			missing: []string{"amount"},
		},
		{
			name: "missing sender",
			rec: &domain.TransactionRecord{
				Amount:      decimal.NewFromInt(100),
				RecipientID: "b",
				Type:        domain.TxTypeDomestic,
			},
			missing: []string{"senderId"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.EvaluateTransaction(context.Background(), tt.rec, domain.TransactionOptions{})
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr.MissingFields) != len(tt.missing) {
				t.Fatalf("missing fields = %v, want %v", verr.MissingFields, tt.missing)
			}
			for i, f := range tt.missing {
				if verr.MissingFields[i] != f {
					t.Errorf("missing[%d] = %q, want %q", i, verr.MissingFields[i], f)
				}
			}
		})
	}
}

func TestEvaluateTransactionLowRisk(t *testing.T) {
	eng, _ := newTestEngine(t)

	rec := newTx(500, domain.TxTypeInternal, "cust-1", "cust-2")
	result, err := eng.EvaluateTransaction(context.Background(), rec, domain.TransactionOptions{})
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}

	if result.Score != 0 {
		t.Errorf("score = %v, want 0", result.Score)
	}
	if result.Status != string(domain.StatusCompliant) {
		t.Errorf("status = %q, want %q", result.Status, domain.StatusCompliant)
	}
	if result.Domain != domain.DomainTransaction {
		t.Errorf("domain = %q", result.Domain)
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0] != "No action required; continue standard monitoring" {
		t.Errorf("recommendations = %v", result.Recommendations)
	}
	if result.Patterns == nil || result.Patterns.Analyzed {
		t.Errorf("patterns = %+v, want not analyzed", result.Patterns)
	}
	if result.Patterns.Structuring != domain.PatternNotAnalyzed {
		t.Errorf("structuring = %q, want %q", result.Patterns.Structuring, domain.PatternNotAnalyzed)
	}
	if rec.ID == "" {
		t.Error("record should have been assigned an ID")
	}
	if result.EntityID != rec.ID {
		t.Errorf("entity id = %q, want %q", result.EntityID, rec.ID)
	}
}

func TestEvaluateTransactionHighRiskInternational(t *testing.T) {
	eng, _ := newTestEngine(t)

	rec := newTx(15000, domain.TxTypeInternational, "cust-1", "cust-2")
	rec.RecipientCountry = "IR"

	result, err := eng.EvaluateTransaction(context.Background(), rec, domain.TransactionOptions{})
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}

	// 0.2 high value + 0.15 international + 0.3 high-risk jurisdiction
	if got := result.Score; got < 0.649 || got > 0.651 {
		t.Errorf("score = %v, want 0.65", got)
	}
	if result.Status != string(domain.StatusHighRisk) {
		t.Errorf("status = %q, want %q", result.Status, domain.StatusHighRisk)
	}
	wantRecs := map[string]bool{
		"Escalate to a compliance officer for review":                       false,
		"Verify source and destination of funds with enhanced due diligence": false,
	}
	for _, r := range result.Recommendations {
		if _, ok := wantRecs[r]; ok {
			wantRecs[r] = true
		}
	}
	for want, seen := range wantRecs {
		if !seen {
			t.Errorf("expected recommendation %q in %v", want, result.Recommendations)
		}
	}
}

func TestEvaluateTransactionStructuring(t *testing.T) {
	eng, now := newTestEngine(t)

	for i := 0; i < 4; i++ {
		prior := newTx(3000, domain.TxTypeDomestic, "cust-1", "merchant-1")
		prior.ID = "prior-" + string(rune('a'+i))
		prior.OccurredAt = now.Add(-time.Duration(i+1) * 24 * time.Hour)
		eng.History().AppendTransaction(prior)
	}

	rec := newTx(3000, domain.TxTypeDomestic, "cust-1", "merchant-1")
	result, err := eng.EvaluateTransaction(context.Background(), rec, domain.TransactionOptions{AnalyzePatterns: true})
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}

	if result.Patterns.Structuring != domain.PatternDetected {
		t.Fatalf("structuring = %q, want detected", result.Patterns.Structuring)
	}
	// 0.02 domestic + 0.4 structuring
	if got := result.Score; got < 0.419 || got > 0.421 {
		t.Errorf("score = %v, want 0.42", got)
	}
	if result.Status != string(domain.StatusReviewRequired) {
		t.Errorf("status = %q, want %q", result.Status, domain.StatusReviewRequired)
	}
	found := false
	for _, r := range result.Recommendations {
		if r == "File a suspicious activity report for potential structuring" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected structuring recommendation in %v", result.Recommendations)
	}
}

func TestEvaluateTransactionVelocity(t *testing.T) {
	eng, now := newTestEngine(t)

	// Two transactions in the prior week, four in the trailing week.
	offsets := []time.Duration{
		-10 * 24 * time.Hour, -9 * 24 * time.Hour,
		-5 * 24 * time.Hour, -4 * 24 * time.Hour, -3 * 24 * time.Hour, -2 * 24 * time.Hour,
	}
	for i, off := range offsets {
		prior := newTx(500, domain.TxTypeInternal, "cust-9", "merchant-9")
		prior.ID = "prior-" + string(rune('a'+i))
		prior.OccurredAt = now.Add(off)
		eng.History().AppendTransaction(prior)
	}

	rec := newTx(500, domain.TxTypeInternal, "cust-9", "merchant-9")
	result, err := eng.EvaluateTransaction(context.Background(), rec, domain.TransactionOptions{AnalyzePatterns: true})
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}

	if result.Patterns.Velocity != domain.PatternDetected {
		t.Fatalf("velocity = %q, want detected", result.Patterns.Velocity)
	}
	if result.Patterns.Structuring != domain.PatternNotDetected {
		t.Errorf("structuring = %q, want not detected", result.Patterns.Structuring)
	}
	found := false
	for _, r := range result.Recommendations {
		if r == "Review recent transaction frequency for this customer" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected velocity recommendation in %v", result.Recommendations)
	}
}

func TestEvaluateTransactionProfileMultiplier(t *testing.T) {
	tests := []struct {
		profile    string
		wantScore  float64
		wantStatus domain.ComplianceStatus
	}{
		{domain.ProfileLow, 0.52, domain.StatusReviewRequired},
		{domain.ProfileStandard, 0.65, domain.StatusHighRisk},
		{domain.ProfileHigh, 0.78, domain.StatusHighRisk},
	}
	for _, tt := range tests {
		t.Run(tt.profile, func(t *testing.T) {
			eng, _ := newTestEngine(t)
			rec := newTx(15000, domain.TxTypeInternational, "cust-1", "cust-2")
			rec.RecipientCountry = "IR"

			result, err := eng.EvaluateTransaction(context.Background(), rec, domain.TransactionOptions{RiskProfile: tt.profile})
			if err != nil {
				t.Fatalf("EvaluateTransaction: %v", err)
			}
			if got := result.Score; got < tt.wantScore-0.001 || got > tt.wantScore+0.001 {
				t.Errorf("score = %v, want %v", got, tt.wantScore)
			}
			if result.Status != string(tt.wantStatus) {
				t.Errorf("status = %q, want %q", result.Status, tt.wantStatus)
			}
		})
	}
}

func TestEvaluateTransactionScoreClamped(t *testing.T) {
	eng, _ := newTestEngine(t)

	rec := newTx(100000, domain.TxTypeWire, "cust-1", "cust-2")
	rec.SenderCountry = "IR"
	rec.RecipientCountry = "KP"

	result, err := eng.EvaluateTransaction(context.Background(), rec, domain.TransactionOptions{RiskProfile: domain.ProfileHigh})
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}

	if result.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", result.Score)
	}
	if result.Status != string(domain.StatusNonCompliant) {
		t.Errorf("status = %q, want %q", result.Status, domain.StatusNonCompliant)
	}
	found := false
	for _, r := range result.Recommendations {
		if r == "Hold the transaction pending compliance approval" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected hold recommendation in %v", result.Recommendations)
	}
}

func TestEvaluateTransactionCustomRules(t *testing.T) {
	ruleEngine, err := rules.NewEngine(2)
	if err != nil {
		t.Fatalf("rules.NewEngine: %v", err)
	}
	defer ruleEngine.Close()
	if err := ruleEngine.LoadRules(rules.BuiltinRules()); err != nil {
		t.Fatalf("LoadRules: %v", err)
	}

	eng, _ := newTestEngine(t, WithRules(ruleEngine))

	rec := newTx(500, domain.TxTypeInternal, "cust-1", "cust-1")
	result, err := eng.EvaluateTransaction(context.Background(), rec, domain.TransactionOptions{})
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}

	var ruleFactor *domain.RiskFactor
	for i := range result.Factors {
		if result.Factors[i].Label == "sender equals recipient: sender and recipient are the same identity" {
			ruleFactor = &result.Factors[i]
		}
	}
	if ruleFactor == nil {
		t.Fatalf("expected self-transfer factor in %v", result.Factors)
	}
	if got := ruleFactor.WeightDelta; got < 0.099 || got > 0.101 {
		t.Errorf("rule contribution = %v, want 0.1", got)
	}
	if ruleFactor.Severity != domain.SeverityMedium {
		t.Errorf("rule severity = %q, want medium", ruleFactor.Severity)
	}
}

func TestEvaluateTransactionContextCancelled(t *testing.T) {
	eng, now := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := newTx(500, domain.TxTypeInternal, "cust-1", "cust-2")
	if _, err := eng.EvaluateTransaction(ctx, rec, domain.TransactionOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	if got := eng.History().TransactionsFor("cust-1", "", now.Add(-time.Hour)); len(got) != 0 {
		t.Errorf("cancelled evaluation appended %d records", len(got))
	}
}

func TestEvaluateTransactionAppendsHistory(t *testing.T) {
	eng, now := newTestEngine(t)

	rec := newTx(500, domain.TxTypeInternal, "cust-1", "cust-2")
	if _, err := eng.EvaluateTransaction(context.Background(), rec, domain.TransactionOptions{}); err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}

	for _, id := range []string{"cust-1", "cust-2"} {
		got := eng.History().TransactionsFor(id, "", now.Add(-time.Hour))
		if len(got) != 1 || got[0].ID != rec.ID {
			t.Errorf("history for %s = %v, want the evaluated record", id, got)
		}
	}
}
