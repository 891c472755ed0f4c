package patterns

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/opencompliance/kestrel/internal/domain"
	"github.com/opencompliance/kestrel/internal/history"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestDetector() (*Detector, *history.Store) {
	store := history.NewStore(history.WithClock(func() time.Time { return testNow }))
	return NewDetector(store), store
}

func tx(id, sender, recipient string, amount float64, occurred time.Time) *domain.TransactionRecord {
	return &domain.TransactionRecord{
		ID:          id,
		Amount:      decimal.NewFromFloat(amount),
		SenderID:    sender,
		RecipientID: recipient,
		Type:        domain.TxTypeDomestic,
		OccurredAt:  occurred,
	}
}

func hasFactor(factors []domain.RiskFactor, delta float64) bool {
	for _, f := range factors {
		if f.WeightDelta == delta {
			return true
		}
	}
	return false
}

func TestStructuring(t *testing.T) {
	t.Run("FourSubThresholdPriors", func(t *testing.T) {
		d, store := newTestDetector()
		for i := 0; i < 4; i++ {
			store.AppendTransaction(tx("prior", "cust-1", "shop", 3000,
				testNow.Add(-time.Duration(i+1)*24*time.Hour)))
		}

		res := d.Detect(tx("tx-new", "cust-1", "shop", 3000, testNow))
		if res.Summary.Structuring != domain.PatternDetected {
			t.Fatalf("expected structuring detected, got %s", res.Summary.Structuring)
		}
		if !hasFactor(res.Factors, structuringDelta) {
			t.Errorf("expected a +%.1f structuring factor, got %+v", structuringDelta, res.Factors)
		}
	})

	t.Run("TooFewPriors", func(t *testing.T) {
		d, store := newTestDetector()
		store.AppendTransaction(tx("p1", "cust-1", "shop", 6000, testNow.Add(-24*time.Hour)))
		store.AppendTransaction(tx("p2", "cust-1", "shop", 6000, testNow.Add(-48*time.Hour)))

		res := d.Detect(tx("tx-new", "cust-1", "shop", 6000, testNow))
		if res.Summary.Structuring != domain.PatternNotDetected {
			t.Errorf("expected not detected with 2 priors, got %s", res.Summary.Structuring)
		}
	})

	t.Run("PriorAboveThresholdDisqualifies", func(t *testing.T) {
		d, store := newTestDetector()
		store.AppendTransaction(tx("p1", "cust-1", "shop", 12000, testNow.Add(-24*time.Hour)))
		store.AppendTransaction(tx("p2", "cust-1", "shop", 3000, testNow.Add(-48*time.Hour)))
		store.AppendTransaction(tx("p3", "cust-1", "shop", 3000, testNow.Add(-72*time.Hour)))

		res := d.Detect(tx("tx-new", "cust-1", "shop", 3000, testNow))
		if res.Summary.Structuring != domain.PatternNotDetected {
			t.Errorf("expected not detected when a prior exceeds threshold, got %s", res.Summary.Structuring)
		}
	})

	t.Run("SumBelowThreshold", func(t *testing.T) {
		d, store := newTestDetector()
		for i := 0; i < 3; i++ {
			store.AppendTransaction(tx("p", "cust-1", "shop", 1000,
				testNow.Add(-time.Duration(i+1)*24*time.Hour)))
		}

		res := d.Detect(tx("tx-new", "cust-1", "shop", 1000, testNow))
		if res.Summary.Structuring != domain.PatternNotDetected {
			t.Errorf("expected not detected when total stays under threshold, got %s", res.Summary.Structuring)
		}
	})

	t.Run("OutsideWindowIgnored", func(t *testing.T) {
		d, store := newTestDetector()
		for i := 0; i < 4; i++ {
			store.AppendTransaction(tx("p", "cust-1", "shop", 3000,
				testNow.Add(-35*24*time.Hour)))
		}

		res := d.Detect(tx("tx-new", "cust-1", "shop", 3000, testNow))
		if res.Summary.Structuring != domain.PatternNotDetected {
			t.Errorf("expected 35-day-old priors outside the window, got %s", res.Summary.Structuring)
		}
	})
}

func TestVelocity(t *testing.T) {
	t.Run("DoubledFrequency", func(t *testing.T) {
		d, store := newTestDetector()
		// 2 in the prior week, 4 in the trailing week.
		store.AppendTransaction(tx("p1", "cust-1", "a", 100, testNow.Add(-9*24*time.Hour)))
		store.AppendTransaction(tx("p2", "cust-1", "a", 100, testNow.Add(-10*24*time.Hour)))
		for i := 0; i < 4; i++ {
			store.AppendTransaction(tx("r", "cust-1", "a", 100,
				testNow.Add(-time.Duration(i+1)*24*time.Hour)))
		}

		res := d.Detect(tx("tx-new", "cust-1", "a", 100, testNow))
		if res.Summary.Velocity != domain.PatternDetected {
			t.Fatalf("expected velocity detected, got %s", res.Summary.Velocity)
		}
		if !hasFactor(res.Factors, velocityDelta) {
			t.Errorf("expected a +%.1f velocity factor", velocityDelta)
		}
	})

	t.Run("EmptyPriorWindow", func(t *testing.T) {
		d, store := newTestDetector()
		for i := 0; i < 6; i++ {
			store.AppendTransaction(tx("r", "cust-1", "a", 100,
				testNow.Add(-time.Duration(i+1)*time.Hour)))
		}

		res := d.Detect(tx("tx-new", "cust-1", "a", 100, testNow))
		if res.Summary.Velocity != domain.PatternNotDetected {
			t.Errorf("expected not detected with empty prior window, got %s", res.Summary.Velocity)
		}
	})

	t.Run("BelowDoubling", func(t *testing.T) {
		d, store := newTestDetector()
		store.AppendTransaction(tx("p1", "cust-1", "a", 100, testNow.Add(-8*24*time.Hour)))
		store.AppendTransaction(tx("p2", "cust-1", "a", 100, testNow.Add(-9*24*time.Hour)))
		store.AppendTransaction(tx("r1", "cust-1", "a", 100, testNow.Add(-24*time.Hour)))
		store.AppendTransaction(tx("r2", "cust-1", "a", 100, testNow.Add(-48*time.Hour)))
		store.AppendTransaction(tx("r3", "cust-1", "a", 100, testNow.Add(-72*time.Hour)))

		res := d.Detect(tx("tx-new", "cust-1", "a", 100, testNow))
		if res.Summary.Velocity != domain.PatternNotDetected {
			t.Errorf("expected 3 vs 2 to stay under the 2x ratio, got %s", res.Summary.Velocity)
		}
	})
}

func TestRoundAmount(t *testing.T) {
	cases := []struct {
		name     string
		amount   float64
		detected bool
	}{
		{"RoundAboveThreshold", 10000, true},
		{"RoundWellAbove", 25000, true},
		{"RoundBelowThreshold", 5000, false},
		{"NotRound", 10500.50, false},
		{"NotMultiple", 10500, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, _ := newTestDetector()
			res := d.Detect(tx("tx", "cust-1", "a", tc.amount, testNow))
			got := res.Summary.RoundAmount == domain.PatternDetected
			if got != tc.detected {
				t.Errorf("amount %.2f: expected detected=%v, got %v", tc.amount, tc.detected, got)
			}
		})
	}
}

func TestNotAnalyzed(t *testing.T) {
	res := NotAnalyzed()
	if res.Summary.Analyzed {
		t.Error("expected Analyzed=false")
	}
	if res.Summary.Structuring != domain.PatternNotAnalyzed {
		t.Errorf("expected not_analyzed, got %s", res.Summary.Structuring)
	}
	if len(res.Factors) != 0 {
		t.Errorf("expected no factors, got %d", len(res.Factors))
	}
}

func TestIdentityIsolation(t *testing.T) {
	d, store := newTestDetector()
	for i := 0; i < 4; i++ {
		store.AppendTransaction(tx("p", "cust-1", "shop", 3000,
			testNow.Add(-time.Duration(i+1)*24*time.Hour)))
	}

	// A different customer pair sees none of cust-1's history.
	res := d.Detect(tx("tx-other", "cust-2", "market", 3000, testNow))
	if res.Summary.Structuring != domain.PatternNotDetected {
		t.Errorf("unrelated identity influenced detection: %s", res.Summary.Structuring)
	}
}
