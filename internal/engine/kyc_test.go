package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/opencompliance/kestrel/internal/domain"
)

func baseProfile() *domain.CustomerProfile {
	return &domain.CustomerProfile{
		CustomerID:   "cust-1",
		Name:         "Jordan Blake",
		DateOfBirth:  "1985-04-12",
		Address:      "1 Main St, Springfield",
		DocumentType: domain.DocDriversLicense,
		DocumentID:   "D1234567",
	}
}

func TestEvaluateKYCValidation(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.EvaluateKYC(context.Background(), &domain.CustomerProfile{}, domain.KYCOptions{})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"customerId", "name", "dateOfBirth", "address", "documentType", "documentId"}
	if len(verr.MissingFields) != len(want) {
		t.Fatalf("missing fields = %v, want %v", verr.MissingFields, want)
	}
}

func TestEvaluateKYCCleanProfile(t *testing.T) {
	eng, now := newTestEngine(t)

	result, err := eng.EvaluateKYC(context.Background(), baseProfile(), domain.KYCOptions{})
	if err != nil {
		t.Fatalf("EvaluateKYC: %v", err)
	}

	if result.Score != 0 {
		t.Errorf("score = %v, want 0", result.Score)
	}
	if result.Status != string(domain.KYCVerified) {
		t.Errorf("status = %q, want %q", result.Status, domain.KYCVerified)
	}
	if result.VerificationLevel != domain.LevelStandard {
		t.Errorf("level = %q, want %q", result.VerificationLevel, domain.LevelStandard)
	}
	if result.ExpiryDate == nil || !result.ExpiryDate.Equal(now.AddDate(2, 0, 0)) {
		t.Errorf("expiry = %v, want %v", result.ExpiryDate, now.AddDate(2, 0, 0))
	}
	if result.Domain != domain.DomainKYC {
		t.Errorf("domain = %q", result.Domain)
	}
}

func TestEvaluateKYCVerificationLevel(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.CustomerProfile)
		opts    domain.KYCOptions
		want    domain.VerificationLevel
	}{
		{
			name:   "drivers license stays standard",
			mutate: func(p *domain.CustomerProfile) {},
			want:   domain.LevelStandard,
		},
		{
			name:   "passport forces enhanced",
			mutate: func(p *domain.CustomerProfile) { p.DocumentType = domain.DocPassport },
			want:   domain.LevelEnhanced,
		},
		{
			name:   "national id forces enhanced",
			mutate: func(p *domain.CustomerProfile) { p.DocumentType = domain.DocNationalID },
			want:   domain.LevelEnhanced,
		},
		{
			name: "two additional documents force enhanced",
			mutate: func(p *domain.CustomerProfile) {
				p.AdditionalDocuments = []string{domain.DocUtilityBill, domain.DocBankStatement}
			},
			want: domain.LevelEnhanced,
		},
		{
			name:   "single additional document stays standard",
			mutate: func(p *domain.CustomerProfile) { p.AdditionalDocuments = []string{domain.DocUtilityBill} },
			want:   domain.LevelStandard,
		},
		{
			name:   "pep forces enhanced",
			mutate: func(p *domain.CustomerProfile) { p.IsPoliticallyExposed = true },
			want:   domain.LevelEnhanced,
		},
		{
			name:   "high-risk industry forces enhanced",
			mutate: func(p *domain.CustomerProfile) { p.IndustrySector = "gambling" },
			want:   domain.LevelEnhanced,
		},
		{
			name:   "enhanced mode forces enhanced",
			mutate: func(p *domain.CustomerProfile) {},
			opts:   domain.KYCOptions{VerificationMode: domain.VerificationModeEnhanced},
			want:   domain.LevelEnhanced,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _ := newTestEngine(t)
			profile := baseProfile()
			tt.mutate(profile)

			result, err := eng.EvaluateKYC(context.Background(), profile, tt.opts)
			if err != nil {
				t.Fatalf("EvaluateKYC: %v", err)
			}
			if result.VerificationLevel != tt.want {
				t.Errorf("level = %q, want %q", result.VerificationLevel, tt.want)
			}
		})
	}
}

func TestEvaluateKYCRejected(t *testing.T) {
	eng, _ := newTestEngine(t)

	profile := baseProfile()
	profile.IsPoliticallyExposed = true
	profile.Nationality = "IR"
	profile.Occupation = "arms dealer"
	profile.IndustrySector = "gambling"

	result, err := eng.EvaluateKYC(context.Background(), profile, domain.KYCOptions{})
	if err != nil {
		t.Fatalf("EvaluateKYC: %v", err)
	}

	// 0.3 PEP + 0.2 nationality + 0.15 occupation + 0.15 industry
	if got := result.Score; got < 0.799 || got > 0.801 {
		t.Errorf("score = %v, want 0.8", got)
	}
	if result.Status != string(domain.KYCRejected) {
		t.Errorf("status = %q, want %q", result.Status, domain.KYCRejected)
	}
	if result.ExpiryDate != nil {
		t.Errorf("expiry = %v, want nil for a rejection", result.ExpiryDate)
	}
	if len(result.Recommendations) == 0 || result.Recommendations[0] != "Do not onboard; escalate to the compliance team" {
		t.Errorf("recommendations = %v", result.Recommendations)
	}
}

func TestEvaluateKYCReviewRequired(t *testing.T) {
	eng, now := newTestEngine(t)

	profile := baseProfile()
	profile.IsPoliticallyExposed = true
	profile.Nationality = "IR"

	result, err := eng.EvaluateKYC(context.Background(), profile, domain.KYCOptions{})
	if err != nil {
		t.Fatalf("EvaluateKYC: %v", err)
	}

	if result.Status != string(domain.KYCReviewRequired) {
		t.Errorf("status = %q, want %q", result.Status, domain.KYCReviewRequired)
	}
	if result.ExpiryDate == nil || !result.ExpiryDate.Equal(now.AddDate(1, 0, 0)) {
		t.Errorf("expiry = %v, want one year out", result.ExpiryDate)
	}
}

func TestEvaluateKYCIdempotent(t *testing.T) {
	eng, _ := newTestEngine(t)

	profile := baseProfile()
	profile.DocumentType = domain.DocPassport
	profile.IsPoliticallyExposed = true

	first, err := eng.EvaluateKYC(context.Background(), profile, domain.KYCOptions{})
	if err != nil {
		t.Fatalf("EvaluateKYC: %v", err)
	}
	second, err := eng.EvaluateKYC(context.Background(), profile, domain.KYCOptions{})
	if err != nil {
		t.Fatalf("EvaluateKYC: %v", err)
	}

	if first.Score != second.Score {
		t.Errorf("scores differ: %v vs %v", first.Score, second.Score)
	}
	if first.Status != second.Status {
		t.Errorf("statuses differ: %q vs %q", first.Status, second.Status)
	}
	if first.VerificationLevel != second.VerificationLevel {
		t.Errorf("levels differ: %q vs %q", first.VerificationLevel, second.VerificationLevel)
	}
}

func TestVerificationRecordFor(t *testing.T) {
	eng, _ := newTestEngine(t)

	result, err := eng.EvaluateKYC(context.Background(), baseProfile(), domain.KYCOptions{})
	if err != nil {
		t.Fatalf("EvaluateKYC: %v", err)
	}

	rec := VerificationRecordFor(result)
	if rec.VerificationID != result.CorrelationID {
		t.Errorf("verification id = %q, want %q", rec.VerificationID, result.CorrelationID)
	}
	if rec.CustomerID != "cust-1" {
		t.Errorf("customer id = %q", rec.CustomerID)
	}
	if rec.RiskScore != result.Score || rec.Status != result.Status {
		t.Errorf("record = %+v does not mirror result", rec)
	}
	if rec.ExpiryDate == nil || !rec.ExpiryDate.Equal(*result.ExpiryDate) {
		t.Errorf("expiry not carried over")
	}
}
