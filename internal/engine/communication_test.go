package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/opencompliance/kestrel/internal/domain"
)

func newComm(content, channel string) *domain.CommunicationRecord {
	return &domain.CommunicationRecord{
		Content:     content,
		SenderID:    "advisor-1",
		RecipientID: "client-1",
		Channel:     channel,
	}
}

func TestEvaluateCommunicationValidation(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.EvaluateCommunication(context.Background(), &domain.CommunicationRecord{}, domain.CommunicationOptions{})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"content", "senderId", "recipientId", "channel"}
	if len(verr.MissingFields) != len(want) {
		t.Fatalf("missing fields = %v, want %v", verr.MissingFields, want)
	}
}

func TestEvaluateCommunicationGuaranteeClaim(t *testing.T) {
	eng, _ := newTestEngine(t)

	rec := newComm("I can guarantee this fund will outperform the market", domain.ChannelEmail)
	result, err := eng.EvaluateCommunication(context.Background(), rec, domain.CommunicationOptions{})
	if err != nil {
		t.Fatalf("EvaluateCommunication: %v", err)
	}

	// "guarantee" is a medium-severity flagged term worth 0.15 on email.
	if got := result.Score; got < 0.149 || got > 0.151 {
		t.Errorf("score = %v, want 0.15", got)
	}
	if result.Status != string(domain.StatusCompliant) {
		t.Errorf("status = %q, want %q", result.Status, domain.StatusCompliant)
	}
	if result.Analysis == nil || len(result.Analysis.FlaggedTerms) != 1 {
		t.Fatalf("analysis = %+v, want one flagged term", result.Analysis)
	}
	if result.Analysis.FlaggedTerms[0].Term != "guarantee" {
		t.Errorf("flagged term = %q, want guarantee", result.Analysis.FlaggedTerms[0].Term)
	}
	if result.Analysis.RegulatoryIssues != nil {
		t.Errorf("regulatory analysis ran without being requested: %v", result.Analysis.RegulatoryIssues)
	}
}

func TestEvaluateCommunicationRegulatoryOption(t *testing.T) {
	eng, _ := newTestEngine(t)

	rec := newComm("I can guarantee this fund will outperform the market", domain.ChannelEmail)
	result, err := eng.EvaluateCommunication(context.Background(), rec, domain.CommunicationOptions{
		CheckRegulatoryCompliance: true,
	})
	if err != nil {
		t.Fatalf("EvaluateCommunication: %v", err)
	}

	if len(result.Analysis.RegulatoryIssues) != 1 {
		t.Fatalf("regulatory issues = %v, want one", result.Analysis.RegulatoryIssues)
	}
	if result.Analysis.RegulatoryIssues[0].Regulation != "investment_advice" {
		t.Errorf("regulation = %q", result.Analysis.RegulatoryIssues[0].Regulation)
	}
	// 0.15 flagged term + 0.3 high-severity regulatory issue
	if got := result.Score; got < 0.449 || got > 0.451 {
		t.Errorf("score = %v, want 0.45", got)
	}
	if result.Status != string(domain.StatusReviewRequired) {
		t.Errorf("status = %q, want %q", result.Status, domain.StatusReviewRequired)
	}
}

func TestEvaluateCommunicationCriticalRegulatory(t *testing.T) {
	eng, _ := newTestEngine(t)

	rec := newComm("buy before the announcement, this is insider information", domain.ChannelChat)
	result, err := eng.EvaluateCommunication(context.Background(), rec, domain.CommunicationOptions{
		CheckRegulatoryCompliance: true,
	})
	if err != nil {
		t.Fatalf("EvaluateCommunication: %v", err)
	}

	if len(result.Recommendations) == 0 || !strings.HasPrefix(result.Recommendations[0], "Immediate action required:") {
		t.Errorf("recommendations = %v, want an immediate-action lead", result.Recommendations)
	}
	if !domain.IsAlerting(result.Status) {
		t.Errorf("status = %q, want alerting", result.Status)
	}
}

func TestEvaluateCommunicationChannelMultiplier(t *testing.T) {
	content := "I can guarantee this fund will outperform the market"
	tests := []struct {
		channel string
		want    float64
	}{
		{domain.ChannelEmail, 0.15},
		{domain.ChannelMeeting, 0.15},
		{domain.ChannelChat, 0.165},
		{domain.ChannelPhone, 0.18},
		{domain.ChannelSMS, 0.195},
		{domain.ChannelSocialMedia, 0.225},
	}
	for _, tt := range tests {
		t.Run(tt.channel, func(t *testing.T) {
			eng, _ := newTestEngine(t)
			result, err := eng.EvaluateCommunication(context.Background(), newComm(content, tt.channel), domain.CommunicationOptions{})
			if err != nil {
				t.Fatalf("EvaluateCommunication: %v", err)
			}
			if got := result.Score; got < tt.want-0.001 || got > tt.want+0.001 {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateCommunicationSensitiveData(t *testing.T) {
	eng, _ := newTestEngine(t)

	rec := newComm("my password is hunter2, use it on the portal", domain.ChannelEmail)
	result, err := eng.EvaluateCommunication(context.Background(), rec, domain.CommunicationOptions{})
	if err != nil {
		t.Fatalf("EvaluateCommunication: %v", err)
	}

	if len(result.Analysis.SensitiveData) != 1 || result.Analysis.SensitiveData[0].Kind != "credentials" {
		t.Fatalf("sensitive data = %v, want credentials", result.Analysis.SensitiveData)
	}
	found := false
	for _, r := range result.Recommendations {
		if r == "Redact sensitive data and move the exchange to an approved channel" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected redaction recommendation in %v", result.Recommendations)
	}
}

func TestEvaluateCommunicationSentimentAndIntentOptional(t *testing.T) {
	eng, _ := newTestEngine(t)

	content := "act now or you will lose this amazing opportunity"

	plain, err := eng.EvaluateCommunication(context.Background(), newComm(content, domain.ChannelEmail), domain.CommunicationOptions{})
	if err != nil {
		t.Fatalf("EvaluateCommunication: %v", err)
	}
	if plain.Analysis.Sentiment != nil || plain.Analysis.Intent != nil {
		t.Errorf("sentiment/intent ran without being requested: %+v", plain.Analysis)
	}

	full, err := eng.EvaluateCommunication(context.Background(), newComm(content, domain.ChannelEmail), domain.CommunicationOptions{
		AnalyzeSentiment: true,
		DetectIntent:     true,
	})
	if err != nil {
		t.Fatalf("EvaluateCommunication: %v", err)
	}
	if full.Analysis.Sentiment == nil {
		t.Error("sentiment missing when requested")
	}
	if full.Analysis.Intent == nil {
		t.Error("intent missing when requested")
	}

	// Sentiment and intent inform recommendations but never the score.
	if plain.Score != full.Score {
		t.Errorf("score changed with analysis options: %v vs %v", plain.Score, full.Score)
	}
}

func TestEvaluateCommunicationAppendsHistory(t *testing.T) {
	eng, now := newTestEngine(t)

	rec := newComm("quarterly portfolio summary attached", domain.ChannelEmail)
	if _, err := eng.EvaluateCommunication(context.Background(), rec, domain.CommunicationOptions{}); err != nil {
		t.Fatalf("EvaluateCommunication: %v", err)
	}

	got := eng.History().CommunicationsFor(domain.ChannelEmail, "client-1", "advisor-1", now.Add(-time.Hour))
	if len(got) != 1 || got[0].ID != rec.ID {
		t.Errorf("history = %v, want the evaluated record", got)
	}
	if rec.ID == "" || rec.OccurredAt.IsZero() {
		t.Errorf("record not normalized: id=%q occurredAt=%v", rec.ID, rec.OccurredAt)
	}
}
