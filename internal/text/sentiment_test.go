package text

import (
	"strings"
	"testing"

	"github.com/opencompliance/kestrel/internal/domain"
)

func TestSentimentPositive(t *testing.T) {
	s := NewSentimentScorer()

	result := s.Score("Thank you, this is great and excellent")

	// 3 positive hits over 7 words
	if result.Label != domain.SentimentPositive {
		t.Errorf("expected positive, got %s (score %.3f)", result.Label, result.Score)
	}
	if result.Score <= 0.2 {
		t.Errorf("expected score above cutoff, got %.3f", result.Score)
	}
}

func TestSentimentNegative(t *testing.T) {
	s := NewSentimentScorer()

	result := s.Score("This is terrible, absolutely terrible and wrong")

	if result.Label != domain.SentimentNegative {
		t.Errorf("expected negative, got %s (score %.3f)", result.Label, result.Score)
	}
	if result.Score >= -0.2 {
		t.Errorf("expected score below cutoff, got %.3f", result.Score)
	}
}

func TestSentimentNeutral(t *testing.T) {
	s := NewSentimentScorer()

	result := s.Score("The meeting is scheduled for Tuesday")

	if result.Label != domain.SentimentNeutral {
		t.Errorf("expected neutral, got %s", result.Label)
	}
	if result.Score != 0 {
		t.Errorf("expected score 0, got %.3f", result.Score)
	}
}

func TestSentimentWordCap(t *testing.T) {
	s := NewSentimentScorer()

	// 30 words, 5 positive hits: divisor caps at 20, so 5/20 = 0.25
	content := strings.Repeat("the quick brown fox jumps ", 5) +
		"great great great great great"
	result := s.Score(content)

	if result.Score != 0.25 {
		t.Errorf("expected capped score 0.25, got %.3f", result.Score)
	}
	if result.Label != domain.SentimentPositive {
		t.Errorf("expected positive, got %s", result.Label)
	}
}

func TestSentimentEmptyContent(t *testing.T) {
	s := NewSentimentScorer()

	result := s.Score("")

	if result.Score != 0 {
		t.Errorf("expected score 0 for empty content, got %.3f", result.Score)
	}
	if result.Label != domain.SentimentNeutral {
		t.Errorf("expected neutral, got %s", result.Label)
	}
}

func TestEmotionSignals(t *testing.T) {
	s := NewSentimentScorer()

	result := s.Score("URGENT!!! Reply immediately!!!")

	// Keyword hits plus exclamation density plus caps density, clamped at 1
	if result.Emotions["urgency"] != 1.0 {
		t.Errorf("expected urgency clamped to 1.0, got %.3f", result.Emotions["urgency"])
	}
	if result.Emotions["anger"] <= 0.5 {
		t.Errorf("expected anger above 0.5, got %.3f", result.Emotions["anger"])
	}
	if result.Emotions["happiness"] != 0 {
		t.Errorf("expected no happiness, got %.3f", result.Emotions["happiness"])
	}
}

func TestEmotionCalmContent(t *testing.T) {
	s := NewSentimentScorer()

	result := s.Score("Please review the attached quarterly summary at your convenience.")

	for axis, v := range result.Emotions {
		if v != 0 {
			t.Errorf("expected zero %s for calm content, got %.3f", axis, v)
		}
	}
}

func TestCountCapsWords(t *testing.T) {
	// Short words like "OK" are not shouting
	words := strings.Fields("This is OK but STOP SHOUTING at me NOW")
	if got := countCapsWords(words); got != 3 {
		t.Errorf("expected 3 caps words, got %d", got)
	}
}
