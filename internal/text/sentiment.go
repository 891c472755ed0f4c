package text

import (
	"math"
	"strings"
	"unicode"

	"github.com/opencompliance/kestrel/internal/domain"
)

// Sentiment classification cutoffs.
const (
	positiveCutoff = 0.2
	negativeCutoff = -0.2
)

// Word-count divisor cap: long messages stop diluting the score at 20 words.
const sentimentWordCap = 20

var positiveWords = []string{
	"good", "great", "excellent", "happy", "pleased", "thank",
	"appreciate", "wonderful", "helpful", "resolved", "satisfied",
}

var negativeWords = []string{
	"bad", "poor", "terrible", "unhappy", "sad", "angry", "disappointed",
	"complaint", "frustrated", "unacceptable", "problem", "wrong", "failed",
}

// Emotion axes tracked by the scorer, in reporting order.
var emotionAxes = []string{"happiness", "anger", "frustration", "urgency", "confusion"}

var emotionKeywords = map[string][]string{
	"happiness":   {"happy", "glad", "pleased", "delighted", "wonderful", "great news"},
	"anger":       {"angry", "furious", "outraged", "unacceptable", "ridiculous", "hate"},
	"frustration": {"frustrated", "annoyed", "fed up", "tired of", "still waiting", "yet again"},
	"urgency":     {"urgent", "immediately", "asap", "right away", "deadline", "act now"},
	"confusion":   {"confused", "unclear", "don't understand", "what do you mean", "makes no sense"},
}

// Per-hit increment for emotion keywords.
const emotionKeywordDelta = 0.2

// Caps for the punctuation and casing signals.
const (
	exclamationUrgencyCap = 0.3
	exclamationAngerCap   = 0.3
	capsAngerCap          = 0.4
	capsUrgencyCap        = 0.3
)

// SentimentScorer scores message sentiment from fixed word lists and an
// auxiliary emotion vector.
type SentimentScorer struct{}

// NewSentimentScorer creates a sentiment scorer.
func NewSentimentScorer() *SentimentScorer {
	return &SentimentScorer{}
}

// Score computes the sentiment of content. The score divides the net
// positive/negative word count by the word count, capped at 20 words so
// short messages are not drowned out.
func (s *SentimentScorer) Score(content string) *domain.SentimentResult {
	lower := strings.ToLower(content)
	words := strings.Fields(content)
	wordCount := len(words)

	positive := 0
	for _, w := range positiveWords {
		positive += strings.Count(lower, w)
	}
	negative := 0
	for _, w := range negativeWords {
		negative += strings.Count(lower, w)
	}

	divisor := max(1, min(wordCount, sentimentWordCap))
	score := float64(positive-negative) / float64(divisor)

	label := domain.SentimentNeutral
	switch {
	case score > positiveCutoff:
		label = domain.SentimentPositive
	case score < negativeCutoff:
		label = domain.SentimentNegative
	}

	return &domain.SentimentResult{
		Score:    score,
		Label:    label,
		Emotions: s.emotions(content, lower, words),
	}
}

// emotions accumulates the five-axis emotion vector: fixed increments per
// keyword hit, plus exclamation and ALL-CAPS density signals, each capped.
func (s *SentimentScorer) emotions(content, lower string, words []string) map[string]float64 {
	emotions := make(map[string]float64, len(emotionAxes))
	for _, axis := range emotionAxes {
		for _, kw := range emotionKeywords[axis] {
			emotions[axis] += float64(strings.Count(lower, kw)) * emotionKeywordDelta
		}
	}

	denom := float64(max(1, len(words)))

	exclDensity := float64(strings.Count(content, "!")) / denom
	emotions["urgency"] += math.Min(exclamationUrgencyCap, exclDensity)
	emotions["anger"] += math.Min(exclamationAngerCap, exclDensity)

	capsDensity := float64(countCapsWords(words)) / denom
	emotions["anger"] += math.Min(capsAngerCap, capsDensity)
	emotions["urgency"] += math.Min(capsUrgencyCap, capsDensity)

	for axis, v := range emotions {
		if v > 1 {
			emotions[axis] = 1
		}
	}
	return emotions
}

// countCapsWords counts shouting words: three or more letters, all upper case.
func countCapsWords(words []string) int {
	count := 0
	for _, w := range words {
		letters := 0
		upper := true
		for _, r := range w {
			if unicode.IsLetter(r) {
				letters++
				if !unicode.IsUpper(r) {
					upper = false
					break
				}
			}
		}
		if upper && letters >= 3 {
			count++
		}
	}
	return count
}
