package text

import (
	"strings"

	"github.com/opencompliance/kestrel/internal/domain"
)

// IntentNeutral is reported when no intent pattern matches.
const IntentNeutral = "neutral"

// Intent names in evaluation order; ties resolve to the earlier intent.
var intentNames = []string{
	"information_seeking",
	"complaint",
	"request",
	"persuasion",
	"pressure",
	"deception",
	"disclosure",
	"instruction",
}

var intentPatterns = map[string][]string{
	"information_seeking": {
		"can you tell", "what is", "how do", "how does",
		"i would like to know", "please explain", "question about",
	},
	"complaint": {
		"complaint", "dissatisfied", "not happy", "poor service",
		"disappointed", "this is unacceptable",
	},
	"request": {
		"please send", "could you", "i need", "please provide",
		"can you send", "would you",
	},
	"persuasion": {
		"you should", "i recommend", "trust me", "believe me",
		"best option", "you won't regret",
	},
	"pressure": {
		"act now", "last chance", "limited time", "before it's too late",
		"or else", "final offer", "running out of time",
	},
	"deception": {
		"don't tell", "keep this between", "off the record",
		"no one needs to know", "delete this", "cover story",
	},
	"disclosure": {
		"between you and me", "i shouldn't share", "insider",
		"not public yet", "before the announcement", "confidentially",
	},
	"instruction": {
		"you must", "make sure", "follow these steps", "do the following",
		"transfer the", "send the funds",
	},
}

// IntentClassifier classifies the dominant intent of a message by counting
// pattern matches per intent.
type IntentClassifier struct{}

// NewIntentClassifier creates an intent classifier.
func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{}
}

// Classify counts pattern occurrences per intent against the lower-cased
// content. The primary intent is the highest count, the secondary the next;
// confidence is the primary's share of all matches.
func (c *IntentClassifier) Classify(content string) *domain.IntentResult {
	lower := strings.ToLower(content)

	counts := make(map[string]int, len(intentNames))
	total := 0
	for _, name := range intentNames {
		for _, p := range intentPatterns[name] {
			n := strings.Count(lower, p)
			counts[name] += n
			total += n
		}
	}

	if total == 0 {
		return &domain.IntentResult{Primary: IntentNeutral, Confidence: 0}
	}

	primary, secondary := "", ""
	for _, name := range intentNames {
		if primary == "" || counts[name] > counts[primary] {
			secondary = primary
			primary = name
			continue
		}
		if secondary == "" || counts[name] > counts[secondary] {
			secondary = name
		}
	}

	result := &domain.IntentResult{
		Primary:    primary,
		Confidence: float64(counts[primary]) / float64(total),
	}
	if secondary != "" && counts[secondary] > 0 {
		result.Secondary = secondary
	}
	return result
}
