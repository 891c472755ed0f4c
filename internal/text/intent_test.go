package text

import "testing"

func TestIntentInformationSeeking(t *testing.T) {
	c := NewIntentClassifier()

	result := c.Classify("Can you tell me what is the current status of my application?")

	if result.Primary != "information_seeking" {
		t.Errorf("expected information_seeking, got %s", result.Primary)
	}
	if result.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %.3f", result.Confidence)
	}
}

func TestIntentPrimaryAndSecondary(t *testing.T) {
	c := NewIntentClassifier()

	// 2 complaint hits, 1 request hit: confidence 2/3
	result := c.Classify("I am dissatisfied with the poor service. Please send a refund.")

	if result.Primary != "complaint" {
		t.Errorf("expected complaint, got %s", result.Primary)
	}
	if result.Secondary != "request" {
		t.Errorf("expected secondary request, got %s", result.Secondary)
	}
	if result.Confidence < 0.66 || result.Confidence > 0.67 {
		t.Errorf("expected confidence ~0.667, got %.3f", result.Confidence)
	}
}

func TestIntentNeutralDefault(t *testing.T) {
	c := NewIntentClassifier()

	result := c.Classify("The weather has been pleasant this week.")

	if result.Primary != IntentNeutral {
		t.Errorf("expected neutral, got %s", result.Primary)
	}
	if result.Confidence != 0 {
		t.Errorf("expected confidence 0, got %.3f", result.Confidence)
	}
	if result.Secondary != "" {
		t.Errorf("expected no secondary intent, got %s", result.Secondary)
	}
}

func TestIntentPressure(t *testing.T) {
	c := NewIntentClassifier()

	result := c.Classify("Act now, this is your last chance before it's too late")

	if result.Primary != "pressure" {
		t.Errorf("expected pressure, got %s", result.Primary)
	}
	if result.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %.3f", result.Confidence)
	}
}

func TestIntentTieResolvesToEarlier(t *testing.T) {
	c := NewIntentClassifier()

	// One complaint hit and one instruction hit: complaint is earlier in
	// evaluation order
	result := c.Classify("This is unacceptable. Make sure it does not happen again.")

	if result.Primary != "complaint" {
		t.Errorf("expected complaint on tie, got %s", result.Primary)
	}
	if result.Secondary != "instruction" {
		t.Errorf("expected secondary instruction, got %s", result.Secondary)
	}
	if result.Confidence != 0.5 {
		t.Errorf("expected confidence 0.5, got %.3f", result.Confidence)
	}
}
