package generate

import (
	"reflect"
	"strings"
	"testing"
)

func TestFallbackDeterministic(t *testing.T) {
	first := Fallback("Astronomy", 6)
	second := Fallback("Astronomy", 6)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("fallback must be reproducible for the same topic/count")
	}
}

func TestFallbackJavaScriptBucket(t *testing.T) {
	questions := Fallback("JavaScript", 3)
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	if questions[0].Question != "What is the correct way to declare a variable in JavaScript?" {
		t.Fatalf("expected fixed bucket order, got %q", questions[0].Question)
	}
	if questions[1].CorrectAnswer != "False" {
		t.Fatalf("expected compiled-language statement to be false, got %q", questions[1].CorrectAnswer)
	}
}

func TestFallbackBucketMatchIsCaseInsensitiveSubstring(t *testing.T) {
	questions := Fallback("Advanced PYTHON for data work", 1)
	if questions[0].CorrectAnswer != ".py" {
		t.Fatalf("expected python bucket, got %+v", questions[0])
	}
}

func TestFallbackUnknownTopicInterpolates(t *testing.T) {
	questions := Fallback("Quantum Computing", 8)
	if len(questions) != 8 {
		t.Fatalf("expected generic bucket plus cross-topic templates = 8, got %d", len(questions))
	}
	for i, q := range questions {
		if !strings.Contains(q.Question, "Quantum Computing") {
			t.Fatalf("question %d missing topic interpolation: %q", i, q.Question)
		}
	}
	// Generic bucket first, then the cross-topic templates.
	if !strings.HasPrefix(questions[0].Question, "What is a fundamental concept in") {
		t.Fatalf("unexpected leading question: %q", questions[0].Question)
	}
	if !strings.HasPrefix(questions[5].Question, "Which of the following is most important") {
		t.Fatalf("expected cross-topic templates after generic set, got %q", questions[5].Question)
	}
}

func TestFallbackCapacityCeiling(t *testing.T) {
	questions := Fallback("history", 50)
	if len(questions) != 6 {
		t.Fatalf("expected bucket(3)+cross-topic(3)=6 at the ceiling, got %d", len(questions))
	}
}

func TestFallbackTruncatesToCount(t *testing.T) {
	if got := len(Fallback("history", 2)); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}
