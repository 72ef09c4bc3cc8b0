package domain

import "strings"

// multiSeparator is the persisted joiner for multi_select answer sets.
const multiSeparator = ", "

// AnswerKey is the typed form of a question's correct answer: a single string
// for multiple_choice, true_false and fill_blank, or a set of options for
// multi_select. The persisted column always holds the encoded string form;
// conversion happens only at the storage boundary.
type AnswerKey struct {
	Type   QuestionType
	Single string
	Set    []string
}

// ParseAnswerKey decodes the stored correct-answer string for a question type.
func ParseAnswerKey(t QuestionType, stored string) AnswerKey {
	if t == MultiSelect {
		return AnswerKey{Type: t, Set: SplitMultiAnswer(stored)}
	}
	return AnswerKey{Type: t, Single: stored}
}

// Encode returns the persisted string form of the key.
func (k AnswerKey) Encode() string {
	if k.Type == MultiSelect {
		return JoinMultiAnswer(k.Set)
	}
	return k.Single
}

// SetOrSingle returns the answer values as a slice regardless of arity, which
// is convenient for subset-of-options validation.
func (k AnswerKey) SetOrSingle() []string {
	if k.Type == MultiSelect {
		return k.Set
	}
	return []string{k.Single}
}

// SplitMultiAnswer decodes the comma-and-space-joined multi_select form.
// An empty stored value decodes to an empty set, not [""].
func SplitMultiAnswer(stored string) []string {
	if stored == "" {
		return nil
	}
	return strings.Split(stored, multiSeparator)
}

// JoinMultiAnswer encodes a multi_select option set for persistence.
func JoinMultiAnswer(set []string) string {
	return strings.Join(set, multiSeparator)
}

// Submission is one participant response to one question: a single value for
// single-answer types, or a selection set for multi_select. The zero value is
// an empty submission, which is never correct.
type Submission struct {
	Value string
	Set   []string
}

// SingleSubmission wraps a single-answer response.
func SingleSubmission(value string) Submission {
	return Submission{Value: value}
}

// MultiSubmission wraps a multi_select selection set.
func MultiSubmission(set []string) Submission {
	return Submission{Set: set}
}

// Selected returns the display/persisted form of the submission for the given
// question type.
func (s Submission) Selected(t QuestionType) string {
	if t == MultiSelect {
		return JoinMultiAnswer(s.Set)
	}
	return s.Value
}
