// Package scoring grades a completed set of quiz responses.
package scoring

import (
	"math"

	"quizlink/internal/domain"
)

// QuestionResult is the per-question outcome of grading.
type QuestionResult struct {
	QuestionID string `json:"questionId"`
	Selected   string `json:"selected"`
	Correct    bool   `json:"correct"`
}

// Result is the immutable outcome of grading one attempt.
type Result struct {
	Score        int              `json:"score"` // 0..100 integer percentage
	CorrectCount int              `json:"correctCount"`
	Total        int              `json:"total"`
	PerQuestion  []QuestionResult `json:"perQuestion"`
}

// Score grades responses against the quiz's questions. Responses are keyed by
// question id; a question with no entry is an empty submission and never
// correct. Single-answer types are compared by exact, case-sensitive string
// equality with no normalization. Multi-select requires the submitted set and
// the correct set to have equal size and every correct option to appear in the
// submission. An empty question list yields score 0.
func Score(questions []domain.Question, responses map[string]domain.Submission) Result {
	result := Result{
		Total:       len(questions),
		PerQuestion: make([]QuestionResult, 0, len(questions)),
	}

	for _, q := range questions {
		sub := responses[q.ID]
		correct := graded(q, sub)
		if correct {
			result.CorrectCount++
		}
		result.PerQuestion = append(result.PerQuestion, QuestionResult{
			QuestionID: q.ID,
			Selected:   sub.Selected(q.Type),
			Correct:    correct,
		})
	}

	if result.Total > 0 {
		result.Score = int(math.Round(100 * float64(result.CorrectCount) / float64(result.Total)))
	}
	return result
}

func graded(q domain.Question, sub domain.Submission) bool {
	if q.Type == domain.MultiSelect {
		correct := domain.SplitMultiAnswer(q.CorrectAnswer)
		return setsMatch(correct, sub.Set)
	}
	return sub.Value != "" && sub.Value == q.CorrectAnswer
}

// setsMatch checks size equality plus one-directional containment, which is
// set equality for duplicate-free checkbox input.
func setsMatch(correct, selected []string) bool {
	if len(correct) == 0 || len(correct) != len(selected) {
		return false
	}
	chosen := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		chosen[s] = struct{}{}
	}
	for _, c := range correct {
		if _, ok := chosen[c]; !ok {
			return false
		}
	}
	return true
}
