package domain

import "time"

// Difficulty grades a quiz for the generation prompt and for display.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether the difficulty is one of the known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuestionType enumerates the supported answer formats.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	FillBlank      QuestionType = "fill_blank"
	MultiSelect    QuestionType = "multi_select"
)

// MaxTags caps the number of tags a quiz may carry.
const MaxTags = 5

// Quiz is a named, shareable collection of questions with settings.
// It is created atomically with its question set and never mutated afterwards.
type Quiz struct {
	ID                     string     `json:"id"`
	Title                  string     `json:"title"`
	Topic                  string     `json:"topic"`
	Difficulty             Difficulty `json:"difficulty"`
	Description            string     `json:"description,omitempty"`
	Category               string     `json:"category,omitempty"`
	Tags                   []string   `json:"tags,omitempty"`
	TimeLimitMinutes       int        `json:"timeLimitMinutes,omitempty"` // 0 = unlimited
	ShuffleQuestions       bool       `json:"shuffleQuestions"`
	ShowResultsImmediately bool       `json:"showResultsImmediately"`
	Slug                   string     `json:"slug"`
	ExpiresAt              *time.Time `json:"expiresAt,omitempty"`
	CreatedBy              string     `json:"createdBy"`
	CreatedAt              time.Time  `json:"createdAt"`
	Questions              []Question `json:"questions,omitempty"`
}

// Expired reports whether the quiz is past its expiry date at the given time.
func (q Quiz) Expired(now time.Time) bool {
	return q.ExpiresAt != nil && q.ExpiresAt.Before(now)
}

// Question belongs to exactly one quiz. Options is empty for fill_blank.
// CorrectAnswer holds the stored form: a single string, or the joined
// representation for multi_select (see AnswerKey).
type Question struct {
	ID            string       `json:"id"`
	QuizID        string       `json:"quizId"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer"`
	ImageURL      string       `json:"imageUrl,omitempty"`
	Points        int          `json:"points,omitempty"` // defaults to 1 if zero
	Position      int          `json:"position"`
}

// Participant is an ephemeral identity created at attempt time. It is not a
// durable account and is re-created on every attempt.
type Participant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	PhotoURL string    `json:"photoUrl,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Attempt is one participant's single scored pass through one quiz.
// Immutable once created.
type Attempt struct {
	ID            string    `json:"id"`
	QuizID        string    `json:"quizId"`
	ParticipantID string    `json:"participantId"`
	Score         int       `json:"score"`     // 0..100 integer percentage
	TimeTaken     int       `json:"timeTaken"` // seconds
	AttemptedAt   time.Time `json:"attemptedAt"`
	Answers       []Answer  `json:"answers,omitempty"`
}

// Answer records one submitted value and its correctness within an attempt.
type Answer struct {
	QuestionID string `json:"questionId"`
	Selected   string `json:"selected"`
	Correct    bool   `json:"correct"`
}

// AttemptSummary is the results-dashboard view of an attempt joined with its
// participant.
type AttemptSummary struct {
	AttemptID       string    `json:"attemptId"`
	ParticipantName string    `json:"participantName"`
	Score           int       `json:"score"`
	TimeTaken       int       `json:"timeTaken"`
	AttemptedAt     time.Time `json:"attemptedAt"`
}

// GeneratedQuestion is the transient output of the generation service. The
// generator only emits multiple_choice and true_false items; nothing is
// persisted until a creator commits it into a quiz.
type GeneratedQuestion struct {
	Question      string       `json:"question"`
	Type          QuestionType `json:"type"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correct_answer"`
}
