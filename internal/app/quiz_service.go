// Package app contains the quiz use cases: authoring, lookup by share slug,
// attempt recording and AI-assisted question generation.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"quizlink/internal/domain"
	"quizlink/internal/generate"
	"quizlink/internal/scoring"
	"golang.org/x/sync/singleflight"
)

// QuizStore persists quizzes and their question sets.
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	QuizByID(ctx context.Context, id string) (domain.Quiz, error)
	QuizzesByCreator(ctx context.Context, creatorID string) ([]domain.Quiz, error)
}

// QuizReader resolves a quiz (with questions) by its shareable slug. The
// participant-facing path goes through here so a cache can front the store.
type QuizReader interface {
	QuizBySlug(ctx context.Context, slug string) (domain.Quiz, error)
}

// AttemptStore persists participants and their scored attempts. Attempts are
// append-only; nothing here is ever updated.
type AttemptStore interface {
	CreateParticipant(ctx context.Context, p domain.Participant) (domain.Participant, error)
	CreateAttempt(ctx context.Context, a domain.Attempt) (domain.Attempt, error)
	AttemptsByQuiz(ctx context.Context, quizID string) ([]domain.AttemptSummary, error)
}

// Generator produces question candidates; satisfied by *generate.Service.
type Generator interface {
	Generate(ctx context.Context, req generate.Request) generate.Result
}

// QuizService wires the stores, reader and generator into the use cases.
type QuizService struct {
	log      *slog.Logger
	store    QuizStore
	reader   QuizReader
	attempts AttemptStore
	gen      Generator

	sf  singleflight.Group
	now func() time.Time

	// rnd is shared across requests; *rand.Rand is not safe for concurrent
	// use, so slug minting serializes on rndMu.
	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizService(log *slog.Logger, store QuizStore, reader QuizReader, attempts AttemptStore, gen Generator) *QuizService {
	return &QuizService{
		log:      log,
		store:    store,
		reader:   reader,
		attempts: attempts,
		gen:      gen,
		now:      time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithClock is test-only for deterministic timestamps and slugs.
func (s *QuizService) WithClock(now func() time.Time, seed int64) *QuizService {
	s.now = now
	s.rnd = rand.New(rand.NewSource(seed))
	return s
}

// QuestionInput is one authored question before persistence.
type QuestionInput struct {
	Text          string              `json:"text"`
	Type          domain.QuestionType `json:"type"`
	Options       []string            `json:"options"`
	CorrectAnswer string              `json:"correctAnswer"`
	ImageURL      string              `json:"imageUrl"`
	Points        int                 `json:"points"`
}

// QuizInput is the authoring payload for CreateQuiz.
type QuizInput struct {
	Title                  string            `json:"title"`
	Topic                  string            `json:"topic"`
	Difficulty             domain.Difficulty `json:"difficulty"`
	Description            string            `json:"description"`
	Category               string            `json:"category"`
	Tags                   []string          `json:"tags"`
	TimeLimitMinutes       int               `json:"timeLimitMinutes"`
	ShuffleQuestions       bool              `json:"shuffleQuestions"`
	ShowResultsImmediately bool              `json:"showResultsImmediately"`
	ExpiresAt              *time.Time        `json:"expiresAt"`
	Questions              []QuestionInput   `json:"questions"`
}

// CreateQuiz validates the payload, mints a shareable slug and persists the
// quiz atomically with its question set. Validation failures reject the whole
// quiz before any write.
func (s *QuizService) CreateQuiz(ctx context.Context, creatorID string, input QuizInput) (domain.Quiz, error) {
	const op = "app.CreateQuiz"

	if err := validateQuizInput(input); err != nil {
		return domain.Quiz{}, err
	}

	now := s.now()
	quiz := domain.Quiz{
		Title:                  input.Title,
		Topic:                  input.Topic,
		Difficulty:             input.Difficulty,
		Description:            input.Description,
		Category:               input.Category,
		Tags:                   input.Tags,
		TimeLimitMinutes:       input.TimeLimitMinutes,
		ShuffleQuestions:       input.ShuffleQuestions,
		ShowResultsImmediately: input.ShowResultsImmediately,
		Slug:                   s.newSlug(now),
		ExpiresAt:              input.ExpiresAt,
		CreatedBy:              creatorID,
		CreatedAt:              now,
	}
	for i, q := range input.Questions {
		points := q.Points
		if points <= 0 {
			points = 1
		}
		options := q.Options
		if q.Type == domain.TrueFalse && len(options) == 0 {
			options = []string{"True", "False"}
		}
		if q.Type == domain.FillBlank {
			options = nil
		}
		quiz.Questions = append(quiz.Questions, domain.Question{
			Text:          q.Text,
			Type:          q.Type,
			Options:       options,
			CorrectAnswer: q.CorrectAnswer,
			ImageURL:      q.ImageURL,
			Points:        points,
			Position:      i,
		})
	}

	created, err := s.store.CreateQuiz(ctx, quiz)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("quiz created",
		slog.String("op", op),
		slog.String("quizId", created.ID),
		slog.String("slug", created.Slug),
		slog.Int("questions", len(created.Questions)),
	)
	return created, nil
}

// QuizForTaking resolves a quiz by slug for an anonymous participant. An
// expired quiz resolves to ErrQuizExpired; both outcomes are expected, not
// faults.
func (s *QuizService) QuizForTaking(ctx context.Context, slug string) (domain.Quiz, error) {
	quiz, err := s.reader.QuizBySlug(ctx, slug)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.Expired(s.now()) {
		return domain.Quiz{}, domain.ErrQuizExpired
	}
	return quiz, nil
}

// QuizByID returns a creator-owned quiz. A quiz owned by someone else resolves
// to not-found rather than leaking its existence.
func (s *QuizService) QuizByID(ctx context.Context, id, creatorID string) (domain.Quiz, error) {
	quiz, err := s.store.QuizByID(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.CreatedBy != creatorID {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

// ListQuizzes returns the creator's quizzes, newest first per store order.
func (s *QuizService) ListQuizzes(ctx context.Context, creatorID string) ([]domain.Quiz, error) {
	return s.store.QuizzesByCreator(ctx, creatorID)
}

// Results lists the attempt summaries for a creator-owned quiz.
func (s *QuizService) Results(ctx context.Context, quizID, creatorID string) ([]domain.AttemptSummary, error) {
	if _, err := s.QuizByID(ctx, quizID, creatorID); err != nil {
		return nil, err
	}
	return s.attempts.AttemptsByQuiz(ctx, quizID)
}

// ParticipantInput is the ephemeral identity captured at attempt time.
type ParticipantInput struct {
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl"`
}

// RecordAttempt grades the responses and persists participant, attempt and
// answers. Each write is an independent step; a failure surfaces to the caller
// and abandons the operation without touching already-persisted state.
func (s *QuizService) RecordAttempt(ctx context.Context, quiz domain.Quiz, who ParticipantInput, responses map[string]domain.Submission, timeTaken int) (domain.Attempt, scoring.Result, error) {
	const op = "app.RecordAttempt"

	if who.Name == "" {
		return domain.Attempt{}, scoring.Result{}, &domain.ValidationError{Field: "name", Message: "participant name is required"}
	}

	result := scoring.Score(quiz.Questions, responses)

	now := s.now()
	participant, err := s.attempts.CreateParticipant(ctx, domain.Participant{
		Name:     who.Name,
		PhotoURL: who.PhotoURL,
		JoinedAt: now,
	})
	if err != nil {
		return domain.Attempt{}, scoring.Result{}, fmt.Errorf("%s: save participant: %w", op, err)
	}

	attempt := domain.Attempt{
		QuizID:        quiz.ID,
		ParticipantID: participant.ID,
		Score:         result.Score,
		TimeTaken:     timeTaken,
		AttemptedAt:   now,
	}
	for _, pq := range result.PerQuestion {
		attempt.Answers = append(attempt.Answers, domain.Answer{
			QuestionID: pq.QuestionID,
			Selected:   pq.Selected,
			Correct:    pq.Correct,
		})
	}

	created, err := s.attempts.CreateAttempt(ctx, attempt)
	if err != nil {
		return domain.Attempt{}, scoring.Result{}, fmt.Errorf("%s: save attempt: %w", op, err)
	}

	s.log.Info("attempt recorded",
		slog.String("op", op),
		slog.String("quizId", quiz.ID),
		slog.String("attemptId", created.ID),
		slog.Int("score", created.Score),
	)
	return created, result, nil
}

// GenerateQuestions invokes the generation service, collapsing identical
// concurrent requests into one upstream call.
func (s *QuizService) GenerateQuestions(ctx context.Context, req generate.Request) generate.Result {
	key := fmt.Sprintf("%s|%s|%d|%s", req.Topic, req.Difficulty, req.Count, req.Model)
	v, _, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.gen.Generate(ctx, req), nil
	})
	return v.(generate.Result)
}

const slugAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newSlug mints the shareable join token: time-based prefix plus a random
// base36 suffix. Collisions are treated as practically improbable; the unique
// index is the backstop.
func (s *QuizService) newSlug(now time.Time) string {
	suffix := make([]byte, 9)
	s.rndMu.Lock()
	for i := range suffix {
		suffix[i] = slugAlphabet[s.rnd.Intn(len(slugAlphabet))]
	}
	s.rndMu.Unlock()
	return fmt.Sprintf("quiz-%d-%s", now.UnixMilli(), suffix)
}

func validateQuizInput(input QuizInput) error {
	if input.Title == "" {
		return &domain.ValidationError{Field: "title", Message: "title is required"}
	}
	if input.Topic == "" {
		return &domain.ValidationError{Field: "topic", Message: "topic is required"}
	}
	if !input.Difficulty.Valid() {
		return &domain.ValidationError{Field: "difficulty", Message: "difficulty must be easy, medium or hard"}
	}
	if len(input.Tags) > domain.MaxTags {
		return &domain.ValidationError{Field: "tags", Message: fmt.Sprintf("at most %d tags allowed", domain.MaxTags)}
	}
	if input.TimeLimitMinutes < 0 {
		return &domain.ValidationError{Field: "timeLimitMinutes", Message: "time limit cannot be negative"}
	}
	if len(input.Questions) == 0 {
		return &domain.ValidationError{Field: "questions", Message: "at least one question is required"}
	}
	for i, q := range input.Questions {
		if err := validateQuestionInput(i, q); err != nil {
			return err
		}
	}
	return nil
}

func validateQuestionInput(i int, q QuestionInput) error {
	field := func(name string) string { return fmt.Sprintf("questions[%d].%s", i, name) }

	if q.Text == "" {
		return &domain.ValidationError{Field: field("text"), Message: "question text is required"}
	}
	if q.CorrectAnswer == "" {
		return &domain.ValidationError{Field: field("correctAnswer"), Message: "correct answer is required"}
	}

	switch q.Type {
	case domain.MultipleChoice, domain.MultiSelect:
		if len(q.Options) == 0 {
			return &domain.ValidationError{Field: field("options"), Message: "options are required"}
		}
		present := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			if opt == "" {
				return &domain.ValidationError{Field: field("options"), Message: "options cannot be empty"}
			}
			present[opt] = struct{}{}
		}
		for _, answer := range domain.ParseAnswerKey(q.Type, q.CorrectAnswer).SetOrSingle() {
			if _, ok := present[answer]; !ok {
				return &domain.ValidationError{Field: field("correctAnswer"), Message: fmt.Sprintf("correct answer %q is not one of the options", answer)}
			}
		}
	case domain.TrueFalse:
		if len(q.Options) > 0 && (len(q.Options) != 2 || q.Options[0] != "True" || q.Options[1] != "False") {
			return &domain.ValidationError{Field: field("options"), Message: `true/false options must be exactly ["True","False"]`}
		}
		if q.CorrectAnswer != "True" && q.CorrectAnswer != "False" {
			return &domain.ValidationError{Field: field("correctAnswer"), Message: "correct answer must be True or False"}
		}
	case domain.FillBlank:
		// No options; the stored answer is graded literally.
	default:
		return &domain.ValidationError{Field: field("type"), Message: fmt.Sprintf("unknown question type %q", q.Type)}
	}
	return nil
}
