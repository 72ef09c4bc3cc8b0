package memory

import (
	"context"
	"testing"
	"time"

	"quizlink/internal/domain"
)

func TestQuizCacheCaches(t *testing.T) {
	store := NewStore()
	created, err := store.CreateQuiz(context.Background(), sampleQuiz())
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	loader := &countingLoader{SlugLoader: store}
	cache := NewQuizCache(loader, time.Minute)

	got, err := cache.QuizBySlug(context.Background(), created.Slug)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("expected quiz %s, got %s", created.ID, got.ID)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.QuizBySlug(context.Background(), created.Slug); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuizCacheMissPropagatesNotFound(t *testing.T) {
	cache := NewQuizCache(NewStore(), time.Minute)
	if _, err := cache.QuizBySlug(context.Background(), "quiz-nope"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingLoader struct {
	SlugLoader
	calls int
}

func (l *countingLoader) QuizBySlug(ctx context.Context, slug string) (domain.Quiz, error) {
	l.calls++
	return l.SlugLoader.QuizBySlug(ctx, slug)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		Title:      "Arithmetic basics",
		Topic:      "Math",
		Difficulty: domain.DifficultyEasy,
		Slug:       "quiz-1700000000000-abc123def",
		CreatedBy:  "creator-1",
		Questions: []domain.Question{
			{
				Text:          "What is 2 + 2?",
				Type:          domain.MultipleChoice,
				Options:       []string{"3", "4", "5", "6"},
				CorrectAnswer: "4",
				Points:        1,
			},
		},
	}
}
