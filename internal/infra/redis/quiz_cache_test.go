package redis

import (
	"context"
	"testing"
	"time"

	"quizlink/internal/domain"
	"quizlink/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuizCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	store := memory.NewStore()
	created, err := store.CreateQuiz(context.Background(), sampleQuiz())
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	loader := &countingLoader{SlugLoader: store}
	cache := NewQuizCache(client, loader, time.Minute)

	got, err := cache.QuizBySlug(context.Background(), created.Slug)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if got.ID != created.ID || len(got.Questions) != 1 {
		t.Fatalf("unexpected quiz %+v", got)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:slug:" + created.Slug) {
		t.Fatalf("expected redis key to be set")
	}

	// Second call should hit cache, loader not incremented.
	if _, err := cache.QuizBySlug(context.Background(), created.Slug); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestQuizCacheUnknownSlug(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewQuizCache(client, memory.NewStore(), time.Minute)

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
