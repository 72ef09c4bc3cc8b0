package app_test

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"quizlink/internal/app"
	"quizlink/internal/domain"
	"quizlink/internal/scoring"
)

func sessionQuiz(shuffle bool, limitMinutes int) domain.Quiz {
	return domain.Quiz{
		ID:               "quiz-1",
		Title:            "Go basics",
		ShuffleQuestions: shuffle,
		TimeLimitMinutes: limitMinutes,
		Questions: []domain.Question{
			{ID: "q1", Text: "1+1?", Type: domain.MultipleChoice, Options: []string{"1", "2", "3", "4"}, CorrectAnswer: "2"},
			{ID: "q2", Text: "Go is typed.", Type: domain.TrueFalse, Options: []string{"True", "False"}, CorrectAnswer: "True"},
			{ID: "q3", Text: "Pick evens.", Type: domain.MultiSelect, Options: []string{"1", "2", "4"}, CorrectAnswer: "2, 4"},
		},
	}
}

func TestSessionLifecycle(t *testing.T) {
	session := app.NewAttemptSession(sessionQuiz(false, 0), app.SessionHooks{})
	defer session.Abandon()

	if err := session.SetAnswer("q1", domain.SingleSubmission("2")); !errors.Is(err, domain.ErrSessionNotStarted) {
		t.Fatalf("expected not-started rejection, got %v", err)
	}

	if err := session.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.State() != app.StateInProgress {
		t.Fatalf("expected in progress, got %s", session.State())
	}

	// Answers may be set in any order and overwritten.
	if err := session.SetAnswer("q2", domain.SingleSubmission("False")); err != nil {
		t.Fatalf("set q2: %v", err)
	}
	if err := session.SetAnswer("q2", domain.SingleSubmission("True")); err != nil {
		t.Fatalf("overwrite q2: %v", err)
	}
	if err := session.SetAnswer("q1", domain.SingleSubmission("2")); err != nil {
		t.Fatalf("set q1: %v", err)
	}
	if err := session.SetAnswer("q3", domain.MultiSubmission([]string{"4", "2"})); err != nil {
		t.Fatalf("set q3: %v", err)
	}
	if err := session.SetAnswer("q9", domain.SingleSubmission("x")); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected unknown question rejection, got %v", err)
	}

	result, err := session.Submit(app.TriggerUser)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 100 || result.CorrectCount != 3 {
		t.Fatalf("expected full score, got %+v", result)
	}

	// Once submitted, mutation and resubmission are rejected.
	if err := session.SetAnswer("q1", domain.SingleSubmission("3")); !errors.Is(err, domain.ErrSessionSubmitted) {
		t.Fatalf("expected late mutation rejection, got %v", err)
	}
	if _, err := session.Submit(app.TriggerUser); !errors.Is(err, domain.ErrSessionSubmitted) {
		t.Fatalf("expected duplicate submit rejection, got %v", err)
	}

	if err := session.Complete(); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if session.State() != app.StateCompleted {
		t.Fatalf("expected completed, got %s", session.State())
	}
}

func TestSessionShufflePresentationOnly(t *testing.T) {
	quiz := sessionQuiz(true, 0)
	session := app.NewAttemptSession(quiz, app.SessionHooks{}, app.WithShuffleSeed(99))
	defer session.Abandon()

	presented := session.Questions()
	if len(presented) != 3 {
		t.Fatalf("expected all questions presented, got %d", len(presented))
	}
	// Storage order is untouched by the presentation permutation.
	if quiz.Questions[0].ID != "q1" || quiz.Questions[2].ID != "q3" {
		t.Fatalf("storage order mutated: %+v", quiz.Questions)
	}

	again := app.NewAttemptSession(quiz, app.SessionHooks{}, app.WithShuffleSeed(99))
	defer again.Abandon()
	if !reflect.DeepEqual(presented, again.Questions()) {
		t.Fatalf("same seed must give same permutation")
	}
}

func TestSessionCountdownForcesSubmission(t *testing.T) {
	var mu sync.Mutex
	start := time.Date(2025, time.March, 7, 12, 0, 0, 0, time.UTC)
	now := start

	expired := make(chan scoring.Result, 1)
	session := app.NewAttemptSession(sessionQuiz(false, 1), app.SessionHooks{
		OnExpire: func(r scoring.Result) { expired <- r },
	},
		app.WithSessionClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}),
		app.WithTickInterval(5*time.Millisecond),
	)

	if err := session.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := session.SetAnswer("q1", domain.SingleSubmission("2")); err != nil {
		t.Fatalf("set answer: %v", err)
	}

	// Blow past the one-minute budget; the next tick must force submission
	// with whatever answers exist.
	mu.Lock()
	now = start.Add(2 * time.Minute)
	mu.Unlock()

	select {
	case result := <-expired:
		if result.CorrectCount != 1 || result.Score != 33 {
			t.Fatalf("expected answers-so-far scored (1/3 => 33), got %+v", result)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown never fired")
	}

	if session.State() != app.StateSubmitted {
		t.Fatalf("expected submitted after time-up, got %s", session.State())
	}
	if _, trigger, ok := session.Result(); !ok || trigger != app.TriggerTimeUp {
		t.Fatalf("expected time-up trigger, got %v %v", trigger, ok)
	}

	session.Wait() // both timer goroutines must have exited
}

func TestSessionAbandonStopsTimers(t *testing.T) {
	session := app.NewAttemptSession(sessionQuiz(false, 1), app.SessionHooks{},
		app.WithTickInterval(time.Millisecond))
	if err := session.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	session.Abandon()
	session.Wait()

	if _, _, ok := session.Result(); ok {
		t.Fatalf("abandoned session must not produce a result")
	}
}
