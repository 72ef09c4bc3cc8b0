// Package memory provides map-backed implementations of the app store
// interfaces, used in tests and credential-free demo runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"quizlink/internal/domain"
)

// Store keeps quizzes, participants and attempts in process memory. It
// enforces the same slug uniqueness the database index would.
type Store struct {
	mu           sync.RWMutex
	quizzes      map[string]domain.Quiz
	slugs        map[string]string
	participants map[string]domain.Participant
	attempts     map[string]domain.Attempt
	seq          int
}

func NewStore() *Store {
	return &Store{
		quizzes:      make(map[string]domain.Quiz),
		slugs:        make(map[string]string),
		participants: make(map[string]domain.Participant),
		attempts:     make(map[string]domain.Attempt),
	}
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.slugs[quiz.Slug]; taken {
		return domain.Quiz{}, fmt.Errorf("slug %q already exists", quiz.Slug)
	}

	quiz.ID = s.nextID("quiz")
	for i := range quiz.Questions {
		quiz.Questions[i].ID = s.nextID("question")
		quiz.Questions[i].QuizID = quiz.ID
	}
	s.quizzes[quiz.ID] = quiz
	s.slugs[quiz.Slug] = quiz.ID
	return quiz, nil
}

func (s *Store) QuizByID(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *Store) QuizBySlug(_ context.Context, slug string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.slugs[slug]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return s.quizzes[id], nil
}

func (s *Store) QuizzesByCreator(_ context.Context, creatorID string) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Quiz
	for _, quiz := range s.quizzes {
		if quiz.CreatedBy == creatorID {
			out = append(out, quiz)
		}
	}
	return out, nil
}

func (s *Store) CreateParticipant(_ context.Context, p domain.Participant) (domain.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID("participant")
	s.participants[p.ID] = p
	return p, nil
}

func (s *Store) CreateAttempt(_ context.Context, a domain.Attempt) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID("attempt")
	s.attempts[a.ID] = a
	return a, nil
}

func (s *Store) AttemptsByQuiz(_ context.Context, quizID string) ([]domain.AttemptSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.AttemptSummary
	for _, a := range s.attempts {
		if a.QuizID != quizID {
			continue
		}
		name := ""
		if p, ok := s.participants[a.ParticipantID]; ok {
			name = p.Name
		}
		out = append(out, domain.AttemptSummary{
			AttemptID:       a.ID,
			ParticipantName: name,
			Score:           a.Score,
			TimeTaken:       a.TimeTaken,
			AttemptedAt:     a.AttemptedAt,
		})
	}
	return out, nil
}
