// Package postgres persists quizzes, participants and attempts with pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"quizlink/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Store implements the app store interfaces on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateQuiz inserts the quiz and its question set in one transaction so no
// partial quiz is ever visible.
func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO quizzes (title, topic, difficulty, description, category, tags,
			time_limit_minutes, shuffle_questions, show_results_immediately,
			slug, expires_at, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id`,
		quiz.Title, quiz.Topic, string(quiz.Difficulty), quiz.Description, quiz.Category, quiz.Tags,
		quiz.TimeLimitMinutes, quiz.ShuffleQuestions, quiz.ShowResultsImmediately,
		quiz.Slug, quiz.ExpiresAt, quiz.CreatedBy, quiz.CreatedAt,
	).Scan(&quiz.ID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}

	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		q.QuizID = quiz.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO questions (quiz_id, text, type, options, correct_answer, image_url, points, position)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING id`,
			q.QuizID, q.Text, string(q.Type), q.Options, q.CorrectAnswer, q.ImageURL, q.Points, q.Position,
		).Scan(&q.ID)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("insert question %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Quiz{}, fmt.Errorf("commit: %w", err)
	}
	return quiz, nil
}

func (s *Store) QuizByID(ctx context.Context, id string) (domain.Quiz, error) {
	return s.quizBy(ctx, `WHERE q.id = $1`, id)
}

func (s *Store) QuizBySlug(ctx context.Context, slug string) (domain.Quiz, error) {
	return s.quizBy(ctx, `WHERE q.slug = $1`, slug)
}

func (s *Store) quizBy(ctx context.Context, where string, arg interface{}) (domain.Quiz, error) {
	var quiz domain.Quiz
	var difficulty string
	err := s.pool.QueryRow(ctx, `
		SELECT q.id, q.title, q.topic, q.difficulty, q.description, q.category, q.tags,
			q.time_limit_minutes, q.shuffle_questions, q.show_results_immediately,
			q.slug, q.expires_at, q.created_by, q.created_at
		FROM quizzes q `+where, arg,
	).Scan(
		&quiz.ID, &quiz.Title, &quiz.Topic, &difficulty, &quiz.Description, &quiz.Category, &quiz.Tags,
		&quiz.TimeLimitMinutes, &quiz.ShuffleQuestions, &quiz.ShowResultsImmediately,
		&quiz.Slug, &quiz.ExpiresAt, &quiz.CreatedBy, &quiz.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	quiz.Difficulty = domain.Difficulty(difficulty)

	questions, err := s.questionsByQuiz(ctx, quiz.ID)
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz.Questions = questions
	return quiz, nil
}

// questionsByQuiz loads questions in their stable authoring order. Shuffle,
// when a quiz enables it, is applied by the session layer and never reflected
// back into storage.
func (s *Store) questionsByQuiz(ctx context.Context, quizID string) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, quiz_id, text, type, options, correct_answer, image_url, points, position
		FROM questions
		WHERE quiz_id = $1
		ORDER BY position ASC`, quizID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		var qType string
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &qType, &q.Options, &q.CorrectAnswer, &q.ImageURL, &q.Points, &q.Position); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Type = domain.QuestionType(qType)
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) QuizzesByCreator(ctx context.Context, creatorID string) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, topic, difficulty, description, category, tags,
			time_limit_minutes, shuffle_questions, show_results_immediately,
			slug, expires_at, created_by, created_at
		FROM quizzes
		WHERE created_by = $1
		ORDER BY created_at DESC`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []domain.Quiz
	for rows.Next() {
		var quiz domain.Quiz
		var difficulty string
		if err := rows.Scan(
			&quiz.ID, &quiz.Title, &quiz.Topic, &difficulty, &quiz.Description, &quiz.Category, &quiz.Tags,
			&quiz.TimeLimitMinutes, &quiz.ShuffleQuestions, &quiz.ShowResultsImmediately,
			&quiz.Slug, &quiz.ExpiresAt, &quiz.CreatedBy, &quiz.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quiz.Difficulty = domain.Difficulty(difficulty)
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

func (s *Store) CreateParticipant(ctx context.Context, p domain.Participant) (domain.Participant, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO participants (name, photo_url, joined_at)
		VALUES ($1,$2,$3)
		RETURNING id`,
		p.Name, p.PhotoURL, p.JoinedAt,
	).Scan(&p.ID)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("insert participant: %w", err)
	}
	return p, nil
}

func (s *Store) CreateAttempt(ctx context.Context, a domain.Attempt) (domain.Attempt, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO attempts (quiz_id, participant_id, score, time_taken, attempted_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`,
		a.QuizID, a.ParticipantID, a.Score, a.TimeTaken, a.AttemptedAt,
	).Scan(&a.ID)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("insert attempt: %w", err)
	}

	batch := &pgx.Batch{}
	for _, ans := range a.Answers {
		batch.Queue(`
			INSERT INTO answers (attempt_id, question_id, selected, is_correct)
			VALUES ($1,$2,$3,$4)`,
			a.ID, ans.QuestionID, ans.Selected, ans.Correct)
	}
	results := tx.SendBatch(ctx, batch)
	for range a.Answers {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return domain.Attempt{}, fmt.Errorf("insert answer: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return domain.Attempt{}, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Attempt{}, fmt.Errorf("commit: %w", err)
	}
	return a, nil
}

func (s *Store) AttemptsByQuiz(ctx context.Context, quizID string) ([]domain.AttemptSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, p.name, a.score, a.time_taken, a.attempted_at
		FROM attempts a
		JOIN participants p ON p.id = a.participant_id
		WHERE a.quiz_id = $1
		ORDER BY a.attempted_at DESC`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.AttemptSummary
	for rows.Next() {
		var s domain.AttemptSummary
		if err := rows.Scan(&s.AttemptID, &s.ParticipantName, &s.Score, &s.TimeTaken, &s.AttemptedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
