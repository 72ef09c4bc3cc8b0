// Package generate produces quiz questions from a remote completion endpoint,
// substituting a deterministic local fallback on any failure.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"quizlink/internal/domain"
)

// Source tags where a generation result came from.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// Request describes one generation call.
type Request struct {
	Topic      string            `json:"topic"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Count      int               `json:"count"`
	Model      string            `json:"model"`
}

// Result is always usable: Questions is non-empty even under total failure of
// the remote dependency.
type Result struct {
	Questions []domain.GeneratedQuestion `json:"questions"`
	Source    string                     `json:"source"`
	Message   string                     `json:"message"`
}

// Completer is the remote dependency surface, satisfied by *Client.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// Service wraps a completion client with the single-attempt-then-fallback
// policy. It never returns an error to callers.
type Service struct {
	log    *slog.Logger
	client Completer
}

func NewService(log *slog.Logger, client Completer) *Service {
	return &Service{log: log, client: client}
}

// Generate obtains questions for the request. Any failure along the remote
// path resolves to the fallback set; no retry is attempted.
func (s *Service) Generate(ctx context.Context, req Request) Result {
	const op = "generate.Generate"

	log := s.log.With(
		slog.String("op", op),
		slog.String("topic", req.Topic),
		slog.Int("count", req.Count),
	)

	if req.Count < 1 {
		req.Count = 1
	}

	if !s.client.Configured() {
		log.Info("completion credential not configured, using sample questions")
		return s.fallback(req, "Using sample questions (AI API key not configured)")
	}

	prompt := fmt.Sprintf(promptFormat, req.Count, req.Difficulty, req.Topic)
	content, err := s.client.Complete(ctx, req.Model, prompt)
	if err != nil {
		log.Warn("completion call failed, using sample questions", slog.String("error", err.Error()))
		return s.fallback(req, "AI generation failed, using sample questions")
	}

	questions, err := parseQuestions(content)
	if err != nil {
		log.Warn("completion content rejected, using sample questions", slog.String("error", err.Error()))
		return s.fallback(req, "Invalid AI response format, using sample questions")
	}

	log.Info("generated questions from completion endpoint", slog.Int("returned", len(questions)))
	return Result{
		Questions: questions,
		Source:    SourceAI,
		Message:   fmt.Sprintf("Generated %d AI questions successfully", len(questions)),
	}
}

func (s *Service) fallback(req Request, message string) Result {
	return Result{
		Questions: Fallback(req.Topic, req.Count),
		Source:    SourceFallback,
		Message:   message,
	}
}

// parseQuestions strips an optional code fence, decodes the JSON array and
// filters it down to elements carrying all four required fields. Elements
// missing a field are dropped, not repaired; an empty remainder is a failure.
func parseQuestions(content string) ([]domain.GeneratedQuestion, error) {
	var raw []domain.GeneratedQuestion
	if err := json.Unmarshal([]byte(stripFence(content)), &raw); err != nil {
		return nil, fmt.Errorf("completion content is not a JSON array: %w", err)
	}

	valid := make([]domain.GeneratedQuestion, 0, len(raw))
	for _, q := range raw {
		if q.Question == "" || q.Type == "" || len(q.Options) == 0 || q.CorrectAnswer == "" {
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("no valid questions in completion content")
	}
	return valid, nil
}
