package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"quizlink/internal/app"
	"quizlink/internal/domain"
	"quizlink/internal/export"
	"quizlink/internal/generate"
)

// Handler exposes the authoring and taking REST surface.
type Handler struct {
	log          *slog.Logger
	service      *app.QuizService
	defaultModel string
}

func NewHandler(log *slog.Logger, service *app.QuizService, defaultModel string) *Handler {
	return &Handler{log: log, service: service, defaultModel: defaultModel}
}

// Register mounts the API routes. Creator routes sit behind the auth
// middleware; join and attempt routes are public by design.
func (h *Handler) Register(r *mux.Router, auth mux.MiddlewareFunc) {
	creator := r.PathPrefix("/api").Subrouter()
	creator.Use(auth)
	creator.HandleFunc("/quizzes", h.createQuiz).Methods(http.MethodPost)
	creator.HandleFunc("/quizzes", h.listQuizzes).Methods(http.MethodGet)
	creator.HandleFunc("/quizzes/{id}", h.quizByID).Methods(http.MethodGet)
	creator.HandleFunc("/quizzes/{id}/results", h.results).Methods(http.MethodGet)
	creator.HandleFunc("/quizzes/{id}/results/export", h.exportResults).Methods(http.MethodGet)
	creator.HandleFunc("/generate", h.generateQuestions).Methods(http.MethodPost)

	r.HandleFunc("/api/join/{slug}", h.joinQuiz).Methods(http.MethodGet)
	r.HandleFunc("/api/join/{slug}/attempts", h.submitAttempt).Methods(http.MethodPost)
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var input app.QuizInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quiz, err := h.service.CreateQuiz(r.Context(), CreatorID(r.Context()), input)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.ListQuizzes(r.Context(), CreatorID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if quizzes == nil {
		quizzes = []domain.Quiz{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) quizByID(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.QuizByID(r.Context(), mux.Vars(r)["id"], CreatorID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) results(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.Results(r.Context(), mux.Vars(r)["id"], CreatorID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []domain.AttemptSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) exportResults(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["id"]
	summaries, err := h.service.Results(r.Context(), quizID, CreatorID(r.Context()))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="quiz-results.csv"`)
	if _, err := w.Write([]byte(export.ResultsCSV(summaries))); err != nil {
		h.log.Error("csv export failed", slog.String("quizId", quizID), slog.String("error", err.Error()))
	}
}

type generatePayload struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
	Model      string `json:"model"`
}

func (h *Handler) generateQuestions(w http.ResponseWriter, r *http.Request) {
	var payload generatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	model := payload.Model
	if model == "" {
		model = h.defaultModel
	}

	result := h.service.GenerateQuestions(r.Context(), generate.Request{
		Topic:      payload.Topic,
		Difficulty: domain.Difficulty(payload.Difficulty),
		Count:      payload.Count,
		Model:      model,
	})
	writeJSON(w, http.StatusOK, result)
}

// publicQuestion is a question as shown to a participant: the correct answer
// never leaves the server before grading.
type publicQuestion struct {
	ID       string              `json:"id"`
	Text     string              `json:"text"`
	Type     domain.QuestionType `json:"type"`
	Options  []string            `json:"options,omitempty"`
	ImageURL string              `json:"imageUrl,omitempty"`
	Points   int                 `json:"points"`
}

type publicQuiz struct {
	Title            string            `json:"title"`
	Topic            string            `json:"topic"`
	Difficulty       domain.Difficulty `json:"difficulty"`
	Description      string            `json:"description,omitempty"`
	TimeLimitMinutes int               `json:"timeLimitMinutes,omitempty"`
	ShuffleQuestions bool              `json:"shuffleQuestions"`
	Questions        []publicQuestion  `json:"questions"`
}

func sanitizeQuiz(quiz domain.Quiz, questions []domain.Question) publicQuiz {
	out := publicQuiz{
		Title:            quiz.Title,
		Topic:            quiz.Topic,
		Difficulty:       quiz.Difficulty,
		Description:      quiz.Description,
		TimeLimitMinutes: quiz.TimeLimitMinutes,
		ShuffleQuestions: quiz.ShuffleQuestions,
		Questions:        make([]publicQuestion, 0, len(questions)),
	}
	for _, q := range questions {
		points := q.Points
		if points <= 0 {
			points = 1
		}
		out.Questions = append(out.Questions, publicQuestion{
			ID:       q.ID,
			Text:     q.Text,
			Type:     q.Type,
			Options:  q.Options,
			ImageURL: q.ImageURL,
			Points:   points,
		})
	}
	return out
}

func (h *Handler) joinQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.QuizForTaking(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sanitizeQuiz(quiz, quiz.Questions))
}

// submissionPayload carries one answer on the wire. Values marks a
// multi-select submission; Value everything else.
type submissionPayload struct {
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
}

func (p submissionPayload) submission() domain.Submission {
	if p.Values != nil {
		return domain.MultiSubmission(p.Values)
	}
	return domain.SingleSubmission(p.Value)
}

type attemptPayload struct {
	Name      string                       `json:"name"`
	PhotoURL  string                       `json:"photoUrl"`
	TimeTaken int                          `json:"timeTaken"`
	Responses map[string]submissionPayload `json:"responses"`
}

type attemptResponse struct {
	AttemptID    string    `json:"attemptId"`
	Score        *int      `json:"score,omitempty"`
	CorrectCount *int      `json:"correctCount,omitempty"`
	Total        *int      `json:"total,omitempty"`
	AttemptedAt  time.Time `json:"attemptedAt"`
}

func (h *Handler) submitAttempt(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.QuizForTaking(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var payload attemptPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	responses := make(map[string]domain.Submission, len(payload.Responses))
	for id, sub := range payload.Responses {
		responses[id] = sub.submission()
	}

	attempt, result, err := h.service.RecordAttempt(r.Context(), quiz, app.ParticipantInput{
		Name:     payload.Name,
		PhotoURL: payload.PhotoURL,
	}, responses, payload.TimeTaken)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := attemptResponse{AttemptID: attempt.ID, AttemptedAt: attempt.AttemptedAt}
	if quiz.ShowResultsImmediately {
		resp.Score = &result.Score
		resp.CorrectCount = &result.CorrectCount
		resp.Total = &result.Total
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrQuizNotFound):
		writeError(w, http.StatusNotFound, "quiz not found")
	case errors.Is(err, domain.ErrQuizExpired):
		writeError(w, http.StatusGone, "quiz has expired")
	default:
		h.log.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
