package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"quizlink/internal/app"
	"quizlink/internal/domain"
	"quizlink/internal/scoring"
)

// WSHandler runs live attempt sessions over a websocket: the server owns the
// clock, streams elapsed/remaining ticks, and force-submits on expiry.
type WSHandler struct {
	log      *slog.Logger
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(log *slog.Logger, service *app.QuizService) *WSHandler {
	return &WSHandler{
		log:     log,
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string   `json:"questionId"`
	Value      string   `json:"value,omitempty"`
	Values     []string `json:"values,omitempty"`
}

type clearPayload struct {
	QuestionID string `json:"questionId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type joinedPayload struct {
	Quiz             publicQuiz `json:"quiz"`
	TimeLimitSeconds int        `json:"timeLimitSeconds,omitempty"`
}

type tickPayload struct {
	Seconds int `json:"seconds"`
}

type resultPayload struct {
	AttemptID    string `json:"attemptId"`
	Trigger      string `json:"trigger"`
	Score        *int   `json:"score,omitempty"`
	CorrectCount *int   `json:"correctCount,omitempty"`
	Total        *int   `json:"total,omitempty"`
}

// ServeWS upgrades the request and drives one attempt session until the
// participant submits, the countdown expires, or the connection drops. A drop
// before submission abandons the session without writing anything.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	name := r.URL.Query().Get("name")
	photoURL := r.URL.Query().Get("photoUrl")
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}

	quiz, err := h.service.QuizForTaking(r.Context(), slug)
	if err != nil {
		h.writeJoinError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("ws upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	expired := make(chan scoring.Result, 1)
	expiredDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}()

	enqueue := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		}
	}

	session := app.NewAttemptSession(quiz, app.SessionHooks{
		OnElapsed: func(seconds int) {
			enqueue(outboundMessage[any]{Type: "elapsed", Payload: tickPayload{Seconds: seconds}})
		},
		OnRemaining: func(seconds int) {
			enqueue(outboundMessage[any]{Type: "remaining", Payload: tickPayload{Seconds: seconds}})
		},
		OnExpire: func(result scoring.Result) {
			expired <- result
		},
	})

	// Expiry persists off the timer goroutine so the countdown never blocks
	// on storage.
	go func() {
		defer close(expiredDone)
		select {
		case result := <-expired:
			h.finishAttempt(context.Background(), session, quiz, name, photoURL, result, app.TriggerTimeUp, enqueue)
		case <-closeSignals:
		}
	}()

	if err := session.Start(); err != nil {
		enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer session.Abandon()

	enqueue(outboundMessage[any]{Type: "joined", Payload: joinedPayload{
		Quiz:             sanitizeQuiz(quiz, session.Questions()),
		TimeLimitSeconds: quiz.TimeLimitMinutes * 60,
	}})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			sub := domain.SingleSubmission(payload.Value)
			if payload.Values != nil {
				sub = domain.MultiSubmission(payload.Values)
			}
			if err := session.SetAnswer(payload.QuestionID, sub); err != nil {
				enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
			}
		case "clear":
			var payload clearPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid clear payload"}})
				continue
			}
			if err := session.ClearAnswer(payload.QuestionID); err != nil {
				enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
			}
		case "submit":
			result, err := session.Submit(app.TriggerUser)
			if err != nil {
				enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			h.finishAttempt(r.Context(), session, quiz, name, photoURL, result, app.TriggerUser, enqueue)
		default:
			enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-expiredDone
	close(send)
	<-writerDone
}

// finishAttempt persists the graded session and reports the outcome. It runs
// once per session: either from the read loop on a user submit, or from the
// expiry goroutine on time-up, never both. A failed write leaves the session
// Submitted with no in-session retry; the participant can still resubmit
// the same answers through the REST attempt route.
func (h *WSHandler) finishAttempt(ctx context.Context, session *app.AttemptSession, quiz domain.Quiz, name, photoURL string, result scoring.Result, trigger app.SubmitTrigger, enqueue func(outboundMessage[any])) {
	attempt, _, err := h.service.RecordAttempt(ctx, quiz, app.ParticipantInput{
		Name:     name,
		PhotoURL: photoURL,
	}, session.Responses(), session.Elapsed())
	if err != nil {
		h.log.Error("attempt persistence failed",
			slog.String("quizId", quiz.ID),
			slog.String("error", err.Error()),
		)
		enqueue(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "failed to record attempt"}})
		return
	}
	if err := session.Complete(); err != nil {
		h.log.Error("session completion failed", slog.String("error", err.Error()))
	}

	payload := resultPayload{AttemptID: attempt.ID, Trigger: string(trigger)}
	if quiz.ShowResultsImmediately {
		payload.Score = &result.Score
		payload.CorrectCount = &result.CorrectCount
		payload.Total = &result.Total
	}
	enqueue(outboundMessage[any]{Type: "result", Payload: payload})
}

func (h *WSHandler) writeJoinError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		http.Error(w, "quiz not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrQuizExpired):
		http.Error(w, "quiz has expired", http.StatusGone)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
