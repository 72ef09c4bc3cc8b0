package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func wsURL(serverURL, path string) string {
	return "ws" + serverURL[len("http"):] + path
}

// readUntil skips timer ticks and returns the first message of the wanted
// type. Fails the test if the connection goes quiet first.
func readUntil(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json waiting for %s: %v", want, err)
		}
		if msg.Type == want {
			return msg.Payload
		}
		if msg.Type != "elapsed" && msg.Type != "remaining" {
			t.Fatalf("expected %s, got %s (%v)", want, msg.Type, msg.Payload)
		}
	}
}

func TestWebSocketSessionFlow(t *testing.T) {
	server, service, _ := newTestServer(t)

	quiz, err := service.CreateQuiz(context.Background(), "creator-1", quizPayload())
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server.URL, "/ws/join/"+quiz.Slug+"?name=Alice"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	joined := readUntil(t, conn, "joined")
	raw, err := json.Marshal(joined)
	if err != nil {
		t.Fatalf("marshal joined payload: %v", err)
	}
	if strings.Contains(string(raw), "correctAnswer") {
		t.Fatalf("joined payload leaks correct answers: %s", raw)
	}
	var payload joinedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode joined payload: %v", err)
	}
	if len(payload.Quiz.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(payload.Quiz.Questions))
	}

	answer := map[string]any{
		"type":    "answer",
		"payload": map[string]any{"questionId": payload.Quiz.Questions[0].ID, "value": "True"},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	if err := conn.WriteJSON(map[string]any{"type": "submit"}); err != nil {
		t.Fatalf("write submit: %v", err)
	}

	result := readUntil(t, conn, "result")
	if trigger, _ := result["trigger"].(string); trigger != "user" {
		t.Fatalf("expected user trigger, got %v", result["trigger"])
	}
	score, ok := result["score"].(float64)
	if !ok {
		t.Fatalf("expected score in result, got %v", result)
	}
	if int(score) != 50 {
		t.Fatalf("expected score 50, got %d", int(score))
	}

	summaries, err := service.Results(context.Background(), quiz.ID, "creator-1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ParticipantName != "Alice" || summaries[0].Score != 50 {
		t.Fatalf("attempt not persisted as expected: %+v", summaries)
	}
}

func TestWebSocketRejectsAnswerAfterSubmit(t *testing.T) {
	server, service, _ := newTestServer(t)

	quiz, err := service.CreateQuiz(context.Background(), "creator-1", quizPayload())
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server.URL, "/ws/join/"+quiz.Slug+"?name=Bob"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	joined := readUntil(t, conn, "joined")
	raw, _ := json.Marshal(joined)
	var payload joinedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode joined payload: %v", err)
	}

	if err := conn.WriteJSON(map[string]any{"type": "submit"}); err != nil {
		t.Fatalf("write submit: %v", err)
	}
	readUntil(t, conn, "result")

	late := map[string]any{
		"type":    "answer",
		"payload": map[string]any{"questionId": payload.Quiz.Questions[0].ID, "value": "True"},
	}
	if err := conn.WriteJSON(late); err != nil {
		t.Fatalf("write late answer: %v", err)
	}
	errMsg := readUntil(t, conn, "error")
	if msg, _ := errMsg["message"].(string); msg == "" {
		t.Fatalf("expected rejection message, got %v", errMsg)
	}
}

func TestWebSocketRequiresName(t *testing.T) {
	server, service, _ := newTestServer(t)

	quiz, err := service.CreateQuiz(context.Background(), "creator-1", quizPayload())
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server.URL, "/ws/join/"+quiz.Slug), nil)
	if err == nil {
		t.Fatalf("expected handshake rejection")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 handshake response, got %+v", resp)
	}
}

func TestWebSocketUnknownSlug(t *testing.T) {
	server, _, _ := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server.URL, "/ws/join/quiz-0-nope?name=Alice"), nil)
	if err == nil {
		t.Fatalf("expected handshake rejection")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}
}
