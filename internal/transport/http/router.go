package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"quizlink/internal/app"
)

// NewRouter assembles the full HTTP surface: creator REST API, public join
// and attempt routes, the live session websocket and the health probe.
func NewRouter(log *slog.Logger, service *app.QuizService, defaultModel, jwtSecret string) *mux.Router {
	r := mux.NewRouter()

	h := NewHandler(log, service, defaultModel)
	h.Register(r, CreatorAuth(jwtSecret))

	ws := NewWSHandler(log, service)
	r.HandleFunc("/ws/join/{slug}", ws.ServeWS)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
