package httpserver

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"shopassist/internal/middleware"
)

type RouterDeps struct {
	Logger    *slog.Logger
	Assistant *AssistantHandler
}

// NewRouter assembles the chi router with the shared middleware chain.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(deps.Logger))
	r.Use(middleware.Logging(deps.Logger))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/assistant", func(r chi.Router) {
		r.Post("/query", deps.Assistant.HandleQuery)
		r.Get("/history/{sessionID}", deps.Assistant.HandleHistory)
		r.Delete("/history/{sessionID}", deps.Assistant.HandleClearHistory)
		r.Delete("/cache", deps.Assistant.HandleClearCache)
	})

	return r
}
