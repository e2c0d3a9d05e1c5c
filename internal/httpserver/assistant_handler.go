package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopassist/internal/assistant"
	"shopassist/internal/catalog"
	"shopassist/internal/session"
)

// AssistantHandler exposes the conversational assistant endpoints.
type AssistantHandler struct {
	service *assistant.Service
	logger  *slog.Logger
}

func NewAssistantHandler(service *assistant.Service, logger *slog.Logger) *AssistantHandler {
	return &AssistantHandler{service: service, logger: logger}
}

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId"`
}

type queryResponse struct {
	Success  bool              `json:"success"`
	Answer   string            `json:"answer"`
	Products []catalog.Summary `json:"products"`
}

type historyResponse struct {
	Success bool           `json:"success"`
	History []session.Turn `json:"history"`
}

type okResponse struct {
	Success bool `json:"success"`
}

func (h *AssistantHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON")
		return
	}
	if req.SessionID == "" {
		WriteJSONError(w, http.StatusBadRequest, "missing_session", "sessionId is required")
		return
	}

	reply, err := h.service.ProcessQuery(r.Context(), req.Query, req.SessionID)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyQuery) {
			WriteJSONError(w, http.StatusBadRequest, "empty_query", "query must not be empty")
			return
		}
		// The pipeline absorbs internal failures; anything else is a bug.
		h.logger.Error("process query failed", slog.String("error", err.Error()))
		WriteJSONError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	products := reply.Products
	if products == nil {
		products = []catalog.Summary{}
	}
	WriteJSON(w, http.StatusOK, queryResponse{
		Success:  true,
		Answer:   reply.Answer,
		Products: products,
	})
}

func (h *AssistantHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	turns := h.service.History(sessionID)
	if turns == nil {
		turns = []session.Turn{}
	}
	WriteJSON(w, http.StatusOK, historyResponse{Success: true, History: turns})
}

func (h *AssistantHandler) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	h.service.ClearHistory(chi.URLParam(r, "sessionID"))
	WriteJSON(w, http.StatusOK, okResponse{Success: true})
}

func (h *AssistantHandler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	h.service.ClearSearchCache()
	WriteJSON(w, http.StatusOK, okResponse{Success: true})
}
