// Package assistant orchestrates the retrieval-augmented answer pipeline:
// session memory, query analysis, cached product search, context assembly
// and answer generation.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"shopassist/internal/catalog"
	"shopassist/internal/llm"
	"shopassist/internal/session"
	"shopassist/internal/telemetry"
)

// ErrEmptyQuery rejects blank queries at the boundary, before any
// session mutation.
var ErrEmptyQuery = errors.New("query must not be empty")

// apologyAnswer is the fixed degraded response when generation fails.
const apologyAnswer = "Xin lỗi, hiện tại tôi chưa thể trả lời câu hỏi của bạn. Bạn vui lòng thử lại sau ít phút nhé."

const personaPrompt = `Bạn là trợ lý mua sắm thân thiện của một cửa hàng thời trang trực tuyến.
Trả lời ngắn gọn, lịch sự, bằng ngôn ngữ của khách hàng.
Chỉ tư vấn dựa trên danh sách sản phẩm được cung cấp; nếu không có sản phẩm
phù hợp, hãy nói thẳng và gợi ý khách mô tả rõ hơn nhu cầu.
Không bịa ra sản phẩm, giá hay khuyến mãi.`

// Searcher is the cached product search the pipeline runs per query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]catalog.Product, error)
	Clear()
}

// Reply is the pipeline result: the generated answer plus the client-safe
// projection of the matched products.
type Reply struct {
	Answer   string
	Products []catalog.Summary
}

// Deps collects the collaborators of the assistant service.
type Deps struct {
	Sessions  *session.Store
	Search    Searcher
	Generator llm.Client
	Logger    *slog.Logger
	Metrics   *telemetry.Metrics
	Tracer    trace.Tracer
}

// Service is the only component the HTTP layer calls. Internal component
// failures are absorbed here: callers see either a well-formed reply or a
// boundary validation error, never an upstream failure.
type Service struct {
	sessions     *session.Store
	search       Searcher
	preprocessor *Preprocessor
	generator    llm.Client
	logger       *slog.Logger
	metrics      *telemetry.Metrics
	tracer       trace.Tracer
}

func NewService(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{
		sessions:     deps.Sessions,
		search:       deps.Search,
		preprocessor: NewPreprocessor(deps.Generator, deps.Logger, deps.Metrics),
		generator:    deps.Generator,
		logger:       deps.Logger,
		metrics:      deps.Metrics,
		tracer:       deps.Tracer,
	}
}

// ProcessQuery runs the full pipeline for one query. Concurrent calls for
// the same session are serialized so turn order cannot interleave.
func (s *Service) ProcessQuery(ctx context.Context, query, sessionID string) (Reply, error) {
	if strings.TrimSpace(query) == "" {
		return Reply{}, ErrEmptyQuery
	}

	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "assistant.process_query")
		defer span.End()
	}
	s.metrics.IncQueries(ctx)

	unlock := s.sessions.LockSession(sessionID)
	defer unlock()

	s.sessions.AppendUserTurn(sessionID, query)

	// Advisory only: the analysis feeds logs and telemetry, not the answer.
	analysis := s.preprocessor.Analyze(ctx, query)
	s.logger.Info("query analyzed",
		slog.String("session_id", sessionID),
		slog.String("intention", string(analysis.Intention)),
		slog.Int("clarity", analysis.Clarity),
		slog.Bool("fallback", analysis.Fallback()))

	products, err := s.search.Search(ctx, query)
	if err != nil {
		s.metrics.IncSearchFailures(ctx)
		s.logger.Error("product search failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		products = nil
	}

	answer, genErr := s.generate(ctx, query, sessionID, products)
	if genErr != nil {
		s.metrics.IncGeneratorFailures(ctx)
		s.logger.Error("answer generation failed",
			slog.String("session_id", sessionID),
			slog.String("error", genErr.Error()))
		answer = apologyAnswer
		products = nil
	}

	s.sessions.AppendAssistantTurn(sessionID, answer)

	return Reply{
		Answer:   answer,
		Products: catalog.Summarize(products),
	}, nil
}

func (s *Service) generate(ctx context.Context, query, sessionID string, products []catalog.Product) (string, error) {
	history := s.sessions.History(sessionID, historyWindow)

	prompt := fmt.Sprintf(
		"Lịch sử trò chuyện:\n%s\n\nSản phẩm tìm được:\n%s\n\nCâu hỏi của khách: %s",
		FormatHistory(history), FormatProducts(products), query)

	answer, err := s.generator.Complete(ctx, personaPrompt, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == "" {
		return "", errors.New("empty answer from generator")
	}
	return answer, nil
}

// History returns the stored turns of a session, oldest first.
func (s *Service) History(sessionID string) []session.Turn {
	return s.sessions.History(sessionID, 0)
}

// ClearHistory removes a session entirely.
func (s *Service) ClearHistory(sessionID string) {
	s.sessions.Clear(sessionID)
}

// ClearSearchCache empties the product search cache.
func (s *Service) ClearSearchCache() {
	s.search.Clear()
}
