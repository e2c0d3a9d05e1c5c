package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"shopassist/internal/llm"
	"shopassist/internal/telemetry"
)

// Intention is a recognized shopping intent.
type Intention string

const (
	IntentFindProduct     Intention = "find_product"
	IntentCompareProducts Intention = "compare_products"
	IntentProductDetail   Intention = "product_detail"
	IntentStorePolicy     Intention = "store_policy"
	IntentSmallTalk       Intention = "small_talk"
)

// QueryAnalysis is the preprocessor's best-effort understanding of a
// query. Produced fresh per query, never persisted. Clarity is 1-5;
// 0 means unknown (the deterministic fallback).
type QueryAnalysis struct {
	Intention  Intention
	Attributes map[string]string
	Keywords   []string
	Clarity    int
}

// Fallback reports whether this analysis is the deterministic fallback
// rather than a model classification.
func (a QueryAnalysis) Fallback() bool {
	return a.Clarity == 0
}

const analysisSystemPrompt = `You are a shopping-intent classifier for a clothing storefront.

CRITICAL OUTPUT RULE:
You MUST output exactly ONE valid JSON object and NOTHING else.
NO markdown, NO code fences, NO explanations.

The object MUST strictly conform to:

{
  "intention": "find_product"|"compare_products"|"product_detail"|"store_policy"|"small_talk",
  "attributes": { <attribute name>: <attribute value>, ... },
  "clarity": 1-5
}

Rules:
- intention classifies what the customer wants.
- attributes holds extracted product attributes (category, color, size,
  price range, gender, ...) as flat string pairs; use {} when none.
- clarity scores how unambiguous the query is, 1 (vague) to 5 (precise).
- Use double quotes, no trailing commas, escape all strings.`

// Preprocessor extracts intent and attributes from a raw query via the
// completion service. It never fails: any upstream or parse problem
// degrades to a deterministic fallback.
type Preprocessor struct {
	client  llm.Client
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

func NewPreprocessor(client llm.Client, logger *slog.Logger, metrics *telemetry.Metrics) *Preprocessor {
	return &Preprocessor{client: client, logger: logger, metrics: metrics}
}

// Analyze classifies the query. The result is advisory: the pipeline
// currently uses it for logging and telemetry only.
func (p *Preprocessor) Analyze(ctx context.Context, query string) QueryAnalysis {
	raw, err := p.client.Complete(ctx, analysisSystemPrompt, query)
	if err != nil {
		return p.fallback(ctx, query, "completion failed", err.Error())
	}

	analysis, parseErr := parseAnalysis(raw)
	if parseErr != "" {
		return p.fallback(ctx, query, parseErr, raw)
	}
	return analysis
}

func (p *Preprocessor) fallback(ctx context.Context, query, reason, detail string) QueryAnalysis {
	p.metrics.IncPreprocessFallbacks(ctx)
	if p.logger != nil {
		p.logger.Warn("query analysis fell back",
			slog.String("reason", reason),
			slog.String("detail", detail))
	}
	return QueryAnalysis{
		Intention: IntentFindProduct,
		Keywords:  strings.Fields(query),
	}
}

// parseAnalysis decodes the model output under a strict contract: one
// JSON object, no unknown fields, valid enum and clarity range. Any
// violation yields a non-empty reason; there is no best-effort repair of
// malformed output.
func parseAnalysis(raw string) (QueryAnalysis, string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return QueryAnalysis{}, "empty model output"
	}

	var payload struct {
		Intention  string            `json:"intention"`
		Attributes map[string]string `json:"attributes"`
		Clarity    int               `json:"clarity"`
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return QueryAnalysis{}, "invalid JSON: " + err.Error()
	}
	if reason := ensureSingleJSON(dec); reason != "" {
		return QueryAnalysis{}, reason
	}

	switch Intention(payload.Intention) {
	case IntentFindProduct, IntentCompareProducts, IntentProductDetail, IntentStorePolicy, IntentSmallTalk:
	default:
		return QueryAnalysis{}, "unknown intention: " + payload.Intention
	}
	if payload.Clarity < 1 || payload.Clarity > 5 {
		return QueryAnalysis{}, "clarity out of range"
	}

	return QueryAnalysis{
		Intention:  Intention(payload.Intention),
		Attributes: payload.Attributes,
		Clarity:    payload.Clarity,
	}, ""
}

func ensureSingleJSON(dec *json.Decoder) string {
	if dec.More() {
		return "multiple JSON objects in model output"
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != nil && err != io.EOF {
		return "trailing data after JSON object"
	}
	if len(bytes.TrimSpace(extra)) > 0 {
		return "trailing data after JSON object"
	}
	return ""
}
