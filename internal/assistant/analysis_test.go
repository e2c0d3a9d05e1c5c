package assistant

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// mockClient implements llm.Client for tests.
type mockClient struct {
	completeFunc func(ctx context.Context, systemPrompt, prompt string) (string, error)
}

func (m *mockClient) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, systemPrompt, prompt)
	}
	return "", errors.New("not implemented")
}

func TestPreprocessor_Analyze(t *testing.T) {
	client := &mockClient{
		completeFunc: func(ctx context.Context, systemPrompt, prompt string) (string, error) {
			return `{"intention":"find_product","attributes":{"category":"áo khoác","gender":"nam"},"clarity":4}`, nil
		},
	}
	pre := NewPreprocessor(client, nil, nil)

	got := pre.Analyze(context.Background(), "áo khoác nam")
	if got.Intention != IntentFindProduct {
		t.Errorf("expected find_product, got: %s", got.Intention)
	}
	if got.Clarity != 4 {
		t.Errorf("expected clarity 4, got: %d", got.Clarity)
	}
	if got.Attributes["category"] != "áo khoác" {
		t.Errorf("expected category attribute, got: %v", got.Attributes)
	}
	if got.Fallback() {
		t.Error("expected a model classification, not the fallback")
	}
}

func TestPreprocessor_FallbackOnCompletionError(t *testing.T) {
	client := &mockClient{
		completeFunc: func(ctx context.Context, systemPrompt, prompt string) (string, error) {
			return "", errors.New("timeout")
		},
	}
	pre := NewPreprocessor(client, nil, nil)

	got := pre.Analyze(context.Background(), "áo khoác nam")
	if !got.Fallback() {
		t.Fatal("expected the deterministic fallback")
	}
	if got.Intention != IntentFindProduct {
		t.Errorf("fallback intention should be find_product, got: %s", got.Intention)
	}
	if !reflect.DeepEqual(got.Keywords, []string{"áo", "khoác", "nam"}) {
		t.Errorf("expected whitespace-tokenized keywords, got: %v", got.Keywords)
	}
}

func TestParseAnalysis_Strict(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"not json", "the customer wants a jacket"},
		{"fenced json", "```json\n{\"intention\":\"find_product\",\"attributes\":{},\"clarity\":3}\n```"},
		{"unknown field", `{"intention":"find_product","attributes":{},"clarity":3,"note":"x"}`},
		{"unknown intention", `{"intention":"buy_now","attributes":{},"clarity":3}`},
		{"clarity too low", `{"intention":"find_product","attributes":{},"clarity":0}`},
		{"clarity too high", `{"intention":"find_product","attributes":{},"clarity":9}`},
		{"trailing object", `{"intention":"find_product","attributes":{},"clarity":3}{"x":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, reason := parseAnalysis(tc.raw); reason == "" {
				t.Fatalf("expected a parse failure for %q", tc.raw)
			}
		})
	}

	analysis, reason := parseAnalysis(`{"intention":"small_talk","attributes":{},"clarity":2}`)
	if reason != "" {
		t.Fatalf("unexpected parse failure: %s", reason)
	}
	if analysis.Intention != IntentSmallTalk || analysis.Clarity != 2 {
		t.Errorf("unexpected analysis: %+v", analysis)
	}
}
