package search

import (
	"context"
	"errors"
	"testing"

	"shopassist/internal/catalog"
)

// stubSearcher counts invocations and returns a fresh slice each call.
type stubSearcher struct {
	calls int
	err   error
}

func (s *stubSearcher) Search(ctx context.Context, query string) ([]catalog.Product, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []catalog.Product{{ID: "p1", Title: query}}, nil
}

func TestCache_HitReturnsSameResult(t *testing.T) {
	stub := &stubSearcher{}
	cache, err := NewCache(stub, 8)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()

	first, err := cache.Search(ctx, "áo khoác nam")
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	second, err := cache.Search(ctx, "áo khoác nam")
	if err != nil {
		t.Fatalf("second search: %v", err)
	}

	if stub.calls != 1 {
		t.Errorf("expected 1 underlying search, got: %d", stub.calls)
	}
	if len(first) == 0 || len(second) == 0 || &first[0] != &second[0] {
		t.Error("expected the cached slice to be returned by identity")
	}
}

func TestCache_KeysAreExact(t *testing.T) {
	stub := &stubSearcher{}
	cache, err := NewCache(stub, 8)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()

	if _, err := cache.Search(ctx, "áo khoác"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if _, err := cache.Search(ctx, "Áo khoác"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if _, err := cache.Search(ctx, "áo khoác "); err != nil {
		t.Fatalf("search: %v", err)
	}

	if stub.calls != 3 {
		t.Errorf("expected 3 underlying searches for 3 distinct keys, got: %d", stub.calls)
	}
}

func TestCache_ClearForcesMiss(t *testing.T) {
	stub := &stubSearcher{}
	cache, err := NewCache(stub, 8)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()

	if _, err := cache.Search(ctx, "quần jean"); err != nil {
		t.Fatalf("search: %v", err)
	}
	cache.Clear()
	if _, err := cache.Search(ctx, "quần jean"); err != nil {
		t.Fatalf("search after clear: %v", err)
	}

	if stub.calls != 2 {
		t.Errorf("expected exactly 2 underlying searches, got: %d", stub.calls)
	}
}

func TestCache_ErrorIsNotCached(t *testing.T) {
	stub := &stubSearcher{err: errors.New("store down")}
	cache, err := NewCache(stub, 8)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()

	if _, err := cache.Search(ctx, "áo"); err == nil {
		t.Fatal("expected search error")
	}

	stub.err = nil
	got, err := cache.Search(ctx, "áo")
	if err != nil {
		t.Fatalf("search after recovery: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected a fresh result after the failure, got: %v", got)
	}
	if stub.calls != 2 {
		t.Errorf("expected the failed call not to be cached, calls: %d", stub.calls)
	}
}

func TestCache_CapacityEvictsOldest(t *testing.T) {
	stub := &stubSearcher{}
	cache, err := NewCache(stub, 2)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx := context.Background()

	for _, q := range []string{"a", "b", "c"} {
		if _, err := cache.Search(ctx, q); err != nil {
			t.Fatalf("search %q: %v", q, err)
		}
	}

	// "a" was evicted by "c".
	if _, err := cache.Search(ctx, "a"); err != nil {
		t.Fatalf("search: %v", err)
	}
	if stub.calls != 4 {
		t.Errorf("expected 4 underlying searches, got: %d", stub.calls)
	}

	stats := cache.Stats()
	if stats.Entries != 2 {
		t.Errorf("expected 2 live entries, got: %d", stats.Entries)
	}
	if stats.Misses != 4 {
		t.Errorf("expected 4 misses, got: %d", stats.Misses)
	}
}
