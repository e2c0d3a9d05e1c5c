package session

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestStore_HistoryEmpty(t *testing.T) {
	store := NewStore(Config{})

	if turns := store.History("unknown", 0); len(turns) != 0 {
		t.Fatalf("expected empty history, got: %v", turns)
	}
}

func TestStore_AppendOrder(t *testing.T) {
	store := NewStore(Config{})

	store.AppendUserTurn("s1", "áo khoác nam")
	store.AppendAssistantTurn("s1", "reply")

	turns := store.History("s1", 0)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got: %d", len(turns))
	}
	if turns[0].Role != RoleUser || turns[0].Content != "áo khoác nam" {
		t.Errorf("expected first turn to be the user message, got: %+v", turns[0])
	}
	if turns[1].Role != RoleAssistant || turns[1].Content != "reply" {
		t.Errorf("expected second turn to be the assistant message, got: %+v", turns[1])
	}
}

func TestStore_HistoryLimit(t *testing.T) {
	store := NewStore(Config{})

	store.AppendUserTurn("s1", "first")
	store.AppendAssistantTurn("s1", "second")
	store.AppendUserTurn("s1", "third")

	turns := store.History("s1", 2)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got: %d", len(turns))
	}
	if turns[0].Content != "second" || turns[1].Content != "third" {
		t.Errorf("expected the 2 most recent turns in order, got: %+v", turns)
	}

	// Limit above total returns everything.
	if turns := store.History("s1", 10); len(turns) != 3 {
		t.Fatalf("expected 3 turns, got: %d", len(turns))
	}
}

func TestStore_HistoryIsACopy(t *testing.T) {
	store := NewStore(Config{})
	store.AppendUserTurn("s1", "original")

	turns := store.History("s1", 0)
	turns[0].Content = "mutated"

	if got := store.History("s1", 0)[0].Content; got != "original" {
		t.Fatalf("history copy mutation leaked into the store: %q", got)
	}
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(Config{})

	store.AppendUserTurn("s1", "hello")
	store.Clear("s1")

	if turns := store.History("s1", 0); len(turns) != 0 {
		t.Fatalf("expected empty history after clear, got: %v", turns)
	}

	// A fresh session starts without the old turns.
	store.AppendUserTurn("s1", "again")
	turns := store.History("s1", 0)
	if len(turns) != 1 || turns[0].Content != "again" {
		t.Fatalf("expected a single fresh turn, got: %v", turns)
	}
}

func TestStore_SweepEvictsIdleSessions(t *testing.T) {
	store := NewStore(Config{TTL: 4 * time.Hour})

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	store.AppendUserTurn("idle", "old message")

	store.now = func() time.Time { return base.Add(4 * time.Hour) }
	store.AppendUserTurn("active", "recent message")

	// idle has been untouched for 5h, active for 1h.
	evicted := store.Sweep(base.Add(5 * time.Hour))
	if evicted != 1 {
		t.Fatalf("expected 1 evicted session, got: %d", evicted)
	}
	if turns := store.History("idle", 0); len(turns) != 0 {
		t.Errorf("expected idle session to be gone, got: %v", turns)
	}
	if turns := store.History("active", 0); len(turns) != 1 {
		t.Errorf("expected active session to survive, got: %v", turns)
	}

	// Sweeping again is a no-op.
	if evicted := store.Sweep(base.Add(5 * time.Hour)); evicted != 0 {
		t.Errorf("expected idempotent sweep, got %d evictions", evicted)
	}
}

func TestStore_SweepZeroTTL(t *testing.T) {
	store := NewStore(Config{TTL: -1})
	store.AppendUserTurn("s1", "hello")

	if evicted := store.Sweep(time.Now().Add(100 * time.Hour)); evicted != 0 {
		t.Fatalf("expected no eviction with disabled TTL, got: %d", evicted)
	}
}

func TestStore_TouchDelaysEviction(t *testing.T) {
	store := NewStore(Config{TTL: time.Hour})

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	store.AppendUserTurn("s1", "hello")

	store.now = func() time.Time { return base.Add(50 * time.Minute) }
	store.GetOrCreate("s1")

	if evicted := store.Sweep(base.Add(100 * time.Minute)); evicted != 0 {
		t.Fatalf("expected touched session to survive, got %d evictions", evicted)
	}
	if evicted := store.Sweep(base.Add(3 * time.Hour)); evicted != 1 {
		t.Fatalf("expected touched session to expire eventually, got %d evictions", evicted)
	}
}

func TestStore_StartStopNoLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := NewStore(Config{SweepInterval: 10 * time.Millisecond})
	store.Start(context.Background())

	time.Sleep(30 * time.Millisecond)
	store.Stop()

	// Stop is safe to call twice.
	store.Stop()
}

func TestStore_LockSessionSerializes(t *testing.T) {
	store := NewStore(Config{})

	unlock := store.LockSession("s1")
	done := make(chan struct{})
	go func() {
		u := store.LockSession("s1")
		u()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second lock acquired while the first was held")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired after unlock")
	}
}
