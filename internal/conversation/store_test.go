package conversation

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func fixedLimit(n int) func() int {
	return func() int { return n }
}

func TestStore_AppendAndRecent(t *testing.T) {
	store := NewStore(zerolog.Nop(), fixedLimit(10))

	store.Append(RoleUser, "what time is it")
	store.Append(RoleAssistant, "The time is 3:04 PM")

	turns := store.Recent(10)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != RoleUser || turns[0].Text != "what time is it" {
		t.Errorf("unexpected first turn: %+v", turns[0])
	}
	if turns[1].Role != RoleAssistant {
		t.Errorf("expected assistant second, got %s", turns[1].Role)
	}
	if turns[0].ID == "" || turns[0].ID == turns[1].ID {
		t.Error("turns must carry unique IDs")
	}
}

func TestStore_EvictsOldestBeyondLimit(t *testing.T) {
	store := NewStore(zerolog.Nop(), fixedLimit(3))

	for i := 0; i < 5; i++ {
		store.Append(RoleUser, fmt.Sprintf("turn %d", i))
	}

	turns := store.Recent(10)
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns after eviction, got %d", len(turns))
	}
	if turns[0].Text != "turn 2" {
		t.Errorf("expected oldest retained turn to be 'turn 2', got %q", turns[0].Text)
	}
	if turns[2].Text != "turn 4" {
		t.Errorf("expected newest turn last, got %q", turns[2].Text)
	}
}

func TestStore_LimitShrinksOnNextAppend(t *testing.T) {
	limit := 10
	store := NewStore(zerolog.Nop(), func() int { return limit })

	for i := 0; i < 10; i++ {
		store.Append(RoleUser, fmt.Sprintf("turn %d", i))
	}

	// Simulates a profile downgrade: the shrink happens lazily.
	limit = 4
	if got := store.Len(); got != 10 {
		t.Fatalf("shrink must not happen before the next append, got %d", got)
	}

	store.Append(RoleUser, "after downgrade")
	turns := store.Recent(100)
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns after downgrade append, got %d", len(turns))
	}
	if turns[3].Text != "after downgrade" {
		t.Errorf("newest turn must survive the shrink, got %q", turns[3].Text)
	}
}

func TestStore_ExpiresAfterInactivity(t *testing.T) {
	store := NewStore(zerolog.Nop(), fixedLimit(10))

	now := time.Now()
	store.now = func() time.Time { return now }

	store.Append(RoleUser, "hello")

	now = now.Add(InactivityWindow - time.Second)
	if store.IsExpired() {
		t.Error("history must survive inside the window")
	}
	if len(store.Recent(10)) != 1 {
		t.Error("expected turn still visible inside the window")
	}

	now = now.Add(2 * time.Second)
	if !store.IsExpired() {
		t.Error("history must expire past the window")
	}
	if got := store.Recent(10); got != nil {
		t.Errorf("expired history must read as empty, got %d turns", len(got))
	}
	if store.Len() != 0 {
		t.Error("expired history must count as zero")
	}
}

func TestStore_AppendAfterExpiryStartsFresh(t *testing.T) {
	store := NewStore(zerolog.Nop(), fixedLimit(10))

	now := time.Now()
	store.now = func() time.Time { return now }

	store.Append(RoleUser, "old context")
	now = now.Add(InactivityWindow + time.Minute)

	expired := store.Append(RoleUser, "new conversation opener")
	if !expired {
		t.Error("append after the window must report expiry")
	}

	turns := store.Recent(10)
	if len(turns) != 1 {
		t.Fatalf("expected only the fresh turn, got %d", len(turns))
	}
	if turns[0].Text != "new conversation opener" {
		t.Errorf("stale turn leaked into fresh history: %q", turns[0].Text)
	}
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(zerolog.Nop(), fixedLimit(10))

	store.Append(RoleUser, "hello")
	store.Append(RoleAssistant, "hi")
	store.Clear()

	if store.Len() != 0 {
		t.Error("expected empty store after clear")
	}
	if !store.LastActivity().IsZero() {
		t.Error("clear must reset activity")
	}
}

func TestStore_RecentCopiesSlice(t *testing.T) {
	store := NewStore(zerolog.Nop(), fixedLimit(10))
	store.Append(RoleUser, "hello")

	turns := store.Recent(10)
	turns[0].Text = "mutated"

	if store.Recent(10)[0].Text != "hello" {
		t.Error("Recent must return a copy")
	}
}
