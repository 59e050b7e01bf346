package database

import (
	"context"
	"errors"
	"testing"
)

// setupTestDB creates an in-memory SQLite store for testing
func setupTestDB(t *testing.T) (*Store, func()) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	return store, func() {
		store.Close()
	}
}

func TestScore_MissingMember(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	score, ok, err := store.Score(context.Background(), "balances", "@alice:x")
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if ok {
		t.Errorf("Expected missing member, got score %v", score)
	}
}

func TestSetScore_Upsert(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.SetScore(ctx, "balances", "@alice:x", 100); err != nil {
		t.Fatalf("SetScore failed: %v", err)
	}
	if err := store.SetScore(ctx, "balances", "@alice:x", 42.5); err != nil {
		t.Fatalf("SetScore failed: %v", err)
	}
	score, ok, err := store.Score(ctx, "balances", "@alice:x")
	if err != nil || !ok {
		t.Fatalf("Expected stored score, got ok=%v err=%v", ok, err)
	}
	if score != 42.5 {
		t.Errorf("Expected score=42.5, got %v", score)
	}

	// Same member in another set is independent
	if _, ok, _ := store.Score(ctx, "bank", "@alice:x"); ok {
		t.Error("Expected no bank score for alice")
	}

	if err := store.RemoveMember(ctx, "balances", "@alice:x"); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if _, ok, _ := store.Score(ctx, "balances", "@alice:x"); ok {
		t.Error("Expected alice to be removed")
	}
}

func TestRangeByScoreDesc(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	scores := map[string]float64{"@a:x": 10, "@b:x": 300, "@c:x": 50, "@d:x": 50}
	for member, score := range scores {
		if err := store.SetScore(ctx, "balances", member, score); err != nil {
			t.Fatalf("SetScore failed: %v", err)
		}
	}

	top, err := store.RangeByScoreDesc(ctx, "balances", 0, 2)
	if err != nil {
		t.Fatalf("RangeByScoreDesc failed: %v", err)
	}
	want := []string{"@b:x", "@c:x", "@d:x"}
	if len(top) != len(want) {
		t.Fatalf("Expected %d members, got %d", len(want), len(top))
	}
	for i, member := range want {
		if top[i].Member != member {
			t.Errorf("Rank %d: expected %s, got %s", i, member, top[i].Member)
		}
	}
	if top[0].Score != 300 {
		t.Errorf("Expected top score 300, got %v", top[0].Score)
	}

	all, err := store.RangeByScoreDesc(ctx, "balances", 1, -1)
	if err != nil {
		t.Fatalf("RangeByScoreDesc failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 members from rank 1, got %d", len(all))
	}
}

func TestHashFields(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	if _, ok, err := store.HashField(ctx, "bans", "@a:x"); ok || err != nil {
		t.Fatalf("Expected empty hash, got ok=%v err=%v", ok, err)
	}
	if err := store.SetHashField(ctx, "bans", "@a:x", `{"reason":"x"}`); err != nil {
		t.Fatalf("SetHashField failed: %v", err)
	}
	if err := store.SetHashField(ctx, "bans", "@a:x", `{"reason":"y"}`); err != nil {
		t.Fatalf("SetHashField failed: %v", err)
	}
	value, ok, err := store.HashField(ctx, "bans", "@a:x")
	if err != nil || !ok {
		t.Fatalf("Expected field, got ok=%v err=%v", ok, err)
	}
	if value != `{"reason":"y"}` {
		t.Errorf("Expected overwritten value, got %s", value)
	}
	if err := store.DeleteHashField(ctx, "bans", "@a:x"); err != nil {
		t.Fatalf("DeleteHashField failed: %v", err)
	}
	if _, ok, _ := store.HashField(ctx, "bans", "@a:x"); ok {
		t.Error("Expected field to be deleted")
	}
}

func TestWithTx_CommitAndRollback(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx KV) error {
		if err := tx.SetScore(ctx, "balances", "@a:x", 50); err != nil {
			return err
		}
		return tx.SetScore(ctx, "balances", "@b:x", 70)
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
	if score, _, _ := store.Score(ctx, "balances", "@b:x"); score != 70 {
		t.Errorf("Expected committed score 70, got %v", score)
	}

	boom := errors.New("boom")
	err = store.WithTx(ctx, func(tx KV) error {
		if err := tx.SetScore(ctx, "balances", "@a:x", 0); err != nil {
			return err
		}
		// nested transactions reuse the outer one
		return tx.WithTx(ctx, func(inner KV) error {
			if err := inner.SetScore(ctx, "balances", "@b:x", 120); err != nil {
				return err
			}
			return boom
		})
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	if score, _, _ := store.Score(ctx, "balances", "@a:x"); score != 50 {
		t.Errorf("Expected rolled back score 50, got %v", score)
	}
	if score, _, _ := store.Score(ctx, "balances", "@b:x"); score != 70 {
		t.Errorf("Expected rolled back score 70, got %v", score)
	}
}
