package remote

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryStoreSubscribe(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var mu sync.Mutex
	var snaps []Snapshot
	wake := make(chan struct{}, 16)

	sub, err := store.Subscribe(ctx, CollectionExpenses, func(s Snapshot) {
		mu.Lock()
		snaps = append(snaps, s)
		mu.Unlock()
		wake <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	waitFor := func(cond func() bool) {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			mu.Lock()
			ok := cond()
			mu.Unlock()
			if ok {
				return
			}
			select {
			case <-wake:
			case <-deadline:
				t.Fatal("Timed out waiting for snapshot")
			}
		}
	}

	t.Run("first delivery carries the current snapshot", func(t *testing.T) {
		waitFor(func() bool { return len(snaps) >= 1 })
		mu.Lock()
		defer mu.Unlock()
		if len(snaps[0].Docs) != 0 {
			t.Errorf("Expected empty initial snapshot, got %d docs", len(snaps[0].Docs))
		}
	})

	t.Run("writes fan out the full document set", func(t *testing.T) {
		if err := store.Set(ctx, CollectionExpenses, "e1", map[string]any{"amount": 100.0}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		waitFor(func() bool {
			return len(snaps) > 0 && len(snaps[len(snaps)-1].Docs) == 1
		})

		if err := store.Set(ctx, CollectionExpenses, "e2", map[string]any{"amount": 200.0}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		waitFor(func() bool {
			return len(snaps) > 0 && len(snaps[len(snaps)-1].Docs) == 2
		})

		mu.Lock()
		defer mu.Unlock()
		last := snaps[len(snaps)-1]
		if last.Docs[0].ID != "e1" || last.Docs[1].ID != "e2" {
			t.Errorf("Snapshot not ordered by id: %+v", last.Docs)
		}
	})

	t.Run("rewriting the same id cannot duplicate a document", func(t *testing.T) {
		if err := store.Set(ctx, CollectionExpenses, "e2", map[string]any{"amount": 250.0}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if store.Len(CollectionExpenses) != 2 {
			t.Errorf("Expected 2 documents, got %d", store.Len(CollectionExpenses))
		}
		fields, ok := store.Get(CollectionExpenses, "e2")
		if !ok || fields["amount"] != 250.0 {
			t.Errorf("Expected replaced fields, got %+v", fields)
		}
	})

	t.Run("closed subscription delivers nothing further", func(t *testing.T) {
		sub.Close()
		mu.Lock()
		before := len(snaps)
		mu.Unlock()

		if err := store.Set(ctx, CollectionExpenses, "e3", map[string]any{"amount": 1.0}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		time.Sleep(50 * time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		if len(snaps) != before {
			t.Error("Closed subscription still received snapshots")
		}
	})
}

func TestDocumentAccessors(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	doc := Document{ID: "d", Fields: map[string]any{
		"name":    "alice",
		"amount":  42.5,
		"flag":    1,
		"wide":    int64(7),
		"created": now,
	}}

	if doc.String("name") != "alice" || doc.String("missing") != "" {
		t.Error("String accessor mismatch")
	}
	if doc.Float("amount") != 42.5 || doc.Float("flag") != 1 || doc.Float("missing") != 0 {
		t.Error("Float accessor mismatch")
	}
	if doc.Int("flag") != 1 || doc.Int("wide") != 7 || doc.Int("amount") != 42 {
		t.Error("Int accessor mismatch")
	}
	if !doc.Time("created").Equal(now) || !doc.Time("missing").IsZero() {
		t.Error("Time accessor mismatch")
	}
}
