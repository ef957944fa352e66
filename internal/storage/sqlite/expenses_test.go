package sqlite

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"messmate/internal/models"
	"messmate/internal/storage"
)

func TestRecordExpense(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("valid expense lands pending", func(t *testing.T) {
		remoteID := uuid.NewString()
		id, err := store.RecordExpense(ctx, remoteID, "Rice", 500, "Grocery", "alice@mess.com", "2025-03-05")
		if err != nil {
			t.Fatalf("RecordExpense failed: %v", err)
		}
		if id == 0 {
			t.Error("Expected non-zero local row id")
		}

		pending, err := store.ListPendingExpenses(ctx)
		if err != nil {
			t.Fatalf("ListPendingExpenses failed: %v", err)
		}
		if len(pending) != 1 {
			t.Fatalf("Expected 1 pending expense, got %d", len(pending))
		}
		if pending[0].RemoteID != remoteID {
			t.Errorf("RemoteID mismatch: got %s, want %s", pending[0].RemoteID, remoteID)
		}
		if pending[0].Amount != 500 {
			t.Errorf("Amount mismatch: got %f, want 500", pending[0].Amount)
		}
	})

	t.Run("rejects non-positive and non-finite amounts", func(t *testing.T) {
		for _, amount := range []float64{0, -10, math.Inf(1), math.NaN()} {
			_, err := store.RecordExpense(ctx, uuid.NewString(), "Bad", amount, "Other", "alice@mess.com", "2025-03-05")
			if !errors.Is(err, storage.ErrInvalidAmount) {
				t.Errorf("amount %v: expected ErrInvalidAmount, got %v", amount, err)
			}
		}
	})

	t.Run("rejects missing or malformed remote id", func(t *testing.T) {
		if _, err := store.RecordExpense(ctx, "", "Rice", 100, "Grocery", "alice@mess.com", "2025-03-05"); !errors.Is(err, storage.ErrMissingRemoteID) {
			t.Errorf("Expected ErrMissingRemoteID, got %v", err)
		}
		if _, err := store.RecordExpense(ctx, "not-a-uuid", "Rice", 100, "Grocery", "alice@mess.com", "2025-03-05"); !errors.Is(err, storage.ErrInvalidRemoteID) {
			t.Errorf("Expected ErrInvalidRemoteID, got %v", err)
		}
	})
}

func TestExpenseSyncLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	remoteID := uuid.NewString()
	if _, err := store.RecordExpense(ctx, remoteID, "Gas bill", 800, "Gas", "bob@mess.com", "2025-04-10"); err != nil {
		t.Fatalf("RecordExpense failed: %v", err)
	}

	t.Run("MarkExpenseSynced removes row from pending snapshot", func(t *testing.T) {
		if err := store.MarkExpenseSynced(ctx, remoteID); err != nil {
			t.Fatalf("MarkExpenseSynced failed: %v", err)
		}
		pending, err := store.ListPendingExpenses(ctx)
		if err != nil {
			t.Fatalf("ListPendingExpenses failed: %v", err)
		}
		if len(pending) != 0 {
			t.Errorf("Expected no pending expenses, got %d", len(pending))
		}
	})

	t.Run("remote upsert updates existing row in place", func(t *testing.T) {
		if err := store.UpsertExpenseFromRemote(ctx, remoteID, "2025-04-10", "Gas bill", "Gas", "bob@mess.com", 850); err != nil {
			t.Fatalf("UpsertExpenseFromRemote failed: %v", err)
		}
		list, err := store.ExpensesByPayer(ctx, "bob@mess.com")
		if err != nil {
			t.Fatalf("ExpensesByPayer failed: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("Expected 1 expense, got %d", len(list))
		}
		if list[0].Amount != 850 {
			t.Errorf("Amount not updated: got %f, want 850", list[0].Amount)
		}
		if list[0].SyncState != models.SyncSynced {
			t.Errorf("Expected synced state, got %d", list[0].SyncState)
		}
	})

	t.Run("remote upsert inserts unknown row as synced", func(t *testing.T) {
		newID := uuid.NewString()
		if err := store.UpsertExpenseFromRemote(ctx, newID, "2025-04-12", "Internet", "Internet", "carol@mess.com", 1200); err != nil {
			t.Fatalf("UpsertExpenseFromRemote failed: %v", err)
		}
		pending, err := store.ListPendingExpenses(ctx)
		if err != nil {
			t.Fatalf("ListPendingExpenses failed: %v", err)
		}
		if len(pending) != 0 {
			t.Errorf("Remote-origin row must not be pending, got %d pending", len(pending))
		}
	})
}

func TestClearSyncedExpensesForMonth(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	pendingID := uuid.NewString()
	if _, err := store.RecordExpense(ctx, pendingID, "Rice", 300, "Grocery", "alice@mess.com", "2025-05-02"); err != nil {
		t.Fatalf("RecordExpense failed: %v", err)
	}
	if err := store.UpsertExpenseFromRemote(ctx, uuid.NewString(), "2025-05-03", "Utility", "Utility", "bob@mess.com", 400); err != nil {
		t.Fatalf("UpsertExpenseFromRemote failed: %v", err)
	}
	if err := store.UpsertExpenseFromRemote(ctx, uuid.NewString(), "2025-04-28", "Old", "Other", "bob@mess.com", 150); err != nil {
		t.Fatalf("UpsertExpenseFromRemote failed: %v", err)
	}

	if err := store.ClearSyncedExpensesForMonth(ctx, "2025-05"); err != nil {
		t.Fatalf("ClearSyncedExpensesForMonth failed: %v", err)
	}

	list, err := store.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 surviving rows, got %d", len(list))
	}
	for _, e := range list {
		switch {
		case e.RemoteID == pendingID:
			// The pending local row must survive the month refresh.
		case e.Date == "2025-04-28":
			// Synced rows outside the month are untouched.
		default:
			t.Errorf("Unexpected surviving row: %+v", e)
		}
	}
}

func TestMonthlyExpenseSums(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := []struct {
		title, category, paidBy, date string
		amount                        float64
	}{
		{"Payment", models.CategoryPayment, "alice@mess.com", "2025-06-01", 500},
		{"Payment", models.CategoryPayment, "bob@mess.com", "2025-06-02", 700},
		{"Rice", "Grocery", "alice@mess.com", "2025-06-03", 200},
		{"Gas", "Gas", "bob@mess.com", "2025-06-04", 300},
		{"Payment", models.CategoryPayment, "alice@mess.com", "2025-07-01", 999},
	}
	for _, e := range seed {
		if _, err := store.RecordExpense(ctx, uuid.NewString(), e.title, e.amount, e.category, e.paidBy, e.date); err != nil {
			t.Fatalf("RecordExpense failed: %v", err)
		}
	}

	check := func(name string, got float64, err error, want float64) {
		t.Helper()
		if err != nil {
			t.Fatalf("%s failed: %v", name, err)
		}
		if got != want {
			t.Errorf("%s: got %f, want %f", name, got, want)
		}
	}

	paid, err := store.MonthlyPaidByMember(ctx, "alice@mess.com", "2025-06")
	check("MonthlyPaidByMember", paid, err, 500)

	other, err := store.MonthlyOtherExpensesForMember(ctx, "alice@mess.com", "2025-06")
	check("MonthlyOtherExpensesForMember", other, err, 200)

	allOther, err := store.MonthlyOtherExpenses(ctx, "2025-06")
	check("MonthlyOtherExpenses", allOther, err, 500)

	totalPaid, err := store.MonthlyTotalPaid(ctx, "2025-06")
	check("MonthlyTotalPaid", totalPaid, err, 1200)

	empty, err := store.MonthlyTotalPaid(ctx, "2025-08")
	check("MonthlyTotalPaid empty month", empty, err, 0)
}
