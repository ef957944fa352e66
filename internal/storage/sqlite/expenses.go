package sqlite

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"messmate/internal/models"
	"messmate/internal/storage"
)

// RecordExpense stores a locally created expense with sync state pending.
func (s *Store) RecordExpense(ctx context.Context, remoteID, title string, amount float64, category, paidBy, date string) (int64, error) {
	if amount <= 0 || math.IsInf(amount, 0) || math.IsNaN(amount) {
		return 0, storage.ErrInvalidAmount
	}
	if remoteID == "" {
		return 0, storage.ErrMissingRemoteID
	}
	if _, err := uuid.Parse(remoteID); err != nil {
		return 0, storage.ErrInvalidRemoteID
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (remote_id, sync_state, title, amount, category, paid_by, expense_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		remoteID, models.SyncPending, title, amount, category, paidBy, date,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read expense id: %w", err)
	}
	return id, nil
}

// UpsertExpenseFromRemote overwrites-or-inserts keyed by remote id and marks
// the row synced. Used only by the reconciler.
func (s *Store) UpsertExpenseFromRemote(ctx context.Context, remoteID, date, title, category, paidBy string, amount float64) error {
	if remoteID == "" || date == "" || paidBy == "" {
		return nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE expenses
		 SET sync_state = ?, title = ?, amount = ?, category = ?, paid_by = ?, expense_date = ?
		 WHERE remote_id = ?`,
		models.SyncSynced, title, amount, category, paidBy, date, remoteID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense %s: %w", remoteID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if n > 0 {
		return nil
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO expenses (remote_id, sync_state, title, amount, category, paid_by, expense_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		remoteID, models.SyncSynced, title, amount, category, paidBy, date,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense %s: %w", remoteID, err)
	}
	return nil
}

// ListPendingExpenses returns a point-in-time snapshot of pending rows.
// Rows mutated after the snapshot is taken are picked up on the next drain.
func (s *Store) ListPendingExpenses(ctx context.Context) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, remote_id, title, amount, category, paid_by, expense_date
		 FROM expenses
		 WHERE sync_state = ? AND remote_id IS NOT NULL AND remote_id != ''`,
		models.SyncPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending expenses: %w", err)
	}
	defer rows.Close()

	var pending []models.Expense
	for rows.Next() {
		e := models.Expense{SyncState: models.SyncPending}
		if err := rows.Scan(&e.ID, &e.RemoteID, &e.Title, &e.Amount, &e.Category, &e.PaidBy, &e.Date); err != nil {
			return nil, fmt.Errorf("failed to scan pending expense: %w", err)
		}
		pending = append(pending, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending expenses: %w", err)
	}
	return pending, nil
}

// MarkExpenseSynced flips the row for remoteID to synced.
func (s *Store) MarkExpenseSynced(ctx context.Context, remoteID string) error {
	if remoteID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET sync_state = ? WHERE remote_id = ?",
		models.SyncSynced, remoteID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark expense synced: %w", err)
	}
	return nil
}

// ClearSyncedExpensesForMonth deletes synced rows in the month so a fresh
// remote snapshot can repopulate it without double counting remote-deleted
// records. Pending rows survive.
func (s *Store) ClearSyncedExpensesForMonth(ctx context.Context, monthPrefix string) error {
	if monthPrefix == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM expenses WHERE sync_state = ? AND expense_date LIKE ?",
		models.SyncSynced, monthPrefix+"%",
	)
	if err != nil {
		return fmt.Errorf("failed to clear synced expenses: %w", err)
	}
	return nil
}

// ListExpenses returns all expense rows, newest date first.
func (s *Store) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	return s.queryExpenses(ctx,
		`SELECT id, remote_id, sync_state, title, amount, category, paid_by, expense_date
		 FROM expenses ORDER BY expense_date DESC`)
}

// ExpensesByPayer returns the payer's rows, newest date first.
func (s *Store) ExpensesByPayer(ctx context.Context, payer string) ([]models.Expense, error) {
	return s.queryExpenses(ctx,
		`SELECT id, remote_id, sync_state, title, amount, category, paid_by, expense_date
		 FROM expenses WHERE paid_by = ? ORDER BY expense_date DESC`, payer)
}

func (s *Store) queryExpenses(ctx context.Context, query string, args ...any) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var list []models.Expense
	for rows.Next() {
		var e models.Expense
		var remoteID *string
		if err := rows.Scan(&e.ID, &remoteID, &e.SyncState, &e.Title, &e.Amount, &e.Category, &e.PaidBy, &e.Date); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if remoteID != nil {
			e.RemoteID = *remoteID
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return list, nil
}

// MonthlyPaidByMember sums the member's PAYMENT rows in the month.
func (s *Store) MonthlyPaidByMember(ctx context.Context, member, monthPrefix string) (float64, error) {
	return s.sumExpenses(ctx,
		"SELECT SUM(amount) FROM expenses WHERE paid_by = ? AND category = ? AND expense_date LIKE ?",
		member, models.CategoryPayment, monthPrefix+"%")
}

// MonthlyOtherExpensesForMember sums the member's non-PAYMENT rows.
func (s *Store) MonthlyOtherExpensesForMember(ctx context.Context, member, monthPrefix string) (float64, error) {
	return s.sumExpenses(ctx,
		"SELECT SUM(amount) FROM expenses WHERE paid_by = ? AND category <> ? AND expense_date LIKE ?",
		member, models.CategoryPayment, monthPrefix+"%")
}

// MonthlyOtherExpenses sums all non-PAYMENT rows in the month.
func (s *Store) MonthlyOtherExpenses(ctx context.Context, monthPrefix string) (float64, error) {
	return s.sumExpenses(ctx,
		"SELECT SUM(amount) FROM expenses WHERE category <> ? AND expense_date LIKE ?",
		models.CategoryPayment, monthPrefix+"%")
}

// MonthlyTotalPaid sums all PAYMENT rows in the month.
func (s *Store) MonthlyTotalPaid(ctx context.Context, monthPrefix string) (float64, error) {
	return s.sumExpenses(ctx,
		"SELECT SUM(amount) FROM expenses WHERE category = ? AND expense_date LIKE ?",
		models.CategoryPayment, monthPrefix+"%")
}

func (s *Store) sumExpenses(ctx context.Context, query string, args ...any) (float64, error) {
	var sum *float64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum expenses: %w", err)
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}
