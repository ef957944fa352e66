package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"messmate/internal/models"
)

// ensureMealRow creates the (member, date) row with zero flags and sync state
// pending when it does not exist yet.
func (s *Store) ensureMealRow(ctx context.Context, member, date string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meals_daily (member_name, meal_date, breakfast, lunch, dinner, sync_state, last_changed_type, last_changed_val)
		 VALUES (?, ?, 0, 0, 0, ?, NULL, 0)
		 ON CONFLICT(member_name, meal_date) DO NOTHING`,
		member, date, models.SyncPending,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure meal row: %w", err)
	}
	return nil
}

// SetMeal applies a flag change for (member, date). Once a flag is 1 the
// normal flow cannot clear it: a request to set it back to 0 is silently
// ignored, sync state included. Accepted changes mark the row pending and
// record the (mealType, value) pair for the sync engine's notification.
func (s *Store) SetMeal(ctx context.Context, member, date string, meal models.MealType, value int) error {
	if member == "" || date == "" || !meal.Valid() {
		return nil
	}
	if err := s.ensureMealRow(ctx, member, date); err != nil {
		return err
	}

	var b, l, d int
	err := s.db.QueryRowContext(ctx,
		"SELECT breakfast, lunch, dinner FROM meals_daily WHERE member_name = ? AND meal_date = ?",
		member, date,
	).Scan(&b, &l, &d)
	if err != nil {
		return fmt.Errorf("failed to read meal row: %w", err)
	}

	switch strings.ToLower(string(meal)) {
	case "breakfast":
		if b == 1 && value == 0 {
			return nil
		}
		b = value
	case "lunch":
		if l == 1 && value == 0 {
			return nil
		}
		l = value
	default:
		if d == 1 && value == 0 {
			return nil
		}
		d = value
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE meals_daily
		 SET breakfast = ?, lunch = ?, dinner = ?, sync_state = ?, last_changed_type = ?, last_changed_val = ?
		 WHERE member_name = ? AND meal_date = ?`,
		b, l, d, models.SyncPending, string(meal), value, member, date,
	)
	if err != nil {
		return fmt.Errorf("failed to update meal row: %w", err)
	}
	return nil
}

// UpsertMealFromRemote overwrites-or-inserts keyed by (member, date), marks
// the row synced and clears the last-changed fields so remote-origin changes
// never trigger a local notification.
func (s *Store) UpsertMealFromRemote(ctx context.Context, member, date string, breakfast, lunch, dinner int) error {
	if member == "" || date == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meals_daily (member_name, meal_date, breakfast, lunch, dinner, sync_state, last_changed_type, last_changed_val)
		 VALUES (?, ?, ?, ?, ?, ?, NULL, 0)
		 ON CONFLICT(member_name, meal_date) DO UPDATE SET
		   breakfast = excluded.breakfast,
		   lunch = excluded.lunch,
		   dinner = excluded.dinner,
		   sync_state = excluded.sync_state,
		   last_changed_type = NULL,
		   last_changed_val = 0`,
		member, date, breakfast, lunch, dinner, models.SyncSynced,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert meal from remote: %w", err)
	}
	return nil
}

// ListPendingMeals returns a point-in-time snapshot of pending rows.
func (s *Store) ListPendingMeals(ctx context.Context) ([]models.MealDay, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT member_name, meal_date, breakfast, lunch, dinner, last_changed_type, last_changed_val
		 FROM meals_daily WHERE sync_state = ?`,
		models.SyncPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending meals: %w", err)
	}
	defer rows.Close()

	var pending []models.MealDay
	for rows.Next() {
		m := models.MealDay{SyncState: models.SyncPending}
		var changedType sql.NullString
		if err := rows.Scan(&m.Member, &m.Date, &m.Breakfast, &m.Lunch, &m.Dinner, &changedType, &m.LastChangedValue); err != nil {
			return nil, fmt.Errorf("failed to scan pending meal: %w", err)
		}
		if changedType.Valid {
			m.LastChangedType = models.MealType(changedType.String)
		}
		pending = append(pending, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending meals: %w", err)
	}
	return pending, nil
}

// MarkMealSynced flips the row to synced and clears the last-changed fields
// so the notification fires at most once per logical change.
func (s *Store) MarkMealSynced(ctx context.Context, member, date string) error {
	if member == "" || date == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE meals_daily
		 SET sync_state = ?, last_changed_type = NULL, last_changed_val = 0
		 WHERE member_name = ? AND meal_date = ?`,
		models.SyncSynced, member, date,
	)
	if err != nil {
		return fmt.Errorf("failed to mark meal synced: %w", err)
	}
	return nil
}

// ClearSyncedMealsForMonth deletes synced rows in the month; pending rows
// survive the remote-origin refresh.
func (s *Store) ClearSyncedMealsForMonth(ctx context.Context, monthPrefix string) error {
	if monthPrefix == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM meals_daily WHERE sync_state = ? AND meal_date LIKE ?",
		models.SyncSynced, monthPrefix+"%",
	)
	if err != nil {
		return fmt.Errorf("failed to clear synced meals: %w", err)
	}
	return nil
}

// MealsForDate returns the (member, date) row, or a zero-flag row when none
// exists.
func (s *Store) MealsForDate(ctx context.Context, member, date string) (models.MealDay, error) {
	m := models.MealDay{Member: member, Date: date}
	if member == "" || date == "" {
		return m, nil
	}

	err := s.db.QueryRowContext(ctx,
		"SELECT breakfast, lunch, dinner FROM meals_daily WHERE member_name = ? AND meal_date = ?",
		member, date,
	).Scan(&m.Breakfast, &m.Lunch, &m.Dinner)
	if err == sql.ErrNoRows {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("failed to get meals for date: %w", err)
	}
	return m, nil
}

// MonthlyMealCounts returns the member's meal tallies for the month.
func (s *Store) MonthlyMealCounts(ctx context.Context, member, monthPrefix string) (breakfast, lunch, dinner int, err error) {
	if member == "" {
		return 0, 0, 0, nil
	}

	var b, l, d *int
	err = s.db.QueryRowContext(ctx,
		`SELECT SUM(breakfast), SUM(lunch), SUM(dinner)
		 FROM meals_daily WHERE member_name = ? AND meal_date LIKE ?`,
		member, monthPrefix+"%",
	).Scan(&b, &l, &d)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count meals: %w", err)
	}
	if b != nil {
		breakfast = *b
	}
	if l != nil {
		lunch = *l
	}
	if d != nil {
		dinner = *d
	}
	return breakfast, lunch, dinner, nil
}

// MonthlyMealDays returns meal rows in the month, for one member or for all
// members when member is empty. The aggregator walks these to apply the
// price effective on each date.
func (s *Store) MonthlyMealDays(ctx context.Context, member, monthPrefix string) ([]models.MealDay, error) {
	query := `SELECT member_name, meal_date, breakfast, lunch, dinner
	          FROM meals_daily WHERE meal_date LIKE ?`
	args := []any{monthPrefix + "%"}
	if member != "" {
		query += " AND member_name = ?"
		args = append(args, member)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meal days: %w", err)
	}
	defer rows.Close()

	var days []models.MealDay
	for rows.Next() {
		var m models.MealDay
		if err := rows.Scan(&m.Member, &m.Date, &m.Breakfast, &m.Lunch, &m.Dinner); err != nil {
			return nil, fmt.Errorf("failed to scan meal day: %w", err)
		}
		days = append(days, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meal days: %w", err)
	}
	return days, nil
}

// MonthlyTotalMeals counts every flag across all members in the month.
func (s *Store) MonthlyTotalMeals(ctx context.Context, monthPrefix string) (int, error) {
	var total *int
	err := s.db.QueryRowContext(ctx,
		"SELECT SUM(breakfast + lunch + dinner) FROM meals_daily WHERE meal_date LIKE ?",
		monthPrefix+"%",
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to total meals: %w", err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
