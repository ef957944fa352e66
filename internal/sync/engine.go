// Package sync pushes pending local mutations to the remote document store.
//
// Every remote write uses a deterministic document id derived from the
// record's natural key, so retrying a batch can only overwrite documents in
// place, never duplicate them. The engine marks rows synced one by one and
// aborts the whole batch on the first remote failure; rows already flipped
// stay synced and the rest are retried on the next run.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"messmate/internal/models"
	"messmate/internal/remote"
	"messmate/internal/storage"
)

// Engine drains pending expense and meal rows to the remote store.
type Engine struct {
	store   storage.Store
	remote  remote.DocumentStore
	metrics *Metrics
}

// New creates a sync engine. metrics may be nil when no registry is wired.
func New(store storage.Store, docs remote.DocumentStore, metrics *Metrics) *Engine {
	return &Engine{store: store, remote: docs, metrics: metrics}
}

// MealDocID returns the deterministic id for a (member, date) meal document.
func MealDocID(member, date string) string {
	return member + "_" + date
}

// MealNotificationID returns the deterministic id for a meal-added
// notification, which is what makes the notification at-most-once.
func MealNotificationID(member, date string, meal models.MealType) string {
	return "meal_" + member + "_" + date + "_" + meal.Key()
}

// ExpenseNotificationID returns the deterministic id for an expense or
// payment notification.
func ExpenseNotificationID(remoteID string) string {
	return "exp_" + remoteID
}

// Run drains the pending snapshots once. It returns the first remote write
// error, which the scheduler treats as "retry the whole batch later"; local
// rows that were not reached stay pending. Run never raises user-facing
// errors itself.
func (e *Engine) Run(ctx context.Context) error {
	if e.metrics != nil {
		e.metrics.RunsTotal.Inc()
	}

	err := e.run(ctx)
	if err != nil && e.metrics != nil {
		e.metrics.RunFailures.Inc()
	}
	return err
}

func (e *Engine) run(ctx context.Context) error {
	pendingMeals, err := e.store.ListPendingMeals(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending meals: %w", err)
	}

	for _, meal := range pendingMeals {
		if meal.Member == "" || meal.Date == "" {
			continue
		}
		if err := e.pushMeal(ctx, meal); err != nil {
			return err
		}
	}

	pendingExpenses, err := e.store.ListPendingExpenses(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending expenses: %w", err)
	}

	for _, exp := range pendingExpenses {
		if exp.RemoteID == "" {
			continue
		}
		if err := e.pushExpense(ctx, exp); err != nil {
			return err
		}
	}

	if len(pendingMeals) > 0 || len(pendingExpenses) > 0 {
		slog.Info("Sync run completed",
			"meals", len(pendingMeals),
			"expenses", len(pendingExpenses),
		)
	}
	return nil
}

func (e *Engine) pushMeal(ctx context.Context, meal models.MealDay) error {
	docID := MealDocID(meal.Member, meal.Date)
	fields := map[string]any{
		"memberName": meal.Member,
		"date":       meal.Date,
		"breakfast":  meal.Breakfast,
		"lunch":      meal.Lunch,
		"dinner":     meal.Dinner,
	}

	if err := e.remote.Set(ctx, remote.CollectionMeals, docID, fields); err != nil {
		return fmt.Errorf("failed to push meal %s: %w", docID, err)
	}
	if e.metrics != nil {
		e.metrics.DocsPushed.WithLabelValues("meal").Inc()
	}

	if err := e.store.MarkMealSynced(ctx, meal.Member, meal.Date); err != nil {
		return err
	}

	// Notify only when this sync was triggered by a meal ADD; cancellations
	// are silent.
	if meal.LastChangedType != "" && meal.LastChangedValue == 1 {
		if err := e.emitMealNotification(ctx, meal); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) emitMealNotification(ctx context.Context, meal models.MealDay) error {
	displayName := e.store.DisplayName(ctx, meal.Member)
	mealName := string(meal.LastChangedType)

	fields := map[string]any{
		"type":        "meal",
		"title":       mealName + " Added",
		"body":        fmt.Sprintf("%s added %s (%s)", displayName, mealName, meal.Date),
		"senderName":  displayName,
		"senderEmail": meal.Member,
		"date":        meal.Date,
		"month":       monthOf(meal.Date),
		"mealType":    meal.LastChangedType.Key(),
		"createdAt":   time.Now().UTC(),
	}

	docID := MealNotificationID(meal.Member, meal.Date, meal.LastChangedType)
	if err := e.remote.Set(ctx, remote.CollectionNotifications, docID, fields); err != nil {
		return fmt.Errorf("failed to push notification %s: %w", docID, err)
	}
	if e.metrics != nil {
		e.metrics.Notifications.Inc()
	}
	return nil
}

func (e *Engine) pushExpense(ctx context.Context, exp models.Expense) error {
	fields := map[string]any{
		"date":     exp.Date,
		"title":    exp.Title,
		"category": exp.Category,
		"paidBy":   exp.PaidBy,
		"amount":   exp.Amount,
	}

	if err := e.remote.Set(ctx, remote.CollectionExpenses, exp.RemoteID, fields); err != nil {
		return fmt.Errorf("failed to push expense %s: %w", exp.RemoteID, err)
	}
	if e.metrics != nil {
		e.metrics.DocsPushed.WithLabelValues("expense").Inc()
	}

	if err := e.store.MarkExpenseSynced(ctx, exp.RemoteID); err != nil {
		return err
	}
	return e.emitExpenseNotification(ctx, exp)
}

func (e *Engine) emitExpenseNotification(ctx context.Context, exp models.Expense) error {
	displayName := e.store.DisplayName(ctx, exp.PaidBy)
	amount := strconv.FormatFloat(exp.Amount, 'f', -1, 64)

	var kind, title, body string
	if exp.IsPayment() {
		kind = "payment"
		title = "Payment Added"
		body = fmt.Sprintf("%s paid %s৳ (%s)", displayName, amount, exp.Date)
	} else {
		kind = "expense"
		title = "Expense Added"
		body = fmt.Sprintf("%s added expense: %s — %s৳ (%s, %s)",
			displayName, exp.Title, amount, exp.Category, exp.Date)
	}

	fields := map[string]any{
		"type":         kind,
		"title":        title,
		"body":         body,
		"senderName":   displayName,
		"senderEmail":  exp.PaidBy,
		"date":         exp.Date,
		"month":        monthOf(exp.Date),
		"amount":       amount,
		"category":     exp.Category,
		"expenseTitle": exp.Title,
		"createdAt":    time.Now().UTC(),
	}

	docID := ExpenseNotificationID(exp.RemoteID)
	if err := e.remote.Set(ctx, remote.CollectionNotifications, docID, fields); err != nil {
		return fmt.Errorf("failed to push notification %s: %w", docID, err)
	}
	if e.metrics != nil {
		e.metrics.Notifications.Inc()
	}
	return nil
}

// monthOf returns the "yyyy-mm" prefix of a "yyyy-mm-dd" date, or "".
func monthOf(date string) string {
	if len(date) < 7 {
		return ""
	}
	return date[:7]
}
