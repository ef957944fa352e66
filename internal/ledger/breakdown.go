// Package ledger derives financial aggregates from the Local Ledger Store.
// Everything here is a pure read: no rows are written, nothing is cached
// beyond the returned value.
package ledger

import (
	"context"
	"fmt"

	"messmate/internal/models"
)

// Store is the read surface the aggregator needs. storage.Store satisfies it.
type Store interface {
	MonthlyMealDays(ctx context.Context, member, monthPrefix string) ([]models.MealDay, error)
	PricesForDate(ctx context.Context, date string) (models.MealPrice, error)
	MonthlyOtherExpensesForMember(ctx context.Context, member, monthPrefix string) (float64, error)
	MonthlyPaidByMember(ctx context.Context, member, monthPrefix string) (float64, error)
	MonthlyOtherExpenses(ctx context.Context, monthPrefix string) (float64, error)
	MonthlyTotalPaid(ctx context.Context, monthPrefix string) (float64, error)
}

// MemberBreakdown computes one member's aggregate for the month.
//
// Meal cost applies the price effective on each meal's date (the most recent
// price row at or before it), so days in the same month may use different
// historical rates. Balance is (meal cost + other-expense share) minus
// payments: positive means dues, negative means advance.
func MemberBreakdown(ctx context.Context, s Store, member, monthPrefix string) (models.ExpenseBreakdown, error) {
	var b models.ExpenseBreakdown
	if member == "" || monthPrefix == "" {
		return b, nil
	}

	days, err := s.MonthlyMealDays(ctx, member, monthPrefix)
	if err != nil {
		return b, fmt.Errorf("failed to load meal days: %w", err)
	}
	if err := tallyMeals(ctx, s, days, &b); err != nil {
		return b, err
	}

	if b.OtherExpensesShare, err = s.MonthlyOtherExpensesForMember(ctx, member, monthPrefix); err != nil {
		return b, fmt.Errorf("failed to sum other expenses: %w", err)
	}
	if b.PaidAmount, err = s.MonthlyPaidByMember(ctx, member, monthPrefix); err != nil {
		return b, fmt.Errorf("failed to sum payments: %w", err)
	}

	b.TotalCost = b.MealCost + b.OtherExpensesShare
	b.Balance = b.TotalCost - b.PaidAmount
	return b, nil
}

// MessBreakdown computes the mess-wide aggregate for the month: the same
// computation as MemberBreakdown with the member dimension dropped.
func MessBreakdown(ctx context.Context, s Store, monthPrefix string) (models.ExpenseBreakdown, error) {
	var b models.ExpenseBreakdown
	if monthPrefix == "" {
		return b, nil
	}

	days, err := s.MonthlyMealDays(ctx, "", monthPrefix)
	if err != nil {
		return b, fmt.Errorf("failed to load meal days: %w", err)
	}
	if err := tallyMeals(ctx, s, days, &b); err != nil {
		return b, err
	}

	if b.OtherExpensesShare, err = s.MonthlyOtherExpenses(ctx, monthPrefix); err != nil {
		return b, fmt.Errorf("failed to sum other expenses: %w", err)
	}
	if b.PaidAmount, err = s.MonthlyTotalPaid(ctx, monthPrefix); err != nil {
		return b, fmt.Errorf("failed to sum payments: %w", err)
	}

	b.TotalCost = b.MealCost + b.OtherExpensesShare
	b.Balance = b.TotalCost - b.PaidAmount
	return b, nil
}

func tallyMeals(ctx context.Context, s Store, days []models.MealDay, b *models.ExpenseBreakdown) error {
	for _, day := range days {
		prices, err := s.PricesForDate(ctx, day.Date)
		if err != nil {
			return fmt.Errorf("failed to resolve prices for %s: %w", day.Date, err)
		}

		b.BreakfastCount += day.Breakfast
		b.LunchCount += day.Lunch
		b.DinnerCount += day.Dinner
		b.MealCost += float64(day.Breakfast)*prices.BreakfastPrice +
			float64(day.Lunch)*prices.LunchPrice +
			float64(day.Dinner)*prices.DinnerPrice
	}
	return nil
}
