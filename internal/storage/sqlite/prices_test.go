package sqlite

import (
	"context"
	"testing"

	"messmate/internal/models"
)

func TestMealPrices(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("fresh store carries the seeded baseline", func(t *testing.T) {
		p, err := store.CurrentPrices(ctx)
		if err != nil {
			t.Fatalf("CurrentPrices failed: %v", err)
		}
		if p.BreakfastPrice != 50 || p.LunchPrice != 150 || p.DinnerPrice != 150 {
			t.Errorf("Unexpected seeded prices: %+v", p)
		}
	})

	t.Run("PricesForDate picks the newest row at or before the date", func(t *testing.T) {
		if err := store.UpsertMealPrice(ctx, models.MealPrice{
			EffectiveDate: "2025-02-01", BreakfastPrice: 60, LunchPrice: 170, DinnerPrice: 180,
		}); err != nil {
			t.Fatalf("UpsertMealPrice failed: %v", err)
		}

		january, err := store.PricesForDate(ctx, "2025-01-15")
		if err != nil {
			t.Fatalf("PricesForDate failed: %v", err)
		}
		if january.LunchPrice != 150 {
			t.Errorf("January meal must keep the old rate, got %f", january.LunchPrice)
		}

		february, err := store.PricesForDate(ctx, "2025-02-15")
		if err != nil {
			t.Fatalf("PricesForDate failed: %v", err)
		}
		if february.LunchPrice != 170 {
			t.Errorf("February meal must use the new rate, got %f", february.LunchPrice)
		}

		boundary, err := store.PricesForDate(ctx, "2025-02-01")
		if err != nil {
			t.Fatalf("PricesForDate failed: %v", err)
		}
		if boundary.LunchPrice != 170 {
			t.Errorf("Effective date itself uses the new rate, got %f", boundary.LunchPrice)
		}
	})

	t.Run("date before any history falls back to defaults", func(t *testing.T) {
		p, err := store.PricesForDate(ctx, "2020-01-01")
		if err != nil {
			t.Fatalf("PricesForDate failed: %v", err)
		}
		if p.BreakfastPrice != 50 || p.LunchPrice != 150 || p.DinnerPrice != 150 {
			t.Errorf("Expected default prices, got %+v", p)
		}
	})

	t.Run("upsert by effective date replaces in place", func(t *testing.T) {
		if err := store.UpsertMealPrice(ctx, models.MealPrice{
			EffectiveDate: "2025-02-01", BreakfastPrice: 65, LunchPrice: 175, DinnerPrice: 185,
		}); err != nil {
			t.Fatalf("UpsertMealPrice failed: %v", err)
		}
		p, err := store.PricesForDate(ctx, "2025-02-15")
		if err != nil {
			t.Fatalf("PricesForDate failed: %v", err)
		}
		if p.BreakfastPrice != 65 {
			t.Errorf("Expected replaced row, got %+v", p)
		}
	})

	t.Run("empty effective date is rejected", func(t *testing.T) {
		if err := store.UpsertMealPrice(ctx, models.MealPrice{}); err == nil {
			t.Error("Expected error for empty effective date")
		}
	})
}
