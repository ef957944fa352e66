package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"messmate/internal/models"
)

// Defaults used when the price history is somehow empty. Matches the row
// seeded at migration time.
const (
	defaultBreakfastPrice = 50.0
	defaultLunchPrice     = 150.0
	defaultDinnerPrice    = 150.0
)

// UpsertMealPrice inserts or replaces the price row for the effective date.
func (s *Store) UpsertMealPrice(ctx context.Context, price models.MealPrice) error {
	if price.EffectiveDate == "" {
		return fmt.Errorf("effective date required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meal_prices (effective_date, breakfast_price, lunch_price, dinner_price)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(effective_date) DO UPDATE SET
		   breakfast_price = excluded.breakfast_price,
		   lunch_price = excluded.lunch_price,
		   dinner_price = excluded.dinner_price`,
		price.EffectiveDate, price.BreakfastPrice, price.LunchPrice, price.DinnerPrice,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert meal price: %w", err)
	}
	return nil
}

// PricesForDate resolves the prices applicable to a meal date: the most
// recent history row whose effective date is <= the meal date. This is a
// temporal join, not "current price": meals keep their historical rate.
func (s *Store) PricesForDate(ctx context.Context, date string) (models.MealPrice, error) {
	return s.queryPrice(ctx,
		`SELECT effective_date, breakfast_price, lunch_price, dinner_price
		 FROM meal_prices WHERE effective_date <= ?
		 ORDER BY effective_date DESC LIMIT 1`, date)
}

// CurrentPrices returns the latest price row.
func (s *Store) CurrentPrices(ctx context.Context) (models.MealPrice, error) {
	return s.queryPrice(ctx,
		`SELECT effective_date, breakfast_price, lunch_price, dinner_price
		 FROM meal_prices ORDER BY effective_date DESC LIMIT 1`)
}

func (s *Store) queryPrice(ctx context.Context, query string, args ...any) (models.MealPrice, error) {
	p := models.MealPrice{
		BreakfastPrice: defaultBreakfastPrice,
		LunchPrice:     defaultLunchPrice,
		DinnerPrice:    defaultDinnerPrice,
	}
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&p.EffectiveDate, &p.BreakfastPrice, &p.LunchPrice, &p.DinnerPrice,
	)
	if err == sql.ErrNoRows {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("failed to query meal prices: %w", err)
	}
	return p, nil
}
