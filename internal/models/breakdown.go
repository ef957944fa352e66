package models

// ExpenseBreakdown is the monthly aggregate for one member, or for the whole
// mess when the member dimension is dropped. It is derived on demand from
// Expense and MealDay rows and never cached beyond the current view.
type ExpenseBreakdown struct {
	// BreakfastCount, LunchCount, DinnerCount are the month's meal tallies.
	BreakfastCount int
	LunchCount     int
	DinnerCount    int

	// MealCost is sum(flag * price-effective-on-that-date) over the month.
	// Different days may legitimately use different historical prices.
	MealCost float64

	// OtherExpensesShare is the month's non-PAYMENT expense total.
	OtherExpensesShare float64

	// PaidAmount is the month's PAYMENT total.
	PaidAmount float64

	// TotalCost = MealCost + OtherExpensesShare.
	TotalCost float64

	// Balance = TotalCost - PaidAmount. Positive means dues outstanding,
	// negative means credit/advance, zero means settled.
	Balance float64
}
