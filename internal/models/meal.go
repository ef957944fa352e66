package models

import "strings"

// MealType names one of the three daily meals. The canonical spelling is
// capitalized ("Breakfast"); Key returns the lower-case form used in remote
// document ids.
type MealType string

const (
	Breakfast MealType = "Breakfast"
	Lunch     MealType = "Lunch"
	Dinner    MealType = "Dinner"
)

// Key returns the lower-case meal name used in deterministic document ids.
func (m MealType) Key() string {
	return strings.ToLower(string(m))
}

// Valid reports whether the meal type is one of the three known meals.
// Comparison is case-insensitive, matching the original entry flow.
func (m MealType) Valid() bool {
	switch strings.ToLower(string(m)) {
	case "breakfast", "lunch", "dinner":
		return true
	}
	return false
}

// MealDay is one row per (member, date): three independent 0/1 meal flags.
// Rows are created on first meal action, mutated in place, never deleted by
// the entry flow (the reconciler may replace synced in-month rows wholesale).
type MealDay struct {
	// Member is the member's username (email). With Date it forms the
	// unique natural key and the remote document id "member_date".
	Member string

	// Date is the meal date, "yyyy-mm-dd".
	Date string

	// Breakfast, Lunch, Dinner are 0 or 1.
	Breakfast int
	Lunch     int
	Dinner    int

	// SyncState is SyncPending when any flag changed locally since the last
	// confirmed push.
	SyncState SyncState

	// LastChangedType and LastChangedValue record the single most recent
	// flag change so the sync engine can emit at most one notification per
	// logical change. Cleared on MarkMealSynced and on remote upserts
	// (remote-origin changes must never trigger a local notification).
	LastChangedType  MealType
	LastChangedValue int
}

// Flag returns the value of the named meal flag.
func (m *MealDay) Flag(meal MealType) int {
	switch strings.ToLower(string(meal)) {
	case "breakfast":
		return m.Breakfast
	case "lunch":
		return m.Lunch
	default:
		return m.Dinner
	}
}

// TotalMeals returns the number of meals taken that day.
func (m *MealDay) TotalMeals() int {
	return m.Breakfast + m.Lunch + m.Dinner
}

// MealPrice is one price-history row: the unit prices in effect from
// EffectiveDate onward, until a later row supersedes them. For any meal date
// the applicable row is the most recent one with EffectiveDate <= date.
type MealPrice struct {
	// EffectiveDate is the first date the prices apply to, "yyyy-mm-dd".
	// Upserts are keyed by it, so the history is append-only in spirit.
	EffectiveDate string

	BreakfastPrice float64
	LunchPrice     float64
	DinnerPrice    float64
}
