// Package storage defines the Local Ledger Store contract: the single
// durable, device-local source of truth for members, users, expenses, meals
// and meal-price history.
package storage

import (
	"context"
	"errors"

	"messmate/internal/models"
)

var (
	// ErrInvalidAmount is returned when an expense amount is not a finite
	// positive number.
	ErrInvalidAmount = errors.New("amount must be a positive finite number")

	// ErrMissingRemoteID is returned when an expense is recorded without a
	// caller-supplied remote id.
	ErrMissingRemoteID = errors.New("remote id required")

	// ErrInvalidRemoteID is returned when the supplied remote id is not
	// UUID-shaped. Deterministic ids are the idempotence mechanism the whole
	// sync model depends on.
	ErrInvalidRemoteID = errors.New("remote id must be a UUID")

	// ErrUserNotFound is returned when a user lookup matches no row.
	ErrUserNotFound = errors.New("user not found")
)

// Store is the Local Ledger Store: transactional read/write access to every
// persisted row on a device. All writes are keyed upserts (by remote id or
// natural key) so concurrent access from the UI, the sync engine and the
// reconciler is safe without fine-grained locking.
//
// The store is the only shared mutable resource on a device. Implementations
// must make each individual operation atomic; cross-operation sequences
// (month clear + repopulate) are serialized by the callers.
type Store interface {
	ExpenseStore
	MealStore
	PriceStore
	UserStore

	// GetValue and SetValue expose a small key-value scratch table used for
	// per-device state such as the last-shown notification id.
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error

	// Close releases any resources held by the store.
	Close() error
}

// ExpenseStore holds expense and payment rows.
type ExpenseStore interface {
	// RecordExpense stores a locally created expense with sync state
	// pending. The remote id must be non-empty and UUID-shaped so the same
	// logical expense always maps to the same remote document even if the
	// local write is retried. Returns the local row id.
	RecordExpense(ctx context.Context, remoteID, title string, amount float64, category, paidBy, date string) (int64, error)

	// UpsertExpenseFromRemote overwrites-or-inserts keyed by remote id and
	// sets sync state synced. Used only by the reconciler.
	UpsertExpenseFromRemote(ctx context.Context, remoteID, date, title, category, paidBy string, amount float64) error

	// ListPendingExpenses returns a point-in-time snapshot of rows with
	// sync state pending and a non-empty remote id.
	ListPendingExpenses(ctx context.Context) ([]models.Expense, error)

	// MarkExpenseSynced flips the row for remoteID to synced.
	MarkExpenseSynced(ctx context.Context, remoteID string) error

	// ClearSyncedExpensesForMonth deletes synced rows whose date carries the
	// "yyyy-mm" prefix. Pending rows survive; they are not yet
	// remote-confirmed and must not be lost to a remote-origin refresh.
	ClearSyncedExpensesForMonth(ctx context.Context, monthPrefix string) error

	// ListExpenses returns all expense rows, newest date first.
	ListExpenses(ctx context.Context) ([]models.Expense, error)

	// ExpensesByPayer returns the payer's rows, newest date first.
	ExpensesByPayer(ctx context.Context, payer string) ([]models.Expense, error)

	// MonthlyPaidByMember sums the member's PAYMENT rows in the month.
	MonthlyPaidByMember(ctx context.Context, member, monthPrefix string) (float64, error)

	// MonthlyOtherExpensesForMember sums the member's non-PAYMENT rows.
	MonthlyOtherExpensesForMember(ctx context.Context, member, monthPrefix string) (float64, error)

	// MonthlyOtherExpenses sums all non-PAYMENT rows in the month.
	MonthlyOtherExpenses(ctx context.Context, monthPrefix string) (float64, error)

	// MonthlyTotalPaid sums all PAYMENT rows in the month.
	MonthlyTotalPaid(ctx context.Context, monthPrefix string) (float64, error)
}

// MealStore holds one row per (member, date) with three meal flags.
type MealStore interface {
	// SetMeal ensures the (member, date) row exists (creating it pending if
	// absent) and applies the requested flag change. A request to clear a
	// flag that is already 1 is silently ignored: once a meal is on, the
	// normal flow cannot take it off. On an accepted change the row goes
	// pending and (mealType, value) is recorded as the last-changed pair.
	SetMeal(ctx context.Context, member, date string, meal models.MealType, value int) error

	// UpsertMealFromRemote overwrites-or-inserts keyed by (member, date),
	// sets sync state synced and clears the last-changed fields so a
	// remote-origin change never triggers a local notification.
	UpsertMealFromRemote(ctx context.Context, member, date string, breakfast, lunch, dinner int) error

	// ListPendingMeals returns a point-in-time snapshot of pending rows.
	ListPendingMeals(ctx context.Context) ([]models.MealDay, error)

	// MarkMealSynced flips the row to synced and clears the last-changed
	// fields so the notification fires at most once per logical change.
	MarkMealSynced(ctx context.Context, member, date string) error

	// ClearSyncedMealsForMonth deletes synced rows in the month; pending
	// rows survive.
	ClearSyncedMealsForMonth(ctx context.Context, monthPrefix string) error

	// MealsForDate returns the (member, date) row, or a zero-flag row when
	// none exists.
	MealsForDate(ctx context.Context, member, date string) (models.MealDay, error)

	// MonthlyMealCounts returns the member's breakfast/lunch/dinner tallies
	// for the month.
	MonthlyMealCounts(ctx context.Context, member, monthPrefix string) (breakfast, lunch, dinner int, err error)

	// MonthlyMealDays returns the member's rows for the month; an empty
	// member matches every row. Used by the aggregator's temporal join.
	MonthlyMealDays(ctx context.Context, member, monthPrefix string) ([]models.MealDay, error)

	// MonthlyTotalMeals counts every flag across all members in the month.
	MonthlyTotalMeals(ctx context.Context, monthPrefix string) (int, error)
}

// PriceStore holds the meal-price history.
type PriceStore interface {
	// UpsertMealPrice inserts or replaces the price row for the effective
	// date. Admin action and incoming remote price events both land here.
	UpsertMealPrice(ctx context.Context, price models.MealPrice) error

	// PricesForDate resolves the prices applicable to a meal date: the most
	// recent row whose effective date is <= the meal date.
	PricesForDate(ctx context.Context, date string) (models.MealPrice, error)

	// CurrentPrices returns the latest price row.
	CurrentPrices(ctx context.Context) (models.MealPrice, error)
}

// UserStore holds cached user records and the derived member roster.
type UserStore interface {
	// UpsertUserFromRemote overwrites-or-inserts the user keyed by username,
	// preserving any locally cached password hash. An active status
	// maintains the member roster row; any other status removes it.
	UpsertUserFromRemote(ctx context.Context, user models.User) error

	// UpsertUserLocal inserts or updates a locally created user (signup),
	// keeping the existing cached credential when the new one is empty.
	UpsertUserLocal(ctx context.Context, user models.User) error

	// GetUserByUsername returns the cached user record.
	// Returns ErrUserNotFound when no row matches.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// ListPendingUsers returns users awaiting admin approval.
	ListPendingUsers(ctx context.Context) ([]models.User, error)

	// ApprovePendingUser transitions the user to active and promotes the
	// member roster row. Reports whether a row was updated.
	ApprovePendingUser(ctx context.Context, userID string) (bool, error)

	// DeactivateUser transitions the user to deleted and drops the member
	// roster row. Reports whether a row was updated.
	DeactivateUser(ctx context.Context, username string) (bool, error)

	// SetLocalCredential stores the bcrypt hash cached for offline login.
	SetLocalCredential(ctx context.Context, username, passwordHash string) error

	// DisplayName resolves a username to the full name, falling back to the
	// username itself when the record is missing or unnamed.
	DisplayName(ctx context.Context, username string) string

	// ListMembers returns the active roster ordered by name.
	ListMembers(ctx context.Context) ([]models.Member, error)

	// MemberCount returns the roster size.
	MemberCount(ctx context.Context) (int, error)
}
