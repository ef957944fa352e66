package models

// SyncState tracks whether a locally held row has been confirmed by the
// remote store. The integer values are the persisted representation.
type SyncState int

const (
	// SyncPending marks a row created or modified locally and not yet
	// confirmed by a successful remote write.
	SyncPending SyncState = 0

	// SyncSynced marks a row the remote store has confirmed, either by a
	// successful push or because it arrived as a remote-origin upsert.
	SyncSynced SyncState = 1
)

// CategoryPayment is the sentinel expense category denoting a member's
// settlement toward their dues rather than a shared cost.
const CategoryPayment = "PAYMENT"

// ExpenseCategories is the fixed set of categories the app offers.
// CategoryPayment is deliberately not listed; payments are recorded through
// the payment flow, not the expense form.
var ExpenseCategories = []string{"Grocery", "Utility", "Gas", "Internet", "Other"}

// Expense is a financial event: a shared cost or, when Category is
// CategoryPayment, a member's settlement.
type Expense struct {
	// ID is the local autoincrement id. It never travels.
	ID int64

	// RemoteID is the client-generated UUID used as the remote document key.
	// It is assigned at creation time, immutable afterwards, and is the sole
	// de-duplication key against the remote store.
	RemoteID string

	// SyncState is SyncPending until the sync engine confirms the remote
	// write.
	SyncState SyncState

	// Title is the human-readable description ("Rice", "Payment").
	Title string

	// Amount is the positive amount in the mess currency.
	Amount float64

	// Category is one of ExpenseCategories or CategoryPayment.
	Category string

	// PaidBy is the payer's username (email).
	PaidBy string

	// Date is the expense date, "yyyy-mm-dd".
	Date string
}

// IsPayment reports whether the expense is a settlement rather than a
// shared cost.
func (e *Expense) IsPayment() bool {
	return e.Category == CategoryPayment
}
