// Package reconcile keeps the Local Ledger Store current with remote state.
//
// Each collection of interest gets one long-lived snapshot subscription.
// Every delivery carries the full matching document set, and all local
// writes are keyed upserts, so reconciliation is idempotent and safe to run
// concurrently with an in-flight sync push. Rows still pending locally are
// never touched by a remote refresh: they are not remote-confirmed yet and
// must not be clobbered by a stale snapshot.
package reconcile

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"messmate/internal/models"
	"messmate/internal/notify"
	"messmate/internal/remote"
	"messmate/internal/storage"
)

// kvLastNotificationID is the per-device key remembering the newest
// notification already shown, so a notification fires at most once even
// across listener re-attachment.
const kvLastNotificationID = "last_notification_id"

// Reconciler merges remote snapshots into the local ledger. Expense and
// meal handling is scoped to the current calendar month; prices and
// notifications only consider the single most recent document.
type Reconciler struct {
	store    storage.Store
	remote   remote.DocumentStore
	registry *Registry
	sink     notify.Sink

	// onChange runs after a snapshot touched ledger rows, so the caller can
	// recompute displayed totals. May be nil.
	onChange func()

	// month returns the current reporting month prefix ("yyyy-mm").
	// Overridable in tests.
	month func() string
}

// New creates a reconciler over the given store and remote client.
func New(store storage.Store, docs remote.DocumentStore, sink notify.Sink, onChange func()) *Reconciler {
	return &Reconciler{
		store:    store,
		remote:   docs,
		registry: NewRegistry(),
		sink:     sink,
		onChange: onChange,
		month:    func() string { return time.Now().Format("2006-01") },
	}
}

// AttachAll subscribes to every collection of interest. Safe to call again
// on reconnect; prior handles are torn down first.
func (r *Reconciler) AttachAll(ctx context.Context) error {
	type attachment struct {
		collection string
		handler    func(context.Context, remote.Snapshot)
	}
	for _, a := range []attachment{
		{remote.CollectionExpenses, r.applyExpenses},
		{remote.CollectionMeals, r.applyMeals},
		{remote.CollectionMealPrices, r.applyPrices},
		{remote.CollectionNotifications, r.applyNotifications},
		{remote.CollectionUsers, r.applyUsers},
	} {
		handler := a.handler
		err := r.registry.Attach(a.collection, func() (remote.Subscription, error) {
			return r.remote.Subscribe(ctx, a.collection, func(snap remote.Snapshot) {
				handler(ctx, snap)
			})
		})
		if err != nil {
			// Leave the ledger at last-known-good; reattachment is driven
			// externally (connectivity regained, view re-entry).
			slog.Warn("Subscription failed, showing offline data", "collection", a.collection, "error", err)
			return err
		}
	}
	return nil
}

// DetachAll tears down every live subscription.
func (r *Reconciler) DetachAll() {
	r.registry.DetachAll()
}

// applyExpenses replaces the month's synced expense cache with the snapshot.
// Clearing before repopulating is what prevents a remote-deleted expense
// from being double counted: if it no longer appears in the snapshot, it no
// longer exists locally either.
func (r *Reconciler) applyExpenses(ctx context.Context, snap remote.Snapshot) {
	monthPrefix := r.month()

	if err := r.store.ClearSyncedExpensesForMonth(ctx, monthPrefix); err != nil {
		slog.Error("Expense refresh failed", "error", err)
		return
	}

	for _, doc := range snap.Docs {
		date := doc.String("date")
		paidBy := doc.String("paidBy")
		if date == "" || paidBy == "" || !strings.HasPrefix(date, monthPrefix) {
			continue
		}
		err := r.store.UpsertExpenseFromRemote(ctx,
			doc.ID, date, doc.String("title"), doc.String("category"), paidBy, doc.Float("amount"))
		if err != nil {
			slog.Error("Expense upsert failed", "remote_id", doc.ID, "error", err)
			return
		}
	}
	r.changed()
}

// applyMeals replaces the month's synced meal cache with the snapshot.
func (r *Reconciler) applyMeals(ctx context.Context, snap remote.Snapshot) {
	monthPrefix := r.month()

	if err := r.store.ClearSyncedMealsForMonth(ctx, monthPrefix); err != nil {
		slog.Error("Meal refresh failed", "error", err)
		return
	}

	for _, doc := range snap.Docs {
		member := doc.String("memberName")
		date := doc.String("date")
		if member == "" || date == "" || !strings.HasPrefix(date, monthPrefix) {
			continue
		}
		err := r.store.UpsertMealFromRemote(ctx, member, date,
			doc.Int("breakfast"), doc.Int("lunch"), doc.Int("dinner"))
		if err != nil {
			slog.Error("Meal upsert failed", "member", member, "date", date, "error", err)
			return
		}
	}
	r.changed()
}

// applyPrices upserts the single most recent price document (effective date
// descending, limit one) into the local price history.
func (r *Reconciler) applyPrices(ctx context.Context, snap remote.Snapshot) {
	var latest *remote.Document
	for i := range snap.Docs {
		doc := &snap.Docs[i]
		if doc.String("effectiveDate") == "" {
			continue
		}
		if latest == nil || doc.String("effectiveDate") > latest.String("effectiveDate") {
			latest = doc
		}
	}
	if latest == nil {
		return
	}

	err := r.store.UpsertMealPrice(ctx, models.MealPrice{
		EffectiveDate:  latest.String("effectiveDate"),
		BreakfastPrice: latest.Float("breakfastPrice"),
		LunchPrice:     latest.Float("lunchPrice"),
		DinnerPrice:    latest.Float("dinnerPrice"),
	})
	if err != nil {
		slog.Error("Price upsert failed", "error", err)
		return
	}
	r.changed()
}

// applyNotifications shows the single most recent notification at most once
// per device. Cache-origin snapshots are ignored so offline warm-up never
// fires; the first network snapshot after attach only records the latest id
// without showing it (old news is not news).
func (r *Reconciler) applyNotifications(ctx context.Context, snap remote.Snapshot) {
	if snap.FromCache || len(snap.Docs) == 0 {
		return
	}

	latest := snap.Docs[0]
	for _, doc := range snap.Docs[1:] {
		if doc.Time("createdAt").After(latest.Time("createdAt")) {
			latest = doc
		}
	}

	lastShown, err := r.store.GetValue(ctx, kvLastNotificationID)
	if err != nil {
		slog.Error("Notification state read failed", "error", err)
		return
	}

	if lastShown == "" || latest.ID == lastShown {
		if lastShown == "" {
			if err := r.store.SetValue(ctx, kvLastNotificationID, latest.ID); err != nil {
				slog.Error("Notification state write failed", "error", err)
			}
		}
		return
	}

	if err := r.store.SetValue(ctx, kvLastNotificationID, latest.ID); err != nil {
		slog.Error("Notification state write failed", "error", err)
		return
	}

	if r.sink != nil {
		r.sink.Notify(latest.String("title"), latest.String("body"), notify.StableID(latest.ID))
	}
}

// applyUsers upserts remote user records, preserving each record's locally
// cached credential. Status transitions maintain the member roster.
func (r *Reconciler) applyUsers(ctx context.Context, snap remote.Snapshot) {
	for _, doc := range snap.Docs {
		username := doc.String("username")
		if username == "" {
			continue
		}
		err := r.store.UpsertUserFromRemote(ctx, models.User{
			UserID:        doc.String("userId"),
			FullName:      doc.String("fullName"),
			Username:      username,
			Contact:       doc.String("contact"),
			Address:       doc.String("address"),
			ParentContact: doc.String("parentContact"),
			IsAdmin:       doc.Int("isAdmin") == 1 || doc.Fields["isAdmin"] == true,
			Status:        models.UserStatus(doc.String("status")),
		})
		if err != nil {
			slog.Error("User upsert failed", "username", username, "error", err)
			return
		}
	}
}

func (r *Reconciler) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}
