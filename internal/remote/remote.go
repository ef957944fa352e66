// Package remote defines the collaborator interface to the shared remote
// document store. The store is authoritative across devices; each device's
// local ledger is a reconciled cache of it. Only field names and collection
// names are part of the contract; the wire protocol lives outside this
// module.
package remote

import (
	"context"
	"time"
)

// Collection names shared by every device and backend service.
const (
	CollectionExpenses      = "expenses"
	CollectionMeals         = "meals_daily"
	CollectionMealPrices    = "meal_prices"
	CollectionNotifications = "notifications"
	CollectionUsers         = "users"
)

// Document is one remote record: its id within the collection plus its
// fields. Ids are deterministic (client-derived from natural keys), which is
// the idempotence mechanism every retried write relies on.
type Document struct {
	ID     string
	Fields map[string]any
}

// String returns the named field as a string, or "" when absent or not a
// string.
func (d Document) String(key string) string {
	s, _ := d.Fields[key].(string)
	return s
}

// Float returns the named field as a float64, accepting integer encodings.
func (d Document) Float(key string) float64 {
	switch v := d.Fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Int returns the named field as an int, accepting float encodings.
func (d Document) Int(key string) int {
	switch v := d.Fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Time returns the named field as a time.Time, or the zero time.
func (d Document) Time(key string) time.Time {
	t, _ := d.Fields[key].(time.Time)
	return t
}

// Snapshot is the full current state of a collection as delivered to a
// subscriber. Subscriptions are not deltas: every invocation carries the
// complete matching document set.
type Snapshot struct {
	// Docs is the full document set at the time of delivery.
	Docs []Document

	// FromCache is true when the snapshot was served from a local cache
	// rather than confirmed by the network. Notification handling skips
	// cache-origin snapshots so offline warm-up never fires alerts.
	FromCache bool
}

// Subscription is a live snapshot stream. Close tears the stream down; a
// closed subscription delivers no further snapshots.
type Subscription interface {
	Close()
}

// DocumentStore is the remote store client surface the sync engine and
// reconciler program against.
type DocumentStore interface {
	// Set writes the document under its deterministic id, replacing any
	// previous content. Writing the same id twice is safe by design.
	Set(ctx context.Context, collection, docID string, fields map[string]any) error

	// Subscribe attaches a continuous snapshot listener to the collection.
	// fn is invoked serially per subscription, never concurrently with
	// itself. The first invocation carries the current snapshot.
	Subscribe(ctx context.Context, collection string, fn func(Snapshot)) (Subscription, error)
}
