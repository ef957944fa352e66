// Package notify defines the local notification sink the sync core talks
// to. The platform shell (mobile app, desktop tray) supplies the real
// implementation; the core only computes titles, bodies and stable ids.
package notify

import (
	"hash/fnv"
	"log/slog"
)

// Sink accepts a local notification for display. Implementations must treat
// the id as the de-duplication key: delivering the same id twice replaces
// the on-screen notification instead of duplicating it.
type Sink interface {
	Notify(title, body string, id int)
}

// StableID derives a stable non-negative integer id from a deterministic
// document id, so repeated delivery of the same logical event maps to the
// same on-screen notification.
func StableID(docID string) int {
	h := fnv.New32a()
	h.Write([]byte(docID))
	return int(h.Sum32() & 0x7fffffff)
}

// LogSink writes notifications to the structured log. It stands in for the
// platform notifier in the daemon and in tests.
type LogSink struct{}

// Notify logs the notification.
func (LogSink) Notify(title, body string, id int) {
	slog.Info("local notification", "id", id, "title", title, "body", body)
}
