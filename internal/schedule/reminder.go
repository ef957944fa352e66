package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"messmate/internal/ledger"
	"messmate/internal/models"
	"messmate/internal/notify"
	"messmate/internal/session"
)

// reminderID is the fixed notification id for the daily reminder, so a new
// reminder replaces the previous one instead of stacking.
const reminderID = 1001

const reminderTitle = "Mess Reminder"

// ReminderStore is the read surface the reminder job needs.
type ReminderStore interface {
	ledger.Store
	MealsForDate(ctx context.Context, member, date string) (models.MealDay, error)
}

// Reminder is the daily nudge job. It only reads the local ledger; it never
// writes rows and never touches the remote store, so it is safe to run while
// a sync is in flight.
type Reminder struct {
	store    ReminderStore
	session  *session.Session
	sink     notify.Sink
	interval time.Duration

	now       func() time.Time
	startOnce sync.Once
}

// NewReminder creates the daily reminder job.
func NewReminder(store ReminderStore, sess *session.Session, sink notify.Sink, interval time.Duration) *Reminder {
	return &Reminder{
		store:    store,
		session:  sess,
		sink:     sink,
		interval: interval,
		now:      time.Now,
	}
}

// Start launches the reminder loop. Idempotent like Scheduler.Start.
func (r *Reminder) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		slog.Info("Reminder job started", "interval", r.interval)
		go r.loop(ctx)
	})
}

func (r *Reminder) loop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Evaluate(ctx); err != nil {
				slog.Warn("Reminder evaluation failed", "error", err)
			}
		}
	}
}

// Evaluate checks the logged-in member's month and today's meals and fires
// at most one reminder. Logged out means nothing to remind about.
func (r *Reminder) Evaluate(ctx context.Context) error {
	id, ok := r.session.Current()
	if !ok {
		return nil
	}

	now := r.now()
	month := now.Format("2006-01")
	today := now.Format("2006-01-02")

	breakdown, err := ledger.MemberBreakdown(ctx, r.store, id.Username, month)
	if err != nil {
		return fmt.Errorf("failed to compute member breakdown: %w", err)
	}
	hasDue := breakdown.Balance > 0

	day, err := r.store.MealsForDate(ctx, id.Username, today)
	if err != nil {
		return fmt.Errorf("failed to load today's meals: %w", err)
	}
	noMealsToday := day.Breakfast == 0 && day.Lunch == 0 && day.Dinner == 0

	var body string
	switch {
	case hasDue && noMealsToday:
		body = "You have due this month and no meals entered today. Please update."
	case hasDue:
		body = "You still have pending mess due this month. Please pay soon."
	case noMealsToday:
		body = "You have not added today's meals yet. Tap to update."
	default:
		return nil
	}

	r.sink.Notify(reminderTitle, body, reminderID)
	return nil
}
