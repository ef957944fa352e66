package schedule

import (
	"context"
	"sync"
	"testing"
	"time"
)

// gatedRunner blocks each run until released, so tests control exactly how
// many runs overlap with queued requests.
type gatedRunner struct {
	mu      sync.Mutex
	runs    int
	started chan struct{}
	release chan struct{}
}

func newGatedRunner() *gatedRunner {
	return &gatedRunner{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (r *gatedRunner) Run(ctx context.Context) error {
	r.mu.Lock()
	r.runs++
	r.mu.Unlock()
	r.started <- struct{}{}
	<-r.release
	return nil
}

func (r *gatedRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

func waitStart(t *testing.T, r *gatedRunner) {
	t.Helper()
	select {
	case <-r.started:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for a run to start")
	}
}

type offline struct{}

func (offline) Online() bool { return false }

func TestSchedulerCoalescesRequests(t *testing.T) {
	runner := newGatedRunner()
	s := New(runner, AlwaysOnline{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	s.SyncNow()
	waitStart(t, runner)

	// Every request while a run is in flight collapses into one follow-up.
	s.SyncNow()
	s.SyncNow()
	s.SyncNow()

	runner.release <- struct{}{}
	waitStart(t, runner)
	runner.release <- struct{}{}

	// Give a stray third run a moment to appear, then confirm it did not.
	time.Sleep(50 * time.Millisecond)
	if got := runner.count(); got != 2 {
		t.Errorf("Expected 2 serialized runs, got %d", got)
	}
}

func TestSchedulerOnDemandIgnoresConnectivityGate(t *testing.T) {
	runner := newGatedRunner()
	s := New(runner, offline{}, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	// The periodic tick is gated off while offline.
	time.Sleep(50 * time.Millisecond)
	if got := runner.count(); got != 0 {
		t.Fatalf("Offline ticks must not run, got %d runs", got)
	}

	// An explicit request still attempts and relies on retry on failure.
	s.SyncNow()
	waitStart(t, runner)
	runner.release <- struct{}{}

	if got := runner.count(); got != 1 {
		t.Errorf("Expected 1 on-demand run, got %d", got)
	}
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	runner := newGatedRunner()
	s := New(runner, AlwaysOnline{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	s.Start(ctx)

	s.SyncNow()
	waitStart(t, runner)
	runner.release <- struct{}{}

	// A second loop would have raced for the same request; one run means
	// one loop.
	time.Sleep(50 * time.Millisecond)
	if got := runner.count(); got != 1 {
		t.Errorf("Expected a single run from a single loop, got %d", got)
	}
}
