// Package schedule decides when the sync engine runs. One logical job
// executes runs serially: on-demand requests and the periodic background
// tick share a single loop, so two sync runs can never interleave on the
// same pending snapshot.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// jobName identifies the one logical sync job on a device. Starting the
// scheduler again under the same name keeps the existing loop.
const jobName = "mess_sync_worker"

// Runner is the unit of work the scheduler drives (the sync engine).
type Runner interface {
	Run(ctx context.Context) error
}

// Connectivity reports whether a network path is currently available. It
// gates only the periodic tick; on-demand runs always attempt and rely on
// failure-driven retry.
type Connectivity interface {
	Online() bool
}

// AlwaysOnline is the Connectivity used when the platform offers no
// reachability signal.
type AlwaysOnline struct{}

// Online always reports true.
func (AlwaysOnline) Online() bool { return true }

// Scheduler serializes sync runs. At most one "run now" request is ever
// outstanding: requesting again while one is pending replaces it (the
// pending request already covers the new mutation).
type Scheduler struct {
	runner       Runner
	connectivity Connectivity
	interval     time.Duration

	runNow    chan struct{}
	startOnce sync.Once
}

// New creates a scheduler driving runner every interval, gated by conn.
func New(runner Runner, conn Connectivity, interval time.Duration) *Scheduler {
	if conn == nil {
		conn = AlwaysOnline{}
	}
	return &Scheduler{
		runner:       runner,
		connectivity: conn,
		interval:     interval,
		runNow:       make(chan struct{}, 1),
	}
}

// SyncNow requests an immediate run. Fire-and-forget: it never blocks, and
// a request that arrives while one is already queued is coalesced into it.
func (s *Scheduler) SyncNow() {
	select {
	case s.runNow <- struct{}{}:
	default:
	}
}

// Start launches the scheduling loop. Idempotent: a second Start keeps the
// existing loop, mirroring a keep-if-present unique job registration.
func (s *Scheduler) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		slog.Info("Sync scheduler started", "job", jobName, "interval", s.interval)
		go s.loop(ctx)
	})
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.runNow:
			s.run(ctx)
		case <-ticker.C:
			if !s.connectivity.Online() {
				continue
			}
			s.run(ctx)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	if err := s.runner.Run(ctx); err != nil {
		// Rows stay pending; a later run picks them up.
		slog.Warn("Sync run failed, will retry", "job", jobName, "error", err)
	}
}
