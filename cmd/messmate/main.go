// Command messmate runs the offline-first sync daemon: it opens the local
// ledger, attaches remote listeners, and schedules background sync and the
// daily reminder until interrupted.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"messmate/internal/config"
	"messmate/internal/notify"
	"messmate/internal/reconcile"
	"messmate/internal/remote"
	"messmate/internal/schedule"
	"messmate/internal/session"
	"messmate/internal/storage/sqlite"
	"messmate/internal/sync"
	"messmate/pkg/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// In-process document store; a hosted deployment swaps in a client for
	// the real backend behind the same interface.
	docs := remote.NewMemoryStore()

	reg := prometheus.NewRegistry()
	engine := sync.New(store, docs, sync.NewMetrics(reg))

	sess := session.New()
	sink := notify.LogSink{}

	scheduler := schedule.New(engine, schedule.AlwaysOnline{}, cfg.SyncInterval)

	// Headless daemon: there is no view to refresh on remote change.
	reconciler := reconcile.New(store, docs, sink, nil)

	if err := reconciler.AttachAll(ctx); err != nil {
		slog.Warn("Remote listeners unavailable, continuing offline", "error", err)
	}
	defer reconciler.DetachAll()

	scheduler.Start(ctx)
	scheduler.SyncNow()

	reminder := schedule.NewReminder(store, sess, sink, cfg.ReminderInterval)
	reminder.Start(ctx)

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, reg)
	}

	slog.Info("Sync daemon running")
	<-ctx.Done()
	slog.Info("Shutting down")
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	slog.Info("Metrics endpoint listening", "address", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Metrics endpoint failed", "error", err)
	}
}
