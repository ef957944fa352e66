package sync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts sync engine activity. A run that pushed nothing still
// counts: the drain loop itself is the health signal.
type Metrics struct {
	RunsTotal     prometheus.Counter
	RunFailures   prometheus.Counter
	DocsPushed    *prometheus.CounterVec
	Notifications prometheus.Counter
}

// NewMetrics registers the sync counters with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "messmate_sync_runs_total",
			Help: "Sync engine runs attempted.",
		}),
		RunFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "messmate_sync_run_failures_total",
			Help: "Sync engine runs aborted by a remote write failure.",
		}),
		DocsPushed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "messmate_sync_documents_pushed_total",
			Help: "Remote documents written, by kind.",
		}, []string{"kind"}),
		Notifications: factory.NewCounter(prometheus.CounterOpts{
			Name: "messmate_sync_notifications_emitted_total",
			Help: "Notification documents created.",
		}),
	}
}
