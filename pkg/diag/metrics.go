package diag

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the collectors updated by a Registry.
type metrics struct {
	live     *prometheus.GaugeVec
	created  *prometheus.CounterVec
	disposed *prometheus.CounterVec
	lifetime *prometheus.HistogramVec
	dropped  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer, namespace string) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		live: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_viewmodels",
			Help:      "Number of view models created and not yet disposed",
		}, []string{"type"}),

		created: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "viewmodels_created_total",
			Help:      "Total number of view models initialized",
		}, []string{"type"}),

		disposed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "viewmodels_disposed_total",
			Help:      "Total number of view models disposed",
		}, []string{"type"}),

		lifetime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "viewmodel_lifetime_seconds",
			Help:      "Time between view model creation and disposal",
			Buckets:   []float64{.001, .01, .1, 1, 10, 60, 600}, // 1ms to 10min
		}, []string{"type"}),

		dropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watch_events_dropped_total",
			Help:      "Registry events not delivered to a slow watcher",
		}),
	}
}

func (m *metrics) nodeCreated(typ string) {
	if m == nil {
		return
	}
	m.live.WithLabelValues(typ).Inc()
	m.created.WithLabelValues(typ).Inc()
}

func (m *metrics) nodeDisposed(typ string, lived time.Duration) {
	if m == nil {
		return
	}
	m.live.WithLabelValues(typ).Dec()
	m.disposed.WithLabelValues(typ).Inc()
	m.lifetime.WithLabelValues(typ).Observe(lived.Seconds())
}

func (m *metrics) eventDropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}
