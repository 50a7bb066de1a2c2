// Package metrics exposes detection counters for Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "warpctx"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	classifications *prometheus.CounterVec
	settleFires     prometheus.Counter
	brandChecks     *prometheus.CounterVec
	membership      *prometheus.CounterVec
	scanFailures    *prometheus.CounterVec
	queuedEvents    prometheus.Gauge
	actions         *prometheus.CounterVec
	inMode          prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "menu_classifications_total",
			Help:      "Menus classified, by identity and mode",
		}, []string{"menu", "mode"}),
		settleFires: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_settles_total",
			Help:      "Inventory settle gates that fired",
		}),
		brandChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "brand_checks_total",
			Help:      "Server brand checks, by result",
		}, []string{"result"}),
		membership: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "membership_signals_total",
			Help:      "Sidebar membership signals applied, by outcome",
		}, []string{"outcome"}),
		scanFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoreboard_scan_failures_total",
			Help:      "Scoreboard reads that failed and kept the cached value",
		}, []string{"scan"}),
		queuedEvents: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queued_events",
			Help:      "Host events waiting for the engine",
		}),
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Actions emitted for collaborators, by kind",
		}, []string{"action"}),
		inMode: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "in_target_mode",
			Help:      "1 while the player is in the target game mode",
		}),
	}
}

func (m *Metrics) Classified(menu string, titleOnly bool) {
	if m == nil {
		return
	}
	mode := "full"
	if titleOnly {
		mode = "title"
	}
	m.classifications.WithLabelValues(menu, mode).Inc()
}

func (m *Metrics) Settled() {
	if m == nil {
		return
	}
	m.settleFires.Inc()
}

func (m *Metrics) BrandChecked(onTarget bool) {
	if m == nil {
		return
	}
	result := "other"
	if onTarget {
		result = "target"
	}
	m.brandChecks.WithLabelValues(result).Inc()
}

// MembershipSignal records an applied sidebar signal. settled is true when
// the signal froze the answer.
func (m *Metrics) MembershipSignal(confirmed, settled bool) {
	if m == nil {
		return
	}
	outcome := "unconfirmed"
	if confirmed {
		outcome = "confirmed"
	}
	if settled {
		outcome += "_settled"
	}
	m.membership.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ScanFailed(scan string) {
	if m == nil {
		return
	}
	m.scanFailures.WithLabelValues(scan).Inc()
}

func (m *Metrics) SetQueued(n int) {
	if m == nil {
		return
	}
	m.queuedEvents.Set(float64(n))
}

func (m *Metrics) Action(kind string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetInMode(in bool) {
	if m == nil {
		return
	}
	if in {
		m.inMode.Set(1)
	} else {
		m.inMode.Set(0)
	}
}
