package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "delivery_dispatch"

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	dispatchRuns     *prometheus.CounterVec
	dispatchDuration prometheus.Histogram
	assignments      prometheus.Counter
	unassigned       prometheus.Counter
	transitions      *prometheus.CounterVec
	ratings          *prometheus.CounterVec
	messages         prometheus.Counter
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		dispatchRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_runs_total",
			Help:      "Batch dispatch runs by outcome",
		}, []string{"result"}),
		dispatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Wall time of a batch dispatch run",
			Buckets:   prometheus.DefBuckets,
		}),
		assignments: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignments_total",
			Help:      "Orders assigned to riders",
		}),
		unassigned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_left_pending_total",
			Help:      "Orders left pending at the end of a run for lack of riders",
		}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order status transitions",
		}, []string{"from", "to"}),
		ratings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratings_total",
			Help:      "Rating submissions by outcome",
		}, []string{"result"}),
		messages: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "customer_messages_total",
			Help:      "Messages sent to customers",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveDispatch(result string, took time.Duration, assigned, leftPending int) {
	if m == nil {
		return
	}
	m.dispatchRuns.WithLabelValues(result).Inc()
	m.dispatchDuration.Observe(took.Seconds())
	m.assignments.Add(float64(assigned))
	m.unassigned.Add(float64(leftPending))
}

func (m *Metrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ObserveRating(result string) {
	if m == nil {
		return
	}
	m.ratings.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveMessage() {
	if m == nil {
		return
	}
	m.messages.Inc()
}
