package sim

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zeusync/herd/internal/core/bt"
	"github.com/zeusync/herd/internal/core/events/bus"
	"github.com/zeusync/herd/internal/core/world"
)

// Metrics are the simulation's Prometheus collectors.
type Metrics struct {
	steps        prometheus.Counter
	brainTicks   *prometheus.CounterVec
	activity     *prometheus.GaugeVec
	events       *prometheus.CounterVec
	stepDuration prometheus.Histogram

	deliveries    *prometheus.CounterVec
	handlerErrors *prometheus.CounterVec
	deliveryTime  prometheus.Histogram
}

// NewMetrics registers the simulation collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		steps: f.NewCounter(prometheus.CounterOpts{
			Name: "herd_sim_steps_total",
			Help: "Simulation steps executed",
		}),
		brainTicks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "herd_brain_ticks_total",
			Help: "Brain ticks by returned status",
		}, []string{"status"}),
		activity: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "herd_agents_by_activity",
			Help: "Agents per activity after the last step",
		}, []string{"activity"}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "herd_events_total",
			Help: "Events published by type",
		}, []string{"type"}),
		stepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "herd_sim_step_duration_seconds",
			Help:    "Wall time spent in one simulation step",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05},
		}),
		deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "herd_bus_handler_deliveries_total",
			Help: "Handler invocations by event type",
		}, []string{"type"}),
		handlerErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "herd_bus_handler_errors_total",
			Help: "Publishes whose handlers returned an error, by event type",
		}, []string{"type"}),
		deliveryTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "herd_bus_delivery_duration_seconds",
			Help:    "Time spent delivering one event to its handlers",
			Buckets: prometheus.ExponentialBuckets(0.000001, 10, 6),
		}),
	}
}

// OnPublish makes Metrics a bus observer.
func (m *Metrics) OnPublish(string, bus.Event) {}

// OnDelivered records handler fan-out, failures and latency of one publish.
func (m *Metrics) OnDelivered(eventType string, handlers int, err error, durationMicros int64) {
	m.deliveries.WithLabelValues(eventType).Add(float64(handlers))
	if err != nil {
		m.handlerErrors.WithLabelValues(eventType).Inc()
	}
	m.deliveryTime.Observe(float64(durationMicros) / 1e6)
}

func (m *Metrics) observeStep(seconds float64, statuses map[bt.Status]int, activities map[world.Activity]int) {
	if m == nil {
		return
	}
	m.steps.Inc()
	m.stepDuration.Observe(seconds)
	for st, n := range statuses {
		m.brainTicks.WithLabelValues(st.String()).Add(float64(n))
	}
	m.activity.Reset()
	for a, n := range activities {
		m.activity.WithLabelValues(string(a)).Set(float64(n))
	}
}

func (m *Metrics) observeEvent(eventType string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType).Inc()
}
