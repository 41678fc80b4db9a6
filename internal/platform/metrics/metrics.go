package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "staffclock"

// Collector owns every metric the service exports. A nil *Collector is valid
// and records nothing.
type Collector struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	clockEvents         *prometheus.CounterVec
	rejectedTransitions prometheus.Counter
	imports             *prometheus.CounterVec
	importedEvents      prometheus.Counter
	payouts             *prometheus.CounterVec
	recordsMarkedPaid   prometheus.Counter
	recordsMaterialized prometheus.Counter
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		clockEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timesheet",
			Name:      "clock_events_total",
			Help:      "Clock events accepted, by action.",
		}, []string{"action"}),
		rejectedTransitions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timesheet",
			Name:      "rejected_transitions_total",
			Help:      "Clock events rejected by the day state machine.",
		}),
		imports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timesheet",
			Name:      "imports_total",
			Help:      "Log import batches by outcome.",
		}, []string{"outcome"}),
		importedEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timesheet",
			Name:      "imported_events_total",
			Help:      "Clock events written by successful imports.",
		}),
		payouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "computations_total",
			Help:      "Payout computations by method and frequency.",
		}, []string{"method", "frequency"}),
		recordsMarkedPaid: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "records_marked_paid_total",
			Help:      "Payment records moved from Unpaid to Paid.",
		}),
		recordsMaterialized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payments",
			Name:      "records_materialized_total",
			Help:      "Payment records created or re-priced from daily summaries.",
		}),
	}
}

func (c *Collector) Record(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) ClockEvent(action string) {
	if c == nil {
		return
	}
	c.clockEvents.WithLabelValues(action).Inc()
}

func (c *Collector) RejectedTransition() {
	if c == nil {
		return
	}
	c.rejectedTransitions.Inc()
}

func (c *Collector) Import(outcome string, events int) {
	if c == nil {
		return
	}
	c.imports.WithLabelValues(outcome).Inc()
	if events > 0 {
		c.importedEvents.Add(float64(events))
	}
}

func (c *Collector) Payout(method, frequency string) {
	if c == nil {
		return
	}
	c.payouts.WithLabelValues(method, frequency).Inc()
}

func (c *Collector) MarkedPaid(n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.recordsMarkedPaid.Add(float64(n))
}

func (c *Collector) Materialized(n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.recordsMaterialized.Add(float64(n))
}

// Gatherer exposes the registry, mostly for tests.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
