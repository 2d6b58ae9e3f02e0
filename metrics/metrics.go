package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dreamchain/events"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const namespace = "dreamchain"

// Collector owns every application collector and the registry they live in
type Collector struct {
	registry *prometheus.Registry

	donationsRecorded  *prometheus.CounterVec
	donationDuplicates prometheus.Counter
	donationRejections *prometheus.CounterVec
	recordDuration     prometheus.Histogram
	dreamsCompleted    prometheus.Counter
	chancesAwarded     prometheus.Counter

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector creates and registers all collectors on a fresh registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		donationsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "donations",
				Name:      "recorded_total",
				Help:      "Total number of donations recorded.",
			},
			[]string{"currency"},
		),
		donationDuplicates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "donations",
				Name:      "duplicates_total",
				Help:      "Total number of donation submissions answered from an existing record.",
			},
		),
		donationRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "donations",
				Name:      "rejected_total",
				Help:      "Total number of rejected donation submissions.",
			},
			[]string{"reason"},
		),
		recordDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "donations",
				Name:      "record_duration_seconds",
				Help:      "Duration of the donation recording transaction.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
		),
		dreamsCompleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dreams",
				Name:      "completed_total",
				Help:      "Total number of dreams that reached their goal.",
			},
		),
		chancesAwarded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "users",
				Name:      "chances_awarded_total",
				Help:      "Total number of chances awarded to donors.",
			},
		),

		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "route"},
		),
	}

	c.registry.MustRegister(
		c.donationsRecorded,
		c.donationDuplicates,
		c.donationRejections,
		c.recordDuration,
		c.dreamsCompleted,
		c.chancesAwarded,
		c.httpInFlight,
		c.httpRequests,
		c.httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler exposing the registered metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveRecorded counts a newly stored donation and its recording latency
func (c *Collector) ObserveRecorded(currency string, elapsed time.Duration) {
	if currency == "" {
		currency = "unknown"
	}
	c.donationsRecorded.WithLabelValues(currency).Inc()
	c.recordDuration.Observe(elapsed.Seconds())
}

// ObserveDuplicate counts a replayed transaction hash
func (c *Collector) ObserveDuplicate() {
	c.donationDuplicates.Inc()
}

// ObserveRejected counts a rejected submission by reason
func (c *Collector) ObserveRejected(reason string) {
	c.donationRejections.WithLabelValues(reason).Inc()
}

// RegisterEventHandlers counts completions and awarded chances from committed events
func (c *Collector) RegisterEventHandlers(bus *events.Bus) {
	bus.Subscribe(events.EventTypeDreamCompleted, func(ctx context.Context, event events.Event) {
		c.dreamsCompleted.Inc()
	})
	bus.Subscribe(events.EventTypeChancesAwarded, func(ctx context.Context, event events.Event) {
		awarded, ok := event.(events.ChancesAwardedEvent)
		if !ok {
			log.WithField("eventType", event.Type()).Warn("Unexpected event payload for chances metric")
			return
		}
		c.chancesAwarded.Add(float64(awarded.ChancesAwarded))
	})
}

// Middleware records request counts and latency labelled by chi route pattern
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		c.httpInFlight.Inc()
		defer c.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := routePattern(r)
		method := strings.ToUpper(r.Method)

		c.httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		c.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// routePattern returns the matched chi pattern rather than the raw path
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
