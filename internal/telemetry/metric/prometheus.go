package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tracklog"

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	storeUpdates   *prometheus.CounterVec
	storeRotations *prometheus.CounterVec
	updateDuration *prometheus.HistogramVec
	requests       *prometheus.CounterVec
}

// NewRegistry creates a registry with all tracklog metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		storeUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "updates_total",
			Help:      "Snapshot store updates by outcome.",
		}, []string{"store", "result"}),
		storeRotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "rotations_total",
			Help:      "Updates that started a new snapshot file.",
		}, []string{"store"}),
		updateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "update_duration_seconds",
			Help:      "Time to read, merge and write one snapshot update.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"store"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
	}

	r.reg.MustRegister(
		r.storeUpdates,
		r.storeRotations,
		r.updateDuration,
		r.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveUpdate records the outcome of a snapshot store update.
func (r *Registry) ObserveUpdate(store string, rotated bool, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.storeUpdates.WithLabelValues(store, result).Inc()
	if err != nil {
		return
	}
	if rotated {
		r.storeRotations.WithLabelValues(store).Inc()
	}
	r.updateDuration.WithLabelValues(store).Observe(d.Seconds())
}

// ObserveRequest counts a served HTTP request. route is the matched
// pattern, not the raw path, to keep label cardinality bounded.
func (r *Registry) ObserveRequest(method, route string, status int) {
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// RegisterStoreFiles exports the number of snapshot files of a store,
// computed on each scrape by count.
func (r *Registry) RegisterStoreFiles(store string, count func() (int, error)) error {
	return r.reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   "store",
		Name:        "files",
		Help:        "Snapshot files currently in the store directory.",
		ConstLabels: prometheus.Labels{"store": store},
	}, func() float64 {
		n, err := count()
		if err != nil {
			return -1
		}
		return float64(n)
	}))
}

// Gatherer exposes the registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
