package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Indicator metrics
	computationsTotal   *prometheus.CounterVec
	computationDuration *prometheus.HistogramVec
	seriesLength        prometheus.Histogram
	candlesFetched      *prometheus.CounterVec
	fetchDuration       *prometheus.HistogramVec
	reportsBuilt        *prometheus.CounterVec
	reportsArchived     *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.computationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taengine_indicator_computations_total",
			Help: "Total number of indicator computations",
		},
		[]string{"indicator", "status"},
	)
	r.computationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taengine_indicator_duration_seconds",
			Help:    "Indicator computation duration in seconds",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"indicator"},
	)
	r.seriesLength = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taengine_series_length",
			Help:    "Number of bars in computed input series",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 5000},
		},
	)
	r.candlesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taengine_candles_fetched_total",
			Help: "Total number of candles fetched from collectors",
		},
		[]string{"provider"},
	)
	r.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taengine_fetch_duration_seconds",
			Help:    "Collector fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "status"},
	)
	r.reportsBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taengine_reports_built_total",
			Help: "Total number of indicator reports built",
		},
		[]string{"status"},
	)
	r.reportsArchived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taengine_reports_archived_total",
			Help: "Total number of reports written to the archive",
		},
		[]string{"status"},
	)

	reg.MustRegister(r.computationsTotal)
	reg.MustRegister(r.computationDuration)
	reg.MustRegister(r.seriesLength)
	reg.MustRegister(r.candlesFetched)
	reg.MustRegister(r.fetchDuration)
	reg.MustRegister(r.reportsBuilt)
	reg.MustRegister(r.reportsArchived)

	return r
}

// Handler returns the exposition handler for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{Registry: r.Registry})
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordComputation records one indicator computation.
func (r *Registry) RecordComputation(indicator string, err error, duration float64) {
	r.computationsTotal.WithLabelValues(indicator, outcome(err)).Inc()
	r.computationDuration.WithLabelValues(indicator).Observe(duration)
}

// RecordSeriesLength records the size of an input series.
func (r *Registry) RecordSeriesLength(n int) {
	r.seriesLength.Observe(float64(n))
}

// RecordFetch records a collector fetch and the candles it returned.
func (r *Registry) RecordFetch(provider string, candles int, err error, duration float64) {
	r.fetchDuration.WithLabelValues(provider, outcome(err)).Observe(duration)
	if err == nil {
		r.candlesFetched.WithLabelValues(provider).Add(float64(candles))
	}
}

// RecordReport records a report build.
func (r *Registry) RecordReport(err error) {
	r.reportsBuilt.WithLabelValues(outcome(err)).Inc()
}

// RecordArchive records a report archive write.
func (r *Registry) RecordArchive(err error) {
	r.reportsArchived.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
