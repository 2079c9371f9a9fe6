package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	riskSummaries   prometheus.Counter
	forecasts       *prometheus.CounterVec
	computeDuration *prometheus.HistogramVec
	chatTurns       *prometheus.CounterVec
	chatTokens      *prometheus.CounterVec
	uploadsTotal    *prometheus.CounterVec
	datasetsActive  prometheus.Gauge
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

	// Business metrics
	r.riskSummaries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "prism_risk_summaries_total",
			Help: "Total number of risk summaries computed",
		},
	)
	r.forecasts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prism_forecasts_total",
			Help: "Total number of forecasts computed",
		},
		[]string{"source"},
	)
	r.computeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prism_compute_duration_seconds",
			Help:    "Engine computation duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
		[]string{"operation"},
	)
	r.chatTurns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prism_chat_turns_total",
			Help: "Total number of chat turns",
		},
		[]string{"provider", "status"},
	)
	r.chatTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prism_chat_tokens_total",
			Help: "Total LLM tokens consumed by chat",
		},
		[]string{"provider", "direction"},
	)
	r.uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prism_uploads_total",
			Help: "Total number of dataset uploads",
		},
		[]string{"status"},
	)
	r.datasetsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "prism_datasets_active",
			Help: "Number of uploaded datasets currently held in memory",
		},
	)
	reg.MustRegister(r.riskSummaries)
	reg.MustRegister(r.forecasts)
	reg.MustRegister(r.computeDuration)
	reg.MustRegister(r.chatTurns)
	reg.MustRegister(r.chatTokens)
	reg.MustRegister(r.uploadsTotal)
	reg.MustRegister(r.datasetsActive)

	return r
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

// RecordRiskSummary records a risk summary computation.
func (r *Registry) RecordRiskSummary(duration float64) {
	r.riskSummaries.Inc()
	r.computeDuration.WithLabelValues("risk_summary").Observe(duration)
}

// RecordForecast records a forecast computation. Source is "symbol"
// for live quote data or "upload" for an uploaded dataset.
func (r *Registry) RecordForecast(source string, duration float64) {
	r.forecasts.WithLabelValues(source).Inc()
	r.computeDuration.WithLabelValues("forecast").Observe(duration)
}

// RecordChatTurn records a chat turn and its token usage.
func (r *Registry) RecordChatTurn(provider, status string, inputTokens, outputTokens int) {
	r.chatTurns.WithLabelValues(provider, status).Inc()
	r.chatTokens.WithLabelValues(provider, "input").Add(float64(inputTokens))
	r.chatTokens.WithLabelValues(provider, "output").Add(float64(outputTokens))
}

// RecordUpload records an upload attempt.
func (r *Registry) RecordUpload(status string) {
	r.uploadsTotal.WithLabelValues(status).Inc()
}

// SetDatasetsActive sets the live dataset count.
func (r *Registry) SetDatasetsActive(count int) {
	r.datasetsActive.Set(float64(count))
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
