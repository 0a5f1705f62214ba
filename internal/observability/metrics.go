package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orchestrator"

// Metrics owns a private registry. All methods are safe on a nil receiver so
// components can run without metrics in tests.
type Metrics struct {
	registry *prometheus.Registry

	runs           *prometheus.CounterVec
	runLatency     *prometheus.HistogramVec
	gatewayCalls   *prometheus.CounterVec
	gatewayLatency *prometheus.HistogramVec
	auditWrites    *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Orchestration runs by policy, answer mode and grounding outcome.",
		}, []string{"policy", "answer_mode", "grounded"}),
		runLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "End-to-end orchestration latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"policy"}),
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_calls_total",
			Help:      "Upstream gateway calls by gateway and outcome.",
		}, []string{"gateway", "outcome"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_duration_seconds",
			Help:      "Upstream gateway latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"gateway"}),
		auditWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_writes_total",
			Help:      "Audit sink writes by sink and outcome.",
		}, []string{"sink", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.runs, m.runLatency,
		m.gatewayCalls, m.gatewayLatency,
		m.auditWrites,
		m.httpRequests, m.httpLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRun(policy, answerMode string, grounded bool, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(policy, answerMode, strconv.FormatBool(grounded)).Inc()
	m.runLatency.WithLabelValues(policy).Observe(d.Seconds())
}

func (m *Metrics) ObserveGateway(gateway string, failed bool, d time.Duration) {
	if m == nil {
		return
	}
	m.gatewayCalls.WithLabelValues(gateway, outcome(failed)).Inc()
	m.gatewayLatency.WithLabelValues(gateway).Observe(d.Seconds())
}

func (m *Metrics) ObserveAudit(sink string, err error) {
	if m == nil {
		return
	}
	m.auditWrites.WithLabelValues(sink, outcome(err != nil)).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func outcome(failed bool) string {
	if failed {
		return "error"
	}
	return "ok"
}
