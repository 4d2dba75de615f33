package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/getmockd/provider/pkg/states"
)

// State setup results.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultUnknown = "unknown"
)

// UnknownStateLabel replaces the state label for names with no hook.
const UnknownStateLabel = "<unknown>"

// DefaultBuckets are request latency buckets in seconds.
var DefaultBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Provider bundles the metrics a provider server records.
type Provider struct {
	Registry         *prometheus.Registry
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	StateSetupsTotal *prometheus.CounterVec
}

// NewProvider creates a registry with the provider metrics. fixtureItems is
// read at scrape time; it may be nil.
func NewProvider(fixtureItems func() float64) *Provider {
	p := &Provider{
		Registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "provider",
				Name:      "requests_total",
				Help:      "Total number of requests served.",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "provider",
				Name:      "request_duration_seconds",
				Help:      "Duration of requests in seconds.",
				Buckets:   DefaultBuckets,
			},
			[]string{"method", "route"},
		),
		StateSetupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "provider",
				Name:      "state_setups_total",
				Help:      "Provider state hook runs by outcome.",
			},
			[]string{"state", "result"},
		),
	}
	p.Registry.MustRegister(p.RequestsTotal, p.RequestDuration, p.StateSetupsTotal)
	if fixtureItems != nil {
		p.Registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "provider",
				Name:      "fixture_items",
				Help:      "Animals held, or the configured count.",
			},
			fixtureItems,
		))
	}
	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{})
}

// ObserveState records one state setup. It matches states.Observer.
func (p *Provider) ObserveState(name string, err error) {
	result := ResultOK
	switch {
	case errors.Is(err, states.ErrUnknownState):
		result = ResultUnknown
		name = UnknownStateLabel
	case err != nil:
		result = ResultError
	}
	p.StateSetupsTotal.WithLabelValues(name, result).Inc()
}

// Middleware records request counts and durations for next. Routes are
// labelled by the ServeMux pattern that matched, so the label set stays
// bounded; unmatched requests share one label.
func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := routeLabel(r.Pattern)
		p.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		p.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// routeLabel drops the method from a pattern such as "GET /provider.json".
func routeLabel(pattern string) string {
	if pattern == "" {
		return "unmatched"
	}
	if _, path, ok := strings.Cut(pattern, " "); ok {
		return path
	}
	return pattern
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
