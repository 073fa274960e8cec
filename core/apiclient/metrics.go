package apiclient

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metric names.
const (
	MetricRequestsTotal = "catalog_sync_backend_requests_total"
	MetricRetriesTotal  = "catalog_sync_backend_retries_total"
)

// Metrics counts outbound requests and retries per backend.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	retries  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRequestsTotal,
			Help: "Outbound backend requests by backend, method and status code.",
		}, []string{"backend", "method", "code"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRetriesTotal,
			Help: "Retried backend requests by backend.",
		}, []string{"backend"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.retries} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeRequest(backend, method string, status int) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(backend, method, code).Inc()
}

func (m *Metrics) observeRetry(backend string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(backend).Inc()
}
