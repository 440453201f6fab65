package sparql

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// clientMetrics holds Prometheus metrics for query execution.
type clientMetrics struct {
	queries  *prometheus.CounterVec
	attempts prometheus.Counter
	duration *prometheus.HistogramVec
}

// newClientMetrics creates and registers client metrics with the provided registerer.
func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skoslens",
			Subsystem: "sparql",
			Name:      "queries_total",
			Help:      "Total queries executed, by outcome",
		}, []string{"status", "code"}),
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skoslens",
			Subsystem: "sparql",
			Name:      "attempts_total",
			Help:      "Total HTTP attempts including retries",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "skoslens",
			Subsystem: "sparql",
			Name:      "query_duration_seconds",
			Help:      "End-to-end query duration including retries",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"status"}),
	}

	for _, c := range []prometheus.Collector{m.queries, m.attempts, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *clientMetrics) recordAttempt() {
	if m == nil {
		return
	}
	m.attempts.Inc()
}

func (m *clientMetrics) recordQuery(code string, elapsed time.Duration, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	m.queries.WithLabelValues(status, code).Inc()
	m.duration.WithLabelValues(status).Observe(elapsed.Seconds())
}
