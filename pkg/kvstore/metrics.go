package kvstore

import (
	"github.com/prometheus/client_golang/prometheus"
)

// storeMetrics holds Prometheus metrics for store operations.
type storeMetrics struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	sets    prometheus.Counter
	deletes prometheus.Counter
	size    prometheus.Gauge
}

// newStoreMetrics creates and registers store metrics with the provided registerer.
func newStoreMetrics(reg prometheus.Registerer, prefix string) (*storeMetrics, error) {
	m := &storeMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "skoslens",
			Subsystem:   "kvstore",
			Name:        "hits_total",
			ConstLabels: prometheus.Labels{"store": prefix},
			Help:        "Total number of store hits",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "skoslens",
			Subsystem:   "kvstore",
			Name:        "misses_total",
			ConstLabels: prometheus.Labels{"store": prefix},
			Help:        "Total number of store misses",
		}),
		sets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "skoslens",
			Subsystem:   "kvstore",
			Name:        "sets_total",
			ConstLabels: prometheus.Labels{"store": prefix},
			Help:        "Total number of store set operations",
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "skoslens",
			Subsystem:   "kvstore",
			Name:        "deletes_total",
			ConstLabels: prometheus.Labels{"store": prefix},
			Help:        "Total number of store delete operations",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "skoslens",
			Subsystem:   "kvstore",
			Name:        "size",
			ConstLabels: prometheus.Labels{"store": prefix},
			Help:        "Current number of entries in the store",
		}),
	}

	for _, c := range []prometheus.Collector{m.hits, m.misses, m.sets, m.deletes, m.size} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *storeMetrics) recordHit()  { m.hits.Inc() }
func (m *storeMetrics) recordMiss() { m.misses.Inc() }
func (m *storeMetrics) recordSet()  { m.sets.Inc() }

func (m *storeMetrics) recordDelete() { m.deletes.Inc() }

func (m *storeMetrics) updateSize(size int) { m.size.Set(float64(size)) }
