package pool

import (
	"github.com/prometheus/client_golang/prometheus"
)

// poolMetrics holds the pool's prometheus collectors. They are strictly
// observability: nothing in the pool's correctness depends on them being
// registered.
type poolMetrics struct {
	connectionsTotal  prometheus.Gauge
	connectionsActive prometheus.Gauge
	reapedTotal       prometheus.Counter
}

func newPoolMetrics(logger loggerLike) *poolMetrics {
	m := &poolMetrics{
		connectionsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dbpool_connections_total",
			Help: "Physical connections currently held by the pool.",
		}),
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dbpool_connections_active",
			Help: "Physical connections currently checked out by a client.",
		}),
		reapedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dbpool_reaped_total",
			Help: "Physical connections evicted by the reaper over the pool's lifetime.",
		}),
	}
	for _, c := range []prometheus.Collector{m.connectionsTotal, m.connectionsActive, m.reapedTotal} {
		if err := prometheus.Register(c); err != nil {
			logger.Warnf("dbpool: metric registration skipped: %v", err)
		}
	}
	return m
}

// loggerLike is the narrow slice of *zap.SugaredLogger this file needs,
// kept as an interface so metrics.go has no direct zap import beyond what
// pool.go already wires through.
type loggerLike interface {
	Warnf(template string, args ...interface{})
}
