package server

import "github.com/prometheus/client_golang/prometheus"

// metrics is the Prometheus counter/gauge set for one server instance,
// grounded on the teacher's own `prometheus.NewCounterVec` +
// `prometheus.MustRegister` style in api/grpc/middleware, generalizing
// its atomic-counter Stats()/GetStats() snapshot into a real scrapeable
// registry rather than a periodic print loop.
type metrics struct {
	queriesTotal prometheus.Counter
	answersTotal *prometheus.CounterVec
	zonesLoaded  prometheus.Gauge
}

// newMetrics builds the counter/gauge set and, if reg is non-nil,
// registers them on it. reg is nil in tests that only exercise the
// handler logic and never serve a /metrics endpoint.
func newMetrics(reg *prometheus.Registry) *metrics {
	m := &metrics{
		queriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nsd_queries_total",
			Help: "Total DNS queries received, UDP and TCP combined.",
		}),
		answersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nsd_answers_total",
			Help: "Total DNS responses sent, labeled by response code.",
		}, []string{"rcode"}),
		zonesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nsd_zones_loaded",
			Help: "Number of zones currently loaded in the authority.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.queriesTotal, m.answersTotal, m.zonesLoaded)
	}
	return m
}
