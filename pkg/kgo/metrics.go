package kgo

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the ambient observability surface for the routing core,
// grounded in kirilldd2-franz-go's plugin/kprom: a small set of
// gauges/counters updated by ApplyMetadata and the periodic scanner,
// registered into whatever prometheus.Registerer the
// application already uses.
type Metrics struct {
	TopicsTracked      prometheus.Gauge
	PartitionsTracked  prometheus.Gauge
	DesiredPartitions  prometheus.Gauge
	MessagesTimedOut   prometheus.Counter
	MetadataApplies    prometheus.Counter
	LeaderUnknownTotal prometheus.Counter
}

// NewMetrics builds and registers a Metrics set under the given
// namespace/subsystem. Registration errors (e.g. double-registration
// in tests) are ignored the way kprom itself tolerates re-registration
// via its own Registerer option.
func NewMetrics(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	m := &Metrics{
		TopicsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "topics_tracked", Help: "Number of topics currently in the registry.",
		}),
		PartitionsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "partitions_tracked", Help: "Sum of known partitions across all tracked topics.",
		}),
		DesiredPartitions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "desired_partitions", Help: "Sum of desired-but-unconfirmed partitions across all topics.",
		}),
		MessagesTimedOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "messages_timed_out_total", Help: "Messages aged out of a partition queue by the periodic scanner.",
		}),
		MetadataApplies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "metadata_applies_total", Help: "Number of ApplyMetadata calls processed.",
		}),
		LeaderUnknownTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "leader_unknown_total", Help: "Number of times a metadata apply left a partition's leader unknown.",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.TopicsTracked, m.PartitionsTracked, m.DesiredPartitions,
		m.MessagesTimedOut, m.MetadataApplies, m.LeaderUnknownTotal,
	} {
		if reg != nil {
			_ = reg.Register(c) // ignore AlreadyRegisteredError, mirrors kprom
		}
	}
	return m
}
