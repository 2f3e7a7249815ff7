package statistics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shetautnetjer/alienfan/internal/engine"
)

const engineSubsystem = "engine"

type EngineCollector struct {
	engine *engine.Engine

	ticks  *prometheus.Desc
	policy *prometheus.Desc
}

func NewEngineCollector(e *engine.Engine) *EngineCollector {
	return &EngineCollector{
		engine: e,
		ticks: prometheus.NewDesc(prometheus.BuildFQName(namespace, engineSubsystem, "ticks_total"),
			"Number of control loop ticks since startup",
			nil, nil,
		),
		policy: prometheus.NewDesc(prometheus.BuildFQName(namespace, engineSubsystem, "policy"),
			"Currently active control policy",
			[]string{"name"}, nil,
		),
	}
}

func (collector *EngineCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.ticks
	ch <- collector.policy
}

func (collector *EngineCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(collector.ticks, prometheus.CounterValue, float64(collector.engine.Ticks()))
	ch <- prometheus.MustNewConstMetric(collector.policy, prometheus.GaugeValue, 1, collector.engine.State().PolicyName())
}
