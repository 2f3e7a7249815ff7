package statistics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shetautnetjer/alienfan/internal/actuators"
)

const actuatorSubsystem = "actuator"

type ActuatorCollector struct {
	actuators []*actuators.FanActuator

	duty           *prometheus.Desc
	rpm            *prometheus.Desc
	capability     *prometheus.Desc
	verifyFailures *prometheus.Desc
}

func NewActuatorCollector(actuatorList []*actuators.FanActuator) *ActuatorCollector {
	return &ActuatorCollector{
		actuators: actuatorList,
		duty: prometheus.NewDesc(prometheus.BuildFQName(namespace, actuatorSubsystem, "duty"),
			"Last applied duty value of the actuator",
			[]string{"id"}, nil,
		),
		rpm: prometheus.NewDesc(prometheus.BuildFQName(namespace, actuatorSubsystem, "rpm"),
			"Last observed rotational speed of the actuator",
			[]string{"id"}, nil,
		),
		capability: prometheus.NewDesc(prometheus.BuildFQName(namespace, actuatorSubsystem, "capability"),
			"Capability of the actuator (0 unavailable, 1 read-only, 2 read-write)",
			[]string{"id"}, nil,
		),
		verifyFailures: prometheus.NewDesc(prometheus.BuildFQName(namespace, actuatorSubsystem, "verify_failures"),
			"Consecutive verification failures of the actuator",
			[]string{"id"}, nil,
		),
	}
}

func (collector *ActuatorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.duty
	ch <- collector.rpm
	ch <- collector.capability
	ch <- collector.verifyFailures
}

// Collect reports the cached per-actuator state; it never touches
// hardware, so scrapes cannot interleave with the control loop.
func (collector *ActuatorCollector) Collect(ch chan<- prometheus.Metric) {
	for _, actuator := range collector.actuators {
		id := actuator.GetId()
		ch <- prometheus.MustNewConstMetric(collector.duty, prometheus.GaugeValue, float64(actuator.LastDuty()), id)
		ch <- prometheus.MustNewConstMetric(collector.rpm, prometheus.GaugeValue, float64(actuator.LastRpm()), id)
		ch <- prometheus.MustNewConstMetric(collector.capability, prometheus.GaugeValue, float64(actuator.Capability()), id)
		ch <- prometheus.MustNewConstMetric(collector.verifyFailures, prometheus.GaugeValue, float64(actuator.VerifyFailures()), id)
	}
}
