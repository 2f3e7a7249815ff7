package statistics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shetautnetjer/alienfan/internal/sensors"
)

const sensorSubsystem = "sensor"

type SensorCollector struct {
	sensors []sensors.Sensor

	temperature *prometheus.Desc
}

func NewSensorCollector(sensorList []sensors.Sensor) *SensorCollector {
	return &SensorCollector{
		sensors: sensorList,
		temperature: prometheus.NewDesc(prometheus.BuildFQName(namespace, sensorSubsystem, "temperature_millidegrees"),
			"Moving average temperature of the sensor in millidegrees celsius",
			[]string{"id"}, nil,
		),
	}
}

func (collector *SensorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.temperature
}

func (collector *SensorCollector) Collect(ch chan<- prometheus.Metric) {
	for _, sensor := range collector.sensors {
		ch <- prometheus.MustNewConstMetric(collector.temperature, prometheus.GaugeValue, sensor.GetMovingAvg(), sensor.GetId())
	}
}
