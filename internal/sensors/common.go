package sensors

import (
	"fmt"

	"github.com/asecurityteam/rolling"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/shetautnetjer/alienfan/internal/configuration"
)

const DefaultRollingWindowSize = 10

// SensorMap is the live set of temperature sensors built by discovery.
var SensorMap = cmap.New[Sensor]()

type Sensor interface {
	GetId() string

	// GetValue returns the current temperature in millidegrees celsius.
	// The engine keeps temperatures in scaled integer form so safety
	// comparisons never depend on float rounding.
	GetValue() (int, error)

	// RecordValue appends a sample to the sensor's rolling window.
	RecordValue(value float64)

	// GetMovingAvg returns the moving average over the rolling window.
	GetMovingAvg() float64
}

func NewSensor(config configuration.SensorConfig) (Sensor, error) {
	windowSize := configuration.CurrentConfig.TempRollingWindowSize
	if windowSize <= 0 {
		windowSize = DefaultRollingWindowSize
	}
	window := rolling.NewPointPolicy(rolling.NewWindow(windowSize))

	if config.HwMon != nil {
		return &HwmonSensor{
			ID:     config.ID,
			Input:  config.HwMon.TempInput,
			window: window,
		}, nil
	}

	if config.File != nil {
		return &FileSensor{
			ID:     config.ID,
			Path:   config.File.Path,
			window: window,
		}, nil
	}

	return nil, fmt.Errorf("no matching sensor type for sensor: %s", config.ID)
}
