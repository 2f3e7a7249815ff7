package sensors

import (
	"sync"

	"github.com/asecurityteam/rolling"
	"github.com/shetautnetjer/alienfan/internal/util"
)

// HwmonSensor reads a hwmon tempN_input attribute. Values are reported by
// the kernel in millidegrees.
type HwmonSensor struct {
	ID    string
	Label string
	Input string

	mu     sync.Mutex
	window *rolling.PointPolicy
}

func (sensor *HwmonSensor) GetId() string {
	return sensor.ID
}

func (sensor *HwmonSensor) GetValue() (int, error) {
	return util.ReadIntFromFile(sensor.Input)
}

func (sensor *HwmonSensor) RecordValue(value float64) {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	sensor.window.Append(value)
}

func (sensor *HwmonSensor) GetMovingAvg() float64 {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	return sensor.window.Reduce(rolling.Avg)
}
