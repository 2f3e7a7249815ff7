package sensors

import (
	"os/user"
	"path/filepath"
	"strings"
	"sync"

	"github.com/asecurityteam/rolling"
	"github.com/shetautnetjer/alienfan/internal/util"
)

// FileSensor reads a plain file containing a temperature in millidegrees.
// Useful for piping in values from external tooling during testing.
type FileSensor struct {
	ID   string
	Path string

	mu     sync.Mutex
	window *rolling.PointPolicy
}

func (sensor *FileSensor) GetId() string {
	return sensor.ID
}

func (sensor *FileSensor) GetValue() (int, error) {
	filePath := sensor.Path
	// resolve home dir path
	if strings.HasPrefix(filePath, "~") {
		currentUser, err := user.Current()
		if err != nil {
			return 0, err
		}

		filePath = filepath.Join(currentUser.HomeDir, filePath[1:])
	}

	return util.ReadIntFromFile(filePath)
}

func (sensor *FileSensor) RecordValue(value float64) {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	sensor.window.Append(value)
}

func (sensor *FileSensor) GetMovingAvg() float64 {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	return sensor.window.Reduce(rolling.Avg)
}
