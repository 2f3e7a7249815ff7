package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shetautnetjer/alienfan/internal/configuration"
)

// HwmonBasePath is where the kernel exposes hwmon devices.
var HwmonBasePath = "/sys/class/hwmon"

var tempInputRegex = regexp.MustCompile(`^temp\d+_input$`)

// autodetectSensorConfigs walks the hwmon tree and builds a sensor config
// for every tempN_input attribute found. Used when no sensors are
// configured explicitly.
func autodetectSensorConfigs() []configuration.SensorConfig {
	var configs []configuration.SensorConfig

	deviceDirs, err := os.ReadDir(HwmonBasePath)
	if err != nil {
		return nil
	}

	for _, deviceDir := range deviceDirs {
		devicePath := filepath.Join(HwmonBasePath, deviceDir.Name())
		deviceName := readDeviceName(devicePath)

		entries, err := os.ReadDir(devicePath)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !tempInputRegex.MatchString(entry.Name()) {
				continue
			}
			index := strings.TrimSuffix(strings.TrimPrefix(entry.Name(), "temp"), "_input")
			configs = append(configs, configuration.SensorConfig{
				ID: fmt.Sprintf("%s_temp%s", deviceName, index),
				HwMon: &configuration.HwMonSensorConfig{
					TempInput: filepath.Join(devicePath, entry.Name()),
				},
			})
		}
	}

	return configs
}

// readDeviceName reads the hwmon device name attribute, falling back to
// the directory name.
func readDeviceName(devicePath string) string {
	content, err := os.ReadFile(filepath.Join(devicePath, "name"))
	if err != nil || len(strings.TrimSpace(string(content))) <= 0 {
		return filepath.Base(devicePath)
	}
	return strings.TrimSpace(string(content))
}
