package configuration

type SensorConfig struct {
	ID string `json:"id"`

	HwMon *HwMonSensorConfig `json:"hwmon,omitempty"`
	File  *FileSensorConfig  `json:"file,omitempty"`
}

type HwMonSensorConfig struct {
	// TempInput path of the tempN_input attribute, value in millidegrees
	TempInput string `json:"tempInput"`
}

type FileSensorConfig struct {
	// Path of a file containing a temperature in millidegrees
	Path string `json:"path"`
}
