package configuration

type ActuatorConfig struct {
	ID    string `json:"id"`
	Label string `json:"label"`

	// MinDuty and MaxDuty declare the safe duty range for this actuator.
	MinDuty int `json:"minDuty"`
	MaxDuty int `json:"maxDuty"`

	SysfsPwm *SysfsPwmActuatorConfig `json:"sysfsPwm,omitempty"`
	RawPort  *RawPortActuatorConfig  `json:"rawPort,omitempty"`
}

type SysfsPwmActuatorConfig struct {
	// PwmPath of the pwmN attribute, e.g. /sys/class/hwmon/hwmon4/pwm1
	PwmPath string `json:"pwmPath"`
	// EnablePath of the pwmN_enable attribute, autodetected from PwmPath
	// when empty
	EnablePath string `json:"enablePath"`
	// RpmInput path of the matching fanN_input attribute
	RpmInput string `json:"rpmInput"`
}

type RawPortActuatorConfig struct {
	// Address of the duty register as a hex string, e.g. "0x24"
	Address string `json:"address"`
	// Reversible declares that restoring a previous value was observed to
	// return the register to its prior state. Non-reversible registers are
	// side-effect risks and require an allow-list entry.
	Reversible bool `json:"reversible"`
}
