package registry

import (
	"fmt"
	"strings"

	"github.com/shetautnetjer/alienfan/internal/backend"
	"github.com/shetautnetjer/alienfan/internal/configuration"
)

// Load builds the full register map: the built-in EC table plus every
// configured actuator entry. A configured entry with the same id as a
// built-in one replaces it, so operators can narrow safe ranges or declare
// reversibility observations for known registers.
func Load(config *configuration.Configuration) (*Map, error) {
	byID := map[string]int{}
	var entries []Entry

	for _, entry := range BuiltIn() {
		if len(config.PortFile) > 0 {
			entry.PortFile = config.PortFile
		}
		byID[entry.ID] = len(entries)
		entries = append(entries, entry)
	}

	for _, actuatorConfig := range config.Actuators {
		entry, err := entryFromConfig(actuatorConfig, config.PortFile)
		if err != nil {
			return nil, err
		}
		if index, exists := byID[entry.ID]; exists {
			entries[index] = entry
		} else {
			byID[entry.ID] = len(entries)
			entries = append(entries, entry)
		}
	}

	return New(entries, config.AllowRiskyRegisters)
}

func entryFromConfig(config configuration.ActuatorConfig, portFile string) (Entry, error) {
	entry := Entry{
		ID:      config.ID,
		Label:   config.Label,
		MinDuty: config.MinDuty,
		MaxDuty: config.MaxDuty,
	}
	if len(entry.Label) <= 0 {
		entry.Label = config.ID
	}
	// an unset range means the full 8-bit duty range
	if entry.MinDuty == 0 && entry.MaxDuty == 0 {
		entry.MaxDuty = backend.MaxDutyValue
	}

	switch {
	case config.SysfsPwm != nil:
		entry.Kind = KindSysfsPwm
		entry.PwmPath = config.SysfsPwm.PwmPath
		entry.EnablePath = config.SysfsPwm.EnablePath
		if len(entry.EnablePath) <= 0 {
			entry.EnablePath = guessEnablePath(entry.PwmPath)
		}
		entry.RpmInput = config.SysfsPwm.RpmInput
		// attribute writes only touch the declared file
		entry.Reversible = true
	case config.RawPort != nil:
		address, err := ParsePortAddress(config.RawPort.Address)
		if err != nil {
			return Entry{}, fmt.Errorf("actuator %s: %w", config.ID, err)
		}
		entry.Kind = KindRawPort
		entry.Address = address
		entry.PortFile = portFile
		entry.Reversible = config.RawPort.Reversible
		entry.SideEffectRisk = !config.RawPort.Reversible
	default:
		return Entry{}, fmt.Errorf("actuator %s has no backend", config.ID)
	}

	return entry, nil
}

// guessEnablePath derives the pwmN_enable attribute path from a pwmN
// attribute path, e.g. /sys/class/hwmon/hwmon4/pwm1 -> .../pwm1_enable.
func guessEnablePath(pwmPath string) string {
	if len(pwmPath) <= 0 || strings.HasSuffix(pwmPath, "_enable") {
		return ""
	}
	return pwmPath + "_enable"
}
