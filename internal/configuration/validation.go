package configuration

import (
	"errors"
	"fmt"
)

// Validate checks the current configuration for contradictions before any
// hardware is touched.
func Validate() error {
	config := &CurrentConfig

	if config.Engine.TickRate <= 0 {
		return errors.New("engine.tickRate must be > 0")
	}
	if config.Engine.OpTimeout <= 0 {
		return errors.New("engine.opTimeout must be > 0")
	}
	if config.Engine.VerifyTolerance < 0 {
		return errors.New("engine.verifyTolerance must be >= 0")
	}
	if config.Engine.MaxVerifyFailures <= 0 {
		return errors.New("engine.maxVerifyFailures must be > 0")
	}

	if err := validateDutyRange(config.Feedback.MinDuty, config.Feedback.MaxDuty, "feedback"); err != nil {
		return err
	}
	if config.Feedback.RampBand <= 0 {
		return errors.New("feedback.rampBand must be > 0")
	}
	if config.Stress.Duty < 0 || config.Stress.Duty > 255 {
		return errors.New("stress.duty must be within [0, 255]")
	}

	ids := map[string]bool{}
	for _, actuator := range config.Actuators {
		if len(actuator.ID) <= 0 {
			return errors.New("actuator is missing an id")
		}
		if ids[actuator.ID] {
			return fmt.Errorf("duplicate actuator id: %s", actuator.ID)
		}
		ids[actuator.ID] = true

		if err := validateActuatorConfig(actuator); err != nil {
			return err
		}
	}

	sensorIds := map[string]bool{}
	for _, sensor := range config.Sensors {
		if len(sensor.ID) <= 0 {
			return errors.New("sensor is missing an id")
		}
		if sensorIds[sensor.ID] {
			return fmt.Errorf("duplicate sensor id: %s", sensor.ID)
		}
		sensorIds[sensor.ID] = true

		if sensor.HwMon == nil && sensor.File == nil {
			return fmt.Errorf("sensor %s has no backend", sensor.ID)
		}
		if sensor.HwMon != nil && sensor.File != nil {
			return fmt.Errorf("sensor %s has more than one backend", sensor.ID)
		}
	}

	return nil
}

func validateActuatorConfig(actuator ActuatorConfig) error {
	if actuator.SysfsPwm == nil && actuator.RawPort == nil {
		return fmt.Errorf("actuator %s has no backend", actuator.ID)
	}
	if actuator.SysfsPwm != nil && actuator.RawPort != nil {
		return fmt.Errorf("actuator %s has more than one backend", actuator.ID)
	}
	if actuator.SysfsPwm != nil && len(actuator.SysfsPwm.PwmPath) <= 0 {
		return fmt.Errorf("actuator %s is missing a pwm path", actuator.ID)
	}
	if actuator.RawPort != nil && len(actuator.RawPort.Address) <= 0 {
		return fmt.Errorf("actuator %s is missing a port address", actuator.ID)
	}
	return validateDutyRange(actuator.MinDuty, actuator.MaxDuty, actuator.ID)
}

func validateDutyRange(min int, max int, subject string) error {
	if min < 0 || min > 255 {
		return fmt.Errorf("%s: minDuty must be within [0, 255]", subject)
	}
	if max < 0 || max > 255 {
		return fmt.Errorf("%s: maxDuty must be within [0, 255]", subject)
	}
	if min > max {
		return fmt.Errorf("%s: minDuty must be <= maxDuty", subject)
	}
	return nil
}
