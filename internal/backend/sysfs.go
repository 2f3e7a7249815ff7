package backend

import (
	"context"
	"fmt"

	"github.com/shetautnetjer/alienfan/internal/util"
)

// Control modes of the hwmon pwmN_enable attribute.
// 0 - no control (results in max speed)
// 1 - manual pwm control
// 2 - firmware/motherboard pwm control
const (
	ControlModeDisabled  = 0
	ControlModePWM       = 1
	ControlModeAutomatic = 2
)

// SysfsPwm reads and writes an 8-bit duty value through a hwmon pwmN
// attribute file. Values cross the interface in decimal string form.
type SysfsPwm struct {
	// Path of the pwmN attribute
	Path string
	// EnablePath of the pwmN_enable attribute, empty if the device
	// does not expose one
	EnablePath string
	// RpmInput path of the matching fanN_input attribute, empty if the
	// device does not expose one
	RpmInput string
}

func (s *SysfsPwm) Read(ctx context.Context) (int, error) {
	return serializedCall(ctx, s.Path, func() (int, error) {
		return util.ReadIntFromFile(s.Path)
	})
}

func (s *SysfsPwm) Write(ctx context.Context, duty int) error {
	if duty < MinDutyValue || duty > MaxDutyValue {
		return fmt.Errorf("%s: duty %d: %w", s.Path, duty, ErrOutOfRange)
	}
	_, err := serializedCall(ctx, s.Path, func() (int, error) {
		return 0, util.WriteIntToFile(duty, s.Path)
	})
	return err
}

// Restore hands the fan back to firmware control by writing the automatic
// control mode to the enable attribute. Devices without an enable
// attribute are left alone; there is nothing to hand back through.
func (s *SysfsPwm) Restore(ctx context.Context) error {
	if len(s.EnablePath) <= 0 {
		return nil
	}
	_, err := serializedCall(ctx, s.Path, func() (int, error) {
		return 0, util.WriteIntToFile(ControlModeAutomatic, s.EnablePath)
	})
	return err
}

// EnableManual switches the fan to manual pwm control, which some drivers
// require before pwmN writes take effect.
func (s *SysfsPwm) EnableManual(ctx context.Context) error {
	if len(s.EnablePath) <= 0 {
		return nil
	}
	_, err := serializedCall(ctx, s.Path, func() (int, error) {
		return 0, util.WriteIntToFile(ControlModePWM, s.EnablePath)
	})
	return err
}

// ReadRpm returns the current rotational speed, if the device exposes one.
func (s *SysfsPwm) ReadRpm(ctx context.Context) (int, error) {
	if len(s.RpmInput) <= 0 {
		return 0, fmt.Errorf("%s: no rpm input: %w", s.Path, ErrUnavailable)
	}
	return serializedCall(ctx, s.RpmInput, func() (int, error) {
		return util.ReadIntFromFile(s.RpmInput)
	})
}

func (s *SysfsPwm) String() string {
	return s.Path
}
