package policy

import (
	"math"

	"github.com/shetautnetjer/alienfan/internal/configuration"
	"github.com/shetautnetjer/alienfan/internal/util"
)

// ControlPolicy computes the demanded duty value per writable actuator
// for one control loop tick. Policies are immutable values; switching
// policies is the engine's job and happens atomically at tick boundaries.
type ControlPolicy interface {
	Name() string

	// DemandedDuty returns the duty demanded for an actuator with the
	// given safe range, based on the controlling temperature in
	// millidegrees. The second return value is false when no write should
	// be issued at all (firmware handoff).
	DemandedDuty(minDuty int, maxDuty int, tempMilli int) (int, bool)
}

// ManualPreset pins every actuator to a fixed duty value.
type ManualPreset struct {
	Duty int
}

func (p ManualPreset) Name() string {
	return "manual"
}

func (p ManualPreset) DemandedDuty(minDuty int, maxDuty int, tempMilli int) (int, bool) {
	return p.Duty, true
}

// TemperatureFeedback ramps duty linearly over a fixed band above the
// target temperature: at or below target the demanded duty is MinDuty,
// above it the duty rises by MaxDuty/RampBand per degree, saturating at
// MaxDuty once the temperature exceeds target by the full band.
type TemperatureFeedback struct {
	// TargetTemp in degrees celsius
	TargetTemp int
	MinDuty    int
	MaxDuty    int
	// RampBand in degrees; matches observed thermal dynamics, tunable
	RampBand int
}

func (p TemperatureFeedback) Name() string {
	return "feedback"
}

func (p TemperatureFeedback) DemandedDuty(minDuty int, maxDuty int, tempMilli int) (int, bool) {
	targetMilli := p.TargetTemp * 1000
	if tempMilli <= targetMilli {
		return util.CoerceInt(p.MinDuty, minDuty, maxDuty), true
	}

	overshoot := float64(tempMilli-targetMilli) / 1000.0
	demanded := int(math.Round(float64(p.MaxDuty) * overshoot / float64(p.RampBand)))
	demanded = util.CoerceInt(demanded, p.MinDuty, p.MaxDuty)
	return util.CoerceInt(demanded, minDuty, maxDuty), true
}

// Stress pins every actuator near maximum to generate thermal load
// headroom. The engine watches the controlling temperature and downgrades
// to the fallback feedback policy once it drops below ExitTemp.
type Stress struct {
	Duty int
	// ExitTemp in degrees celsius
	ExitTemp int
	Fallback TemperatureFeedback
}

func (p Stress) Name() string {
	return "stress"
}

func (p Stress) DemandedDuty(minDuty int, maxDuty int, tempMilli int) (int, bool) {
	return util.CoerceInt(p.Duty, minDuty, maxDuty), true
}

// ShouldExit reports whether the controlling temperature has fallen below
// the configured exit threshold.
func (p Stress) ShouldExit(tempMilli int) bool {
	return tempMilli < p.ExitTemp*1000
}

// Restore hands every actuator back to firmware control. The write itself
// is backend-specific and carried out by the actuator's Restore, not by a
// duty value from this policy.
type Restore struct{}

func (p Restore) Name() string {
	return "restore"
}

func (p Restore) DemandedDuty(minDuty int, maxDuty int, tempMilli int) (int, bool) {
	return 0, false
}

// FeedbackFromConfig builds the temperature feedback policy from the
// configured defaults.
func FeedbackFromConfig(config configuration.FeedbackConfig) TemperatureFeedback {
	return TemperatureFeedback{
		TargetTemp: config.TargetTemp,
		MinDuty:    config.MinDuty,
		MaxDuty:    config.MaxDuty,
		RampBand:   config.RampBand,
	}
}

// StressFromConfig builds the stress policy from the configured defaults.
func StressFromConfig(stress configuration.StressConfig, feedback configuration.FeedbackConfig) Stress {
	return Stress{
		Duty:     stress.Duty,
		ExitTemp: stress.ExitTemp,
		Fallback: FeedbackFromConfig(feedback),
	}
}
