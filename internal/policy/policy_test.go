package policy

import (
	"testing"

	"github.com/shetautnetjer/alienfan/internal/configuration"
	"github.com/stretchr/testify/assert"
)

func createFeedbackPolicy(targetTemp int, minDuty int, maxDuty int) TemperatureFeedback {
	return TemperatureFeedback{
		TargetTemp: targetTemp,
		MinDuty:    minDuty,
		MaxDuty:    maxDuty,
		RampBand:   20,
	}
}

func TestFeedbackColdStart(t *testing.T) {
	// GIVEN
	policy := createFeedbackPolicy(75, 64, 255)

	// WHEN
	duty, write := policy.DemandedDuty(0, 255, 45000)

	// THEN
	assert.True(t, write)
	assert.Equal(t, 64, duty)
}

func TestFeedbackHotRamp(t *testing.T) {
	// GIVEN
	policy := createFeedbackPolicy(75, 64, 255)

	// WHEN
	duty, write := policy.DemandedDuty(0, 255, 85000)

	// THEN
	assert.True(t, write)
	assert.Equal(t, 128, duty)
}

func TestFeedbackSaturation(t *testing.T) {
	// GIVEN
	policy := createFeedbackPolicy(75, 64, 255)

	// WHEN
	duty, write := policy.DemandedDuty(0, 255, 120000)

	// THEN
	assert.True(t, write)
	assert.Equal(t, 255, duty)
}

func TestFeedbackAtTarget(t *testing.T) {
	// GIVEN
	policy := createFeedbackPolicy(75, 64, 255)

	// WHEN
	duty, write := policy.DemandedDuty(0, 255, 75000)

	// THEN
	assert.True(t, write)
	assert.Equal(t, 64, duty)
}

func TestFeedbackMonotonic(t *testing.T) {
	// GIVEN
	policy := createFeedbackPolicy(75, 64, 255)

	// WHEN
	lastDuty := 0
	for tempMilli := 40000; tempMilli <= 120000; tempMilli += 500 {
		duty, write := policy.DemandedDuty(0, 255, tempMilli)

		// THEN
		assert.True(t, write)
		assert.GreaterOrEqual(t, duty, lastDuty)
		lastDuty = duty
	}
}

func TestFeedbackRespectsActuatorRange(t *testing.T) {
	// GIVEN
	policy := createFeedbackPolicy(75, 64, 255)

	// WHEN
	duty, write := policy.DemandedDuty(0, 200, 120000)

	// THEN
	assert.True(t, write)
	assert.Equal(t, 200, duty)
}

func TestManualPreset(t *testing.T) {
	// GIVEN
	policy := ManualPreset{Duty: 192}

	// WHEN
	duty, write := policy.DemandedDuty(0, 255, 85000)

	// THEN
	assert.True(t, write)
	assert.Equal(t, 192, duty)
}

func TestStressExitThreshold(t *testing.T) {
	// GIVEN
	policy := Stress{Duty: 240, ExitTemp: 70}

	// WHEN
	exitHot := policy.ShouldExit(85000)
	exitCool := policy.ShouldExit(69000)

	// THEN
	assert.False(t, exitHot)
	assert.True(t, exitCool)
}

func TestRestoreDemandsNoWrite(t *testing.T) {
	// GIVEN
	policy := Restore{}

	// WHEN
	_, write := policy.DemandedDuty(0, 255, 85000)

	// THEN
	assert.False(t, write)
}

func TestParseKnownPolicies(t *testing.T) {
	// GIVEN
	feedback := configuration.FeedbackConfig{TargetTemp: 80, MinDuty: 64, MaxDuty: 255, RampBand: 20}
	stress := configuration.StressConfig{Duty: 240, ExitTemp: 70}

	// WHEN
	restorePolicy, restoreErr := Parse("restore", 0, 0, feedback, stress)
	feedbackPolicy, feedbackErr := Parse("feedback", 0, 90, feedback, stress)
	manualPolicy, manualErr := Parse("manual", 100, 0, feedback, stress)
	presetPolicy, presetErr := Parse("silent", 0, 0, feedback, stress)

	// THEN
	assert.NoError(t, restoreErr)
	assert.Equal(t, "restore", restorePolicy.Name())

	assert.NoError(t, feedbackErr)
	assert.Equal(t, 90, feedbackPolicy.(TemperatureFeedback).TargetTemp)

	assert.NoError(t, manualErr)
	assert.Equal(t, 100, manualPolicy.(ManualPreset).Duty)

	assert.NoError(t, presetErr)
	assert.Equal(t, 32, presetPolicy.(ManualPreset).Duty)
}

func TestParseManualRequiresDuty(t *testing.T) {
	// GIVEN
	feedback := configuration.FeedbackConfig{TargetTemp: 80, MinDuty: 64, MaxDuty: 255, RampBand: 20}
	stress := configuration.StressConfig{Duty: 240, ExitTemp: 70}

	// WHEN
	_, err := Parse("manual", 0, 0, feedback, stress)

	// THEN
	assert.Error(t, err)
}

func TestParseUnknownPolicy(t *testing.T) {
	// GIVEN
	feedback := configuration.FeedbackConfig{TargetTemp: 80, MinDuty: 64, MaxDuty: 255, RampBand: 20}
	stress := configuration.StressConfig{Duty: 240, ExitTemp: 70}

	// WHEN
	_, err := Parse("turbo", 0, 0, feedback, stress)

	// THEN
	assert.Error(t, err)
}
