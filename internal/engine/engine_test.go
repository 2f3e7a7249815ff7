package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shetautnetjer/alienfan/internal/actuators"
	"github.com/shetautnetjer/alienfan/internal/configuration"
	"github.com/shetautnetjer/alienfan/internal/policy"
	"github.com/shetautnetjer/alienfan/internal/registry"
	"github.com/shetautnetjer/alienfan/internal/safety"
	"github.com/shetautnetjer/alienfan/internal/sensors"
	"github.com/stretchr/testify/assert"
)

func createEngineConfig() *configuration.Configuration {
	return &configuration.Configuration{
		Engine: configuration.EngineConfig{
			TickRate:          10 * time.Millisecond,
			OpTimeout:         100 * time.Millisecond,
			SettleDelay:       0,
			VerifyTolerance:   2,
			MaxVerifyFailures: 3,
			MaxTimeoutStreak:  5,
		},
		Feedback: configuration.FeedbackConfig{
			TargetTemp: 75,
			MinDuty:    64,
			MaxDuty:    255,
			RampBand:   20,
		},
		Stress: configuration.StressConfig{
			Duty:     240,
			ExitTemp: 70,
		},
	}
}

func createSysfsActuator(t *testing.T, id string) (*actuators.FanActuator, string, string) {
	dir := t.TempDir()
	pwmPath := filepath.Join(dir, "pwm1")
	assert.NoError(t, os.WriteFile(pwmPath, []byte("0"), 0644))
	enablePath := filepath.Join(dir, "pwm1_enable")
	assert.NoError(t, os.WriteFile(enablePath, []byte("1"), 0644))

	entry := registry.Entry{
		ID:         id,
		Label:      id,
		Kind:       registry.KindSysfsPwm,
		PwmPath:    pwmPath,
		EnablePath: enablePath,
		MinDuty:    0,
		MaxDuty:    255,
		Reversible: true,
	}
	actuator, err := actuators.NewFanActuator(entry)
	assert.NoError(t, err)
	actuator.SetCapability(actuators.CapabilityReadWrite)
	return actuator, pwmPath, enablePath
}

func createFileSensor(t *testing.T, id string, tempMilli string) sensors.Sensor {
	path := filepath.Join(t.TempDir(), "temp")
	assert.NoError(t, os.WriteFile(path, []byte(tempMilli), 0644))
	sensor, err := sensors.NewSensor(configuration.SensorConfig{
		ID:   id,
		File: &configuration.FileSensorConfig{Path: path},
	})
	assert.NoError(t, err)
	return sensor
}

func createTestEngine(t *testing.T, tempMilli string) (*Engine, string, string) {
	config := createEngineConfig()
	actuator, pwmPath, enablePath := createSysfsActuator(t, "fan")
	sensor := createFileSensor(t, "cpu", tempMilli)
	e := New(config, safety.NewMonitor(config.Engine),
		[]*actuators.FanActuator{actuator}, []sensors.Sensor{sensor})
	return e, pwmPath, enablePath
}

func readInt(t *testing.T, path string) string {
	content, err := os.ReadFile(path)
	assert.NoError(t, err)
	return string(content)
}

func TestTickIdleWritesNothing(t *testing.T) {
	// GIVEN
	e, pwmPath, _ := createTestEngine(t, "85000")

	// WHEN
	e.tick(context.Background())

	// THEN
	assert.Equal(t, ModeIdle, e.State().Mode())
	assert.Equal(t, "0", readInt(t, pwmPath))
}

func TestTickAppliesFeedbackPolicy(t *testing.T) {
	// GIVEN
	e, pwmPath, _ := createTestEngine(t, "85000")
	e.SetPolicy(policy.FeedbackFromConfig(e.config.Feedback))

	// WHEN
	e.tick(context.Background())

	// THEN
	assert.Equal(t, ModeRunning, e.State().Mode())
	assert.Equal(t, "128", readInt(t, pwmPath))
	assert.Equal(t, map[string]int{"fan": 128}, e.State().Applied())
}

func TestPolicySwitchTakesEffectAtTickBoundary(t *testing.T) {
	// GIVEN
	e, pwmPath, _ := createTestEngine(t, "85000")

	// WHEN
	e.SetPolicy(policy.ManualPreset{Duty: 200})

	// THEN
	assert.Equal(t, ModeIdle, e.State().Mode())

	// WHEN
	e.tick(context.Background())

	// THEN
	assert.Equal(t, ModeRunning, e.State().Mode())
	assert.Equal(t, "200", readInt(t, pwmPath))
}

func TestTickTakesManualControlOfSysfsFan(t *testing.T) {
	// GIVEN
	e, pwmPath, enablePath := createTestEngine(t, "85000")
	assert.NoError(t, os.WriteFile(enablePath, []byte("2"), 0644))
	e.SetPolicy(policy.ManualPreset{Duty: 200})

	// WHEN
	e.tick(context.Background())

	// THEN
	assert.Equal(t, "1", readInt(t, enablePath))
	assert.Equal(t, "200", readInt(t, pwmPath))
}

func TestStressDowngradesBelowExitTemp(t *testing.T) {
	// GIVEN
	e, pwmPath, _ := createTestEngine(t, "45000")
	e.SetPolicy(policy.StressFromConfig(e.config.Stress, e.config.Feedback))

	// WHEN
	e.tick(context.Background())

	// THEN
	assert.Equal(t, "feedback", e.State().PolicyName())
	assert.Equal(t, "64", readInt(t, pwmPath))
}

func TestStressStaysAboveExitTemp(t *testing.T) {
	// GIVEN
	e, pwmPath, _ := createTestEngine(t, "85000")
	e.SetPolicy(policy.StressFromConfig(e.config.Stress, e.config.Feedback))

	// WHEN
	e.tick(context.Background())

	// THEN
	assert.Equal(t, "stress", e.State().PolicyName())
	assert.Equal(t, "240", readInt(t, pwmPath))
}

func TestRestorePolicyHandsBackAndIdles(t *testing.T) {
	// GIVEN
	e, _, enablePath := createTestEngine(t, "85000")
	e.SetPolicy(policy.ManualPreset{Duty: 200})
	e.tick(context.Background())

	// WHEN
	e.SetPolicy(policy.Restore{})
	e.tick(context.Background())

	// THEN
	assert.Equal(t, ModeIdle, e.State().Mode())
	assert.Equal(t, "2", readInt(t, enablePath))
}

func TestRunRestoresOnShutdown(t *testing.T) {
	// GIVEN
	e, pwmPath, enablePath := createTestEngine(t, "85000")
	e.SetPolicy(policy.ManualPreset{Duty: 200})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- e.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		return readInt(t, pwmPath) == "200"
	}, time.Second, 5*time.Millisecond)

	// WHEN
	cancel()
	err := <-done

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, "2", readInt(t, enablePath))
}

func TestApplyOnce(t *testing.T) {
	// GIVEN
	e, pwmPath, _ := createTestEngine(t, "85000")

	// WHEN
	err := e.ApplyOnce(context.Background(), "fan", 100)
	unknownErr := e.ApplyOnce(context.Background(), "ghost", 100)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, "100", readInt(t, pwmPath))
	assert.ErrorIs(t, unknownErr, ErrNoSuchActuator)
}

func TestControllingTemperatureIsMaxAcrossSensors(t *testing.T) {
	// GIVEN
	config := createEngineConfig()
	actuator, _, _ := createSysfsActuator(t, "fan")
	cool := createFileSensor(t, "cool", "45000")
	hot := createFileSensor(t, "hot", "92000")
	e := New(config, safety.NewMonitor(config.Engine),
		[]*actuators.FanActuator{actuator}, []sensors.Sensor{cool, hot})

	// WHEN
	tempMilli := e.ControllingTemperature()

	// THEN
	assert.Equal(t, 92000, tempMilli)
}
