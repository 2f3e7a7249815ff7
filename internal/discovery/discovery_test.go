package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shetautnetjer/alienfan/internal/actuators"
	"github.com/shetautnetjer/alienfan/internal/configuration"
	"github.com/shetautnetjer/alienfan/internal/registry"
	"github.com/stretchr/testify/assert"
)

const probeTimeout = 100 * time.Millisecond

func createPwmFile(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "pwm1")
	assert.NoError(t, os.WriteFile(path, []byte("128"), 0644))
	return path
}

func createPortFile(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "port")
	content := make([]byte, 256)
	content[0x24] = 128
	content[0x38] = 64
	assert.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func createRegisterMap(t *testing.T, entries []registry.Entry, allowList []string) *registry.Map {
	registerMap, err := registry.New(entries, allowList)
	assert.NoError(t, err)
	return registerMap
}

func TestProbeClassifiesWritableActuator(t *testing.T) {
	// GIVEN
	registerMap := createRegisterMap(t, []registry.Entry{
		{
			ID:      "probe_writable",
			Kind:    registry.KindSysfsPwm,
			PwmPath: createPwmFile(t),
			MaxDuty: 255,
		},
	}, nil)

	// WHEN
	probed, err := Probe(context.Background(), registerMap, probeTimeout)

	// THEN
	assert.NoError(t, err)
	assert.Len(t, probed, 1)
	assert.Equal(t, actuators.CapabilityReadWrite, probed[0].Capability())
}

func TestProbeClassifiesMissingActuatorAsUnavailable(t *testing.T) {
	// GIVEN
	registerMap := createRegisterMap(t, []registry.Entry{
		{
			ID:      "probe_missing",
			Kind:    registry.KindSysfsPwm,
			PwmPath: filepath.Join(t.TempDir(), "pwm1"),
			MaxDuty: 255,
		},
	}, nil)

	// WHEN
	probed, err := Probe(context.Background(), registerMap, probeTimeout)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, actuators.CapabilityUnavailable, probed[0].Capability())
}

func TestProbeGatesSideEffectRiskBehindAllowList(t *testing.T) {
	// GIVEN
	portFile := createPortFile(t)
	entries := []registry.Entry{
		{
			ID:             "probe_risky",
			Kind:           registry.KindRawPort,
			Address:        0x38,
			PortFile:       portFile,
			MaxDuty:        255,
			SideEffectRisk: true,
		},
	}

	// WHEN
	gated, err := Probe(context.Background(), createRegisterMap(t, entries, nil), probeTimeout)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, actuators.CapabilityUnavailable, gated[0].Capability())
	assert.False(t, gated[0].EverWritable())

	// WHEN
	allowed, err := Probe(context.Background(), createRegisterMap(t, entries, []string{"probe_risky"}), probeTimeout)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, actuators.CapabilityReadWrite, allowed[0].Capability())
}

func TestProbeReusesActuatorInstances(t *testing.T) {
	// GIVEN
	pwmPath := createPwmFile(t)
	registerMap := createRegisterMap(t, []registry.Entry{
		{
			ID:      "probe_reused",
			Kind:    registry.KindSysfsPwm,
			PwmPath: pwmPath,
			MaxDuty: 255,
		},
	}, nil)

	first, err := Probe(context.Background(), registerMap, probeTimeout)
	assert.NoError(t, err)
	assert.Equal(t, actuators.CapabilityReadWrite, first[0].Capability())

	// WHEN
	assert.NoError(t, os.Remove(pwmPath))
	second, err := Probe(context.Background(), registerMap, probeTimeout)

	// THEN
	assert.NoError(t, err)
	assert.Same(t, first[0], second[0])
	assert.Equal(t, actuators.CapabilityUnavailable, second[0].Capability())
	// audit history survives reclassification
	assert.True(t, second[0].EverWritable())
}

func TestScanRegistersFindsNonZeroValues(t *testing.T) {
	// GIVEN
	portFile := createPortFile(t)

	// WHEN
	results, err := ScanRegisters(context.Background(), portFile, probeTimeout)

	// THEN
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, 128, results[0].Value)
	assert.Equal(t, 64, results[1].Value)
}

func TestAutodetectSensorConfigs(t *testing.T) {
	// GIVEN
	base := t.TempDir()
	devicePath := filepath.Join(base, "hwmon0")
	assert.NoError(t, os.MkdirAll(devicePath, 0755))
	assert.NoError(t, os.WriteFile(filepath.Join(devicePath, "name"), []byte("coretemp\n"), 0644))
	assert.NoError(t, os.WriteFile(filepath.Join(devicePath, "temp1_input"), []byte("45000"), 0644))
	assert.NoError(t, os.WriteFile(filepath.Join(devicePath, "temp1_label"), []byte("Package id 0"), 0644))

	previous := HwmonBasePath
	HwmonBasePath = base
	defer func() { HwmonBasePath = previous }()

	// WHEN
	configs := autodetectSensorConfigs()

	// THEN
	assert.Len(t, configs, 1)
	assert.Equal(t, "coretemp_temp1", configs[0].ID)
	assert.Equal(t, filepath.Join(devicePath, "temp1_input"), configs[0].HwMon.TempInput)
}

func TestInitSensorsFromConfig(t *testing.T) {
	// GIVEN
	input := filepath.Join(t.TempDir(), "temp1_input")
	assert.NoError(t, os.WriteFile(input, []byte("85000"), 0644))

	config := &configuration.Configuration{
		TempRollingWindowSize: 10,
		Sensors: []configuration.SensorConfig{
			{ID: "cpu", HwMon: &configuration.HwMonSensorConfig{TempInput: input}},
		},
	}

	// WHEN
	sensorList, err := InitSensors(config)

	// THEN
	assert.NoError(t, err)
	assert.Len(t, sensorList, 1)
	assert.InDelta(t, 85000, sensorList[0].GetMovingAvg(), 0.1)
}
