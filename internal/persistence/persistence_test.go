package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shetautnetjer/alienfan/internal/actuators"
	"github.com/shetautnetjer/alienfan/internal/registry"
	"github.com/stretchr/testify/assert"
)

func createTestPersistence(t *testing.T) Persistence {
	p := NewPersistence(filepath.Join(t.TempDir(), "alienfan.db"))
	assert.NoError(t, p.Init())
	return p
}

func TestPolicyRecordRoundTrip(t *testing.T) {
	// GIVEN
	p := createTestPersistence(t)
	record := PolicyRecord{
		Name:       "feedback",
		TargetTemp: 80,
		MinDuty:    64,
		MaxDuty:    255,
		RampBand:   20,
		SavedAt:    time.Now(),
	}

	// WHEN
	assert.NoError(t, p.SaveLastPolicy(record))
	loaded, err := p.LoadLastPolicy()

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, record.Name, loaded.Name)
	assert.Equal(t, record.TargetTemp, loaded.TargetTemp)
	assert.Equal(t, record.MaxDuty, loaded.MaxDuty)
}

func TestLoadLastPolicyWithoutRecord(t *testing.T) {
	// GIVEN
	p := createTestPersistence(t)

	// WHEN
	_, err := p.LoadLastPolicy()

	// THEN
	assert.Error(t, err)
}

func TestSnapshotActuators(t *testing.T) {
	// GIVEN
	p := createTestPersistence(t)
	actuator := actuators.NewFanActuatorWithBackend(registry.Entry{
		ID:      "ec_gpu",
		Label:   "GPU Fan",
		Kind:    registry.KindRawPort,
		MaxDuty: 255,
	}, nil)
	actuator.SetCapability(actuators.CapabilityReadWrite)
	actuator.MarkVerified(200)

	// WHEN
	SnapshotActuators(p, []*actuators.FanActuator{actuator})
	record, err := p.LoadActuatorRecord("ec_gpu")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, "ReadWrite", record.Capability)
	assert.Equal(t, 200, record.LastDuty)
	assert.Equal(t, 0, record.VerifyFailures)
}

func TestActuatorRecordRoundTrip(t *testing.T) {
	// GIVEN
	p := createTestPersistence(t)
	record := ActuatorRecord{
		ID:             "ec_gpu",
		Capability:     "ReadOnly",
		LastDuty:       200,
		VerifyFailures: 3,
		SavedAt:        time.Now(),
	}

	// WHEN
	assert.NoError(t, p.SaveActuatorRecord(record))
	loaded, err := p.LoadActuatorRecord("ec_gpu")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, record.Capability, loaded.Capability)
	assert.Equal(t, record.LastDuty, loaded.LastDuty)
	assert.Equal(t, record.VerifyFailures, loaded.VerifyFailures)
}
