package persistence

import (
	"time"

	"github.com/shetautnetjer/alienfan/internal/actuators"
	"github.com/shetautnetjer/alienfan/internal/ui"
)

// SnapshotActuators persists an audit record for every actuator, so the
// next run can see what capability and duty the previous one left behind.
// Failures are logged, not propagated; audit records never block control.
func SnapshotActuators(p Persistence, actuatorList []*actuators.FanActuator) {
	for _, actuator := range actuatorList {
		record := ActuatorRecord{
			ID:             actuator.ID,
			Capability:     actuator.Capability().String(),
			LastDuty:       actuator.LastDuty(),
			VerifyFailures: actuator.VerifyFailures(),
			SavedAt:        time.Now(),
		}
		if err := p.SaveActuatorRecord(record); err != nil {
			ui.Debug("Unable to persist actuator record for %s: %v", actuator.ID, err)
		}
	}
}
