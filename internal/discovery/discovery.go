package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/shetautnetjer/alienfan/internal/actuators"
	"github.com/shetautnetjer/alienfan/internal/backend"
	"github.com/shetautnetjer/alienfan/internal/configuration"
	"github.com/shetautnetjer/alienfan/internal/registry"
	"github.com/shetautnetjer/alienfan/internal/sensors"
	"github.com/shetautnetjer/alienfan/internal/ui"
)

// Probe builds the live actuator set by testing every register map entry
// against its backend. It is re-runnable: actuators already known keep
// their instance (and audit history) and are only reclassified. The
// returned slice holds every probed actuator in register map order.
func Probe(ctx context.Context, registerMap *registry.Map, opTimeout time.Duration) ([]*actuators.FanActuator, error) {
	var result []*actuators.FanActuator

	for _, entry := range registerMap.Entries {
		actuator, exists := actuators.ActuatorMap.Get(entry.ID)
		if !exists {
			created, err := actuators.NewFanActuator(entry)
			if err != nil {
				return nil, err
			}
			actuator = created
			actuators.ActuatorMap.Set(entry.ID, actuator)
		}

		actuator.SetCapability(classify(ctx, registerMap, actuator, opTimeout))
		ui.Debug("Probed %s (%s): %s", actuator.ID, actuator.Backend(), actuator.Capability())

		result = append(result, actuator)
	}

	return result, nil
}

// classify performs the read probe and the no-op trial write for a single
// actuator.
func classify(ctx context.Context, registerMap *registry.Map, actuator *actuators.FanActuator, opTimeout time.Duration) actuators.Capability {
	entry := actuator.Entry

	readCtx, cancelRead := context.WithTimeout(ctx, opTimeout)
	defer cancelRead()

	current, err := actuator.GetDuty(readCtx)
	if err != nil {
		ui.Warning("Actuator %s (%s) not readable: %v", entry.ID, actuator.Backend(), err)
		return actuators.CapabilityUnavailable
	}

	if entry.SideEffectRisk && !registerMap.Allowed(entry.ID) {
		ui.Warning("Actuator %s (%s) is a side-effect risk and not allow-listed, excluding from control", entry.ID, actuator.Backend())
		return actuators.CapabilityUnavailable
	}

	// a no-op write of the current value determines writability without
	// perturbing the hardware
	writeCtx, cancelWrite := context.WithTimeout(ctx, opTimeout)
	defer cancelWrite()

	if err := actuator.SetDuty(writeCtx, current); err != nil {
		if errors.Is(backend.Classify(err), backend.ErrPermissionDenied) {
			ui.Warning("No permission to write actuator %s (%s)", entry.ID, actuator.Backend())
		}
		return actuators.CapabilityReadOnly
	}

	return actuators.CapabilityReadWrite
}

// InitSensors builds the live sensor set from the configuration. The
// engine takes the maximum across all of them each tick, so every
// configured zone contributes to the controlling temperature.
func InitSensors(config *configuration.Configuration) ([]sensors.Sensor, error) {
	var sensorList []sensors.Sensor

	sensorConfigs := config.Sensors
	if len(sensorConfigs) <= 0 {
		sensorConfigs = autodetectSensorConfigs()
	}

	for _, sensorConfig := range sensorConfigs {
		sensor, err := sensors.NewSensor(sensorConfig)
		if err != nil {
			return nil, err
		}

		value, err := sensor.GetValue()
		if err != nil {
			ui.Warning("Error reading sensor %s: %v", sensorConfig.ID, err)
		} else {
			sensor.RecordValue(float64(value))
		}

		sensors.SensorMap.Set(sensor.GetId(), sensor)
		sensorList = append(sensorList, sensor)
	}

	return sensorList, nil
}
