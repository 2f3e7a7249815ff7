package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shetautnetjer/alienfan/internal/actuators"
	"github.com/shetautnetjer/alienfan/internal/configuration"
	"github.com/shetautnetjer/alienfan/internal/policy"
	"github.com/shetautnetjer/alienfan/internal/safety"
	"github.com/shetautnetjer/alienfan/internal/sensors"
	"github.com/shetautnetjer/alienfan/internal/ui"
)

// Engine drives the control loop: it samples temperature sensors,
// computes demanded duty values under the active policy and submits them
// through the safety monitor. A single goroutine owns the tick; sensor
// reads and actuator writes within one tick are sequential so the
// per-tick view stays consistent.
type Engine struct {
	config  *configuration.Configuration
	monitor *safety.Monitor

	actuators []*actuators.FanActuator
	sensors   []sensors.Sensor

	state *State

	// pendingPolicy holds a policy switch requested from outside the
	// loop. It is adopted at the next tick boundary; an in-flight tick
	// always completes under the policy it started with.
	pendingPolicy atomic.Pointer[policySwitch]

	ticks atomic.Int64
}

type policySwitch struct {
	policy policy.ControlPolicy
}

func New(config *configuration.Configuration, monitor *safety.Monitor, actuatorList []*actuators.FanActuator, sensorList []sensors.Sensor) *Engine {
	return &Engine{
		config:    config,
		monitor:   monitor,
		actuators: actuatorList,
		sensors:   sensorList,
		state:     NewState(),
	}
}

func (e *Engine) State() *State {
	return e.state
}

func (e *Engine) Actuators() []*actuators.FanActuator {
	return e.actuators
}

func (e *Engine) Sensors() []sensors.Sensor {
	return e.sensors
}

func (e *Engine) Ticks() int64 {
	return e.ticks.Load()
}

// SetPolicy requests a policy switch. Passing nil returns the engine to
// idle. The switch takes effect at the next tick boundary.
func (e *Engine) SetPolicy(p policy.ControlPolicy) {
	e.pendingPolicy.Store(&policySwitch{policy: p})
	if p != nil {
		ui.Info("Policy switch requested: %s", p.Name())
	}
}

// Run drives the control loop until the context is canceled. On the way
// out, every actuator that was ever under read-write control receives one
// best-effort restore write, no matter how the loop ended.
func (e *Engine) Run(ctx context.Context) error {
	defer func() {
		// the loop context is already canceled here, shutdown gets its own
		restoreCtx, cancel := context.WithTimeout(context.Background(), e.restoreBudget())
		defer cancel()
		if err := e.monitor.RestoreAll(restoreCtx, e.actuators); err != nil {
			ui.Error("Shutdown restore sequence reported failures: %v", err)
		}
	}()

	ticker := time.NewTicker(e.config.Engine.TickRate)
	defer ticker.Stop()

	ui.Info("Engine started, tick rate %s", e.config.Engine.TickRate)
	for {
		select {
		case <-ctx.Done():
			ui.Info("Engine stopping...")
			return nil
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

// tick runs one control loop iteration.
func (e *Engine) tick(ctx context.Context) {
	e.ticks.Add(1)
	e.adoptPendingPolicy()

	activePolicy := e.state.Policy()
	if activePolicy == nil {
		return
	}

	tempMilli := e.ControllingTemperature()

	if stress, ok := activePolicy.(policy.Stress); ok && stress.ShouldExit(tempMilli) {
		ui.Info("Temperature %d.%03d° below stress exit threshold %d°, falling back to feedback",
			tempMilli/1000, tempMilli%1000, stress.ExitTemp)
		activePolicy = stress.Fallback
		e.state.setPolicy(activePolicy)
	}

	if _, ok := activePolicy.(policy.Restore); ok {
		_ = e.monitor.RestoreAll(ctx, e.actuators)
		e.state.setPolicy(nil)
		return
	}

	for _, actuator := range e.actuators {
		if actuator.Capability() != actuators.CapabilityReadWrite {
			continue
		}

		demanded, write := activePolicy.DemandedDuty(actuator.MinDuty(), actuator.MaxDuty(), tempMilli)
		if !write {
			continue
		}

		if err := e.monitor.Apply(ctx, actuator, demanded); err != nil {
			// errors are local to the actuator, the tick continues
			ui.Warning("Error applying duty %d to %s: %v", demanded, actuator.ID, err)
			e.state.recordError(actuator.ID, err)
			continue
		}
		e.state.recordApplied(actuator.ID, demanded)
	}
}

// ControllingTemperature samples every live sensor and returns the
// maximum reading in millidegrees. The worst-case thermal zone drives
// cooling.
func (e *Engine) ControllingTemperature() int {
	maxMilli := 0
	for _, sensor := range e.sensors {
		value, err := sensor.GetValue()
		if err != nil {
			ui.Warning("Error reading sensor %s: %v", sensor.GetId(), err)
			continue
		}
		sensor.RecordValue(float64(value))
		if value > maxMilli {
			maxMilli = value
		}
	}
	return maxMilli
}

// ApplyOnce submits a single duty value to a single actuator through the
// safety monitor, outside the regular tick. Used for transient manual
// overrides; backend serialization keeps it from interleaving with the
// loop on the same address.
func (e *Engine) ApplyOnce(ctx context.Context, actuatorID string, duty int) error {
	for _, actuator := range e.actuators {
		if actuator.ID != actuatorID {
			continue
		}
		if err := e.monitor.Apply(ctx, actuator, duty); err != nil {
			e.state.recordError(actuator.ID, err)
			return err
		}
		e.state.recordApplied(actuator.ID, duty)
		return nil
	}
	return ErrNoSuchActuator
}

// adoptPendingPolicy swaps in a requested policy switch at the tick
// boundary.
func (e *Engine) adoptPendingPolicy() {
	if pending := e.pendingPolicy.Swap(nil); pending != nil {
		e.state.setPolicy(pending.policy)
	}
}

// restoreBudget bounds the whole shutdown restore sequence: one op
// timeout per actuator plus slack. Shutdown must not hang.
func (e *Engine) restoreBudget() time.Duration {
	budget := time.Duration(len(e.actuators)+1) * e.config.Engine.OpTimeout
	if budget < time.Second {
		budget = time.Second
	}
	return budget
}
