package cmd

import (
	"context"

	"github.com/shetautnetjer/alienfan/internal/actuators"
	"github.com/shetautnetjer/alienfan/internal/configuration"
	"github.com/shetautnetjer/alienfan/internal/discovery"
	"github.com/shetautnetjer/alienfan/internal/persistence"
	"github.com/shetautnetjer/alienfan/internal/registry"
	"github.com/shetautnetjer/alienfan/internal/safety"
	"github.com/shetautnetjer/alienfan/internal/ui"
)

// oneshot bundles everything a daemon-less command needs: the loaded
// register map, the probed actuator set and a safety monitor.
type oneshot struct {
	config      *configuration.Configuration
	registerMap *registry.Map
	actuators   []*actuators.FanActuator
	monitor     *safety.Monitor
}

// setupOneshot loads and validates the configuration and probes the
// hardware, without starting a control loop.
func setupOneshot(ctx context.Context) (*oneshot, error) {
	configuration.DetectAndReadConfigFile()
	configuration.LoadConfig()
	if err := configuration.Validate(); err != nil {
		return nil, err
	}

	config := &configuration.CurrentConfig

	registerMap, err := registry.Load(config)
	if err != nil {
		return nil, err
	}

	actuatorList, err := discovery.Probe(ctx, registerMap, config.Engine.OpTimeout)
	if err != nil {
		return nil, err
	}

	return &oneshot{
		config:      config,
		registerMap: registerMap,
		actuators:   actuatorList,
		monitor:     safety.NewMonitor(config.Engine),
	}, nil
}

// snapshotActuators records an audit snapshot of every probed actuator,
// so the daemon (and later one-shots) can see what this run did.
func (o *oneshot) snapshotActuators() {
	pers := persistence.NewPersistence(o.config.DbPath)
	if err := pers.Init(); err != nil {
		ui.Debug("Unable to initialize persistence: %v", err)
		return
	}
	persistence.SnapshotActuators(pers, o.actuators)
}

// findActuator returns the probed actuator with the given id, or nil.
func (o *oneshot) findActuator(id string) *actuators.FanActuator {
	for _, actuator := range o.actuators {
		if actuator.ID == id {
			return actuator
		}
	}
	return nil
}
