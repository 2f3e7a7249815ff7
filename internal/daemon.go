package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shetautnetjer/alienfan/internal/actuators"
	"github.com/shetautnetjer/alienfan/internal/api"
	"github.com/shetautnetjer/alienfan/internal/configuration"
	"github.com/shetautnetjer/alienfan/internal/discovery"
	"github.com/shetautnetjer/alienfan/internal/engine"
	"github.com/shetautnetjer/alienfan/internal/persistence"
	"github.com/shetautnetjer/alienfan/internal/policy"
	"github.com/shetautnetjer/alienfan/internal/registry"
	"github.com/shetautnetjer/alienfan/internal/safety"
	"github.com/shetautnetjer/alienfan/internal/statistics"
	"github.com/shetautnetjer/alienfan/internal/ui"
)

func RunDaemon() {
	if os.Geteuid() != 0 {
		ui.Fatal("Fan control requires root permissions to access the EC and hwmon attributes, please run alienfan as root")
	}

	config := &configuration.CurrentConfig

	pers := persistence.NewPersistence(config.DbPath)
	if err := pers.Init(); err != nil {
		ui.Fatal("Unable to initialize persistence: %v", err)
	}

	fanEngine, err := initializeEngine(config)
	if err != nil {
		ui.Fatal("%v", err)
	}
	persistence.SnapshotActuators(pers, fanEngine.Actuators())

	if config.ResumeLastPolicy {
		resumeLastPolicy(pers, fanEngine, config)
	}

	ctx, cancel := context.WithCancel(context.Background())

	var g run.Group
	{
		// === control loop
		g.Add(func() error {
			err := fanEngine.Run(ctx)
			ui.Info("Engine stopped.")
			return err
		}, func(err error) {
			if err != nil {
				ui.Warning("Error running engine: %v", err)
			}
			cancel()
		})
	}
	{
		if config.Statistics.Enabled {
			// === Prometheus Exporter
			addr := fmt.Sprintf(":%d", config.Statistics.Port)
			server := &http.Server{Addr: addr, Handler: promhttp.Handler()}

			g.Add(func() error {
				ui.Info("Starting statistics endpoint on %s/metrics", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					ui.Error("Cannot start prometheus metrics endpoint (%s)", err.Error())
					return err
				}
				return nil
			}, func(err error) {
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				_ = server.Shutdown(timeoutCtx)
				ui.Info("Statistics server stopped.")
			})
		}
	}
	{
		if config.Api.Enabled {
			// === REST api
			restService := api.CreateRestService(fanEngine)
			addr := fmt.Sprintf("%s:%d", config.Api.Host, config.Api.Port)

			g.Add(func() error {
				ui.Info("Starting api endpoint on %s", addr)
				if err := restService.Start(addr); err != nil && err != http.ErrServerClosed {
					ui.Error("Cannot start rest api endpoint (%s)", err.Error())
					return err
				}
				return nil
			}, func(err error) {
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				_ = restService.Shutdown(timeoutCtx)
				ui.Info("Api server stopped.")
			})
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			<-sig
			ui.Info("Received termination signal, restoring firmware control and exiting...")
			return nil
		}, func(err error) {
			defer close(sig)
			cancel()
		})
	}

	runErr := g.Run()

	saveLastPolicy(pers, fanEngine)
	persistence.SnapshotActuators(pers, fanEngine.Actuators())

	if runErr != nil {
		_, _ = fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
	ui.Info("Done.")
}

// initializeEngine loads the register map, probes the hardware and wires
// the engine together with its collectors.
func initializeEngine(config *configuration.Configuration) (*engine.Engine, error) {
	registerMap, err := registry.Load(config)
	if err != nil {
		return nil, fmt.Errorf("unable to load register map: %w", err)
	}

	ctx := context.Background()
	actuatorList, err := discovery.Probe(ctx, registerMap, config.Engine.OpTimeout)
	if err != nil {
		return nil, fmt.Errorf("device discovery failed: %w", err)
	}

	usable := 0
	for _, actuator := range actuatorList {
		ui.Info("Actuator %s (%s, %s): %s", actuator.ID, actuator.Label, actuator.Backend(), actuator.Capability())
		if actuator.Capability() != actuators.CapabilityUnavailable {
			usable++
		}
	}
	if usable == 0 {
		return nil, fmt.Errorf("no usable actuators discovered, nothing to control")
	}

	sensorList, err := discovery.InitSensors(config)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize sensors: %w", err)
	}
	for _, sensor := range sensorList {
		ui.Info("Sensor %s: %.1f°", sensor.GetId(), sensor.GetMovingAvg()/1000)
	}

	monitor := safety.NewMonitor(config.Engine)
	fanEngine := engine.New(config, monitor, actuatorList, sensorList)

	statistics.Register(statistics.NewActuatorCollector(actuatorList))
	statistics.Register(statistics.NewSensorCollector(sensorList))
	statistics.Register(statistics.NewEngineCollector(fanEngine))

	return fanEngine, nil
}

func resumeLastPolicy(pers persistence.Persistence, fanEngine *engine.Engine, config *configuration.Configuration) {
	record, err := pers.LoadLastPolicy()
	if err != nil {
		ui.Debug("No persisted policy to resume: %v", err)
		return
	}
	if record.Name == string(engine.ModeIdle) || len(record.Name) <= 0 {
		return
	}

	resumed, err := policyFromRecord(record, config)
	if err != nil {
		ui.Warning("Persisted policy %q is not resumable: %v", record.Name, err)
		return
	}

	ui.Info("Resuming last policy: %s", resumed.Name())
	fanEngine.SetPolicy(resumed)
}

// policyFromRecord rebuilds the persisted policy. Recorded parameters win
// over the configured defaults, so a customized feedback range or stress
// duty survives a restart intact.
func policyFromRecord(record persistence.PolicyRecord, config *configuration.Configuration) (policy.ControlPolicy, error) {
	switch record.Name {
	case "feedback":
		selected := policy.FeedbackFromConfig(config.Feedback)
		if record.TargetTemp > 0 {
			selected.TargetTemp = record.TargetTemp
		}
		if record.MinDuty > 0 {
			selected.MinDuty = record.MinDuty
		}
		if record.MaxDuty > 0 {
			selected.MaxDuty = record.MaxDuty
		}
		if record.RampBand > 0 {
			selected.RampBand = record.RampBand
		}
		return selected, nil
	case "stress":
		selected := policy.StressFromConfig(config.Stress, config.Feedback)
		if record.Duty > 0 {
			selected.Duty = record.Duty
		}
		if record.ExitTemp > 0 {
			selected.ExitTemp = record.ExitTemp
		}
		return selected, nil
	}
	return policy.Parse(record.Name, record.Duty, record.TargetTemp, config.Feedback, config.Stress)
}

// saveLastPolicy records the policy that was active when the daemon shut
// down, so the next run can resume it when configured to.
func saveLastPolicy(pers persistence.Persistence, fanEngine *engine.Engine) {
	record := persistence.PolicyRecord{
		Name:    fanEngine.State().PolicyName(),
		SavedAt: time.Now(),
	}
	switch active := fanEngine.State().Policy().(type) {
	case policy.ManualPreset:
		record.Name = "manual"
		record.Duty = active.Duty
	case policy.TemperatureFeedback:
		record.TargetTemp = active.TargetTemp
		record.MinDuty = active.MinDuty
		record.MaxDuty = active.MaxDuty
		record.RampBand = active.RampBand
	case policy.Stress:
		record.Duty = active.Duty
		record.ExitTemp = active.ExitTemp
	}

	if err := pers.SaveLastPolicy(record); err != nil {
		ui.Debug("Unable to persist policy record: %v", err)
	}
}
