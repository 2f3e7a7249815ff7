package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shetautnetjer/alienfan/internal/actuators"
	"github.com/shetautnetjer/alienfan/internal/discovery"
	"github.com/shetautnetjer/alienfan/internal/engine"
	"github.com/shetautnetjer/alienfan/internal/policy"
	"github.com/shetautnetjer/alienfan/internal/ui"
	"github.com/spf13/cobra"
)

var modeCmd = &cobra.Command{
	Use:   "mode <policy> [args]",
	Short: "Apply a control policy to all writable fans once",
	Long: fmt.Sprintf(`Applies the demanded duty of the given policy to every writable
actuator once, without starting the daemon loop.

Policies: restore, feedback [targetTemp [maxDuty]], stress [duty],
manual <duty>, or a preset: %s.`, strings.Join(policy.PresetNames(), ", ")),
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupUi()

		name := args[0]
		numericArgs, err := parseNumericArgs(args[1:])
		if err != nil {
			return err
		}

		ctx := context.Background()
		shot, err := setupOneshot(ctx)
		if err != nil {
			return err
		}

		duty := 0
		targetTemp := 0
		switch strings.ToLower(name) {
		case "feedback", "temp", "auto":
			if len(numericArgs) > 0 {
				targetTemp = numericArgs[0]
			}
			if len(numericArgs) > 1 {
				duty = numericArgs[1]
			}
		default:
			if len(numericArgs) > 0 {
				duty = numericArgs[0]
			}
		}

		selected, err := policy.Parse(name, duty, targetTemp, shot.config.Feedback, shot.config.Stress)
		if err != nil {
			return err
		}

		return applyPolicyOnce(ctx, shot, selected)
	},
}

func init() {
	rootCmd.AddCommand(modeCmd)
}

func parseNumericArgs(args []string) ([]int, error) {
	values := make([]int, 0, len(args))
	for _, arg := range args {
		value, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid numeric argument %q: %w", arg, err)
		}
		values = append(values, value)
	}
	return values, nil
}

// applyPolicyOnce performs a single policy application: restore routes
// through the restore sequence, everything else writes the demanded duty
// per writable actuator based on the current temperature.
func applyPolicyOnce(ctx context.Context, shot *oneshot, selected policy.ControlPolicy) error {
	if _, isRestore := selected.(policy.Restore); isRestore {
		err := shot.monitor.RestoreAll(ctx, shot.actuators)
		shot.snapshotActuators()
		return err
	}

	sensorList, err := discovery.InitSensors(shot.config)
	if err != nil {
		return err
	}

	tempMilli := 0
	for _, sensor := range sensorList {
		value, err := sensor.GetValue()
		if err != nil {
			continue
		}
		if value > tempMilli {
			tempMilli = value
		}
	}

	applied := 0
	var lastErr error
	for _, actuator := range shot.actuators {
		if actuator.Capability() != actuators.CapabilityReadWrite {
			continue
		}
		demanded, write := selected.DemandedDuty(actuator.MinDuty(), actuator.MaxDuty(), tempMilli)
		if !write {
			continue
		}
		if err := shot.monitor.Apply(ctx, actuator, demanded); err != nil {
			ui.Warning("Error applying duty %d to %s: %v", demanded, actuator.ID, err)
			lastErr = err
			continue
		}
		ui.Info("Applied duty %d to %s", demanded, actuator.ID)
		applied++
	}

	shot.snapshotActuators()

	if applied == 0 && lastErr != nil {
		return lastErr
	}
	if applied == 0 {
		return fmt.Errorf("no writable actuators: %w", engine.ErrNoSuchActuator)
	}
	return nil
}
