package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shetautnetjer/alienfan/internal/engine"
	"github.com/shetautnetjer/alienfan/internal/ui"
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <actuator-id> <duty>",
	Short: "Set a single fan to the given duty value ([0..255])",
	Long: `Applies a one-shot manual duty value to a single actuator through the
safety monitor: the value is range-checked, written and verified.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupUi()

		actuatorID := args[0]
		duty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid duty value %q: %w", args[1], err)
		}

		ctx := context.Background()
		shot, err := setupOneshot(ctx)
		if err != nil {
			return err
		}

		actuator := shot.findActuator(actuatorID)
		if actuator == nil {
			return fmt.Errorf("%s: %w", actuatorID, engine.ErrNoSuchActuator)
		}

		if err := shot.monitor.Apply(ctx, actuator, duty); err != nil {
			return err
		}
		shot.snapshotActuators()

		ui.Info("Set %s to duty %d (verified)", actuator.ID, duty)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
}
