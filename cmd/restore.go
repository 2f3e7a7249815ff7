package cmd

import (
	"context"

	"github.com/shetautnetjer/alienfan/internal/actuators"
	"github.com/shetautnetjer/alienfan/internal/ui"
	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Hand fan control back to the firmware",
	Long: `Performs one best-effort restore write to every mapped actuator,
returning fan management to the embedded controller.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupUi()

		ctx := context.Background()
		shot, err := setupOneshot(ctx)
		if err != nil {
			return err
		}

		// a standalone restore covers everything writable, not just what
		// this process wrote; risk-gated and unreachable actuators are
		// never touched
		for _, actuator := range shot.actuators {
			if actuator.Capability() == actuators.CapabilityUnavailable {
				continue
			}
			restoreCtx, cancel := context.WithTimeout(ctx, shot.config.Engine.OpTimeout)
			err := actuator.Restore(restoreCtx)
			cancel()
			if err != nil {
				ui.Warning("Failed to restore %s: %v", actuator.ID, err)
				continue
			}
			ui.Info("Restored %s to firmware control", actuator.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
