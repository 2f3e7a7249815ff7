package cmd

import (
	"context"
	"strconv"

	"github.com/mgutz/ansi"
	"github.com/shetautnetjer/alienfan/cmd/global"
	"github.com/shetautnetjer/alienfan/internal/discovery"
	"github.com/shetautnetjer/alienfan/internal/ui"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var detectScan bool

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Probe all configured fan registers and report their capabilities",
	Long: `Probes every register in the register map with a read and a no-op
trial write and reports the resulting capability of each actuator.
With --scan it additionally sweeps the EC address windows with
single-byte reads and lists every readable, non-zero register.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupUi()

		ctx := context.Background()
		shot, err := setupOneshot(ctx)
		if err != nil {
			return err
		}

		tableConfig := &table.Config{
			ShowIndex:       false,
			Color:           !global.NoColor,
			AlternateColors: true,
			TitleColorCode:  ansi.ColorCode("white+buf"),
			AltColorCodes: []string{
				ansi.ColorCode("white"),
				ansi.ColorCode("white:236"),
			},
		}

		var rows [][]string
		for _, actuator := range shot.actuators {
			risk := "no"
			if actuator.Entry.SideEffectRisk {
				risk = "yes"
			}
			rows = append(rows, []string{
				actuator.ID,
				actuator.Label,
				string(actuator.Entry.Kind),
				actuator.Backend().String(),
				risk,
				actuator.Capability().String(),
			})
		}

		actuatorTable := table.Table{
			Headers: []string{"Id", "Label", "Kind", "Backend", "Side Effect Risk", "Capability"},
			Rows:    rows,
		}
		if err := actuatorTable.WriteTable(cmd.OutOrStdout(), tableConfig); err != nil {
			return err
		}

		if !detectScan {
			return nil
		}

		ui.Printfln("")
		ui.Info("Scanning EC address windows, this may take a while...")
		results, err := discovery.ScanRegisters(ctx, shot.config.PortFile, shot.config.Engine.OpTimeout)
		if err != nil {
			return err
		}
		if len(results) <= 0 {
			ui.Warning("No readable non-zero registers found")
			return nil
		}

		var scanRows [][]string
		for _, result := range results {
			scanRows = append(scanRows, []string{
				result.Address.String(),
				strconv.Itoa(result.Value),
			})
		}
		scanTable := table.Table{
			Headers: []string{"Address", "Value"},
			Rows:    scanRows,
		}
		return scanTable.WriteTable(cmd.OutOrStdout(), tableConfig)
	},
}

func init() {
	detectCmd.Flags().BoolVar(&detectScan, "scan", false, "sweep the EC address windows for readable registers")
	rootCmd.AddCommand(detectCmd)
}
