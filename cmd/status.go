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

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current state of all fans and sensors",
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

		var actuatorRows [][]string
		for _, actuator := range shot.actuators {
			dutyText := "N/A"
			readCtx, cancel := context.WithTimeout(ctx, shot.config.Engine.OpTimeout)
			duty, err := actuator.GetDuty(readCtx)
			cancel()
			if err == nil {
				dutyText = strconv.Itoa(duty)
			}

			rpmText := "N/A"
			readCtx, cancel = context.WithTimeout(ctx, shot.config.Engine.OpTimeout)
			rpm, err := actuator.GetRpm(readCtx)
			cancel()
			if err == nil {
				rpmText = strconv.Itoa(rpm)
			}

			actuatorRows = append(actuatorRows, []string{
				actuator.ID, actuator.Label, actuator.Backend().String(),
				actuator.Capability().String(), dutyText, rpmText,
				strconv.Itoa(actuator.VerifyFailures()),
			})
		}

		actuatorTable := table.Table{
			Headers: []string{"Id", "Label", "Backend", "Capability", "Duty", "RPM", "Verify Failures"},
			Rows:    actuatorRows,
		}
		if err := actuatorTable.WriteTable(cmd.OutOrStdout(), tableConfig); err != nil {
			return err
		}

		sensorList, err := discovery.InitSensors(shot.config)
		if err != nil {
			return err
		}

		var sensorRows [][]string
		for _, sensor := range sensorList {
			tempText := "N/A"
			value, err := sensor.GetValue()
			if err == nil {
				tempText = strconv.FormatFloat(float64(value)/1000, 'f', 1, 64) + "°"
			}
			sensorRows = append(sensorRows, []string{sensor.GetId(), tempText})
		}

		ui.Printfln("")
		sensorTable := table.Table{
			Headers: []string{"Sensor", "Temperature"},
			Rows:    sensorRows,
		}
		return sensorTable.WriteTable(cmd.OutOrStdout(), tableConfig)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
