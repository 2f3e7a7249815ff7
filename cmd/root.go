package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/shetautnetjer/alienfan/cmd/global"
	"github.com/shetautnetjer/alienfan/internal"
	"github.com/shetautnetjer/alienfan/internal/backend"
	"github.com/shetautnetjer/alienfan/internal/configuration"
	"github.com/shetautnetjer/alienfan/internal/ui"
	"github.com/spf13/cobra"
)

// Exit codes of the command surface. Non-zero codes distinguish
// permission problems from missing actuators/backends so callers can
// react without parsing output.
const (
	ExitCodeGenericFailure   = 1
	ExitCodeUnavailable      = 3
	ExitCodePermissionDenied = 4
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "alienfan",
	Short: "A daemon for direct fan control on Alienware laptops.",
	Long: `alienfan takes user-space control of the cooling fans the embedded
controller normally owns, applies a temperature-driven policy to them and
hands control back to the firmware on exit.`,
	// this is the default command to run when no subcommand is specified
	Run: func(cmd *cobra.Command, args []string) {
		setupUi()
		printHeader()

		configPath := configuration.DetectAndReadConfigFile()
		if len(configPath) > 0 {
			ui.Info("Using configuration file at: %s", configPath)
		}
		configuration.LoadConfig()
		if err := configuration.Validate(); err != nil {
			ui.Error("Config validation error: %s", err.Error())
			os.Exit(ExitCodeGenericFailure)
		}

		internal.RunDaemon()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&global.CfgFile, "config", "c", "", "config file (default is $HOME/alienfan.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&global.NoColor, "no-color", "", false, "Disable all terminal output coloration")
	rootCmd.PersistentFlags().BoolVarP(&global.NoStyle, "no-style", "", false, "Disable all terminal output styling")
	rootCmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "More verbose output")
}

func setupUi() {
	ui.SetDebugEnabled(global.Verbose)

	if global.NoColor {
		pterm.DisableColor()
	}
	if global.NoStyle {
		pterm.DisableStyling()
	}
}

// Print a large text with the LetterStyle from the standard theme.
func printHeader() {
	err := pterm.DefaultBigText.WithLetters(
		pterm.NewLettersFromStringWithStyle("alien", pterm.NewStyle(pterm.FgLightGreen)),
		pterm.NewLettersFromStringWithStyle("fan", pterm.NewStyle(pterm.FgWhite)),
	).Render()
	if err != nil {
		fmt.Println("alienfan")
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.OnInitialize(func() {
		configuration.InitConfig(global.CfgFile)
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps the backend error taxonomy onto process exit codes.
func exitCodeFor(err error) int {
	classified := backend.Classify(err)
	switch {
	case errors.Is(classified, backend.ErrPermissionDenied):
		return ExitCodePermissionDenied
	case errors.Is(classified, backend.ErrUnavailable):
		return ExitCodeUnavailable
	}
	return ExitCodeGenericFailure
}
