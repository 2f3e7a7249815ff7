package configuration

import (
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/shetautnetjer/alienfan/internal/ui"
	"github.com/spf13/viper"
)

type Configuration struct {
	DbPath string `json:"dbPath"`

	// PortFile is the raw port device used by rawport actuators.
	PortFile string `json:"portFile"`

	TempRollingWindowSize int `json:"tempRollingWindowSize"`

	// ResumeLastPolicy restores the last persisted control policy on
	// startup. The record is a convenience, not authoritative: discovery
	// always re-verifies actual hardware state first.
	ResumeLastPolicy bool `json:"resumeLastPolicy"`

	// AllowRiskyRegisters lists actuator ids whose raw port address is
	// flagged as a side-effect risk but has been manually verified by the
	// operator. Absent an entry here, such actuators are never written.
	AllowRiskyRegisters []string `json:"allowRiskyRegisters"`

	Engine     EngineConfig     `json:"engine"`
	Feedback   FeedbackConfig   `json:"feedback"`
	Stress     StressConfig     `json:"stress"`
	Actuators  []ActuatorConfig `json:"actuators"`
	Sensors    []SensorConfig   `json:"sensors"`
	Statistics StatisticsConfig `json:"statistics"`
	Api        ApiConfig        `json:"api"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("alienfan")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/alienfan/")
	}

	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("DbPath", "/etc/alienfan/alienfan.db")
	viper.SetDefault("PortFile", "/dev/port")
	viper.SetDefault("TempRollingWindowSize", 10)
	viper.SetDefault("ResumeLastPolicy", false)
	viper.SetDefault("AllowRiskyRegisters", []string{})

	viper.SetDefault("Engine.TickRate", 5*time.Second)
	viper.SetDefault("Engine.OpTimeout", 500*time.Millisecond)
	viper.SetDefault("Engine.SettleDelay", 50*time.Millisecond)
	viper.SetDefault("Engine.VerifyTolerance", 2)
	viper.SetDefault("Engine.MaxVerifyFailures", 3)
	viper.SetDefault("Engine.MaxTimeoutStreak", 5)

	viper.SetDefault("Feedback.TargetTemp", 80)
	viper.SetDefault("Feedback.MinDuty", 64)
	viper.SetDefault("Feedback.MaxDuty", 255)
	viper.SetDefault("Feedback.RampBand", 20)

	viper.SetDefault("Stress.Duty", 240)
	viper.SetDefault("Stress.ExitTemp", 70)

	viper.SetDefault("Statistics.Enabled", false)
	viper.SetDefault("Statistics.Port", 9977)

	viper.SetDefault("Api.Enabled", false)
	viper.SetDefault("Api.Host", "localhost")
	viper.SetDefault("Api.Port", 9978)

	viper.SetDefault("actuators", []ActuatorConfig{})
	viper.SetDefault("sensors", []SensorConfig{})
}

// DetectAndReadConfigFile detects the path of the first config file that is found and reads it.
// Returns the path of the used config file.
func DetectAndReadConfigFile() string {
	if err := viper.ReadInConfig(); err != nil {
		// config file is optional, the built-in register map still applies
		ui.Warning("No config file found, using defaults: %v", err)
	}
	return viper.ConfigFileUsed()
}

// LoadConfig unmarshals the current viper state into CurrentConfig.
func LoadConfig() {
	err := viper.Unmarshal(&CurrentConfig)
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
}
