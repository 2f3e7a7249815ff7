package configuration

import "time"

type EngineConfig struct {
	// TickRate is the time interval between control loop ticks.
	TickRate time.Duration `json:"tickRate"`
	// OpTimeout bounds every single backend read or write.
	OpTimeout time.Duration `json:"opTimeout"`
	// SettleDelay is the time to wait between a duty write and its
	// verification read, to give the hardware time to latch the value.
	SettleDelay time.Duration `json:"settleDelay"`
	// VerifyTolerance is the maximum duty delta between the written value
	// and the read-back value that still counts as verified.
	VerifyTolerance int `json:"verifyTolerance"`
	// MaxVerifyFailures demotes an actuator to read-only once its
	// verification failure counter reaches this value.
	MaxVerifyFailures int `json:"maxVerifyFailures"`
	// MaxTimeoutStreak marks an actuator unavailable after this many
	// consecutive timeouts.
	MaxTimeoutStreak int `json:"maxTimeoutStreak"`
}

type FeedbackConfig struct {
	// TargetTemp in degrees celsius
	TargetTemp int `json:"targetTemp"`
	MinDuty    int `json:"minDuty"`
	MaxDuty    int `json:"maxDuty"`
	// RampBand is the temperature band in degrees above TargetTemp over
	// which the demanded duty ramps linearly up to MaxDuty.
	RampBand int `json:"rampBand"`
}

type StressConfig struct {
	Duty int `json:"duty"`
	// ExitTemp in degrees celsius; once the controlling temperature falls
	// below it, stress mode downgrades to temperature feedback.
	ExitTemp int `json:"exitTemp"`
}

type StatisticsConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

type ApiConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}
