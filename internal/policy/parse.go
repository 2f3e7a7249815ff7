package policy

import (
	"fmt"
	"strings"

	"github.com/shetautnetjer/alienfan/internal/configuration"
)

// Parse resolves a policy name from the command surface into a concrete
// control policy. Recognized names are "restore", "feedback", "stress",
// "manual" and every preset name. A duty of 0 or a targetTemp of 0 means
// "use the configured default".
func Parse(name string, duty int, targetTemp int, feedback configuration.FeedbackConfig, stress configuration.StressConfig) (ControlPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "restore":
		return Restore{}, nil
	case "feedback", "temp", "auto":
		selected := FeedbackFromConfig(feedback)
		if targetTemp > 0 {
			selected.TargetTemp = targetTemp
		}
		if duty > 0 {
			selected.MaxDuty = duty
		}
		return selected, nil
	case "stress":
		selected := StressFromConfig(stress, feedback)
		if duty > 0 {
			selected.Duty = duty
		}
		return selected, nil
	case "manual":
		if duty <= 0 {
			return nil, fmt.Errorf("manual policy requires a duty value")
		}
		return ManualPreset{Duty: duty}, nil
	}

	preset, err := PresetPolicy(name)
	if err != nil {
		return nil, fmt.Errorf("unknown policy %q (expected restore, feedback, stress, manual or one of: %s)",
			name, strings.Join(PresetNames(), ", "))
	}
	if duty > 0 {
		preset.Duty = duty
	}
	return preset, nil
}
