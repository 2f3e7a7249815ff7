package policy

import (
	"fmt"
	"sort"
)

// Presets maps well-known preset names to manual duty values. The numbers
// match the presets the hardware was characterized with.
var Presets = map[string]int{
	"silent":      32,
	"quiet":       64,
	"normal":      128,
	"performance": 192,
	"gaming":      200,
	"stress":      240,
	"max":         255,
}

// PresetNames returns all preset names in alphabetical order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetPolicy returns the manual preset policy for the given name.
func PresetPolicy(name string) (ManualPreset, error) {
	duty, ok := Presets[name]
	if !ok {
		return ManualPreset{}, fmt.Errorf("no such preset: %s", name)
	}
	return ManualPreset{Duty: duty}, nil
}
