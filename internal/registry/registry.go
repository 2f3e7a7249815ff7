package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shetautnetjer/alienfan/internal/backend"
)

type BackendKind string

const (
	KindSysfsPwm BackendKind = "sysfs"
	KindRawPort  BackendKind = "rawport"
)

// Entry describes one known fan actuator: identity, access backend,
// address or path, declared safe duty range and risk flags. Entries carry
// no behavior and are immutable after the map is built.
type Entry struct {
	ID    string
	Label string
	Kind  BackendKind

	// sysfs backend
	PwmPath    string
	EnablePath string
	RpmInput   string

	// raw port backend
	Address  backend.PortAddress
	PortFile string

	MinDuty int
	MaxDuty int

	// Reversible records whether prior observation showed that restoring a
	// previous value returns the register to its prior state. Entries with
	// unconfirmed reversibility carry SideEffectRisk and are excluded from
	// automatic control unless explicitly allow-listed.
	Reversible     bool
	SideEffectRisk bool
}

// Map is the loaded register map together with the allow-list for
// side-effect-risk addresses.
type Map struct {
	Entries []Entry
	allowed map[string]bool
}

// BuiltIn returns the register map entries for the Alienware EC fan duty
// registers unlocked through raw port access. The 0x38/0x3C registers
// produced fan speed changes during the original investigation but could
// not be restored to baseline, so they are tagged as side-effect risks.
func BuiltIn() []Entry {
	rawPort := func(id, label string, address backend.PortAddress, reversible bool) Entry {
		return Entry{
			ID:             id,
			Label:          label,
			Kind:           KindRawPort,
			Address:        address,
			MinDuty:        backend.MinDutyValue,
			MaxDuty:        backend.MaxDutyValue,
			Reversible:     reversible,
			SideEffectRisk: !reversible,
		}
	}

	return []Entry{
		rawPort("ec_gpu", "GPU Fan", 0x24, true),
		rawPort("ec_vrm", "VRM Fan", 0x28, true),
		rawPort("ec_exhaust", "Exhaust Fan", 0x2C, true),
		rawPort("ec_chassis", "Chassis Fan", 0x30, true),
		rawPort("ec_memory", "Memory Fan", 0x34, true),
		rawPort("ec_aux1", "Auxiliary Fan 1", 0x38, false),
		rawPort("ec_aux2", "Auxiliary Fan 2", 0x3C, false),
	}
}

// New builds a register map from the given entries and allow-list.
func New(entries []Entry, allowList []string) (*Map, error) {
	allowed := map[string]bool{}
	byID := map[string]bool{}
	for _, entry := range entries {
		if byID[entry.ID] {
			return nil, fmt.Errorf("duplicate register map entry: %s", entry.ID)
		}
		byID[entry.ID] = true
	}
	for _, id := range allowList {
		if !byID[id] {
			return nil, fmt.Errorf("allow-list references unknown actuator: %s", id)
		}
		allowed[id] = true
	}
	return &Map{
		Entries: entries,
		allowed: allowed,
	}, nil
}

// Allowed reports whether the given side-effect-risk actuator has been
// explicitly allow-listed by the operator.
func (m *Map) Allowed(id string) bool {
	return m.allowed[id]
}

// Get returns the entry with the given id.
func (m *Map) Get(id string) (Entry, bool) {
	for _, entry := range m.Entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return Entry{}, false
}

// NewBackend creates the access backend described by the entry.
func (e Entry) NewBackend() (backend.AccessBackend, error) {
	switch e.Kind {
	case KindSysfsPwm:
		return &backend.SysfsPwm{
			Path:       e.PwmPath,
			EnablePath: e.EnablePath,
			RpmInput:   e.RpmInput,
		}, nil
	case KindRawPort:
		return &backend.RawPort{
			Address:        e.Address,
			PortFile:       e.PortFile,
			SideEffectRisk: e.SideEffectRisk,
		}, nil
	}
	return nil, fmt.Errorf("no matching backend kind for entry: %s", e.ID)
}

// ParsePortAddress parses a hexadecimal port address like "0x24" or "2C".
func ParsePortAddress(text string) (backend.PortAddress, error) {
	cleaned := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(text)), "0x")
	value, err := strconv.ParseUint(cleaned, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid port address %q: %w", text, err)
	}
	return backend.PortAddress(value), nil
}
