package actuators

import (
	"context"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/shetautnetjer/alienfan/internal/backend"
	"github.com/shetautnetjer/alienfan/internal/registry"
	"github.com/shetautnetjer/alienfan/internal/ui"
)

// Capability describes what discovery determined about an actuator.
type Capability int

const (
	// CapabilityUnavailable marks an actuator whose backend cannot be
	// reached, or one gated behind a missing allow-list entry. It is
	// excluded from all control but kept in the map for audit history.
	CapabilityUnavailable Capability = iota
	// CapabilityReadOnly marks an actuator whose duty can be observed but
	// not changed, either because the trial write failed or because the
	// firmware kept reverting verified writes.
	CapabilityReadOnly
	// CapabilityReadWrite marks an actuator under active control.
	CapabilityReadWrite
)

func (c Capability) String() string {
	switch c {
	case CapabilityReadOnly:
		return "ReadOnly"
	case CapabilityReadWrite:
		return "ReadWrite"
	}
	return "Unavailable"
}

// ActuatorMap is the live set of actuators built by discovery. Actuators
// are never removed during a run, only marked unavailable.
var ActuatorMap = cmap.New[*FanActuator]()

// FanActuator is a single controllable or observable fan.
type FanActuator struct {
	ID    string
	Label string
	Entry registry.Entry

	mu      sync.Mutex
	backend backend.AccessBackend

	capability Capability
	// everWritable latches once the actuator is promoted to ReadWrite;
	// the shutdown restore sequence covers every such actuator regardless
	// of later demotion.
	everWritable bool

	lastDuty     int
	lastRpm      int
	lastVerified time.Time

	verifyFailures int
	timeoutStreak  int
}

func NewFanActuator(entry registry.Entry) (*FanActuator, error) {
	accessBackend, err := entry.NewBackend()
	if err != nil {
		return nil, err
	}
	return NewFanActuatorWithBackend(entry, accessBackend), nil
}

// NewFanActuatorWithBackend wires an actuator to an already constructed
// access backend.
func NewFanActuatorWithBackend(entry registry.Entry, accessBackend backend.AccessBackend) *FanActuator {
	return &FanActuator{
		ID:       entry.ID,
		Label:    entry.Label,
		Entry:    entry,
		backend:  accessBackend,
		lastDuty: -1,
	}
}

func (a *FanActuator) GetId() string {
	return a.ID
}

func (a *FanActuator) Backend() backend.AccessBackend {
	return a.backend
}

func (a *FanActuator) MinDuty() int {
	return a.Entry.MinDuty
}

func (a *FanActuator) MaxDuty() int {
	return a.Entry.MaxDuty
}

// GetDuty reads the current duty value from the hardware.
func (a *FanActuator) GetDuty(ctx context.Context) (int, error) {
	return a.backend.Read(ctx)
}

// SetDuty writes a duty value to the hardware. Range validation and
// verification live in the safety monitor; this is the raw write.
func (a *FanActuator) SetDuty(ctx context.Context, duty int) error {
	ui.Debug("Setting %s (%s) to %d ...", a.ID, a.Label, duty)
	return a.backend.Write(ctx, duty)
}

// EnsureManualControl switches a sysfs-backed actuator to manual pwm
// control. Without it the firmware keeps overriding duty writes through
// the enable attribute. Raw port registers accept writes directly.
func (a *FanActuator) EnsureManualControl(ctx context.Context) error {
	sysfs, ok := a.backend.(*backend.SysfsPwm)
	if !ok {
		return nil
	}
	return sysfs.EnableManual(ctx)
}

// GetRpm reads the rotational speed, for actuators that expose one.
func (a *FanActuator) GetRpm(ctx context.Context) (int, error) {
	sysfs, ok := a.backend.(*backend.SysfsPwm)
	if !ok {
		return 0, backend.ErrUnavailable
	}
	rpm, err := sysfs.ReadRpm(ctx)
	if err != nil {
		return 0, err
	}
	a.mu.Lock()
	a.lastRpm = rpm
	a.mu.Unlock()
	return rpm, nil
}

// Restore hands the actuator back to firmware control.
func (a *FanActuator) Restore(ctx context.Context) error {
	return a.backend.Restore(ctx)
}

func (a *FanActuator) Capability() Capability {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.capability
}

func (a *FanActuator) SetCapability(capability Capability) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.capability = capability
	if capability == CapabilityReadWrite {
		a.everWritable = true
	}
}

// EverWritable reports whether this actuator was ever placed under
// read-write control during the current run.
func (a *FanActuator) EverWritable() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.everWritable
}

func (a *FanActuator) LastDuty() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastDuty
}

func (a *FanActuator) LastRpm() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastRpm
}

func (a *FanActuator) LastVerified() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastVerified
}

// MarkVerified records a successful, verified duty write and clears the
// failure counters.
func (a *FanActuator) MarkVerified(duty int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastDuty = duty
	a.lastVerified = time.Now()
	a.verifyFailures = 0
	a.timeoutStreak = 0
}

func (a *FanActuator) VerifyFailures() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.verifyFailures
}

// CountVerifyFailure increments the verification failure counter and
// returns the new count.
func (a *FanActuator) CountVerifyFailure() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.verifyFailures++
	return a.verifyFailures
}

// CountTimeout increments the consecutive timeout counter and returns the
// new count.
func (a *FanActuator) CountTimeout() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.timeoutStreak++
	return a.timeoutStreak
}

func (a *FanActuator) ResetTimeoutStreak() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.timeoutStreak = 0
}
